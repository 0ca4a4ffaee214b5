// Package watch re-runs outline extraction whenever watched Python files
// change on disk.
package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Watcher watches a file or directory tree and invokes a callback with the
// batch of changed matching files after a debounce window.
type Watcher struct {
	root     string
	include  glob.Glob
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(files []string)
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New creates a watcher over path (a file or a directory, watched
// recursively). include is matched against base file names; onChange receives
// paths relative to the watched root, deduplicated per debounce window.
func New(path string, debounce time.Duration, include glob.Glob, onChange func(files []string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     path,
		include:  include,
		watcher:  fsWatcher,
		debounce: debounce,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	info, err := os.Stat(path)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}
	if info.IsDir() {
		err = w.addDirectoriesRecursively(path)
	} else {
		// Watch the containing directory; editors often replace files on save.
		err = fsWatcher.Add(filepath.Dir(path))
	}
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// watch is the main event loop with debouncing logic.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	flushCh := make(chan struct{}, 1)
	changed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.shouldProcessEvent(event) {
				// New directories still need to be picked up.
				w.maybeAddDirectory(event)
				continue
			}
			changed[w.relPath(event.Name)] = true

			// Reset the debounce timer, draining it if it already fired.
			if debounceTimer != nil {
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case flushCh <- struct{}{}:
				default:
				}
			})

		case <-flushCh:
			if len(changed) > 0 {
				files := make([]string, 0, len(changed))
				for f := range changed {
					files = append(files, f)
				}
				changed = make(map[string]bool)
				w.onChange(files)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// shouldProcessEvent keeps write/create/rename events on matching files.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return false
	}
	return w.include.Match(filepath.Base(event.Name))
}

// maybeAddDirectory starts watching directories created under the root.
func (w *Watcher) maybeAddDirectory(event fsnotify.Event) {
	if event.Op&fsnotify.Create == 0 {
		return
	}
	if info, err := os.Stat(event.Name); err != nil || !info.IsDir() {
		return
	}
	if err := w.addDirectoriesRecursively(event.Name); err != nil {
		log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
	}
}

// addDirectoriesRecursively adds dir and all its subdirectories to the
// watcher, skipping hidden directories.
func (w *Watcher) addDirectoriesRecursively(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) relPath(name string) string {
	if rel, err := filepath.Rel(w.root, name); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(name)
}
