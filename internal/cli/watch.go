package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"pyscope/internal/outline"
	"pyscope/internal/watch"
)

// watchCmd re-extracts and re-prints the outline whenever the watched file
// or directory changes.
var watchCmd = &cobra.Command{
	Use:   "watch PATH",
	Short: "Re-print outlines whenever Python files change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		pattern := cfg.Scan.Include
		if !info.IsDir() {
			// Watching a single file: only that name counts.
			pattern = filepath.Base(path)
		}
		matcher, err := glob.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}

		out := cmd.OutOrStdout()
		printOutline := func(file string) {
			full := file
			if !filepath.IsAbs(file) && info.IsDir() {
				full = filepath.Join(path, file)
			}
			content, err := os.ReadFile(full)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", file, err)
				return
			}
			tree, err := outline.Extract(string(content))
			if err != nil {
				var parseErr *outline.ParseError
				if errors.As(err, &parseErr) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", file, parseErr.Message)
					return
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", file, err)
				return
			}
			fmt.Fprint(out, renderTree(file, tree))
		}

		w, err := watch.New(path, cfg.Watch.Debounce, matcher, func(files []string) {
			for _, file := range files {
				printOutline(file)
			}
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Print the initial state before waiting for changes.
		if !info.IsDir() {
			printOutline(path)
		}

		w.Start(ctx)
		fmt.Fprintf(out, "watching %s (pattern %s)\n", path, pattern)
		<-ctx.Done()
		w.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
