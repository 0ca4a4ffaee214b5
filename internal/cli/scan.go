package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"pyscope/internal/outline"
)

var (
	scanInclude string
	scanOut     string
)

// scanCmd outlines every matching file under a directory. Each file is
// extracted independently; there is no cross-file analysis.
var scanCmd = &cobra.Command{
	Use:   "scan DIR",
	Short: "Outline every Python file under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		include := cfg.Scan.Include
		if scanInclude != "" {
			include = scanInclude
		}
		matcher, err := glob.Compile(include)
		if err != nil {
			return fmt.Errorf("invalid include pattern %q: %w", include, err)
		}

		files, err := collectFiles(root, matcher)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no files matching %q under %s\n", include, root)
			return nil
		}

		if scanOut != "" {
			if err := os.MkdirAll(scanOut, 0o755); err != nil {
				return err
			}
		}

		bar := progressbar.Default(int64(len(files)), "outlining")
		var outlined, failed int
		for _, file := range files {
			if err := scanFile(root, file); err != nil {
				var parseErr *outline.ParseError
				if errors.As(err, &parseErr) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", file, parseErr.Message)
					failed++
				} else {
					return fmt.Errorf("%s: %w", file, err)
				}
			} else {
				outlined++
			}
			bar.Add(1)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "outlined %d file(s), %d parse failure(s)\n", outlined, failed)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanInclude, "include", "", "glob over file names (overrides config, default *.py)")
	scanCmd.Flags().StringVar(&scanOut, "out", "", "write one outline JSON file per source file into this directory")
	rootCmd.AddCommand(scanCmd)
}

// collectFiles walks root and returns paths (relative to root) whose base
// name matches the include pattern. Hidden directories are skipped.
func collectFiles(root string, matcher glob.Glob) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Match(d.Name()) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	return files, err
}

// scanFile extracts one file and, when --out is set, writes its outline JSON.
func scanFile(root, rel string) error {
	content, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return err
	}
	tree, err := outline.Extract(string(content))
	if err != nil {
		return err
	}
	if scanOut == "" {
		return nil
	}
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	name := strings.ReplaceAll(rel, "/", "_") + ".json"
	return os.WriteFile(filepath.Join(scanOut, name), data, 0o644)
}
