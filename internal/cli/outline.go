package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pyscope/internal/outline"
)

var outlineAsJSON bool

// outlineCmd extracts one file and prints its outline.
var outlineCmd = &cobra.Command{
	Use:   "outline FILE",
	Short: "Print the structural outline of a Python file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		tree, err := outline.Extract(string(content))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if outlineAsJSON {
			data, err := json.MarshalIndent(tree, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), renderTree(path, tree))
		return nil
	},
}

func init() {
	outlineCmd.Flags().BoolVar(&outlineAsJSON, "json", false, "emit the outline as JSON")
	rootCmd.AddCommand(outlineCmd)
}
