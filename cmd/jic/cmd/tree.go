package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTreeCmd(e *env) *cobra.Command {
	var treePath string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the I/O standard decision tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := e.tree(treePath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, tree.String())
			fmt.Fprintf(out, "\nLabels: %s\n", strings.Join(tree.Labels(), ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&treePath, "tree", "", "decision tree file (default: built-in I/O standard tree)")
	return cmd
}
