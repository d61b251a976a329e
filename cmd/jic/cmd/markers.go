package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newMarkersCmd(e *env) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "markers [flags] image",
		Short: "Find a byte pattern in an image",
		Long: `List the byte offsets at which a pattern occurs in an image. Overlapping
occurrences are reported. Used to locate structural landmarks of the
container, independent of bit addressing.

Examples:
  jic markers --pattern 6a6a6a6a design.jic`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pat, err := hex.DecodeString(strings.TrimPrefix(pattern, "0x"))
			if err != nil {
				return fmt.Errorf("invalid pattern: %w", err)
			}
			if len(pat) == 0 {
				return errors.New("empty pattern")
			}

			img, err := e.image(args[0])
			if err != nil {
				return err
			}

			offsets := img.FindByteMarker(pat)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d occurrence(s) of %x\n", len(offsets), pat)
			for _, off := range offsets {
				fmt.Fprintf(out, "  0x%08x  bit %d\n", off, off*8)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "", "byte pattern in hex")
	cmd.MarkFlagRequired("pattern")
	return cmd
}
