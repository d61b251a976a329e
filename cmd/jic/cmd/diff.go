package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceJIC/internal/report"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/bitstream"
)

func addRegionFlags(cmd *cobra.Command, r *regionFlags, def bitstream.Region) {
	cmd.Flags().IntVar(&r.skipHead, "skip-head", def.SkipHeadBytes,
		"ignore changes in the first N bytes (container header)")
	cmd.Flags().IntVar(&r.skipTail, "skip-tail", def.SkipTailBytes,
		"ignore changes in the last N bytes (checksums)")
	cmd.Flags().BoolVar(&r.all, "all", false,
		"report changes anywhere in the image")
}

func newDiffCmd(e *env) *cobra.Command {
	r := &regionFlags{}

	cmd := &cobra.Command{
		Use:   "diff [flags] a b",
		Short: "List the bits that differ between two images",
		Long: `Compare two configuration images of the same device bit by bit.

Compile two designs that differ in exactly one pin setting and diff them to
find the bits that encode that setting. By default the container header and
the trailing checksum area are skipped.

Examples:
  jic diff base.jic pullup.jic
  jic diff --all base.zip sample.zip`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.image(args[0])
			if err != nil {
				return err
			}
			b, err := e.image(args[1])
			if err != nil {
				return err
			}

			changes, err := a.Changes(b, r.region())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report.ImageSummary(out, args[0], a)
			report.ImageSummary(out, args[1], b)
			report.Changes(out, changes)
			fmt.Fprintf(out, "%d bit(s) differ\n", len(changes))
			return nil
		},
	}

	addRegionFlags(cmd, r, bitstream.DefaultRegion())
	return cmd
}
