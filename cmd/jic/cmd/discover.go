package cmd

import (
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceJIC/internal/report"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/bitstream"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/feature"
)

func newDiscoverCmd(e *env) *cobra.Command {
	var (
		knowledgePath string
		pin           string
		r             regionFlags
	)

	cmd := &cobra.Command{
		Use:   "discover [flags] reference sample...",
		Short: "Map changed bits of samples to nominal pin offsets",
		Long: `Diff every sample against a reference image and map the changed bits of
the given pin into nominal offsets relative to the pin's anchor.

Offsets found on one pin apply to every pin, so a setting only has to be
toggled on one pin to extend the feature catalog.

Examples:
  jic discover --knowledge knowledge.yaml --pin PIN_A6 base.jic pullup.jic sstl15.jic`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := e.translator(knowledgePath)
			if err != nil {
				return err
			}
			ext := feature.NewExtractor(tr)

			store, err := bitstream.NewStore(e.fs, len(args), e.logger)
			if err != nil {
				return err
			}
			ref, err := store.Get(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, sample := range args[1:] {
				img, err := store.Get(sample)
				if err != nil {
					return err
				}
				changes, err := ref.Changes(img, r.region())
				if err != nil {
					return fmt.Errorf("%s: %w", sample, err)
				}

				addrs := lo.Map(changes, func(c bitstream.BitChange, _ int) int { return c.Addr })
				offsets, err := ext.RelativeOffsets(pin, addrs)
				if err != nil {
					return err
				}
				level.Info(e.logger).Log("msg", "diffed sample", "sample", sample, "changes", len(changes))

				fmt.Fprintf(out, "%s: %d changed bit(s)\n", sample, len(changes))
				report.Offsets(out, addrs, offsets)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&knowledgePath, "knowledge", "k", "", "knowledge tables (YAML)")
	cmd.Flags().StringVarP(&pin, "pin", "p", "", "pin whose setting was toggled")
	addRegionFlags(cmd, &r, bitstream.DefaultRegion())

	cmd.MarkFlagRequired("knowledge")
	cmd.MarkFlagRequired("pin")
	return cmd
}
