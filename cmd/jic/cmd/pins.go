package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceJIC/internal/report"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/pininfo"
)

func newPinsCmd(e *env) *cobra.Command {
	var (
		pinsFile string
		pkg      string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "pins",
		Short: "List the I/O pins of a device package",
		Long: `List the I/O pins of one package section of the pin-out datasheet together
with their dedicated differential channel role. Power, transceiver and VREF
pins are skipped.

Examples:
  jic pins --pins-file 5sgxa7.txt --package F1517`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := pininfo.Load(e.fs, pinsFile, pkg, e.logger)
			if err != nil {
				return err
			}
			if asJSON {
				pins := make([]pininfo.Pin, 0, len(table.Pins()))
				for _, name := range table.Pins() {
					p, _ := table.Pin(name)
					pins = append(pins, p)
				}
				return report.JSON(cmd.OutOrStdout(), pins)
			}
			report.Pins(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().StringVar(&pinsFile, "pins-file", "", "pin-out datasheet (tab separated)")
	cmd.Flags().StringVar(&pkg, "package", "", "device package section (e.g., F1517)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write pins as JSON")

	cmd.MarkFlagRequired("pins-file")
	cmd.MarkFlagRequired("package")
	return cmd
}
