package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceJIC/internal/report"
)

func newTranslateCmd(e *env) *cobra.Command {
	var (
		knowledgePath string
		pin           string
		reverse       bool
	)

	cmd := &cobra.Command{
		Use:   "translate [flags] address...",
		Short: "Convert between nominal and true bit addresses of a pin",
		Long: `Convert nominal bit addresses of a pin into true image addresses, or true
addresses back into nominal ones with --reverse. Addresses may be given in
decimal or with a 0x prefix.

Examples:
  jic translate --knowledge knowledge.yaml --pin PIN_A6 52000 52288
  jic translate --knowledge knowledge.yaml --pin PIN_A6 --reverse 0xcb20`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := parseInts(args)
			if err != nil {
				return err
			}
			tr, err := e.translator(knowledgePath)
			if err != nil {
				return err
			}

			if reverse {
				out := make([]int, len(addrs))
				for i, a := range addrs {
					if out[i], err = tr.ToNominal(a, pin); err != nil {
						return err
					}
				}
				report.Translations(cmd.OutOrStdout(), "True", "Nominal", addrs, out)
				return nil
			}

			out, err := tr.ToTrueAll(addrs, pin)
			if err != nil {
				return err
			}
			report.Translations(cmd.OutOrStdout(), "Nominal", "True", addrs, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&knowledgePath, "knowledge", "k", "", "knowledge tables (YAML)")
	cmd.Flags().StringVarP(&pin, "pin", "p", "", "pin whose correction table is used")
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "convert true addresses to nominal")

	cmd.MarkFlagRequired("knowledge")
	cmd.MarkFlagRequired("pin")
	return cmd
}
