package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceJIC/internal/report"
)

// NewRootCmd builds the jic command tree reading files from fsys.
func NewRootCmd(fsys afero.Fs) *cobra.Command {
	e := &env{fs: fsys, logger: log.NewNopLogger()}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "jic",
		Short: "FPGA configuration image pin analysis",
		Long: `Recover per-pin I/O configuration from FPGA configuration images.

Bit addresses of pin settings are found by diffing sample images, mapped into
the nominal address space shared by all pins, and read back from any image
to classify direction, pull-up, differential role, I/O standard and
termination of every pin.

Examples:
  jic classify --knowledge knowledge.yaml design.jic           # Classify every known pin
  jic classify --knowledge knowledge.yaml --pin PIN_A6 out.zip # Classify one pin of a sample archive
  jic diff base.jic toggled.jic                                # Bits changed by one setting
  jic discover --knowledge knowledge.yaml --pin PIN_A6 base.jic pullup.jic
  jic anchors --samples bitstreams --pin-list pins.txt --block-boundary 10752 -o knowledge.yaml
  jic tree                                                     # Show the I/O standard decision tree`,
		Version:       "0.3.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			e.logger = logger
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log.level", "warn",
		"only log messages with the given severity or above (debug, info, warn, error)")

	rootCmd.AddCommand(
		newClassifyCmd(e),
		newDiffCmd(e),
		newDiscoverCmd(e),
		newTranslateCmd(e),
		newMarkersCmd(e),
		newTreeCmd(e),
		newPinsCmd(e),
		newAnchorsCmd(e),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd(afero.NewOsFs()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, report.Error(err))
		stop()
		os.Exit(1)
	}
}

func newLogger(lvl string, w io.Writer) (log.Logger, error) {
	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, fmt.Errorf("invalid log level %q", lvl)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC), nil
}
