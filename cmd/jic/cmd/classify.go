package cmd

import (
	"errors"
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceJIC/internal/report"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/classify"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/feature"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/pininfo"
)

type classifyFlags struct {
	knowledge string
	pinsFile  string
	pkg       string
	tree      string
	pins      []string
	workers   int
	json      bool
}

func newClassifyCmd(e *env) *cobra.Command {
	f := &classifyFlags{}

	cmd := &cobra.Command{
		Use:   "classify [flags] image",
		Short: "Classify the I/O configuration of pins in an image",
		Long: `Read the feature bits of every pin from a configuration image and classify
direction, pull-up, differential role, I/O standard and termination.

Pins default to every pin of the knowledge tables. Dedicated differential
channel roles come from the pin-out datasheet when --pins-file is given;
without it every pin is treated as having no dedicated channel.

Examples:
  jic classify --knowledge knowledge.yaml design.jic
  jic classify --knowledge knowledge.yaml --pins-file 5sgxa7.txt --package F1517 design.jic
  jic classify --knowledge knowledge.yaml --pin PIN_A6 --pin PIN_B7 --json sample.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, e, f, args[0])
		},
	}

	cmd.Flags().StringVarP(&f.knowledge, "knowledge", "k", "",
		"knowledge tables (YAML)")
	cmd.Flags().StringVar(&f.pinsFile, "pins-file", "",
		"pin-out datasheet (tab separated)")
	cmd.Flags().StringVar(&f.pkg, "package", "",
		"device package section of the datasheet (e.g., F1517)")
	cmd.Flags().StringVar(&f.tree, "tree", "",
		"decision tree file (default: built-in I/O standard tree)")
	cmd.Flags().StringSliceVarP(&f.pins, "pin", "p", nil,
		"pins to classify (default: all pins in the knowledge tables)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0,
		"parallel workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&f.json, "json", false,
		"write results as JSON")

	cmd.MarkFlagRequired("knowledge")
	return cmd
}

func runClassify(cmd *cobra.Command, e *env, f *classifyFlags, imagePath string) error {
	tr, err := e.translator(f.knowledge)
	if err != nil {
		return err
	}
	tree, err := e.tree(f.tree)
	if err != nil {
		return err
	}
	img, err := e.image(imagePath)
	if err != nil {
		return err
	}

	opts := []classify.Option{classify.WithLogger(e.logger)}
	if f.pinsFile != "" {
		if f.pkg == "" {
			return errors.New("--package is required with --pins-file")
		}
		table, err := pininfo.Load(e.fs, f.pinsFile, f.pkg, e.logger)
		if err != nil {
			return err
		}
		opts = append(opts, classify.WithRoles(table))
	}

	c, err := classify.New(feature.NewExtractor(tr), tree, opts...)
	if err != nil {
		return err
	}

	pins := f.pins
	if len(pins) == 0 {
		pins = tr.Tables().Pins()
	}

	progress := make(chan classify.Progress)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			level.Debug(e.logger).Log("msg", "progress", "pin", p.Pin, "done", p.Done, "total", p.Total, "failed", p.Failed)
		}
	}()

	results, batchErr := c.ClassifyBatch(cmd.Context(), img, pins, classify.BatchOptions{
		Workers:  f.workers,
		Progress: progress,
	})
	close(progress)
	<-done

	out := cmd.OutOrStdout()
	if f.json {
		if err := report.ClassificationsJSON(out, results); err != nil {
			return err
		}
	} else {
		report.ImageSummary(out, imagePath, img)
		report.Classifications(out, results)
	}

	if batchErr != nil {
		return fmt.Errorf("classification failed: %w", batchErr)
	}
	return nil
}
