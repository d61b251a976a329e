package cmd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceJIC/internal/report"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/bitstream"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/knowledge"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/pininfo"
)

type anchorsFlags struct {
	samples       string
	prefix        string
	pins          []string
	pinList       string
	base          string
	blockBoundary int
	output        string
	json          bool
	region        regionFlags
}

func newAnchorsCmd(e *env) *cobra.Command {
	f := &anchorsFlags{}

	cmd := &cobra.Command{
		Use:   "anchors [flags]",
		Short: "Measure pin anchors from drive strength samples",
		Long: `Locate the anchor of every pin from three sample images per pin that differ
only in the pin's output current strength (4mA, 8mA and 12mA).

The 4mA and 8mA samples are diffed against the 12mA sample. The first byte in
the configuration area that differs in a single bit gives each drive bit; the
8mA drive bit is the pin's anchor and the 4mA drive bit follows 32 bits later.

Samples are read from <samples>/<prefix><pin>_<strength>.jic. Pins come from
--pin, from --pin-list (one name per line) or from the --base tables. With
--output the measured anchors are written as knowledge tables, keeping the
reserved block constants of --base.

Examples:
  jic anchors --samples bitstreams --pin-list pins.txt --block-boundary 10752 --output knowledge.yaml
  jic anchors --samples bitstreams --base knowledge.yaml --pin PIN_A6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnchors(cmd, e, f)
		},
	}

	cmd.Flags().StringVarP(&f.samples, "samples", "s", ".", "directory holding the sample images")
	cmd.Flags().StringVar(&f.prefix, "prefix", "pin_ident_", "sample file name prefix")
	cmd.Flags().StringSliceVarP(&f.pins, "pin", "p", nil, "pins to measure")
	cmd.Flags().StringVar(&f.pinList, "pin-list", "", "file with one pin name per line")
	cmd.Flags().StringVar(&f.base, "base", "", "knowledge tables to start from (YAML)")
	cmd.Flags().IntVar(&f.blockBoundary, "block-boundary", 0, "block boundary in bits when no --base is given")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the resulting knowledge tables to this file")
	cmd.Flags().BoolVar(&f.json, "json", false, "write measurements as JSON")
	addRegionFlags(cmd, &f.region, bitstream.AnchorRegion())
	return cmd
}

func runAnchors(cmd *cobra.Command, e *env, f *anchorsFlags) error {
	var base *knowledge.Tables
	if f.base != "" {
		var err error
		if base, err = knowledge.Load(e.fs, f.base); err != nil {
			return err
		}
	}

	pins, err := anchorPins(e.fs, f, base)
	if err != nil {
		return err
	}

	var (
		measured []knowledge.Measurement
		merr     *multierror.Error
	)
	for _, pin := range pins {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		m, err := measurePin(e, f, pin)
		if err != nil {
			level.Warn(e.logger).Log("msg", "failed to measure pin", "pin", pin, "err", err)
			merr = multierror.Append(merr, err)
			continue
		}
		if !m.Consistent() {
			level.Warn(e.logger).Log("msg", "unexpected drive bit spacing", "pin", pin, "bit_4mA", m.Bit4mA, "bit_8mA", m.Bit8mA)
		}
		measured = append(measured, m)
	}

	out := cmd.OutOrStdout()
	if f.json {
		if err := report.JSON(out, measured); err != nil {
			return err
		}
	} else {
		report.Measurements(out, measured)
	}

	if f.output != "" {
		if err := writeTables(e.fs, f, base, measured); err != nil {
			return err
		}
		level.Info(e.logger).Log("msg", "wrote knowledge tables", "path", f.output, "pins", len(measured))
	}
	return merr.ErrorOrNil()
}

func anchorPins(fsys afero.Fs, f *anchorsFlags, base *knowledge.Tables) ([]string, error) {
	switch {
	case len(f.pins) > 0:
		return f.pins, nil
	case f.pinList != "":
		data, err := afero.ReadFile(fsys, f.pinList)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.pinList, err)
		}
		var pins []string
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			name := strings.TrimSpace(sc.Text())
			if name == "" {
				continue
			}
			if !strings.HasPrefix(name, pininfo.AssignmentPrefix) {
				name = pininfo.AssignmentPrefix + name
			}
			pins = append(pins, name)
		}
		return pins, sc.Err()
	case base != nil:
		return base.Pins(), nil
	}
	return nil, errors.New("no pins given, use --pin, --pin-list or --base")
}

func measurePin(e *env, f *anchorsFlags, pin string) (knowledge.Measurement, error) {
	var s knowledge.DriveSamples
	for _, sample := range []struct {
		dst      **bitstream.Image
		strength string
	}{
		{&s.MA4, "4mA"},
		{&s.MA8, "8mA"},
		{&s.MA12, "12mA"},
	} {
		img, err := e.image(filepath.Join(f.samples, f.prefix+pin+"_"+sample.strength+".jic"))
		if err != nil {
			return knowledge.Measurement{}, err
		}
		*sample.dst = img
	}
	return knowledge.Measure(pin, s, f.region.region())
}

func writeTables(fsys afero.Fs, f *anchorsFlags, base *knowledge.Tables, measured []knowledge.Measurement) error {
	var b *knowledge.Builder
	if base != nil {
		b = knowledge.NewBuilder(base.Layout()).Merge(base)
	} else {
		if f.blockBoundary <= 0 {
			return errors.New("--block-boundary or --base is required with --output")
		}
		b = knowledge.NewBuilder(knowledge.Layout{
			BlockBoundary:      f.blockBoundary,
			Stride:             knowledge.DefaultStride,
			UnknownBlockStride: knowledge.DefaultUnknownBlockStride,
		})
	}
	for _, m := range measured {
		b.SetAnchor(m.Pin, m.Anchor())
	}
	tables, err := b.Build()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tables.Encode(&buf); err != nil {
		return err
	}
	if err := afero.WriteFile(fsys, f.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.output, err)
	}
	return nil
}
