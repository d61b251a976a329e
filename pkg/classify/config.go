package classify

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceJIC/pkg/feature"
)

// Config names the catalog offsets each pipeline step reads.
type Config struct {
	// Pull-up and output detection
	PullUpOffset  int   // Pull-up bit (default: 0)
	OutputOffsets []int // Output indicator bits, any set means output (default: 12 offsets)

	// Input detection, the bit is active low
	InputOffset     int // Output-active bit of single-ended pins (default: 288)
	DiffInputOffset int // Output-active bit of differential pins (default: 256)

	// Differential detection, chosen by channel role
	DiffRxOffset int // Read for dedicated receiver channels (default: 1504)
	DiffTxOffset int // Read for every other pin (default: 1536)

	// Termination
	TerminationOffsets []int  // Three termination bits (default: -256, -224, 544)
	TerminationFamily  string // Label prefix of standards with termination (default: "SSTL")
}

// DefaultConfig returns the offsets the default catalog and decision tree
// were built against.
func DefaultConfig() *Config {
	return &Config{
		PullUpOffset:       0,
		OutputOffsets:      []int{-512, -480, -416, -384, -320, -288, -256, -224, -192, -160, -128, 544},
		InputOffset:        288,
		DiffInputOffset:    256,
		DiffRxOffset:       1504,
		DiffTxOffset:       1536,
		TerminationOffsets: []int{-256, -224, 544},
		TerminationFamily:  "SSTL",
	}
}

// Validate checks that the configuration is usable with catalog c. Every
// offset must be part of the catalog.
func (cfg *Config) Validate(c *feature.Catalog) error {
	if len(cfg.OutputOffsets) == 0 {
		return errors.New("classify: no output offsets")
	}
	if len(cfg.TerminationOffsets) != 3 {
		return fmt.Errorf("classify: need 3 termination offsets, got %d", len(cfg.TerminationOffsets))
	}
	if cfg.TerminationFamily == "" {
		return errors.New("classify: empty termination family")
	}

	offsets := []int{cfg.PullUpOffset, cfg.InputOffset, cfg.DiffInputOffset, cfg.DiffRxOffset, cfg.DiffTxOffset}
	offsets = append(offsets, cfg.OutputOffsets...)
	offsets = append(offsets, cfg.TerminationOffsets...)
	if _, err := c.IndexesOf(offsets...); err != nil {
		return fmt.Errorf("classify: invalid config: %w", err)
	}
	return nil
}
