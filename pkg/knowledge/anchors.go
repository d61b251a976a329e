package knowledge

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceJIC/pkg/bitstream"
)

// DriveBitSpacing is the distance in bits from a pin's 8mA drive bit to its
// 4mA drive bit.
const DriveBitSpacing = 32

// DriveSamples holds three images of the same design that differ only in
// the current strength of one output pin.
type DriveSamples struct {
	MA4, MA8, MA12 *bitstream.Image
}

// Measurement is the outcome of locating one pin in its drive samples.
type Measurement struct {
	Pin    string `json:"pin"`
	Bit4mA int    `json:"bit_4mA"`
	Bit8mA int    `json:"bit_8mA"`
}

// Anchor returns the pin's anchor, the lowest configuration bit of the pin.
func (m Measurement) Anchor() int {
	return m.Bit8mA
}

// Consistent reports whether the two drive bits sit at their usual spacing.
func (m Measurement) Consistent() bool {
	return m.Bit4mA-m.Bit8mA == DriveBitSpacing
}

// Measure locates pin by diffing the 4mA and 8mA samples against the 12mA
// sample. Only bytes inside region that differ in a single bit count.
func Measure(pin string, s DriveSamples, region bitstream.Region) (Measurement, error) {
	c4, err := s.MA4.FirstChange(s.MA12, region)
	if err != nil {
		return Measurement{}, fmt.Errorf("knowledge: pin %s: 4mA vs 12mA: %w", pin, err)
	}
	c8, err := s.MA8.FirstChange(s.MA12, region)
	if err != nil {
		return Measurement{}, fmt.Errorf("knowledge: pin %s: 8mA vs 12mA: %w", pin, err)
	}
	return Measurement{Pin: pin, Bit4mA: c4.Addr, Bit8mA: c8.Addr}, nil
}

// Builder assembles Tables from measured anchors.
type Builder struct {
	layout Layout
	pins   map[string]PinEntry
}

// NewBuilder returns a Builder for the given layout.
func NewBuilder(layout Layout) *Builder {
	return &Builder{layout: layout, pins: make(map[string]PinEntry)}
}

// Merge copies every entry of base. Later SetAnchor calls keep the reserved
// block constants of merged entries.
func (b *Builder) Merge(base *Tables) *Builder {
	for id, entry := range base.pins {
		b.pins[id] = entry
	}
	return b
}

// SetAnchor sets the anchor of pin.
func (b *Builder) SetAnchor(pin string, anchor int) *Builder {
	entry := b.pins[pin]
	entry.Anchor = anchor
	b.pins[pin] = entry
	return b
}

// Build validates and returns the tables.
func (b *Builder) Build() (*Tables, error) {
	return New(b.layout, b.pins)
}

// Encode writes the tables as YAML in the format Parse reads.
func (t *Tables) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tablesFile{Layout: t.Layout(), Pins: t.pins}); err != nil {
		return fmt.Errorf("knowledge: encode: %w", err)
	}
	return enc.Close()
}
