package knowledge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultStride is the number of non-configuration bits inserted at
	// every block boundary.
	DefaultStride = 64
	// DefaultUnknownBlockStride is the size in bits of one reserved block.
	DefaultUnknownBlockStride = 1344
)

// ErrUnknownPin is returned for pins without a table entry.
var ErrUnknownPin = errors.New("knowledge: unknown pin")

// UnknownPinError reports a pin that has no anchor or correction entry.
type UnknownPinError struct {
	Pin string
}

func (e *UnknownPinError) Error() string {
	return fmt.Sprintf("knowledge: no table entry for pin %q", e.Pin)
}

func (e *UnknownPinError) Unwrap() error { return ErrUnknownPin }

// Layout describes the block geometry of an image.
type Layout struct {
	// BlockBoundary is the distance in bits between block boundaries.
	BlockBoundary int `yaml:"block_boundary"`
	// Stride is removed once for every boundary an address lies beyond.
	Stride int `yaml:"stride"`
	// UnknownBlockStride is the size in bits of one reserved block.
	UnknownBlockStride int `yaml:"unknown_block_stride"`
	// BlockStarts, when set, lists the measured boundary addresses and
	// takes precedence over BlockBoundary. Must be ascending.
	BlockStarts []int `yaml:"block_starts,omitempty"`
}

// Crossings returns how many block boundaries lie strictly below addr.
func (l Layout) Crossings(addr int) int {
	if len(l.BlockStarts) > 0 {
		return sort.SearchInts(l.BlockStarts, addr)
	}
	if addr <= 0 {
		return 0
	}
	return (addr - 1) / l.BlockBoundary
}

// Validate checks the layout for values the translator cannot work with.
func (l Layout) Validate() error {
	if len(l.BlockStarts) == 0 && l.BlockBoundary <= 0 {
		return fmt.Errorf("knowledge: block_boundary must be positive, got %d", l.BlockBoundary)
	}
	if l.Stride < 0 || l.UnknownBlockStride < 0 {
		return fmt.Errorf("knowledge: strides must not be negative")
	}
	if len(l.BlockStarts) == 0 && l.Stride >= l.BlockBoundary {
		return fmt.Errorf("knowledge: stride %d must be smaller than block_boundary %d", l.Stride, l.BlockBoundary)
	}
	if !sort.IntsAreSorted(l.BlockStarts) {
		return fmt.Errorf("knowledge: block_starts must be ascending")
	}
	return nil
}

// PinEntry is the per-pin knowledge: the anchor (the pull-up configuration
// bit, origin of all relative offsets) and the reserved block constants.
type PinEntry struct {
	Anchor                 int `yaml:"anchor"`
	UnknownBlockLowerLimit int `yaml:"unknown_block_lower_limit"`
	UnknownBlockCount      int `yaml:"unknown_block_count"`
}

// Tables is the immutable set of knowledge tables.
type Tables struct {
	layout Layout
	pins   map[string]PinEntry
}

type tablesFile struct {
	Layout Layout              `yaml:"layout"`
	Pins   map[string]PinEntry `yaml:"pins"`
}

// New builds Tables from in-memory values. The pins map is copied.
func New(layout Layout, pins map[string]PinEntry) (*Tables, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	t := &Tables{
		layout: layout,
		pins:   make(map[string]PinEntry, len(pins)),
	}
	t.layout.BlockStarts = append([]int(nil), layout.BlockStarts...)
	for id, entry := range pins {
		if entry.Anchor < 0 {
			return nil, fmt.Errorf("knowledge: pin %s: negative anchor %d", id, entry.Anchor)
		}
		if entry.UnknownBlockCount < 0 {
			return nil, fmt.Errorf("knowledge: pin %s: negative unknown_block_count %d", id, entry.UnknownBlockCount)
		}
		t.pins[id] = entry
	}
	return t, nil
}

// Parse reads YAML tables. Missing strides default to DefaultStride and
// DefaultUnknownBlockStride.
func Parse(r io.Reader) (*Tables, error) {
	f := tablesFile{
		Layout: Layout{
			Stride:             DefaultStride,
			UnknownBlockStride: DefaultUnknownBlockStride,
		},
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("knowledge: decode: %w", err)
	}
	return New(f.Layout, f.Pins)
}

// Load reads YAML tables from a file.
func Load(fsys afero.Fs, name string) (*Tables, error) {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read %s: %w", name, err)
	}
	t, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// Layout returns the block geometry.
func (t *Tables) Layout() Layout {
	l := t.layout
	l.BlockStarts = append([]int(nil), t.layout.BlockStarts...)
	return l
}

// Pin returns the entry for the given pin.
func (t *Tables) Pin(id string) (PinEntry, error) {
	entry, ok := t.pins[id]
	if !ok {
		return PinEntry{}, &UnknownPinError{Pin: id}
	}
	return entry, nil
}

// Has reports whether the pin has an entry.
func (t *Tables) Has(id string) bool {
	_, ok := t.pins[id]
	return ok
}

// Pins returns all pin identifiers in sorted order.
func (t *Tables) Pins() []string {
	ids := make([]string, 0, len(t.pins))
	for id := range t.pins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
