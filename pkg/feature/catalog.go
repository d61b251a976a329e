// Package feature turns a configuration image into per-pin feature vectors.
//
// A Catalog lists nominal bit offsets relative to a pin's anchor. For every
// offset the Extractor computes the pin's true bit address and reads it from
// the image, producing a Vector in catalog order. Consumers never index a
// Vector by position directly; they look offsets up by value through the
// catalog, which is why offsets must be unique.
package feature

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

var (
	// ErrOffsetNotFound is returned when a catalog lacks a required offset.
	ErrOffsetNotFound = errors.New("feature: offset not in catalog")
	// ErrDuplicateOffset is returned when a catalog lists an offset twice.
	ErrDuplicateOffset = errors.New("feature: duplicate offset in catalog")
)

// OffsetNotFoundError reports a lookup of an offset the catalog lacks.
type OffsetNotFoundError struct {
	Offset int
}

func (e *OffsetNotFoundError) Error() string {
	return fmt.Sprintf("feature: offset %d not in catalog", e.Offset)
}

func (e *OffsetNotFoundError) Unwrap() error { return ErrOffsetNotFound }

// defaultOffsets are the bits found to react to I/O standard, drive
// strength, pull-up, termination and differential settings, relative to the
// pull-up bit.
var defaultOffsets = []int{
	-512, -480, -448, -416, -384, -352, -320, -288,
	-256, -224, -192, -160, -128, -96, -64, -32,
	0, 256, 288, 512, 544, 864, 1504, 1536, 1600,
}

// Catalog is an ordered list of unique nominal offsets.
type Catalog struct {
	offsets []int
	index   map[int]int
}

// NewCatalog builds a catalog; the order of offsets is preserved.
func NewCatalog(offsets ...int) (*Catalog, error) {
	if dups := lo.FindDuplicates(offsets); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateOffset, dups)
	}

	c := &Catalog{
		offsets: append([]int(nil), offsets...),
		index:   make(map[int]int, len(offsets)),
	}
	for i, off := range offsets {
		c.index[off] = i
	}
	return c, nil
}

// DefaultCatalog returns the catalog of offsets the bundled classifier was
// built against.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultOffsets...)
	if err != nil {
		panic(err)
	}
	return c
}

// Offsets returns a copy of the offsets in catalog order.
func (c *Catalog) Offsets() []int {
	return append([]int(nil), c.offsets...)
}

// Len returns the number of offsets.
func (c *Catalog) Len() int {
	return len(c.offsets)
}

// IndexOf returns the position of offset in the catalog.
func (c *Catalog) IndexOf(offset int) (int, error) {
	idx, ok := c.index[offset]
	if !ok {
		return 0, &OffsetNotFoundError{Offset: offset}
	}
	return idx, nil
}

// IndexesOf returns the positions of offsets, in the order given.
func (c *Catalog) IndexesOf(offsets ...int) ([]int, error) {
	idxs := make([]int, len(offsets))
	for i, off := range offsets {
		idx, err := c.IndexOf(off)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}
	return idxs, nil
}

// Contains reports whether offset is part of the catalog.
func (c *Catalog) Contains(offset int) bool {
	_, ok := c.index[offset]
	return ok
}
