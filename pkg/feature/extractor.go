package feature

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceJIC/pkg/address"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/bitstream"
)

// Vector holds one bit per catalog offset, in catalog order.
type Vector []uint8

// At returns the bit stored for offset.
func (v Vector) At(c *Catalog, offset int) (uint8, error) {
	idx, err := c.IndexOf(offset)
	if err != nil {
		return 0, err
	}
	return v[idx], nil
}

// Pick returns the bits for offsets, in the order given.
func (v Vector) Pick(c *Catalog, offsets []int) (Vector, error) {
	idxs, err := c.IndexesOf(offsets...)
	if err != nil {
		return nil, err
	}
	out := make(Vector, len(idxs))
	for i, idx := range idxs {
		out[i] = v[idx]
	}
	return out, nil
}

// Any reports whether at least one bit is set.
func (v Vector) Any() bool {
	for _, b := range v {
		if b != 0 {
			return true
		}
	}
	return false
}

// Equal reports whether v holds exactly the given bits.
func (v Vector) Equal(bits ...uint8) bool {
	if len(v) != len(bits) {
		return false
	}
	for i := range v {
		if v[i] != bits[i] {
			return false
		}
	}
	return true
}

// Extractor reads feature vectors for pins.
type Extractor struct {
	tr *address.Translator
}

// NewExtractor creates an Extractor using tr for address translation.
func NewExtractor(tr *address.Translator) *Extractor {
	return &Extractor{tr: tr}
}

// Addresses returns the true image addresses of the catalog offsets for pin.
// The anchor is first moved into nominal space so that the offsets, which
// are nominal distances, can be added to it.
func (e *Extractor) Addresses(pin string, c *Catalog) ([]int, error) {
	anchor, err := e.nominalAnchor(pin)
	if err != nil {
		return nil, err
	}

	addrs := make([]int, c.Len())
	for i, off := range c.offsets {
		addr, err := e.tr.ToTrue(anchor+off, pin)
		if err != nil {
			return nil, fmt.Errorf("feature: pin %s offset %d: %w", pin, off, err)
		}
		addrs[i] = addr
	}
	return addrs, nil
}

// Extract reads the feature vector of pin from img. Any translation or range
// error invalidates the whole vector.
func (e *Extractor) Extract(img *bitstream.Image, pin string, c *Catalog) (Vector, error) {
	addrs, err := e.Addresses(pin, c)
	if err != nil {
		return nil, err
	}
	bits, err := img.BitsAt(addrs)
	if err != nil {
		return nil, fmt.Errorf("feature: pin %s: %w", pin, err)
	}
	return Vector(bits), nil
}

// RelativeOffsets maps true addresses, typically the result of diffing two
// samples of pin, to nominal offsets relative to the pin's anchor. Offsets
// found this way on one pin apply to every other pin.
func (e *Extractor) RelativeOffsets(pin string, addrs []int) ([]int, error) {
	anchor, err := e.nominalAnchor(pin)
	if err != nil {
		return nil, err
	}

	out := make([]int, len(addrs))
	for i, addr := range addrs {
		nominal, err := e.tr.ToNominal(addr, pin)
		if err != nil {
			return nil, err
		}
		out[i] = nominal - anchor
	}
	return out, nil
}

func (e *Extractor) nominalAnchor(pin string) (int, error) {
	entry, err := e.tr.Tables().Pin(pin)
	if err != nil {
		return 0, err
	}
	return e.tr.ToNominal(entry.Anchor, pin)
}
