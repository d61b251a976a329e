// Package address converts between true bit addresses in a configuration
// image and the nominal address space shared by all pins.
//
// The image is made of fixed-size blocks. Every block boundary inserts
// Stride bits that carry no pin configuration, and below a pin-specific
// threshold a pin-specific number of reserved blocks of UnknownBlockStride
// bits each is interleaved. Removing both yields the nominal space, in which
// the offset between a pin's anchor and any of its configuration bits is the
// same for every pin.
package address

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceJIC/pkg/knowledge"
)

// RefinePasses is the number of boundary re-evaluations ToTrue performs.
// Adding the stride back can push an address across further boundaries, so
// the crossing count is recomputed against the corrected address.
const RefinePasses = 3

// ErrNotConverged is returned when the fixed refinement passes did not reach
// a stable address.
var ErrNotConverged = errors.New("address: boundary correction did not converge")

// Translator maps addresses for the pins in a knowledge table.
type Translator struct {
	tables *knowledge.Tables
	layout knowledge.Layout
}

// NewTranslator creates a Translator backed by tables.
func NewTranslator(tables *knowledge.Tables) *Translator {
	return &Translator{
		tables: tables,
		layout: tables.Layout(),
	}
}

// Tables returns the knowledge tables the translator reads.
func (t *Translator) Tables() *knowledge.Tables {
	return t.tables
}

// ToNominal maps a true image address of pin into nominal space. Used when
// turning diff results into offsets that generalize across pins.
func (t *Translator) ToNominal(addr int, pin string) (int, error) {
	entry, err := t.tables.Pin(pin)
	if err != nil {
		return 0, err
	}

	addr -= t.layout.Stride * t.layout.Crossings(addr)
	if addr > entry.UnknownBlockLowerLimit {
		addr -= entry.UnknownBlockCount * t.layout.UnknownBlockStride
	}
	return addr, nil
}

// ToTrue maps a nominal address of pin to its true image address. It is the
// inverse of ToNominal. The result is not range checked against any image.
func (t *Translator) ToTrue(nominal int, pin string) (int, error) {
	entry, err := t.tables.Pin(pin)
	if err != nil {
		return 0, err
	}

	addr := nominal
	if addr > entry.UnknownBlockLowerLimit {
		addr += entry.UnknownBlockCount * t.layout.UnknownBlockStride
	}

	est := addr
	for i := 0; i < RefinePasses; i++ {
		est = addr + t.layout.Stride*t.layout.Crossings(est)
	}
	if check := addr + t.layout.Stride*t.layout.Crossings(est); check != est {
		return 0, fmt.Errorf("%w: pin %s nominal %d (%d vs %d)", ErrNotConverged, pin, nominal, est, check)
	}
	return est, nil
}

// ToTrueAll translates a list of nominal addresses for one pin, stopping at
// the first failure.
func (t *Translator) ToTrueAll(nominals []int, pin string) ([]int, error) {
	out := make([]int, len(nominals))
	for i, n := range nominals {
		addr, err := t.ToTrue(n, pin)
		if err != nil {
			return nil, err
		}
		out[i] = addr
	}
	return out, nil
}
