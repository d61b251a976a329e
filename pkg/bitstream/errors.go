package bitstream

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is returned for empty or truncated images.
	ErrFormat = errors.New("bitstream: malformed image")
	// ErrOutOfRange is returned when a bit address is outside the image.
	ErrOutOfRange = errors.New("bitstream: bit address out of range")
	// ErrIncompatibleSize is returned when diffing images of different lengths.
	ErrIncompatibleSize = errors.New("bitstream: incompatible image sizes")
	// ErrNoChange is returned by FirstChange when no byte differs in exactly
	// one bit.
	ErrNoChange = errors.New("bitstream: no single-bit change")
)

// FormatError reports an image that cannot be used for analysis.
type FormatError struct {
	Size    int // size of the rejected buffer in bytes
	MinSize int // minimum accepted size in bytes
}

func (e *FormatError) Error() string {
	if e.Size == 0 {
		return "bitstream: malformed image: empty buffer"
	}
	return fmt.Sprintf("bitstream: malformed image: %d bytes, need at least %d", e.Size, e.MinSize)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// OutOfRangeError reports a bit address outside [0, Len).
type OutOfRangeError struct {
	Addr int
	Len  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("bitstream: bit address %d out of range [0, %d)", e.Addr, e.Len)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// IncompatibleSizeError reports two images whose bit lengths differ.
type IncompatibleSizeError struct {
	Len      int
	OtherLen int
}

func (e *IncompatibleSizeError) Error() string {
	return fmt.Sprintf("bitstream: cannot diff images of %d and %d bits", e.Len, e.OtherLen)
}

func (e *IncompatibleSizeError) Unwrap() error { return ErrIncompatibleSize }
