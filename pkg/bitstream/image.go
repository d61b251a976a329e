package bitstream

import (
	"bytes"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// DefaultMinSize is the smallest image, in bytes, that Load accepts.
const DefaultMinSize = 4

// Image is an immutable, bit-addressable configuration image.
type Image struct {
	data []byte
	hash uint64
}

// BitChange describes a single bit that differs between two images.
type BitChange struct {
	Addr int  // absolute bit address
	A    bool // value in the receiver
	B    bool // value in the other image
}

// Region restricts a diff to the configuration area of an image.
type Region struct {
	SkipHeadBytes int // changes in the first N bytes are ignored
	SkipTailBytes int // changes in the last N bytes are ignored
}

// DefaultRegion skips the container header and the trailing checksum area,
// both of which change on every compile.
func DefaultRegion() Region {
	return Region{SkipHeadBytes: 4000, SkipTailBytes: 10000}
}

// AnchorRegion is the region used when locating pin anchors from drive
// strength samples.
func AnchorRegion() Region {
	return Region{SkipHeadBytes: 4096, SkipTailBytes: 4096}
}

type options struct {
	minSize int
}

// Option configures Load.
type Option func(*options)

// WithMinSize overrides the minimum accepted image size in bytes.
func WithMinSize(n int) Option {
	return func(o *options) {
		o.minSize = n
	}
}

// Load creates an Image from a raw byte buffer. The buffer is copied, so the
// caller may reuse it. Only a lower bound on the size is enforced.
func Load(data []byte, opts ...Option) (*Image, error) {
	o := options{minSize: DefaultMinSize}
	for _, opt := range opts {
		opt(&o)
	}

	if len(data) == 0 || len(data) < o.minSize {
		return nil, &FormatError{Size: len(data), MinSize: o.minSize}
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	return &Image{
		data: buf,
		hash: xxhash.Sum64(buf),
	}, nil
}

// Len returns the number of addressable bits.
func (img *Image) Len() int {
	return len(img.data) * 8
}

// Size returns the image size in bytes.
func (img *Image) Size() int {
	return len(img.data)
}

// Fingerprint returns a content hash of the image, stable across loads.
func (img *Image) Fingerprint() uint64 {
	return img.hash
}

// Bytes returns a copy of the byte-granular view.
func (img *Image) Bytes() []byte {
	out := make([]byte, len(img.data))
	copy(out, img.data)
	return out
}

// BitAt returns the bit (0 or 1) at the given absolute address.
func (img *Image) BitAt(addr int) (uint8, error) {
	if addr < 0 || addr >= img.Len() {
		return 0, &OutOfRangeError{Addr: addr, Len: img.Len()}
	}
	return img.bit(addr), nil
}

// BitsAt returns the bits at the given addresses, in input order. The first
// out-of-range address aborts the read.
func (img *Image) BitsAt(addrs []int) ([]uint8, error) {
	out := make([]uint8, len(addrs))
	for i, addr := range addrs {
		b, err := img.BitAt(addr)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func (img *Image) bit(addr int) uint8 {
	return (img.data[addr>>3] >> (7 - uint(addr&7))) & 1
}

// Diff returns the ascending bit addresses at which the two images differ.
func (img *Image) Diff(other *Image) ([]int, error) {
	changes, err := img.changes(other, Region{})
	if err != nil {
		return nil, err
	}
	addrs := make([]int, len(changes))
	for i, c := range changes {
		addrs[i] = c.Addr
	}
	return addrs, nil
}

// Changes returns every differing bit inside region together with the value
// it holds in each image, ordered by address.
func (img *Image) Changes(other *Image, region Region) ([]BitChange, error) {
	return img.changes(other, region)
}

func (img *Image) changes(other *Image, region Region) ([]BitChange, error) {
	if img.Len() != other.Len() {
		return nil, &IncompatibleSizeError{Len: img.Len(), OtherLen: other.Len()}
	}

	start := max(region.SkipHeadBytes, 0)
	end := len(img.data) - max(region.SkipTailBytes, 0)

	var out []BitChange
	for i := start; i < end; i++ {
		x := img.data[i] ^ other.data[i]
		for x != 0 {
			// highest set bit first keeps addresses ascending
			shift := 7 - bits.LeadingZeros8(x)
			addr := i*8 + (7 - shift)
			out = append(out, BitChange{
				Addr: addr,
				A:    img.bit(addr) == 1,
				B:    other.bit(addr) == 1,
			})
			x &^= 1 << uint(shift)
		}
	}
	return out, nil
}

// FirstChange returns the lowest differing bit inside region whose byte
// differs in that bit alone. Bytes with more than one flipped bit are
// skipped.
func (img *Image) FirstChange(other *Image, region Region) (BitChange, error) {
	if img.Len() != other.Len() {
		return BitChange{}, &IncompatibleSizeError{Len: img.Len(), OtherLen: other.Len()}
	}

	start := max(region.SkipHeadBytes, 0)
	end := len(img.data) - max(region.SkipTailBytes, 0)
	for i := start; i < end; i++ {
		x := img.data[i] ^ other.data[i]
		if bits.OnesCount8(x) != 1 {
			continue
		}
		addr := i*8 + bits.LeadingZeros8(x)
		return BitChange{
			Addr: addr,
			A:    img.bit(addr) == 1,
			B:    other.bit(addr) == 1,
		}, nil
	}
	return BitChange{}, ErrNoChange
}

// FindByteMarker returns the byte offsets at which pattern occurs in the
// byte view, overlapping matches included. An empty pattern matches nowhere.
func (img *Image) FindByteMarker(pattern []byte) []int {
	if len(pattern) == 0 {
		return nil
	}

	var offsets []int
	pos := 0
	for pos <= len(img.data)-len(pattern) {
		idx := bytes.Index(img.data[pos:], pattern)
		if idx < 0 {
			break
		}
		offsets = append(offsets, pos+idx)
		pos += idx + 1
	}
	return offsets
}
