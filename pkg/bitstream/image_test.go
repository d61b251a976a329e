package bitstream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// patternImage returns an image whose byte i is i*37+11, a pattern with a
// mix of set and clear bits in every byte.
func patternImage(t *testing.T, size int) *Image {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i*37 + 11)
	}
	img, err := Load(data)
	require.NoError(t, err)
	return img
}

func TestLoadRejectsShortBuffers(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		opts []Option
	}{
		{name: "nil", data: nil},
		{name: "empty", data: []byte{}},
		{name: "below default minimum", data: []byte{1, 2, 3}},
		{name: "below custom minimum", data: make([]byte, 15), opts: []Option{WithMinSize(16)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.data, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)

			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, len(tt.data), fe.Size)
		})
	}
}

func TestLoadCopiesBuffer(t *testing.T) {
	data := []byte{0xFF, 0x00, 0xFF, 0x00}
	img, err := Load(data)
	require.NoError(t, err)

	data[0] = 0x00
	b, err := img.BitAt(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), b)
	assert.Equal(t, 32, img.Len())
	assert.Equal(t, 4, img.Size())
}

func TestBitAtIsMSBFirst(t *testing.T) {
	img, err := Load([]byte{0x80, 0x01, 0x00, 0xA5})
	require.NoError(t, err)

	want := map[int]uint8{
		0: 1, 1: 0, 7: 0,
		8: 0, 15: 1,
		16: 0,
		24: 1, 25: 0, 26: 1, 27: 0, 28: 0, 29: 1, 30: 0, 31: 1,
	}
	for addr, bit := range want {
		got, err := img.BitAt(addr)
		require.NoError(t, err)
		assert.Equal(t, bit, got, "addr %d", addr)
	}
}

func TestBitAtOutOfRange(t *testing.T) {
	img := patternImage(t, 8)

	for _, addr := range []int{-1, 64, 1 << 20} {
		_, err := img.BitAt(addr)
		assert.ErrorIs(t, err, ErrOutOfRange, "addr %d", addr)

		var oe *OutOfRangeError
		require.True(t, errors.As(err, &oe))
		assert.Equal(t, addr, oe.Addr)
		assert.Equal(t, 64, oe.Len)
	}
}

func TestBitsAtPreservesOrder(t *testing.T) {
	img, err := Load([]byte{0xF0, 0x0F, 0x00, 0x00})
	require.NoError(t, err)

	got, err := img.BitsAt([]int{15, 0, 7, 3, 12})
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 1, 0, 1, 1}, got)

	_, err = img.BitsAt([]int{0, 32})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestDiffAgainstSelfIsEmpty(t *testing.T) {
	img := patternImage(t, 256)

	diff, err := img.Diff(img)
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestDiffIsSymmetric(t *testing.T) {
	a := patternImage(t, 64)
	data := a.Bytes()
	data[0] ^= 0x81
	data[10] ^= 0x10
	data[63] ^= 0x01
	b, err := Load(data)
	require.NoError(t, err)

	ab, err := a.Diff(b)
	require.NoError(t, err)
	ba, err := b.Diff(a)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 7, 83, 511}, ab)
	assert.ElementsMatch(t, ab, ba)
}

func TestDiffIncompatibleSize(t *testing.T) {
	a := patternImage(t, 16)
	b := patternImage(t, 17)

	_, err := a.Diff(b)
	assert.ErrorIs(t, err, ErrIncompatibleSize)

	var se *IncompatibleSizeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 128, se.Len)
	assert.Equal(t, 136, se.OtherLen)
}

func TestChangesRegion(t *testing.T) {
	a, err := Load(make([]byte, 32))
	require.NoError(t, err)

	data := make([]byte, 32)
	data[1] = 0x40  // header
	data[16] = 0x02 // configuration
	data[30] = 0xFF // checksum
	b, err := Load(data)
	require.NoError(t, err)

	all, err := a.Changes(b, Region{})
	require.NoError(t, err)
	assert.Len(t, all, 10)

	changes, err := a.Changes(b, Region{SkipHeadBytes: 4, SkipTailBytes: 4})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, BitChange{Addr: 16*8 + 6, A: false, B: true}, changes[0])
}

func TestFirstChange(t *testing.T) {
	base := make([]byte, 32)
	base[20] = 0xF0

	tests := []struct {
		name    string
		edit    func(d []byte)
		want    BitChange
		wantErr error
	}{
		{
			name: "single bit",
			edit: func(d []byte) { d[12] = 0x10 },
			want: BitChange{Addr: 12*8 + 3, A: false, B: true},
		},
		{
			name: "cleared bit",
			edit: func(d []byte) { d[20] = 0x70 },
			want: BitChange{Addr: 20 * 8, A: true, B: false},
		},
		{
			name: "multi bit bytes skipped",
			edit: func(d []byte) { d[8] = 0x03; d[12] = 0x01 },
			want: BitChange{Addr: 12*8 + 7, A: false, B: true},
		},
		{
			name:    "head and tail ignored",
			edit:    func(d []byte) { d[1] = 0x80; d[30] = 0x80 },
			wantErr: ErrNoChange,
		},
		{
			name:    "no change",
			edit:    func(d []byte) {},
			wantErr: ErrNoChange,
		},
	}

	a, err := Load(base)
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]byte(nil), base...)
			tt.edit(data)
			b, err := Load(data)
			require.NoError(t, err)

			got, err := a.FirstChange(b, Region{SkipHeadBytes: 4, SkipTailBytes: 4})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	short, err := Load(make([]byte, 16))
	require.NoError(t, err)
	_, err = a.FirstChange(short, AnchorRegion())
	assert.ErrorIs(t, err, ErrIncompatibleSize)
}

func TestFindByteMarker(t *testing.T) {
	data := []byte{
		0x00, 0x6A, 0x6A, 0x6A, 0x6A, 0x6A, 0x11,
		0x6A, 0x6A, 0x6A, 0x6A, 0x00, 0x00,
	}
	img, err := Load(data)
	require.NoError(t, err)

	marker := []byte{0x6A, 0x6A, 0x6A, 0x6A}
	assert.Equal(t, []int{1, 2, 7}, img.FindByteMarker(marker))
	assert.Nil(t, img.FindByteMarker([]byte{0x42}))
	assert.Nil(t, img.FindByteMarker(nil))
}

func TestFingerprint(t *testing.T) {
	a := patternImage(t, 128)
	b := patternImage(t, 128)
	c := patternImage(t, 129)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}
