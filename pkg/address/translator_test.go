package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceJIC/pkg/knowledge"
)

func newTestTranslator(t *testing.T, layout knowledge.Layout) *Translator {
	t.Helper()
	tables, err := knowledge.New(layout, map[string]knowledge.PinEntry{
		"PIN_A6": {Anchor: 7000, UnknownBlockLowerLimit: 5000, UnknownBlockCount: 2},
		"PIN_B7": {Anchor: 300, UnknownBlockLowerLimit: 1 << 30, UnknownBlockCount: 4},
	})
	require.NoError(t, err)
	return NewTranslator(tables)
}

var testLayout = knowledge.Layout{
	BlockBoundary:      1000,
	Stride:             64,
	UnknownBlockStride: 1344,
}

func TestToNominal(t *testing.T) {
	tr := newTestTranslator(t, testLayout)

	tests := []struct {
		name string
		pin  string
		addr int
		want int
	}{
		{name: "below first boundary", pin: "PIN_A6", addr: 500, want: 500},
		{name: "on boundary", pin: "PIN_A6", addr: 1000, want: 1000},
		{name: "one block", pin: "PIN_A6", addr: 1065, want: 1001},
		{name: "below unknown limit", pin: "PIN_A6", addr: 4500, want: 4500 - 4*64},
		{name: "above unknown limit", pin: "PIN_A6", addr: 10000, want: 10000 - 9*64 - 2*1344},
		{name: "limit never reached", pin: "PIN_B7", addr: 10000, want: 10000 - 9*64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.ToNominal(tt.addr, tt.pin)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToTrue(t *testing.T) {
	tr := newTestTranslator(t, testLayout)

	tests := []struct {
		name    string
		pin     string
		nominal int
		want    int
	}{
		{name: "below first boundary", pin: "PIN_A6", nominal: 500, want: 500},
		{name: "last bit before boundary", pin: "PIN_A6", nominal: 1000, want: 1000},
		{name: "first bit after boundary", pin: "PIN_A6", nominal: 1001, want: 1065},
		// 1950 + 64 crosses 2000, which the second pass picks up
		{name: "pushed across boundary", pin: "PIN_B7", nominal: 1950, want: 2078},
		{name: "above unknown limit", pin: "PIN_A6", nominal: 6736, want: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.ToTrue(tt.nominal, tt.pin)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tr := newTestTranslator(t, testLayout)

	for _, pin := range []string{"PIN_A6", "PIN_B7"} {
		for nominal := 0; nominal < 10000; nominal += 7 {
			addr, err := tr.ToTrue(nominal, pin)
			require.NoError(t, err, "pin %s nominal %d", pin, nominal)

			back, err := tr.ToNominal(addr, pin)
			require.NoError(t, err)
			assert.Equal(t, nominal, back, "pin %s nominal %d", pin, nominal)

			again, err := tr.ToTrue(back, pin)
			require.NoError(t, err)
			assert.Equal(t, addr, again, "pin %s true %d", pin, addr)
		}
	}
}

func TestRoundTripMeasuredStarts(t *testing.T) {
	layout := knowledge.Layout{
		BlockStarts:        []int{1200, 2500, 2600, 9000},
		Stride:             64,
		UnknownBlockStride: 1344,
	}
	tr := newTestTranslator(t, layout)

	for nominal := 0; nominal < 12000; nominal += 13 {
		addr, err := tr.ToTrue(nominal, "PIN_A6")
		require.NoError(t, err, "nominal %d", nominal)
		back, err := tr.ToNominal(addr, "PIN_A6")
		require.NoError(t, err)
		assert.Equal(t, nominal, back, "nominal %d", nominal)
	}
}

func TestToTrueNotConverged(t *testing.T) {
	// a stride close to the block size needs more passes than are allowed
	tr := newTestTranslator(t, knowledge.Layout{BlockBoundary: 100, Stride: 64})

	_, err := tr.ToTrue(1000, "PIN_B7")
	assert.ErrorIs(t, err, ErrNotConverged)
}

func TestUnknownPin(t *testing.T) {
	tr := newTestTranslator(t, testLayout)

	_, err := tr.ToNominal(100, "PIN_Z1")
	assert.ErrorIs(t, err, knowledge.ErrUnknownPin)

	_, err = tr.ToTrue(100, "PIN_Z1")
	assert.ErrorIs(t, err, knowledge.ErrUnknownPin)

	_, err = tr.ToTrueAll([]int{1, 2}, "PIN_Z1")
	assert.ErrorIs(t, err, knowledge.ErrUnknownPin)
}

func TestToTrueAll(t *testing.T) {
	tr := newTestTranslator(t, testLayout)

	got, err := tr.ToTrueAll([]int{1001, 500, 6736}, "PIN_A6")
	require.NoError(t, err)
	assert.Equal(t, []int{1065, 500, 10000}, got)
}
