package knowledge

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tablesYAML = `
layout:
  block_boundary: 1000
pins:
  PIN_A6:
    anchor: 813313
    unknown_block_lower_limit: 790000
    unknown_block_count: 3
  PIN_B7:
    anchor: 4100
    unknown_block_lower_limit: 0
    unknown_block_count: 0
`

func TestParseDefaults(t *testing.T) {
	tables, err := Parse(strings.NewReader(tablesYAML))
	require.NoError(t, err)

	layout := tables.Layout()
	assert.Equal(t, 1000, layout.BlockBoundary)
	assert.Equal(t, DefaultStride, layout.Stride)
	assert.Equal(t, DefaultUnknownBlockStride, layout.UnknownBlockStride)

	entry, err := tables.Pin("PIN_A6")
	require.NoError(t, err)
	assert.Equal(t, PinEntry{Anchor: 813313, UnknownBlockLowerLimit: 790000, UnknownBlockCount: 3}, entry)

	assert.Equal(t, []string{"PIN_A6", "PIN_B7"}, tables.Pins())
	assert.True(t, tables.Has("PIN_B7"))
	assert.False(t, tables.Has("PIN_C1"))
}

func TestPinUnknown(t *testing.T) {
	tables, err := Parse(strings.NewReader(tablesYAML))
	require.NoError(t, err)

	_, err = tables.Pin("PIN_Z99")
	assert.ErrorIs(t, err, ErrUnknownPin)
	assert.Contains(t, err.Error(), "PIN_Z99")
}

func TestParseRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty", yaml: ""},
		{name: "unknown field", yaml: "layout:\n  block_boundary: 10\n  bogus: 1\n"},
		{name: "missing boundary", yaml: "pins: {}\n"},
		{name: "stride too large", yaml: "layout:\n  block_boundary: 64\n"},
		{name: "unsorted starts", yaml: "layout:\n  block_starts: [300, 200]\n"},
		{name: "negative anchor", yaml: "layout:\n  block_boundary: 1000\npins:\n  P1:\n    anchor: -5\n"},
		{name: "negative count", yaml: "layout:\n  block_boundary: 1000\npins:\n  P1:\n    anchor: 5\n    unknown_block_count: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLayoutCrossings(t *testing.T) {
	boundary := Layout{BlockBoundary: 1000, Stride: 64}
	tests := []struct {
		addr int
		want int
	}{
		{addr: -5, want: 0},
		{addr: 0, want: 0},
		{addr: 1000, want: 0},
		{addr: 1001, want: 1},
		{addr: 2000, want: 1},
		{addr: 2001, want: 2},
		{addr: 999999, want: 999},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, boundary.Crossings(tt.addr), "addr %d", tt.addr)
	}

	starts := Layout{BlockStarts: []int{100, 250, 900}, Stride: 64}
	assert.Equal(t, 0, starts.Crossings(100))
	assert.Equal(t, 1, starts.Crossings(101))
	assert.Equal(t, 2, starts.Crossings(251))
	assert.Equal(t, 3, starts.Crossings(5000))
}

func TestNewCopiesInputs(t *testing.T) {
	starts := []int{100, 200}
	pins := map[string]PinEntry{"P1": {Anchor: 10}}

	tables, err := New(Layout{BlockStarts: starts}, pins)
	require.NoError(t, err)

	starts[0] = 150
	pins["P2"] = PinEntry{Anchor: 20}

	assert.Equal(t, []int{100, 200}, tables.Layout().BlockStarts)
	assert.False(t, tables.Has("P2"))
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/jic/knowledge.yaml", []byte(tablesYAML), 0o644))

	tables, err := Load(fs, "/etc/jic/knowledge.yaml")
	require.NoError(t, err)
	assert.Len(t, tables.Pins(), 2)

	_, err = Load(fs, "/etc/jic/missing.yaml")
	assert.Error(t, err)
}
