package dtree

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallTree = `
# two level tree
tree "small" {
  features [-448, 512, 864];
  when 864 {
    when 512 { label "SSTL-15 CLASS I" } else { label "SSTL-15" }
  } else {
    label "2.5 V"
  }
}
`

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser()
	require.NoError(t, err)
	return p
}

func TestParseSmallTree(t *testing.T) {
	tree, err := newTestParser(t).ParseString("small.tree", smallTree)
	require.NoError(t, err)

	assert.Equal(t, "small", tree.Name())
	assert.Equal(t, []int{-448, 512, 864}, tree.Features())
	assert.Equal(t, []string{"2.5 V", "SSTL-15", "SSTL-15 CLASS I"}, tree.Labels())

	tests := []struct {
		bits []uint8
		want string
	}{
		{bits: []uint8{0, 0, 0}, want: "2.5 V"},
		{bits: []uint8{1, 1, 0}, want: "2.5 V"},
		{bits: []uint8{0, 0, 1}, want: "SSTL-15"},
		{bits: []uint8{0, 1, 1}, want: "SSTL-15 CLASS I"},
	}
	for _, tt := range tests {
		got, err := tree.Predict(tt.bits)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "bits %v", tt.bits)
	}
}

func TestPredictLengthMismatch(t *testing.T) {
	tree, err := newTestParser(t).ParseString("small.tree", smallTree)
	require.NoError(t, err)

	_, err = tree.Predict([]uint8{1, 0})
	assert.ErrorIs(t, err, ErrFeatureCount)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name:  "syntax",
			input: `tree "x" { features [1]; when 1 { label "a" } }`,
		},
		{
			name:    "unknown split offset",
			input:   `tree "x" { features [1, 2]; when 3 { label "a" } else { label "b" } }`,
			wantMsg: "not a feature",
		},
		{
			name:    "duplicate feature",
			input:   `tree "x" { features [1, 1]; label "a" }`,
			wantMsg: "listed twice",
		},
		{
			name:    "empty label",
			input:   `tree "x" { features [1]; when 1 { label "" } else { label "b" } }`,
			wantMsg: "label",
		},
		{
			name:  "no features",
			input: `tree "x" { features []; label "a" }`,
		},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseString("bad.tree", tt.input)
			require.Error(t, err)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/models/small.tree", []byte(smallTree), 0o644))

	p := newTestParser(t)
	tree, err := p.ParseFile(fs, "/models/small.tree")
	require.NoError(t, err)
	assert.Equal(t, "small", tree.Name())

	_, err = p.ParseFile(fs, "/models/missing.tree")
	assert.Error(t, err)
}

func TestDefaultTree(t *testing.T) {
	tree, err := Default()
	require.NoError(t, err)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, tree, again)

	features := tree.Features()
	require.Len(t, features, 11)

	bits := func(set ...int) []uint8 {
		out := make([]uint8, len(features))
		for _, off := range set {
			for i, f := range features {
				if f == off {
					out[i] = 1
				}
			}
		}
		return out
	}

	tests := []struct {
		set  []int
		want string
	}{
		{set: nil, want: "2.5 V"},
		{set: []int{864, 512}, want: "SSTL-15 CLASS I"},
		{set: []int{864, 512, -96}, want: "SSTL-15 CLASS II"},
		{set: []int{864}, want: "SSTL-15"},
		{set: []int{864, 1600}, want: "DIFFERENTIAL 1.5-V SSTL"},
		{set: []int{256}, want: "LVDS"},
		{set: []int{-352}, want: "1.8 V"},
		{set: []int{-448, -416}, want: "3.0-V LVTTL"},
		{set: []int{-32}, want: "1.2 V"},
	}
	for _, tt := range tests {
		got, err := tree.Predict(bits(tt.set...))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "set %v", tt.set)
	}
}

func TestTreeString(t *testing.T) {
	tree, err := newTestParser(t).ParseString("small.tree", smallTree)
	require.NoError(t, err)

	out := tree.String()
	assert.True(t, strings.HasPrefix(out, "small [-448 512 864]"))
	for _, want := range []string{"bit +864 = 1", "bit +864 = 0", "bit +512 = 1", "SSTL-15 CLASS I", "2.5 V"} {
		assert.Contains(t, out, want)
	}
}

func TestCompileEmptyNode(t *testing.T) {
	f := &File{Name: "x", Features: []int{1}, Root: &Node{}}
	_, err := compile(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither label nor split")

	f.Root = &Node{When: &When{Offset: 1, Set: &Node{}, Clear: &Node{}}}
	_, err = compile(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither label nor split")
}
