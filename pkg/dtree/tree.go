package dtree

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/xlab/treeprint"
)

// ErrFeatureCount is returned when Predict gets a vector of the wrong length.
var ErrFeatureCount = errors.New("dtree: feature vector length mismatch")

//go:embed iostd.tree
var defaultSource string

var loadDefault = sync.OnceValues(func() (*Tree, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	return p.ParseString("iostd.tree", defaultSource)
})

// Default returns the bundled I/O standard tree.
func Default() (*Tree, error) {
	return loadDefault()
}

// Tree is a compiled, immutable decision tree. It is safe for concurrent use.
type Tree struct {
	name     string
	features []int
	root     *node
}

type node struct {
	label string

	// split nodes
	offset     int
	index      int
	set, unset *node
}

func (n *node) leaf() bool {
	return n.set == nil
}

func compile(f *File) (*Tree, error) {
	index := make(map[int]int, len(f.Features))
	for i, off := range f.Features {
		if _, dup := index[off]; dup {
			return nil, fmt.Errorf("dtree: %s: feature %d listed twice", f.Pos, off)
		}
		index[off] = i
	}

	root, err := compileNode(f.Root, index)
	if err != nil {
		return nil, err
	}

	return &Tree{
		name:     f.Name,
		features: append([]int(nil), f.Features...),
		root:     root,
	}, nil
}

func compileNode(n *Node, index map[int]int) (*node, error) {
	if n.Label != nil {
		if *n.Label == "" {
			return nil, fmt.Errorf("dtree: %s: empty label", n.Pos)
		}
		return &node{label: *n.Label}, nil
	}

	w := n.When
	if w == nil {
		return nil, fmt.Errorf("dtree: %s: node has neither label nor split", n.Pos)
	}
	idx, ok := index[w.Offset]
	if !ok {
		return nil, fmt.Errorf("dtree: %s: split on offset %d which is not a feature", w.Pos, w.Offset)
	}
	set, err := compileNode(w.Set, index)
	if err != nil {
		return nil, err
	}
	unset, err := compileNode(w.Clear, index)
	if err != nil {
		return nil, err
	}
	return &node{offset: w.Offset, index: idx, set: set, unset: unset}, nil
}

// Name returns the tree name from the artifact.
func (t *Tree) Name() string {
	return t.name
}

// Features returns the nominal offsets the tree reads, in input order.
func (t *Tree) Features() []int {
	return append([]int(nil), t.features...)
}

// Predict returns the label for a feature vector laid out as Features.
func (t *Tree) Predict(bits []uint8) (string, error) {
	if len(bits) != len(t.features) {
		return "", fmt.Errorf("%w: got %d, tree %q needs %d", ErrFeatureCount, len(bits), t.name, len(t.features))
	}

	n := t.root
	for !n.leaf() {
		if bits[n.index] != 0 {
			n = n.set
		} else {
			n = n.unset
		}
	}
	return n.label, nil
}

// Labels returns every label the tree can produce, sorted.
func (t *Tree) Labels() []string {
	seen := make(map[string]struct{})
	var walk func(*node)
	walk = func(n *node) {
		if n.leaf() {
			seen[n.label] = struct{}{}
			return
		}
		walk(n.set)
		walk(n.unset)
	}
	walk(t.root)

	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// String renders the tree for display.
func (t *Tree) String() string {
	root := treeprint.NewWithRoot(fmt.Sprintf("%s %v", t.name, t.features))
	addBranch(root, t.root)
	return root.String()
}

func addBranch(b treeprint.Tree, n *node) {
	if n.leaf() {
		b.AddNode(n.label)
		return
	}
	addBranch(b.AddBranch(fmt.Sprintf("bit %+d = 1", n.offset)), n.set)
	addBranch(b.AddBranch(fmt.Sprintf("bit %+d = 0", n.offset)), n.unset)
}
