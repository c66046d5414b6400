// Package hashtree builds binary Merkle hash trees over ordered leaf
// digests and reduces them to per-leaf authenticated paths. Nodes live in
// a flat arena addressed by integer indices; parent links are indices,
// never pointers, so the owning direction is acyclic by construction.
package hashtree

import (
	"bytes"
	"fmt"

	"ervault/internal/domain"
)

const none = -1

type node struct {
	digest []byte
	level  int
	leaf   bool
	left   int
	right  int
	parent int
}

// Tree is an immutable hash tree: level 0 holds the leaves in input
// order, each higher level pairs adjacent nodes left-to-right, and an
// unpaired trailing node is promoted unchanged. Identical leaf sequences
// always produce identical trees.
type Tree struct {
	algorithm string
	nodes     []node
	levels    [][]int
	root      int
}

// Build constructs a tree from a non-empty ordered sequence of leaf
// digests using the given combiner. The combiner is applied with the left
// and right operands in pairing order; it is not assumed commutative.
func Build(c domain.Combiner, leaves [][]byte) (*Tree, error) {
	if c == nil {
		return nil, fmt.Errorf("combiner is required")
	}
	if len(leaves) == 0 {
		return nil, domain.ErrEmptyLeaves
	}

	t := &Tree{
		algorithm: c.Algorithm(),
		nodes:     make([]node, 0, 2*len(leaves)),
	}

	level := make([]int, 0, len(leaves))
	for _, leaf := range leaves {
		id := t.addNode(node{
			digest: append([]byte(nil), leaf...),
			level:  0,
			leaf:   true,
			left:   none,
			right:  none,
			parent: none,
		})
		level = append(level, id)
	}
	t.levels = append(t.levels, level)

	for len(level) > 1 {
		next := make([]int, 0, (len(level)+1)/2)
		depth := len(t.levels)
		for i := 0; i < len(level); i += 2 {
			if i+1 >= len(level) {
				// Trailing node without a partner moves up unchanged.
				next = append(next, level[i])
				continue
			}
			left, right := level[i], level[i+1]
			id := t.addNode(node{
				digest: c.Combine(t.nodes[left].digest, t.nodes[right].digest, false),
				level:  depth,
				left:   left,
				right:  right,
				parent: none,
			})
			t.nodes[left].parent = id
			t.nodes[right].parent = id
			next = append(next, id)
		}
		t.levels = append(t.levels, next)
		level = next
	}

	t.root = level[0]
	return t, nil
}

func (t *Tree) addNode(n node) int {
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

// Algorithm returns the identifier of the combiner the tree was built with.
func (t *Tree) Algorithm() string {
	return t.algorithm
}

// RootDigest returns a copy of the root digest.
func (t *Tree) RootDigest() []byte {
	return append([]byte(nil), t.nodes[t.root].digest...)
}

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int {
	return len(t.levels[0])
}

// LeafDigest returns a copy of the digest of the leaf at the given index.
func (t *Tree) LeafDigest(index int) ([]byte, error) {
	if index < 0 || index >= len(t.levels[0]) {
		return nil, fmt.Errorf("%w: leaf index %d out of range", domain.ErrNotFound, index)
	}
	return append([]byte(nil), t.nodes[t.levels[0][index]].digest...), nil
}

// Depth returns the number of pairing levels above the leaves.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

// LeafIndexOf locates a leaf by digest value and returns the index of the
// first match. Digest values can collide across positions; callers that
// know the position should reduce by index instead.
func (t *Tree) LeafIndexOf(digest []byte) (int, error) {
	for i, id := range t.levels[0] {
		if bytes.Equal(t.nodes[id].digest, digest) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no leaf with digest %x", domain.ErrNotFound, digest)
}

// NodeView is a read-only cursor over tree topology, for rendering.
type NodeView struct {
	t  *Tree
	id int
}

// Root returns a view positioned at the root node.
func (t *Tree) Root() NodeView {
	return NodeView{t: t, id: t.root}
}

func (v NodeView) Digest() []byte {
	return append([]byte(nil), v.t.nodes[v.id].digest...)
}

func (v NodeView) Leaf() bool {
	return v.t.nodes[v.id].leaf
}

func (v NodeView) Left() (NodeView, bool) {
	id := v.t.nodes[v.id].left
	if id == none {
		return NodeView{}, false
	}
	return NodeView{t: v.t, id: id}, true
}

func (v NodeView) Right() (NodeView, bool) {
	id := v.t.nodes[v.id].right
	if id == none {
		return NodeView{}, false
	}
	return NodeView{t: v.t, id: id}, true
}
