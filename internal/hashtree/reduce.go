package hashtree

import (
	"fmt"

	"ervault/internal/domain"
)

// Reduce extracts the authenticated path for the leaf at the given index:
// the walk from that leaf to the root, with every sibling replaced by a
// value-only stub. The result is proportional to tree depth, and
// recombining it bottom-up reproduces the root digest.
func (t *Tree) Reduce(leafIndex int) (domain.AuthenticatedPath, error) {
	if leafIndex < 0 || leafIndex >= len(t.levels[0]) {
		return domain.AuthenticatedPath{}, fmt.Errorf("%w: leaf index %d out of range", domain.ErrNotFound, leafIndex)
	}

	current := t.levels[0][leafIndex]
	path := domain.AuthenticatedPath{
		LeafDigest: append([]byte(nil), t.nodes[current].digest...),
	}

	for t.nodes[current].parent != none {
		parent := t.nodes[current].parent
		sibling := t.nodes[parent].left
		siblingOnLeft := true
		if sibling == current {
			sibling = t.nodes[parent].right
			siblingOnLeft = false
		}
		path.Steps = append(path.Steps, domain.PathStep{
			Sibling: &domain.SiblingStub{
				Digest: append([]byte(nil), t.nodes[sibling].digest...),
				Leaf:   t.nodes[sibling].leaf,
			},
			SiblingOnLeft: siblingOnLeft,
			Digest:        append([]byte(nil), t.nodes[parent].digest...),
		})
		current = parent
	}

	return path, nil
}

// ReduceByDigest locates the first leaf whose digest equals target and
// reduces for it. Returns domain.ErrNotFound when no leaf matches.
func (t *Tree) ReduceByDigest(target []byte) (domain.AuthenticatedPath, error) {
	index, err := t.LeafIndexOf(target)
	if err != nil {
		return domain.AuthenticatedPath{}, err
	}
	return t.Reduce(index)
}
