package domain

import (
	"bytes"
	"fmt"
)

// SiblingStub is the value-only representation of an un-expanded sibling
// inside an authenticated path: just its digest and whether it was a leaf.
type SiblingStub struct {
	Digest HexBytes `json:"digest"`
	Leaf   bool     `json:"leaf"`
}

// PathStep records one pairing on the way from a leaf to the root.
// Sibling is nil for levels the spine crossed by unpaired promotion.
// Digest is the combined digest the full tree held at this level.
type PathStep struct {
	Sibling       *SiblingStub `json:"sibling,omitempty"`
	SiblingOnLeft bool         `json:"sibling_on_left,omitempty"`
	Digest        HexBytes     `json:"digest"`
}

// AuthenticatedPath is the minimal thinned copy of a hash tree needed to
// recompute the root from one leaf: the leaf digest plus a sibling stub
// per paired level, bottom-up.
type AuthenticatedPath struct {
	LeafDigest HexBytes   `json:"leaf_digest"`
	Steps      []PathStep `json:"steps"`
}

// Root returns the digest the path claims for the tree root.
func (p AuthenticatedPath) Root() HexBytes {
	if len(p.Steps) == 0 {
		return p.LeafDigest
	}
	return p.Steps[len(p.Steps)-1].Digest
}

// Recompute replays the path bottom-up with the given combiner, checking
// every stored intermediate digest, and returns the reproduced root. Any
// divergence from the stored digests is reported as an error so tampering
// with a single value inside the path is always detected.
func (p AuthenticatedPath) Recompute(c Combiner) ([]byte, error) {
	if len(p.LeafDigest) == 0 {
		return nil, fmt.Errorf("%w: authenticated path has no leaf digest", ErrInvalidRecord)
	}
	current := []byte(p.LeafDigest)
	for i, step := range p.Steps {
		if step.Sibling == nil {
			// Unpaired promotion carries the digest up unchanged.
			if !bytes.Equal(current, step.Digest) {
				return nil, fmt.Errorf("path digest mismatch at step %d", i)
			}
			continue
		}
		var combined []byte
		if step.SiblingOnLeft {
			combined = c.Combine(step.Sibling.Digest, current, false)
		} else {
			combined = c.Combine(current, step.Sibling.Digest, false)
		}
		if !bytes.Equal(combined, step.Digest) {
			return nil, fmt.Errorf("path digest mismatch at step %d", i)
		}
		current = combined
	}
	return current, nil
}

// Clone returns a deep copy of the path.
func (p AuthenticatedPath) Clone() AuthenticatedPath {
	out := AuthenticatedPath{LeafDigest: cloneBytes(p.LeafDigest)}
	if p.Steps != nil {
		out.Steps = make([]PathStep, len(p.Steps))
		for i, step := range p.Steps {
			cloned := PathStep{
				SiblingOnLeft: step.SiblingOnLeft,
				Digest:        cloneBytes(step.Digest),
			}
			if step.Sibling != nil {
				cloned.Sibling = &SiblingStub{
					Digest: cloneBytes(step.Sibling.Digest),
					Leaf:   step.Sibling.Leaf,
				}
			}
			out.Steps[i] = cloned
		}
	}
	return out
}
