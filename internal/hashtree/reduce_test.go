package hashtree

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"ervault/internal/digest"
	"ervault/internal/domain"
)

func TestReduceWorkedExample(t *testing.T) {
	tree, err := Build(digest.Concat{}, leaves("h1", "h2", "h3"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	path, err := tree.Reduce(2)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if got := string(path.LeafDigest); got != "h3" {
		t.Fatalf("leaf digest = %q, want %q", got, "h3")
	}
	if len(path.Steps) != 1 {
		t.Fatalf("steps = %d, want 1 (promotion contributes no step)", len(path.Steps))
	}
	step := path.Steps[0]
	if step.Sibling == nil || string(step.Sibling.Digest) != "h1+h2" {
		t.Fatalf("sibling stub = %+v, want digest h1+h2", step.Sibling)
	}
	if step.Sibling.Leaf {
		t.Fatal("sibling h1+h2 is an internal node, not a leaf")
	}
	if !step.SiblingOnLeft {
		t.Fatal("h3 pairs as the right operand; sibling must be on the left")
	}
	root, err := path.Recompute(digest.Concat{})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got := string(root); got != "h1+h2+h3" {
		t.Fatalf("recomputed root = %q, want %q", got, "h1+h2+h3")
	}
}

func TestReduceEveryLeafReproducesRoot(t *testing.T) {
	registry := digest.NewRegistry()
	combiner, err := registry.Combiner(digest.AlgSHA256)
	if err != nil {
		t.Fatalf("combiner: %v", err)
	}
	for n := 1; n <= 8; n++ {
		tree, _ := buildSized(t, combiner, n)
		for i := 0; i < n; i++ {
			path, err := tree.Reduce(i)
			if err != nil {
				t.Fatalf("n=%d reduce %d: %v", n, i, err)
			}
			root, err := path.Recompute(combiner)
			if err != nil {
				t.Fatalf("n=%d recompute %d: %v", n, i, err)
			}
			if !bytes.Equal(root, tree.RootDigest()) {
				t.Fatalf("n=%d leaf %d: recomputed root does not match tree root", n, i)
			}
		}
	}
}

func TestReduceIdempotent(t *testing.T) {
	registry := digest.NewRegistry()
	combiner, err := registry.Combiner(digest.AlgSHA256)
	if err != nil {
		t.Fatalf("combiner: %v", err)
	}
	tree, _ := buildSized(t, combiner, 6)
	first, err := tree.Reduce(3)
	if err != nil {
		t.Fatalf("first reduce: %v", err)
	}
	second, err := tree.Reduce(3)
	if err != nil {
		t.Fatalf("second reduce: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("reducing the same leaf twice must yield structurally identical paths")
	}
}

func TestReduceOutOfRange(t *testing.T) {
	tree, err := Build(digest.Concat{}, leaves("h1", "h2"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := tree.Reduce(-1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for negative index, got %v", err)
	}
	if _, err := tree.Reduce(2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound past the last leaf, got %v", err)
	}
}

func TestReduceByDigestNotFound(t *testing.T) {
	tree, err := Build(digest.Concat{}, leaves("h1", "h2", "h3"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := tree.ReduceByDigest([]byte("missing")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	path, err := tree.ReduceByDigest([]byte("h1"))
	if err != nil {
		t.Fatalf("reduce by digest: %v", err)
	}
	if got := string(path.LeafDigest); got != "h1" {
		t.Fatalf("leaf digest = %q, want %q", got, "h1")
	}
}

func TestRecomputeDetectsTamperedPath(t *testing.T) {
	registry := digest.NewRegistry()
	combiner, err := registry.Combiner(digest.AlgSHA256)
	if err != nil {
		t.Fatalf("combiner: %v", err)
	}
	tree, _ := buildSized(t, combiner, 5)
	path, err := tree.Reduce(2)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	path.Steps[0].Sibling.Digest[0] ^= 0xff
	if _, err := path.Recompute(combiner); err == nil {
		t.Fatal("expected recompute to fail after tampering with a sibling digest")
	}
}
