package digest

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"ervault/internal/domain"
)

func TestRegistrySeedsSHAFamilies(t *testing.T) {
	r := NewRegistry()
	for _, alg := range []string{AlgSHA256, AlgSHA384, AlgSHA512} {
		c, err := r.Combiner(alg)
		if err != nil {
			t.Fatalf("combiner %s: %v", alg, err)
		}
		if c.Algorithm() != alg {
			t.Fatalf("combiner reports %q, want %q", c.Algorithm(), alg)
		}
	}
}

func TestRegistryUnknownAlgorithm(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Combiner("MD5"); !errors.Is(err, domain.ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestRegistryRegisterOverrides(t *testing.T) {
	r := NewRegistry()
	r.Register(Concat{})
	c, err := r.Combiner("CONCAT")
	if err != nil {
		t.Fatalf("combiner: %v", err)
	}
	if got := string(c.Combine([]byte("a"), []byte("b"), false)); got != "a+b" {
		t.Fatalf("registered combiner not returned, got %q", got)
	}
}

func TestSHACombineSingleOperand(t *testing.T) {
	r := NewRegistry()
	c, err := r.Combiner(AlgSHA256)
	if err != nil {
		t.Fatalf("combiner: %v", err)
	}
	want := sha256.Sum256([]byte("payload"))
	if got := c.Combine([]byte("payload"), nil, false); !bytes.Equal(got, want[:]) {
		t.Fatal("single-operand combine must equal a plain hash of the operand")
	}
}

func TestSHACombinePair(t *testing.T) {
	r := NewRegistry()
	c, err := r.Combiner(AlgSHA256)
	if err != nil {
		t.Fatalf("combiner: %v", err)
	}
	want := sha256.Sum256([]byte("leftright"))
	if got := c.Combine([]byte("left"), []byte("right"), false); !bytes.Equal(got, want[:]) {
		t.Fatal("plain pair combine must hash the ordered concatenation")
	}
	swapped := c.Combine([]byte("right"), []byte("left"), false)
	forward := c.Combine([]byte("left"), []byte("right"), false)
	if bytes.Equal(forward, swapped) {
		t.Fatal("combine must not be commutative")
	}
}

func TestSHACombineGroupedKeepsOperandBoundary(t *testing.T) {
	r := NewRegistry()
	c, err := r.Combiner(AlgSHA256)
	if err != nil {
		t.Fatalf("combiner: %v", err)
	}
	a := c.Combine([]byte("ab"), []byte("c"), true)
	b := c.Combine([]byte("a"), []byte("bc"), true)
	if bytes.Equal(a, b) {
		t.Fatal("grouped combine must distinguish where one operand ends and the next begins")
	}
	plain := c.Combine([]byte("ab"), []byte("c"), false)
	if bytes.Equal(a, plain) {
		t.Fatal("grouped and plain combines of the same operands must differ")
	}
}

func TestSHACombineDigestLengths(t *testing.T) {
	r := NewRegistry()
	for alg, n := range map[string]int{AlgSHA256: 32, AlgSHA384: 48, AlgSHA512: 64} {
		c, err := r.Combiner(alg)
		if err != nil {
			t.Fatalf("combiner %s: %v", alg, err)
		}
		if got := len(c.Combine([]byte("x"), []byte("y"), false)); got != n {
			t.Fatalf("%s digest length = %d, want %d", alg, got, n)
		}
	}
}

func TestConcatCombine(t *testing.T) {
	c := Concat{}
	if got := string(c.Combine([]byte("h1"), nil, false)); got != "h1" {
		t.Fatalf("single operand = %q, want identity", got)
	}
	if got := string(c.Combine([]byte("h1"), []byte("h2"), false)); got != "h1+h2" {
		t.Fatalf("pair = %q, want %q", got, "h1+h2")
	}
	if got := string(c.Combine([]byte("H1"), []byte("atsc"), true)); got != "(H1) + (atsc)" {
		t.Fatalf("grouped = %q, want %q", got, "(H1) + (atsc)")
	}
}

func TestConcatDoesNotAliasInput(t *testing.T) {
	in := []byte("abc")
	out := Concat{}.Combine(in, nil, false)
	out[0] = 'z'
	if in[0] != 'a' {
		t.Fatal("single-operand combine must return a copy, not the input slice")
	}
}
