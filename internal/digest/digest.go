// Package digest provides the pluggable combine capability: combiners
// keyed by algorithm identifier that hash one value or an ordered pair.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
	"sync"

	"ervault/internal/domain"
)

const (
	AlgSHA256 = "SHA256"
	AlgSHA384 = "SHA384"
	AlgSHA512 = "SHA512"
)

// Registry maps algorithm identifiers to combiners. The zero value is not
// usable; NewRegistry seeds the stdlib-backed algorithms.
type Registry struct {
	mu        sync.RWMutex
	combiners map[string]domain.Combiner
}

func NewRegistry() *Registry {
	r := &Registry{combiners: make(map[string]domain.Combiner)}
	r.Register(&shaCombiner{alg: AlgSHA256, newHash: sha256.New})
	r.Register(&shaCombiner{alg: AlgSHA384, newHash: sha512.New384})
	r.Register(&shaCombiner{alg: AlgSHA512, newHash: sha512.New})
	return r
}

func (r *Registry) Register(c domain.Combiner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.combiners[c.Algorithm()] = c
}

func (r *Registry) Combiner(algorithm string) (domain.Combiner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.combiners[algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAlgorithm, algorithm)
	}
	return c, nil
}

type shaCombiner struct {
	alg     string
	newHash func() hash.Hash
}

func (c *shaCombiner) Algorithm() string {
	return c.alg
}

// Combine hashes left alone when right is nil, or the ordered pair
// otherwise. The grouped form length-prefixes each operand so the
// boundary between the two inputs stays unambiguous.
func (c *shaCombiner) Combine(left, right []byte, grouped bool) []byte {
	h := c.newHash()
	if right == nil {
		h.Write(left)
		return h.Sum(nil)
	}
	if grouped {
		writeLenPrefixed(h, left)
		writeLenPrefixed(h, right)
		return h.Sum(nil)
	}
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

func writeLenPrefixed(h hash.Hash, operand []byte) {
	var prefix [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(prefix[:], uint64(len(operand)))
	h.Write(prefix[:n])
	h.Write(operand)
}

// Concat is a non-cryptographic combiner that concatenates operands as
// readable strings: "a+b" plain, "(a) + (b)" grouped, identity for a
// single operand. It exists for demos and tests where digests should stay
// legible; it is never part of the default registry.
type Concat struct{}

func (Concat) Algorithm() string {
	return "CONCAT"
}

func (Concat) Combine(left, right []byte, grouped bool) []byte {
	if right == nil {
		return append([]byte(nil), left...)
	}
	if grouped {
		out := make([]byte, 0, len(left)+len(right)+8)
		out = append(out, '(')
		out = append(out, left...)
		out = append(out, groupSeparator...)
		out = append(out, right...)
		out = append(out, ')')
		return out
	}
	out := make([]byte, 0, len(left)+len(right)+1)
	out = append(out, left...)
	out = append(out, '+')
	out = append(out, right...)
	return out
}

var groupSeparator = []byte(") + (")
