package domain

import "context"

// Combiner is the pluggable digest capability. Combine(left, nil, _)
// digests a single value; with two operands the left/right order is
// significant and must not be treated as commutative. grouped selects the
// explicit-grouping form that keeps the two operands distinguishable even
// after concatenation, used when chaining renewals.
type Combiner interface {
	Algorithm() string
	Combine(left, right []byte, grouped bool) []byte
}

// TimestampOracle abstracts a trusted-timestamping authority. The
// production form talks to an external service; the core only consumes the
// returned token.
type TimestampOracle interface {
	Issue(ctx context.Context, digest []byte, algorithm string) (Timestamp, error)
}

// ChainEncoder deterministically serializes an ordered chain sequence.
// Re-encoding the same sequence must always yield identical bytes; the
// encoding binds a renewal to the full prior history.
type ChainEncoder interface {
	EncodeChain(links []ArchiveChainLink) ([]byte, error)
}
