package usecase

import (
	"context"
	"testing"
	"time"

	"ervault/internal/digest"
	"ervault/internal/domain"
	"ervault/internal/encoding"
)

// namedConcat lets tests run the readable string combiner under distinct
// algorithm labels, so renewal and policy checks see an algorithm change.
type namedConcat struct {
	name string
}

func (c namedConcat) Algorithm() string {
	return c.name
}

func (c namedConcat) Combine(left, right []byte, grouped bool) []byte {
	return digest.Concat{}.Combine(left, right, grouped)
}

// fixedOracle issues timestamps from a hand-wound clock, advancing one
// step per call, and counts issuances.
type fixedOracle struct {
	now   time.Time
	step  time.Duration
	calls int
}

func newFixedOracle() *fixedOracle {
	return &fixedOracle{
		now:  time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		step: time.Hour,
	}
}

func (o *fixedOracle) Issue(_ context.Context, dgst []byte, algorithm string) (domain.Timestamp, error) {
	o.calls++
	at := o.now
	o.now = o.now.Add(o.step)
	return domain.Timestamp{
		Digest:    append(domain.HexBytes(nil), dgst...),
		At:        at,
		Algorithm: algorithm,
	}, nil
}

func testRegistry() *digest.Registry {
	r := digest.NewRegistry()
	r.Register(namedConcat{name: "ALG-A"})
	r.Register(namedConcat{name: "ALG-B"})
	r.Register(namedConcat{name: "ALG-C"})
	return r
}

// createBatch builds records over the classic three-leaf example using the
// ALG-A string combiner.
func createBatch(t *testing.T, oracle *fixedOracle) []domain.EvidenceRecord {
	t.Helper()
	uc := &CreateRecord{Oracle: oracle}
	records, _, err := uc.ExecuteBatch(context.Background(),
		namedConcat{name: "ALG-A"},
		[][]byte{[]byte("h1"), []byte("h2"), []byte("h3")})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	return records
}

func newVerifier() *VerifyRecord {
	return &VerifyRecord{
		Digests: testRegistry(),
		Encoder: encoding.CanonicalEncoder{},
		Policy:  DefaultVerifyPolicy(),
		Now:     func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) },
	}
}
