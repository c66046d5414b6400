package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"ervault/internal/domain"
)

// Verification failure kinds. Failures are reported as values so a
// verification run always completes with a diagnostic for audit logging.
const (
	VerifyFailInvalidRecord   = "INVALID_RECORD"
	VerifyFailAlgorithmReuse  = "ALGORITHM_REUSE"
	VerifyFailTimestampOrder  = "TIMESTAMP_ORDER"
	VerifyFailLinkageMismatch = "LINKAGE_MISMATCH"
	VerifyFailStaleTimestamp  = "STALE_TIMESTAMP"
)

// Verification steps, for diagnostics.
const (
	StepVerifyInitial   = "verify_initial"
	StepVerifyLink      = "verify_link"
	StepVerifyFreshness = "verify_freshness"
)

// Claim is the caller's assertion about one chain link: the original
// document digest it protects and the algorithm it was made under.
type Claim struct {
	Digest    []byte
	Algorithm string
}

// VerifyPolicy configures the contested rules of the governing standard.
// Whether consecutive chain links must change algorithm is a policy
// decision, not a hardcoded assumption.
type VerifyPolicy struct {
	RequireAlgorithmChange bool
	// MaxTimestampAge bounds how old the final timestamp may be at
	// verification time; zero means unbounded.
	MaxTimestampAge time.Duration
}

// DefaultVerifyPolicy rejects algorithm reuse between adjacent links and
// places no bound on timestamp age.
func DefaultVerifyPolicy() VerifyPolicy {
	return VerifyPolicy{RequireAlgorithmChange: true}
}

// VerifyResult is the outcome of a verification run. FailureKind, Step,
// and ChainIndex identify the first failing check; ChainIndex is the
// zero-based index of the offending chain link.
type VerifyResult struct {
	Passed      bool   `json:"passed"`
	FailureKind string `json:"failure_kind,omitempty"`
	Step        string `json:"step,omitempty"`
	ChainIndex  int    `json:"chain_index"`
	Message     string `json:"message,omitempty"`
}

// VerifyRecord replays an evidence record's chain sequence forward,
// recomputing every link against the claimed original digests.
type VerifyRecord struct {
	Digests DigestRegistry
	Encoder domain.ChainEncoder
	Policy  VerifyPolicy
	// Now is the verification instant; nil means time.Now.
	Now func() time.Time
}

// Execute checks the record against one claim per chain link, in order.
// The error return is reserved for missing collaborators and encoder
// faults; every property of the record itself is reported in the result.
func (uc *VerifyRecord) Execute(ctx context.Context, record domain.EvidenceRecord, claims []Claim) (VerifyResult, error) {
	if uc == nil || uc.Digests == nil || uc.Encoder == nil {
		return VerifyResult{}, errors.New("digest registry and chain encoder are required")
	}
	if err := ctx.Err(); err != nil {
		return VerifyResult{}, err
	}

	if len(record.Chain) == 0 {
		return failed(VerifyFailInvalidRecord, StepVerifyInitial, 0, "record has an empty chain sequence"), nil
	}
	if len(claims) != len(record.Chain) {
		return failed(VerifyFailInvalidRecord, StepVerifyInitial, 0,
			fmt.Sprintf("got %d claims for %d chain links", len(claims), len(record.Chain))), nil
	}

	// VerifyInitial: chain[0]'s path must carry the claimed original
	// digest and recompute to the digest its timestamp certifies.
	combiner, err := uc.Digests.Combiner(claims[0].Algorithm)
	if err != nil {
		return failed(VerifyFailInvalidRecord, StepVerifyInitial, 0, err.Error()), nil
	}
	if !bytes.Equal(record.Chain[0].Path.LeafDigest, claims[0].Digest) {
		return failed(VerifyFailLinkageMismatch, StepVerifyInitial, 0, "initial digest does not match the recorded leaf"), nil
	}
	if res, ok := checkLink(record.Chain[0], combiner, StepVerifyInitial, 0); !ok {
		return res, nil
	}

	// VerifyLink(i): algorithm policy, timestamp ordering, and linkage to
	// the full encoded prior history.
	for i := 1; i < len(record.Chain); i++ {
		if err := ctx.Err(); err != nil {
			return VerifyResult{}, err
		}
		if uc.Policy.RequireAlgorithmChange && claims[i].Algorithm == claims[i-1].Algorithm {
			return failed(VerifyFailAlgorithmReuse, StepVerifyLink, i,
				fmt.Sprintf("link %d reuses algorithm %s", i, claims[i].Algorithm)), nil
		}
		if record.Chain[i-1].Timestamp.At.After(record.Chain[i].Timestamp.At) {
			return failed(VerifyFailTimestampOrder, StepVerifyLink, i,
				fmt.Sprintf("link %d is timestamped before link %d", i, i-1)), nil
		}
		combiner, err := uc.Digests.Combiner(claims[i].Algorithm)
		if err != nil {
			return failed(VerifyFailInvalidRecord, StepVerifyLink, i, err.Error()), nil
		}

		encoded, err := uc.Encoder.EncodeChain(record.Chain[:i])
		if err != nil {
			return VerifyResult{}, fmt.Errorf("encode chain prefix %d: %w", i, err)
		}
		chainDigest := combiner.Combine(encoded, nil, false)
		leaf := combiner.Combine(claims[i].Digest, chainDigest, true)
		if !bytes.Equal(leaf, record.Chain[i].Path.LeafDigest) {
			return failed(VerifyFailLinkageMismatch, StepVerifyLink, i,
				fmt.Sprintf("link %d does not chain to the prior history", i)), nil
		}
		if res, ok := checkLink(record.Chain[i], combiner, StepVerifyLink, i); !ok {
			return res, nil
		}
	}

	// VerifyFreshness: the final timestamp must be valid now.
	now := time.Now()
	if uc.Now != nil {
		now = uc.Now()
	}
	last := len(record.Chain) - 1
	final := record.Chain[last].Timestamp.At
	if final.After(now) {
		return failed(VerifyFailStaleTimestamp, StepVerifyFreshness, last, "final timestamp post-dates the verification instant"), nil
	}
	if uc.Policy.MaxTimestampAge > 0 && now.Sub(final) > uc.Policy.MaxTimestampAge {
		return failed(VerifyFailStaleTimestamp, StepVerifyFreshness, last,
			fmt.Sprintf("final timestamp is older than %s", uc.Policy.MaxTimestampAge)), nil
	}

	return VerifyResult{Passed: true, ChainIndex: last}, nil
}

// checkLink recomputes a link's authenticated path and compares the
// reproduced root with the digest its timestamp certifies.
func checkLink(link domain.ArchiveChainLink, combiner domain.Combiner, step string, index int) (VerifyResult, bool) {
	root, err := link.Path.Recompute(combiner)
	if err != nil {
		return failed(VerifyFailLinkageMismatch, step, index,
			fmt.Sprintf("link %d path does not recompute: %v", index, err)), false
	}
	if !bytes.Equal(root, link.Timestamp.Digest) {
		return failed(VerifyFailLinkageMismatch, step, index,
			fmt.Sprintf("link %d root does not match the timestamped digest", index)), false
	}
	return VerifyResult{}, true
}

func failed(kind, step string, index int, message string) VerifyResult {
	return VerifyResult{
		FailureKind: kind,
		Step:        step,
		ChainIndex:  index,
		Message:     message,
	}
}
