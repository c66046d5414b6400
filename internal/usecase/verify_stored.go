package usecase

import (
	"context"
	"errors"
	"time"

	"ervault/internal/domain"
)

// PolicyEngine renders an allow/deny decision over a verification
// outcome.
type PolicyEngine interface {
	Evaluate(ctx context.Context, input domain.PolicyInput) (domain.PolicyEvaluation, error)
}

// VerifyStoredResult bundles the verification outcome with the policy
// decision, when a policy engine is configured.
type VerifyStoredResult struct {
	Record       StoredRecord             `json:"-"`
	Verification VerifyResult             `json:"verification"`
	Policy       *domain.PolicyEvaluation `json:"policy,omitempty"`
}

// VerifyStored loads a persisted record, replays its chain against the
// caller's claims, and asks the policy engine for the final decision.
type VerifyStored struct {
	Records  RecordRepository
	Verifier *VerifyRecord
	// Policy is optional; without it the result carries only the core
	// verification outcome.
	Policy PolicyEngine
}

func (uc *VerifyStored) Execute(ctx context.Context, id string, claims []Claim) (VerifyStoredResult, error) {
	if uc == nil || uc.Records == nil || uc.Verifier == nil {
		return VerifyStoredResult{}, errors.New("record repository and verifier are required")
	}
	stored, err := uc.Records.Get(ctx, id)
	if err != nil {
		return VerifyStoredResult{}, err
	}
	verification, err := uc.Verifier.Execute(ctx, stored.Record, claims)
	if err != nil {
		return VerifyStoredResult{}, err
	}
	out := VerifyStoredResult{Record: stored, Verification: verification}

	if uc.Policy != nil {
		now := time.Now()
		if uc.Verifier.Now != nil {
			now = uc.Verifier.Now()
		}
		evaluation, err := uc.Policy.Evaluate(ctx, policyInput(stored.Record, verification, now))
		if err != nil {
			return VerifyStoredResult{}, err
		}
		out.Policy = &evaluation
	}
	return out, nil
}

func policyInput(record domain.EvidenceRecord, verification VerifyResult, now time.Time) domain.PolicyInput {
	algorithms := make([]string, 0, len(record.Chain))
	for _, link := range record.Chain {
		algorithms = append(algorithms, link.Timestamp.Algorithm)
	}
	var finalAt string
	var age int64
	if n := len(record.Chain); n > 0 {
		final := record.Chain[n-1].Timestamp.At.UTC()
		finalAt = final.Format(time.RFC3339Nano)
		if now.After(final) {
			age = int64(now.Sub(final) / time.Second)
		}
	}
	return domain.PolicyInput{
		Record: domain.PolicyRecord{
			Version:          record.Version,
			DigestAlgorithm:  record.DigestAlgorithm,
			ChainLength:      len(record.Chain),
			ChainAlgorithms:  algorithms,
			FinalTimestampAt: finalAt,
		},
		Verification: domain.PolicyVerification{
			Passed:      verification.Passed,
			FailureKind: verification.FailureKind,
			ChainIndex:  verification.ChainIndex,
			AgeSeconds:  age,
		},
	}
}
