package usecase

import (
	"context"
	"errors"
	"fmt"

	"ervault/internal/domain"
	"ervault/internal/hashtree"
)

// RenewalInput pairs one evidence record with the new document digests to
// co-renew under it. The first digest is the record's primary artifact;
// its leaf is the one the appended chain link proves.
type RenewalInput struct {
	Record     *domain.EvidenceRecord
	NewDigests [][]byte
}

// RenewRecords re-timestamps a batch of evidence records under a new
// digest algorithm. Every record's new leaves are pooled into ONE shared
// tree so the whole batch costs a single oracle call. Renewal only ever
// appends: each record gains exactly one chain link and its current
// algorithm is updated; prior links are untouched.
type RenewRecords struct {
	Digests DigestRegistry
	Encoder domain.ChainEncoder
	Oracle  domain.TimestampOracle
}

// Execute renews all inputs under newAlgorithm and returns the shared
// tree. The tree is transient; callers may render or inspect it before
// discarding. On any error no input record has been modified.
func (uc *RenewRecords) Execute(ctx context.Context, inputs []RenewalInput, newAlgorithm string) (*hashtree.Tree, error) {
	if uc == nil || uc.Digests == nil || uc.Encoder == nil || uc.Oracle == nil {
		return nil, errors.New("digest registry, chain encoder, and timestamp oracle are required")
	}
	if len(inputs) == 0 {
		return nil, errors.New("no records to renew")
	}
	combiner, err := uc.Digests.Combiner(newAlgorithm)
	if err != nil {
		return nil, err
	}

	// Derive every record's new leaves before touching any record, so a
	// failure mid-batch cannot leave a partially renewed set.
	leaves := make([][]byte, 0, len(inputs))
	primary := make([]int, len(inputs))
	for i, input := range inputs {
		if input.Record == nil {
			return nil, fmt.Errorf("input %d: record is required", i)
		}
		if len(input.Record.Chain) == 0 {
			return nil, fmt.Errorf("input %d: %w: empty chain", i, domain.ErrInvalidRecord)
		}
		if len(input.NewDigests) == 0 {
			return nil, fmt.Errorf("input %d: at least one new digest is required", i)
		}
		encoded, err := uc.Encoder.EncodeChain(input.Record.Chain)
		if err != nil {
			return nil, fmt.Errorf("input %d: encode chain: %w", i, err)
		}
		chainDigest := combiner.Combine(encoded, nil, false)
		primary[i] = len(leaves)
		for _, doc := range input.NewDigests {
			leaves = append(leaves, combiner.Combine(doc, chainDigest, true))
		}
	}

	tree, err := hashtree.Build(combiner, leaves)
	if err != nil {
		return nil, err
	}
	ts, err := uc.Oracle.Issue(ctx, tree.RootDigest(), newAlgorithm)
	if err != nil {
		return nil, err
	}

	for i, input := range inputs {
		path, err := tree.Reduce(primary[i])
		if err != nil {
			return nil, err
		}
		input.Record.Chain = append(input.Record.Chain, domain.ArchiveChainLink{
			Path:      path,
			Timestamp: ts,
		})
		input.Record.DigestAlgorithm = newAlgorithm
	}
	return tree, nil
}
