package usecase

import (
	"context"
	"errors"

	"ervault/internal/domain"
	"ervault/internal/hashtree"
)

// CreateRecord produces version-1 evidence records: the tree root is
// timestamped once and each record carries a single chain link holding
// its leaf's authenticated path.
type CreateRecord struct {
	Oracle domain.TimestampOracle
}

// Execute builds a record for one already-reduced path of the given tree.
func (uc *CreateRecord) Execute(ctx context.Context, tree *hashtree.Tree, path domain.AuthenticatedPath, algorithm string) (domain.EvidenceRecord, error) {
	if uc == nil || uc.Oracle == nil {
		return domain.EvidenceRecord{}, errors.New("timestamp oracle is required")
	}
	if tree == nil {
		return domain.EvidenceRecord{}, errors.New("tree is required")
	}
	ts, err := uc.Oracle.Issue(ctx, tree.RootDigest(), algorithm)
	if err != nil {
		return domain.EvidenceRecord{}, err
	}
	return newRecord(path, ts, algorithm), nil
}

// ExecuteBatch builds a tree over the given leaves, timestamps its root
// once, and returns one record per leaf together with the tree. The tree
// is transient: callers extract proofs and discard it.
func (uc *CreateRecord) ExecuteBatch(ctx context.Context, combiner domain.Combiner, leaves [][]byte) ([]domain.EvidenceRecord, *hashtree.Tree, error) {
	if uc == nil || uc.Oracle == nil {
		return nil, nil, errors.New("timestamp oracle is required")
	}
	tree, err := hashtree.Build(combiner, leaves)
	if err != nil {
		return nil, nil, err
	}
	ts, err := uc.Oracle.Issue(ctx, tree.RootDigest(), combiner.Algorithm())
	if err != nil {
		return nil, nil, err
	}
	records := make([]domain.EvidenceRecord, 0, tree.LeafCount())
	for i := 0; i < tree.LeafCount(); i++ {
		path, err := tree.Reduce(i)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, newRecord(path, ts, combiner.Algorithm()))
	}
	return records, tree, nil
}

func newRecord(path domain.AuthenticatedPath, ts domain.Timestamp, algorithm string) domain.EvidenceRecord {
	return domain.EvidenceRecord{
		Version:         domain.EvidenceRecordVersion,
		DigestAlgorithm: algorithm,
		Chain: []domain.ArchiveChainLink{
			{Path: path, Timestamp: ts},
		},
	}
}
