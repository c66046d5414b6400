package usecase

import (
	"context"
	"errors"
	"fmt"
)

// BatchItem is one artifact digest submitted for archival.
type BatchItem struct {
	ArtifactRef string
	Digest      []byte
}

// ArchiveBatch archives a batch of artifact digests: one shared tree, one
// timestamp, one persisted evidence record per item.
type ArchiveBatch struct {
	Create  *CreateRecord
	Digests DigestRegistry
	Records RecordRepository
}

func (uc *ArchiveBatch) Execute(ctx context.Context, algorithm string, items []BatchItem) ([]StoredRecord, error) {
	if uc == nil || uc.Create == nil || uc.Digests == nil || uc.Records == nil {
		return nil, errors.New("create usecase, digest registry, and record repository are required")
	}
	if len(items) == 0 {
		return nil, errors.New("no digests to archive")
	}
	combiner, err := uc.Digests.Combiner(algorithm)
	if err != nil {
		return nil, err
	}
	leaves := make([][]byte, len(items))
	for i, item := range items {
		if len(item.Digest) == 0 {
			return nil, fmt.Errorf("item %d: digest is required", i)
		}
		leaves[i] = item.Digest
	}

	records, _, err := uc.Create.ExecuteBatch(ctx, combiner, leaves)
	if err != nil {
		return nil, err
	}

	stored := make([]StoredRecord, 0, len(records))
	for i, record := range records {
		s, err := uc.Records.Create(ctx, items[i].ArtifactRef, record)
		if err != nil {
			return nil, fmt.Errorf("persist record %d: %w", i, err)
		}
		stored = append(stored, s)
	}
	return stored, nil
}
