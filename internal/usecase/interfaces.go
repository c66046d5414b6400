package usecase

import (
	"context"
	"time"

	"ervault/internal/domain"
)

// DigestRegistry resolves algorithm identifiers to combiners.
type DigestRegistry interface {
	Combiner(algorithm string) (domain.Combiner, error)
}

// StoredRecord is an evidence record at rest, with its storage identity.
type StoredRecord struct {
	ID          string
	ArtifactRef string
	Record      domain.EvidenceRecord
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecordRepository persists evidence records. Append is guarded: it only
// succeeds when the stored chain still has the expected length, so
// concurrent renewals cannot silently drop each other's links.
type RecordRepository interface {
	Create(ctx context.Context, artifactRef string, record domain.EvidenceRecord) (StoredRecord, error)
	Get(ctx context.Context, id string) (StoredRecord, error)
	List(ctx context.Context, limit, offset int) ([]StoredRecord, error)
	Append(ctx context.Context, id string, record domain.EvidenceRecord, expectedChainLength int) (StoredRecord, error)
}
