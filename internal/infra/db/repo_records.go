package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ervault/internal/domain"
	"ervault/internal/usecase"

	"gorm.io/gorm"
)

type EvidenceRecordRepository struct {
	db *gorm.DB
}

func NewEvidenceRecordRepository(db *gorm.DB) *EvidenceRecordRepository {
	return &EvidenceRecordRepository{db: db}
}

func (r *EvidenceRecordRepository) Create(ctx context.Context, artifactRef string, record domain.EvidenceRecord) (usecase.StoredRecord, error) {
	if r.db == nil {
		return usecase.StoredRecord{}, errDBUnavailable
	}
	if len(record.Chain) == 0 {
		return usecase.StoredRecord{}, fmt.Errorf("%w: empty chain", domain.ErrInvalidRecord)
	}
	id, err := newUUID()
	if err != nil {
		return usecase.StoredRecord{}, err
	}
	model, err := recordModelFromDomain(id, artifactRef, record, time.Now().UTC())
	if err != nil {
		return usecase.StoredRecord{}, err
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return usecase.StoredRecord{}, err
	}
	return storedRecordFromModel(model)
}

func (r *EvidenceRecordRepository) Get(ctx context.Context, id string) (usecase.StoredRecord, error) {
	if r.db == nil {
		return usecase.StoredRecord{}, errDBUnavailable
	}
	var model EvidenceRecordModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.StoredRecord{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return usecase.StoredRecord{}, err
	}
	return storedRecordFromModel(model)
}

func (r *EvidenceRecordRepository) List(ctx context.Context, limit, offset int) ([]usecase.StoredRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var models []EvidenceRecordModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]usecase.StoredRecord, 0, len(models))
	for _, model := range models {
		stored, err := storedRecordFromModel(model)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

// Append persists a renewed record. The update only matches when the
// stored chain still has expectedChainLength links, and the new chain
// must be strictly longer; a lost race surfaces as ErrChainConflict.
func (r *EvidenceRecordRepository) Append(ctx context.Context, id string, record domain.EvidenceRecord, expectedChainLength int) (usecase.StoredRecord, error) {
	if r.db == nil {
		return usecase.StoredRecord{}, errDBUnavailable
	}
	if len(record.Chain) <= expectedChainLength {
		return usecase.StoredRecord{}, fmt.Errorf("%w: renewal must extend the chain", domain.ErrInvalidRecord)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return usecase.StoredRecord{}, err
	}
	now := time.Now().UTC()

	var model EvidenceRecordModel
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&EvidenceRecordModel{}).
			Where("id = ? AND chain_length = ?", id, expectedChainLength).
			Updates(map[string]any{
				"digest_algorithm": record.DigestAlgorithm,
				"chain_length":     len(record.Chain),
				"record_json":      payload,
				"updated_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&EvidenceRecordModel{}).Where("id = ?", id).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return domain.ErrRecordNotFound
			}
			return domain.ErrChainConflict
		}
		return tx.Where("id = ?", id).Take(&model).Error
	})
	if err != nil {
		return usecase.StoredRecord{}, err
	}
	return storedRecordFromModel(model)
}

func recordModelFromDomain(id, artifactRef string, record domain.EvidenceRecord, now time.Time) (EvidenceRecordModel, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return EvidenceRecordModel{}, err
	}
	return EvidenceRecordModel{
		ID:              id,
		ArtifactRef:     artifactRef,
		DigestAlgorithm: record.DigestAlgorithm,
		ChainLength:     len(record.Chain),
		RecordJSON:      payload,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func storedRecordFromModel(model EvidenceRecordModel) (usecase.StoredRecord, error) {
	var record domain.EvidenceRecord
	if err := json.Unmarshal(model.RecordJSON, &record); err != nil {
		return usecase.StoredRecord{}, fmt.Errorf("decode stored record %s: %w", model.ID, err)
	}
	return usecase.StoredRecord{
		ID:          model.ID,
		ArtifactRef: model.ArtifactRef,
		Record:      record,
		CreatedAt:   model.CreatedAt.UTC(),
		UpdatedAt:   model.UpdatedAt.UTC(),
	}, nil
}
