package db

import "time"

// EvidenceRecordModel stores one evidence record. The chain sequence
// lives in RecordJSON; ChainLength is denormalized so renewal can guard
// its append with a cheap compare-and-update.
type EvidenceRecordModel struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	ArtifactRef     string    `gorm:"index"`
	DigestAlgorithm string    `gorm:"not null"`
	ChainLength     int       `gorm:"not null"`
	RecordJSON      []byte    `gorm:"type:jsonb;not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (EvidenceRecordModel) TableName() string {
	return "evidence_records"
}
