package usecase

import (
	"context"
	"errors"
	"fmt"
)

// StoredRenewalItem names one stored record and the new digests to renew
// it with. The first digest becomes the record's proven leaf.
type StoredRenewalItem struct {
	ID         string
	NewDigests [][]byte
}

// RenewStored renews a set of persisted records as one batch and writes
// the extended chains back with a guarded append, so a concurrent renewal
// of the same record cannot be silently overwritten.
type RenewStored struct {
	Renew   *RenewRecords
	Records RecordRepository
}

func (uc *RenewStored) Execute(ctx context.Context, items []StoredRenewalItem, newAlgorithm string) ([]StoredRecord, error) {
	if uc == nil || uc.Renew == nil || uc.Records == nil {
		return nil, errors.New("renew usecase and record repository are required")
	}
	if len(items) == 0 {
		return nil, errors.New("no records to renew")
	}

	loaded := make([]StoredRecord, len(items))
	inputs := make([]RenewalInput, len(items))
	expected := make([]int, len(items))
	for i, item := range items {
		s, err := uc.Records.Get(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("load record %s: %w", item.ID, err)
		}
		loaded[i] = s
		expected[i] = len(s.Record.Chain)
		inputs[i] = RenewalInput{Record: &loaded[i].Record, NewDigests: item.NewDigests}
	}

	if _, err := uc.Renew.Execute(ctx, inputs, newAlgorithm); err != nil {
		return nil, err
	}

	out := make([]StoredRecord, 0, len(items))
	for i, item := range items {
		s, err := uc.Records.Append(ctx, item.ID, loaded[i].Record, expected[i])
		if err != nil {
			return nil, fmt.Errorf("persist renewal of %s: %w", item.ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}
