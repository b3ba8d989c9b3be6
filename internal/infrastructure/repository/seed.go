package repository

import (
	"context"
	"errors"
	"fmt"

	"etsy-receipts/internal/domain"
	"etsy-receipts/internal/ports"
)

// SeedRecordStore copies the record from seed into target when target holds none yet.
// It reports whether a copy happened. An existing record in target is never overwritten.
func SeedRecordStore(ctx context.Context, target, seed ports.RecordStore) (bool, error) {
	_, err := target.Load(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return false, err
	}

	record, err := seed.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load seed record: %w", err)
	}
	if err := target.Save(ctx, record); err != nil {
		return false, err
	}
	return true, nil
}
