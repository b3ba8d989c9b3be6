package ports

import (
	"context"

	"etsy-receipts/internal/domain"
)

// RecordStore defines the interface for config record persistence.
// Save always replaces the whole record.
type RecordStore interface {
	// Load returns domain.ErrRecordNotFound when nothing has been stored yet
	Load(ctx context.Context) (*domain.Record, error)
	Save(ctx context.Context, record *domain.Record) error
}
