package application

import (
	"context"
	"fmt"
	"sync"

	"etsy-receipts/internal/domain"
	"etsy-receipts/internal/ports"

	"github.com/rs/zerolog"
)

// RecordService keeps the config record in memory and mirrors every change to the store
type RecordService struct {
	mu     sync.Mutex
	record *domain.Record
	store  ports.RecordStore
	logger zerolog.Logger
}

// NewRecordService loads the record from store. A missing, malformed or incomplete record is an error.
func NewRecordService(ctx context.Context, store ports.RecordStore, logger zerolog.Logger) (*RecordService, error) {
	record, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config record: %w", err)
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	return &RecordService{
		record: record,
		store:  store,
		logger: logger,
	}, nil
}

// Snapshot returns a copy of the current record
func (s *RecordService) Snapshot() *domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Update applies fn to a copy of the record and persists it.
// The in-memory record only changes when fn and the save both succeed.
func (s *RecordService) Update(ctx context.Context, fn func(r *domain.Record) error) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.record.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist config record")
		return nil, fmt.Errorf("failed to persist config record: %w", err)
	}

	s.record = next
	return next.Clone(), nil
}
