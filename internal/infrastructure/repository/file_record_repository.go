package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"etsy-receipts/internal/domain"
	"etsy-receipts/internal/ports"
)

// FileRecordRepository implements RecordStore using a single JSON file
type FileRecordRepository struct {
	path string
}

// NewFileRecordRepository creates a repository backed by the JSON file at path
func NewFileRecordRepository(path string) ports.RecordStore {
	return &FileRecordRepository{path: path}
}

// Load reads and decodes the whole file
func (r *FileRecordRepository) Load(_ context.Context) (*domain.Record, error) {
	data, err := os.ReadFile(r.path) // #nosec G304
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, r.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidRecord, r.path, err)
	}
	return &record, nil
}

// Save overwrites the file with the full record.
// The record is written to a sibling temp file first and renamed into place.
func (r *FileRecordRepository) Save(_ context.Context, record *domain.Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config record: %w", err)
	}

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}
