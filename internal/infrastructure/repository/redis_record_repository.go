package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"etsy-receipts/internal/domain"
	"etsy-receipts/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisRecordRepository implements RecordStore by storing the record as one JSON value
type RedisRecordRepository struct {
	client *redis.Client
	key    string
}

// NewRedisRecordRepository creates a new Redis repository storing the record under key
func NewRedisRecordRepository(client *redis.Client, key string) ports.RecordStore {
	return &RedisRecordRepository{
		client: client,
		key:    key,
	}
}

// Load retrieves the record
func (r *RedisRecordRepository) Load(ctx context.Context) (*domain.Record, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: redis key %s", domain.ErrRecordNotFound, r.key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config record: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: redis key %s: %v", domain.ErrInvalidRecord, r.key, err)
	}
	return &record, nil
}

// Save replaces the stored value with the full record
func (r *RedisRecordRepository) Save(ctx context.Context, record *domain.Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode config record: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save config record: %w", err)
	}
	return nil
}
