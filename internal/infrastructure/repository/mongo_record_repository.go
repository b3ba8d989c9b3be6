package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"etsy-receipts/internal/domain"
	"etsy-receipts/internal/infrastructure/repository/entity"
	"etsy-receipts/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRecordRepository implements RecordStore using MongoDB.
// The record lives in the config_records collection under a fixed _id.
type MongoRecordRepository struct {
	collection *mongo.Collection
	name       string
}

// NewMongoRecordRepository creates a new MongoDB repository
func NewMongoRecordRepository(db *mongo.Database) ports.RecordStore {
	return &MongoRecordRepository{
		collection: db.Collection("config_records"),
		name:       domain.DefaultRecordName,
	}
}

// Load retrieves the record document
func (r *MongoRecordRepository) Load(ctx context.Context) (*domain.Record, error) {
	var doc entity.MongoRecordDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": r.name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: mongo document %s", domain.ErrRecordNotFound, r.name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config record: %w", err)
	}

	return doc.ToDomain(), nil
}

// Save replaces the whole document, inserting it on first save
func (r *MongoRecordRepository) Save(ctx context.Context, record *domain.Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	doc := entity.MongoRecordDocFromDomain(r.name, record)
	doc.UpdatedAt = time.Now()

	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": r.name},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save config record: %w", err)
	}
	return nil
}
