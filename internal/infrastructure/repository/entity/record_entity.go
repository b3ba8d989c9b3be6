package entity

import (
	"time"

	"etsy-receipts/internal/domain"
)

// MongoRecordDoc represents the config record in MongoDB
type MongoRecordDoc struct {
	ID            string    `bson:"_id"`
	ClientID      string    `bson:"clientID"`
	RedirectURI   string    `bson:"redirectUri"`
	Scope         string    `bson:"scope"`
	ShopID        string    `bson:"shopID"`
	CodeVerifier  string    `bson:"codeVerifier"`
	CodeChallenge string    `bson:"codeChallenge"`
	State         string    `bson:"state"`
	AccessToken   string    `bson:"accessToken"`
	UserID        string    `bson:"userID"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain record
func (d *MongoRecordDoc) ToDomain() *domain.Record {
	return &domain.Record{
		ClientID:      d.ClientID,
		RedirectURI:   d.RedirectURI,
		Scope:         d.Scope,
		ShopID:        d.ShopID,
		CodeVerifier:  d.CodeVerifier,
		CodeChallenge: d.CodeChallenge,
		State:         d.State,
		AccessToken:   d.AccessToken,
		UserID:        d.UserID,
	}
}

// MongoRecordDocFromDomain converts a domain record to a MongoDB document
func MongoRecordDocFromDomain(id string, record *domain.Record) *MongoRecordDoc {
	return &MongoRecordDoc{
		ID:            id,
		ClientID:      record.ClientID,
		RedirectURI:   record.RedirectURI,
		Scope:         record.Scope,
		ShopID:        record.ShopID,
		CodeVerifier:  record.CodeVerifier,
		CodeChallenge: record.CodeChallenge,
		State:         record.State,
		AccessToken:   record.AccessToken,
		UserID:        record.UserID,
	}
}
