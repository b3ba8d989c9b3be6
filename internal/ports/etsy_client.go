package ports

import (
	"context"

	"etsy-receipts/internal/domain"
)

// ReceiptQuery filters the shop receipts listing
type ReceiptQuery struct {
	Limit      int
	WasPaid    *bool
	WasShipped *bool
}

// EtsyClient defines the interface for Etsy Open API operations
type EtsyClient interface {
	// Authentication
	AuthCodeURL(record *domain.Record) (string, error)
	ExchangeCode(ctx context.Context, record *domain.Record, code string) (string, error)

	// User API
	GetUser(ctx context.Context, record *domain.Record) (*domain.User, error)

	// Receipt API
	ListReceipts(ctx context.Context, record *domain.Record, query ReceiptQuery) (*domain.ReceiptPage, error)
}
