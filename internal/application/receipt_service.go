package application

import (
	"context"
	"fmt"

	"etsy-receipts/internal/domain"
	"etsy-receipts/internal/ports"

	"github.com/rs/zerolog"
)

// OpenReceiptsLimit is the page size used for the paid-but-unshipped listing
const OpenReceiptsLimit = 100

// ReceiptService fetches shop receipts and shapes them for presentation
type ReceiptService struct {
	records *RecordService
	etsy    ports.EtsyClient
	logger  zerolog.Logger
}

// NewReceiptService creates a new receipt service
func NewReceiptService(records *RecordService, etsy ports.EtsyClient, logger zerolog.Logger) *ReceiptService {
	return &ReceiptService{
		records: records,
		etsy:    etsy,
		logger:  logger,
	}
}

// openReceipts returns paid receipts that have not shipped yet, in upstream order
func (s *ReceiptService) openReceipts(ctx context.Context) ([]domain.Receipt, error) {
	record := s.records.Snapshot()
	if !record.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	paid, shipped := true, false
	page, err := s.etsy.ListReceipts(ctx, record, ports.ReceiptQuery{
		Limit:      OpenReceiptsLimit,
		WasPaid:    &paid,
		WasShipped: &shipped,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}

	s.logger.Debug().Int("count", len(page.Results)).Str("shopID", record.ShopID).Msg("Fetched open receipts")
	return page.Results, nil
}

// ShowReceipts returns the open receipts with country codes resolved to display names
func (s *ReceiptService) ShowReceipts(ctx context.Context) ([]domain.Receipt, error) {
	receipts, err := s.openReceipts(ctx)
	if err != nil {
		return nil, err
	}
	return ResolveCountryNames(receipts), nil
}

// OrderedArticles counts the ordered articles across the open receipts
func (s *ReceiptService) OrderedArticles(ctx context.Context) (domain.LineItemCounts, error) {
	receipts, err := s.openReceipts(ctx)
	if err != nil {
		return nil, err
	}
	return CountLineItems(receipts), nil
}
