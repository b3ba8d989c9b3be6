package application

import (
	"context"
	"testing"

	"etsy-receipts/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReceiptService(t *testing.T, record *domain.Record, etsy *fakeEtsy) *ReceiptService {
	t.Helper()
	records, err := NewRecordService(context.Background(), &memoryStore{record: record}, zerolog.Nop())
	require.NoError(t, err)
	return NewReceiptService(records, etsy, zerolog.Nop())
}

func authenticatedRecord() *domain.Record {
	record := baseRecord()
	record.AccessToken = "12345678.secret"
	record.UserID = "12345678"
	return record
}

func samplePage() *domain.ReceiptPage {
	return &domain.ReceiptPage{
		Count: 2,
		Results: []domain.Receipt{
			{ReceiptID: 1, CountryISO: "US", Transactions: []domain.Transaction{transaction("Mug", "Blue"), transaction("Mug", "Red")}},
			{ReceiptID: 2, CountryISO: "DE", Transactions: []domain.Transaction{transaction("Mug", "Blue")}},
		},
	}
}

func TestShowReceipts(t *testing.T) {
	etsy := &fakeEtsy{page: samplePage()}
	svc := newReceiptService(t, authenticatedRecord(), etsy)

	receipts, err := svc.ShowReceipts(context.Background())
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "United States", receipts[0].CountryISO)
	assert.Equal(t, "Germany", receipts[1].CountryISO)

	assert.Equal(t, OpenReceiptsLimit, etsy.gotQuery.Limit)
	require.NotNil(t, etsy.gotQuery.WasPaid)
	require.NotNil(t, etsy.gotQuery.WasShipped)
	assert.True(t, *etsy.gotQuery.WasPaid)
	assert.False(t, *etsy.gotQuery.WasShipped)
}

func TestOrderedArticles(t *testing.T) {
	svc := newReceiptService(t, authenticatedRecord(), &fakeEtsy{page: samplePage()})

	counts, err := svc.OrderedArticles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Mug Blue": 2, "Mug Red": 1}, counts.Map())
	assert.Equal(t, "Mug Blue", counts[0].Key)
}

func TestReceiptServiceErrors(t *testing.T) {
	t.Run("not authenticated", func(t *testing.T) {
		svc := newReceiptService(t, baseRecord(), &fakeEtsy{page: samplePage()})
		_, err := svc.ShowReceipts(context.Background())
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
		_, err = svc.OrderedArticles(context.Background())
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("upstream failure", func(t *testing.T) {
		etsy := &fakeEtsy{listErr: &domain.UpstreamError{Op: "list_receipts", StatusCode: 500}}
		svc := newReceiptService(t, authenticatedRecord(), etsy)
		_, err := svc.OrderedArticles(context.Background())
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})
}
