package application

import (
	"context"
	"errors"
	"sync"

	"etsy-receipts/internal/domain"
	"etsy-receipts/internal/ports"
)

var errSaveFailed = errors.New("disk full")

type memoryStore struct {
	mu       sync.Mutex
	record   *domain.Record
	saves    int
	failSave bool
}

func (s *memoryStore) Load(ctx context.Context) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil, domain.ErrRecordNotFound
	}
	return s.record.Clone(), nil
}

func (s *memoryStore) Save(ctx context.Context, record *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errSaveFailed
	}
	s.saves++
	s.record = record.Clone()
	return nil
}

func (s *memoryStore) stored() *domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

type fakeEtsy struct {
	authURL     string
	token       string
	exchangeErr error
	user        *domain.User
	page        *domain.ReceiptPage
	listErr     error
	onExchange  func()

	gotCode     string
	gotVerifier string
	gotQuery    ports.ReceiptQuery
}

func (f *fakeEtsy) AuthCodeURL(record *domain.Record) (string, error) {
	return f.authURL + "?state=" + record.State + "&code_challenge=" + record.CodeChallenge, nil
}

func (f *fakeEtsy) ExchangeCode(ctx context.Context, record *domain.Record, code string) (string, error) {
	f.gotCode = code
	f.gotVerifier = record.CodeVerifier
	if f.onExchange != nil {
		f.onExchange()
	}
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return f.token, nil
}

func (f *fakeEtsy) GetUser(ctx context.Context, record *domain.Record) (*domain.User, error) {
	if !record.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	return f.user, nil
}

func (f *fakeEtsy) ListReceipts(ctx context.Context, record *domain.Record, query ports.ReceiptQuery) (*domain.ReceiptPage, error) {
	f.gotQuery = query
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.page, nil
}

func baseRecord() *domain.Record {
	return &domain.Record{
		ClientID:    "api-key",
		RedirectURI: "http://localhost:3003/oauth/redirect",
		Scope:       "transactions_r email_r",
		ShopID:      "555",
	}
}
