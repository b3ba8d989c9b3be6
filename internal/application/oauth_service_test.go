package application

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"etsy-receipts/internal/domain"
	"etsy-receipts/internal/infrastructure/metrics"
	"etsy-receipts/internal/pkce"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOAuthService(t *testing.T, store *memoryStore, etsy *fakeEtsy) (*OAuthService, *prometheus.Registry) {
	t.Helper()
	records, err := NewRecordService(context.Background(), store, zerolog.Nop())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	return NewOAuthService(records, etsy, metrics.New(reg), zerolog.Nop()), reg
}

func stateFromURL(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestOAuthServiceBegin(t *testing.T) {
	store := &memoryStore{record: baseRecord()}
	svc, reg := newOAuthService(t, store, &fakeEtsy{authURL: "https://etsy.test/oauth/connect"})
	assert.Equal(t, domain.FlowIdle, svc.State())

	authURL, err := svc.Begin(context.Background())
	require.NoError(t, err)

	stored := store.stored()
	assert.NotEmpty(t, stored.CodeVerifier)
	assert.True(t, pkce.Verify(stored.CodeVerifier, stored.CodeChallenge))
	assert.Len(t, stored.State, 32)
	assert.Equal(t, stored.State, stateFromURL(t, authURL))
	assert.Equal(t, domain.FlowAwaitingAuthorization, svc.State())
	expected := `
# HELP etsy_receipts_oauth_flow_transitions_total OAuth flow state transitions by target state
# TYPE etsy_receipts_oauth_flow_transitions_total counter
etsy_receipts_oauth_flow_transitions_total{state="awaiting_authorization"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "etsy_receipts_oauth_flow_transitions_total"))

	// restarting replaces the pair
	_, err = svc.Begin(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, stored.CodeVerifier, store.stored().CodeVerifier)
}

func TestOAuthServiceComplete(t *testing.T) {
	store := &memoryStore{record: baseRecord()}
	etsy := &fakeEtsy{authURL: "https://etsy.test/oauth/connect", token: "12345678.secret"}
	svc, _ := newOAuthService(t, store, etsy)

	authURL, err := svc.Begin(context.Background())
	require.NoError(t, err)
	verifier := store.stored().CodeVerifier

	require.NoError(t, svc.Complete(context.Background(), "auth-code", stateFromURL(t, authURL)))

	stored := store.stored()
	assert.Equal(t, "12345678.secret", stored.AccessToken)
	assert.Equal(t, "12345678", stored.UserID)
	assert.Empty(t, stored.State)
	assert.Equal(t, "auth-code", etsy.gotCode)
	assert.Equal(t, verifier, etsy.gotVerifier)
	assert.Equal(t, domain.FlowAuthenticated, svc.State())

	// the nonce is single use
	err = svc.Complete(context.Background(), "auth-code", stateFromURL(t, authURL))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestOAuthServiceCompleteRejectsBadCallback(t *testing.T) {
	store := &memoryStore{record: baseRecord()}
	etsy := &fakeEtsy{authURL: "https://etsy.test/oauth/connect", token: "1.x"}
	svc, _ := newOAuthService(t, store, etsy)

	_, err := svc.Begin(context.Background())
	require.NoError(t, err)

	err = svc.Complete(context.Background(), "", store.stored().State)
	assert.ErrorIs(t, err, domain.ErrMissingCode)

	err = svc.Complete(context.Background(), "auth-code", "forged")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Empty(t, etsy.gotCode)
	assert.Equal(t, domain.FlowAwaitingAuthorization, svc.State())
}

func TestOAuthServiceResumesPendingFlow(t *testing.T) {
	record := baseRecord()
	pair, err := pkce.NewPair()
	require.NoError(t, err)
	record.CodeVerifier = pair.Verifier
	record.CodeChallenge = pair.Challenge
	record.State = "pending-nonce"

	svc, _ := newOAuthService(t, &memoryStore{record: record}, &fakeEtsy{token: "7.t"})
	assert.Equal(t, domain.FlowAwaitingAuthorization, svc.State())
	require.NoError(t, svc.Complete(context.Background(), "code", "pending-nonce"))
	assert.Equal(t, domain.FlowAuthenticated, svc.State())
}

func TestOAuthServiceCompleteWithoutBegin(t *testing.T) {
	svc, _ := newOAuthService(t, &memoryStore{record: baseRecord()}, &fakeEtsy{})

	err := svc.Complete(context.Background(), "auth-code", "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestOAuthServiceCompleteUpstreamFailure(t *testing.T) {
	record := baseRecord()
	record.AccessToken = "999.previous"
	record.UserID = "999"
	store := &memoryStore{record: record}
	etsy := &fakeEtsy{
		authURL:     "https://etsy.test/oauth/connect",
		exchangeErr: &domain.UpstreamError{Op: "exchange_token", StatusCode: 400, Body: `{"error":"invalid_grant"}`},
	}
	svc, _ := newOAuthService(t, store, etsy)
	assert.Equal(t, domain.FlowAuthenticated, svc.State())

	authURL, err := svc.Begin(context.Background())
	require.NoError(t, err)

	err = svc.Complete(context.Background(), "bad-code", stateFromURL(t, authURL))
	require.ErrorIs(t, err, domain.ErrUpstream)

	assert.Equal(t, "999.previous", store.stored().AccessToken)
	assert.Equal(t, "999", store.stored().UserID)
	assert.Equal(t, domain.FlowAwaitingAuthorization, svc.State())

	// a retry with the same nonce is still possible
	etsy.exchangeErr = nil
	etsy.token = "1000.fresh"
	require.NoError(t, svc.Complete(context.Background(), "good-code", stateFromURL(t, authURL)))
	assert.Equal(t, "1000", store.stored().UserID)
}

func TestOAuthServiceCompleteEmptyToken(t *testing.T) {
	store := &memoryStore{record: baseRecord()}
	svc, _ := newOAuthService(t, store, &fakeEtsy{authURL: "https://etsy.test"})

	authURL, err := svc.Begin(context.Background())
	require.NoError(t, err)

	err = svc.Complete(context.Background(), "code", stateFromURL(t, authURL))
	assert.ErrorIs(t, err, domain.ErrBadUpstreamResponse)
	assert.Empty(t, store.stored().AccessToken)
}

func TestOAuthServiceProfile(t *testing.T) {
	etsy := &fakeEtsy{user: &domain.User{UserID: 42, FirstName: "Ada"}}

	svc, _ := newOAuthService(t, &memoryStore{record: baseRecord()}, etsy)
	_, err := svc.Profile(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	record := baseRecord()
	record.AccessToken = "42.token"
	record.UserID = "42"
	svc, _ = newOAuthService(t, &memoryStore{record: record}, etsy)
	user, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)
}

func TestOAuthServiceBeginDuringExchange(t *testing.T) {
	store := &memoryStore{record: baseRecord()}
	etsy := &fakeEtsy{authURL: "https://etsy.test/oauth/connect", token: "1.tok"}
	svc, _ := newOAuthService(t, store, etsy)

	firstURL, err := svc.Begin(context.Background())
	require.NoError(t, err)

	var secondURL string
	etsy.onExchange = func() {
		secondURL, err = svc.Begin(context.Background())
		require.NoError(t, err)
	}

	err = svc.Complete(context.Background(), "first-code", stateFromURL(t, firstURL))
	require.ErrorIs(t, err, domain.ErrInvalidState)

	stored := store.stored()
	assert.Empty(t, stored.AccessToken)
	assert.Equal(t, stateFromURL(t, secondURL), stored.State)
	assert.Equal(t, domain.FlowAwaitingAuthorization, svc.State())

	// the restarted flow still completes
	etsy.onExchange = nil
	require.NoError(t, svc.Complete(context.Background(), "second-code", stateFromURL(t, secondURL)))
	assert.Equal(t, "1.tok", store.stored().AccessToken)
	assert.Empty(t, store.stored().State)
	assert.Equal(t, domain.FlowAuthenticated, svc.State())
}

func TestOAuthServiceBeginRejectsIncompleteRecord(t *testing.T) {
	store := &memoryStore{record: baseRecord()}
	svc, _ := newOAuthService(t, store, &fakeEtsy{authURL: "https://etsy.test/oauth/connect"})

	_, err := svc.records.Update(context.Background(), func(r *domain.Record) error {
		r.RedirectURI = ""
		return nil
	})
	require.NoError(t, err)
	saves := store.saves

	_, err = svc.Begin(context.Background())
	require.ErrorIs(t, err, domain.ErrInvalidRecord)

	assert.Equal(t, saves, store.saves)
	assert.Empty(t, store.stored().CodeVerifier)
	assert.Empty(t, store.stored().State)
	assert.Equal(t, domain.FlowIdle, svc.State())
}
