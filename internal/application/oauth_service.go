package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"etsy-receipts/internal/domain"
	"etsy-receipts/internal/infrastructure/metrics"
	"etsy-receipts/internal/pkce"
	"etsy-receipts/internal/ports"

	"github.com/rs/zerolog"
)

// OAuthService drives the Authorization Code + PKCE flow against Etsy
type OAuthService struct {
	records *RecordService
	etsy    ports.EtsyClient
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu    sync.Mutex
	state domain.FlowState
}

// NewOAuthService creates a new OAuth flow controller.
// A record holding a pending state nonce resumes awaiting authorization,
// one that already carries an access token starts out authenticated.
func NewOAuthService(
	records *RecordService,
	etsy ports.EtsyClient,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *OAuthService {
	record := records.Snapshot()
	state := domain.FlowIdle
	switch {
	case record.State != "":
		state = domain.FlowAwaitingAuthorization
	case record.Authenticated():
		state = domain.FlowAuthenticated
	}

	return &OAuthService{
		records: records,
		etsy:    etsy,
		metrics: m,
		logger:  logger,
		state:   state,
	}
}

// State returns the current flow state
func (s *OAuthService) State() domain.FlowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *OAuthService) transition(next domain.FlowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.state, next)
	}
	s.logger.Debug().Str("from", s.state.String()).Str("to", next.String()).Msg("OAuth flow transition")
	s.state = next
	s.metrics.ObserveTransition(next.String())
	return nil
}

func (s *OAuthService) revert(to domain.FlowState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = to
}

// Begin generates a fresh PKCE pair and state nonce, stores them and
// returns the Etsy authorization URL
func (s *OAuthService) Begin(ctx context.Context) (string, error) {
	pair, err := pkce.NewPair()
	if err != nil {
		return "", err
	}
	nonce, err := pkce.GenerateState()
	if err != nil {
		return "", err
	}

	if err := s.records.Snapshot().Validate(); err != nil {
		return "", err
	}

	record, err := s.records.Update(ctx, func(r *domain.Record) error {
		r.CodeVerifier = pair.Verifier
		r.CodeChallenge = pair.Challenge
		r.State = nonce
		return nil
	})
	if err != nil {
		return "", err
	}

	authURL, err := s.etsy.AuthCodeURL(record)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate auth URL")
		return "", fmt.Errorf("failed to generate auth URL: %w", err)
	}

	if err := s.transition(domain.FlowAwaitingAuthorization); err != nil {
		return "", err
	}

	s.logger.Info().Str("scope", record.Scope).Msg("OAuth flow started")
	return authURL, nil
}

// Complete validates the callback, exchanges the code for an access token and stores it.
// On failure the stored access token is left untouched.
func (s *OAuthService) Complete(ctx context.Context, code, state string) error {
	if code == "" {
		return domain.ErrMissingCode
	}

	record := s.records.Snapshot()
	if record.State == "" || subtle.ConstantTimeCompare([]byte(record.State), []byte(state)) != 1 {
		s.logger.Warn().Msg("OAuth callback state does not match the stored nonce")
		return domain.ErrInvalidState
	}
	if !pkce.Verify(record.CodeVerifier, record.CodeChallenge) {
		return fmt.Errorf("stored code verifier does not match the stored challenge")
	}

	if err := s.transition(domain.FlowAwaitingToken); err != nil {
		return err
	}

	accessToken, err := s.etsy.ExchangeCode(ctx, record, code)
	if err != nil {
		s.revert(domain.FlowAwaitingAuthorization)
		s.logger.Error().Err(err).Msg("Failed to exchange token")
		return fmt.Errorf("failed to exchange token: %w", err)
	}
	if accessToken == "" {
		s.revert(domain.FlowAwaitingAuthorization)
		return fmt.Errorf("failed to exchange token: %w: empty access_token", domain.ErrBadUpstreamResponse)
	}

	userID := domain.UserIDFromToken(accessToken)
	if _, err := s.records.Update(ctx, func(r *domain.Record) error {
		// a Begin during the exchange replaced the nonce and owns the flow now
		if subtle.ConstantTimeCompare([]byte(r.State), []byte(record.State)) != 1 {
			return domain.ErrInvalidState
		}
		r.AccessToken = accessToken
		r.UserID = userID
		r.State = ""
		return nil
	}); err != nil {
		s.revert(domain.FlowAwaitingAuthorization)
		if errors.Is(err, domain.ErrInvalidState) {
			s.logger.Warn().Msg("OAuth flow restarted during token exchange, discarding token")
		}
		return err
	}

	s.finish()
	s.logger.Info().Str("userID", userID).Msg("OAuth token exchange completed")
	return nil
}

// finish marks the flow authenticated once the token is stored.
// A flow restarted after the commit keeps its own state.
func (s *OAuthService) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.FlowAwaitingToken {
		s.logger.Debug().Str("state", s.state.String()).Msg("OAuth flow restarted after token was stored")
		return
	}
	s.state = domain.FlowAuthenticated
	s.metrics.ObserveTransition(domain.FlowAuthenticated.String())
}

// Profile fetches the authenticated user's Etsy profile
func (s *OAuthService) Profile(ctx context.Context) (*domain.User, error) {
	record := s.records.Snapshot()
	if !record.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := s.etsy.GetUser(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
