package etsy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"etsy-receipts/internal/domain"
	"etsy-receipts/internal/infrastructure/metrics"
	"etsy-receipts/internal/pkce"
	"etsy-receipts/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Etsy Open API v3 endpoints
const (
	DefaultAuthURL    = "https://www.etsy.com/oauth/connect"
	DefaultTokenURL   = "https://api.etsy.com/v3/public/oauth/token"
	DefaultAPIBaseURL = "https://openapi.etsy.com/v3/application"

	defaultTimeout = 30 * time.Second

	maxResponseBody = 10 << 20
	maxErrorExcerpt = 512
)

// Options configures the Etsy client. Empty URLs fall back to the public Etsy endpoints.
type Options struct {
	AuthURL    string
	TokenURL   string
	APIBaseURL string
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

type client struct {
	authURL    string
	tokenURL   string
	apiBaseURL string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewClient creates a new Etsy client adapter
func NewClient(opts Options) ports.EtsyClient {
	c := &client{
		authURL:    opts.AuthURL,
		tokenURL:   opts.TokenURL,
		apiBaseURL: strings.TrimSuffix(opts.APIBaseURL, "/"),
		httpClient: opts.HTTPClient,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if c.authURL == "" {
		c.authURL = DefaultAuthURL
	}
	if c.tokenURL == "" {
		c.tokenURL = DefaultTokenURL
	}
	if c.apiBaseURL == "" {
		c.apiBaseURL = DefaultAPIBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return c
}

// oauthConfig builds the oauth2 config for the app described by record.
// Etsy has no client secret for PKCE apps, so credentials travel in the form body.
func (c *client) oauthConfig(record *domain.Record) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    record.ClientID,
		RedirectURL: record.RedirectURI,
		Scopes:      strings.Fields(record.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.authURL,
			TokenURL:  c.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Authentication methods

func (c *client) AuthCodeURL(record *domain.Record) (string, error) {
	if record.ClientID == "" || record.RedirectURI == "" {
		return "", fmt.Errorf("clientID and redirectUri must be configured")
	}
	if record.State == "" || record.CodeChallenge == "" {
		return "", fmt.Errorf("state and code challenge are required")
	}

	authURL := c.oauthConfig(record).AuthCodeURL(
		record.State,
		oauth2.SetAuthURLParam("code_challenge", record.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.ChallengeMethod),
	)

	c.logger.Debug().
		Str("scope", record.Scope).
		Str("redirect_uri", record.RedirectURI).
		Msg("Generated OAuth authorization URL")

	return authURL, nil
}

func (c *client) ExchangeCode(ctx context.Context, record *domain.Record, code string) (string, error) {
	const op = "exchange_token"

	// oauth2 picks the HTTP client up from the context
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	start := time.Now()
	token, err := c.oauthConfig(record).Exchange(ctx, code, oauth2.VerifierOption(record.CodeVerifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		var urlErr *url.Error
		switch {
		case errors.As(err, &retrieveErr):
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			c.metrics.ObserveUpstream(op, status, time.Since(start))
			c.logger.Error().
				Int("status", status).
				Str("error_code", retrieveErr.ErrorCode).
				Msg("Etsy token exchange failed")
			return "", &domain.UpstreamError{
				Op:         op,
				StatusCode: status,
				Body:       excerpt(retrieveErr.Body),
			}
		case errors.As(err, &urlErr):
			c.metrics.ObserveUpstream(op, 0, time.Since(start))
			return "", &domain.UpstreamError{Op: op, Err: err}
		default:
			c.metrics.ObserveUpstream(op, http.StatusOK, time.Since(start))
			return "", fmt.Errorf("%s: %w: %v", op, domain.ErrBadUpstreamResponse, err)
		}
	}
	c.metrics.ObserveUpstream(op, http.StatusOK, time.Since(start))

	return token.AccessToken, nil
}

// User API

func (c *client) GetUser(ctx context.Context, record *domain.Record) (*domain.User, error) {
	if !record.Authenticated() || record.UserID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	var user domain.User
	if err := c.get(ctx, record, "get_user", "/users/"+url.PathEscape(record.UserID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Receipt API

type receiptPageResponse struct {
	Count   int               `json:"count"`
	Results *[]domain.Receipt `json:"results"`
}

func (c *client) ListReceipts(ctx context.Context, record *domain.Record, query ports.ReceiptQuery) (*domain.ReceiptPage, error) {
	const op = "list_receipts"

	if !record.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	if record.ShopID == "" {
		return nil, fmt.Errorf("shopID must be configured")
	}

	params := url.Values{}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.WasPaid != nil {
		params.Set("was_paid", strconv.FormatBool(*query.WasPaid))
	}
	if query.WasShipped != nil {
		params.Set("was_shipped", strconv.FormatBool(*query.WasShipped))
	}

	var resp receiptPageResponse
	if err := c.get(ctx, record, op, "/shops/"+url.PathEscape(record.ShopID)+"/receipts", params, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("%s: %w: missing results", op, domain.ErrBadUpstreamResponse)
	}

	return &domain.ReceiptPage{Count: resp.Count, Results: *resp.Results}, nil
}

// get performs an authenticated GET against the application API and decodes the JSON body into out
func (c *client) get(ctx context.Context, record *domain.Record, op, path string, params url.Values, out any) error {
	endpoint := c.apiBaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.authorizedClient(ctx, record).Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(op, 0, time.Since(start))
		c.logger.Error().Err(err).Str("op", op).Msg("Etsy request failed")
		return &domain.UpstreamError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	c.metrics.ObserveUpstream(op, resp.StatusCode, time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error().
			Str("op", op).
			Int("status", resp.StatusCode).
			Str("response", excerpt(body)).
			Msg("Etsy API returned non-success status")
		return &domain.UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
	if err != nil {
		return &domain.UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrBadUpstreamResponse, err)
	}
	return nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxErrorExcerpt {
		return s
	}
	n := maxErrorExcerpt
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
