package etsy

import (
	"context"
	"net/http"

	"etsy-receipts/internal/domain"

	"golang.org/x/oauth2"
)

// apiKeyTransport adds the x-api-key header every Etsy v3 request needs
type apiKeyTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("x-api-key", t.apiKey)
	return t.base.RoundTrip(r)
}

// authorizedClient returns a client that sends the stored bearer token and API key.
// The token source is static: expired tokens are not refreshed.
func (c *client) authorizedClient(ctx context.Context, record *domain.Record) *http.Client {
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport: &apiKeyTransport{apiKey: record.ClientID, base: base},
	})
	authorized := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: record.AccessToken,
		TokenType:   "Bearer",
	}))
	authorized.Timeout = c.httpClient.Timeout
	return authorized
}
