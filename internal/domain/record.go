package domain

import (
	"fmt"
	"strings"
)

// DefaultRecordName identifies the single config record in keyed backends
const DefaultRecordName = "default"

// Record is the persisted OAuth session for the local Etsy app.
// The JSON keys match the on-disk config file.
type Record struct {
	ClientID      string `json:"clientID"`
	RedirectURI   string `json:"redirectUri"`
	Scope         string `json:"scope"`
	ShopID        string `json:"shopID"`
	CodeVerifier  string `json:"codeVerifier"`
	CodeChallenge string `json:"codeChallenge"`
	State         string `json:"state"`
	AccessToken   string `json:"accessToken"`
	UserID        string `json:"userID"`
}

// Clone returns a copy that can be mutated without touching the original
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Validate checks the app settings a flow cannot start without
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record is empty", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.ClientID) == "" {
		return fmt.Errorf("%w: clientID is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.RedirectURI) == "" {
		return fmt.Errorf("%w: redirectUri is required", ErrInvalidRecord)
	}
	return nil
}

// Authenticated reports whether an access token has been stored
func (r *Record) Authenticated() bool {
	return r != nil && r.AccessToken != ""
}

// UserIDFromToken extracts the user ID Etsy prefixes to its access tokens
// ("12345678.abcdef..."). A token without a dot yields the whole token.
func UserIDFromToken(accessToken string) string {
	userID, _, _ := strings.Cut(accessToken, ".")
	return userID
}
