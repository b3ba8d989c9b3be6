// Package pkce generates Proof Key for Code Exchange verifiers and S256 challenges.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// ChallengeMethod is the only challenge method this package produces
const ChallengeMethod = "S256"

const (
	verifierBytes = 32
	stateBytes    = 16
)

// Pair binds a verifier to the challenge derived from it
type Pair struct {
	Verifier  string
	Challenge string
}

// GenerateVerifier returns 32 random bytes encoded as unpadded base64url
func GenerateVerifier() (string, error) {
	b := make([]byte, verifierBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DeriveChallenge returns the S256 challenge for the exact verifier bytes
func DeriveChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NewPair generates a verifier together with its challenge
func NewPair() (Pair, error) {
	verifier, err := GenerateVerifier()
	if err != nil {
		return Pair{}, err
	}
	return Pair{Verifier: verifier, Challenge: DeriveChallenge(verifier)}, nil
}

// Verify checks a verifier against a challenge in constant time
func Verify(verifier, challenge string) bool {
	expected := DeriveChallenge(verifier)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(challenge)) == 1
}

// GenerateState returns an opaque anti-CSRF nonce for the authorization request
func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
