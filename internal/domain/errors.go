package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound is returned by a record store that holds no record yet
	ErrRecordNotFound = errors.New("config record not found")

	// ErrInvalidRecord indicates a stored record that cannot be decoded
	ErrInvalidRecord = errors.New("invalid config record")

	// ErrUpstream marks any failed call to the Etsy API
	ErrUpstream = errors.New("upstream request failed")

	// ErrBadUpstreamResponse indicates a response that is missing expected fields or cannot be decoded
	ErrBadUpstreamResponse = errors.New("bad upstream response")

	// ErrNotAuthenticated is returned when an authenticated call is made before a token exists
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrMissingCode indicates an authorization callback without a code
	ErrMissingCode = errors.New("missing authorization code")

	// ErrInvalidState indicates a callback whose state does not match the stored nonce
	ErrInvalidState = errors.New("invalid state parameter")

	// ErrInvalidTransition indicates an OAuth step invoked from the wrong flow state
	ErrInvalidTransition = errors.New("invalid flow transition")
)

// UpstreamError carries the context of a failed Etsy call.
// StatusCode is zero when the request never got a response.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, ErrUpstream)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is lets errors.Is(err, ErrUpstream) match any UpstreamError
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
