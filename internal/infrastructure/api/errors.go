package api

import (
	"errors"
	"net/http"

	"etsy-receipts/internal/domain"

	"github.com/rs/zerolog"
)

const notAuthenticatedHint = "not authenticated: visit /generate to connect your Etsy account"

// statusFor maps a service error to the HTTP status and body shown to the browser.
// Upstream details stay in the logs.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingCode):
		return http.StatusBadRequest, domain.ErrMissingCode.Error()
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest, domain.ErrInvalidState.Error()
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, notAuthenticatedHint
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "authorization already in progress, visit /generate to restart"
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrBadUpstreamResponse):
		return http.StatusBadGateway, domain.ErrUpstream.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, msg string, err error) {
	status, body := statusFor(err)

	event := logger.Error()
	if status < http.StatusInternalServerError {
		event = logger.Warn()
	}
	var upstreamErr *domain.UpstreamError
	if errors.As(err, &upstreamErr) {
		event = event.Str("op", upstreamErr.Op).Int("upstream_status", upstreamErr.StatusCode)
	}
	event.Err(err).Int("status", status).Msg(msg)

	http.Error(w, body, status)
}
