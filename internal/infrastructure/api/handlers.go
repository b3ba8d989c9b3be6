package api

import (
	"encoding/json"
	"net/http"

	"etsy-receipts/internal/application"

	"github.com/rs/zerolog"
)

// Routes the views link to
const (
	routeIndex           = "/"
	routeGenerate        = "/generate"
	routeOAuthRedirect   = "/oauth/redirect"
	routeWelcome         = "/welcome"
	routeReceipts        = "/showreceipts"
	routeOrderedArticles = "/showorderedarticles"
)

// Handler serves the browser-facing routes
type Handler struct {
	oauth    *application.OAuthService
	receipts *application.ReceiptService
	logger   zerolog.Logger
}

// NewHandler creates a new HTTP handler set
func NewHandler(oauth *application.OAuthService, receipts *application.ReceiptService, logger zerolog.Logger) *Handler {
	return &Handler{
		oauth:    oauth,
		receipts: receipts,
		logger:   logger,
	}
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	err := render(w, "index.html", indexView{
		GenerateURL: routeGenerate,
		ReceiptURL:  routeReceipts,
		ArticleURL:  routeOrderedArticles,
		FlowState:   h.oauth.State().String(),
	})
	if err != nil {
		writeError(w, h.logger, "Failed to render index", err)
	}
}

// generate starts a new OAuth flow and sends the browser to Etsy
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.oauth.Begin(r.Context())
	if err != nil {
		writeError(w, h.logger, "Failed to start OAuth flow", err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// oauthRedirect handles the Etsy callback
func (h *Handler) oauthRedirect(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if errCode := r.URL.Query().Get("error"); errCode != "" {
		h.logger.Warn().
			Str("error", errCode).
			Str("description", r.URL.Query().Get("error_description")).
			Msg("Etsy denied the authorization request")
	}

	if err := h.oauth.Complete(r.Context(), code, state); err != nil {
		writeError(w, h.logger, "Failed to complete OAuth flow", err)
		return
	}
	http.Redirect(w, r, routeWelcome, http.StatusFound)
}

func (h *Handler) welcome(w http.ResponseWriter, r *http.Request) {
	user, err := h.oauth.Profile(r.Context())
	if err != nil {
		writeError(w, h.logger, "Failed to load user profile", err)
		return
	}

	err = render(w, "welcome.html", welcomeView{
		FirstName:  user.FirstName,
		ReceiptURL: routeReceipts,
		ArticleURL: routeOrderedArticles,
	})
	if err != nil {
		writeError(w, h.logger, "Failed to render welcome page", err)
	}
}

func (h *Handler) showReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.receipts.ShowReceipts(r.Context())
	if err != nil {
		writeError(w, h.logger, "Failed to load receipts", err)
		return
	}

	if err := render(w, "receipts.html", receiptsView{Receipts: receipts}); err != nil {
		writeError(w, h.logger, "Failed to render receipts", err)
	}
}

func (h *Handler) showOrderedArticles(w http.ResponseWriter, r *http.Request) {
	counts, err := h.receipts.OrderedArticles(r.Context())
	if err != nil {
		writeError(w, h.logger, "Failed to count ordered articles", err)
		return
	}
	writeJSON(w, h.logger, counts)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, map[string]string{
		"status": "ok",
		"flow":   h.oauth.State().String(),
	})
}

func (h *Handler) swaggerDoc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(swaggerJSON)
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}
