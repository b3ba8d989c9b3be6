// Package api exposes the OAuth flow and the receipt views over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	Handler        *Handler
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter wires the middleware stack and every route
func NewRouter(opts RouterOptions) http.Handler {
	h := opts.Handler

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Public routes
	r.Get("/health", h.health)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", h.swaggerDoc)

	// OAuth flow
	r.Get(routeIndex, h.index)
	r.Get(routeGenerate, h.generate)
	r.Get(routeOAuthRedirect, h.oauthRedirect)
	r.Get(routeWelcome, h.welcome)

	// Shop data
	r.Get(routeReceipts, h.showReceipts)
	r.Get(routeOrderedArticles, h.showOrderedArticles)

	return r
}
