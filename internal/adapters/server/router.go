package server

import (
	"log/slog"

	"github.com/bnema/challenge-harvester/internal/application"
	"github.com/go-chi/chi/v5"
)

// NewRouter creates the chi router for the collection endpoint.
func NewRouter(collector *application.CollectorService, apiKey string, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(collector)
	tokenH := NewTokenHandler(collector, logger)

	r.Get("/health", healthH.Health)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Post("/api", tokenH.Store)
		r.Get("/api/tokens", tokenH.List)
		r.Get("/api/tokens/latest", tokenH.Latest)
		r.Delete("/api/tokens/clear", tokenH.Clear)
	})

	return r
}
