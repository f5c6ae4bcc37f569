package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical/mcq-extractor/cmd/mcq-extractor-api/handlers"
	"github.com/spherical/mcq-extractor/cmd/mcq-extractor-api/middleware"
	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/observability"
)

// AppConfig holds what the router needs from the wider configuration.
type AppConfig struct {
	RequestTimeout time.Duration
	MaxUploadBytes int64
	AllowedOrigins []string
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg AppConfig, processor handlers.Processor, store domain.ExtractionStore) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	extraction := handlers.NewExtractionHandler(logger.WithComponent("api"), processor, store, cfg.MaxUploadBytes)

	r.Get("/", handlers.Root)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", handlers.APIRoot)
		r.Get("/health", handlers.Health)
		r.Post("/extract-questions", extraction.Extract)

		r.Route("/extractions", func(r chi.Router) {
			r.Get("/", extraction.List)
			r.Get("/{id}", extraction.Get)
		})
	})

	return r
}
