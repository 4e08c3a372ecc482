// Package api serves the bookgest HTTP interface: asynchronous ingestion,
// manifest and chunk lookup, and operational endpoints.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/dgallion1/bookgest/internal/metrics"
	"github.com/dgallion1/bookgest/internal/pipeline"
	"github.com/dgallion1/bookgest/internal/sink"
	"github.com/dgallion1/bookgest/internal/store"
)

// Config holds the server settings taken from the process configuration.
type Config struct {
	APIKey         string
	MaxUploadBytes int64
	CORSOrigins    []string
}

// Deps are the components the handlers read from. Stats and Metrics may be
// nil.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Store        store.Store
	Sink         *sink.JSONL
	Stats        *pipeline.StageStats
	Metrics      *metrics.Metrics
}

// Server is the HTTP API server for bookgest.
type Server struct {
	router chi.Router
	deps   Deps
	log    *slog.Logger
	cfg    Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg Config) *Server {
	s := &Server{
		deps: deps,
		log:  log,
		cfg:  cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"Content-Length", "Content-Type", "X-Request-Id"},
		}).Handler)
	}

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/ingest", s.handleIngest)
		r.Post("/api/ingest/batch", s.handleBatchIngest)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)

		r.Get("/api/books", s.handleListBooks)
		r.Get("/api/books/{bookID}", s.handleGetBook)
		r.Get("/api/books/{bookID}/chunks", s.handleBookChunks)

		r.Post("/api/context", s.handleContext)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
