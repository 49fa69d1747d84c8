// Package server exposes the persistence gateway over HTTP.
//
// The API mirrors the gateway operations one to one: definitions are
// created and fetched by short id, bindings are appended and queried
// per (app, env) pair or listed in aggregate. The server owns no state
// of its own; the store handle is injected at construction and its
// lifecycle belongs to the caller.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"envgate/internal/store"
)

// Server wires the gateway into an HTTP API.
type Server struct {
	store   *store.Store
	log     zerolog.Logger
	handler http.Handler
}

// New builds a Server around an already-open store.
func New(st *store.Store, logger zerolog.Logger) *Server {
	s := &Server{store: st, log: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/envdefs", s.handleSaveDefinition)
	r.Get("/envdefs/{envID}", s.handleGetDefinition)

	r.Post("/appenvs", s.handleBind)
	r.Get("/appenvs", s.handleCurrentBinding)
	r.Get("/appenvs/list", s.handleListBindings)

	s.handler = r
	return s
}

// Handler returns the root http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.handler)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request with a correlation id.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			correlationID := uuid.Must(uuid.NewV7()).String()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info().
				Str("correlation_id", correlationID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
