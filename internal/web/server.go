// Package web provides the JSON HTTP API of the validation engine.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/pupilbridge/internal/config"
	"github.com/JonMunkholm/pupilbridge/internal/core"
	"github.com/JonMunkholm/pupilbridge/internal/memory"
	"github.com/JonMunkholm/pupilbridge/internal/web/middleware"
)

// Server is the HTTP server of the validation service.
type Server struct {
	cfg      *config.Config
	registry *core.Registry
	limiter  *core.Limiter
	rules    memory.Store
	sessions *sessions
	router   *chi.Mux
	server   *http.Server

	// ruleMu serializes load-modify-save cycles on the rule store.
	ruleMu sync.Mutex
}

// NewServer creates a Server. Profiles come from registry, rule sets from
// rules, and limiter bounds concurrent validation runs across all requests.
func NewServer(cfg *config.Config, registry *core.Registry, limiter *core.Limiter, rules memory.Store) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		limiter:  limiter,
		rules:    rules,
		sessions: newSessions(sessionTTL),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5, "application/json"))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(middleware.SecurityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst).Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Import profiles
		r.Get("/import-types", s.handleListImportTypes)
		r.Get("/import-types/{importType}", s.handleGetImportType)
		r.Post("/detect", s.handleDetect)

		// Validation runs use a tighter limit than the rest of the API.
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(middleware.NewRateLimiter(s.cfg.Rate.ValidateLimit, s.cfg.Rate.Burst).Middleware)
			}
			r.Post("/validate/{importType}", s.handleValidate)
			r.Post("/suggestions/{importType}", s.handleSuggestions)
		})

		// Correction rules
		r.Route("/rules/{importType}", func(r chi.Router) {
			r.Get("/", s.handleListRules)
			r.Post("/", s.handleCreateRule)
			r.Delete("/{id}", s.handleDeleteRule)
			r.Get("/export", s.handleExportRules)
			r.Post("/import", s.handleImportRules)
			r.Post("/apply", s.handleApplyRules)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// runTimeout returns the wall-clock budget of one validation run.
func (s *Server) runTimeout() time.Duration {
	if s.cfg.Validation.RunTimeout > 0 {
		return s.cfg.Validation.RunTimeout
	}
	return time.Minute
}
