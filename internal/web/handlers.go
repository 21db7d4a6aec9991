package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/pupilbridge/internal/core"
)

// pinger is implemented by rule stores that can report their health.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status   string             `json:"status"`
	Store    string             `json:"store"`
	Runs     core.LimiterStatus `json:"runs"`
	Sessions int                `json:"sessions"`
}

// handleHealth reports the state of the run limiter and the rule store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Store: "ok", Sessions: s.sessions.len()}
	if s.limiter != nil {
		resp.Runs = s.limiter.Status()
	}

	status := http.StatusOK
	if p, ok := s.rules.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Store = core.MapError(err).Message
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

// handleListImportTypes returns every registered import profile.
func (s *Server) handleListImportTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.All())
}

// handleGetImportType returns one import profile.
func (s *Server) handleGetImportType(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DetectRequest carries the header row of a file whose type is unknown.
type DetectRequest struct {
	Headers []string `json:"headers"`
}

// handleDetect ranks import types by how well they fit a header row.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(req.Headers) == 0 {
		s.fail(w, r, errInvalidRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.registry.Detect(req.Headers))
}

// profile resolves the {importType} URL parameter and writes the error
// response itself when the type is unknown.
func (s *Server) profile(w http.ResponseWriter, r *http.Request) (core.Profile, bool) {
	p, err := s.registry.Get(chi.URLParam(r, "importType"))
	if err != nil {
		s.fail(w, r, err)
		return core.Profile{}, false
	}
	return p, true
}

// decodeJSON decodes a size-limited JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Validation.MaxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return uploadError(err)
	}
	return nil
}
