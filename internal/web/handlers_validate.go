package web

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/pupilbridge/internal/core"
	"github.com/JonMunkholm/pupilbridge/internal/logging"
	"github.com/JonMunkholm/pupilbridge/internal/memory"
	"github.com/JonMunkholm/pupilbridge/internal/table"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

// ValidateRequest is the JSON form of a validation request. File uploads
// send the same options as form fields next to "file".
type ValidateRequest struct {
	Rows        []core.Row        `json:"rows"`
	FormatRules []core.FormatRule `json:"formatRules,omitempty"`
	ApplyRules  bool              `json:"applyRules,omitempty"`
}

// ValidateResponse is the result of one validation run.
type ValidateResponse struct {
	RunID          string                     `json:"runId"`
	ImportType     string                     `json:"importType"`
	RowCount       int                        `json:"rowCount"`
	Headers        []string                   `json:"headers,omitempty"`
	MissingColumns []string                   `json:"missingColumns,omitempty"`
	Errors         []core.ValidationError     `json:"errors"`
	Summary        core.Summary               `json:"summary"`
	Corrections    []memory.AppliedCorrection `json:"corrections"`
	DurationMS     int64                      `json:"durationMs"`
}

// handleValidate validates an uploaded export or a JSON row set.
//
// Requests carrying the same X-Session-ID and import type supersede each
// other: the older request ends with 409 and only the newest gets a result.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}

	req, headers, err := s.readValidateRequest(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if limit := s.cfg.Validation.MaxRows; limit > 0 && len(req.Rows) > limit {
		s.fail(w, r, fmt.Errorf("%w: %d rows, limit is %d", errTooManyRows, len(req.Rows), limit))
		return
	}

	ctx, cancel := context.WithTimeout(withImportType(r.Context(), p.ImportType), s.runTimeout())
	defer cancel()

	runner := s.sessions.runner(sessionID(r), core.NewValidator(p), s.limiter)
	res := runner.Run(ctx, req.Rows, req.FormatRules...)
	if res.Err != nil {
		s.fail(w, r, res.Err)
		return
	}

	errs := res.Errors
	corrections := []memory.AppliedCorrection{}
	if req.ApplyRules {
		applied, err := s.replayRules(ctx, p.ImportType, req.Rows, errs)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		errs = applied.ResolveErrors(errs)
		corrections = applied.Corrections
	}
	if errs == nil {
		errs = []core.ValidationError{}
	}

	resp := ValidateResponse{
		RunID:       res.ID,
		ImportType:  p.ImportType,
		RowCount:    len(req.Rows),
		Headers:     headers,
		Errors:      errs,
		Summary:     core.Summarize(errs),
		Corrections: corrections,
		DurationMS:  res.Duration.Milliseconds(),
	}
	if headers != nil {
		resp.MissingColumns = core.MissingColumns(headers, p)
	}

	logging.FromContext(ctx).Info("validation finished",
		"run_id", res.ID,
		"rows", len(req.Rows),
		"open", resp.Summary.Open,
		"corrections", len(corrections),
		"duration_ms", resp.DurationMS,
	)
	writeJSON(w, http.StatusOK, resp)
}

// readValidateRequest reads either a multipart upload or a JSON body.
// headers is nil for JSON requests.
func (s *Server) readValidateRequest(w http.ResponseWriter, r *http.Request) (ValidateRequest, []string, error) {
	var req ValidateRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		err := s.decodeJSON(w, r, &req)
		return req, nil, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Validation.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return req, nil, uploadError(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return req, nil, errNoFile
	}
	defer file.Close()

	t, err := table.Read(header.Filename, file)
	if err != nil {
		return req, nil, fmt.Errorf("read %s: %w", header.Filename, err)
	}
	req.Rows = t.Rows

	if raw := r.FormValue("formatRules"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.FormatRules); err != nil {
			return req, nil, fmt.Errorf("%w: formatRules: %v", errInvalidRequest, err)
		}
	}
	req.ApplyRules, _ = strconv.ParseBool(r.FormValue("applyRules"))

	return req, t.Headers, nil
}

// replayRules applies the stored rules of importType to a validated row set
// and records how often each rule fired.
func (s *Server) replayRules(ctx context.Context, importType string, rows []core.Row, errs []core.ValidationError) (memory.Result, error) {
	s.ruleMu.Lock()
	defer s.ruleMu.Unlock()

	rules, err := s.rules.Load(ctx, importType)
	if err != nil {
		return memory.Result{}, fmt.Errorf("load rules: %w", err)
	}

	res := memory.Apply(rules, rows, errs)
	if res.Stats.Applied > 0 {
		if err := s.rules.Save(ctx, importType, memory.RecordUsage(rules, res.Stats)); err != nil {
			return memory.Result{}, fmt.Errorf("save rule usage: %w", err)
		}
	}
	return res, nil
}

// elapsedMS is used by handlers that time work outside a core.Runner.
func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
