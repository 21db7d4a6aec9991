package web

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/pupilbridge/internal/core"
	"github.com/JonMunkholm/pupilbridge/internal/logging"
	"github.com/JonMunkholm/pupilbridge/internal/memory"
)

// CreateRuleRequest records one user correction as a rule. The rule is
// scoped to one record when both identifier fields are set.
type CreateRuleRequest struct {
	Column           string `json:"column"`
	OriginalValue    string `json:"originalValue"`
	CorrectedValue   string `json:"correctedValue"`
	IdentifierColumn string `json:"identifierColumn,omitempty"`
	IdentifierValue  string `json:"identifierValue,omitempty"`
}

// ImportRulesResponse reports the outcome of a rule file import.
type ImportRulesResponse struct {
	Imported int    `json:"imported"`
	Total    int    `json:"total"`
	Mode     string `json:"mode"`
}

// ApplyRulesRequest carries a row set and its validation errors.
type ApplyRulesRequest struct {
	Rows   []core.Row             `json:"rows"`
	Errors []core.ValidationError `json:"errors"`
}

// ApplyRulesResponse holds the corrected rows and errors.
type ApplyRulesResponse struct {
	Corrections []memory.AppliedCorrection `json:"corrections"`
	Stats       memory.Stats               `json:"stats"`
	Rows        []core.Row                 `json:"rows"`
	Errors      []core.ValidationError     `json:"errors"`
	DurationMS  int64                      `json:"durationMs"`
}

// handleListRules returns the stored rules of an import type.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}

	rules, err := s.rules.Load(r.Context(), p.ImportType)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if rules == nil {
		rules = []memory.Rule{}
	}
	writeJSON(w, http.StatusOK, rules)
}

// handleCreateRule stores a correction as a rule. A rule for the same
// column and original value is replaced.
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}

	var req CreateRuleRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Column) == "" || req.OriginalValue == req.CorrectedValue {
		s.fail(w, r, fmt.Errorf("%w: a rule needs a column and a changed value", errInvalidRequest))
		return
	}
	if _, known := p.Column(strings.TrimSpace(req.Column)); !known {
		s.fail(w, r, fmt.Errorf("%w: unknown column %q", errInvalidRequest, req.Column))
		return
	}

	rule := memory.NewRule(p.ImportType, req.Column, req.OriginalValue, req.CorrectedValue,
		req.IdentifierColumn, req.IdentifierValue)

	var stored memory.Rule
	err := s.updateRules(r.Context(), p.ImportType, func(rules []memory.Rule) ([]memory.Rule, error) {
		rules = memory.AddRule(rules, rule)
		for _, existing := range rules {
			if existing.Column == rule.Column && existing.OriginalValue == rule.OriginalValue {
				stored = existing
			}
		}
		return rules, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("rule stored",
		"import_type", p.ImportType,
		"rule_id", stored.ID,
		"column", stored.Column,
	)
	writeJSON(w, http.StatusCreated, stored)
}

// handleDeleteRule removes one rule.
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	err := s.updateRules(r.Context(), p.ImportType, func(rules []memory.Rule) ([]memory.Rule, error) {
		out, found := memory.RemoveRule(rules, id)
		if !found {
			return nil, fmt.Errorf("%w: %s", memory.ErrRuleNotFound, id)
		}
		return out, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportRules downloads the rule set as a versioned JSON file.
func (s *Server) handleExportRules(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}

	rules, err := s.rules.Load(r.Context(), p.ImportType)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	now := time.Now()
	data, err := memory.Export(rules, p.ImportType, s.cfg.Server.InstanceName, now)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	filename := fmt.Sprintf("pupilbridge-rules-%s-%s.json", p.ImportType, now.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Write(data)
}

// handleImportRules loads a rule file. The default mode merges it into the
// stored rules; ?mode=replace discards them first.
func (s *Server) handleImportRules(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}

	mode := r.URL.Query().Get("mode")
	switch mode {
	case "":
		mode = "merge"
	case "merge", "replace":
	default:
		s.fail(w, r, fmt.Errorf("%w: unknown mode %q", errInvalidRequest, mode))
		return
	}

	data, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	imported, err := memory.Import(data, p.ImportType)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var total int
	err = s.updateRules(r.Context(), p.ImportType, func(rules []memory.Rule) ([]memory.Rule, error) {
		if mode == "replace" {
			rules = nil
		}
		rules = memory.Merge(rules, imported)
		total = len(rules)
		return rules, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("rules imported",
		"import_type", p.ImportType,
		"imported", len(imported),
		"total", total,
		"mode", mode,
	)
	writeJSON(w, http.StatusOK, ImportRulesResponse{Imported: len(imported), Total: total, Mode: mode})
}

// handleApplyRules replays the stored rules on a row set and returns the
// corrected rows with the resolved errors.
func (s *Server) handleApplyRules(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}

	var req ApplyRulesRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if limit := s.cfg.Validation.MaxRows; limit > 0 && len(req.Rows) > limit {
		s.fail(w, r, fmt.Errorf("%w: %d rows, limit is %d", errTooManyRows, len(req.Rows), limit))
		return
	}

	start := time.Now()
	res, err := s.replayRules(r.Context(), p.ImportType, req.Rows, req.Errors)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	errs := res.ResolveErrors(req.Errors)
	writeJSON(w, http.StatusOK, ApplyRulesResponse{
		Corrections: res.Corrections,
		Stats:       res.Stats,
		Rows:        res.ApplyToRows(req.Rows),
		Errors:      errs,
		DurationMS:  elapsedMS(start),
	})
}

// updateRules runs a load-modify-save cycle on the rules of importType.
func (s *Server) updateRules(ctx context.Context, importType string, fn func([]memory.Rule) ([]memory.Rule, error)) error {
	s.ruleMu.Lock()
	defer s.ruleMu.Unlock()

	rules, err := s.rules.Load(ctx, importType)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	rules, err = fn(rules)
	if err != nil {
		return err
	}
	if err := s.rules.Save(ctx, importType, rules); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	return nil
}

// readUpload returns the "file" part of a multipart request or the raw body
// of any other request.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Validation.MaxUploadSize)

	var src io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, uploadError(err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errNoFile
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, uploadError(err)
	}
	if len(data) == 0 {
		return nil, errNoFile
	}
	return data, nil
}
