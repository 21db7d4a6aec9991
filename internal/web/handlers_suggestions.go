package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/pupilbridge/internal/logging"
	"github.com/JonMunkholm/pupilbridge/internal/memory"
)

// SuggestionsResponse lists the advisor suggestions that passed validation
// as rules, and why the others were dropped.
type SuggestionsResponse struct {
	Rules    []memory.Rule      `json:"rules"`
	Rejected []memory.Rejection `json:"rejected"`
	Saved    bool               `json:"saved"`
}

// handleSuggestions checks an external advisor payload. Accepted
// suggestions become exact rules; with ?save=true they are merged into the
// stored rule set.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}
	save, _ := strconv.ParseBool(r.URL.Query().Get("save"))

	data, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	accepted, rejected, err := memory.ParseSuggestions(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := SuggestionsResponse{
		Rules:    make([]memory.Rule, 0, len(accepted)),
		Rejected: rejected,
	}
	if resp.Rejected == nil {
		resp.Rejected = []memory.Rejection{}
	}
	for _, sg := range accepted {
		resp.Rules = append(resp.Rules, sg.Rule(p.ImportType))
	}

	if save && len(resp.Rules) > 0 {
		err := s.updateRules(r.Context(), p.ImportType, func(rules []memory.Rule) ([]memory.Rule, error) {
			return memory.Merge(rules, resp.Rules), nil
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resp.Saved = true
	}

	logging.FromContext(r.Context()).Info("advisor suggestions checked",
		"import_type", p.ImportType,
		"accepted", len(resp.Rules),
		"rejected", len(resp.Rejected),
		"saved", resp.Saved,
	)
	writeJSON(w, http.StatusOK, resp)
}
