package core

import (
	"log/slog"
	"regexp"
	"strings"
)

// FormatRule is a user-defined shape check layered on top of the built-in
// column types. Values in the listed columns must match Pattern; a rule with
// no columns applies to every column.
type FormatRule struct {
	ID       string   `json:"id"`
	Columns  []string `json:"columns,omitempty"`
	Pattern  string   `json:"pattern"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity,omitempty"`
	Disabled bool     `json:"disabled,omitempty"`
}

type compiledFormatRule struct {
	id       string
	columns  map[string]bool
	re       *regexp.Regexp
	message  string
	severity Severity
}

func (r compiledFormatRule) appliesTo(column string) bool {
	return len(r.columns) == 0 || r.columns[strings.ToLower(column)]
}

// compileFormatRules compiles rules for one validation run. Rules with an
// invalid pattern are skipped so a typo in one rule cannot break the pass.
func compileFormatRules(rules []FormatRule) []compiledFormatRule {
	if len(rules) == 0 {
		return nil
	}

	out := make([]compiledFormatRule, 0, len(rules))
	for _, r := range rules {
		if r.Disabled || strings.TrimSpace(r.Pattern) == "" {
			continue
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			slog.Debug("skipping format rule with invalid pattern",
				"rule_id", r.ID,
				"pattern", r.Pattern,
				"error", err,
			)
			continue
		}

		cols := make(map[string]bool, len(r.Columns))
		for _, c := range r.Columns {
			cols[strings.ToLower(strings.TrimSpace(c))] = true
		}

		msg := r.Message
		if msg == "" {
			msg = "value does not match the expected format"
		}
		sev := r.Severity
		if sev == "" {
			sev = SeverityError
		}

		out = append(out, compiledFormatRule{
			id:       r.ID,
			columns:  cols,
			re:       re,
			message:  msg,
			severity: sev,
		})
	}
	return out
}
