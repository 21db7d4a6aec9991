package memory

// advisor.go accepts correction suggestions from an external advisor. Its
// output is untrusted: every item is checked field by field and turned into
// a Rule only when it has the exact shape of a local correction.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSuggestions is returned when the payload is not a list of
// suggestions at all. Malformed items are rejected one by one instead.
var ErrInvalidSuggestions = errors.New("invalid suggestion payload")

// Suggestion is a proposed bulk correction.
type Suggestion struct {
	Column         string `json:"column"`
	OriginalValue  string `json:"originalValue"`
	CorrectedValue string `json:"correctedValue"`
	AffectedRows   []int  `json:"affectedRows"`
	Reason         string `json:"reason,omitempty"`
}

// Rejection explains why the suggestion at Index was dropped.
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Rule converts an accepted suggestion into an exact-match rule.
func (s Suggestion) Rule(importType string) Rule {
	return NewRule(importType, s.Column, s.OriginalValue, s.CorrectedValue, "", "")
}

// ParseSuggestions decodes advisor output. The payload is either a JSON
// array of suggestions or an object with a "suggestions" array.
func ParseSuggestions(data []byte) ([]Suggestion, []Rejection, error) {
	items, err := suggestionItems(data)
	if err != nil {
		return nil, nil, err
	}

	accepted := make([]Suggestion, 0, len(items))
	var rejected []Rejection
	for i, item := range items {
		s, reason := parseSuggestion(item)
		if reason != "" {
			rejected = append(rejected, Rejection{Index: i, Reason: reason})
			continue
		}
		accepted = append(accepted, s)
	}
	return accepted, rejected, nil
}

func suggestionItems(data []byte) ([]map[string]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSuggestions)
	}

	if data[0] == '{' {
		var wrapper struct {
			Suggestions json.RawMessage `json:"suggestions"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSuggestions, err)
		}
		if len(wrapper.Suggestions) == 0 {
			return nil, fmt.Errorf("%w: no suggestions array", ErrInvalidSuggestions)
		}
		data = wrapper.Suggestions
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuggestions, err)
	}
	return items, nil
}

// parseSuggestion returns the suggestion or the reason it is invalid.
func parseSuggestion(item map[string]json.RawMessage) (Suggestion, string) {
	var s Suggestion

	fields := []struct {
		name     string
		dst      *string
		nonEmpty bool
	}{
		{"column", &s.Column, true},
		{"originalValue", &s.OriginalValue, false},
		{"correctedValue", &s.CorrectedValue, false},
	}
	for _, f := range fields {
		raw, ok := item[f.name]
		if !ok {
			return s, fmt.Sprintf("missing %s", f.name)
		}
		if err := json.Unmarshal(raw, f.dst); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return s, fmt.Sprintf("%s must be a string", f.name)
		}
		if f.nonEmpty && *f.dst == "" {
			return s, fmt.Sprintf("%s must not be empty", f.name)
		}
	}
	if s.OriginalValue == s.CorrectedValue {
		return s, "correctedValue equals originalValue"
	}

	raw, ok := item["affectedRows"]
	if !ok {
		return s, "missing affectedRows"
	}
	var nums []float64
	if err := json.Unmarshal(raw, &nums); err != nil || nums == nil {
		return s, "affectedRows must be an array of numbers"
	}
	for _, n := range nums {
		if n < 1 || n != math.Trunc(n) {
			return s, fmt.Sprintf("affectedRows holds invalid row %v", n)
		}
		s.AffectedRows = append(s.AffectedRows, int(n))
	}

	if raw, ok := item["reason"]; ok {
		_ = json.Unmarshal(raw, &s.Reason)
	}
	return s, ""
}
