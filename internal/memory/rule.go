// Package memory records user corrections as rules and replays them on later
// datasets of the same import type.
//
// Rules are plain values. Functions here return new slices and never mutate
// their inputs; persisting a rule set is the job of a Store.
package memory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrRuleNotFound is returned when a rule id does not exist in a rule set.
var ErrRuleNotFound = errors.New("rule not found")

// MatchType decides when a rule applies to a cell.
type MatchType string

const (
	// MatchExact applies wherever the cell holds OriginalValue.
	MatchExact MatchType = "exact"
	// MatchIdentifier additionally requires IdentifierColumn to hold
	// IdentifierValue on the same row.
	MatchIdentifier MatchType = "identifier"
)

// Rule rewrites OriginalValue to CorrectedValue in Column.
type Rule struct {
	ID               string    `json:"id"`
	Column           string    `json:"column"`
	OriginalValue    string    `json:"originalValue"`
	CorrectedValue   string    `json:"correctedValue"`
	MatchType        MatchType `json:"matchType"`
	IdentifierColumn string    `json:"identifierColumn,omitempty"`
	IdentifierValue  string    `json:"identifierValue,omitempty"`
	ImportType       string    `json:"importType"`
	CreatedAt        time.Time `json:"createdAt"`
	AppliedCount     int       `json:"appliedCount"`
}

// Store persists the rule set of each import type.
type Store interface {
	Load(ctx context.Context, importType string) ([]Rule, error)
	Save(ctx context.Context, importType string, rules []Rule) error
}

// NewRule creates a rule with a fresh id. A rule is identifier-scoped when
// both identifierColumn and identifierValue are given.
func NewRule(importType, column, original, corrected, identifierColumn, identifierValue string) Rule {
	r := Rule{
		ID:             uuid.NewString(),
		Column:         strings.TrimSpace(column),
		OriginalValue:  original,
		CorrectedValue: corrected,
		MatchType:      MatchExact,
		ImportType:     importType,
		CreatedAt:      time.Now().UTC(),
	}
	if identifierColumn != "" && identifierValue != "" {
		r.MatchType = MatchIdentifier
		r.IdentifierColumn = identifierColumn
		r.IdentifierValue = identifierValue
	}
	return r
}

// AddRule inserts r, or replaces the rule with the same column and original
// value. A replaced rule keeps its id, creation time and usage count.
func AddRule(rules []Rule, r Rule) []Rule {
	out := make([]Rule, 0, len(rules)+1)
	replaced := false
	for _, existing := range rules {
		if !replaced && existing.Column == r.Column && existing.OriginalValue == r.OriginalValue {
			r.ID = existing.ID
			r.CreatedAt = existing.CreatedAt
			r.AppliedCount = existing.AppliedCount
			out = append(out, r)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, r)
	}
	return out
}

// RemoveRule returns rules without the rule with the given id, and whether
// it was found.
func RemoveRule(rules []Rule, id string) ([]Rule, bool) {
	out := make([]Rule, 0, len(rules))
	found := false
	for _, r := range rules {
		if r.ID == id {
			found = true
			continue
		}
		out = append(out, r)
	}
	return out, found
}

// FindRule returns the rule with the given id.
func FindRule(rules []Rule, id string) (Rule, bool) {
	for _, r := range rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Merge adds every rule of incoming to rules with AddRule semantics.
func Merge(rules, incoming []Rule) []Rule {
	out := append([]Rule(nil), rules...)
	for _, r := range incoming {
		out = AddRule(out, r)
	}
	return out
}
