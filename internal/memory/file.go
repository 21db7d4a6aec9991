package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// FormatVersion is the version tag written to and required in rule files.
const FormatVersion = "1.0"

// Rule file errors.
var (
	ErrInvalidFile        = errors.New("invalid rules file")
	ErrImportTypeMismatch = errors.New("import type mismatch")
	ErrMissingRules       = errors.New("missing rules")
	ErrUnsupportedVersion = errors.New("unsupported rules version")
)

// File is the exported form of a rule set.
type File struct {
	Version      string    `json:"version"`
	ExportedAt   time.Time `json:"exportedAt"`
	ExportedFrom string    `json:"exportedFrom"`
	ImportType   string    `json:"importType"`
	Rules        []Rule    `json:"rules"`
}

// Export serializes the rules of one import type.
func Export(rules []Rule, importType, exportedFrom string, now time.Time) ([]byte, error) {
	if rules == nil {
		rules = []Rule{}
	}
	f := File{
		Version:      FormatVersion,
		ExportedAt:   now.UTC(),
		ExportedFrom: exportedFrom,
		ImportType:   importType,
		Rules:        rules,
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rules: %w", err)
	}
	return data, nil
}

// Import parses a rule file and checks that it belongs to importType. The
// returned rules are exactly those that were exported.
func Import(data []byte, importType string) ([]Rule, error) {
	var raw struct {
		Version    string  `json:"version"`
		ImportType string  `json:"importType"`
		Rules      *[]Rule `json:"rules"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	if raw.Version != FormatVersion {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedVersion, raw.Version)
	}
	if raw.ImportType != importType {
		return nil, fmt.Errorf("%w: file is for %q, session is %q", ErrImportTypeMismatch, raw.ImportType, importType)
	}
	if raw.Rules == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, ErrMissingRules)
	}

	rules := *raw.Rules
	for i, r := range rules {
		if r.Column == "" {
			return nil, fmt.Errorf("%w: rule %d has no column", ErrInvalidFile, i)
		}
		switch r.MatchType {
		case MatchExact:
		case MatchIdentifier:
			if r.IdentifierColumn == "" {
				return nil, fmt.Errorf("%w: rule %d has no identifier column", ErrInvalidFile, i)
			}
		default:
			return nil, fmt.Errorf("%w: rule %d has unknown match type %q", ErrInvalidFile, i, r.MatchType)
		}
	}
	return rules, nil
}
