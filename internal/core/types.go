package core

import (
	"fmt"
	"strings"
)

// Row is one exported record keyed by column name. Values are strings,
// numbers or nil. Rows are read-only inputs to the engine.
type Row map[string]any

// ValidationType declares the expected shape of a column's values.
type ValidationType string

const (
	TypeNone   ValidationType = ""
	TypeText   ValidationType = "text"
	TypeDate   ValidationType = "date"
	TypeAHV    ValidationType = "ahv"
	TypeEmail  ValidationType = "email"
	TypeNumber ValidationType = "number"
	TypePLZ    ValidationType = "plz"
	TypeGender ValidationType = "gender"
	TypePhone  ValidationType = "phone"
)

// ColumnDefinition declares one expected column of an import type.
type ColumnDefinition struct {
	Name           string         `json:"name"`
	Required       bool           `json:"required"`
	Category       string         `json:"category"`
	ValidationType ValidationType `json:"validationType,omitempty"`
}

// Severity ranks a validation error. The zero value is treated as error.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ErrorKind identifies which check produced a ValidationError.
type ErrorKind string

const (
	KindRequired   ErrorKind = "required"
	KindFormat     ErrorKind = "format"
	KindFormatRule ErrorKind = "format_rule"
	KindDuplicate  ErrorKind = "duplicate"
	KindIdentity   ErrorKind = "identity"
	KindDiacritic  ErrorKind = "diacritic"
)

// Strategy names the identity matching pass that produced a match.
type Strategy string

const (
	StrategyAHV         Strategy = "AHV"
	StrategyNameAddress Strategy = "NAME_ADDRESS"
	StrategyNamePair    Strategy = "NAME_PAIR"
	StrategyNameOnly    Strategy = "NAME_ONLY"
)

// Reliability is the confidence tier of a matching strategy.
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// IdentityMatch carries the structured facts behind an identity
// inconsistency: which id is considered correct and why.
type IdentityMatch struct {
	Strategy      Strategy    `json:"strategy"`
	Reliability   Reliability `json:"reliability"`
	MatchKey      string      `json:"matchKey"` // display identifier, e.g. the AHV number or "Muster Anna"
	SlotLabel     string      `json:"slotLabel"`
	ReferenceRow  int         `json:"referenceRow"`
	ReferenceID   string      `json:"referenceId"`
	ReferenceSlot string      `json:"referenceSlot"`
	WarningText   string      `json:"warningText,omitempty"`
}

// ValidationError is one finding of a validation run.
//
// An error whose CorrectedValue is nil is open. Setting CorrectedValue marks it
// resolved, even when the value equals Value; that is how a finding is
// dismissed without changing data. Errors are never deleted.
type ValidationError struct {
	Row            int            `json:"row"` // 1-based
	Column         string         `json:"column"`
	Value          string         `json:"value"`
	Message        string         `json:"message"`
	CorrectedValue *string        `json:"correctedValue,omitempty"`
	Severity       Severity       `json:"severity,omitempty"`
	Kind           ErrorKind      `json:"kind"`
	FirstRow       int            `json:"firstRow,omitempty"` // duplicates: row holding the first occurrence
	RuleID         string         `json:"ruleId,omitempty"`   // format rule that fired
	Identity       *IdentityMatch `json:"identity,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, %s: %s", e.Row, e.Column, e.Message)
	}
	return e.Message
}

// IsOpen reports whether the error still awaits a resolution.
func (e ValidationError) IsOpen() bool {
	return e.CorrectedValue == nil
}

// EffectiveSeverity returns Severity, defaulting to error.
func (e ValidationError) EffectiveSeverity() Severity {
	if e.Severity == "" {
		return SeverityError
	}
	return e.Severity
}

// Resolve returns a copy of e with CorrectedValue set to v.
func (e ValidationError) Resolve(v string) ValidationError {
	e.CorrectedValue = &v
	return e
}

// ParentSlot names the columns of one parent/guardian position on a row.
type ParentSlot struct {
	Label           string   `json:"label"`
	IDColumn        string   `json:"idColumn"`
	AHVColumn       string   `json:"ahvColumn,omitempty"`
	NameColumn      string   `json:"nameColumn"`
	FirstNameColumn string   `json:"firstNameColumn"`
	StreetColumn    string   `json:"streetColumn,omitempty"`
	PhoneColumns    []string `json:"phoneColumns,omitempty"`
}

// Profile describes one import type: its columns and which checks apply.
type Profile struct {
	ImportType    string             `json:"importType"`
	Label         string             `json:"label"`
	Columns       []ColumnDefinition `json:"columns"`
	UniqueColumns []string           `json:"uniqueColumns,omitempty"`
	NameColumns   []string           `json:"nameColumns,omitempty"`
	ParentSlots   []ParentSlot       `json:"parentSlots,omitempty"`
}

// Column returns the definition with the given name (case-insensitive).
func (p Profile) Column(name string) (ColumnDefinition, bool) {
	for _, c := range p.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnDefinition{}, false
}

// ColumnNames returns the declared column names in order.
func (p Profile) ColumnNames() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}
