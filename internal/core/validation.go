package core

// validation.go provides cell-level validation against a ColumnDefinition.
//
// Validation happens per cell:
//  1. Required check: a required column must not be blank
//  2. Type check: the value must match the column's ValidationType
//
// Blank optional cells short-circuit; no format rule applies to them. The
// functions here are pure and never fail on malformed data: a value that
// cannot be parsed is reported, not raised.

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/pupilbridge/internal/normalize"
)

var (
	ahvRegex   = regexp.MustCompile(`^756\.\d{4}\.\d{4}\.\d{2}$`)
	plzRegex   = regexp.MustCompile(`^\d{4,5}$`)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^(\+\d{2}|00\d{2}|0)\d+$`)
)

// phoneSeparators are stripped before a phone number is shape-checked.
var phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "/", "", "(", "", ")", "")

// ValidateField checks a single value against its column definition.
// Returns "" when the value is acceptable, otherwise a human-readable message.
func ValidateField(value string, def ColumnDefinition) string {
	value = strings.TrimSpace(value)

	if value == "" {
		if def.Required {
			return fmt.Sprintf("required field %q is empty", def.Name)
		}
		return ""
	}

	switch def.ValidationType {
	case TypeAHV:
		if !ahvRegex.MatchString(value) {
			return "invalid AHV number (expected 756.XXXX.XXXX.XX)"
		}
	case TypeDate:
		if _, ok := ParseDate(value); !ok {
			return "invalid date format (use DD.MM.YYYY, YYYY-MM-DD or DD/MM/YYYY)"
		}
	case TypeEmail:
		if !emailRegex.MatchString(value) {
			return "invalid email address"
		}
	case TypeNumber:
		if _, ok := ParseNumber(value); !ok {
			return "invalid number format"
		}
	case TypePLZ:
		if !plzRegex.MatchString(value) {
			return "invalid postal code (expected 4 or 5 digits)"
		}
	case TypeGender:
		if _, ok := normalize.FormatGender(value); !ok {
			return "invalid gender (expected M, W or D)"
		}
	case TypePhone:
		if !isPhone(value) {
			return "invalid phone number (use +41, 0041 or 0 followed by 7-15 digits)"
		}
	}
	return ""
}

func isPhone(value string) bool {
	compact := phoneSeparators.Replace(value)
	if !phoneRegex.MatchString(compact) {
		return false
	}
	n := len(normalize.PhoneDigits(compact))
	return n >= 7 && n <= 15
}

// SuggestFix returns a canonical rendering of value for its column type, if
// one can be derived with confidence. It is used to pre-fill corrections in
// the UI; it never changes data by itself.
func SuggestFix(value string, def ColumnDefinition) (string, bool) {
	switch def.ValidationType {
	case TypeAHV:
		return normalize.FormatAHV(value)
	case TypePhone:
		return normalize.FormatPhone(value)
	case TypePLZ:
		return normalize.FormatPLZ(value)
	case TypeEmail:
		return normalize.FormatEmail(value)
	case TypeGender:
		return normalize.FormatGender(value)
	case TypeDate:
		if t, ok := ParseDate(value); ok {
			return FormatDate(t), true
		}
	}
	return "", false
}

// validateRow runs ValidateField over every declared column of one row and
// appends findings to errs. rowNum is 1-based.
func validateRow(errs []ValidationError, row Row, rowNum int, columns []ColumnDefinition, rules []compiledFormatRule) []ValidationError {
	for _, def := range columns {
		value := CellString(row, def.Name)

		if msg := ValidateField(value, def); msg != "" {
			kind := KindFormat
			if value == "" {
				kind = KindRequired
			}
			errs = append(errs, ValidationError{
				Row:      rowNum,
				Column:   def.Name,
				Value:    value,
				Message:  msg,
				Severity: SeverityError,
				Kind:     kind,
			})
			continue
		}

		if value == "" {
			continue
		}
		for _, r := range rules {
			if !r.appliesTo(def.Name) || r.re.MatchString(value) {
				continue
			}
			errs = append(errs, ValidationError{
				Row:      rowNum,
				Column:   def.Name,
				Value:    value,
				Message:  r.message,
				Severity: r.severity,
				Kind:     KindFormatRule,
				RuleID:   r.id,
			})
			break
		}
	}
	return errs
}
