package core

import (
	"fmt"

	"github.com/JonMunkholm/pupilbridge/internal/normalize"
)

// spelling is one raw variant of a folded name value.
type spelling struct {
	value      string
	diacritics int
}

// ReconcileDiacritics finds name values that are equal once diacritics and
// case are ignored but are spelled differently, e.g. "Müller" and "Muller".
//
// Per column, the variant with the most diacritics is canonical (ties go to
// the first seen). Every row holding another variant gets a warning whose
// CorrectedValue is already set to the canonical spelling. The rows
// themselves are not changed; see ApplyResolutions.
func ReconcileDiacritics(rows []Row, nameColumns []string) []ValidationError {
	var errs []ValidationError

	for _, col := range nameColumns {
		variants := make(map[string][]spelling) // folded -> distinct spellings, first seen first
		for _, row := range rows {
			value := CellString(row, col)
			if value == "" {
				continue
			}
			folded := normalize.StripDiacritics(value)
			if !containsSpelling(variants[folded], value) {
				variants[folded] = append(variants[folded], spelling{
					value:      value,
					diacritics: normalize.CountDiacritics(value),
				})
			}
		}

		canonical := make(map[string]string)
		for folded, spellings := range variants {
			if len(spellings) < 2 {
				continue
			}
			best := spellings[0]
			for _, s := range spellings[1:] {
				if s.diacritics > best.diacritics {
					best = s
				}
			}
			canonical[folded] = best.value
		}
		if len(canonical) == 0 {
			continue
		}

		for i, row := range rows {
			value := CellString(row, col)
			if value == "" {
				continue
			}
			want, ok := canonical[normalize.StripDiacritics(value)]
			if !ok || want == value {
				continue
			}
			errs = append(errs, ValidationError{
				Row:            i + 1,
				Column:         col,
				Value:          value,
				Message:        fmt.Sprintf("spelling %q differs from %q used elsewhere", value, want),
				CorrectedValue: &want,
				Severity:       SeverityWarning,
				Kind:           KindDiacritic,
			})
		}
	}
	return errs
}

func containsSpelling(list []spelling, value string) bool {
	for _, s := range list {
		if s.value == value {
			return true
		}
	}
	return false
}
