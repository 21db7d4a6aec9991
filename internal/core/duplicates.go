package core

import "fmt"

// FindDuplicates reports every repeated non-blank value in the given columns.
// The first occurrence of a value is never flagged; each later occurrence
// yields one error pointing back at it. Errors come out in row order.
func FindDuplicates(rows []Row, columns []string) []ValidationError {
	if len(columns) == 0 {
		return nil
	}

	firstSeen := make([]map[string]int, len(columns))
	for i := range firstSeen {
		firstSeen[i] = make(map[string]int)
	}

	var errs []ValidationError
	for i, row := range rows {
		rowNum := i + 1
		for c, col := range columns {
			value := CellString(row, col)
			if value == "" {
				continue
			}
			first, seen := firstSeen[c][value]
			if !seen {
				firstSeen[c][value] = rowNum
				continue
			}
			errs = append(errs, ValidationError{
				Row:      rowNum,
				Column:   col,
				Value:    value,
				Message:  fmt.Sprintf("duplicate value %q (first seen in row %d)", value, first),
				Severity: SeverityError,
				Kind:     KindDuplicate,
				FirstRow: first,
			})
		}
	}
	return errs
}
