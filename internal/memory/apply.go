package memory

import (
	"github.com/JonMunkholm/pupilbridge/internal/core"
)

// AppliedCorrection is one cell a rule rewrites.
type AppliedCorrection struct {
	Row            int       `json:"row"` // 1-based
	Column         string    `json:"column"`
	OriginalValue  string    `json:"originalValue"`
	CorrectedValue string    `json:"correctedValue"`
	RuleID         string    `json:"ruleId"`
	MatchType      MatchType `json:"matchType"`
	ErrorIndex     int       `json:"errorIndex"` // index of the open error it resolves, -1 if none
}

// Stats summarizes one Apply call.
type Stats struct {
	Rules          int            `json:"rules"`
	Applied        int            `json:"applied"`
	ErrorsResolved int            `json:"errorsResolved"`
	ByRule         map[string]int `json:"byRule"`
}

// Result is the outcome of Apply. Nothing is changed until the caller uses
// ResolveErrors or ApplyToRows.
type Result struct {
	Corrections []AppliedCorrection `json:"corrections"`
	Stats       Stats               `json:"stats"`
}

type errorKey struct {
	row    int
	column string
	value  string
}

// Apply finds every cell the rules rewrite. A rule matches a cell that holds
// its OriginalValue; identifier-scoped rules also need their identifier on
// the same row and take precedence over exact rules. Each cell receives at
// most one correction, and rules that would not change the cell are skipped,
// so applying the result twice has no further effect.
//
// errs links each correction to the open validation error it resolves.
func Apply(rules []Rule, rows []core.Row, errs []core.ValidationError) Result {
	res := Result{
		Corrections: []AppliedCorrection{},
		Stats:       Stats{Rules: len(rules), ByRule: make(map[string]int)},
	}
	if len(rules) == 0 {
		return res
	}

	byColumn := make(map[string][]Rule)
	var columns []string
	for _, r := range rules {
		if r.Column == "" || r.OriginalValue == r.CorrectedValue {
			continue
		}
		if _, ok := byColumn[r.Column]; !ok {
			columns = append(columns, r.Column)
		}
		byColumn[r.Column] = append(byColumn[r.Column], r)
	}

	open := make(map[errorKey]int)
	for i, e := range errs {
		if !e.IsOpen() {
			continue
		}
		k := errorKey{e.Row, e.Column, e.Value}
		if _, ok := open[k]; !ok {
			open[k] = i
		}
	}

	for i, row := range rows {
		rowNum := i + 1
		for _, col := range columns {
			value := core.CellString(row, col)
			r, ok := pickRule(byColumn[col], row, value)
			if !ok {
				continue
			}

			c := AppliedCorrection{
				Row:            rowNum,
				Column:         col,
				OriginalValue:  value,
				CorrectedValue: r.CorrectedValue,
				RuleID:         r.ID,
				MatchType:      r.MatchType,
				ErrorIndex:     -1,
			}
			if idx, ok := open[errorKey{rowNum, col, value}]; ok {
				c.ErrorIndex = idx
				res.Stats.ErrorsResolved++
			}
			res.Corrections = append(res.Corrections, c)
			res.Stats.Applied++
			res.Stats.ByRule[r.ID]++
		}
	}
	return res
}

// pickRule returns the rule that rewrites value on row, preferring
// identifier-scoped rules.
func pickRule(rules []Rule, row core.Row, value string) (Rule, bool) {
	var exact *Rule
	for i := range rules {
		r := &rules[i]
		if r.OriginalValue != value || value == r.CorrectedValue {
			continue
		}
		switch r.MatchType {
		case MatchIdentifier:
			if r.IdentifierColumn != "" && core.CellString(row, r.IdentifierColumn) == r.IdentifierValue {
				return *r, true
			}
		default:
			if exact == nil {
				exact = r
			}
		}
	}
	if exact != nil {
		return *exact, true
	}
	return Rule{}, false
}

// ResolveErrors returns a copy of errs with every error a correction points
// at resolved to the corrected value.
func (res Result) ResolveErrors(errs []core.ValidationError) []core.ValidationError {
	out := make([]core.ValidationError, len(errs))
	copy(out, errs)
	for _, c := range res.Corrections {
		if c.ErrorIndex < 0 || c.ErrorIndex >= len(out) {
			continue
		}
		out[c.ErrorIndex] = out[c.ErrorIndex].Resolve(c.CorrectedValue)
	}
	return out
}

// ApplyToRows writes the corrections into copies of the affected rows.
func (res Result) ApplyToRows(rows []core.Row) []core.Row {
	resolutions := make([]core.ValidationError, 0, len(res.Corrections))
	for _, c := range res.Corrections {
		resolutions = append(resolutions, core.ValidationError{
			Row:    c.Row,
			Column: c.Column,
			Value:  c.OriginalValue,
		}.Resolve(c.CorrectedValue))
	}
	return core.ApplyResolutions(rows, resolutions)
}

// RecordUsage returns a copy of rules with AppliedCount increased by how
// often each rule was applied.
func RecordUsage(rules []Rule, stats Stats) []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	for i := range out {
		out[i].AppliedCount += stats.ByRule[out[i].ID]
	}
	return out
}
