package core

import "sort"

// Summary holds counts derived from a list of validation errors. It carries
// no information that is not already in the errors; it only saves the UI
// from recomputing it.
type Summary struct {
	Total      int               `json:"total"`
	Open       int               `json:"open"`
	Resolved   int               `json:"resolved"`
	Errors     int               `json:"errors"`
	Warnings   int               `json:"warnings"`
	ByColumn   map[string]int    `json:"byColumn"`
	ByKind     map[ErrorKind]int `json:"byKind"`
	Duplicates []DuplicateGroup  `json:"duplicates,omitempty"`
	Identities []IdentityGroup   `json:"identities,omitempty"`
	Strategies map[Strategy]int  `json:"strategies,omitempty"`
}

// DuplicateGroup lists every row holding one repeated value.
type DuplicateGroup struct {
	Column string `json:"column"`
	Value  string `json:"value"`
	Rows   []int  `json:"rows"` // first occurrence first
}

// IdentityGroup lists the rows whose id should be rewritten to ReferenceID.
type IdentityGroup struct {
	Column       string      `json:"column"`
	ReferenceID  string      `json:"referenceId"`
	ReferenceRow int         `json:"referenceRow"`
	Reliability  Reliability `json:"reliability"`
	Rows         []int       `json:"rows"`
}

// Summarize computes the summary of errs.
func Summarize(errs []ValidationError) Summary {
	s := Summary{
		Total:      len(errs),
		ByColumn:   make(map[string]int),
		ByKind:     make(map[ErrorKind]int),
		Strategies: make(map[Strategy]int),
	}

	dupIdx := make(map[[2]string]int)
	idIdx := make(map[string]int)

	for _, e := range errs {
		if e.IsOpen() {
			s.Open++
		} else {
			s.Resolved++
		}
		if e.EffectiveSeverity() == SeverityWarning {
			s.Warnings++
		} else {
			s.Errors++
		}
		s.ByColumn[e.Column]++
		s.ByKind[e.Kind]++

		switch e.Kind {
		case KindDuplicate:
			k := [2]string{e.Column, e.Value}
			i, ok := dupIdx[k]
			if !ok {
				i = len(s.Duplicates)
				dupIdx[k] = i
				s.Duplicates = append(s.Duplicates, DuplicateGroup{
					Column: e.Column,
					Value:  e.Value,
					Rows:   []int{e.FirstRow},
				})
			}
			s.Duplicates[i].Rows = append(s.Duplicates[i].Rows, e.Row)

		case KindIdentity:
			if e.Identity == nil {
				continue
			}
			s.Strategies[e.Identity.Strategy]++
			k := e.Column + "\x1f" + e.Identity.ReferenceID
			i, ok := idIdx[k]
			if !ok {
				i = len(s.Identities)
				idIdx[k] = i
				s.Identities = append(s.Identities, IdentityGroup{
					Column:       e.Column,
					ReferenceID:  e.Identity.ReferenceID,
					ReferenceRow: e.Identity.ReferenceRow,
					Reliability:  e.Identity.Reliability,
				})
			}
			g := &s.Identities[i]
			g.Rows = append(g.Rows, e.Row)
			if reliabilityRank(e.Identity.Reliability) < reliabilityRank(g.Reliability) {
				g.Reliability = e.Identity.Reliability
			}
		}
	}

	for i := range s.Identities {
		sort.Ints(s.Identities[i].Rows)
	}
	return s
}

func reliabilityRank(r Reliability) int {
	switch r {
	case ReliabilityHigh:
		return 3
	case ReliabilityMedium:
		return 2
	default:
		return 1
	}
}
