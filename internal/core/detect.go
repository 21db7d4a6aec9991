package core

import (
	"sort"
	"strings"
)

// DetectThreshold is the minimum score for a profile to be considered a match
// for a file's headers.
const DetectThreshold = 0.7

// ProfileMatch is a candidate import type for a set of headers.
type ProfileMatch struct {
	ImportType string   `json:"importType"`
	Score      float64  `json:"score"`
	Missing    []string `json:"missing,omitempty"`
}

// Detect ranks the registered profiles by how well headers cover their
// required columns. Only matches at or above DetectThreshold are returned,
// best first.
func (r *Registry) Detect(headers []string) []ProfileMatch {
	var matches []ProfileMatch
	for _, p := range r.All() {
		score := matchHeaders(headers, p)
		if score >= DetectThreshold {
			matches = append(matches, ProfileMatch{
				ImportType: p.ImportType,
				Score:      score,
				Missing:    MissingColumns(headers, p),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// MissingColumns returns the required columns of p absent from headers.
func MissingColumns(headers []string, p Profile) []string {
	set := headerSet(headers)
	var missing []string
	for _, c := range p.Columns {
		if c.Required && !set[strings.ToLower(c.Name)] {
			missing = append(missing, c.Name)
		}
	}
	return missing
}

// matchHeaders scores the share of p's required columns present in headers.
// Profiles without required columns are scored on all columns.
func matchHeaders(headers []string, p Profile) float64 {
	var want []string
	for _, c := range p.Columns {
		if c.Required {
			want = append(want, c.Name)
		}
	}
	if len(want) == 0 {
		want = p.ColumnNames()
	}
	if len(want) == 0 {
		return 0
	}

	set := headerSet(headers)
	matched := 0
	for _, h := range want {
		if set[strings.ToLower(h)] {
			matched++
		}
	}
	return float64(matched) / float64(len(want))
}

func headerSet(headers []string) map[string]bool {
	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		set[strings.ToLower(strings.TrimSpace(h))] = true
	}
	return set
}
