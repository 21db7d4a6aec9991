package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestions(t *testing.T) {
	payload := `[
		{"column": "S_Ort", "originalValue": "Zurich", "correctedValue": "Zürich", "affectedRows": [1, 4], "reason": "Umlaut"},
		{"column": "S_Ort", "originalValue": "Bern", "correctedValue": "Bern", "affectedRows": [2]},
		{"column": "S_Ort", "originalValue": "Basel", "correctedValue": "Basel-Stadt", "affectedRows": ["3"]},
		{"column": "S_Ort", "originalValue": "Genf", "correctedValue": "Genève", "affectedRows": 3},
		{"column": "", "originalValue": "a", "correctedValue": "b", "affectedRows": []},
		{"column": "S_Ort", "originalValue": 12, "correctedValue": "b", "affectedRows": []},
		{"column": "S_Ort", "correctedValue": "b", "affectedRows": []},
		{"column": "S_Ort", "originalValue": null, "correctedValue": "b", "affectedRows": []},
		{"column": "S_Ort", "originalValue": "x", "correctedValue": "y", "affectedRows": [0]},
		{"column": "S_Ort", "originalValue": "x", "correctedValue": "y", "affectedRows": [1.5]},
		{"column": "S_PLZ", "originalValue": "CH-8000", "correctedValue": "8000", "affectedRows": []}
	]`

	accepted, rejected, err := ParseSuggestions([]byte(payload))
	require.NoError(t, err)

	require.Len(t, accepted, 2)
	assert.Equal(t, "Zürich", accepted[0].CorrectedValue)
	assert.Equal(t, []int{1, 4}, accepted[0].AffectedRows)
	assert.Equal(t, "Umlaut", accepted[0].Reason)
	assert.Equal(t, "S_PLZ", accepted[1].Column)

	indexes := make([]int, len(rejected))
	for i, r := range rejected {
		indexes[i] = r.Index
		assert.NotEmpty(t, r.Reason)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, indexes)
}

func TestParseSuggestions_Wrapped(t *testing.T) {
	payload := `{"suggestions": [{"column": "S_Name", "originalValue": "Muller", "correctedValue": "Müller", "affectedRows": [2]}]}`

	accepted, rejected, err := ParseSuggestions([]byte(payload))
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, accepted, 1)

	rule := accepted[0].Rule("students")
	assert.Equal(t, "S_Name", rule.Column)
	assert.Equal(t, "Muller", rule.OriginalValue)
	assert.Equal(t, "Müller", rule.CorrectedValue)
	assert.Equal(t, MatchExact, rule.MatchType)
	assert.Equal(t, "students", rule.ImportType)
}

func TestParseSuggestions_InvalidPayload(t *testing.T) {
	for _, payload := range []string{"", "not json", `{"other": []}`, `{"suggestions": {}}`, `"text"`} {
		_, _, err := ParseSuggestions([]byte(payload))
		assert.True(t, errors.Is(err, ErrInvalidSuggestions), "payload %q: error = %v", payload, err)
	}
}
