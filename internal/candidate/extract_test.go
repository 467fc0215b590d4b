package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRows(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantNames []string
	}{
		{
			name:      "bare_array",
			text:      `[{"name": "Acme AB"}, {"name": "Beta AB"}]`,
			wantNames: []string{"Acme AB", "Beta AB"},
		},
		{
			name:      "candidates_field",
			text:      `{"candidates": [{"name": "Acme AB"}]}`,
			wantNames: []string{"Acme AB"},
		},
		{
			name:      "similar_customers_field",
			text:      `{"similarCustomers": [{"name": "Acme AB"}]}`,
			wantNames: []string{"Acme AB"},
		},
		{
			name:      "fenced_json_block",
			text:      "Here you go:\n```json\n{\"candidates\": [{\"name\": \"Acme AB\"}]}\n```\nHope that helps!",
			wantNames: []string{"Acme AB"},
		},
		{
			name:      "generic_fenced_block",
			text:      "```\n[{\"name\": \"Acme AB\"}]\n```",
			wantNames: []string{"Acme AB"},
		},
		{
			name:      "embedded_in_prose",
			text:      `Sure! The companies are [{"name": "Acme AB"}] as requested.`,
			wantNames: []string{"Acme AB"},
		},
		{
			name:      "nested_candidate_groups",
			text:      `{"candidate_groups": {"closest_overall_match": [{"name": "Acme AB"}]}}`,
			wantNames: []string{"Acme AB"},
		},
		{
			name:      "single_object",
			text:      `{"name": "Acme AB", "country": "Sweden"}`,
			wantNames: []string{"Acme AB"},
		},
		{
			name:      "prose_only",
			text:      "I could not find any suitable companies.",
			wantNames: nil,
		},
		{
			name:      "empty",
			text:      "",
			wantNames: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ExtractRows(tt.text)
			if tt.wantNames == nil {
				assert.Nil(t, rows)
				return
			}
			require.Len(t, rows, len(tt.wantNames))
			for i, want := range tt.wantNames {
				assert.Equal(t, want, rows[i]["name"])
			}
		})
	}
}

func TestExtractValue_ScalarRejected(t *testing.T) {
	_, ok := ExtractValue(`"just a string"`)
	assert.False(t, ok)

	_, ok = ExtractValue(`42`)
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	rows := []map[string]any{
		{
			"company":         "Acme AB",
			"land":            "Sweden",
			"url":             " https://acme.se ",
			"potential_score": 70.0,
			"match":           "62",
			"why_similar":     "same vertical",
			"confidence":      "HIGH",
		},
		{"title": "Beta AB"},
		{"country": "Norway"},
	}

	got := Normalize(rows)

	require.Len(t, got, 2)

	acme := got[0]
	assert.NotEmpty(t, acme.ID)
	assert.Equal(t, "Acme AB", acme.Name)
	assert.Equal(t, "Sweden", acme.Country)
	assert.Equal(t, "https://acme.se", acme.Website)
	assert.Equal(t, 70.0, acme.PotentialScore)
	assert.Equal(t, 62.0, acme.MatchScore)
	assert.Equal(t, "same vertical", acme.Reason)
	assert.Equal(t, "high", acme.Confidence)

	beta := got[1]
	assert.Equal(t, "Beta AB", beta.Name)
	assert.Equal(t, 50.0, beta.PotentialScore)
	assert.Equal(t, 50.0, beta.MatchScore)
	assert.Empty(t, beta.Confidence)
}

func TestFromFreeText(t *testing.T) {
	text := `Here are some suggestions:

1. Acme AB - a Swedish accessory retailer
2) Beta AB: sells phone cases
- "Gamma Nordics" – consumer electronics
* Delta Store
Some closing remarks that are not a list item.`

	got := FromFreeText(text)

	require.Len(t, got, 4)
	assert.Equal(t, "Acme AB", got[0].Name)
	assert.Equal(t, "Beta AB", got[1].Name)
	assert.Equal(t, "Gamma Nordics", got[2].Name)
	assert.Equal(t, "Delta Store", got[3].Name)
	for _, c := range got {
		assert.Equal(t, "estimated", c.SourceType)
		assert.Equal(t, "low", c.Confidence)
		assert.Equal(t, 50.0, c.PotentialScore)
	}
}

func TestFromFreeText_NoList(t *testing.T) {
	assert.Empty(t, FromFreeText("No structured answer at all."))
}
