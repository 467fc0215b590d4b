// Package candidate converts heterogeneous LLM and seed output into
// canonical candidates and applies the hard quality filter.
package candidate

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vendora-crm/research-service/internal/model"
)

// aliasRule maps a canonical field to the source keys that may carry it,
// in priority order. First present key wins.
type aliasRule struct {
	canonical string
	keys      []string
}

var stringAliases = []aliasRule{
	{"name", []string{"name", "company", "companyName", "company_name", "title"}},
	{"country", []string{"country", "land"}},
	{"region", []string{"region", "county", "state"}},
	{"industry", []string{"industry", "bransch", "sector", "vertical"}},
	{"seller", []string{"seller", "salesRep", "sales_rep", "owner"}},
	{"website", []string{"website", "url", "homepage", "domain", "site"}},
	{"organizationNumber", []string{"organizationNumber", "organization_number", "orgNumber", "org_no", "orgnr"}},
	{"reason", []string{"reason", "why_similar", "whySimilar", "rationale", "motivation"}},
	{"sourceType", []string{"sourceType", "source_type", "source"}},
	{"sourceUrl", []string{"sourceUrl", "source_url", "link"}},
	{"confidence", []string{"confidence", "confidence_level"}},
}

var scoreAliases = []aliasRule{
	{"potentialScore", []string{"potentialScore", "potential_score", "potential"}},
	{"matchScore", []string{"matchScore", "match_score", "match", "score", "similarity"}},
}

// Normalize maps arbitrary key-shaped rows into canonical candidates,
// assigning synthetic ids. Rows without a usable name are discarded.
func Normalize(rows []map[string]any) []model.Candidate {
	out := make([]model.Candidate, 0, len(rows))
	for _, row := range rows {
		c, ok := normalizeOne(row)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func normalizeOne(row map[string]any) (model.Candidate, bool) {
	fields := map[string]string{}
	for _, rule := range stringAliases {
		fields[rule.canonical] = firstString(row, rule.keys)
	}

	name := strings.TrimSpace(fields["name"])
	if name == "" {
		return model.Candidate{}, false
	}

	scores := map[string]float64{}
	for _, rule := range scoreAliases {
		scores[rule.canonical] = firstNumber(row, rule.keys, model.DefaultScore)
	}

	return model.Candidate{
		ID:                 uuid.New().String(),
		Name:               name,
		Country:            fields["country"],
		Region:             fields["region"],
		Industry:           fields["industry"],
		Seller:             fields["seller"],
		PotentialScore:     scores["potentialScore"],
		MatchScore:         scores["matchScore"],
		Website:            strings.TrimSpace(fields["website"]),
		OrganizationNumber: fields["organizationNumber"],
		Reason:             fields["reason"],
		SourceType:         fields["sourceType"],
		SourceURL:          strings.TrimSpace(fields["sourceUrl"]),
		Confidence:         normalizeConfidence(fields["confidence"]),
	}, true
}

// firstString returns the first present, non-empty string value among keys.
func firstString(row map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := row[k]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstNumber returns the first present numeric value among keys, accepting
// JSON numbers and numeric strings. Unparseable values fall back to def.
func firstNumber(row map[string]any, keys []string, def float64) float64 {
	for _, k := range keys {
		v, ok := row[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f
			}
		}
	}
	return def
}

func normalizeConfidence(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case model.ConfidenceHigh:
		return model.ConfidenceHigh
	case model.ConfidenceMedium:
		return model.ConfidenceMedium
	case model.ConfidenceLow:
		return model.ConfidenceLow
	}
	return ""
}
