package research

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vendora-crm/research-service/internal/model"
)

func TestComposeTaskPrompt(t *testing.T) {
	q := model.ResolvedQuery{
		CompanyName:  "Acme AB",
		Scope:        model.ScopeRegion,
		MaxSimilar:   10,
		SegmentFocus: model.SegmentB2B,
	}
	profile := model.Profile{Name: "Acme AB", Country: "Sweden"}
	snaps := []model.WebsiteSnapshot{
		{URL: "https://acme.se", Description: "Accessory reseller", FitScore: 53},
	}
	seeds := []model.DiscoverySeed{
		{Name: "Beta AB", Website: "https://beta.se", Snippet: "chargers"},
	}
	settings := model.ResearchSettings{
		VendorSites: []string{"https://vendor.se"},
		BrandSites:  []string{"https://brand.se"},
	}

	got := composeTaskPrompt(q, profile, snaps, seeds, settings, "prefer Nordic companies")

	assert.Contains(t, got, "## Target profile")
	assert.Contains(t, got, `"name": "Acme AB"`)
	assert.Contains(t, got, "Find up to 10 candidate resellers")
	assert.Contains(t, got, "Segment focus: B2B")
	assert.Contains(t, got, "https://acme.se (fit 53): Accessory reseller")
	assert.Contains(t, got, "Beta AB - https://beta.se: chargers")
	assert.Contains(t, got, "## Vendor assortment sites")
	assert.Contains(t, got, "https://vendor.se")
	assert.Contains(t, got, "## Brand sites")
	assert.Contains(t, got, "prefer Nordic companies")
}

func TestComposeTaskPrompt_OmitsEmptySections(t *testing.T) {
	q := model.ResolvedQuery{CompanyName: "Acme AB", Scope: model.ScopeCountry, MaxSimilar: 5}

	got := composeTaskPrompt(q, model.Profile{Name: "Acme AB"}, nil, nil, model.ResearchSettings{}, "")

	assert.NotContains(t, got, "## Website snapshots")
	assert.NotContains(t, got, "## Search results")
	assert.NotContains(t, got, "## Vendor assortment sites")
	assert.NotContains(t, got, "## Additional instructions")
}

func TestValidationPrompt(t *testing.T) {
	got := validationPrompt(model.Profile{Name: "Acme AB", Industry: "Electronics"}, []string{"Beta AB", "Top 10 stores"})

	assert.Contains(t, got, "Acme AB (Electronics)")
	assert.Contains(t, got, "- Beta AB")
	assert.Contains(t, got, "- Top 10 stores")
	assert.Contains(t, got, "JSON array")
}

func TestRetryPrompt_MinCandidates(t *testing.T) {
	assert.Contains(t, retryPrompt(model.ResolvedQuery{MaxSimilar: 10}, nil), "at least 3 candidates")
	assert.Contains(t, retryPrompt(model.ResolvedQuery{MaxSimilar: 2}, nil), "at least 2 candidates")
}
