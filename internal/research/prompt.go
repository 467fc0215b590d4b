package research

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vendora-crm/research-service/internal/model"
)

// defaultBasePrompt is the system prompt used when the request carries none.
const defaultBasePrompt = `You are a market researcher for a CRM used by a consumer-electronics accessory vendor. Your task is to propose companies that could become resellers of the vendor's assortment. Focus on real, currently operating companies. For every candidate, estimate a potentialScore (0-100) for reseller potential and a matchScore (0-100) for similarity to the target profile, and explain your reasoning briefly.

Respond with ONLY valid JSON in this shape, no other text:
{"candidates": [{"name": "...", "country": "...", "region": "...", "industry": "...", "website": "...", "organizationNumber": "...", "potentialScore": 0, "matchScore": 0, "reason": "...", "confidence": "high|medium|low"}]}`

// composeTaskPrompt builds the structured task payload sent as the user
// message: target profile, snapshot context, discovery inputs, filters and
// free-text instructions.
func composeTaskPrompt(q model.ResolvedQuery, profile model.Profile, snaps []model.WebsiteSnapshot, seeds []model.DiscoverySeed, settings model.ResearchSettings, extra string) string {
	var b strings.Builder

	b.WriteString("## Target profile\n")
	writeJSON(&b, profile)

	b.WriteString(fmt.Sprintf("\n## Task\nFind up to %d candidate resellers. Scope: %s.", q.MaxSimilar, q.Scope))
	if q.SegmentFocus != "" {
		b.WriteString(fmt.Sprintf(" Segment focus: %s.", q.SegmentFocus))
	}
	b.WriteString("\n")

	if len(snaps) > 0 {
		b.WriteString("\n## Website snapshots\n")
		for _, s := range snaps {
			b.WriteString(fmt.Sprintf("- %s (fit %d): %s\n", s.URL, s.FitScore, summarizeSnapshot(s)))
		}
	}

	if len(seeds) > 0 {
		b.WriteString("\n## Search results to consider\n")
		for _, seed := range seeds {
			line := seed.Name
			if seed.Website != "" {
				line += " - " + seed.Website
			}
			if seed.Snippet != "" {
				line += ": " + seed.Snippet
			}
			b.WriteString("- " + line + "\n")
		}
	}

	if len(settings.VendorSites) > 0 {
		b.WriteString("\n## Vendor assortment sites\n")
		for _, site := range settings.VendorSites {
			b.WriteString("- " + site + "\n")
		}
	}
	if len(settings.BrandSites) > 0 {
		b.WriteString("\n## Brand sites\n")
		for _, site := range settings.BrandSites {
			b.WriteString("- " + site + "\n")
		}
	}

	instructions := strings.TrimSpace(strings.Join([]string{settings.ExtraInstructions, extra}, "\n"))
	if instructions != "" {
		b.WriteString("\n## Additional instructions\n")
		b.WriteString(instructions)
		b.WriteString("\n")
	}

	return b.String()
}

// validationPrompt asks the model to return only the candidate names it
// judges to be real companies in this context.
func validationPrompt(profile model.Profile, names []string) string {
	var b strings.Builder
	b.WriteString("The following names were proposed as reseller candidates for the company below. Some may be articles, directories or otherwise not real companies.\n\n")
	b.WriteString("Company: " + profile.Name)
	if profile.Industry != "" {
		b.WriteString(" (" + profile.Industry + ")")
	}
	b.WriteString("\n\nCandidates:\n")
	for _, n := range names {
		b.WriteString("- " + n + "\n")
	}
	b.WriteString("\nRespond with ONLY a JSON array of the names that are real companies, e.g. [\"Name A\", \"Name B\"]. No other text.")
	return b.String()
}

// retryPrompt is the explicit strict-JSON instruction for the single retry
// generation, with discovery seeds as hints.
func retryPrompt(q model.ResolvedQuery, seeds []model.DiscoverySeed) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Your previous answer contained no usable candidates. Return STRICT JSON only, in the shape {\"candidates\": [...]}, with at least %d candidates.\n", minRetryCandidates(q.MaxSimilar)))
	if len(seeds) > 0 {
		b.WriteString("\nThese search results may help:\n")
		for _, seed := range seeds {
			b.WriteString("- " + seed.Name)
			if seed.Website != "" {
				b.WriteString(" - " + seed.Website)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func minRetryCandidates(maxSimilar int) int {
	if maxSimilar < 3 {
		return maxSimilar
	}
	return 3
}

func summarizeSnapshot(s model.WebsiteSnapshot) string {
	for _, candidate := range []string{s.Description, s.Title, s.H1, s.TextSample} {
		if candidate != "" {
			return truncate(candidate, 200)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func writeJSON(b *strings.Builder, v any) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	b.Write(raw)
	b.WriteString("\n")
}
