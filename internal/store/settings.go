package store

import (
	"strings"

	"github.com/vendora-crm/research-service/internal/model"
)

// normalizeSettings trims and deduplicates the site lists (capped), and
// coerces the default scope to a known value.
func normalizeSettings(in model.ResearchSettings) model.ResearchSettings {
	out := model.ResearchSettings{
		VendorSites:       normalizeSiteList(in.VendorSites),
		BrandSites:        normalizeSiteList(in.BrandSites),
		ExtraInstructions: strings.TrimSpace(in.ExtraInstructions),
		DefaultScope:      in.DefaultScope,
	}
	if out.DefaultScope != model.ScopeCountry && out.DefaultScope != model.ScopeRegion {
		out.DefaultScope = model.ScopeRegion
	}
	return out
}

func normalizeSiteList(sites []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(sites))
	for _, s := range sites {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if len(out) >= maxSiteListEntries {
			break
		}
	}
	return out
}
