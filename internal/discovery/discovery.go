// Package discovery finds company-like seed candidates through external
// search providers.
package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vendora-crm/research-service/internal/config"
	"github.com/vendora-crm/research-service/internal/match"
	"github.com/vendora-crm/research-service/internal/model"
	"github.com/vendora-crm/research-service/pkg/serper"
	"github.com/vendora-crm/research-service/pkg/tavily"
)

const (
	minResults      = 6
	maxResults      = 20
	maxSnippetChars = 400
)

// titleSeparator cuts a result title before site branding ("Acme AB | Home").
var titleSeparator = regexp.MustCompile(`[|\-–]`)

// TargetProfile describes what the discovery query should center on.
type TargetProfile struct {
	CompanyName   string
	Country       string
	Region        string
	Industry      string
	SegmentFocus  string
	MaxResults    int
	ExcludeDomain string
}

// Result carries the merged seeds and which providers produced any.
type Result struct {
	Seeds     []model.DiscoverySeed
	Providers []string
}

// Discoverer queries the configured search providers in parallel. Either
// client may be nil when its credential is absent; that provider is then
// skipped silently.
type Discoverer struct {
	serper  serper.Client
	tavily  tavily.Client
	timeout time.Duration
}

// NewDiscoverer creates a Discoverer. Pass nil for providers without
// credentials.
func NewDiscoverer(serperClient serper.Client, tavilyClient tavily.Client, cfg config.DiscoveryConfig) *Discoverer {
	timeout := time.Duration(cfg.SearchTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Discoverer{
		serper:  serperClient,
		tavily:  tavilyClient,
		timeout: timeout,
	}
}

// Enabled reports whether at least one provider client is configured.
func (d *Discoverer) Enabled() bool {
	return d.serper != nil || d.tavily != nil
}

// BuildQuery combines the "companies similar to" phrase with industry,
// segment, region and country terms into one free-text search query. With
// no company name the query is built from profile attributes alone.
func BuildQuery(p TargetProfile) string {
	var parts []string
	if p.CompanyName != "" {
		parts = append(parts, fmt.Sprintf("companies similar to %q", p.CompanyName))
	} else {
		parts = append(parts, "reseller companies")
	}
	if p.Industry != "" {
		parts = append(parts, p.Industry)
	}
	switch p.SegmentFocus {
	case model.SegmentB2B:
		parts = append(parts, "B2B resellers")
	case model.SegmentB2C:
		parts = append(parts, "consumer retailers")
	case model.SegmentMixed:
		parts = append(parts, "resellers retailers")
	}
	if p.Region != "" {
		parts = append(parts, p.Region)
	}
	if p.Country != "" {
		parts = append(parts, p.Country)
	}
	return strings.Join(parts, " ")
}

// Discover runs the query against all configured providers concurrently and
// merges their output in provider order, deduplicated and capped. Provider
// failures yield empty rows, never an error.
func (d *Discoverer) Discover(ctx context.Context, p TargetProfile) *Result {
	limit := p.MaxResults
	if limit < minResults {
		limit = minResults
	}
	if limit > maxResults {
		limit = maxResults
	}

	query := BuildQuery(p)
	log := zap.L().With(zap.String("query", query))

	var serperSeeds, tavilySeeds []model.DiscoverySeed

	g, gctx := errgroup.WithContext(ctx)

	if d.serper != nil {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, d.timeout)
			defer cancel()
			resp, err := d.serper.Search(cctx, query, limit)
			if err != nil {
				log.Warn("discovery: serper search failed", zap.Error(err))
				return nil
			}
			seeds := make([]model.DiscoverySeed, 0, len(resp.Organic))
			for _, row := range resp.Organic {
				if seed, ok := seedFromRow(row.Title, row.Link, row.Snippet, model.SourceSerper); ok {
					seeds = append(seeds, seed)
				}
			}
			serperSeeds = seeds
			return nil
		})
	}

	if d.tavily != nil {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, d.timeout)
			defer cancel()
			resp, err := d.tavily.Search(cctx, query, limit)
			if err != nil {
				log.Warn("discovery: tavily search failed", zap.Error(err))
				return nil
			}
			seeds := make([]model.DiscoverySeed, 0, len(resp.Results))
			for _, row := range resp.Results {
				if seed, ok := seedFromRow(row.Title, row.URL, row.Content, model.SourceTavily); ok {
					seeds = append(seeds, seed)
				}
			}
			tavilySeeds = seeds
			return nil
		})
	}

	_ = g.Wait()

	merged, providers := merge(limit, p.ExcludeDomain, serperSeeds, tavilySeeds)
	log.Info("discovery complete",
		zap.Int("seeds", len(merged)),
		zap.Strings("providers", providers),
	)
	return &Result{Seeds: merged, Providers: providers}
}

// seedFromRow derives a seed from a provider result row. Rows with no
// usable name or an empty link are dropped.
func seedFromRow(title, link, snippet, sourceType string) (model.DiscoverySeed, bool) {
	if strings.TrimSpace(link) == "" {
		return model.DiscoverySeed{}, false
	}

	name := cleanTitle(title)
	if name == "" {
		name = nameFromDomain(link)
	}
	if name == "" {
		return model.DiscoverySeed{}, false
	}

	if len(snippet) > maxSnippetChars {
		snippet = snippet[:maxSnippetChars]
	}

	return model.DiscoverySeed{
		Name:       name,
		Website:    link,
		SourceURL:  link,
		SourceType: sourceType,
		Snippet:    snippet,
	}, true
}

// cleanTitle truncates a page title at the first separator.
func cleanTitle(title string) string {
	if loc := titleSeparator.FindStringIndex(title); loc != nil {
		title = title[:loc[0]]
	}
	return strings.TrimSpace(title)
}

// nameFromDomain falls back to the domain's first label with separators
// replaced by spaces.
func nameFromDomain(link string) string {
	host := match.Domain(link)
	if host == "" {
		return ""
	}
	label, _, _ := strings.Cut(host, ".")
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)
	return strings.TrimSpace(label)
}

// merge combines per-provider seeds in provider order, deduplicating by
// normalized name and by domain, excluding the caller's own domain.
func merge(limit int, excludeDomain string, batches ...[]model.DiscoverySeed) ([]model.DiscoverySeed, []string) {
	exclude := match.Domain(excludeDomain)
	seenNames := map[string]bool{}
	seenDomains := map[string]bool{}

	var out []model.DiscoverySeed
	var providers []string

	for _, batch := range batches {
		contributed := false
		for _, seed := range batch {
			if len(out) >= limit {
				break
			}
			nameKey := match.NormalizeName(seed.Name)
			if nameKey == "" || seenNames[nameKey] {
				continue
			}
			domain := match.Domain(seed.Website)
			if domain != "" {
				if exclude != "" && domain == exclude {
					continue
				}
				if seenDomains[domain] {
					continue
				}
			}
			seenNames[nameKey] = true
			if domain != "" {
				seenDomains[domain] = true
			}
			out = append(out, seed)
			contributed = true
		}
		if contributed && len(batch) > 0 {
			providers = append(providers, batch[0].SourceType)
		}
	}
	return out, providers
}
