// Package research drives the candidate-discovery and ranking pipeline:
// prompt composition, generation, normalization, validation, the fallback
// ladder and existing-customer matching.
package research

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vendora-crm/research-service/internal/candidate"
	"github.com/vendora-crm/research-service/internal/config"
	"github.com/vendora-crm/research-service/internal/discovery"
	"github.com/vendora-crm/research-service/internal/match"
	"github.com/vendora-crm/research-service/internal/model"
	"github.com/vendora-crm/research-service/internal/rank"
	"github.com/vendora-crm/research-service/internal/snapshot"
	"github.com/vendora-crm/research-service/internal/store"
	"github.com/vendora-crm/research-service/pkg/anthropic"
)

const (
	defaultMaxSimilar = 10
	maxMaxSimilar     = 20

	// crmPoolLimit bounds how many customers the ranking fallback loads.
	crmPoolLimit = 50
)

// ErrMissingIdentity is returned when neither customerId nor companyName is
// present on the request.
var ErrMissingIdentity = eris.New("research: customerId or companyName is required")

// aiUnavailableError is recorded when no generative provider is configured.
const aiUnavailableError = "generative provider unavailable: no API key configured"

// Service runs research requests. The store is only ever read.
type Service struct {
	store      store.Store
	ai         anthropic.Client
	discoverer *discovery.Discoverer
	snapshots  *snapshot.Fetcher
	cfg        *config.Config
}

// New creates a research Service. ai may be nil when the provider is not
// configured; discoverer may be nil when no search provider has a key.
func New(st store.Store, ai anthropic.Client, d *discovery.Discoverer, snaps *snapshot.Fetcher, cfg *config.Config) *Service {
	return &Service{
		store:      st,
		ai:         ai,
		discoverer: d,
		snapshots:  snaps,
		cfg:        cfg,
	}
}

// runContext carries per-request state through the pipeline stages. It is
// owned by one request and discarded with it.
type runContext struct {
	query    model.ResolvedQuery
	profile  model.Profile
	settings model.ResearchSettings
	snaps    []model.WebsiteSnapshot
	seeds    []model.DiscoverySeed

	baseCustomerID string
	aiText         string
	aiError        string
}

// Run executes one research request. Provider and parse failures degrade to
// the response's aiError field; only validation and customer-not-found
// errors reject the request.
func (s *Service) Run(ctx context.Context, req model.ResearchRequest) (*model.ResearchResponse, error) {
	rc, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("company", rc.profile.Name))

	// Website snapshots, concurrently, failures skipped.
	if urls := snapshotURLs(rc); len(urls) > 0 && s.snapshots != nil {
		rc.snaps = s.snapshots.FetchAll(ctx, urls)
	}

	// External seed discovery, when any provider is configured.
	var seedProviders []string
	if s.discoverer != nil && s.discoverer.Enabled() {
		result := s.discoverer.Discover(ctx, discovery.TargetProfile{
			CompanyName:   discoveryCompanyName(rc),
			Country:       rc.profile.Country,
			Region:        rc.profile.Region,
			Industry:      rc.profile.Industry,
			SegmentFocus:  rc.query.SegmentFocus,
			MaxResults:    rc.query.MaxSimilar,
			ExcludeDomain: rc.profile.Website,
		})
		rc.seeds = result.Seeds
		seedProviders = result.Providers
	}

	// Compose and run the primary generation.
	system := req.BasePrompt
	if system == "" {
		system = defaultBasePrompt
	}
	prompt := composeTaskPrompt(rc.query, rc.profile, rc.snaps, rc.seeds, rc.settings, req.ExtraInstructions)

	var aiResult *model.AIResult
	if s.ai == nil {
		rc.aiError = aiUnavailableError
	} else {
		gen, genErr := s.ai.Generate(ctx, anthropic.GenerateRequest{
			System: system,
			Prompt: prompt,
		})
		if genErr != nil {
			rc.aiError = eris.ToString(genErr, false)
			log.Warn("research: generation failed", zap.Error(genErr))
		} else {
			rc.aiText = gen.Text
			aiResult = &model.AIResult{Model: gen.Model, Text: gen.Text}
		}
	}

	// Extract, normalize and hard-filter the structured output.
	cands := s.filter(tagLLMCandidates(candidate.Normalize(candidate.ExtractRows(rc.aiText))))

	// Advisory cross-validation: intersect with the names the model keeps,
	// but never let validation empty out a non-empty list.
	cands = s.validateCandidates(ctx, rc.profile, cands)

	// Fallback ladder, applied in strict order while the list is empty.
	for _, fb := range s.fallbacks(req.ExternalOnly) {
		if len(cands) > 0 {
			break
		}
		cands = fb.run(ctx, rc)
		if len(cands) > 0 {
			log.Info("research: fallback produced candidates",
				zap.String("stage", fb.name),
				zap.Int("count", len(cands)),
			)
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].MatchScore > cands[j].MatchScore
	})
	if len(cands) > rc.query.MaxSimilar {
		cands = cands[:rc.query.MaxSimilar]
	}

	// Existing-customer cross-match on the final list.
	if len(cands) > 0 {
		customers, listErr := s.store.ListCustomers(ctx, store.CustomerFilter{}, 0)
		if listErr != nil {
			log.Warn("research: customer cross-match skipped", zap.Error(listErr))
		} else {
			cands = AnnotateExisting(cands, customers)
		}
	}

	if cands == nil {
		cands = []model.Candidate{}
	}
	return &model.ResearchResponse{
		Query:            rc.query,
		Snapshots:        rc.snaps,
		SimilarCustomers: cands,
		Prompt:           prompt,
		AIResult:         aiResult,
		AIError:          rc.aiError,
		SeedProviders:    seedProviders,
	}, nil
}

// resolve validates the request and builds the profile and resolved query,
// loading the base customer when referenced.
func (s *Service) resolve(ctx context.Context, req model.ResearchRequest) (*runContext, error) {
	if strings.TrimSpace(req.CustomerID) == "" && strings.TrimSpace(req.CompanyName) == "" {
		return nil, ErrMissingIdentity
	}

	profile := model.Profile{
		Name:         strings.TrimSpace(req.CompanyName),
		Country:      req.Country,
		Region:       req.Region,
		Industry:     req.Industry,
		Seller:       req.Seller,
		SegmentFocus: req.SegmentFocus,
	}

	rc := &runContext{}
	if req.CustomerID != "" {
		cust, err := s.store.GetCustomer(ctx, req.CustomerID)
		if err != nil {
			return nil, eris.Wrapf(err, "research: customer %s", req.CustomerID)
		}
		rc.baseCustomerID = cust.ID
		if profile.Name == "" {
			profile.Name = cust.Name
		}
		if profile.Country == "" {
			profile.Country = cust.Country
		}
		if profile.Region == "" {
			profile.Region = cust.Region
		}
		if profile.Industry == "" {
			profile.Industry = cust.Industry
		}
		if profile.Seller == "" {
			profile.Seller = cust.Seller
		}
		profile.PotentialScore = cust.PotentialScore
		profile.Website = cust.Website
	}

	rc.settings = s.loadSettings(ctx)

	scope := req.Scope
	if scope != model.ScopeCountry && scope != model.ScopeRegion {
		scope = rc.settings.DefaultScope
	}
	if scope != model.ScopeCountry && scope != model.ScopeRegion {
		scope = model.ScopeRegion
	}

	maxSimilar := req.MaxSimilar
	if maxSimilar < 1 {
		maxSimilar = defaultMaxSimilar
	}
	if maxSimilar > maxMaxSimilar {
		maxSimilar = maxMaxSimilar
	}

	rc.profile = profile
	rc.query = model.ResolvedQuery{
		CompanyName:  profile.Name,
		Country:      profile.Country,
		Region:       profile.Region,
		Seller:       profile.Seller,
		Industry:     profile.Industry,
		Scope:        scope,
		MaxSimilar:   maxSimilar,
		SegmentFocus: req.SegmentFocus,
		Websites:     req.Websites,
		ExternalOnly: req.ExternalOnly,
		ExternalMode: req.ExternalMode,
	}
	return rc, nil
}

// loadSettings reads the persisted research settings, falling back to the
// configured defaults when the row is absent or unreadable.
func (s *Service) loadSettings(ctx context.Context) model.ResearchSettings {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		zap.L().Warn("research: settings read failed, using defaults", zap.Error(err))
	}
	if settings != nil {
		return *settings
	}
	return model.ResearchSettings{
		VendorSites:       s.cfg.Research.VendorSites,
		BrandSites:        s.cfg.Research.BrandSites,
		ExtraInstructions: s.cfg.Research.ExtraInstructions,
		DefaultScope:      s.cfg.Research.DefaultScope,
	}
}

// filter applies the hard filter with any configured extra blocklist.
func (s *Service) filter(cands []model.Candidate) []model.Candidate {
	return candidate.Filter(cands, s.cfg.Discovery.DirectoryBlocklist...)
}

// tagLLMCandidates fills in defaults the model left out.
func tagLLMCandidates(cands []model.Candidate) []model.Candidate {
	for i := range cands {
		if cands[i].SourceType == "" {
			cands[i].SourceType = model.SourceEstimated
		}
		if cands[i].Confidence == "" {
			cands[i].Confidence = model.ConfidenceMedium
		}
	}
	return cands
}

// validateCandidates issues the second LLM pass and intersects by
// normalized name. Failures and unusable answers keep the input unchanged.
func (s *Service) validateCandidates(ctx context.Context, profile model.Profile, cands []model.Candidate) []model.Candidate {
	if s.ai == nil || len(cands) == 0 {
		return cands
	}

	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.Name
	}

	gen, err := s.ai.Generate(ctx, anthropic.GenerateRequest{
		Prompt:    validationPrompt(profile, names),
		MaxTokens: 1024,
	})
	if err != nil {
		zap.L().Warn("research: validation call failed, keeping candidates", zap.Error(err))
		return cands
	}

	keep := parseNameList(gen.Text)
	if len(keep) == 0 {
		return cands
	}

	kept := make([]model.Candidate, 0, len(cands))
	for _, c := range cands {
		if keep[match.NormalizeName(c.Name)] {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return cands
	}
	return kept
}

// parseNameList reads a JSON array of names (or objects carrying names)
// into a normalized-name set.
func parseNameList(text string) map[string]bool {
	v, ok := candidate.ExtractValue(text)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}

	keep := map[string]bool{}
	for _, item := range arr {
		switch t := item.(type) {
		case string:
			if key := match.NormalizeName(t); key != "" {
				keep[key] = true
			}
		case map[string]any:
			if name, ok := t["name"].(string); ok {
				if key := match.NormalizeName(name); key != "" {
					keep[key] = true
				}
			}
		}
	}
	return keep
}

// fallbackProducer is one stage of the ladder: a named pure-ish function
// from run state to candidates.
type fallbackProducer struct {
	name string
	run  func(ctx context.Context, rc *runContext) []model.Candidate
}

// fallbacks returns the ladder in strict order: discovery seeds, free-text
// salvage, CRM ranking, strict-JSON retry. externalOnly skips the CRM
// stage.
func (s *Service) fallbacks(externalOnly bool) []fallbackProducer {
	ladder := []fallbackProducer{
		{name: "seeds", run: s.fallbackSeeds},
		{name: "freetext", run: s.fallbackFreeText},
	}
	if !externalOnly {
		ladder = append(ladder, fallbackProducer{name: "crm", run: s.fallbackCRM})
	}
	ladder = append(ladder, fallbackProducer{name: "retry", run: s.fallbackRetry})
	return ladder
}

func (s *Service) fallbackSeeds(_ context.Context, rc *runContext) []model.Candidate {
	if len(rc.seeds) == 0 {
		return nil
	}
	return s.filter(SeedCandidates(rc.seeds))
}

func (s *Service) fallbackFreeText(_ context.Context, rc *runContext) []model.Candidate {
	if rc.aiText == "" {
		return nil
	}
	return s.filter(candidate.FromFreeText(rc.aiText))
}

// fallbackCRM ranks the live customer pool by similarity as a last resort
// before the retry generation.
func (s *Service) fallbackCRM(ctx context.Context, rc *runContext) []model.Candidate {
	filter := store.CustomerFilter{}
	switch rc.query.Scope {
	case model.ScopeCountry:
		filter.Country = rc.profile.Country
	case model.ScopeRegion:
		if rc.profile.Region != "" {
			filter.Region = rc.profile.Region
		} else {
			filter.Country = rc.profile.Country
		}
	}

	pool, err := s.store.ListCustomers(ctx, filter, crmPoolLimit)
	if err != nil {
		zap.L().Warn("research: crm fallback list failed", zap.Error(err))
		return nil
	}

	ranked := rank.SimilarCustomers(rc.profile, pool)
	out := make([]model.Candidate, 0, rc.query.MaxSimilar)
	for _, sc := range ranked {
		if sc.Customer.ID == rc.baseCustomerID {
			continue
		}
		if len(out) >= rc.query.MaxSimilar {
			break
		}
		similarity := sc.Similarity
		out = append(out, model.Candidate{
			ID:              uuid.New().String(),
			Name:            sc.Customer.Name,
			Country:         sc.Customer.Country,
			Region:          sc.Customer.Region,
			Industry:        sc.Customer.Industry,
			Seller:          sc.Customer.Seller,
			Website:         sc.Customer.Website,
			PotentialScore:  potentialOrDefault(sc.Customer.PotentialScore),
			MatchScore:      sc.MatchScore,
			SimilarityScore: &similarity,
			SourceType:      model.SourceCRMFallback,
			Confidence:      model.ConfidenceHigh,
			Reason:          "similar existing customer",
		})
	}
	return out
}

// fallbackRetry issues one retry generation with a strict-JSON instruction,
// only when the primary call did not hard-fail.
func (s *Service) fallbackRetry(ctx context.Context, rc *runContext) []model.Candidate {
	if s.ai == nil || rc.aiError != "" {
		return nil
	}

	gen, err := s.ai.Generate(ctx, anthropic.GenerateRequest{
		System: defaultBasePrompt,
		Prompt: composeTaskPrompt(rc.query, rc.profile, rc.snaps, rc.seeds, rc.settings, "") + "\n" + retryPrompt(rc.query, rc.seeds),
	})
	if err != nil {
		rc.aiError = eris.ToString(err, false)
		zap.L().Warn("research: retry generation failed", zap.Error(err))
		return nil
	}

	return s.filter(tagLLMCandidates(candidate.Normalize(candidate.ExtractRows(gen.Text))))
}

func snapshotURLs(rc *runContext) []string {
	var urls []string
	if rc.profile.Website != "" {
		urls = append(urls, rc.profile.Website)
	}
	urls = append(urls, rc.query.Websites...)
	return urls
}

// discoveryCompanyName returns "" in profile mode so the query is built
// from attributes instead of the similar-to phrase.
func discoveryCompanyName(rc *runContext) string {
	if rc.query.ExternalMode == "profile" {
		return ""
	}
	return rc.profile.Name
}

func potentialOrDefault(p *float64) float64 {
	if p == nil {
		return model.DefaultScore
	}
	return *p
}
