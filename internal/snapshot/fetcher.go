// Package snapshot fetches lightweight structured signals from company
// websites and scores their topical fit.
package snapshot

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/vendora-crm/research-service/internal/config"
	"github.com/vendora-crm/research-service/internal/model"
)

const (
	// maxHTMLBytes limits the amount of HTML downloaded per page.
	maxHTMLBytes = 512 * 1024

	// rawSampleChars is how much raw HTML feeds the text sample.
	rawSampleChars = 5000

	// textSampleChars is the truncation limit for the final text sample.
	textSampleChars = 1200

	baseFitScore = 35
	perKeyword   = 6
	minFitScore  = 20
	maxFitScore  = 100

	userAgent = "Mozilla/5.0 (compatible; vendora-research/1.0)"
)

// fitKeywords is the fixed domain-relevance keyword list. Each
// case-insensitive substring hit adds perKeyword to the fit score.
var fitKeywords = []string{
	"reseller", "distributor", "wholesale", "retail", "b2b",
	"e-commerce", "ecommerce", "webshop", "electronics", "accessories",
	"gadget", "consumer", "brand", "store", "shop", "nordic",
}

// Fetcher retrieves website snapshots with bounded concurrency and an
// outbound rate limit.
type Fetcher struct {
	http    *http.Client
	limiter *rate.Limiter
	cfg     config.SnapshotConfig
}

// Option configures the fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		f.http = hc
	}
}

// NewFetcher creates a Fetcher from config.
func NewFetcher(cfg config.SnapshotConfig, opts ...Option) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 5
	}
	f := &Fetcher{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(limit), 1),
		cfg:     cfg,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// NormalizeURL turns a bare domain into an absolute https URL.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		return "https://" + raw
	}
	return raw
}

// Fetch retrieves one website and extracts its snapshot. A non-2xx status
// is an error; callers treat it as non-fatal and skip the snapshot.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.WebsiteSnapshot, error) {
	target := NormalizeURL(rawURL)
	if target == "" {
		return nil, eris.New("snapshot: empty url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: create request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: fetch")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("snapshot: %s returned %d", target, resp.StatusCode)
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, maxHTMLBytes))
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: read body")
	}

	snap := extract(target, string(html))
	return snap, nil
}

// FetchAll retrieves snapshots for multiple URLs concurrently. Individual
// failures are logged and skipped; successes keep input order.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []model.WebsiteSnapshot {
	results := make([]*model.WebsiteSnapshot, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	maxConcurrent := f.cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	g.SetLimit(maxConcurrent)

	for i, u := range urls {
		g.Go(func() error {
			if err := f.limiter.Wait(gctx); err != nil {
				return nil //nolint:nilerr // context cancelled, skip quietly
			}
			snap, err := f.Fetch(gctx, u)
			if err != nil {
				zap.L().Debug("snapshot: fetch failed", zap.String("url", u), zap.Error(err))
				return nil
			}
			results[i] = snap
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.WebsiteSnapshot, 0, len(urls))
	for _, s := range results {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// extract pulls title, meta description and first h1 out of the HTML,
// builds the text sample and computes the fit score.
func extract(url, html string) *model.WebsiteSnapshot {
	snap := &model.WebsiteSnapshot{URL: url}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		snap.Title = strings.TrimSpace(doc.Find("title").First().Text())
		if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
			snap.Description = strings.TrimSpace(desc)
		}
		snap.H1 = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	raw := html
	if len(raw) > rawSampleChars {
		raw = raw[:rawSampleChars]
	}
	sample := strings.Join([]string{snap.Title, snap.Description, snap.H1, stripTags(raw)}, " ")
	sample = collapseWhitespace(sample)
	if len(sample) > textSampleChars {
		sample = sample[:textSampleChars]
	}
	snap.TextSample = sample

	snap.FitScore = fitScore(sample)
	return snap
}

// fitScore starts at the base score, adds perKeyword for every matched
// keyword, and clamps to [minFitScore, maxFitScore].
func fitScore(text string) int {
	lower := strings.ToLower(text)
	score := baseFitScore
	for _, kw := range fitKeywords {
		if strings.Contains(lower, kw) {
			score += perKeyword
		}
	}
	if score < minFitScore {
		score = minFitScore
	}
	if score > maxFitScore {
		score = maxFitScore
	}
	return score
}

// stripTags removes HTML tags from a string, producing plain text.
func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
