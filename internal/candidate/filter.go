package candidate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/vendora-crm/research-service/internal/match"
	"github.com/vendora-crm/research-service/internal/model"
)

const (
	minNameLen = 2
	maxNameLen = 80
)

// blockedNamePatterns reject result titles that are content, not companies.
var blockedNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^top\s+\d+`),
	regexp.MustCompile(`(?i)^\d+\s+(best|top)`),
	regexp.MustCompile(`(?i)\bbest\b`),
	regexp.MustCompile(`(?i)\breviews?\b`),
	regexp.MustCompile(`(?i)\bcareers?\b`),
	regexp.MustCompile(`(?i)\bjobs?\b`),
	regexp.MustCompile(`(?i)privacy policy`),
	regexp.MustCompile(`(?i)cookie`),
	regexp.MustCompile(`(?i)terms of (use|service)`),
	regexp.MustCompile(`(?i)\blog ?in\b`),
	regexp.MustCompile(`(?i)\bsign ?up\b`),
	regexp.MustCompile(`(?i)^\[pdf\]`),
	regexp.MustCompile(`(?i)\buntitled\b`),
	regexp.MustCompile(`(?i)\b404\b`),
	regexp.MustCompile(`(?i)page not found`),
}

// directoryDomains are known non-company directory, aggregator and review
// hosts. Matched exact or by subdomain.
var directoryDomains = []string{
	"linkedin.com",
	"trustpilot.com",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"youtube.com",
	"yelp.com",
	"glassdoor.com",
	"indeed.com",
	"wikipedia.org",
	"crunchbase.com",
	"medium.com",
	"blogspot.com",
	"wordpress.com",
	"reddit.com",
	"pinterest.com",
	"tiktok.com",
	"g2.com",
	"capterra.com",
	"tripadvisor.com",
	"yellowpages.com",
	"amazon.com",
	"allabolag.se",
	"proff.se",
	"hitta.se",
	"eniro.se",
}

// contentPathMarkers flag URL paths that point at articles rather than a
// company homepage.
var contentPathMarkers = []string{
	"review", "career", "blog", "news", "press", "article", "pdf", "doc",
}

// Filter drops implausible candidates and deduplicates by normalized name
// and domain, keeping the first occurrence. Extra blocklist entries extend
// the built-in directory domains. Filtering is idempotent.
func Filter(cands []model.Candidate, extraBlocked ...string) []model.Candidate {
	out := make([]model.Candidate, 0, len(cands))
	seenNames := map[string]bool{}
	seenDomains := map[string]bool{}

	for _, c := range cands {
		if !plausibleName(c.Name) {
			continue
		}
		if blockedURL(c.Website, extraBlocked) || blockedURL(c.SourceURL, extraBlocked) {
			continue
		}

		nameKey := match.NormalizeName(c.Name)
		if nameKey == "" || seenNames[nameKey] {
			continue
		}
		domain := match.Domain(c.Website)
		if domain != "" && seenDomains[domain] {
			continue
		}

		seenNames[nameKey] = true
		if domain != "" {
			seenDomains[domain] = true
		}
		out = append(out, c)
	}
	return out
}

// plausibleName rejects names that are too short, too long, or match a
// blocked content pattern.
func plausibleName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < minNameLen || len(name) > maxNameLen {
		return false
	}
	for _, p := range blockedNamePatterns {
		if p.MatchString(name) {
			return false
		}
	}
	return true
}

// blockedURL reports whether the URL points at a directory host or a
// content page rather than a company homepage.
func blockedURL(raw string, extraBlocked []string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}

	host := match.Domain(raw)
	if host == "" {
		return false
	}
	for _, blocked := range directoryDomains {
		if match.DomainIsOrUnder(host, blocked) {
			return true
		}
	}
	for _, blocked := range extraBlocked {
		if match.DomainIsOrUnder(host, strings.ToLower(strings.TrimSpace(blocked))) {
			return true
		}
	}

	return contentPath(raw)
}

// contentPath applies the path heuristic: more than one non-empty segment,
// or any segment carrying a content marker, means this is not a homepage.
func contentPath(raw string) bool {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) > 1 {
		return true
	}

	lowerPath := strings.ToLower(u.Path)
	for _, marker := range contentPathMarkers {
		if strings.Contains(lowerPath, marker) {
			return true
		}
	}
	return false
}
