// Package match provides the name and domain normalization used for
// candidate deduplication and existing-customer matching.
package match

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, so that
// "Örebro Kök" and "Orebro Kok" normalize to the same key.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName folds a company name to a dedup key: case-folded,
// diacritics stripped, everything non-alphanumeric removed.
func NormalizeName(name string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(name))
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Domain extracts the lowercased hostname from a URL or bare domain,
// stripped of a leading "www.". Returns "" when nothing host-like remains.
func Domain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// DomainIsOrUnder reports whether host equals blocked or is a subdomain of
// it. Both sides are expected to be www-stripped lowercase hostnames.
func DomainIsOrUnder(host, blocked string) bool {
	return host == blocked || strings.HasSuffix(host, "."+blocked)
}
