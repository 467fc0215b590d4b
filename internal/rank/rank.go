// Package rank scores CRM customers against a base profile. The ranker is
// pure and deterministic: no I/O, no randomness.
package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/vendora-crm/research-service/internal/model"
)

// Attribute weights for the similarity component.
const (
	countryWeight  = 30
	regionWeight   = 20
	industryWeight = 25
	sellerWeight   = 10

	// potentialWeight caps the potential-proximity term.
	potentialWeight = 15
)

// Scored pairs a customer with its computed match score.
type Scored struct {
	Customer   model.Customer `json:"customer"`
	Similarity float64        `json:"similarityScore"`
	MatchScore float64        `json:"matchScore"`
}

// SimilarCustomers ranks the pool against the base profile, descending by
// match score. Ties retain input order.
func SimilarCustomers(base model.Profile, pool []model.Customer) []Scored {
	basePot := potentialOrDefault(base.PotentialScore)

	scored := make([]Scored, len(pool))
	for i, c := range pool {
		sim := 0.0
		if attrMatch(base.Country, c.Country) {
			sim += countryWeight
		}
		if attrMatch(base.Region, c.Region) {
			sim += regionWeight
		}
		if attrMatch(base.Industry, c.Industry) {
			sim += industryWeight
		}
		if attrMatch(base.Seller, c.Seller) {
			sim += sellerWeight
		}

		candPot := potentialOrDefault(c.PotentialScore)
		proximity := potentialWeight - math.Abs(basePot-candPot)/2
		if proximity > 0 {
			sim += proximity
		}

		priority := candPot / 2
		scored[i] = Scored{
			Customer:   c,
			Similarity: sim,
			MatchScore: math.Round(sim + priority),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})
	return scored
}

// attrMatch requires both sides non-empty and equal, ignoring case and
// surrounding whitespace.
func attrMatch(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

func potentialOrDefault(p *float64) float64 {
	if p == nil {
		return model.DefaultScore
	}
	return *p
}
