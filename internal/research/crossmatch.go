package research

import (
	"github.com/vendora-crm/research-service/internal/match"
	"github.com/vendora-crm/research-service/internal/model"
)

// AnnotateExisting flags candidates that already exist in the customer
// store, matching by website domain first, then by normalized name. Input
// candidates are returned unmodified except for the three existing-customer
// fields. First occurrence wins per lookup key.
func AnnotateExisting(cands []model.Candidate, customers []model.Customer) []model.Candidate {
	byName := make(map[string]*model.Customer, len(customers))
	byDomain := make(map[string]*model.Customer, len(customers))
	for i := range customers {
		c := &customers[i]
		if key := match.NormalizeName(c.Name); key != "" {
			if _, ok := byName[key]; !ok {
				byName[key] = c
			}
		}
		if domain := match.Domain(c.Website); domain != "" {
			if _, ok := byDomain[domain]; !ok {
				byDomain[domain] = c
			}
		}
	}

	out := make([]model.Candidate, len(cands))
	for i, cand := range cands {
		existing := byDomain[match.Domain(cand.Website)]
		if existing == nil {
			existing = byName[match.NormalizeName(cand.Name)]
		}
		if existing != nil {
			cand.AlreadyCustomer = true
			cand.ExistingCustomerID = existing.ID
			cand.ExistingCustomerName = existing.Name
		}
		out[i] = cand
	}
	return out
}
