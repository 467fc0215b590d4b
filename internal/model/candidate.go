// Package model defines the data types shared across the research pipeline.
package model

// Source types attached to candidates depending on which stage produced them.
const (
	SourceCRMFallback = "crm-fallback"
	SourceEstimated   = "estimated"
	SourceSerper      = "serper"
	SourceTavily      = "tavily"
)

// Confidence levels for candidate plausibility.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// DefaultScore is assumed when a potential or match score is missing or
// unparseable.
const DefaultScore = 50

// Candidate is a prospective reseller surfaced by discovery or the
// generative provider. Candidates are transient: they live for the duration
// of a single research request and are never persisted.
type Candidate struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Country            string  `json:"country,omitempty"`
	Region             string  `json:"region,omitempty"`
	Industry           string  `json:"industry,omitempty"`
	Seller             string  `json:"seller,omitempty"`
	PotentialScore     float64 `json:"potentialScore"`
	MatchScore         float64 `json:"matchScore"`
	Website            string  `json:"website,omitempty"`
	OrganizationNumber string  `json:"organizationNumber,omitempty"`
	Reason             string  `json:"reason,omitempty"`
	SourceType         string  `json:"sourceType,omitempty"`
	SourceURL          string  `json:"sourceUrl,omitempty"`
	Confidence         string  `json:"confidence,omitempty"`

	TotalScore      *float64 `json:"totalScore,omitempty"`
	SimilarityScore *float64 `json:"similarityScore,omitempty"`

	// Set by the existing-customer cross-match.
	AlreadyCustomer      bool   `json:"alreadyCustomer"`
	ExistingCustomerID   string `json:"existingCustomerId,omitempty"`
	ExistingCustomerName string `json:"existingCustomerName,omitempty"`
}

// DiscoverySeed is a raw, low-confidence candidate sourced directly from an
// external search provider before any LLM validation.
type DiscoverySeed struct {
	Name       string `json:"name"`
	Website    string `json:"website,omitempty"`
	SourceURL  string `json:"sourceUrl,omitempty"`
	SourceType string `json:"sourceType"`
	Snippet    string `json:"snippet,omitempty"`
}
