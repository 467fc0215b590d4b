package model

// Scope values bounding the CRM candidate pool.
const (
	ScopeCountry = "country"
	ScopeRegion  = "region"
)

// Segment focus values for discovery queries.
const (
	SegmentB2B   = "B2B"
	SegmentB2C   = "B2C"
	SegmentMixed = "MIXED"
)

// ResearchRequest is the system-boundary input for one research run.
type ResearchRequest struct {
	CustomerID        string   `json:"customerId,omitempty"`
	CompanyName       string   `json:"companyName,omitempty"`
	Country           string   `json:"country,omitempty"`
	Region            string   `json:"region,omitempty"`
	Seller            string   `json:"seller,omitempty"`
	Industry          string   `json:"industry,omitempty"`
	Websites          []string `json:"websites,omitempty"`
	Scope             string   `json:"scope,omitempty"`
	MaxSimilar        int      `json:"maxSimilar,omitempty"`
	SegmentFocus      string   `json:"segmentFocus,omitempty"`
	BasePrompt        string   `json:"basePrompt,omitempty"`
	ExtraInstructions string   `json:"extraInstructions,omitempty"`
	ExternalOnly      bool     `json:"externalOnly,omitempty"`
	ExternalMode      string   `json:"externalMode,omitempty"`
}

// ResolvedQuery echoes back the parameters the pipeline actually used after
// customer lookup and defaulting.
type ResolvedQuery struct {
	CompanyName  string   `json:"companyName"`
	Country      string   `json:"country,omitempty"`
	Region       string   `json:"region,omitempty"`
	Seller       string   `json:"seller,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	Scope        string   `json:"scope"`
	MaxSimilar   int      `json:"maxSimilar"`
	SegmentFocus string   `json:"segmentFocus,omitempty"`
	Websites     []string `json:"websites,omitempty"`
	ExternalOnly bool     `json:"externalOnly"`
	ExternalMode string   `json:"externalMode,omitempty"`
}

// AIResult is the raw generative-provider output attached to a response.
type AIResult struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// ResearchResponse is the system-boundary output of one research run.
// SimilarCustomers is always non-nil; it is empty only when every fallback
// stage produced nothing.
type ResearchResponse struct {
	Query            ResolvedQuery     `json:"query"`
	Snapshots        []WebsiteSnapshot `json:"snapshots"`
	SimilarCustomers []Candidate       `json:"similarCustomers"`
	Prompt           string            `json:"prompt"`
	AIResult         *AIResult         `json:"aiResult"`
	AIError          string            `json:"aiError,omitempty"`
	SeedProviders    []string          `json:"seedProviders,omitempty"`
}

// ResearchSettings is the persisted research configuration, stored as a
// singleton row and read with safe defaults when absent or malformed.
type ResearchSettings struct {
	VendorSites       []string `json:"vendorSites"`
	BrandSites        []string `json:"brandSites"`
	ExtraInstructions string   `json:"extraInstructions,omitempty"`
	DefaultScope      string   `json:"defaultScope"`
}
