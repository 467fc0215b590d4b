package model

// Customer is the projection of a CRM customer used by the research
// pipeline. The pipeline only ever reads customers.
type Customer struct {
	ID             string   `json:"id" db:"id"`
	Name           string   `json:"name" db:"name"`
	Organization   string   `json:"organization,omitempty" db:"organization"`
	Country        string   `json:"country,omitempty" db:"country"`
	Region         string   `json:"region,omitempty" db:"region"`
	Industry       string   `json:"industry,omitempty" db:"industry"`
	Seller         string   `json:"seller,omitempty" db:"seller"`
	Notes          string   `json:"notes,omitempty" db:"notes"`
	PotentialScore *float64 `json:"potentialScore,omitempty" db:"potential_score"`
	Website        string   `json:"website,omitempty" db:"website"`
}

// Profile describes the company a research request centers on, either
// resolved from an existing customer or assembled from free-text input.
type Profile struct {
	Name           string   `json:"name"`
	Country        string   `json:"country,omitempty"`
	Region         string   `json:"region,omitempty"`
	Industry       string   `json:"industry,omitempty"`
	Seller         string   `json:"seller,omitempty"`
	PotentialScore *float64 `json:"potentialScore,omitempty"`
	Website        string   `json:"website,omitempty"`
	SegmentFocus   string   `json:"segmentFocus,omitempty"`
}
