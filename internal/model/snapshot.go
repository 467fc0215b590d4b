package model

// WebsiteSnapshot holds the lightweight structured signals extracted from a
// company website, plus a heuristic fit score in [20,100].
type WebsiteSnapshot struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	H1          string `json:"h1,omitempty"`
	TextSample  string `json:"textSample,omitempty"`
	FitScore    int    `json:"vendoraFitScore"`
}
