package research

import (
	"github.com/google/uuid"

	"github.com/vendora-crm/research-service/internal/model"
)

// SeedCandidates maps raw discovery seeds to low-confidence candidates.
// Scores default; the hard filter still applies afterwards.
func SeedCandidates(seeds []model.DiscoverySeed) []model.Candidate {
	out := make([]model.Candidate, 0, len(seeds))
	for _, seed := range seeds {
		out = append(out, model.Candidate{
			ID:             uuid.New().String(),
			Name:           seed.Name,
			Website:        seed.Website,
			SourceURL:      seed.SourceURL,
			SourceType:     seed.SourceType,
			Reason:         seed.Snippet,
			PotentialScore: model.DefaultScore,
			MatchScore:     model.DefaultScore,
			Confidence:     model.ConfidenceLow,
		})
	}
	return out
}
