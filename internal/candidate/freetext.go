package candidate

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/vendora-crm/research-service/internal/model"
)

// listLine matches bullet or numbered list markers at the start of a line.
var listLine = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)

// nameCutoffs separate a list entry's company name from trailing
// commentary.
var nameCutoffs = []string{" – ", " — ", " - ", ": ", ", "}

// FromFreeText salvages candidates from bullet or numbered lines when the
// LLM answered in prose instead of JSON. Scores default; confidence is
// medium at best since nothing was validated.
func FromFreeText(text string) []model.Candidate {
	var out []model.Candidate
	for _, line := range strings.Split(text, "\n") {
		m := listLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		for _, sep := range nameCutoffs {
			if idx := strings.Index(name, sep); idx > 0 {
				name = name[:idx]
				break
			}
		}
		name = strings.Trim(name, `"'*`)
		if name == "" {
			continue
		}
		out = append(out, model.Candidate{
			ID:             uuid.New().String(),
			Name:           name,
			PotentialScore: model.DefaultScore,
			MatchScore:     model.DefaultScore,
			SourceType:     model.SourceEstimated,
			Confidence:     model.ConfidenceLow,
		})
	}
	return out
}
