package profile

import (
	"strings"

	"github.com/spigell/job-recommender/internal/ai"
)

// Merge overlays a language-model extraction on the vocabulary result.
// Empty extracted fields keep the parsed values.
func (r *Resume) Merge(e *ai.Extraction) {
	if e == nil {
		return
	}

	if title := strings.TrimSpace(e.JobTitle); title != "" {
		r.JobTitle = title
	}
	if len(e.Skills) > 0 {
		r.Skills = append([]string(nil), e.Skills...)
	}
	if e.ExperienceYears > 0 {
		r.ExperienceYears = e.ExperienceYears
	}
	if kw := strings.TrimSpace(e.Keywords); kw != "" {
		r.Keywords = kw
	}
	r.Extractor = "gemini"
}
