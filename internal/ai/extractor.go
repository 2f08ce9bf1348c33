// Package ai declares the language-model collaborators of the recommender.
package ai

import "context"

// Extraction is a résumé profile produced by a language model.
type Extraction struct {
	JobTitle        string
	Skills          []string
	ExperienceYears float64
	Keywords        string
	Raw             string
}

// Extractor reads a profile out of résumé text.
type Extractor interface {
	Extract(ctx context.Context, resumeText string) (*Extraction, error)
}
