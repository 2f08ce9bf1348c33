// Package profile turns résumé documents into search profiles.
package profile

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/spigell/job-recommender/internal/matching"
)

// UnknownTitle is reported when no known job title occurs in a résumé.
const UnknownTitle = "Unknown"

const previewLength = 1000

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[-.]?)?\(?\d{3}\)?[-.]?\d{3}[-.]?\d{4}`)
)

var resumeSkills = []string{
	"python", "java", "c++", "c#", "javascript", "typescript", "html", "css", "sql", "r", "go", "ruby", "php", "swift", "kotlin",
	"react", "angular", "vue", "node.js", "django", "flask", "fastapi", "spring", "asp.net", "laravel",
	"machine learning", "deep learning", "tensorflow", "pytorch", "scikit-learn", "pandas", "numpy", "matplotlib", "seaborn", "nlp", "computer vision", "generative ai", "llm",
	"aws", "azure", "google cloud", "docker", "kubernetes", "jenkins", "git", "linux", "terraform", "ansible",
	"postgresql", "mysql", "mongodb", "redis", "oracle", "sqlite", "firebase",
	"jira", "agile", "scrum", "figma", "tableau", "power bi", "excel",
}

var jobTitles = []string{
	"software engineer", "software developer", "frontend developer", "backend developer", "full stack developer",
	"data scientist", "data analyst", "data engineer", "machine learning engineer", "ai engineer",
	"product manager", "project manager", "ui/ux designer", "devops engineer", "qa engineer",
	"system administrator", "network engineer", "cyber security analyst",
}

// Resume is what was learned from a résumé.
type Resume struct {
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Skills          []string `json:"skills"`
	JobTitle        string   `json:"job_title"`
	ExperienceYears float64  `json:"experience_years,omitempty"`
	Keywords        string   `json:"keywords,omitempty"`
	Preview         string   `json:"raw_text"`
	// Extractor names what produced the fields.
	Extractor string `json:"extractor"`
}

// Parse extracts contact data, skills and a job title from résumé text.
func Parse(text string) *Resume {
	skills := matching.ExtractTerms(text, resumeSkills)
	if skills == nil {
		skills = []string{}
	}

	return &Resume{
		Email:     emailPattern.FindString(text),
		Phone:     phonePattern.FindString(text),
		Skills:    skills,
		JobTitle:  detectTitle(text),
		Preview:   preview(text),
		Extractor: "vocabulary",
	}
}

// HasTitle reports whether a real job title was detected.
func (r *Resume) HasTitle() bool {
	title := strings.TrimSpace(r.JobTitle)
	return title != "" && title != UnknownTitle
}

// SearchQuery is the query a résumé search runs with.
func (r *Resume) SearchQuery() string {
	if r.HasTitle() {
		return r.JobTitle
	}
	return "Software Engineer"
}

// Profile converts the résumé into a ranking profile. The unknown-title
// sentinel is never passed on.
func (r *Resume) Profile() matching.UserProfile {
	p := matching.UserProfile{
		Skills:   append([]string(nil), r.Skills...),
		Keywords: r.Keywords,
	}
	if r.HasTitle() {
		p.JobTitle = r.JobTitle
	}
	if r.ExperienceYears > 0 {
		p.Experience = matching.ExperienceYears(r.ExperienceYears)
	}
	return p
}

func detectTitle(text string) string {
	lower := strings.ToLower(text)
	for _, title := range jobTitles {
		if matching.ContainsTerm(lower, title) {
			return titleCase(title)
		}
	}
	return UnknownTitle
}

// titleCase upper-cases the first letter of every letter run.
func titleCase(s string) string {
	runes := []rune(s)
	prevLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if !prevLetter {
				runes[i] = unicode.ToUpper(r)
			}
			prevLetter = true
			continue
		}
		prevLetter = false
	}
	return string(runes)
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}
