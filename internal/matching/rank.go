// Package matching ranks job postings against a user profile.
//
// The final score of a posting is a weighted sum of three sub-scores, each in
// [0,100]: skill overlap, TF-IDF text similarity and experience alignment.
// Postings whose title contains the desired title get a boost. Everything in
// this package is pure and safe for concurrent use.
package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/spigell/job-recommender/internal/jobs"
)

const (
	skillWeight      = 0.50
	textWeight       = 0.30
	experienceWeight = 0.20
	titleBoost       = 1.15
)

// UserProfile is the job-search intent of one request.
type UserProfile struct {
	Skills     []string   `json:"skills,omitempty"`
	Experience Experience `json:"experience"`
	JobTitle   string     `json:"job_title,omitempty"`
	Keywords   string     `json:"keywords,omitempty"`
}

// Document joins the profile fields compared against job documents.
func (p *UserProfile) Document() string {
	return p.JobTitle + " " + strings.Join(p.Skills, " ") + " " + p.Keywords
}

// ScoredJob is a posting with its scores. Scores are rounded to one decimal.
type ScoredJob struct {
	jobs.Posting
	MatchScore      float64  `json:"match_score"`
	SkillMatch      float64  `json:"skill_match"`
	TextSimilarity  float64  `json:"text_similarity"`
	ExperienceMatch float64  `json:"experience_match"`
	MatchedSkills   []string `json:"matched_skills"`
}

// Rank scores every posting against the profile and returns them ordered by
// match score, highest first. Postings with equal scores keep their input
// order. A nil or empty batch yields an empty result.
func Rank(profile UserProfile, postings []jobs.Posting) []ScoredJob {
	if len(postings) == 0 {
		return []ScoredJob{}
	}

	user := newUserSide(profile)

	ranked := make([]ScoredJob, 0, len(postings))
	for _, p := range postings {
		ranked = append(ranked, user.score(p))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	return ranked
}

// userSide holds the per-profile values shared by every posting of a batch.
type userSide struct {
	doc        string
	skills     []string
	title      string
	experience Experience
}

func newUserSide(profile UserProfile) *userSide {
	doc := profile.Document()
	return &userSide{
		doc:        doc,
		skills:     normalizeSkills(profile.Skills, ExtractSkills(doc)),
		title:      strings.ToLower(strings.TrimSpace(profile.JobTitle)),
		experience: profile.Experience,
	}
}

func (u *userSide) score(p jobs.Posting) ScoredJob {
	doc := p.Document()
	jobSkills := normalizeSkills(p.Skills, ExtractSkills(doc))

	text := TextSimilarity(u.doc, doc)
	skill := SkillMatch(u.skills, jobSkills)
	experience := ExperienceMatch(u.experience, p.Description)

	final := skill*skillWeight + text*textWeight + experience*experienceWeight
	if u.title != "" && strings.Contains(strings.ToLower(p.Title), u.title) {
		final = math.Min(100, final*titleBoost)
	}

	matched := intersect(u.skills, jobSkills)
	sort.Strings(matched)

	return ScoredJob{
		Posting:         p,
		MatchScore:      round1(final),
		SkillMatch:      round1(skill),
		TextSimilarity:  round1(text),
		ExperienceMatch: round1(experience),
		MatchedSkills:   matched,
	}
}

// round1 rounds to one decimal, ties to even.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
