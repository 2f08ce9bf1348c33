package jobs

import (
	"strings"
)

const (
	PostingURLField      = "URL"
	PostingCompanyField  = "Company"
	PostingPlatformField = "Platform"
	PostingKeyField      = "Key"
)

// Posting is a single job listing as supplied by a retrieval source.
// Only Title, Description and Skills take part in scoring, the rest is passed through.
type Posting struct {
	ID          int      `json:"id,omitempty" mapstructure:"id"`
	Title       string   `json:"title" mapstructure:"title"`
	Company     string   `json:"company" mapstructure:"company"`
	Location    string   `json:"location" mapstructure:"location"`
	Description string   `json:"description" mapstructure:"description"`
	Skills      []string `json:"skills" mapstructure:"skills"`
	Platform    string   `json:"platform" mapstructure:"platform"`
	URL         string   `json:"url" mapstructure:"url"`
	PostedDate  string   `json:"posted_date,omitempty" mapstructure:"posted_date"`
	Salary      string   `json:"salary,omitempty" mapstructure:"salary"`
	JobType     string   `json:"job_type,omitempty" mapstructure:"job_type"`
}

// Key identifies a posting across sources by its lower-cased title and company.
func (p *Posting) Key() string {
	return strings.ToLower(strings.TrimSpace(p.Title)) + "\x00" + strings.ToLower(strings.TrimSpace(p.Company))
}

// Document joins the scored text fields of the posting.
func (p *Posting) Document() string {
	return p.Title + " " + p.Description + " " + strings.Join(p.Skills, " ")
}

func (p *Posting) GetStringField(name string) string {
	switch name {
	case PostingURLField:
		return p.URL
	case PostingCompanyField:
		return p.Company
	case PostingPlatformField:
		return p.Platform
	case PostingKeyField:
		return p.Key()
	default:
		return ""
	}
}

// Dedup drops postings whose Key was already seen. Order is preserved.
func Dedup(postings []Posting) []Posting {
	seen := make(map[string]struct{}, len(postings))
	unique := make([]Posting, 0, len(postings))
	for _, p := range postings {
		key := p.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}

// AssignIDs numbers postings sequentially starting at 1.
func AssignIDs(postings []Posting) {
	for i := range postings {
		postings[i].ID = i + 1
	}
}

// MatchesAny reports whether any of the lower-cased keywords occurs in text.
func MatchesAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Truncate shortens s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
