package retrieval

import (
	"crypto/sha256"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/spigell/job-recommender/internal/jobs"
)

const (
	DefaultMaxJobs    = 20
	DefaultMinResults = 5
	defaultKeyword    = "developer"

	minPerSource      = 3
	sourcesPerRequest = 6

	maxDescription = 500
	maxTags        = 10
)

// Query is what every source searches for.
type Query struct {
	Keywords []string
	Location string
	// Limit caps the postings returned by a single source.
	Limit int
}

// Keywords splits a free-text query into search keywords. Words of two
// characters or fewer are dropped; an empty result becomes ["developer"].
func Keywords(query string) []string {
	var keywords []string
	for _, word := range strings.Fields(query) {
		if len([]rune(word)) > 2 {
			keywords = append(keywords, word)
		}
	}
	if len(keywords) == 0 {
		return []string{defaultKeyword}
	}
	return keywords
}

// PerSourceLimit is the share of maxJobs requested from every source.
func PerSourceLimit(maxJobs int) int {
	return max(minPerSource, maxJobs/sourcesPerRequest)
}

// CacheKey derives a stable key for a retrieval request.
func CacheKey(keywords []string, location string, maxJobs int) string {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		normalized = append(normalized, strings.ToLower(k))
	}
	joined := strings.Join(normalized, " ") + "|" + strings.ToLower(strings.TrimSpace(location)) + "|" + fmt.Sprint(maxJobs)
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("jobs:%x", hash[:12])
}

// plainText converts an HTML description to markdown text and truncates it.
func plainText(description string) string {
	text := description
	if strings.ContainsAny(description, "<&") {
		if md, err := htmltomarkdown.ConvertString(description); err == nil {
			text = md
		}
	}
	return jobs.Truncate(strings.TrimSpace(text), maxDescription)
}

func limitTags(tags []string) []string {
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return append([]string(nil), tags...)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func matchesQuery(q Query, fields ...string) bool {
	return jobs.MatchesAny(strings.Join(fields, " "), q.Keywords)
}
