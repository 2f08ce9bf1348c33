package matching

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// maxFeatures caps the joint vocabulary, keeping the most frequent terms.
const maxFeatures = 500

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TextSimilarity scores two documents by the cosine of their TF-IDF vectors,
// scaled to [0,100]. The IDF space is built from the two documents only.
// Empty documents or an empty joint vocabulary score 0.
func TextSimilarity(userDoc, jobDoc string) float64 {
	if strings.TrimSpace(userDoc) == "" || strings.TrimSpace(jobDoc) == "" {
		return 0
	}

	docs := [2]map[string]int{termCounts(userDoc), termCounts(jobDoc)}

	vocabulary := jointVocabulary(docs[:])
	if len(vocabulary) == 0 {
		return 0
	}

	n := float64(len(docs))
	var vectors [2][]float64
	for i := range docs {
		vectors[i] = make([]float64, len(vocabulary))
	}

	for j, term := range vocabulary {
		df := 0
		for _, counts := range docs {
			if counts[term] > 0 {
				df++
			}
		}
		idf := math.Log((1+n)/(1+float64(df))) + 1
		for i, counts := range docs {
			vectors[i][j] = float64(counts[term]) * idf
		}
	}

	cosine := cosineSimilarity(vectors[0], vectors[1])
	return clamp(cosine*100, 0, 100)
}

func termCounts(doc string) map[string]int {
	counts := make(map[string]int)
	for _, token := range tokenPattern.FindAllString(strings.ToLower(doc), -1) {
		if _, stop := englishStopWords[token]; stop {
			continue
		}
		counts[token]++
	}
	return counts
}

// jointVocabulary returns the terms of all documents sorted by corpus
// frequency (ties alphabetically), truncated to maxFeatures.
func jointVocabulary(docs []map[string]int) []string {
	total := make(map[string]int)
	for _, counts := range docs {
		for term, c := range counts {
			total[term] += c
		}
	}

	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if total[terms[i]] != total[terms[j]] {
			return total[terms[i]] > total[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	return terms
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
