package matching

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractSkills returns the skill vocabulary terms found in text.
func ExtractSkills(text string) []string {
	return ExtractTerms(text, skillVocabulary)
}

// ExtractTerms returns the distinct vocabulary terms that occur in the
// lower-cased text, in vocabulary order. A term only counts when it is not
// directly adjacent to a letter or digit, so "java" is not found in
// "javascript" while "c++" is found in "c++, go".
func ExtractTerms(text string, vocabulary []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lower := strings.ToLower(text)
	seen := make(map[string]struct{}, len(vocabulary))
	var found []string
	for _, term := range vocabulary {
		if _, ok := seen[term]; ok {
			continue
		}
		if ContainsTerm(lower, term) {
			seen[term] = struct{}{}
			found = append(found, term)
		}
	}
	return found
}

// ContainsTerm reports whether term occurs in text on its own, i.e. not glued
// to a word character on either side. Both arguments are expected lower-cased.
func ContainsTerm(text, term string) bool {
	if term == "" {
		return false
	}

	for offset := 0; offset <= len(text)-len(term); {
		idx := strings.Index(text[offset:], term)
		if idx < 0 {
			return false
		}

		start := offset + idx
		end := start + len(term)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}

		offset = start + 1
	}

	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// normalizeSkills lower-cases and trims every entry, dropping empties and
// duplicates while keeping first-seen order.
func normalizeSkills(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, s := range list {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
