package matching

import "strings"

const (
	exactMatchWeight   = 3.0
	partialMatchWeight = 1.5
	relatedMatchWeight = 1.0
)

// SkillMatch scores the overlap of user skills with job skills in [0,100].
// Every job skill earns the first applicable tier: exact, partial (substring
// either way) or related (shared synonym cluster). The maximum is reached
// when every job skill matches exactly.
func SkillMatch(userSkills, jobSkills []string) float64 {
	user := normalizeSkills(userSkills)
	job := normalizeSkills(jobSkills)
	if len(user) == 0 || len(job) == 0 {
		return 0
	}

	userSet := make(map[string]struct{}, len(user))
	for _, s := range user {
		userSet[s] = struct{}{}
	}

	score := 0.0
	for _, js := range job {
		switch {
		case has(userSet, js):
			score += exactMatchWeight
		case partialMatch(js, user):
			score += partialMatchWeight
		case relatedMatch(js, userSet):
			score += relatedMatchWeight
		}
	}

	maxScore := float64(len(job)) * exactMatchWeight
	return clamp(score/maxScore*100, 0, 100)
}

func partialMatch(jobSkill string, userSkills []string) bool {
	for _, us := range userSkills {
		if strings.Contains(us, jobSkill) || strings.Contains(jobSkill, us) {
			return true
		}
	}
	return false
}

func relatedMatch(jobSkill string, userSet map[string]struct{}) bool {
	for _, idx := range clusterIndex[jobSkill] {
		for _, term := range synonymClusters[idx] {
			if has(userSet, term) {
				return true
			}
		}
	}
	return false
}

// intersect returns the entries of a that are also in b, in a's order.
func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0)
	for _, s := range a {
		if has(set, s) {
			out = append(out, s)
		}
	}
	return out
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
