// Package results holds ranked recommendations and the exclude file that
// remembers postings the user is no longer interested in.
package results

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spigell/job-recommender/internal/matching"
)

// List is an ordered set of ranked jobs. Every operation keeps the ranking
// order of the remaining items.
type List struct {
	Items []matching.ScoredJob `json:"items"`
}

func New(items []matching.ScoredJob) *List {
	return &List{Items: items}
}

func (l *List) Len() int {
	return len(l.Items)
}

// Keep retains the items for which keep returns true and returns the ids of
// the dropped ones.
func (l *List) Keep(keep func(job *matching.ScoredJob) bool) []int {
	var dropped []int
	kept := l.Items[:0:0]
	for i := range l.Items {
		if keep(&l.Items[i]) {
			kept = append(kept, l.Items[i])
			continue
		}
		dropped = append(dropped, l.Items[i].ID)
	}
	l.Items = kept
	return dropped
}

// Exclude drops the items whose string field name equals one of targets,
// compared case-insensitively.
func (l *List) Exclude(name string, targets []string) []int {
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}

	return l.Keep(func(job *matching.ScoredJob) bool {
		_, found := set[strings.ToLower(strings.TrimSpace(job.GetStringField(name)))]
		return !found
	})
}

func (l *List) FindByID(id int) *matching.ScoredJob {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return &l.Items[i]
		}
	}
	return nil
}

// ReportByPlatform groups a short summary of every job by its platform.
func (l *List) ReportByPlatform() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range l.Items {
		platform := job.Platform
		if platform == "" {
			platform = "unknown"
		}
		report[platform] = append(report[platform], map[string]string{
			"title":          job.Title,
			"company":        job.Company,
			"url":            job.URL,
			"location":       job.Location,
			"salary":         job.Salary,
			"match_score":    fmt.Sprintf("%.1f", job.MatchScore),
			"matched_skills": strings.Join(job.MatchedSkills, ", "),
		})
	}
	return report
}

func (l *List) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "recommendations_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// WriteTable renders the list as an aligned text table.
func (l *List) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tTITLE\tCOMPANY\tPLATFORM\tMATCHED SKILLS\tURL")
	for i, job := range l.Items {
		fmt.Fprintf(tw, "%d\t%.1f\t%s\t%s\t%s\t%s\t%s\n",
			i+1, job.MatchScore, job.Title, job.Company, job.Platform,
			strings.Join(job.MatchedSkills, ","), job.URL,
		)
	}
	return tw.Flush()
}
