package filtering

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/matching"
	"github.com/spigell/job-recommender/internal/results"
)

func ranked() *results.List {
	return results.New([]matching.ScoredJob{
		{Posting: jobs.Posting{ID: 1, Title: "Go Developer", Company: "Acme", URL: "https://a.test/1"}, MatchScore: 88},
		{Posting: jobs.Posting{ID: 2, Title: "Backend Engineer", Company: "Globex", URL: "https://g.test/2"}, MatchScore: 64},
		{Posting: jobs.Posting{ID: 3, Title: "Data Analyst", Company: "Initech", URL: "#"}, MatchScore: 41},
		{Posting: jobs.Posting{ID: 4, Title: "SRE", Company: "Umbrella", URL: "https://u.test/4"}, MatchScore: 30},
	})
}

func idsOf(l *results.List) []int {
	out := make([]int, 0, l.Len())
	for _, job := range l.Items {
		out = append(out, job.ID)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunAppliesFiltersInOrder(t *testing.T) {
	excludePath := filepath.Join(t.TempDir(), "exclude.json")
	excluded := &results.ExcludedJobs{Items: []*results.ExcludedJob{
		{URL: "https://g.test/2"},
		{Key: "data analyst\x00initech", URL: "#"},
	}}
	if err := excluded.ToFile(excludePath); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	cfg := &Config{
		ExcludeCompanies: []string{"umbrella"},
		ExcludeFile:      excludePath,
		MinimumScore:     50,
	}

	core, observed := observer.New(zapcore.InfoLevel)
	out, steps, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core)}, Defaults(), ranked())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := idsOf(out); !equalInts(got, []int{1}) {
		t.Fatalf("unexpected remaining ids: %v", got)
	}

	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	want := []Step{
		{Name: "exclude_companies", Initial: 4, Dropped: 1, Left: 3},
		{Name: "exclude_file", Initial: 3, Dropped: 2, Left: 1},
		{Name: "minimum_score", Initial: 1, Dropped: 0, Left: 1},
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("step %d: expected %+v, got %+v", i, want[i], steps[i])
		}
	}

	if n := observed.FilterMessage("filter step").Len(); n != 3 {
		t.Fatalf("expected 3 filter step logs, got %d", n)
	}
}

func TestMinimumScoreKeepsOrder(t *testing.T) {
	out, _, err := Run(context.Background(), &Config{MinimumScore: 40}, Deps{}, []Filter{NewMinimumScore()}, ranked())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := idsOf(out); !equalInts(got, []int{1, 2, 3}) {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestMinimumScoreValidation(t *testing.T) {
	_, _, err := Run(context.Background(), &Config{MinimumScore: 120}, Deps{}, []Filter{NewMinimumScore()}, ranked())
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestZeroConfigKeepsEverything(t *testing.T) {
	out, steps, err := Run(context.Background(), nil, Deps{}, Defaults(), ranked())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 4 {
		t.Fatalf("expected all jobs to remain, got %d", out.Len())
	}
	for _, s := range steps {
		if s.Dropped != 0 {
			t.Fatalf("step %s dropped %d jobs", s.Name, s.Dropped)
		}
	}
}

func TestDisableByName(t *testing.T) {
	steps := Defaults()
	DisableByName(steps, "exclude_companies", "disabled by flag")

	out, infos, err := Run(context.Background(), &Config{ExcludeCompanies: []string{"Acme"}}, Deps{}, steps, ranked())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 4 {
		t.Fatalf("disabled filter must not drop jobs")
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 executed steps, got %d", len(infos))
	}

	statuses := Describe(steps)
	if statuses[0].Enabled || statuses[0].Reason != "disabled by flag" {
		t.Fatalf("unexpected status: %+v", statuses[0])
	}
}

type failingFilter struct{ toggle }

func (f *failingFilter) Name() string           { return "failing" }
func (f *failingFilter) Validate(*Config) error { return nil }
func (f *failingFilter) Apply(context.Context, Deps, *results.List) (*results.List, Step, error) {
	return nil, Step{}, errors.New("boom")
}

func TestRunWrapsFilterErrors(t *testing.T) {
	_, _, err := Run(context.Background(), nil, Deps{}, []Filter{&failingFilter{}}, ranked())
	if err == nil || err.Error() != "failing: boom" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExcludeFileReadError(t *testing.T) {
	dir := t.TempDir()
	_, _, err := Run(context.Background(), &Config{ExcludeFile: dir}, Deps{}, []Filter{NewExcludeFile()}, ranked())
	if err == nil {
		t.Fatalf("expected error when exclude file is a directory")
	}
}
