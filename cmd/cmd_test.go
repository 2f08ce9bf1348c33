package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/matching"
	"github.com/spigell/job-recommender/internal/recommend"
	"github.com/spigell/job-recommender/internal/results"
	"github.com/spigell/job-recommender/internal/storage"
)

func TestParseExperience(t *testing.T) {
	if got := parseExperience("4.5"); got.Years() != 4.5 {
		t.Fatalf("unexpected years %v", got.Years())
	}
	if got := parseExperience("about 7 years"); got.Years() != 7 || got.String() != "about 7 years" {
		t.Fatalf("unexpected text experience %v", got)
	}
	if got := parseExperience("  "); got != (matching.Experience{}) {
		t.Fatalf("expected zero experience, got %v", got)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	config, err := getConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	if config.Search.MaxJobs != 20 || config.Search.MinResults != 5 {
		t.Fatalf("unexpected search defaults %+v", config.Search)
	}
	if len(config.Sources.Enabled) != 7 {
		t.Fatalf("expected all sources enabled, got %v", config.Sources.Enabled)
	}
	if config.Cache.Enabled || !config.Storage.Enabled {
		t.Fatalf("unexpected cache/storage defaults")
	}
}

func TestConfigValidation(t *testing.T) {
	viper.Set("filters.minimum-score", 150)
	defer viper.Set("filters.minimum-score", 0)

	if _, err := getConfig(); err == nil {
		t.Fatalf("expected validation error for minimum score")
	}
}

func TestWriteOutcome(t *testing.T) {
	outcome := &recommend.Outcome{
		SearchID: "abc",
		Kind:     "chat",
		Query:    "go",
		Jobs: results.New([]matching.ScoredJob{
			{Posting: jobs.Posting{ID: 1, Title: "Go Developer", Company: "Acme"}, MatchScore: 77.7},
		}),
	}

	var table bytes.Buffer
	if err := writeOutcome(&table, outcome, outputTable); err != nil {
		t.Fatalf("write table: %v", err)
	}
	if !strings.Contains(table.String(), "Search: abc") || !strings.Contains(table.String(), "Go Developer") {
		t.Fatalf("unexpected table output:\n%s", table.String())
	}

	var out bytes.Buffer
	if err := writeOutcome(&out, outcome, outputJSON); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var decoded struct {
		SearchID string               `json:"search_id"`
		Jobs     []matching.ScoredJob `json:"jobs"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded.SearchID != "abc" || len(decoded.Jobs) != 1 || decoded.Jobs[0].MatchScore != 77.7 {
		t.Fatalf("unexpected json output %s", out.String())
	}
}

func TestAppendToExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	list := results.New([]matching.ScoredJob{
		{Posting: jobs.Posting{Title: "A", Company: "X", URL: "https://a"}},
		{Posting: jobs.Posting{Title: "B", Company: "Y", URL: "https://b"}},
	})

	if err := appendToExcludeFile(zap.NewNop(), path, list); err != nil {
		t.Fatalf("append: %v", err)
	}
	if list.Len() != 0 {
		t.Fatalf("expected excluded jobs to leave the list, got %d", list.Len())
	}

	excluded, err := results.ReadExcludeFile(path)
	if err != nil {
		t.Fatalf("read exclude file: %v", err)
	}
	if len(excluded.URLs()) != 2 {
		t.Fatalf("unexpected excluded urls %v", excluded.URLs())
	}

	if err := appendToExcludeFile(zap.NewNop(), "", results.New(nil)); err != nil {
		t.Fatalf("unset exclude file must be a no-op: %v", err)
	}
}

func TestHandleActionExit(t *testing.T) {
	outcome := &recommend.Outcome{Jobs: results.New(nil)}
	if err := handleAction(context.Background(), PromptExit, zap.NewNop(), &Config{Filters: &FiltersConfig{}}, &stubSaver{}, outcome); err != errExit {
		t.Fatalf("expected errExit, got %v", err)
	}
	if err := handleAction(context.Background(), "bogus", zap.NewNop(), &Config{Filters: &FiltersConfig{}}, &stubSaver{}, outcome); err == nil {
		t.Fatalf("expected error for an unknown action")
	}
}

type stubSaver struct {
	err   error
	jobID int
	notes string
}

func (s *stubSaver) SaveJob(_ context.Context, _ *recommend.Outcome, jobID int, notes string) (int64, error) {
	s.jobID, s.notes = jobID, notes
	if s.err != nil {
		return 0, s.err
	}
	return 7, nil
}

func TestSaveJob(t *testing.T) {
	outcome := &recommend.Outcome{Jobs: results.New(nil)}
	cases := []struct {
		name    string
		err     error
		message string
		wantErr bool
	}{
		{name: "saved", message: "job saved"},
		{name: "duplicate", err: storage.ErrAlreadySaved, message: "job already saved"},
		{name: "history disabled", err: recommend.ErrHistoryDisabled, message: "cannot save job"},
		{name: "not recorded", err: recommend.ErrNotRecorded, message: "cannot save job"},
		{name: "storage failure", err: errors.New("disk full"), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			saver := &stubSaver{err: tc.err}

			err := saveJob(context.Background(), zap.New(core), saver, outcome, 3, "apply monday")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if saver.jobID != 3 || saver.notes != "apply monday" {
				t.Fatalf("unexpected save call %+v", saver)
			}
			if logs.FilterMessage(tc.message).Len() != 1 {
				t.Fatalf("expected %q to be logged, got %v", tc.message, logs.All())
			}
		})
	}
}

func TestWriteSavedJobs(t *testing.T) {
	saved := []storage.SavedJob{{
		ID:        4,
		SearchID:  "abc",
		Notes:     "ping recruiter",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Job: matching.ScoredJob{
			Posting:    jobs.Posting{Title: "Go Developer", Company: "Acme"},
			MatchScore: 81.5,
		},
	}}

	var buf bytes.Buffer
	if err := writeSavedJobs(&buf, saved); err != nil {
		t.Fatalf("write saved jobs: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("unexpected table %q", buf.String())
	}
	for _, want := range []string{"4", "81.5", "Go Developer", "Acme", "ping recruiter"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("row %q lacks %q", lines[1], want)
		}
	}
}
