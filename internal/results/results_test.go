package results

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/matching"
)

func sampleList() *List {
	return New([]matching.ScoredJob{
		{Posting: jobs.Posting{ID: 1, Title: "Go Developer", Company: "Acme", Platform: "RemoteOK", URL: "https://a.test/1"}, MatchScore: 90, MatchedSkills: []string{"docker", "go"}},
		{Posting: jobs.Posting{ID: 2, Title: "Python Engineer", Company: "Globex", Platform: "Remotive", URL: "https://g.test/2"}, MatchScore: 70},
		{Posting: jobs.Posting{ID: 3, Title: "Data Scientist", Company: "acme", Platform: "RemoteOK", URL: "#"}, MatchScore: 50},
	})
}

func ids(l *List) []int {
	out := make([]int, 0, l.Len())
	for _, job := range l.Items {
		out = append(out, job.ID)
	}
	return out
}

func TestExcludePreservesOrder(t *testing.T) {
	list := sampleList()

	dropped := list.Exclude(jobs.PostingCompanyField, []string{"ACME "})
	if len(dropped) != 2 || dropped[0] != 1 || dropped[1] != 3 {
		t.Fatalf("unexpected dropped ids: %v", dropped)
	}
	if got := ids(list); len(got) != 1 || got[0] != 2 {
		t.Fatalf("unexpected remaining ids: %v", got)
	}

	if dropped := list.Exclude(jobs.PostingCompanyField, []string{"", " "}); dropped != nil {
		t.Fatalf("blank targets must not drop anything, got %v", dropped)
	}
}

func TestKeep(t *testing.T) {
	list := sampleList()
	original := list.Items

	dropped := list.Keep(func(job *matching.ScoredJob) bool { return job.MatchScore >= 60 })
	if len(dropped) != 1 || dropped[0] != 3 {
		t.Fatalf("unexpected dropped ids: %v", dropped)
	}
	if got := ids(list); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected remaining ids: %v", got)
	}
	if original[2].ID != 3 {
		t.Fatalf("Keep must not overwrite the original backing array")
	}
}

func TestFindByID(t *testing.T) {
	list := sampleList()
	if job := list.FindByID(2); job == nil || job.Company != "Globex" {
		t.Fatalf("expected to find job 2, got %+v", job)
	}
	if list.FindByID(42) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestReportByPlatform(t *testing.T) {
	report := sampleList().ReportByPlatform()

	entries, ok := report["RemoteOK"]
	if !ok {
		t.Fatalf("expected RemoteOK key in report")
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	entry := entries[0]
	if entry["match_score"] != "90.0" {
		t.Fatalf("unexpected match_score: %q", entry["match_score"])
	}
	if entry["matched_skills"] != "docker, go" {
		t.Fatalf("unexpected matched_skills: %q", entry["matched_skills"])
	}
}

func TestDumpToTmpFile(t *testing.T) {
	name, err := sampleList().DumpToTmpFile()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}

	var decoded List
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if decoded.Len() != 3 || decoded.Items[0].Title != "Go Developer" {
		t.Fatalf("unexpected dump content: %+v", decoded)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleList().WriteTable(&buf); err != nil {
		t.Fatalf("write table: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "Go Developer") || !strings.Contains(lines[1], "90.0") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
}

func TestExcludeFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	excluded, err := ReadExcludeFile(path)
	if err != nil {
		t.Fatalf("missing file should read as empty: %v", err)
	}
	if len(excluded.Items) != 0 {
		t.Fatalf("expected empty set, got %d", len(excluded.Items))
	}

	excluded.Append(sampleList().ToExcluded())
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	// A shorter rewrite must not leave trailing bytes behind.
	short := &ExcludedJobs{Items: excluded.Items[:1]}
	if err := short.ToFile(path); err != nil {
		t.Fatalf("rewrite exclude file: %v", err)
	}

	loaded, err := ReadExcludeFile(path)
	if err != nil {
		t.Fatalf("read exclude file: %v", err)
	}
	if len(loaded.Items) != 1 {
		t.Fatalf("expected 1 excluded job, got %d", len(loaded.Items))
	}
	if loaded.Items[0].Key != "go developer\x00acme" {
		t.Fatalf("unexpected key: %q", loaded.Items[0].Key)
	}
}

func TestExcludedURLsSkipPlaceholders(t *testing.T) {
	urls := sampleList().ToExcluded().URLs()
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %v", urls)
	}
	for _, u := range urls {
		if u == "#" {
			t.Fatalf("placeholder url must be skipped")
		}
	}
}

func TestReadEmptyExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	excluded, err := ReadExcludeFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(excluded.Items) != 0 {
		t.Fatalf("expected empty set")
	}
}
