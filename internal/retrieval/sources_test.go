package retrieval

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testClient() *Client {
	return NewClient(zap.NewNop(), 5*time.Second, 0)
}

func serveJSON(t *testing.T, payload any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode payload: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func serveHTML(t *testing.T, wantPath, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wantPath {
			t.Errorf("unexpected path %q, want %q", r.URL.Path, wantPath)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{query: "Senior Go developer", want: []string{"Senior", "developer"}},
		{query: "  ", want: []string{"developer"}},
		{query: "a an UI", want: []string{"developer"}},
		{query: "machine learning", want: []string{"machine", "learning"}},
	}

	for _, tt := range tests {
		got := Keywords(tt.query)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Fatalf("Keywords(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestPerSourceLimit(t *testing.T) {
	cases := map[int]int{1: 3, 18: 3, 20: 3, 24: 4, 60: 10}
	for maxJobs, want := range cases {
		if got := PerSourceLimit(maxJobs); got != want {
			t.Fatalf("PerSourceLimit(%d) = %d, want %d", maxJobs, got, want)
		}
	}
}

func TestCacheKeyIsStable(t *testing.T) {
	a := CacheKey([]string{"Python", "Developer"}, " Remote ", 20)
	b := CacheKey([]string{"python", "developer"}, "remote", 20)
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
	if a == CacheKey([]string{"python", "developer"}, "remote", 10) {
		t.Fatalf("max jobs must change the key")
	}
}

func TestRemoteOKSearch(t *testing.T) {
	tags := []string{"go", "docker", "k8s", "aws", "sql", "redis", "grpc", "linux", "git", "ci", "extra1", "extra2"}
	srv := serveJSON(t, []any{
		map[string]any{"legal": "API terms"},
		map[string]any{
			"position":    "Go Developer",
			"company":     "Acme",
			"description": "<p>Build <b>backend</b> services</p>",
			"tags":        tags,
			"url":         "https://remoteok.test/1",
			"date":        "2024-01-01",
			"salary_min":  100000,
			"salary_max":  150000,
		},
		map[string]any{"position": "Designer", "company": "Paint", "description": "Figma mockups"},
	})

	source := NewRemoteOK(testClient())
	source.URL = srv.URL

	postings, err := source.Search(context.Background(), Query{Keywords: []string{"go"}, Limit: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if p.Platform != "RemoteOK" || p.Location != "Remote" || p.JobType != "Remote" {
		t.Fatalf("unexpected posting: %+v", p)
	}
	if len(p.Skills) != maxTags {
		t.Fatalf("expected %d tags, got %d", maxTags, len(p.Skills))
	}
	if strings.Contains(p.Description, "<p>") || !strings.Contains(p.Description, "backend") {
		t.Fatalf("expected plain text description, got %q", p.Description)
	}
	if p.Salary != "$100000-$150000" {
		t.Fatalf("unexpected salary: %q", p.Salary)
	}
}

func TestRemoteOKMetadataOnly(t *testing.T) {
	srv := serveJSON(t, []any{map[string]any{"legal": "API terms"}})

	source := NewRemoteOK(testClient())
	source.URL = srv.URL

	postings, err := source.Search(context.Background(), Query{Keywords: []string{"go"}, Limit: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected no postings, got %d", len(postings))
	}
}

func TestRemotiveSearch(t *testing.T) {
	srv := serveJSON(t, map[string]any{"jobs": []any{
		map[string]any{"title": "Python Engineer", "company_name": "Snake", "category": "Software Development", "job_type": "full_time", "url": "https://remotive.test/1"},
		map[string]any{"title": "Accountant", "company_name": "Ledger", "category": "Finance"},
		map[string]any{"title": "Python Data Analyst", "company_name": "Numbers", "description": strings.Repeat("x", 900)},
	}})

	source := NewRemotive(testClient())
	source.URL = srv.URL

	postings, err := source.Search(context.Background(), Query{Keywords: []string{"python"}, Limit: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	if got := postings[0].Skills; len(got) != 2 || got[0] != "Software Development" || got[1] != "full_time" {
		t.Fatalf("unexpected skills: %v", got)
	}
	if got := postings[1].Skills; got[0] != "General" || got[1] != "Full-time" {
		t.Fatalf("expected default skills, got %v", got)
	}
	if n := len([]rune(postings[1].Description)); n != maxDescription {
		t.Fatalf("expected truncated description, got %d runes", n)
	}
}

func TestArbeitnowSearch(t *testing.T) {
	srv := serveJSON(t, map[string]any{"data": []any{
		map[string]any{
			"title":        "Kotlin Developer",
			"company_name": "Berlin GmbH",
			"location":     "Berlin",
			"tags":         []string{"kotlin", "android"},
			"created_at":   1700000000,
			"job_types":    []string{"Internship"},
		},
	}})

	source := NewArbeitnow(testClient())
	source.URL = srv.URL

	postings, err := source.Search(context.Background(), Query{Keywords: []string{"android"}, Limit: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	p := postings[0]
	if p.PostedDate != "1700000000" || p.JobType != "Internship" || p.Location != "Berlin" {
		t.Fatalf("unexpected posting: %+v", p)
	}
}

func TestAdzunaSkipsWithoutCredentials(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	client := NewClient(zap.New(core), time.Second, 0)

	postings, err := NewAdzuna(client, AdzunaCredentials{}).Search(context.Background(), Query{Keywords: []string{"go"}, Limit: 3})
	if err != nil || postings != nil {
		t.Fatalf("expected silent skip, got %v, %v", postings, err)
	}
	if observed.FilterMessage("skipping source").Len() != 1 {
		t.Fatalf("expected a warning about missing credentials")
	}
}

func TestAdzunaSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/api/jobs/gb/search/1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("app_id") != "id" || q.Get("app_key") != "key" || q.Get("what") != "golang backend" || q.Get("where") != "London" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{
			map[string]any{
				"title":         "Golang Engineer",
				"company":       map[string]any{"display_name": "Tea Ltd"},
				"location":      map[string]any{"display_name": "London"},
				"redirect_url":  "https://adzuna.test/1",
				"salary_min":    50000.0,
				"contract_time": "contract",
			},
		}})
	}))
	t.Cleanup(srv.Close)

	source := NewAdzuna(testClient(), AdzunaCredentials{AppID: "id", AppKey: "key", Country: "gb"})
	source.URL = srv.URL

	postings, err := source.Search(context.Background(), Query{Keywords: []string{"golang", "backend"}, Location: "London", Limit: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	p := postings[0]
	if p.Company != "Tea Ltd" || p.JobType != "contract" || p.Salary != "$50000-$N/A" {
		t.Fatalf("unexpected posting: %+v", p)
	}
	if len(p.Skills) != 2 || p.Skills[0] != "golang" {
		t.Fatalf("expected keywords as skills, got %v", p.Skills)
	}
}

func TestWeWorkRemotelySearch(t *testing.T) {
	srv := serveHTML(t, "/remote-jobs/search", `<html><body><ul>
		<li class="feature"><a href="/remote-jobs/1"><span class="title">Go Engineer</span><span class="company">Gopher Inc</span><span class="region">Europe</span></a></li>
		<li class="feature"><a href="/remote-jobs/2"><span class="title">No Company</span></a></li>
		<li class="feature"><a href="/remote-jobs/3"><span class="title">Rust Engineer</span><span class="company">Crab Co</span></a></li>
		<li class="feature"><a href="/remote-jobs/4"><span class="title">Late</span><span class="company">Too Late</span></a></li>
	</ul></body></html>`)

	source := NewWeWorkRemotely(testClient())
	source.URL = srv.URL

	postings, err := source.Search(context.Background(), Query{Keywords: []string{"engineer"}, Limit: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	if postings[0].Location != "Europe" || postings[1].Location != "Remote" {
		t.Fatalf("unexpected locations: %q, %q", postings[0].Location, postings[1].Location)
	}
	if postings[0].URL != srv.URL+"/remote-jobs/1" {
		t.Fatalf("expected absolute url, got %q", postings[0].URL)
	}
}

func TestFindworkSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "python+django" {
			t.Errorf("unexpected search param %q", got)
		}
		_, _ = w.Write([]byte(`<ul>
			<li class="job"><h2>Django Dev</h2><a class="company" href="/jobs/7">Web Co</a><span class="location">Paris</span></li>
			<li class="job"><span>broken card</span></li>
		</ul>`))
	}))
	t.Cleanup(srv.Close)

	source := NewFindwork(testClient())
	source.URL = srv.URL

	postings, err := source.Search(context.Background(), Query{Keywords: []string{"python", "django"}, Limit: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	if postings[0].Title != "Django Dev" || postings[0].Location != "Paris" || postings[0].URL != srv.URL+"/jobs/7" {
		t.Fatalf("unexpected first posting: %+v", postings[0])
	}
	if postings[1].Title != "N/A" || postings[1].URL != "#" {
		t.Fatalf("unexpected defaults: %+v", postings[1])
	}
}

func TestHimalayasSearch(t *testing.T) {
	srv := serveHTML(t, "/jobs/data-engineer", `<div>
		<div class="job-card"><h3>Data Engineer</h3><span class="company-name">Lake</span><a href="https://himalayas.test/j/1">open</a></div>
		<div class="job-card"><p>no title</p></div>
	</div>`)

	source := NewHimalayas(testClient())
	source.URL = srv.URL

	postings, err := source.Search(context.Background(), Query{Keywords: []string{"data", "engineer"}, Limit: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].URL != "https://himalayas.test/j/1" || postings[0].Company != "Lake" {
		t.Fatalf("unexpected posting: %+v", postings[0])
	}
}

func TestClientDecompressesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "gzip" {
			t.Errorf("expected gzip to be accepted")
		}
		if r.Header.Get("User-Agent") != "tester" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`{"jobs": [{"title": "Go Engineer"}]}`))
		_ = gz.Close()
	}))
	t.Cleanup(srv.Close)

	client := testClient()
	client.UserAgent = "tester"

	var response remotiveResponse
	if err := client.getJSON(context.Background(), srv.URL, nil, &response); err != nil {
		t.Fatalf("getJSON: %v", err)
	}
	if len(response.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(response.Jobs))
	}
}

func TestClientBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	err := testClient().getJSON(context.Background(), srv.URL, nil, &remotiveResponse{})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected bad status error, got %v", err)
	}
}

func TestNewSources(t *testing.T) {
	sources, err := NewSources(testClient(), SourcesConfig{Enabled: []string{SourceAdzuna, SourceRemoteOK}})
	if err != nil {
		t.Fatalf("new sources: %v", err)
	}
	if len(sources) != 2 || sources[0].Name() != "RemoteOK" || sources[1].Name() != "Adzuna" {
		t.Fatalf("expected fixed source order, got %v", sources)
	}

	all, err := NewSources(testClient(), SourcesConfig{})
	if err != nil || len(all) != len(SourceOrder) {
		t.Fatalf("expected all sources, got %d (%v)", len(all), err)
	}

	if _, err := NewSources(testClient(), SourcesConfig{Enabled: []string{"monster"}}); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
