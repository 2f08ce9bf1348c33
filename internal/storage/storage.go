// Package storage keeps the search history in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/spigell/job-recommender/internal/matching"
)

// ErrNotFound is returned for unknown search ids.
var ErrNotFound = errors.New("search not found")

// Kind is the flow a search came from.
type Kind string

const (
	KindForm Kind = "form"
	KindChat Kind = "chat"
	KindCV   Kind = "cv"
)

const (
	defaultListLimit = 20
	timeLayout       = "2006-01-02T15:04:05.000000000Z07:00"
)

// Search is one recorded recommendation request.
type Search struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Keywords  string          `json:"keywords"`
	CreatedAt time.Time       `json:"created_at"`
	Results   int             `json:"results"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	path = expandHome(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("storage: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: init schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS searches (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL DEFAULT '',
		kind       TEXT NOT NULL,
		payload    TEXT,
		keywords   TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS job_results (
		search_id   TEXT NOT NULL REFERENCES searches(id),
		position    INTEGER NOT NULL,
		job         TEXT NOT NULL,
		match_score REAL NOT NULL,
		PRIMARY KEY (search_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS saved_jobs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL DEFAULT '',
		search_id  TEXT NOT NULL,
		position   INTEGER NOT NULL,
		notes      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		UNIQUE (user_id, search_id, position),
		FOREIGN KEY (search_id, position) REFERENCES job_results(search_id, position)
	)`,
}

func initSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSearch records a search and returns its id. A new uuid is assigned
// when the search has none.
func (s *Store) SaveSearch(ctx context.Context, search *Search) (string, error) {
	if search == nil {
		return "", errors.New("search is required")
	}

	if search.ID == "" {
		search.ID = uuid.NewString()
	}
	if search.CreatedAt.IsZero() {
		search.CreatedAt = s.now().UTC()
	}

	var payload any
	if len(search.Payload) > 0 {
		payload = string(search.Payload)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (id, user_id, kind, payload, keywords, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		search.ID, search.UserID, string(search.Kind), payload, search.Keywords,
		search.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("storage: insert search: %w", err)
	}

	return search.ID, nil
}

// SaveResults stores the ranked jobs of a search in their order.
func (s *Store) SaveResults(ctx context.Context, searchID string, jobs []matching.ScoredJob) error {
	if _, err := s.Search(ctx, searchID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer tx.Rollback()

	// Positions are rewritten, bookmarks on the old ones are stale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_jobs WHERE search_id = ?`, searchID); err != nil {
		return fmt.Errorf("storage: clear saved jobs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM job_results WHERE search_id = ?`, searchID); err != nil {
		return fmt.Errorf("storage: clear results: %w", err)
	}

	for i, job := range jobs {
		data, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("storage: marshal job %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO job_results (search_id, position, job, match_score) VALUES (?, ?, ?, ?)`,
			searchID, i, string(data), job.MatchScore,
		); err != nil {
			return fmt.Errorf("storage: insert result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// ListSearches returns the most recent searches first. A non-empty userID
// restricts the list to that user.
func (s *Store) ListSearches(ctx context.Context, userID string, limit int) ([]Search, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.kind, COALESCE(s.payload, ''), s.keywords, s.created_at,
		       (SELECT COUNT(*) FROM job_results r WHERE r.search_id = s.id)
		FROM searches s
		WHERE ? = '' OR s.user_id = ?
		ORDER BY s.created_at DESC, s.rowid DESC
		LIMIT ?`, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: list searches: %w", err)
	}
	defer rows.Close()

	searches := make([]Search, 0)
	for rows.Next() {
		search, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, *search)
	}
	return searches, rows.Err()
}

// Search returns one search by id.
func (s *Store) Search(ctx context.Context, id string) (*Search, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.kind, COALESCE(s.payload, ''), s.keywords, s.created_at,
		       (SELECT COUNT(*) FROM job_results r WHERE r.search_id = s.id)
		FROM searches s WHERE s.id = ?`, id)

	search, err := scanSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return search, err
}

// Results returns the stored jobs of a search in ranking order.
func (s *Store) Results(ctx context.Context, searchID string) ([]matching.ScoredJob, error) {
	if _, err := s.Search(ctx, searchID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT job FROM job_results WHERE search_id = ? ORDER BY position`, searchID)
	if err != nil {
		return nil, fmt.Errorf("storage: query results: %w", err)
	}
	defer rows.Close()

	jobs := make([]matching.ScoredJob, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("storage: scan result: %w", err)
		}
		var job matching.ScoredJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			return nil, fmt.Errorf("storage: decode result: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSearch(row scanner) (*Search, error) {
	var (
		search    Search
		kind      string
		payload   string
		createdAt string
	)
	if err := row.Scan(&search.ID, &search.UserID, &kind, &payload, &search.Keywords, &createdAt, &search.Results); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("storage: scan search: %w", err)
	}

	search.Kind = Kind(kind)
	if payload != "" {
		search.Payload = json.RawMessage(payload)
	}

	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("storage: parse created_at %q: %w", createdAt, err)
	}
	search.CreatedAt = created

	return &search, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
