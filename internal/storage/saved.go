package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/job-recommender/internal/matching"
)

var (
	// ErrAlreadySaved is returned when the user already saved the job.
	ErrAlreadySaved = errors.New("job already saved")
	// ErrSavedJobNotFound is returned for unknown saved job ids.
	ErrSavedJobNotFound = errors.New("saved job not found")
)

// SavedJob is a bookmarked job result.
type SavedJob struct {
	ID        int64              `json:"id"`
	UserID    string             `json:"user_id,omitempty"`
	SearchID  string             `json:"search_id"`
	Position  int                `json:"position"`
	Notes     string             `json:"notes,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	Job       matching.ScoredJob `json:"job"`
}

// SaveJob bookmarks the result at position of a stored search and returns the
// bookmark id.
func (s *Store) SaveJob(ctx context.Context, userID, searchID string, position int, notes string) (int64, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM job_results WHERE search_id = ? AND position = ?`, searchID, position,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: result %d of %s", ErrNotFound, position, searchID)
	}
	if err != nil {
		return 0, fmt.Errorf("storage: lookup result: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_jobs (user_id, search_id, position, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, search_id, position) DO NOTHING`,
		userID, searchID, position, notes, s.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: insert saved job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: insert saved job: %w", err)
	}
	if affected == 0 {
		return 0, ErrAlreadySaved
	}

	return res.LastInsertId()
}

// SavedJobs returns the user's bookmarks, most recent first.
func (s *Store) SavedJobs(ctx context.Context, userID string) ([]SavedJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sj.id, sj.user_id, sj.search_id, sj.position, sj.notes, sj.created_at, jr.job
		FROM saved_jobs sj
		JOIN job_results jr ON jr.search_id = sj.search_id AND jr.position = sj.position
		WHERE sj.user_id = ?
		ORDER BY sj.created_at DESC, sj.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("storage: list saved jobs: %w", err)
	}
	defer rows.Close()

	saved := make([]SavedJob, 0)
	for rows.Next() {
		var (
			job       SavedJob
			createdAt string
			data      string
		)
		if err := rows.Scan(&job.ID, &job.UserID, &job.SearchID, &job.Position, &job.Notes, &createdAt, &data); err != nil {
			return nil, fmt.Errorf("storage: scan saved job: %w", err)
		}
		if job.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("storage: parse created_at %q: %w", createdAt, err)
		}
		if err := json.Unmarshal([]byte(data), &job.Job); err != nil {
			return nil, fmt.Errorf("storage: decode saved job: %w", err)
		}
		saved = append(saved, job)
	}
	return saved, rows.Err()
}

// UnsaveJob removes one of the user's bookmarks.
func (s *Store) UnsaveJob(ctx context.Context, userID string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_jobs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("storage: delete saved job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: delete saved job: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrSavedJobNotFound, id)
	}
	return nil
}
