package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/results"
)

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes jobs listed in the exclude file.
// A job is listed when either its URL or its title and company key is present.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, l *results.List) (*results.List, Step, error) {
	initial := l.Len()
	if f.path == "" {
		return l, Step{Initial: initial, Left: initial}, nil
	}

	excluded, err := results.ReadExcludeFile(f.path)
	if err != nil {
		return l, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	removed := l.Exclude(jobs.PostingURLField, excluded.URLs())
	removed = append(removed, l.Exclude(jobs.PostingKeyField, excluded.Keys())...)
	if len(removed) > 0 {
		deps.Logger.Info("excluding jobs based on exclude file",
			zap.String("path", f.path),
			zap.Ints("excluded_jobs", removed),
			zap.Int("jobs_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(removed), Left: l.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
