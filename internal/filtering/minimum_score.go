package filtering

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/matching"
	"github.com/spigell/job-recommender/internal/results"
)

type minimumScoreFilter struct {
	toggle
	minimum float64
}

// NewMinimumScore creates a filter that removes jobs scoring below the
// configured threshold. A zero threshold keeps everything.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumScore < 0 || cfg.MinimumScore > 100 {
		return errors.New("minimum score must be within [0,100]")
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, l *results.List) (*results.List, Step, error) {
	initial := l.Len()
	if f.minimum == 0 {
		return l, Step{Initial: initial, Left: initial}, nil
	}

	dropped := l.Keep(func(job *matching.ScoredJob) bool {
		return job.MatchScore >= f.minimum
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding jobs below minimum score",
			zap.Float64("minimum_score", f.minimum),
			zap.Ints("excluded_jobs", dropped),
			zap.Int("jobs_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(dropped), Left: l.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.FormatFloat(f.minimum, 'f', -1, 64)},
	}
}
