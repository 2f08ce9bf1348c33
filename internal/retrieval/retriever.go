// Package retrieval collects job postings from public job boards.
package retrieval

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/logger"
)

// Cache stores retrieval results. Implementations swallow their own errors.
type Cache interface {
	Get(ctx context.Context, key string) ([]jobs.Posting, bool)
	Set(ctx context.Context, key string, postings []jobs.Posting)
}

// Config tunes a Retriever.
type Config struct {
	// MinResults is the count below which catalogue postings are appended.
	MinResults int
	// Fallback enables the catalogue.
	Fallback bool
}

// Deps aggregates the collaborators of a Retriever.
type Deps struct {
	Sources []Source
	Cache   Cache
	Logger  *zap.Logger
}

// Retriever fans a query out to all sources and merges their answers.
type Retriever struct {
	sources    []Source
	cache      Cache
	logger     *zap.Logger
	minResults int
	fallback   bool
}

func New(cfg *Config, deps *Deps) *Retriever {
	r := &Retriever{
		logger:     zap.NewNop(),
		minResults: DefaultMinResults,
		fallback:   true,
	}
	if cfg != nil {
		r.minResults = cfg.MinResults
		r.fallback = cfg.Fallback
	}
	if deps != nil {
		r.sources = deps.Sources
		r.cache = deps.Cache
		if deps.Logger != nil {
			r.logger = deps.Logger
		}
	}
	return r
}

// Retrieve returns at most maxJobs deduplicated postings with ids 1..n.
// Source failures are logged and never fail the request; only a cancelled
// context does.
func (r *Retriever) Retrieve(ctx context.Context, query, location string, maxJobs int) ([]jobs.Posting, error) {
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}

	q := Query{
		Keywords: Keywords(query),
		Location: strings.TrimSpace(location),
		Limit:    PerSourceLimit(maxJobs),
	}
	log := logger.WithCommonFields(r.logger, "", strings.Join(q.Keywords, " "))

	key := CacheKey(q.Keywords, q.Location, maxJobs)
	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, key); ok {
			log.Info("using cached jobs", zap.Int("count", len(cached)))
			return cached, nil
		}
	}

	found := r.searchAll(ctx, q, log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.fallback && len(found) < r.minResults {
		extra := Fallback(q.Keywords, maxJobs-len(found))
		log.Info("adding catalogue jobs",
			zap.Int("found", len(found)),
			zap.Int("added", len(extra)),
		)
		found = append(found, extra...)
	}

	unique := jobs.Dedup(found)
	if len(unique) > maxJobs {
		unique = unique[:maxJobs]
	}
	jobs.AssignIDs(unique)

	log.Info("search complete", zap.Int("count", len(unique)), zap.Int("sources", len(r.sources)))

	if r.cache != nil && len(unique) > 0 {
		r.cache.Set(ctx, key, unique)
	}

	return unique, nil
}

// searchAll queries every source concurrently and concatenates the results in
// source order.
func (r *Retriever) searchAll(ctx context.Context, q Query, log *zap.Logger) []jobs.Posting {
	perSource := make([][]jobs.Posting, len(r.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range r.sources {
		g.Go(func() error {
			started := time.Now()
			srcLog := log.With(zap.String(logger.FieldSource, source.Name()))

			postings, err := source.Search(gctx, q)
			if err != nil {
				srcLog.Warn("source failed", zap.Error(err), zap.Duration("took", time.Since(started)))
				return nil
			}

			srcLog.Info("source searched", zap.Int("count", len(postings)), zap.Duration("took", time.Since(started)))
			perSource[i] = postings
			return nil
		})
	}
	_ = g.Wait()

	var all []jobs.Posting
	for _, postings := range perSource {
		all = append(all, postings...)
	}
	return all
}
