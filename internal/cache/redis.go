// Package cache keeps retrieval results in Redis between runs.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
)

const DefaultTTL = 10 * time.Minute

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis stores postings as JSON under the retrieval cache key. All failures
// are logged and reported as cache misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedis(cfg Config, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
		MaxRetries:  1,
	})

	return &Redis{client: client, ttl: ttl, logger: logger}
}

// Ping checks that the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]jobs.Posting, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var postings []jobs.Posting
	if err := json.Unmarshal(data, &postings); err != nil {
		r.logger.Warn("cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	r.logger.Debug("cache hit", zap.String("key", key), zap.Int("count", len(postings)))
	return postings, true
}

func (r *Redis) Set(ctx context.Context, key string, postings []jobs.Posting) {
	data, err := json.Marshal(postings)
	if err != nil {
		r.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
