package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/ai"
	"github.com/spigell/job-recommender/internal/ai/gemini"
	"github.com/spigell/job-recommender/internal/cache"
	"github.com/spigell/job-recommender/internal/filtering"
	"github.com/spigell/job-recommender/internal/recommend"
	"github.com/spigell/job-recommender/internal/retrieval"
	"github.com/spigell/job-recommender/internal/secrets"
	"github.com/spigell/job-recommender/internal/storage"
)

const cachePingTimeout = 2 * time.Second

// session holds the collaborators built from the config and closes them.
type session struct {
	service *recommend.Service
	closers []func() error
}

func (s *session) Close() {
	for _, c := range s.closers {
		c()
	}
}

func newSession(ctx context.Context, config *Config, maxJobs int, logger *zap.Logger) (*session, error) {
	sess := &session{}

	sources, err := newSources(config, logger)
	if err != nil {
		return nil, err
	}

	deps := &retrieval.Deps{Sources: sources, Logger: logger}
	if redis := newCache(ctx, config.Cache, logger); redis != nil {
		deps.Cache = redis
		sess.closers = append(sess.closers, redis.Close)
	}

	retriever := retrieval.New(&retrieval.Config{
		MinResults: config.Search.MinResults,
		Fallback:   config.Search.Fallback,
	}, deps)

	serviceDeps := &recommend.Deps{
		Retriever: retriever,
		Filters:   prepareFilters(config.Filters, logger),
		Logger:    logger,
	}

	if store := openHistory(config.Storage, logger); store != nil {
		serviceDeps.History = store
		sess.closers = append(sess.closers, store.Close)
	}

	if config.AI != nil && config.AI.Enabled {
		extractor, err := newAIExtractor(ctx, config.AI, logger)
		if err != nil {
			logger.Warn("skipping ai extraction", zap.Error(err))
		} else {
			serviceDeps.Extractor = extractor
		}
	}

	if maxJobs <= 0 {
		maxJobs = config.Search.MaxJobs
	}

	sess.service, err = recommend.New(&recommend.Config{
		MaxJobs: maxJobs,
		UserID:  config.UserID,
		Filters: &filtering.Config{
			ExcludeCompanies: config.Filters.ExcludeCompanies,
			ExcludeFile:      config.Filters.ExcludeFile,
			MinimumScore:     config.Filters.MinimumScore,
		},
	}, serviceDeps)
	if err != nil {
		sess.Close()
		return nil, err
	}

	return sess, nil
}

func newSources(config *Config, logger *zap.Logger) ([]retrieval.Source, error) {
	client := retrieval.NewClient(logger, config.Search.Timeout, config.Search.RateInterval)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	cfg := retrieval.SourcesConfig{}
	if config.Sources != nil {
		cfg.Enabled = config.Sources.Enabled
	}
	if config.Adzuna != nil {
		cfg.Adzuna = adzunaCredentials(config.Adzuna, logger)
	}

	sources, err := retrieval.NewSources(client, cfg)
	if err != nil {
		return nil, fmt.Errorf("building sources: %w", err)
	}
	return sources, nil
}

// adzunaCredentials resolves the Adzuna keys. Missing keys leave the source
// configured but skipped at search time.
func adzunaCredentials(cfg *AdzunaConfig, logger *zap.Logger) retrieval.AdzunaCredentials {
	creds := retrieval.AdzunaCredentials{Country: cfg.Country}

	id, err := secrets.Load(secrets.Source{Name: "adzuna app id", Value: cfg.AppID, Env: "ADZUNA_APP_ID"})
	if err == nil {
		creds.AppID = id
	}

	key, err := secrets.Load(secrets.Source{
		Name:  "adzuna app key",
		Value: cfg.AppKey,
		Env:   "ADZUNA_APP_KEY",
		File:  cfg.AppKeyFile,
	})
	if err != nil {
		logger.Debug("adzuna credentials", zap.Error(err))
	} else {
		creds.AppKey = key
	}

	return creds
}

func newCache(ctx context.Context, cfg *CacheConfig, logger *zap.Logger) *cache.Redis {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	redis := cache.NewRedis(cache.Config{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.TTL,
	}, logger.With(zap.String("component", "cache")))

	pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()

	if err := redis.Ping(pingCtx); err != nil {
		logger.Warn("skipping cache", zap.String("addr", cfg.Addr), zap.Error(err))
		redis.Close()
		return nil
	}
	return redis
}

func openHistory(cfg *StorageConfig, logger *zap.Logger) *storage.Store {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	store, err := storage.Open(cfg.Path)
	if err != nil {
		logger.Warn("skipping search history", zap.String("path", cfg.Path), zap.Error(err))
		return nil
	}
	return store
}

func newAIExtractor(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Extractor, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	extractorLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewExtractor(generator, extractorLogger, cfg.Gemini.MaxLogLength), nil
}

// prepareFilters disables the steps that have nothing to do with the config.
func prepareFilters(cfg *FiltersConfig, logger *zap.Logger) []filtering.Filter {
	steps := filtering.Defaults()

	if len(cfg.ExcludeCompanies) == 0 {
		filtering.DisableByName(steps, "exclude_companies", "no companies configured")
	}
	if strings.TrimSpace(cfg.ExcludeFile) == "" {
		filtering.DisableByName(steps, "exclude_file", "exclude file is not set")
	}
	if cfg.MinimumScore == 0 {
		filtering.DisableByName(steps, "minimum_score", "minimum score is 0")
	}

	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
		)
	}

	return steps
}
