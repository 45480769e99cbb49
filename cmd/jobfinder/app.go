package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobfinder/internal/adapter"
	"github.com/amishk599/jobfinder/internal/ai"
	"github.com/amishk599/jobfinder/internal/apify"
	"github.com/amishk599/jobfinder/internal/config"
	"github.com/amishk599/jobfinder/internal/keywords"
	"github.com/amishk599/jobfinder/internal/model"
	"github.com/amishk599/jobfinder/internal/rank"
	"github.com/amishk599/jobfinder/internal/ratelimit"
	"github.com/amishk599/jobfinder/internal/retry"
	"github.com/amishk599/jobfinder/internal/search"
	"github.com/amishk599/jobfinder/internal/store"
)

// app holds the wired search pipeline and everything that must be closed
// when the command exits.
type app struct {
	service *search.Service
	cleaner store.Cache // nil when caching is off
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// buildApp wires sources, models, cache and history from cfg.
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	provider, err := buildProvider(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}

	var normalizer model.Normalizer = keywords.NewPassthroughNormalizer()
	if provider != nil {
		normalizer = keywords.NewLLMNormalizer(provider, ai.KeywordsTemplate, logger)
	}

	ranker, err := buildRanker(cfg.Ranking, provider, logger)
	if err != nil {
		return nil, err
	}

	var sqlStore *store.SQLiteStore
	openSQLite := func(path string) (*store.SQLiteStore, error) {
		if sqlStore != nil {
			return sqlStore, nil
		}
		s, err := store.NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		sqlStore = s
		return s, nil
	}

	var cache store.Cache
	switch cfg.Cache.Backend {
	case config.CacheSQLite:
		s, err := openSQLite(cfg.Cache.SQLitePath)
		if err != nil {
			return nil, err
		}
		cache = s
	case config.CacheRedis:
		rdb, err := store.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		rc := store.NewRedisCache(rdb)
		a.closers = append(a.closers, rc.Close)
		cache = rc
	}
	a.cleaner = cache

	var history store.SearchLog = store.NewNopStore()
	if cfg.History.Enabled {
		if sqlStore != nil && cfg.History.Path != cfg.Cache.SQLitePath {
			s, err := store.NewSQLiteStore(cfg.History.Path)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, s.Close)
			history = s
		} else {
			s, err := openSQLite(cfg.History.Path)
			if err != nil {
				return nil, err
			}
			history = s
		}
	}

	sources := buildSources(cfg, cache, logger)

	a.service = search.NewService(normalizer, sources, ranker, history, search.Options{
		TopN:          cfg.Search.TopN,
		SourceTimeout: cfg.Search.SourceTimeout,
	}, logger)

	logger.Info("search pipeline ready",
		"sources", cfg.Sources.Enabled(),
		"ai", cfg.AI.Enabled,
		"ranking", cfg.Ranking.Strategy,
		"cache", cfg.Cache.Backend,
		"history", cfg.History.Enabled,
	)
	ok = true
	return a, nil
}

// buildProvider returns nil when AI is disabled.
func buildProvider(ctx context.Context, cfg config.AIConfig) (ai.LLMProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case config.ProviderGemini:
		return ai.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel, httpClient)
	default:
		return ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.EmbeddingModel, httpClient), nil
	}
}

func buildRanker(cfg config.RankingConfig, provider ai.LLMProvider, logger *slog.Logger) (model.Ranker, error) {
	switch cfg.Strategy {
	case config.StrategyLLM:
		return rank.NewLLMRanker(provider, ai.RankingTemplate, cfg.DefaultScore, logger), nil
	case config.StrategyEmbedding:
		embedder, ok := provider.(ai.Embedder)
		if !ok {
			return nil, fmt.Errorf("ranking strategy %q: provider does not support embeddings", cfg.Strategy)
		}
		return rank.NewEmbeddingRanker(embedder, cfg.DefaultScore, logger), nil
	default:
		return rank.NewKeywordRanker(), nil
	}
}

// buildSources wraps each enabled board as cache(rate limit(retry(adapter))).
// The cache sits outermost so hits never wait on the limiter; the limiter is
// shared so concurrent searches space their runs per board.
func buildSources(cfg *config.Config, cache store.Cache, logger *slog.Logger) []model.Source {
	// waitForFinish holds each run request open for up to a minute.
	httpClient := &http.Client{Timeout: cfg.Apify.WaitForFinish + 30*time.Second}
	client := apify.NewClient(cfg.Apify.BaseURL, cfg.Apify.Token, httpClient, apify.Options{
		WaitForFinish: cfg.Apify.WaitForFinish,
		PollInterval:  cfg.Apify.PollInterval,
	})
	limiter := ratelimit.NewKeyedLimiter(cfg.RateLimit.MinDelay)

	var adapters []model.Source
	if cfg.Sources.LinkedIn.Enabled {
		adapters = append(adapters, adapter.NewLinkedInAdapter(client, cfg.Sources.LinkedIn.ActorID, cfg.Apify.MaxItems))
	}
	if cfg.Sources.Indeed.Enabled {
		adapters = append(adapters, adapter.NewIndeedAdapter(client, cfg.Sources.Indeed.ActorID, cfg.Apify.MaxItems))
	}
	if cfg.Sources.Glassdoor.Enabled {
		adapters = append(adapters, adapter.NewGlassdoorAdapter(client, cfg.Sources.Glassdoor.ActorID, cfg.Apify.MaxItems))
	}

	sources := make([]model.Source, 0, len(adapters))
	for _, s := range adapters {
		s = retry.NewRetrySource(s, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
		s = ratelimit.NewRateLimitedSource(s, limiter)
		if cache != nil {
			s = store.NewCachedSource(s, cache, cfg.Cache.TTL, logger)
		}
		sources = append(sources, s)
		logger.Debug("registered source", "source", s.Name())
	}
	return sources
}
