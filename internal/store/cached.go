package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/jobfinder/internal/model"
)

// CachedSource serves repeated queries from a Cache and stores fresh
// results. Cache failures are logged and treated as misses.
type CachedSource struct {
	inner  model.Source
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedSource(inner model.Source, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

func (s *CachedSource) Search(ctx context.Context, q model.Query) ([]model.JobRecord, error) {
	jobs, _, err := s.SearchCached(ctx, q)
	return jobs, err
}

// SearchCached is Search that also reports a cache hit. Errors from the
// wrapped source are never cached.
func (s *CachedSource) SearchCached(ctx context.Context, q model.Query) ([]model.JobRecord, bool, error) {
	key := CacheKey(s.inner.Name(), q)

	jobs, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "source", s.inner.Name(), "error", err)
	} else if ok {
		s.logger.Debug("cache hit", "source", s.inner.Name(), "jobs", len(jobs))
		return jobs, true, nil
	}

	jobs, err = s.inner.Search(ctx, q)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, key, jobs, s.ttl); err != nil {
		s.logger.Warn("cache write failed", "source", s.inner.Name(), "error", err)
	}
	return jobs, false, nil
}
