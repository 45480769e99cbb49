package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/jobfinder/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memCache struct {
	entries map[string][]model.JobRecord
	getErr  error
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]model.JobRecord)}
}

func (c *memCache) Get(_ context.Context, key string) ([]model.JobRecord, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	jobs, ok := c.entries[key]
	return jobs, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, jobs []model.JobRecord, _ time.Duration) error {
	c.sets++
	c.entries[key] = jobs
	return nil
}

func (c *memCache) Cleanup(context.Context) (int64, error) { return 0, nil }

type countingSource struct {
	name  string
	calls int
	err   error
}

func (s *countingSource) Name() string { return s.name }

func (s *countingSource) Search(_ context.Context, q model.Query) ([]model.JobRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []model.JobRecord{{Title: q.Keywords.Position, Source: s.name}}, nil
}

func query(position string) model.Query {
	return model.Query{Keywords: model.NormalizedKeywords{Position: position}}
}

func TestCachedSource_SecondSearchHitsCache(t *testing.T) {
	inner := &countingSource{name: "linkedin"}
	cs := NewCachedSource(inner, newMemCache(), time.Hour, discardLogger())
	ctx := context.Background()

	_, hit, err := cs.SearchCached(ctx, query("go"))
	if err != nil || hit {
		t.Fatalf("first search: hit=%v err=%v", hit, err)
	}
	jobs, hit, err := cs.SearchCached(ctx, query("go"))
	if err != nil || !hit {
		t.Fatalf("second search: hit=%v err=%v", hit, err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if len(jobs) != 1 || jobs[0].Title != "go" {
		t.Errorf("unexpected jobs: %+v", jobs)
	}
}

func TestCachedSource_DifferentQueriesMiss(t *testing.T) {
	inner := &countingSource{name: "indeed"}
	cs := NewCachedSource(inner, newMemCache(), time.Hour, discardLogger())
	ctx := context.Background()

	cs.Search(ctx, query("go"))
	cs.Search(ctx, query("rust"))
	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", inner.calls)
	}
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	inner := &countingSource{name: "glassdoor", err: errors.New("actor failed")}
	cache := newMemCache()
	cs := NewCachedSource(inner, cache, time.Hour, discardLogger())

	if _, err := cs.Search(context.Background(), query("go")); err == nil {
		t.Fatal("expected error")
	}
	if cache.sets != 0 {
		t.Errorf("expected nothing cached, got %d sets", cache.sets)
	}
}

func TestCachedSource_CacheReadFailureFallsThrough(t *testing.T) {
	inner := &countingSource{name: "linkedin"}
	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	cs := NewCachedSource(inner, cache, time.Hour, discardLogger())

	jobs, hit, err := cs.SearchCached(context.Background(), query("go"))
	if err != nil || hit || len(jobs) != 1 {
		t.Fatalf("expected live result, got jobs=%d hit=%v err=%v", len(jobs), hit, err)
	}
}

func TestCacheKey_SeparatesSources(t *testing.T) {
	q := query("go")
	if CacheKey("linkedin", q) == CacheKey("indeed", q) {
		t.Error("expected different keys per source")
	}
	if CacheKey("linkedin", q) != CacheKey("linkedin", query("go")) {
		t.Error("expected stable key for equal queries")
	}
}

func TestNopStore(t *testing.T) {
	var _ Cache = NopStore{}
	var _ SearchLog = NopStore{}
	var _ Cache = (*SQLiteStore)(nil)
	var _ SearchLog = (*SQLiteStore)(nil)
	var _ Cache = (*RedisCache)(nil)

	s := NewNopStore()
	if _, ok, _ := s.Get(context.Background(), "k"); ok {
		t.Error("expected NopStore to always miss")
	}
}
