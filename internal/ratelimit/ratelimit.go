// Package ratelimit spaces out actor runs against the same job board.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobfinder/internal/model"
)

// KeyedLimiter enforces a minimum delay between calls sharing a key.
type KeyedLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time
	minDelay time.Duration
}

// NewKeyedLimiter creates a limiter that enforces minDelay between
// consecutive calls with the same key.
func NewKeyedLimiter(minDelay time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last call for key.
// Returns an error if the context is cancelled while waiting.
func (r *KeyedLimiter) Wait(ctx context.Context, key string) error {
	r.mu.Lock()
	last, ok := r.lastCall[key]
	now := time.Now()

	if !ok || now.Sub(last) >= r.minDelay {
		r.lastCall[key] = now
		r.mu.Unlock()
		return nil
	}

	// Reserve the next slot before releasing the lock so concurrent callers queue up.
	next := last.Add(r.minDelay)
	r.lastCall[key] = next
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-time.After(time.Until(next)):
	}
	return nil
}

// RateLimitedSource waits on a shared limiter before delegating to the
// wrapped Source. The key is the source name.
type RateLimitedSource struct {
	inner   model.Source
	limiter *KeyedLimiter
}

// NewRateLimitedSource wraps a Source with board-level rate limiting.
// All sources should share the same limiter instance.
func NewRateLimitedSource(inner model.Source, limiter *KeyedLimiter) *RateLimitedSource {
	return &RateLimitedSource{inner: inner, limiter: limiter}
}

func (s *RateLimitedSource) Name() string { return s.inner.Name() }

// Search waits for the limiter, then delegates.
func (s *RateLimitedSource) Search(ctx context.Context, q model.Query) ([]model.JobRecord, error) {
	if err := s.limiter.Wait(ctx, s.inner.Name()); err != nil {
		return nil, err
	}
	return s.inner.Search(ctx, q)
}
