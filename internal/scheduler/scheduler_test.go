package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) Cleanup(_ context.Context) (int64, error) {
	c.calls.Add(1)
	return 3, c.err
}

func TestRun_CleansImmediatelyAndStopsOnCancel(t *testing.T) {
	cleaner := &countingCleaner{}
	s := NewScheduler(cleaner, "@every 1h", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for cleaner.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("cleanup did not run on start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if got := cleaner.calls.Load(); got != 1 {
		t.Errorf("expected 1 cleanup, got %d", got)
	}
}

func TestRun_CleanupErrorDoesNotStopScheduler(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("db locked")}
	s := NewScheduler(cleaner, "@every 1s", discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cleaner.calls.Load(); got < 2 {
		t.Errorf("expected the cron tick to run after a failed cleanup, got %d calls", got)
	}
}

func TestRun_InvalidSpec(t *testing.T) {
	s := NewScheduler(&countingCleaner{}, "not a schedule", discardLogger())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}
