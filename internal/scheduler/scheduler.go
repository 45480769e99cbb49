// Package scheduler runs periodic cache maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Cleaner removes expired entries and reports how many it removed.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// Scheduler fires Cleanup on a cron spec such as "@every 1h" or "0 3 * * *".
type Scheduler struct {
	cron    *cron.Cron
	cleaner Cleaner
	spec    string
	logger  *slog.Logger
}

// NewScheduler creates a scheduler for cleaner on spec.
func NewScheduler(cleaner Cleaner, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cleaner: cleaner,
		spec:    spec,
		logger:  logger,
	}
}

// Run registers the job, runs one cleanup immediately, and blocks until ctx
// is cancelled. It returns nil on cancellation after any running cleanup
// has finished, or an error if spec does not parse.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.cleanup(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}

	s.logger.Info("starting cache cleanup scheduler", "schedule", s.spec)
	s.cleanup(ctx)
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("shutting down cache cleanup scheduler")
	return nil
}

func (s *Scheduler) cleanup(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	removed, err := s.cleaner.Cleanup(ctx)
	if err != nil {
		s.logger.Error("cache cleanup failed", "error", err)
		return
	}
	s.logger.Debug("cache cleanup finished", "removed", removed)
}
