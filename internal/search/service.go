// Package search runs one job search end to end: normalize, fetch from every
// source, filter, rank, truncate.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobfinder/internal/filter"
	"github.com/amishk599/jobfinder/internal/model"
	"github.com/amishk599/jobfinder/internal/store"
)

// Options tune a Service.
type Options struct {
	// TopN is how many ranked jobs are returned. Zero or less returns all.
	TopN int
	// SourceTimeout bounds each source's search, retries included.
	SourceTimeout time.Duration
}

// Service owns the search pipeline and its dependencies.
type Service struct {
	normalizer model.Normalizer
	sources    []model.Source
	ranker     model.Ranker
	history    store.SearchLog
	opts       Options
	logger     *slog.Logger
	newID      func() string
}

// NewService wires a search pipeline. history may be a store.NopStore.
func NewService(
	normalizer model.Normalizer,
	sources []model.Source,
	ranker model.Ranker,
	history store.SearchLog,
	opts Options,
	logger *slog.Logger,
) *Service {
	return &Service{
		normalizer: normalizer,
		sources:    sources,
		ranker:     ranker,
		history:    history,
		opts:       opts,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Search runs req through the pipeline. It fails only on an invalid request,
// when every source failed, or when ctx ends. No jobs at all is a success
// with an empty list.
func (s *Service) Search(ctx context.Context, req model.SearchRequest) (*model.RankedResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := s.newID()
	logger := s.logger.With("request_id", id)
	start := time.Now()

	kw := s.normalizer.Normalize(ctx, req)
	logger.Debug("normalized keywords",
		"position", kw.Position,
		"location", kw.SearchLocation(),
		"experience", kw.Experience,
	)

	q := model.Query{Request: req, Keywords: kw}
	fetched, outcomes, err := s.fetchAll(ctx, q, logger)
	if err != nil {
		return nil, err
	}

	matched := filter.Apply(fetched, filter.ForRequest(req))
	jobs := []model.JobRecord{}
	if len(matched) > 0 {
		jobs = s.ranker.Rank(ctx, matched, kw)
	}
	if s.opts.TopN > 0 && len(jobs) > s.opts.TopN {
		jobs = jobs[:s.opts.TopN]
	}

	entry := store.SearchEntry{
		RequestID: id,
		Position:  req.Position,
		Location:  kw.SearchLocation(),
		Fetched:   len(fetched),
		Returned:  len(jobs),
		Request:   req,
	}
	if len(jobs) > 0 {
		entry.TopTitle = jobs[0].Title
	}
	if err := s.history.Record(ctx, entry); err != nil {
		logger.Warn("failed to record search", "error", err)
	}

	logger.Info("search complete",
		"position", req.Position,
		"fetched", len(fetched),
		"matched", len(matched),
		"returned", len(jobs),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &model.RankedResult{
		RequestID: id,
		Jobs:      jobs,
		Sources:   outcomes,
	}, nil
}

// fetchAll queries every source concurrently. A failing source is recorded
// in its outcome and never cancels the others.
func (s *Service) fetchAll(ctx context.Context, q model.Query, logger *slog.Logger) ([]model.JobRecord, []model.SourceOutcome, error) {
	results := make([][]model.JobRecord, len(s.sources))
	outcomes := make([]model.SourceOutcome, len(s.sources))

	var g errgroup.Group
	for i, src := range s.sources {
		g.Go(func() error {
			sctx := ctx
			if s.opts.SourceTimeout > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(ctx, s.opts.SourceTimeout)
				defer cancel()
			}

			jobs, cached, err := searchSource(sctx, src, q)
			outcomes[i] = model.SourceOutcome{Source: src.Name(), Fetched: len(jobs), Cached: cached}
			if err != nil {
				outcomes[i].Err = err
				outcomes[i].Error = err.Error()
				logger.Warn("source failed", "source", src.Name(), "error", err)
				return nil
			}
			results[i] = jobs
			logger.Debug("source fetched", "source", src.Name(), "jobs", len(jobs), "cached", cached)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, outcomes, fmt.Errorf("search cancelled: %w", err)
	}

	var all []model.JobRecord
	var errs []error
	for i, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Source, o.Err))
			continue
		}
		all = append(all, results[i]...)
	}
	if len(s.sources) > 0 && len(errs) == len(s.sources) {
		return nil, outcomes, fmt.Errorf("%w: %w", model.ErrAllSourcesFailed, errors.Join(errs...))
	}
	return all, outcomes, nil
}

func searchSource(ctx context.Context, src model.Source, q model.Query) ([]model.JobRecord, bool, error) {
	if cs, ok := src.(model.CachingSource); ok {
		return cs.SearchCached(ctx, q)
	}
	jobs, err := src.Search(ctx, q)
	return jobs, false, err
}
