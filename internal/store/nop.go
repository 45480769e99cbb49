package store

import (
	"context"
	"time"

	"github.com/amishk599/jobfinder/internal/model"
)

// NopStore is used when caching and history are disabled. Every Get misses
// and nothing is recorded.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (NopStore) Get(context.Context, string) ([]model.JobRecord, bool, error) {
	return nil, false, nil
}

func (NopStore) Set(context.Context, string, []model.JobRecord, time.Duration) error { return nil }

func (NopStore) Cleanup(context.Context) (int64, error) { return 0, nil }

func (NopStore) Record(context.Context, SearchEntry) error { return nil }

func (NopStore) Recent(context.Context, int) ([]SearchEntry, error) { return []SearchEntry{}, nil }
