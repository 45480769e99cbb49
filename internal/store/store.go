// Package store persists fetched job lists between searches and keeps a
// log of past searches.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/amishk599/jobfinder/internal/model"
)

// Cache holds job lists keyed by source and query until they expire.
type Cache interface {
	// Get returns the cached jobs and true, or false on a miss or expired entry.
	Get(ctx context.Context, key string) ([]model.JobRecord, bool, error)
	Set(ctx context.Context, key string, jobs []model.JobRecord, ttl time.Duration) error
	// Cleanup removes expired entries and reports how many were removed.
	Cleanup(ctx context.Context) (int64, error)
}

// SearchEntry is one row of the search log.
type SearchEntry struct {
	RequestID string    `json:"request_id"`
	Position  string    `json:"position"`
	Location  string    `json:"location"`
	Fetched   int       `json:"fetched"`
	Returned  int       `json:"returned"`
	TopTitle  string    `json:"top_title"`
	CreatedAt time.Time `json:"created_at"`

	// Request is the search as submitted, so it can be run again.
	Request model.SearchRequest `json:"request"`
}

// SearchLog records completed searches.
type SearchLog interface {
	Record(ctx context.Context, e SearchEntry) error
	// Recent returns up to n entries, newest first.
	Recent(ctx context.Context, n int) ([]SearchEntry, error)
}

// CacheKey identifies a source's result for a query. Every field that can
// change the actor input is part of the key.
func CacheKey(source string, q model.Query) string {
	data, _ := json.Marshal(q)
	sum := sha256.Sum256(data)
	return "jobfinder:" + source + ":" + hex.EncodeToString(sum[:16])
}
