package model

import (
	"context"
	"strings"
)

// Placeholder values used when an actor item lacks a field.
const (
	DefaultTitle   = "Unknown Title"
	DefaultCompany = "Unknown Company"
	DefaultSalary  = "Not Provided"
	DefaultLink    = "No Link"
)

// SearchRequest is the structured job search submitted by a caller.
type SearchRequest struct {
	Position         string   `json:"position"`
	Experience       string   `json:"experience"`
	Salary           string   `json:"salary"`
	JobNature        string   `json:"jobNature"`
	Location         string   `json:"location"`
	Country          string   `json:"country,omitempty"`
	City             string   `json:"city,omitempty"`
	Skills           string   `json:"skills"`
	Companies        []string `json:"companies,omitempty"`
	ExcludeCompanies []string `json:"excludeCompanies,omitempty"`
}

// Validate reports whether the request carries enough to search on.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Position) == "" {
		return &ValidationError{Field: "position", Reason: "is required"}
	}
	return nil
}

// NormalizedKeywords is the canonical form of a request produced by the normalizer.
type NormalizedKeywords struct {
	Position   string `json:"position"`
	Experience string `json:"experience"`
	Location   string `json:"location"`
	Skills     string `json:"skills"`
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
}

// FallbackKeywords builds keywords straight from the request fields.
func FallbackKeywords(req SearchRequest) NormalizedKeywords {
	return NormalizedKeywords{
		Position:   req.Position,
		Experience: req.Experience,
		Location:   req.Location,
		Skills:     req.Skills,
		Country:    req.Country,
		City:       req.City,
	}
}

// QueryText is the single string the rankers compare jobs against.
func (k NormalizedKeywords) QueryText() string {
	return strings.Join([]string{k.Position, k.Skills, k.Experience, k.Location}, " ")
}

// SearchLocation is the location string sent to job boards: "city, country"
// when either is known, otherwise the free-text location.
func (k NormalizedKeywords) SearchLocation() string {
	var parts []string
	if k.City != "" {
		parts = append(parts, k.City)
	}
	if k.Country != "" {
		parts = append(parts, k.Country)
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return k.Location
}

// JobRecord is one posting from any source, in the shape returned to callers.
type JobRecord struct {
	Title      string  `json:"job_title"`
	Company    string  `json:"company"`
	Experience string  `json:"experience"`
	JobNature  string  `json:"jobNature"`
	Location   string  `json:"location"`
	Salary     string  `json:"salary"`
	ApplyLink  string  `json:"apply_link"`
	Similarity float64 `json:"similarity"`
	Source     string  `json:"source,omitempty"`
}

// Query is what a Source receives: the original request plus its normalized keywords.
type Query struct {
	Request  SearchRequest
	Keywords NormalizedKeywords
}

// SourceOutcome records what a single source produced during one search.
type SourceOutcome struct {
	Source  string `json:"name"`
	Fetched int    `json:"fetched"`
	Cached  bool   `json:"cached,omitempty"`
	Err     error  `json:"-"`
	Error   string `json:"error,omitempty"`
}

// RankedResult is the response body of a search.
type RankedResult struct {
	RequestID string          `json:"request_id,omitempty"`
	Jobs      []JobRecord     `json:"relevant_jobs"`
	Sources   []SourceOutcome `json:"sources,omitempty"`
}

// Source fetches postings for a query from one job board.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) ([]JobRecord, error)
}

// CachingSource is a Source that can also say whether a result was served
// from cache.
type CachingSource interface {
	Source
	SearchCached(ctx context.Context, q Query) (jobs []JobRecord, hit bool, err error)
}

// Normalizer turns a raw request into keywords. It never fails; on any
// problem it falls back to FallbackKeywords.
type Normalizer interface {
	Normalize(ctx context.Context, req SearchRequest) NormalizedKeywords
}

// Ranker scores jobs against keywords and returns them ordered by similarity.
type Ranker interface {
	Rank(ctx context.Context, jobs []JobRecord, kw NormalizedKeywords) []JobRecord
}

// JobFilter decides whether a job is kept for ranking.
type JobFilter interface {
	Match(job JobRecord) bool
}

// Notifier delivers the ranked jobs of a finished search.
type Notifier interface {
	Notify(ctx context.Context, position string, jobs []JobRecord) error
}
