package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/amishk599/jobfinder/internal/model"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS source_cache (
		cache_key  TEXT PRIMARY KEY,
		jobs       TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS search_log (
		request_id TEXT PRIMARY KEY,
		position   TEXT NOT NULL,
		location   TEXT NOT NULL,
		fetched    INTEGER NOT NULL,
		returned   INTEGER NOT NULL,
		top_title  TEXT NOT NULL,
		request    TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_search_log_created ON search_log(created_at)`,
}

// SQLiteStore is a Cache and SearchLog backed by one SQLite file.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

type cacheRow struct {
	Jobs      string `db:"jobs"`
	ExpiresAt int64  `db:"expires_at"`
}

// Get returns unexpired cached jobs for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]model.JobRecord, bool, error) {
	var row cacheRow
	err := s.db.GetContext(ctx, &row, "SELECT jobs, expires_at FROM source_cache WHERE cache_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	if row.ExpiresAt <= s.now().Unix() {
		return nil, false, nil
	}

	var jobs []model.JobRecord
	if err := json.Unmarshal([]byte(row.Jobs), &jobs); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	return jobs, true, nil
}

// Set stores jobs under key for ttl, replacing any previous entry.
func (s *SQLiteStore) Set(ctx context.Context, key string, jobs []model.JobRecord, ttl time.Duration) error {
	if jobs == nil {
		jobs = []model.JobRecord{}
	}
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO source_cache (cache_key, jobs, expires_at) VALUES (?, ?, ?)",
		key, string(data), s.now().Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Cleanup deletes expired cache entries.
func (s *SQLiteStore) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM source_cache WHERE expires_at <= ?", s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("cleaning up expired cache entries: %w", err)
	}
	return res.RowsAffected()
}

type searchRow struct {
	RequestID string `db:"request_id"`
	Position  string `db:"position"`
	Location  string `db:"location"`
	Fetched   int    `db:"fetched"`
	Returned  int    `db:"returned"`
	TopTitle  string `db:"top_title"`
	Request   string `db:"request"`
	CreatedAt int64  `db:"created_at"`
}

// Record appends a search to the log. CreatedAt defaults to now.
func (s *SQLiteStore) Record(ctx context.Context, e SearchEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	req, err := json.Marshal(e.Request)
	if err != nil {
		return fmt.Errorf("encoding search %s: %w", e.RequestID, err)
	}
	row := searchRow{
		RequestID: e.RequestID,
		Position:  e.Position,
		Location:  e.Location,
		Fetched:   e.Fetched,
		Returned:  e.Returned,
		TopTitle:  e.TopTitle,
		Request:   string(req),
		CreatedAt: e.CreatedAt.UnixMilli(),
	}
	_, err = s.db.NamedExecContext(ctx, `INSERT INTO search_log
		(request_id, position, location, fetched, returned, top_title, request, created_at)
		VALUES (:request_id, :position, :location, :fetched, :returned, :top_title, :request, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("recording search %s: %w", e.RequestID, err)
	}
	return nil
}

// Recent returns up to n searches, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]SearchEntry, error) {
	var rows []searchRow
	err := s.db.SelectContext(ctx, &rows, `SELECT request_id, position, location, fetched, returned, top_title, request, created_at
		FROM search_log ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("listing recent searches: %w", err)
	}

	entries := make([]SearchEntry, 0, len(rows))
	for _, r := range rows {
		e := SearchEntry{
			RequestID: r.RequestID,
			Position:  r.Position,
			Location:  r.Location,
			Fetched:   r.Fetched,
			Returned:  r.Returned,
			TopTitle:  r.TopTitle,
			CreatedAt: time.UnixMilli(r.CreatedAt),
		}
		if err := json.Unmarshal([]byte(r.Request), &e.Request); err != nil {
			return nil, fmt.Errorf("decoding search %s: %w", r.RequestID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
