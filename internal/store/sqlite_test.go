package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/amishk599/jobfinder/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetThenGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	jobs := []model.JobRecord{{Title: "Go Developer", Company: "Acme", Source: "linkedin"}}

	if err := s.Set(ctx, "k1", jobs, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].Title != "Go Developer" || got[0].Source != "linkedin" {
		t.Errorf("unexpected jobs: %+v", got)
	}
}

func TestGetUnknownKeyMisses(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected miss for unknown key")
	}
}

func TestSetEmptyListIsAHit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "empty", nil, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, "empty")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d", len(got))
	}
}

func TestExpiredEntryMissesAndIsCleanedUp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	s.now = func() time.Time { return now }

	if err := s.Set(ctx, "old", []model.JobRecord{{Title: "a"}}, time.Minute); err != nil {
		t.Fatalf("Set old: %v", err)
	}
	if err := s.Set(ctx, "fresh", []model.JobRecord{{Title: "b"}}, time.Hour); err != nil {
		t.Fatalf("Set fresh: %v", err)
	}

	// Move the clock past the first entry's TTL.
	s.now = func() time.Time { return now.Add(10 * time.Minute) }

	if _, ok, _ := s.Get(ctx, "old"); ok {
		t.Error("expected expired entry to miss")
	}

	removed, err := s.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if _, ok, _ := s.Get(ctx, "fresh"); !ok {
		t.Error("expected fresh entry to survive cleanup")
	}
}

func TestSetReplacesEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "k", []model.JobRecord{{Title: "first"}}, time.Hour)
	s.Set(ctx, "k", []model.JobRecord{{Title: "second"}}, time.Hour)

	got, _, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 1 || got[0].Title != "second" {
		t.Errorf("expected replaced entry, got %+v", got)
	}
}

func TestRecordThenRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, pos := range []string{"first", "second", "third"} {
		err := s.Record(ctx, SearchEntry{
			RequestID: pos,
			Position:  pos,
			Location:  "Lahore",
			Fetched:   10 + i,
			Returned:  1,
			TopTitle:  "Top " + pos,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Request:   model.SearchRequest{Position: pos, Companies: []string{"Acme"}},
		})
		if err != nil {
			t.Fatalf("Record %s: %v", pos, err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].RequestID != "third" || got[1].RequestID != "second" {
		t.Errorf("expected newest first, got %s, %s", got[0].RequestID, got[1].RequestID)
	}
	if got[0].Fetched != 12 || got[0].TopTitle != "Top third" {
		t.Errorf("unexpected entry: %+v", got[0])
	}
	if got[0].Request.Position != "third" || len(got[0].Request.Companies) != 1 {
		t.Errorf("request not round-tripped: %+v", got[0].Request)
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("unexpected timestamp: %v", got[0].CreatedAt)
	}
}

func TestRecentEmptyLog(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entries, got %d", len(got))
	}
}
