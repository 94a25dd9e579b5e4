package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// tickingClock returns a clock that advances one millisecond per call, so
// creation order is deterministic.
func tickingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "content.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	s.now = tickingClock()
	return s
}

func TestOpen(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	if s.dialect != dialectSQLite {
		t.Errorf("dialect = %v, want sqlite", s.dialect)
	}
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.Add(ctx, "faq", map[string]any{"q": "Q"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	docs, err := s.List(ctx, "faq")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("len(docs) = %d, want 1", len(docs))
	}
}

func TestAddAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, "projects", map[string]any{
		"title":    "Launch film",
		"category": "Reels",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id == "" {
		t.Fatal("Add returned empty id")
	}

	doc, err := s.Get(ctx, "projects", id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.ID != id {
		t.Errorf("ID = %q, want %q", doc.ID, id)
	}
	if doc.Fields["title"] != "Launch film" {
		t.Errorf("title = %v, want %q", doc.Fields["title"], "Launch film")
	}
	if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}
}

func TestGetNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get(context.Background(), "projects", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListIsScopedToCollection(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, q := range []string{"one", "two"} {
		if _, err := s.Add(ctx, "faq", map[string]any{"q": q}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if _, err := s.Add(ctx, "services", map[string]any{"title": "Reels"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	docs, err := s.List(ctx, "faq")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	if docs[0].Fields["q"] != "one" || docs[1].Fields["q"] != "two" {
		t.Errorf("docs not in creation order: %v, %v", docs[0].Fields, docs[1].Fields)
	}
}

func TestSetReplacesDocument(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "site_content", "en", map[string]any{"heroTitle": "A", "aboutText": "B"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "site_content", "en", map[string]any{"heroTitle": "C"}); err != nil {
		t.Fatalf("Set replace failed: %v", err)
	}

	doc, err := s.Get(ctx, "site_content", "en")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Fields["heroTitle"] != "C" {
		t.Errorf("heroTitle = %v, want C", doc.Fields["heroTitle"])
	}
	if _, ok := doc.Fields["aboutText"]; ok {
		t.Error("Set should replace the whole document")
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, "bookings", map[string]any{"name": "Aziz", "status": "new"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Update(ctx, "bookings", id, map[string]any{"status": "completed"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	doc, err := s.Get(ctx, "bookings", id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Fields["status"] != "completed" {
		t.Errorf("status = %v, want completed", doc.Fields["status"])
	}
	if doc.Fields["name"] != "Aziz" {
		t.Errorf("name = %v, want Aziz", doc.Fields["name"])
	}
}

func TestUpdateMissing(t *testing.T) {
	s := setupTestStore(t)

	err := s.Update(context.Background(), "bookings", "missing", map[string]any{"status": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, "faq", map[string]any{"q": "Q"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Delete(ctx, "faq", id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "faq", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "faq", id); err != nil {
		t.Errorf("deleting a missing document should succeed, got %v", err)
	}
}

func TestIncrement(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "stats", "visitors", map[string]any{"count": 1}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Increment(ctx, "stats", "visitors", "count", 1); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}

	doc, err := s.Get(ctx, "stats", "visitors")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got, _ := doc.Fields["count"].(float64); got != 4 {
		t.Errorf("count = %v, want 4", doc.Fields["count"])
	}
}

func TestIncrementMissingField(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "stats", "visitors", map[string]any{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Increment(ctx, "stats", "visitors", "count", 1); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	doc, _ := s.Get(ctx, "stats", "visitors")
	if got, _ := doc.Fields["count"].(float64); got != 1 {
		t.Errorf("count = %v, want 1", doc.Fields["count"])
	}
}

func TestIncrementMissingDocument(t *testing.T) {
	s := setupTestStore(t)

	err := s.Increment(context.Background(), "stats", "visitors", "count", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIncrementRejectsBadField(t *testing.T) {
	s := setupTestStore(t)

	err := s.Increment(context.Background(), "stats", "visitors", "count'); DROP", 1)
	if !errors.Is(err, ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}

func TestCreateKeepsExistingDocument(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "stats", "visitors", map[string]any{"count": 0})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created {
		t.Error("first Create should write the document")
	}
	if err := s.Increment(ctx, "stats", "visitors", "count", 5); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	created, err = s.Create(ctx, "stats", "visitors", map[string]any{"count": 0})
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if created {
		t.Error("second Create should leave the document alone")
	}
	doc, _ := s.Get(ctx, "stats", "visitors")
	if got, _ := doc.Fields["count"].(float64); got != 5 {
		t.Errorf("count = %v, want 5", doc.Fields["count"])
	}
}

func TestRebind(t *testing.T) {
	s := &Store{dialect: dialectPostgres}
	got := s.rebind(`SELECT 1 FROM documents WHERE collection = ? AND id = ?`)
	want := `SELECT 1 FROM documents WHERE collection = $1 AND id = $2`
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}

	s.dialect = dialectSQLite
	if got := s.rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind should be a no-op, got %q", got)
	}
}
