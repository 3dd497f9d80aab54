package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/potrans/internal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New(t *testing.T) {
	s := newTestStore(t)

	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_New_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.SaveToMemory(context.Background(), "Hello", "fr", "Bonjour", "moonshot", ""); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	entries, err := s.ListMemory(context.Background(), "fr")
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Translated != "Bonjour" {
		t.Errorf("unexpected entries after reopen: %+v", entries)
	}
}

func TestStore_SaveRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	first := internal.RunRecord{
		CatalogPath: "po/fr.po",
		Language:    "fr",
		Provider:    "moonshot",
		Budget:      1000,
		Candidates:  12,
		Applied:     11,
		StopIndex:   -1,
		Timestamp:   base,
	}
	id, err := s.SaveRun(ctx, first)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if id == "" {
		t.Error("expected a generated run ID")
	}

	second := first
	second.Language = "de"
	second.StopIndex = 40
	second.Timestamp = base.Add(time.Hour)
	if _, err := s.SaveRun(ctx, second); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Language != "de" || runs[0].StopIndex != 40 {
		t.Errorf("expected newest run first, got %+v", runs[0])
	}
	if runs[1].ID != id || runs[1].Candidates != 12 || runs[1].Applied != 11 || runs[1].StopIndex != -1 {
		t.Errorf("unexpected stored run: %+v", runs[1])
	}
	if !runs[1].Timestamp.Equal(base) {
		t.Errorf("timestamp = %v, want %v", runs[1].Timestamp, base)
	}

	limited, err := s.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 run with limit, got %d", len(limited))
	}
}

func TestStore_SaveRun_DuplicateID(t *testing.T) {
	s := newTestStore(t)

	run := internal.RunRecord{ID: "fixed", CatalogPath: "fr.po", Language: "fr", Provider: "moonshot", Budget: 1}
	if _, err := s.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if _, err := s.SaveRun(context.Background(), run); err == nil {
		t.Error("expected error for duplicate run ID")
	}
}

func TestStore_SaveToMemory_NormalizesSource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "  Hello\n", "uk", "Привіт", "moonshot", "run-1"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}
	// "café" with a combining acute accent, then in precomposed form.
	if err := s.SaveToMemory(ctx, "cafe\u0301", "fr", "café", "moonshot", ""); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}
	if err := s.SaveToMemory(ctx, "caf\u00e9", "fr", "café", "moonshot", ""); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}

	uk, err := s.ListMemory(ctx, "uk")
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(uk) != 1 || uk[0].SourceText != "Hello" {
		t.Errorf("expected trimmed source text, got %+v", uk)
	}

	fr, err := s.ListMemory(ctx, "fr")
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(fr) != 1 {
		t.Fatalf("expected NFC-equivalent sources to share one entry, got %d", len(fr))
	}
	if fr[0].SourceText != "caf\u00e9" || fr[0].UsageCount != 2 {
		t.Errorf("unexpected entry: %+v", fr[0])
	}
}

func TestStore_SaveToMemory_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "Hello", "fr", "Salut", "moonshot", "run-1")
	s.SaveToMemory(ctx, "Hello", "fr", "Bonjour", "google", "run-2")

	entries, err := s.ListMemory(ctx, "")
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Translated != "Bonjour" || e.ServiceUsed != "google" || e.UsageCount != 2 {
		t.Errorf("unexpected entry after upsert: %+v", e)
	}
}

func TestStore_ListMemory_FilterByLanguage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "Hello", "fr", "Bonjour", "moonshot", "")
	s.SaveToMemory(ctx, "Hello", "de", "Hallo", "moonshot", "")
	s.SaveToMemory(ctx, "World", "fr", "Monde", "moonshot", "")

	entries, err := s.ListMemory(ctx, "fr")
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 fr entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.TargetLang != "fr" {
			t.Errorf("unexpected language %q", e.TargetLang)
		}
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Errorf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 0 || stats.Runs != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}

	s.SaveToMemory(ctx, "Hello", "uk", "Привіт", "moonshot", "")
	s.SaveToMemory(ctx, "World", "uk", "Світ", "moonshot", "")
	s.SaveToMemory(ctx, "World", "fr", "Monde", "moonshot", "")
	s.SaveRun(ctx, internal.RunRecord{CatalogPath: "uk.po", Language: "uk", Provider: "moonshot", Budget: 1000})

	stats, err = s.Stats(ctx)
	if err != nil {
		t.Errorf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 3 {
		t.Errorf("expected 3 total entries, got %d", stats.TotalEntries)
	}
	if stats.Languages != 2 {
		t.Errorf("expected 2 languages, got %d", stats.Languages)
	}
	if stats.TotalUsage != 3 {
		t.Errorf("expected usage 3, got %d", stats.TotalUsage)
	}
	if stats.Runs != 1 {
		t.Errorf("expected 1 run, got %d", stats.Runs)
	}
}

func TestStore_DeleteMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "Hello", "uk", "Привіт", "moonshot", "")

	entries, err := s.ListMemory(ctx, "")
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one entry")
	}

	deleted, err := s.DeleteMemory(ctx, entries[0].ID)
	if err != nil {
		t.Errorf("DeleteMemory failed: %v", err)
	}
	if !deleted {
		t.Error("expected entry to be deleted")
	}

	entries, err = s.ListMemory(ctx, "")
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries after delete, got %d", len(entries))
	}

	deleted, err = s.DeleteMemory(ctx, "missing")
	if err != nil {
		t.Errorf("DeleteMemory failed: %v", err)
	}
	if deleted {
		t.Error("expected nothing deleted for unknown ID")
	}
}

func TestStore_ClearMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveToMemory(ctx, "Hello", "uk", "Привіт", "moonshot", "")
	s.SaveToMemory(ctx, "World", "uk", "Світ", "moonshot", "")

	count, err := s.ClearMemory(ctx)
	if err != nil {
		t.Errorf("ClearMemory failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 cleared, got %d", count)
	}

	entries, err := s.ListMemory(ctx, "")
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries after clear, got %d", len(entries))
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{"cafe\u0301", "caf\u00e9"},
		{"\tline\n", "line"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeText(tt.input); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
