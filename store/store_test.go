package store_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stevemurr/scfiles-backend/store"
)

// runStoreTests runs a common test suite against any Store implementation.
func runStoreTests(t *testing.T, s store.Store) {
	t.Helper()

	t.Run("Load absent slot keeps default", func(t *testing.T) {
		docs := []map[string]any{}
		if err := s.Load("movies", &docs); err != nil {
			t.Fatal(err)
		}
		if docs == nil || len(docs) != 0 {
			t.Fatalf("expected empty default, got %v", docs)
		}

		m := map[string]any{"keep": "me"}
		if err := s.Load("collections", &m); err != nil {
			t.Fatal(err)
		}
		if m["keep"] != "me" {
			t.Fatalf("expected default map untouched, got %v", m)
		}
	})

	t.Run("Save and Load", func(t *testing.T) {
		docs := []map[string]any{
			{"id": "m1", "title": "A", "year": 2020},
			{"id": "m2", "title": "B"},
		}
		if err := s.Save("movies", docs); err != nil {
			t.Fatal(err)
		}
		var got []map[string]any
		if err := s.Load("movies", &got); err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 docs, got %d", len(got))
		}
		if got[0]["id"] != "m1" || got[1]["id"] != "m2" {
			t.Fatalf("order not preserved: %v", got)
		}
		if got[0]["year"] != json.Number("2020") {
			t.Fatalf("expected year=2020 as json.Number, got %#v", got[0]["year"])
		}
	})

	t.Run("Save overwrites", func(t *testing.T) {
		if err := s.Save("movies", []map[string]any{{"id": "m3"}}); err != nil {
			t.Fatal(err)
		}
		var got []map[string]any
		if err := s.Load("movies", &got); err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0]["id"] != "m3" {
			t.Fatalf("expected only m3, got %v", got)
		}
	})

	t.Run("Slots are independent", func(t *testing.T) {
		if err := s.Save("series", []map[string]any{{"id": "s1"}}); err != nil {
			t.Fatal(err)
		}
		var movies, series []map[string]any
		if err := s.Load("movies", &movies); err != nil {
			t.Fatal(err)
		}
		if err := s.Load("series", &series); err != nil {
			t.Fatal(err)
		}
		if movies[0]["id"] != "m3" || series[0]["id"] != "s1" {
			t.Fatalf("slots leaked into each other: movies=%v series=%v", movies, series)
		}
	})

	t.Run("Unencodable value is a WriteError", func(t *testing.T) {
		err := s.Save("bad", map[string]any{"ch": make(chan int)})
		var we *store.WriteError
		if !errors.As(err, &we) {
			t.Fatalf("expected WriteError, got %v", err)
		}
		if we.Slot != "bad" {
			t.Fatalf("expected slot=bad, got %q", we.Slot)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	s := store.NewMemoryStore()
	runStoreTests(t, s)
}

func TestJsonFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJsonFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	runStoreTests(t, s)
}

func TestSqliteStore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := store.NewSqliteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	runStoreTests(t, s)
}

func TestFactory(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
	}{
		{"json"},
		{"sqlite"},
		{"memory"},
		{""},
	}
	for _, tc := range tests {
		t.Run(tc.backend, func(t *testing.T) {
			s, err := store.New(tc.backend, filepath.Join(dir, tc.backend))
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := store.New("redis", dir)
		if err == nil {
			t.Fatal("expected error for unknown backend")
		}
	})
}

func TestJsonFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJsonFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Save("movies", []any{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("collections", map[string]any{}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"movies.json", "collections.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestJsonFileStoreCorruptSlot(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJsonFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "movies.json"), []byte(`[{"id":"m1"`), 0o644); err != nil {
		t.Fatal(err)
	}

	docs := []map[string]any{}
	err = s.Load("movies", &docs)
	var de *store.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Slot != "movies" {
		t.Fatalf("expected slot=movies, got %q", de.Slot)
	}
}

func TestJsonFileStoreBlankSlot(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJsonFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "series.json"), []byte("\n  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs := []map[string]any{}
	if err := s.Load("series", &docs); err != nil {
		t.Fatalf("blank slot should load as default: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("expected empty default, got %v", docs)
	}
}
