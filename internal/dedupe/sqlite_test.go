package dedupe

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteStoreTracksCollectedIDs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "redlens.db")
	store, err := NewSQLiteStore(dbPath, "", 0)
	if err != nil {
		t.Fatalf("failed to init sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	seen, err := store.Seen(context.Background(), "abc")
	if err != nil {
		t.Fatalf("seen failed: %v", err)
	}
	if seen {
		t.Fatalf("expected unseen id")
	}

	if err := store.Mark(context.Background(), "abc"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	seen, err = store.Seen(context.Background(), "abc")
	if err != nil {
		t.Fatalf("seen failed: %v", err)
	}
	if !seen {
		t.Fatalf("expected seen id")
	}
}

func TestSQLiteStoreHonorsTTL(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "redlens.db")
	store, err := NewSQLiteStore(dbPath, "", 5*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to init sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Mark(context.Background(), "ttl-id"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	seen, err := store.Seen(context.Background(), "ttl-id")
	if err != nil {
		t.Fatalf("seen failed: %v", err)
	}
	if seen {
		t.Fatalf("expected id to expire")
	}
}

func TestSQLiteStoreMarkBatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "redlens.db")
	store, err := NewSQLiteStore(dbPath, "", 0)
	if err != nil {
		t.Fatalf("failed to init sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ids := []string{"a", "b", "c"}
	if err := store.MarkBatch(context.Background(), ids); err != nil {
		t.Fatalf("mark batch failed: %v", err)
	}

	for _, id := range ids {
		seen, err := store.Seen(context.Background(), id)
		if err != nil {
			t.Fatalf("seen failed: %v", err)
		}
		if !seen {
			t.Fatalf("expected %q to be seen", id)
		}
	}
}

func TestSQLiteStoreRejectsBadTableNames(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "redlens.db")
	if _, err := NewSQLiteStore(dbPath, "bad table; drop", 0); err == nil {
		t.Fatalf("expected error for invalid table name")
	}
}
