package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	if _, err := store.Get(ctx, KeyToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty store, got %v", err)
	}

	if err := store.Set(ctx, KeyToken, "tok-123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, KeyToken)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "tok-123" {
		t.Fatalf("expected tok-123, got %q", got)
	}

	if err := store.Del(ctx, KeyToken); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := store.Get(ctx, KeyToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := NewFileStore(dir)
	if err := first.Set(ctx, KeyTenantID, "t1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second := NewFileStore(dir)
	got, err := second.Get(ctx, KeyTenantID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got != "t1" {
		t.Fatalf("expected t1, got %q", got)
	}
}

func TestFileStoreUnavailableStorageIsNoop(t *testing.T) {
	// A regular file where the directory should be makes every mkdir fail.
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("sentinel"), 0o600); err != nil {
		t.Fatalf("write sentinel: %v", err)
	}
	store := NewFileStore(filepath.Join(blocked, "nested"))

	ctx := context.Background()
	if err := store.Set(ctx, KeyToken, "tok"); err != nil {
		t.Fatalf("set on unavailable storage must not error, got %v", err)
	}
	if _, err := store.Get(ctx, KeyToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected absent value, got %v", err)
	}
	if err := store.Del(ctx, KeyToken); err != nil {
		t.Fatalf("del on unavailable storage must not error, got %v", err)
	}
}
