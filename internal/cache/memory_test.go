package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, "research:topic:article:general:en", []byte(`{"research":"x"}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, found, err := store.Get(ctx, "research:topic:article:general:en")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected key to be present")
	}
	if string(raw) != `{"research":"x"}` {
		t.Errorf("unexpected value: %s", raw)
	}

	_, found, err = store.Get(ctx, "research:missing:article:general:en")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected miss for unknown key")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, "research:short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	_, found, _ := store.Get(ctx, "research:short")
	if found {
		t.Error("expected entry to have expired")
	}
}

func TestMemoryStoreScanPrefix(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "research:go-basics:article:general:en", []byte("a"), time.Minute)
	store.Set(ctx, "research:go-basics:guide:general:en", []byte("b"), time.Minute)
	store.Set(ctx, "research:rust-basics:article:general:en", []byte("c"), time.Minute)

	entries, err := store.ScanPrefix(ctx, "research:go-basics")
	if err != nil {
		t.Fatalf("ScanPrefix failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	// Order must be stable across repeated scans of the same contents
	again, _ := store.ScanPrefix(ctx, "research:go-basics")
	for i := range entries {
		if entries[i].Key != again[i].Key {
			t.Errorf("scan order not stable: %q vs %q at %d", entries[i].Key, again[i].Key, i)
		}
	}
}

func TestMemoryStoreAvailable(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	if !store.Available(context.Background()) {
		t.Error("memory store must always be available")
	}
}
