package services

import (
	"context"
	"path/filepath"
	"testing"

	"trendscribe/internal/database"
	"trendscribe/internal/models"
)

func setupHistory(t *testing.T) *HistoryService {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "history_test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	return NewHistoryService(db)
}

func TestHistoryRecordAndRecent(t *testing.T) {
	history := setupHistory(t)
	ctx := context.Background()

	for i, topic := range []string{"first topic", "second topic", "third topic"} {
		err := history.Record(ctx, models.HistoryEntry{
			Topic:       topic,
			CacheKey:    "research:key:article:general:en",
			ContentType: "article",
			Platform:    "general",
			Language:    "en",
			FromCache:   i == 2,
			DurationMs:  int64(100 * (i + 1)),
		})
		if err != nil {
			t.Fatalf("Record failed for %q: %v", topic, err)
		}
	}

	entries, err := history.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Newest first
	if entries[0].Topic != "third topic" {
		t.Errorf("expected newest entry first, got %q", entries[0].Topic)
	}
	if !entries[0].FromCache {
		t.Error("fromCache flag lost on round trip")
	}
}

func TestHistoryRecentHonorsLimit(t *testing.T) {
	history := setupHistory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		history.Record(ctx, models.HistoryEntry{
			Topic: "topic", CacheKey: "key", ContentType: "article",
			Platform: "general", Language: "en",
		})
	}

	entries, err := history.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected limit of 2 respected, got %d", len(entries))
	}
}
