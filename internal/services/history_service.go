package services

import (
	"context"
	"fmt"
	"time"

	"trendscribe/internal/database"
	"trendscribe/internal/models"
)

const defaultHistoryLimit = 20

// HistoryService records completed research jobs in sqlite. Writes are
// best-effort: a history failure never fails the job that produced it.
type HistoryService struct {
	db *database.DB
}

// NewHistoryService creates a history service on an initialized database.
func NewHistoryService(db *database.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record inserts one completed job.
func (s *HistoryService) Record(ctx context.Context, entry models.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO research_history
		(topic, cache_key, content_type, platform, language, from_cache, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.Topic, entry.CacheKey, entry.ContentType, entry.Platform, entry.Language,
		entry.FromCache, entry.DurationMs, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, cache_key, content_type, platform, language, from_cache, duration_ms, created_at
		FROM research_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Topic, &e.CacheKey, &e.ContentType, &e.Platform,
			&e.Language, &e.FromCache, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
