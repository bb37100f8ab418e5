package models

import "time"

// HistoryEntry records one successfully completed research job.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	Topic       string    `json:"topic"`
	CacheKey    string    `json:"cacheKey"`
	ContentType string    `json:"contentType"`
	Platform    string    `json:"platform"`
	Language    string    `json:"language"`
	FromCache   bool      `json:"fromCache"`
	DurationMs  int64     `json:"durationMs"`
	CreatedAt   time.Time `json:"createdAt"`
}
