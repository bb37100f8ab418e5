package models

import "time"

// TrendItem is one entry from a trend source. The aggregator only copies
// and reorders items; it never mutates one in place.
type TrendItem struct {
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
	PubDate time.Time `json:"pubDate"`
	Source  string    `json:"source"`
}

// TrendSourceConfig is one entry in the trend-source registry file.
type TrendSourceConfig struct {
	Name      string `yaml:"name" json:"name"`
	Type      string `yaml:"type" json:"type"` // "reddit" or "rss"
	Subreddit string `yaml:"subreddit,omitempty" json:"subreddit,omitempty"`
	URL       string `yaml:"url,omitempty" json:"url,omitempty"`
	Enabled   bool   `yaml:"enabled" json:"enabled"`
}
