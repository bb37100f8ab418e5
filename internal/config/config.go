package config

import (
	"os"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port string

	// Result cache
	RedisURL string        // empty = fall back to in-process cache
	CacheTTL time.Duration // how long completed research stays recoverable

	// Research provider (OpenAI-compatible endpoint)
	ResearchBaseURL string
	ResearchAPIKey  string
	ResearchModel   string
	ResearchTimeout time.Duration

	// Research history (sqlite)
	HistoryDBPath string

	// Trends
	TrendSourcesFile     string
	TrendCacheTTL        time.Duration
	TrendRefreshInterval time.Duration // 0 = refresh job disabled
	TrendRefreshTypes    []string      // businessTypes warmed by the refresh job
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "3001"),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getDurationEnv("CACHE_TTL", time.Hour),

		ResearchBaseURL: getEnv("RESEARCH_BASE_URL", "https://api.openai.com/v1"),
		ResearchAPIKey:  getEnv("RESEARCH_API_KEY", ""),
		ResearchModel:   getEnv("RESEARCH_MODEL", "gpt-4o-mini"),
		ResearchTimeout: getDurationEnv("RESEARCH_TIMEOUT", 120*time.Second),

		HistoryDBPath: getEnv("HISTORY_DB_PATH", "trendscribe.db"),

		TrendSourcesFile:     getEnv("TREND_SOURCES_FILE", "trend_sources.yaml"),
		TrendCacheTTL:        getDurationEnv("TREND_CACHE_TTL", 15*time.Minute),
		TrendRefreshInterval: getDurationEnv("TREND_REFRESH_INTERVAL", 0),
		TrendRefreshTypes:    getListEnv("TREND_REFRESH_TYPES", nil),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
