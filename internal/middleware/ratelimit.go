package middleware

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Global limits (per IP) for all API endpoints
	GlobalAPIMax        int
	GlobalAPIExpiration time.Duration

	// Research submission limits (per IP) - each miss triggers an
	// expensive provider call
	ResearchMax        int
	ResearchExpiration time.Duration

	// Recovery/trends read limits (per IP) - cheap cache reads
	ReadMax        int
	ReadExpiration time.Duration
}

// DefaultRateLimitConfig returns production-safe defaults
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		// Global: 200/min - very generous for normal use
		GlobalAPIMax:        200,
		GlobalAPIExpiration: 1 * time.Minute,

		// Research: 10/min - the upstream call is slow and billed
		ResearchMax:        10,
		ResearchExpiration: 1 * time.Minute,

		// Reads: 60/min
		ReadMax:        60,
		ReadExpiration: 1 * time.Minute,
	}
}

// LoadRateLimitConfig reads overrides from environment variables
func LoadRateLimitConfig() *RateLimitConfig {
	cfg := DefaultRateLimitConfig()

	if v := getEnvInt("RATE_LIMIT_GLOBAL_MAX"); v > 0 {
		cfg.GlobalAPIMax = v
	}
	if v := getEnvInt("RATE_LIMIT_RESEARCH_MAX"); v > 0 {
		cfg.ResearchMax = v
	}
	if v := getEnvInt("RATE_LIMIT_READ_MAX"); v > 0 {
		cfg.ReadMax = v
	}

	log.Printf("🛡️  [RATELIMIT] global=%d/min research=%d/min read=%d/min",
		cfg.GlobalAPIMax, cfg.ResearchMax, cfg.ReadMax)
	return cfg
}

// GlobalLimiter rate-limits every API route by client IP.
func (cfg *RateLimitConfig) GlobalLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.GlobalAPIMax,
		Expiration: cfg.GlobalAPIExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: limitReached,
	})
}

// ResearchLimiter rate-limits research submissions by client IP.
func (cfg *RateLimitConfig) ResearchLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.ResearchMax,
		Expiration: cfg.ResearchExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "research:" + c.IP()
		},
		LimitReached: limitReached,
	})
}

// ReadLimiter rate-limits the cheap read endpoints by client IP.
func (cfg *RateLimitConfig) ReadLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.ReadMax,
		Expiration: cfg.ReadExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "read:" + c.IP()
		},
		LimitReached: limitReached,
	})
}

func limitReached(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error": "rate limit exceeded, slow down",
	})
}

func getEnvInt(key string) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return 0
}
