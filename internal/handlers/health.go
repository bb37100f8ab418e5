package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"trendscribe/internal/cache"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store   cache.Store
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store cache.Store) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now()}
}

// Handle responds with server health status. A down cache backend does not
// make the server unhealthy; it only disables the cache shortcut and
// recovery.
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	cacheAvailable := h.store != nil && h.store.Available(c.Context())

	return c.JSON(fiber.Map{
		"status":    "healthy",
		"cache":     cacheAvailable,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
