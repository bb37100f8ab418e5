package handlers

import (
	"github.com/gofiber/fiber/v2"

	"trendscribe/internal/models"
	"trendscribe/internal/services"
)

const maxHistoryLimit = 100

// HistoryHandler serves the recent research history.
type HistoryHandler struct {
	history *services.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Handle lists recent completed jobs, newest first.
func (h *HistoryHandler) Handle(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := h.history.Recent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load history",
		})
	}

	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return c.JSON(fiber.Map{
		"entries": entries,
	})
}
