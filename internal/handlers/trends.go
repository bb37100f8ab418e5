package handlers

import (
	"github.com/gofiber/fiber/v2"

	"trendscribe/internal/models"
	"trendscribe/internal/services"
)

// TrendsHandler serves the aggregated trend listing.
type TrendsHandler struct {
	trends *services.TrendService
}

// NewTrendsHandler creates a new trends handler
func NewTrendsHandler(trends *services.TrendService) *TrendsHandler {
	return &TrendsHandler{trends: trends}
}

// Handle aggregates all configured sources for a business type, optionally
// filtered by a research topic. Partial source failures still return data;
// only a total failure is an error response.
func (h *TrendsHandler) Handle(c *fiber.Ctx) error {
	businessType := c.Query("businessType", "general")
	researchTopic := c.Query("researchTopic", "")

	items, sources, err := h.trends.GetTrends(c.Context(), businessType, researchTopic)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "trend_fetch_failed",
			"message": err.Error(),
		})
	}

	if items == nil {
		items = []models.TrendItem{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"sources": sources,
	})
}
