package handlers

import (
	"github.com/gofiber/fiber/v2"

	"trendscribe/internal/models"
	"trendscribe/internal/services"
)

// RecoveryHandler lets a reconnecting client check whether a research job
// it stopped listening to has since completed.
type RecoveryHandler struct {
	recovery *services.RecoveryService
}

// NewRecoveryHandler creates a new recovery handler
func NewRecoveryHandler(recovery *services.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{recovery: recovery}
}

// Handle performs the exact-then-fuzzy completion check. Not found is a
// 404 with found=false, not an error body; callers poll or resubmit.
func (h *RecoveryHandler) Handle(c *fiber.Ctx) error {
	var req models.ResearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	resp := h.recovery.CheckCompletion(c.Context(), req)
	if !resp.Found {
		return c.Status(fiber.StatusNotFound).JSON(resp)
	}
	return c.JSON(resp)
}
