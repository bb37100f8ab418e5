package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"trendscribe/internal/providers"
)

// QuestionsHandler turns a piece of research text into follow-up questions.
type QuestionsHandler struct {
	provider providers.Provider
}

// NewQuestionsHandler creates a new questions handler
func NewQuestionsHandler(provider providers.Provider) *QuestionsHandler {
	return &QuestionsHandler{provider: provider}
}

type questionsRequest struct {
	Research string `json:"research"`
}

// Handle generates questions synchronously. Provider failures surface
// verbatim; no placeholder questions are ever substituted.
func (h *QuestionsHandler) Handle(c *fiber.Ctx) error {
	var req questionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if strings.TrimSpace(req.Research) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "research text is required",
		})
	}

	questions, err := h.provider.GenerateQuestions(c.Context(), req.Research)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"questions": questions,
	})
}
