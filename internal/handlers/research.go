package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"trendscribe/internal/models"
	"trendscribe/internal/services"
)

// ResearchHandler handles research job submissions.
type ResearchHandler struct {
	research *services.ResearchService
}

// NewResearchHandler creates a new research handler
func NewResearchHandler(research *services.ResearchService) *ResearchHandler {
	return &ResearchHandler{research: research}
}

// Handle submits a research job. With ?stream=1 or Accept: text/event-stream
// the response is an SSE stream of progress/terminal frames; otherwise the
// request blocks until the terminal event and returns a single JSON body.
func (h *ResearchHandler) Handle(c *fiber.Ctx) error {
	var req models.ResearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	events := h.research.Run(req)

	if !wantsStream(c) {
		return h.respondSync(c, events)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		for ev := range events {
			data, err := json.Marshal(ev.Data)
			if err != nil {
				log.Printf("⚠️  [RESEARCH] Failed to marshal %s event: %v", ev.Type, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			if err := w.Flush(); err != nil {
				// Client went away. Keep draining so the job's channel
				// closes; the job itself runs on regardless and its
				// result stays recoverable from the cache.
				for range events {
				}
				return
			}
		}
	}))
	return nil
}

// respondSync drains the stream and maps the terminal event onto one JSON
// response.
func (h *ResearchHandler) respondSync(c *fiber.Ctx, events <-chan models.JobEvent) error {
	for ev := range events {
		switch ev.Type {
		case models.EventCompleted:
			payload := ev.Data.(models.CompletedPayload)
			return c.JSON(fiber.Map{
				"research":  payload.Result.Research,
				"fromCache": payload.FromCache,
			})

		case models.EventError:
			payload := ev.Data.(models.ErrorPayload)
			status := fiber.StatusBadGateway
			if payload.Code == models.ErrCodeValidation {
				status = fiber.StatusBadRequest
			}
			return c.Status(status).JSON(fiber.Map{
				"error": payload.Error,
			})
		}
	}

	// The stream closed without a terminal event; treat as a failure
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "research job ended without a result",
	})
}

func wantsStream(c *fiber.Ctx) bool {
	if c.Query("stream") == "1" {
		return true
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), "text/event-stream")
}
