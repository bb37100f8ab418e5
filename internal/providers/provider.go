package providers

import (
	"context"

	"trendscribe/internal/models"
)

// Provider is the external research collaborator. Calls are opaque, slow
// and fallible; this subsystem never retries them and never substitutes
// placeholder content for a failure.
type Provider interface {
	// GenerateResearch produces raw research text for a request.
	GenerateResearch(ctx context.Context, req models.ResearchRequest) (string, error)

	// GenerateQuestions produces structured follow-up questions for a
	// piece of research text.
	GenerateQuestions(ctx context.Context, research string) ([]string, error)
}
