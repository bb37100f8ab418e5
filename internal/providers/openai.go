package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"trendscribe/internal/models"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIProvider creates a provider client. timeout bounds each call;
// the job layer surfaces a timeout as a collaborator error.
func NewOpenAIProvider(baseURL, apiKey, model string, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateResearch requests research content for the given topic and
// parameters and returns the raw text.
func (p *OpenAIProvider) GenerateResearch(ctx context.Context, req models.ResearchRequest) (string, error) {
	prompt := fmt.Sprintf(
		"Research the topic %q for a %s targeting the %s platform. Respond in language %q with key facts, angles and audience insights.",
		req.Topic, req.ContentType, req.Platform, req.Language,
	)

	content, err := p.complete(ctx, []chatMessage{
		{Role: "system", Content: "You are a content research assistant. Provide factual, source-aware research."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// GenerateQuestions asks the provider for follow-up questions, one per line.
func (p *OpenAIProvider) GenerateQuestions(ctx context.Context, research string) ([]string, error) {
	content, err := p.complete(ctx, []chatMessage{
		{Role: "system", Content: "You generate follow-up questions for content research. Answer with one question per line, no numbering."},
		{Role: "user", Content: research},
	})
	if err != nil {
		return nil, err
	}

	var questions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			questions = append(questions, line)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("provider returned no usable questions")
	}
	return questions, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("⚠️  [PROVIDER] API error (status %d): %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("provider returned an empty response")
	}
	return parsed.Choices[0].Message.Content, nil
}
