package llm

import (
	"context"
	"fmt"

	"fitplanner/internal/config"
	"fitplanner/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-1.5-flash"

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(geminiModel)
	return &GeminiClient{client: client, model: model}, nil
}

// GeminiClient implements TextGenerator and RawGenerator against the Gemini
// API.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// GenerateContent sends a prompt to the Gemini model and returns the
// generated text with usage metadata.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text := joinTextParts(resp)
	if text == "" {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: text,
		Usage:   usageFromResponse(resp),
	}, nil
}

// GenerateRaw returns the full response object so callers can hand it to
// recovery unflattened, along with its usage metadata.
func (c *GeminiClient) GenerateRaw(ctx context.Context, prompt string) (any, shared.TokenUsage, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, shared.TokenUsage{}, fmt.Errorf("failed to generate content: %w", err)
	}
	return resp, usageFromResponse(resp), nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func joinTextParts(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}

func usageFromResponse(resp *genai.GenerateContentResponse) shared.TokenUsage {
	usage := shared.TokenUsage{Model: geminiModel}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return usage
}
