package llm

import (
	"context"

	"fitplanner/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// RawGenerator exposes the provider's response object without flattening it
// to text. Recovery works better on the full response, so callers should
// type-assert for this and prefer it when available. Usage metadata is
// returned separately since the raw object is opaque to the caller.
type RawGenerator interface {
	GenerateRaw(ctx context.Context, prompt string) (any, shared.TokenUsage, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
