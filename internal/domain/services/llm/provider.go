package llm

import (
	"context"
)

// Provider produces a single completion. Implementations must be safe for
// concurrent use.
type Provider interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g., "anthropic")
	Name() string
}

type CompletionRequest struct {
	System    string
	Prompt    string
	Model     string
	MaxTokens int64
}

type CompletionResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
}
