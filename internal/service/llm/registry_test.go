package llm

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/config"
	llmSvc "docvault/internal/domain/services/llm"
)

type namedProvider string

func (n namedProvider) Name() string { return string(n) }

func (n namedProvider) Complete(context.Context, *llmSvc.CompletionRequest) (*llmSvc.CompletionResponse, error) {
	return &llmSvc.CompletionResponse{Text: string(n)}, nil
}

func TestSetupProviders(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	empty, err := SetupProviders(config.LLMConfig{}, logger)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	_, ok := empty.Get("anthropic")
	assert.False(t, ok)

	withKey, err := SetupProviders(config.LLMConfig{AnthropicAPIKey: "sk-test"}, logger)
	require.NoError(t, err)
	p, ok := withKey.Get("anthropic")
	require.True(t, ok)
	assert.Equal(t, "anthropic", p.Name())
}

func TestRegistry_Replace(t *testing.T) {
	r := NewProviderRegistry()
	r.Register(namedProvider("stub"))
	r.Register(namedProvider("stub"))
	assert.Equal(t, 1, r.Len())
	p, ok := r.Get("stub")
	require.True(t, ok)
	resp, err := p.Complete(context.Background(), &llmSvc.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "stub", resp.Text)
}
