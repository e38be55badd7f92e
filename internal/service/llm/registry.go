// Package llm wires completion providers from configuration.
package llm

import (
	"fmt"
	"log/slog"
	"sync"

	"docvault/internal/config"
	llmSvc "docvault/internal/domain/services/llm"
	"docvault/internal/service/llm/providers/anthropic"
)

// ProviderRegistry maps provider names to configured providers. A provider
// whose API key is not set is simply absent.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]llmSvc.Provider
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[string]llmSvc.Provider)}
}

// Register adds or replaces a provider under its Name()
func (r *ProviderRegistry) Register(p llmSvc.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider for name, if configured
func (r *ProviderRegistry) Get(name string) (llmSvc.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

func (r *ProviderRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// SetupProviders registers every provider that has credentials.
func SetupProviders(cfg config.LLMConfig, logger *slog.Logger) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()

	if cfg.AnthropicAPIKey != "" {
		p, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("anthropic provider: %w", err)
		}
		registry.Register(p)
		logger.Info("llm provider registered", "provider", p.Name())
	}

	if registry.Len() == 0 {
		logger.Warn("no llm provider configured, chatbot will use built-in answers")
	}
	return registry, nil
}
