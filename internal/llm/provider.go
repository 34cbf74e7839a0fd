package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/Maxservais/chat/internal/config"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// NewProvider creates the provider described by the configuration,
// wrapped with the configured rate limit.
func NewProvider(cfg *config.Config) (Provider, error) {
	var p Provider
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		p = NewOpenAIProvider(apiKey, "", cfg.Model)
	case config.ProviderOllama:
		// Ollama speaks the OpenAI chat completions dialect.
		p = NewOpenAIProvider("ollama", "http://localhost:11434/v1", cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if cfg.RequestsPerMinute > 0 {
		p = NewRateLimitedProvider(p, cfg.RequestsPerMinute)
	}
	return p, nil
}
