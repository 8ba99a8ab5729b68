package llm

import (
	"context"
	"fmt"
	"strings"
)

// NewClient creates a generation client for the configured provider.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "azure", "ollama":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	case "gemini":
		client, err := newGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewEmbedder creates an embedding client for the configured provider.
// Anthropic has no embeddings endpoint and is rejected.
func NewEmbedder(ctx context.Context, cfg EmbeddingConfig) (Embedder, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "azure", "ollama":
		return newOpenAIEmbedder(cfg)
	case "gemini":
		embedder, err := newGeminiEmbedder(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return embedder, nil
	case "anthropic":
		return nil, fmt.Errorf("provider %s does not offer embeddings", cfg.Provider)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
