package llm

import (
	"context"
	"time"
)

// Client generates text from a prompt. It satisfies service.Generator.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into vectors. It satisfies service.Embedder.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Config holds configuration for a generation client and the classifier
// built on it.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	APIVersion  string
	MaxRetries  int
	RetryDelay  time.Duration
	Timeout     time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// EmbeddingConfig holds configuration for an embedding client.
type EmbeddingConfig struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	APIVersion string
	Dimensions int
}

const (
	defaultMaxTokens   = 2048
	defaultTemperature = 0.3
	defaultDimensions  = 1536
)

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

func (c Config) temperature() float64 {
	if c.Temperature <= 0 {
		return defaultTemperature
	}
	return c.Temperature
}
