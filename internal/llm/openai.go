package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/Veraticus/creditrag/internal/common"
)

const (
	defaultOpenAIModel  = openai.GPT4oMini
	defaultOllamaModel  = "llama3.1"
	defaultOllamaURL    = "http://localhost:11434/v1"
	defaultAzureVersion = "2024-02-01"
)

// openAIClient implements Client against OpenAI-compatible chat endpoints.
type openAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// openAIConfig builds the go-openai configuration for openai, azure and
// ollama providers.
func openAIConfig(provider, apiKey, baseURL, apiVersion string) (openai.ClientConfig, error) {
	switch strings.ToLower(provider) {
	case "azure":
		if apiKey == "" || baseURL == "" {
			return openai.ClientConfig{}, fmt.Errorf("%w: azure requires api key and base url", common.ErrMissingConfig)
		}
		config := openai.DefaultAzureConfig(apiKey, baseURL)
		config.APIVersion = defaultAzureVersion
		if apiVersion != "" {
			config.APIVersion = apiVersion
		}
		return config, nil
	case "ollama":
		config := openai.DefaultConfig("ollama")
		config.BaseURL = defaultOllamaURL
		if baseURL != "" {
			config.BaseURL = baseURL
		}
		return config, nil
	default:
		if apiKey == "" {
			return openai.ClientConfig{}, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
		}
		config := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			config.BaseURL = baseURL
		}
		return config, nil
	}
}

func newOpenAIClient(cfg Config) (Client, error) {
	config, err := openAIConfig(cfg.Provider, cfg.APIKey, cfg.BaseURL, cfg.APIVersion)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
		if strings.EqualFold(cfg.Provider, "ollama") {
			model = defaultOllamaModel
		}
	}

	return &openAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: float32(cfg.temperature()),
		maxTokens:   cfg.maxTokens(),
	}, nil
}

// Generate sends a single-turn chat completion.
func (c *openAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// openAIEmbedder implements Embedder with the embeddings endpoint.
type openAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	// requested is sent as the output size when set explicitly.
	requested int
}

func newOpenAIEmbedder(cfg EmbeddingConfig) (Embedder, error) {
	config, err := openAIConfig(cfg.Provider, cfg.APIKey, cfg.BaseURL, cfg.APIVersion)
	if err != nil {
		return nil, err
	}

	model := openai.AdaEmbeddingV2
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = defaultDimensions
	}

	return &openAIEmbedder{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: dims,
		requested:  max(cfg.Dimensions, 0),
	}, nil
}

// Embed embeds texts in one request, preserving input order.
func (e *openAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, e.request(texts))
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (e *openAIEmbedder) request(texts []string) openai.EmbeddingRequest {
	return openai.EmbeddingRequest{
		Input:      texts,
		Model:      e.model,
		Dimensions: e.requested,
	}
}

// Dimensions returns the configured vector size.
func (e *openAIEmbedder) Dimensions() int {
	return e.dimensions
}

// classifyOpenAIError maps HTTP failures onto the retry taxonomy: 429 is a
// rate limit, other 4xx responses are permanent, everything else retries.
func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case status >= 400 && status < 500:
		return common.Permanent(err)
	default:
		return err
	}
}
