package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Veraticus/creditrag/internal/common"
)

const (
	defaultGeminiModel     = "gemini-1.5-flash"
	defaultGeminiEmbedding = "text-embedding-004"
	geminiEmbeddingDims    = 768
)

// geminiClient implements Client for Google Gemini. Callers must Close it.
type geminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func newGeminiClient(ctx context.Context, cfg Config) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", common.ErrMissingConfig)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &geminiClient{
		client:      client,
		model:       model,
		temperature: float32(cfg.temperature()),
		maxTokens:   int32(cfg.maxTokens()), //nolint:gosec // bounded by config
	}, nil
}

// Generate produces content from a single text prompt.
func (c *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	model.SetMaxOutputTokens(c.maxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no response candidates or content")
	}
	return sb.String(), nil
}

// Close releases the underlying connection.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

// geminiEmbedder implements Embedder with Gemini embedding models.
type geminiEmbedder struct {
	client     *genai.Client
	model      string
	dimensions int
}

func newGeminiEmbedder(ctx context.Context, cfg EmbeddingConfig) (*geminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", common.ErrMissingConfig)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiEmbedding
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = geminiEmbeddingDims
	}

	return &geminiEmbedder{client: client, model: model, dimensions: dims}, nil
}

// Embed embeds each text in turn.
func (e *geminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		res, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		if res.Embedding == nil {
			return nil, fmt.Errorf("embed text %d: no embedding values", i)
		}
		vectors = append(vectors, res.Embedding.Values)
	}
	return vectors, nil
}

// Dimensions returns the configured vector size.
func (e *geminiEmbedder) Dimensions() int {
	return e.dimensions
}

// Close releases the underlying connection.
func (e *geminiEmbedder) Close() error {
	return e.client.Close()
}
