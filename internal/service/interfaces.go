// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/creditrag/internal/model"
)

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Generator produces free-form text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ExternalClassifier is the optional second opinion consulted by the
// account classifier.
type ExternalClassifier interface {
	ClassifyItem(ctx context.Context, item model.LineItem) (model.ClassificationResult, error)
}

// VectorRecord is one stored regulation chunk with its embedding.
type VectorRecord struct {
	Chunk     model.RegulationChunk
	Embedding []float32
}

// VectorStore persists regulation embeddings partitioned by namespace.
type VectorStore interface {
	Upsert(ctx context.Context, records []VectorRecord) error
	Query(ctx context.Context, namespace string, vector []float32, k int) (model.RegulationMatches, error)
	ListNamespaces(ctx context.Context) ([]string, error)
	DeleteNamespace(ctx context.Context, namespace string) error
	DeleteIDs(ctx context.Context, namespace string, ids []string) error
}

// RegulationSearcher is the read side of the regulation index.
type RegulationSearcher interface {
	SimilaritySearch(ctx context.Context, query, namespace string, k int) (model.RegulationMatches, error)
}

// TemplateStore resolves letter templates by identifier.
type TemplateStore interface {
	Load(ctx context.Context, id string) (*model.Template, error)
}

// Recorder persists dispute records for audit.
type Recorder interface {
	SaveDisputeRecord(ctx context.Context, record *model.DisputeRecord) error
	ListDisputeRecords(ctx context.Context, limit int) ([]model.DisputeRecord, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
