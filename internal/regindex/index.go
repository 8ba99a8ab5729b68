// Package regindex maintains the namespaced regulation index used to ground
// dispute letters and to look up regulations related to compliance scans.
package regindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
)

// Options tunes ingestion pacing and remote call bounds.
type Options struct {
	// OnBatch is called after each committed batch.
	OnBatch         func(namespace string, committed, total int)
	BatchSize       int
	MaxRetries      int
	RetryDelay      time.Duration
	InterBatchDelay time.Duration
	Timeout         time.Duration
}

// DefaultOptions returns the ingestion defaults.
func DefaultOptions() Options {
	return Options{
		BatchSize:       50,
		MaxRetries:      3,
		RetryDelay:      2 * time.Second,
		InterBatchDelay: time.Second,
		Timeout:         30 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = d.RetryDelay
	}
	if o.InterBatchDelay < 0 {
		o.InterBatchDelay = 0
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	return o
}

// Index embeds regulation chunks and searches them by namespace. It is safe
// for concurrent use; callers must serialize mutations of a single namespace.
type Index struct {
	embedder service.Embedder
	store    service.VectorStore
	logger   *slog.Logger
	opts     Options
}

// NewIndex creates an index over the given embedder and vector store.
func NewIndex(embedder service.Embedder, store service.VectorStore, opts Options, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		embedder: embedder,
		store:    store,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

func (ix *Index) retryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  ix.opts.MaxRetries,
		InitialDelay: ix.opts.RetryDelay,
		MaxDelay:     ix.opts.RetryDelay * 8,
		Multiplier:   2,
	}
}

// call runs op with a per-attempt timeout and bounded retries.
func (ix *Index) call(ctx context.Context, op func(ctx context.Context) error) error {
	return common.WithRetry(ctx, func() error {
		return common.WithTimeout(ctx, ix.opts.Timeout, op)
	}, ix.retryOptions())
}

// Ingest embeds and stores chunks under namespace in fixed-size batches,
// sequentially, pausing between batches. Each chunk gets a fresh ID and is
// stamped with namespace. A batch that still fails after all retries aborts
// the call with *common.BatchIngestionError; batches committed before it
// stay indexed. The returned count is the number of chunks committed.
func (ix *Index) Ingest(ctx context.Context, chunks []model.RegulationChunk, namespace string) (int, error) {
	if strings.TrimSpace(namespace) == "" {
		return 0, common.NewInputValidationError("namespace", "is required")
	}

	committed := make([]string, 0, len(chunks))
	batches := (len(chunks) + ix.opts.BatchSize - 1) / ix.opts.BatchSize

	for b := 0; b < batches; b++ {
		start := b * ix.opts.BatchSize
		end := min(start+ix.opts.BatchSize, len(chunks))
		records := ix.prepareBatch(chunks[start:end], namespace)

		err := common.WithRetry(ctx, func() error {
			return ix.upsertBatch(ctx, records)
		}, ix.retryOptions())
		if err != nil {
			ix.logger.Error("Batch ingestion failed",
				"namespace", namespace,
				"batch", b,
				"committed", len(committed),
				"error", err)
			return len(committed), &common.BatchIngestionError{
				Namespace: namespace,
				Batch:     b,
				Committed: append([]string(nil), committed...),
				Err:       err,
			}
		}

		for _, rec := range records {
			committed = append(committed, rec.Chunk.ID)
		}
		ix.logger.Debug("Committed batch",
			"namespace", namespace,
			"batch", b,
			"size", len(records))
		if ix.opts.OnBatch != nil {
			ix.opts.OnBatch(namespace, len(committed), len(chunks))
		}

		if b < batches-1 && ix.opts.InterBatchDelay > 0 {
			select {
			case <-ctx.Done():
				return len(committed), ctx.Err()
			case <-time.After(ix.opts.InterBatchDelay):
			}
		}
	}

	ix.logger.Info("Ingested regulation chunks",
		"namespace", namespace,
		"chunks", len(committed))
	return len(committed), nil
}

func (ix *Index) prepareBatch(chunks []model.RegulationChunk, namespace string) []service.VectorRecord {
	records := make([]service.VectorRecord, len(chunks))
	for i, c := range chunks {
		c.ID = uuid.NewString()
		c.Namespace = namespace
		records[i] = service.VectorRecord{Chunk: c}
	}
	return records
}

// upsertBatch is one attempt: embed every text, then write once. A failed
// attempt writes nothing.
func (ix *Index) upsertBatch(ctx context.Context, records []service.VectorRecord) error {
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Chunk.Text
	}

	var vectors [][]float32
	err := common.WithTimeout(ctx, ix.opts.Timeout, func(ctx context.Context) error {
		var embedErr error
		vectors, embedErr = ix.embedder.Embed(ctx, texts)
		return embedErr
	})
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("embed batch: got %d vectors for %d chunks", len(vectors), len(records))
	}
	for i := range records {
		if err := ix.checkVector(vectors[i]); err != nil {
			return common.Permanent(fmt.Errorf("embed chunk %s: %w", records[i].Chunk.ID, err))
		}
		records[i].Embedding = vectors[i]
	}

	return common.WithTimeout(ctx, ix.opts.Timeout, func(ctx context.Context) error {
		if upsertErr := ix.store.Upsert(ctx, records); upsertErr != nil {
			return fmt.Errorf("upsert batch: %w", upsertErr)
		}
		return nil
	})
}

// IngestCorpora ingests several namespaces concurrently. Batches within one
// namespace stay sequential, and a failing namespace does not stop the
// others. Counts are returned per namespace, including partial counts for a
// namespace that failed; the error joins every namespace's failure.
func (ix *Index) IngestCorpora(ctx context.Context, corpora map[string][]model.RegulationChunk) (map[string]int, error) {
	var (
		mu     sync.Mutex
		counts = make(map[string]int, len(corpora))
		errs   []error
		g      errgroup.Group
	)

	for namespace, chunks := range corpora {
		g.Go(func() error {
			n, err := ix.Ingest(ctx, chunks, namespace)
			mu.Lock()
			defer mu.Unlock()
			counts[namespace] = n
			if err != nil {
				errs = append(errs, err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return counts, errors.Join(errs...)
}

// SimilaritySearch embeds query and returns the k nearest chunks stored in
// namespace, best first. Nothing from other namespaces is ever returned.
func (ix *Index) SimilaritySearch(ctx context.Context, query, namespace string, k int) (model.RegulationMatches, error) {
	if strings.TrimSpace(namespace) == "" {
		return nil, common.NewInputValidationError("namespace", "is required")
	}
	if k <= 0 {
		return nil, common.NewInputValidationError("k", "must be positive")
	}

	var vectors [][]float32
	err := ix.call(ctx, func(ctx context.Context) error {
		var embedErr error
		vectors, embedErr = ix.embedder.Embed(ctx, []string{query})
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", common.ErrRetrieval, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: embed query returned %d vectors", common.ErrRetrieval, len(vectors))
	}
	if err := ix.checkVector(vectors[0]); err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", common.ErrRetrieval, err)
	}

	var matches model.RegulationMatches
	err = ix.call(ctx, func(ctx context.Context) error {
		var queryErr error
		matches, queryErr = ix.store.Query(ctx, namespace, vectors[0], k)
		if errors.Is(queryErr, common.ErrDimensionMismatch) {
			return common.Permanent(queryErr)
		}
		return queryErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", common.ErrRetrieval, namespace, err)
	}

	// The store scopes by namespace; drop anything that slipped through.
	filtered := matches[:0]
	for _, m := range matches {
		if m.Chunk.Namespace == namespace {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// checkVector rejects vectors that do not match the embedder's declared size.
// An embedder reporting zero dimensions is not checked.
func (ix *Index) checkVector(v []float32) error {
	want := ix.embedder.Dimensions()
	if want > 0 && len(v) != want {
		return fmt.Errorf("%w: got %d values, embedder declares %d", common.ErrDimensionMismatch, len(v), want)
	}
	return nil
}

// ListNamespaces returns the namespaces holding vectors.
func (ix *Index) ListNamespaces(ctx context.Context) ([]string, error) {
	var namespaces []string
	err := ix.call(ctx, func(ctx context.Context) error {
		var listErr error
		namespaces, listErr = ix.store.ListNamespaces(ctx)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	return namespaces, nil
}

// DeleteNamespace removes every vector in namespace.
func (ix *Index) DeleteNamespace(ctx context.Context, namespace string) error {
	if strings.TrimSpace(namespace) == "" {
		return common.NewInputValidationError("namespace", "is required")
	}
	err := ix.call(ctx, func(ctx context.Context) error {
		return ix.store.DeleteNamespace(ctx, namespace)
	})
	if err != nil {
		return fmt.Errorf("delete namespace %s: %w", namespace, err)
	}
	ix.logger.Info("Deleted namespace", "namespace", namespace)
	return nil
}

// DeleteIDs removes specific vectors from namespace.
func (ix *Index) DeleteIDs(ctx context.Context, ids []string, namespace string) error {
	if strings.TrimSpace(namespace) == "" {
		return common.NewInputValidationError("namespace", "is required")
	}
	err := ix.call(ctx, func(ctx context.Context) error {
		return ix.store.DeleteIDs(ctx, namespace, ids)
	})
	if err != nil {
		return fmt.Errorf("delete ids from %s: %w", namespace, err)
	}
	return nil
}
