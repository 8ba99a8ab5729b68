package storage

import (
	"container/heap"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
)

// Upsert writes records atomically. Embeddings are normalized on insert so
// the dot product at query time equals cosine similarity.
func (s *SQLiteStorage) Upsert(ctx context.Context, records []service.VectorRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		if err := validateVectorRecord(&records[i]); err != nil {
			return fmt.Errorf("record at index %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO regulation_vectors (id, namespace, text, source_document, page, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(namespace, id) DO UPDATE SET
			text=excluded.text,
			source_document=excluded.source_document,
			page=excluded.page,
			embedding=excluded.embedding,
			dimensions=excluded.dimensions
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		normalized := normalize(rec.Embedding)
		if _, err := stmt.ExecContext(ctx,
			rec.Chunk.ID,
			rec.Chunk.Namespace,
			rec.Chunk.Text,
			rec.Chunk.SourceDocument,
			rec.Chunk.Page,
			float32ToBlob(normalized),
			len(normalized),
		); err != nil {
			return fmt.Errorf("failed to upsert vector %s: %w", rec.Chunk.ID, err)
		}
	}

	return tx.Commit()
}

// Query returns the top-k chunks in namespace by cosine similarity. Stored
// vectors whose dimensionality differs from the query are skipped; when the
// namespace holds vectors but none of the query's size, the result is an
// error wrapping common.ErrDimensionMismatch rather than an empty list.
func (s *SQLiteStorage) Query(ctx context.Context, namespace string, vector []float32, k int) (model.RegulationMatches, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(namespace, "namespace"); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidQueryArg, k)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", ErrInvalidQueryArg)
	}

	query := normalize(vector)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, source_document, page, embedding, dimensions
		FROM regulation_vectors
		WHERE namespace = ? AND dimensions = ?
	`, namespace, len(query))
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	h := &matchHeap{}
	heap.Init(h)
	for rows.Next() {
		var (
			chunk model.RegulationChunk
			blob  []byte
			dims  int
		)
		if err := rows.Scan(&chunk.ID, &chunk.Text, &chunk.SourceDocument, &chunk.Page, &blob, &dims); err != nil {
			return nil, fmt.Errorf("failed to scan vector: %w", err)
		}
		chunk.Namespace = namespace

		score := dotProduct(query, blobToFloat32(blob, dims))
		if h.Len() < k {
			heap.Push(h, model.RegulationMatch{Chunk: chunk, Score: score})
		} else if score > (*h)[0].Score {
			(*h)[0] = model.RegulationMatch{Chunk: chunk, Score: score}
			heap.Fix(h, 0)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vectors: %w", err)
	}
	_ = rows.Close()

	if h.Len() == 0 {
		if err := s.checkDimensions(ctx, namespace, len(query)); err != nil {
			return nil, err
		}
	}

	results := make(model.RegulationMatches, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(h).(model.RegulationMatch)
	}
	return results, nil
}

// checkDimensions reports a mismatch when namespace holds vectors of a size
// other than dims.
func (s *SQLiteStorage) checkDimensions(ctx context.Context, namespace string, dims int) error {
	var stored int
	err := s.db.QueryRowContext(ctx, `
		SELECT dimensions FROM regulation_vectors
		WHERE namespace = ? AND dimensions != ?
		LIMIT 1
	`, namespace, dims).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check vector dimensions: %w", err)
	}
	return fmt.Errorf("%w: namespace %s stores %d-dimensional vectors, query has %d",
		common.ErrDimensionMismatch, namespace, stored, dims)
}

// ListNamespaces returns every namespace holding at least one vector.
func (s *SQLiteStorage) ListNamespaces(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT namespace FROM regulation_vectors ORDER BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var namespaces []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("failed to scan namespace: %w", err)
		}
		namespaces = append(namespaces, ns)
	}
	return namespaces, rows.Err()
}

// DeleteNamespace removes all vectors in namespace.
func (s *SQLiteStorage) DeleteNamespace(ctx context.Context, namespace string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(namespace, "namespace"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM regulation_vectors WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("failed to delete namespace %s: %w", namespace, err)
	}
	return nil
}

// DeleteIDs removes the given vectors from namespace. Unknown IDs are ignored.
func (s *SQLiteStorage) DeleteIDs(ctx context.Context, namespace string, ids []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(namespace, "namespace"); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, namespace)
	for _, id := range ids {
		args = append(args, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // placeholders are generated, values are bound
	query := `DELETE FROM regulation_vectors WHERE namespace = ? AND id IN (` + placeholders + `)`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete vectors: %w", err)
	}
	return nil
}

// CountVectors returns the number of vectors stored in namespace.
func (s *SQLiteStorage) CountVectors(ctx context.Context, namespace string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM regulation_vectors WHERE namespace = ?`, namespace).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return count, nil
}

// matchHeap is a min-heap on score for top-k selection.
type matchHeap []model.RegulationMatch

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *matchHeap) Push(x any)        { *h = append(*h, x.(model.RegulationMatch)) }
func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func float32ToBlob(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func blobToFloat32(b []byte, dims int) []float32 {
	v := make([]float32, dims)
	for i := 0; i < dims && i*4+4 <= len(b); i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
