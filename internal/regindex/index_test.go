package regindex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
	"github.com/Veraticus/creditrag/internal/testutil"
)

func fastOptions() Options {
	return Options{
		BatchSize:       50,
		MaxRetries:      3,
		RetryDelay:      1,
		InterBatchDelay: 0,
	}
}

// flakyStore fails every Upsert after the first failAfter calls.
type flakyStore struct {
	service.VectorStore
	failAfter int
	upserts   int
	mu        sync.Mutex
}

func (s *flakyStore) Upsert(ctx context.Context, records []service.VectorRecord) error {
	s.mu.Lock()
	s.upserts++
	n := s.upserts
	s.mu.Unlock()
	if n > s.failAfter {
		return errors.New("provider unavailable")
	}
	return s.VectorStore.Upsert(ctx, records)
}

func makeChunks(n int, source string) []model.RegulationChunk {
	chunks := make([]model.RegulationChunk, n)
	for i := range chunks {
		chunks[i] = model.RegulationChunk{
			Text:           fmt.Sprintf("section %d of %s about consumer reporting", i, source),
			SourceDocument: source,
			Page:           i/10 + 1,
		}
	}
	return chunks
}

func TestIndex_IngestAndSearchStayInNamespace(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ix := NewIndex(testutil.NewFakeEmbedder(64), store, fastOptions(), nil)
	ctx := context.Background()

	fcra := []model.RegulationChunk{
		{Text: "A consumer reporting agency shall conduct a reasonable reinvestigation", SourceDocument: "fcra.txt", Page: 7},
		{Text: "Permissible purposes of consumer reports", SourceDocument: "fcra.txt", Page: 3},
	}
	fdcpa := []model.RegulationChunk{
		{Text: "A debt collector may not communicate with a consumer at the consumer's place of employment", SourceDocument: "fdcpa.txt", Page: 2},
	}

	n, err := ix.Ingest(ctx, fcra, "FCRA")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = ix.Ingest(ctx, fdcpa, "FDCPA")
	require.NoError(t, err)

	matches, err := ix.SimilaritySearch(ctx, "reasonable reinvestigation by the consumer reporting agency", "FCRA", 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	got := make([]model.RegulationChunk, len(matches))
	for i, m := range matches {
		got[i] = m.Chunk
	}
	want := []model.RegulationChunk{
		{Text: fcra[0].Text, SourceDocument: "fcra.txt", Page: 7, Namespace: "FCRA"},
		{Text: fcra[1].Text, SourceDocument: "fcra.txt", Page: 3, Namespace: "FCRA"},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(model.RegulationChunk{}, "ID")); diff != "" {
		t.Errorf("SimilaritySearch() mismatch (-want +got):\n%s", diff)
	}
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
	assert.NotEmpty(t, matches[0].Chunk.ID)

	namespaces, err := ix.ListNamespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"FCRA", "FDCPA"}, namespaces)
}

func TestIndex_IngestBatches(t *testing.T) {
	store := testutil.SetupTestDB(t)
	embedder := testutil.NewFakeEmbedder(32)

	var progress []int
	opts := fastOptions()
	opts.OnBatch = func(_ string, committed, total int) {
		assert.Equal(t, 120, total)
		progress = append(progress, committed)
	}
	ix := NewIndex(embedder, store, opts, nil)

	n, err := ix.Ingest(context.Background(), makeChunks(120, "metro2.txt"), "METRO2")
	require.NoError(t, err)
	assert.Equal(t, 120, n)
	assert.Equal(t, []int{50, 100, 120}, progress)
	assert.Equal(t, 3, embedder.Calls())

	count, err := store.CountVectors(context.Background(), "METRO2")
	require.NoError(t, err)
	assert.Equal(t, 120, count)
}

func TestIndex_IngestRetriesTransientFailures(t *testing.T) {
	store := testutil.SetupTestDB(t)
	embedder := testutil.NewFakeEmbedder(16)
	embedder.Err = errors.New("rate limited")
	embedder.FailCount = 2

	ix := NewIndex(embedder, store, fastOptions(), nil)
	n, err := ix.Ingest(context.Background(), makeChunks(10, "fcra.txt"), "FCRA")
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, 3, embedder.Calls())
}

func TestIndex_IngestExhaustionPreservesCommittedBatches(t *testing.T) {
	base := testutil.SetupTestDB(t)
	store := &flakyStore{VectorStore: base, failAfter: 1}
	ix := NewIndex(testutil.NewFakeEmbedder(16), store, fastOptions(), nil)

	n, err := ix.Ingest(context.Background(), makeChunks(120, "fcra.txt"), "FCRA")
	require.Error(t, err)
	assert.Equal(t, 50, n)

	var batchErr *common.BatchIngestionError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, "FCRA", batchErr.Namespace)
	assert.Equal(t, 1, batchErr.Batch)
	assert.Len(t, batchErr.Committed, 50)
	assert.ErrorIs(t, err, common.ErrMaxRetries)

	// first batch plus three failed attempts; the third batch is never tried
	assert.Equal(t, 4, store.upserts)

	count, err := base.CountVectors(context.Background(), "FCRA")
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}

func TestIndex_Validation(t *testing.T) {
	ix := NewIndex(testutil.NewFakeEmbedder(8), testutil.SetupTestDB(t), fastOptions(), nil)
	ctx := context.Background()

	_, err := ix.Ingest(ctx, makeChunks(1, "x"), " ")
	assert.ErrorIs(t, err, common.ErrInputValidation)

	_, err = ix.SimilaritySearch(ctx, "q", "FCRA", 0)
	assert.ErrorIs(t, err, common.ErrInputValidation)

	err = ix.DeleteNamespace(ctx, "")
	assert.ErrorIs(t, err, common.ErrInputValidation)

	n, err := ix.Ingest(ctx, nil, "FCRA")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIndex_SearchFailureIsRetrievalError(t *testing.T) {
	embedder := testutil.NewFakeEmbedder(8)
	embedder.Err = errors.New("embedding service down")
	ix := NewIndex(embedder, testutil.SetupTestDB(t), fastOptions(), nil)

	_, err := ix.SimilaritySearch(context.Background(), "q", "FCRA", 2)
	assert.ErrorIs(t, err, common.ErrRetrieval)
}

func TestIndex_DeleteOperations(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ix := NewIndex(testutil.NewFakeEmbedder(16), store, fastOptions(), nil)
	ctx := context.Background()

	_, err := ix.Ingest(ctx, makeChunks(3, "a.txt"), "A")
	require.NoError(t, err)
	_, err = ix.Ingest(ctx, makeChunks(2, "b.txt"), "B")
	require.NoError(t, err)

	matches, err := ix.SimilaritySearch(ctx, "section", "A", 3)
	require.NoError(t, err)
	require.NoError(t, ix.DeleteIDs(ctx, []string{matches[0].Chunk.ID}, "A"))
	count, _ := store.CountVectors(ctx, "A")
	assert.Equal(t, 2, count)

	require.NoError(t, ix.DeleteNamespace(ctx, "B"))
	namespaces, err := ix.ListNamespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, namespaces)
}

func TestIndex_IngestCorpora(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ix := NewIndex(testutil.NewFakeEmbedder(16), store, fastOptions(), nil)

	counts, err := ix.IngestCorpora(context.Background(), map[string][]model.RegulationChunk{
		"FCRA":   makeChunks(60, "fcra.txt"),
		"FDCPA":  makeChunks(5, "fdcpa.txt"),
		"METRO2": makeChunks(1, "metro2.txt"),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"FCRA": 60, "FDCPA": 5, "METRO2": 1}, counts)
}

// namespaceFailStore rejects every Upsert into one namespace.
type namespaceFailStore struct {
	service.VectorStore
	failing string
}

func (s *namespaceFailStore) Upsert(ctx context.Context, records []service.VectorRecord) error {
	if len(records) > 0 && records[0].Chunk.Namespace == s.failing {
		return errors.New("provider unavailable")
	}
	return s.VectorStore.Upsert(ctx, records)
}

func TestIndex_IngestCorporaFailureDoesNotStopOtherNamespaces(t *testing.T) {
	base := testutil.SetupTestDB(t)
	store := &namespaceFailStore{VectorStore: base, failing: "FDCPA"}
	opts := fastOptions()
	opts.InterBatchDelay = 50 * time.Millisecond
	ix := NewIndex(testutil.NewFakeEmbedder(16), store, opts, nil)

	counts, err := ix.IngestCorpora(context.Background(), map[string][]model.RegulationChunk{
		"FCRA":  makeChunks(120, "fcra.txt"),
		"FDCPA": makeChunks(5, "fdcpa.txt"),
	})
	require.Error(t, err)

	var batchErr *common.BatchIngestionError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, "FDCPA", batchErr.Namespace)
	assert.Equal(t, map[string]int{"FCRA": 120, "FDCPA": 0}, counts)

	count, err := base.CountVectors(context.Background(), "FCRA")
	require.NoError(t, err)
	assert.Equal(t, 120, count)
}

// lyingEmbedder declares one size but returns vectors of another.
type lyingEmbedder struct {
	*testutil.FakeEmbedder
	declared int
}

func (e lyingEmbedder) Dimensions() int { return e.declared }

func TestIndex_DimensionMismatch(t *testing.T) {
	ctx := context.Background()

	t.Run("search with a different embedder size", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		_, err := NewIndex(testutil.NewFakeEmbedder(64), store, fastOptions(), nil).
			Ingest(ctx, makeChunks(5, "fcra.txt"), "FCRA")
		require.NoError(t, err)

		smaller := testutil.NewFakeEmbedder(32)
		_, err = NewIndex(smaller, store, fastOptions(), nil).SimilaritySearch(ctx, "section", "FCRA", 3)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrRetrieval)
		assert.ErrorIs(t, err, common.ErrDimensionMismatch)
		// one embed call, no retries of the store query
		assert.Equal(t, 1, smaller.Calls())

		hits, err := NewIndex(testutil.NewFakeEmbedder(64), store, fastOptions(), nil).
			SimilaritySearch(ctx, "section", "FCRA", 3)
		require.NoError(t, err)
		assert.Len(t, hits, 3)
	})

	t.Run("empty namespace is not a mismatch", func(t *testing.T) {
		ix := NewIndex(testutil.NewFakeEmbedder(32), testutil.SetupTestDB(t), fastOptions(), nil)
		hits, err := ix.SimilaritySearch(ctx, "section", "FCRA", 3)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("ingest rejects vectors of the wrong size", func(t *testing.T) {
		store := testutil.SetupTestDB(t)
		embedder := lyingEmbedder{FakeEmbedder: testutil.NewFakeEmbedder(16), declared: 32}
		n, err := NewIndex(embedder, store, fastOptions(), nil).Ingest(ctx, makeChunks(3, "fcra.txt"), "FCRA")
		require.Error(t, err)
		assert.Zero(t, n)

		var batchErr *common.BatchIngestionError
		require.ErrorAs(t, err, &batchErr)
		assert.ErrorIs(t, err, common.ErrDimensionMismatch)
		assert.NotErrorIs(t, err, common.ErrMaxRetries)
		assert.Equal(t, 1, embedder.Calls())

		count, err := store.CountVectors(ctx, "FCRA")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("search rejects a query vector of the wrong size", func(t *testing.T) {
		embedder := lyingEmbedder{FakeEmbedder: testutil.NewFakeEmbedder(16), declared: 32}
		_, err := NewIndex(embedder, testutil.SetupTestDB(t), fastOptions(), nil).SimilaritySearch(ctx, "q", "FCRA", 1)
		assert.ErrorIs(t, err, common.ErrRetrieval)
		assert.ErrorIs(t, err, common.ErrDimensionMismatch)
	})
}
