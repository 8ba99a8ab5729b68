package testutil

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/OneOfOne/xxhash"
)

// FakeEmbedder produces deterministic bag-of-words vectors: every word is
// hashed into one of Dims buckets. Texts sharing words score as similar.
type FakeEmbedder struct {
	// Err, when set, is returned by the first FailCount calls (every call
	// if FailCount is zero).
	Err       error
	FailCount int
	Dims      int

	calls int
	mu    sync.Mutex
}

// NewFakeEmbedder creates a fake embedder with the given dimensionality.
func NewFakeEmbedder(dims int) *FakeEmbedder {
	return &FakeEmbedder{Dims: dims}
}

// Embed implements service.Embedder.
func (f *FakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil && (f.FailCount == 0 || call <= f.FailCount) {
		return nil, f.Err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = f.vector(text)
	}
	return vectors, nil
}

// Dimensions implements service.Embedder.
func (f *FakeEmbedder) Dimensions() int {
	return f.Dims
}

// Calls reports how many times Embed was invoked.
func (f *FakeEmbedder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeEmbedder) vector(text string) []float32 {
	vec := make([]float32, f.Dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := xxhash.NewS64(0)
		_, _ = h.Write([]byte(w))
		vec[h.Sum64()%uint64(f.Dims)]++ //nolint:gosec // Dims is positive
	}
	if len(words) == 0 {
		vec[0] = 1
	}
	return vec
}

// FakeGenerator returns a canned response and records every prompt.
type FakeGenerator struct {
	Err      error
	Response string

	prompts []string
	mu      sync.Mutex
}

// Generate implements service.Generator.
func (f *FakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// Prompts returns the prompts received so far.
func (f *FakeGenerator) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
