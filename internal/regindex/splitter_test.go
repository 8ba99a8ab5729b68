package regindex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/creditrag/internal/common"
)

func TestSplitter_ShortTextIsOneChunk(t *testing.T) {
	chunks := NewSplitter().Split("  Section 611. Procedure in case of disputed accuracy.  ")
	assert.Equal(t, []string{"Section 611. Procedure in case of disputed accuracy."}, chunks)
}

func TestSplitter_EmptyText(t *testing.T) {
	assert.Empty(t, NewSplitter().Split(""))
	assert.Empty(t, NewSplitter().Split("\n\n  \n"))
}

func TestSplitter_RespectsSizeAndOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("The furnisher must report accurate information. ")
	}
	text := sb.String()

	s := &Splitter{ChunkSize: 200, ChunkOverlap: 50, Separators: DefaultSeparators}
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), 200, "chunk %d too long", i)
		assert.NotEmpty(t, c)
	}
	// consecutive chunks share text
	tail := chunks[0][len(chunks[0])-20:]
	assert.Contains(t, chunks[1], strings.TrimSpace(tail))
}

func TestSplitter_PrefersParagraphs(t *testing.T) {
	s := &Splitter{ChunkSize: 40, ChunkOverlap: 0, Separators: DefaultSeparators}
	chunks := s.Split("First paragraph is here.\n\nSecond paragraph is here.")
	assert.Equal(t, []string{"First paragraph is here.", "Second paragraph is here."}, chunks)
}

func TestSplitter_FallsBackToCharacters(t *testing.T) {
	s := &Splitter{ChunkSize: 4, ChunkOverlap: 0, Separators: DefaultSeparators}
	chunks := s.Split("abcdefghij")
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, chunks)
}

func TestLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fdcpa.txt")
	require.NoError(t, os.WriteFile(path, []byte("Page one text.\fPage two text."), 0o600))

	chunks, err := LoadDocument(path, "FDCPA", nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Equal(t, "Page two text.", chunks[1].Text)
	assert.Equal(t, path, chunks[1].SourceDocument)
	assert.Equal(t, "FDCPA", chunks[1].Namespace)

	_, err = LoadDocument(filepath.Join(t.TempDir(), "missing.txt"), "FDCPA", nil)
	assert.Error(t, err)
}

func TestUserNamespace(t *testing.T) {
	assert.Equal(t, "credit-reports-jane_dot_doe_at_example_dot_com", UserNamespace(" Jane.Doe@Example.com "))
}

func TestSplitter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "defaults", size: DefaultChunkSize, overlap: DefaultChunkOverlap},
		{name: "no overlap", size: 10, overlap: 0},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative size", size: -5, overlap: 0, wantErr: true},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: true},
		{name: "negative overlap", size: 100, overlap: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Splitter{ChunkSize: tt.size, ChunkOverlap: tt.overlap}).Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInputValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadDocument_RejectsInvalidSplitter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fcra.txt")
	require.NoError(t, os.WriteFile(path, []byte("Section 611. Procedure in case of disputed accuracy."), 0o600))

	_, err := LoadDocument(path, "FCRA", &Splitter{ChunkSize: 0})
	assert.ErrorIs(t, err, common.ErrInputValidation)
}
