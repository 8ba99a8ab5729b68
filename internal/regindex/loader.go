package regindex

import (
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/creditrag/internal/model"
)

// pageBreak separates pages in plain-text regulation exports.
const pageBreak = "\f"

// LoadDocument reads a plain-text or markdown regulation file and splits it
// into chunks. Pages are separated by form feeds and numbered from 1; the
// path is recorded as each chunk's source document.
func LoadDocument(path, namespace string, splitter *Splitter) ([]model.RegulationChunk, error) {
	if splitter != nil {
		if err := splitter.Validate(); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied corpus path
	if err != nil {
		return nil, fmt.Errorf("failed to read regulation document: %w", err)
	}
	return SplitDocument(string(data), path, namespace, splitter), nil
}

// SplitDocument chunks already-loaded document text.
func SplitDocument(text, source, namespace string, splitter *Splitter) []model.RegulationChunk {
	if splitter == nil {
		splitter = NewSplitter()
	}

	var chunks []model.RegulationChunk
	for i, page := range strings.Split(text, pageBreak) {
		for _, piece := range splitter.Split(page) {
			chunks = append(chunks, model.RegulationChunk{
				Text:           piece,
				SourceDocument: source,
				Namespace:      namespace,
				Page:           i + 1,
			})
		}
	}
	return chunks
}

// UserNamespace derives the per-user namespace for uploaded reports, e.g.
// "Jane.Doe@Example.com" becomes "credit-reports-jane_dot_doe_at_example_dot_com".
func UserNamespace(email string) string {
	clean := strings.ToLower(strings.TrimSpace(email))
	clean = strings.ReplaceAll(clean, "@", "_at_")
	clean = strings.ReplaceAll(clean, ".", "_dot_")
	return "credit-reports-" + clean
}
