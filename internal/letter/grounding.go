package letter

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/creditrag/internal/model"
)

// Default grounding settings.
var DefaultGroundingNamespaces = []string{"FCRA", "FDCPA", "METRO2"}

const DefaultGroundingK = 3

// GroundingQuery builds the retrieval query for a letter from its category
// and account details.
func GroundingQuery(category model.Category, details model.AccountDetails) string {
	parts := []string{fmt.Sprintf("%s credit report dispute", category.Label())}
	for _, key := range details.SortedKeys() {
		if v := strings.TrimSpace(details[key]); v != "" {
			parts = append(parts, key+": "+v)
		}
	}
	return strings.Join(parts, "; ")
}

// retrieveGrounding searches every grounding namespace and keeps the best k
// matches overall. A failing namespace is skipped.
func (s *Synthesizer) retrieveGrounding(ctx context.Context, query string) model.RegulationMatches {
	if s.searcher == nil {
		return nil
	}

	var all model.RegulationMatches
	for _, ns := range s.namespaces {
		hits, err := s.searcher.SimilaritySearch(ctx, query, ns, s.k)
		if err != nil {
			s.logger.Warn("Grounding retrieval failed, continuing without it",
				"namespace", ns,
				"error", err)
			continue
		}
		all = append(all, hits...)
	}
	all.Sort()
	return all.TopN(s.k)
}

// FormatGrounding renders matches as numbered excerpts with provenance.
func FormatGrounding(matches model.RegulationMatches) string {
	blocks := make([]string, 0, len(matches))
	for i, m := range matches {
		source := m.Chunk.SourceDocument
		if source == "" {
			source = "unknown source"
		}
		header := fmt.Sprintf("[%d] %s, %s", i+1, m.Chunk.Namespace, source)
		if m.Chunk.Page > 0 {
			header += fmt.Sprintf(", page %d", m.Chunk.Page)
		}
		blocks = append(blocks, fmt.Sprintf("%s (relevance %.2f)\n%s", header, m.Score, strings.TrimSpace(m.Chunk.Text)))
	}
	return strings.Join(blocks, "\n\n")
}
