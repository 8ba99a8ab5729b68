package model

import (
	"slices"
	"sort"
)

// RegulationChunk is a span of regulation text with its provenance.
type RegulationChunk struct {
	ID             string `json:"id,omitempty"`
	Text           string `json:"text"`
	SourceDocument string `json:"source_document"`
	Namespace      string `json:"regulation_namespace"`
	Page           int    `json:"page"`
}

// RegulationMatch pairs a chunk with its similarity to a query.
type RegulationMatch struct {
	Chunk RegulationChunk `json:"chunk"`
	Score float64         `json:"score"`
}

// RegulationMatches supports ranking by score.
type RegulationMatches []RegulationMatch

// Len implements sort.Interface.
func (m RegulationMatches) Len() int {
	return len(m)
}

// Less implements sort.Interface - higher scores come first, ties by ID.
func (m RegulationMatches) Less(i, j int) bool {
	if m[i].Score != m[j].Score {
		return m[i].Score > m[j].Score
	}
	return m[i].Chunk.ID < m[j].Chunk.ID
}

// Swap implements sort.Interface.
func (m RegulationMatches) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}

// Sort sorts the matches by score in descending order.
func (m RegulationMatches) Sort() {
	sort.Stable(m)
}

// TopN returns the N highest-scoring matches as a new slice; m is left in
// its original order.
func (m RegulationMatches) TopN(n int) RegulationMatches {
	if n <= 0 {
		return RegulationMatches{}
	}
	sorted := slices.Clone(m)
	sorted.Sort()
	return sorted[:min(n, len(sorted))]
}
