package model

// Source records which path produced a classification.
type Source string

// Classification source constants.
const (
	SourceRule     Source = "rule"
	SourceExternal Source = "external"
	SourceMerged   Source = "merged"
)

// ClassificationResult is the outcome of classifying one line item.
// Category is always one of AllCategories.
type ClassificationResult struct {
	Category Category `json:"category"`
	Reason   string   `json:"reason"`
	Source   Source   `json:"source"`
}

// NeedsLetter reports whether the item warrants a dispute letter. Anything
// that is not positively cleared is treated as needing review.
func (r ClassificationResult) NeedsLetter() bool {
	return r.Category != CategoryPositive
}
