package engine

import (
	"context"

	"github.com/Veraticus/creditrag/internal/model"
)

// Classifier defines the contract for line-item classification.
type Classifier interface {
	ClassifyItem(ctx context.Context, item model.LineItem) (model.ClassificationResult, error)
	ClassifyBatch(ctx context.Context, items []model.LineItem) ([]model.ClassificationResult, error)
}

// LetterGenerator drafts a dispute letter for a batch of items.
type LetterGenerator interface {
	Generate(ctx context.Context, details model.AccountDetails, category model.Category, items []model.LineItem) (string, error)
}

// ComplianceChecker scans text against the regulation rule table.
type ComplianceChecker interface {
	Check(ctx context.Context, text string) model.ComplianceReport
}
