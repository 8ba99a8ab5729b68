// Package engine exposes the dispute workflow to callers: classification,
// category resolution, letter generation and compliance checks.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/creditrag/internal/classification"
	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
)

// Engine ties the dispute components together. Letters and recorder are
// optional.
type Engine struct {
	classifier Classifier
	letters    LetterGenerator
	compliance ComplianceChecker
	recorder   service.Recorder
	logger     *slog.Logger
}

// Config holds the engine's collaborators.
type Config struct {
	Classifier Classifier
	Letters    LetterGenerator
	Compliance ComplianceChecker
	Recorder   service.Recorder
	Logger     *slog.Logger
}

// New creates an engine. Classifier and Compliance are required.
func New(cfg Config) (*Engine, error) {
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("%w: engine requires a classifier", common.ErrMissingConfig)
	}
	if cfg.Compliance == nil {
		return nil, fmt.Errorf("%w: engine requires a compliance checker", common.ErrMissingConfig)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		classifier: cfg.Classifier,
		letters:    cfg.Letters,
		compliance: cfg.Compliance,
		recorder:   cfg.Recorder,
		logger:     cfg.Logger,
	}, nil
}

// Classify classifies one account.
func (e *Engine) Classify(ctx context.Context, accountStatus string, paymentDays *int, creditorRemark *string) (model.ClassificationResult, error) {
	item := model.LineItem{
		AccountStatus:  accountStatus,
		PaymentDays:    paymentDays,
		CreditorRemark: creditorRemark,
	}
	result, err := e.classifier.ClassifyItem(ctx, item)
	if err != nil {
		return result, err
	}
	e.recordClassification(ctx, item, result)
	return result, nil
}

// ClassifyBatch classifies items in order; an invalid item fails the batch
// before anything is recorded.
func (e *Engine) ClassifyBatch(ctx context.Context, items []model.LineItem) ([]model.ClassificationResult, error) {
	results, err := e.classifier.ClassifyBatch(ctx, items)
	if err != nil {
		return nil, err
	}
	for i, result := range results {
		e.recordClassification(ctx, items[i], result)
	}
	return results, nil
}

// ResolveCategory reduces disputed items to the letter category.
func (e *Engine) ResolveCategory(items []model.LineItem) model.Category {
	return classification.ResolveCategory(items)
}

// GenerateLetter drafts a letter. An empty category is resolved from the
// items first; any other text is normalized with model.ParseCategory, so an
// unknown category becomes Uncategorized and gets the generic template.
func (e *Engine) GenerateLetter(ctx context.Context, details model.AccountDetails, category model.Category, items []model.LineItem) (string, error) {
	if e.letters == nil {
		return "", fmt.Errorf("%w: letter generation is not configured", common.ErrMissingConfig)
	}
	batch := e.disputeBatch(category, items)

	text, err := e.letters.Generate(ctx, details, batch.Category, batch.Items)
	if err != nil {
		return "", err
	}

	record := &model.DisputeRecord{
		DisputeType:            batch.Category,
		DisputeLetterGenerated: true,
		DisputeLetter:          text,
	}
	if len(items) > 0 {
		record.AccountStatus = items[0].AccountStatus
		record.PaymentDays = items[0].PaymentDays
		record.CreditorRemark = items[0].CreditorRemark
	}
	e.save(ctx, record)
	return text, nil
}

func (e *Engine) disputeBatch(category model.Category, items []model.LineItem) model.DisputeBatch {
	if category == "" {
		batch := classification.NewDisputeBatch(items)
		e.logger.Debug("Resolved letter category", "category", batch.Category, "items", len(items))
		return batch
	}
	parsed := model.ParseCategory(string(category))
	if parsed != category {
		e.logger.Debug("Normalized letter category", "given", category, "category", parsed)
	}
	return model.DisputeBatch{Items: items, Category: parsed}
}

// CheckCompliance scans text for regulation violations.
func (e *Engine) CheckCompliance(ctx context.Context, text string) model.ComplianceReport {
	return e.compliance.Check(ctx, text)
}

// Records lists recorded dispute records, newest first.
func (e *Engine) Records(ctx context.Context, limit int) ([]model.DisputeRecord, error) {
	if e.recorder == nil {
		return nil, fmt.Errorf("%w: no dispute recorder configured", common.ErrMissingConfig)
	}
	return e.recorder.ListDisputeRecords(ctx, limit)
}

func (e *Engine) recordClassification(ctx context.Context, item model.LineItem, result model.ClassificationResult) {
	e.save(ctx, &model.DisputeRecord{
		AccountStatus:          item.AccountStatus,
		PaymentDays:            item.PaymentDays,
		CreditorRemark:         item.CreditorRemark,
		DisputeType:            result.Category,
		DisputeLetterGenerated: result.NeedsLetter(),
	})
}

// save never fails the caller; the record is an audit trail only.
func (e *Engine) save(ctx context.Context, record *model.DisputeRecord) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.SaveDisputeRecord(ctx, record); err != nil {
		e.logger.Warn("Failed to save dispute record",
			"dispute_type", record.DisputeType,
			"error", err)
	}
}
