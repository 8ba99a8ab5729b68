package classification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
)

// AccountClassifier runs the rule table and optionally reconciles the result
// with an external classifier. The rule-based category always wins.
type AccountClassifier struct {
	external service.ExternalClassifier
	logger   *slog.Logger
	rules    []Rule
}

// Option configures an AccountClassifier.
type Option func(*AccountClassifier)

// WithExternal enables reconciliation against an external classifier.
func WithExternal(external service.ExternalClassifier) Option {
	return func(c *AccountClassifier) {
		c.external = external
	}
}

// WithLogger sets the logger used for degraded external calls.
func WithLogger(logger *slog.Logger) Option {
	return func(c *AccountClassifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRules replaces the rule table.
func WithRules(rules []Rule) Option {
	return func(c *AccountClassifier) {
		c.rules = rules
	}
}

// NewAccountClassifier creates a classifier using the default rule table.
func NewAccountClassifier(opts ...Option) *AccountClassifier {
	c := &AccountClassifier{
		rules:  DefaultRules(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify classifies a single account from its status, payment days and
// creditor remark.
func (c *AccountClassifier) Classify(ctx context.Context, accountStatus string, paymentDays *int, creditorRemark *string) (model.ClassificationResult, error) {
	return c.ClassifyItem(ctx, model.LineItem{
		AccountStatus:  accountStatus,
		PaymentDays:    paymentDays,
		CreditorRemark: creditorRemark,
	})
}

// ClassifyItem classifies a line item. The only error returned is an input
// validation error, raised before any remote call.
func (c *AccountClassifier) ClassifyItem(ctx context.Context, item model.LineItem) (model.ClassificationResult, error) {
	if err := ValidateItem(item); err != nil {
		return model.ClassificationResult{Category: model.CategoryUncategorized}, err
	}

	result := c.applyRules(item)
	if c.external == nil {
		return result, nil
	}

	external, err := c.external.ClassifyItem(ctx, item)
	if err != nil {
		c.logger.Warn("External classifier failed, keeping rule-based result",
			"account_status", item.AccountStatus,
			"error", err)
		return result, nil
	}

	return reconcile(result, external), nil
}

// ClassifyBatch classifies items in order. It stops at the first invalid
// item and reports its index.
func (c *AccountClassifier) ClassifyBatch(ctx context.Context, items []model.LineItem) ([]model.ClassificationResult, error) {
	for i, item := range items {
		if err := ValidateItem(item); err != nil {
			return nil, withIndex(err, i)
		}
	}

	results := make([]model.ClassificationResult, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("classify item %d: %w", i, err)
		}
		result, err := c.ClassifyItem(ctx, item)
		if err != nil {
			return nil, withIndex(err, i)
		}
		results = append(results, result)
	}
	return results, nil
}

func (c *AccountClassifier) applyRules(item model.LineItem) model.ClassificationResult {
	in := normalize(item)
	for _, rule := range c.rules {
		if rule.matches(in) {
			category, reason := rule.Decide(in)
			return model.ClassificationResult{Category: category, Reason: reason, Source: model.SourceRule}
		}
	}
	category, reason := fallbackDecision(in)
	return model.ClassificationResult{Category: category, Reason: reason, Source: model.SourceRule}
}

// reconcile merges an external verdict into the rule-based result. An
// Uncategorized or unknown external category is treated as no opinion.
func reconcile(rule, external model.ClassificationResult) model.ClassificationResult {
	category := model.ParseCategory(string(external.Category))
	if category == model.CategoryUncategorized {
		return rule
	}

	externalReason := strings.TrimSpace(external.Reason)
	if category == rule.Category {
		if externalReason == "" {
			return rule
		}
		return model.ClassificationResult{
			Category: rule.Category,
			Reason:   externalReason,
			Source:   model.SourceExternal,
		}
	}

	return model.ClassificationResult{
		Category: rule.Category,
		Reason:   fmt.Sprintf("Rule-based: %s | External: %s", rule.Reason, externalReason),
		Source:   model.SourceMerged,
	}
}
