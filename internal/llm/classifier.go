package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
)

const defaultTimeout = 30 * time.Second

// Classifier asks a generative model for a second opinion on a line item.
// It implements service.ExternalClassifier.
type Classifier struct {
	client      Client
	cache       VerdictCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
	timeout     time.Duration
}

// NewClassifier wraps client with rate limiting, retries and a verdict cache.
// A nil cache selects an in-memory cache with cfg.CacheTTL.
func NewClassifier(client Client, cfg Config, cache VerdictCache, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = NewMemoryCache(cfg.CacheTTL)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Classifier{
		client:      client,
		cache:       cache,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		timeout:     timeout,
	}
}

// ClassifyItem returns the model's verdict. Output that cannot be parsed
// yields an Uncategorized result rather than an error; only transport
// failures and cancellation are returned as errors.
func (c *Classifier) ClassifyItem(ctx context.Context, item model.LineItem) (model.ClassificationResult, error) {
	key := cacheKey(item)
	if v, ok := c.cache.Get(ctx, key); ok {
		c.logger.Debug("verdict cache hit", "account_status", item.AccountStatus)
		return verdictResult(v), nil
	}

	if err := c.rateLimiter.wait(ctx); err != nil {
		return uncategorized(), err
	}

	prompt := buildClassificationPrompt(item)
	var raw string
	err := common.WithRetry(ctx, func() error {
		return common.WithTimeout(ctx, c.timeout, func(ctx context.Context) error {
			out, genErr := c.client.Generate(ctx, prompt)
			if genErr != nil {
				return genErr
			}
			raw = out
			return nil
		})
	}, c.retryOpts)
	if err != nil {
		return uncategorized(), fmt.Errorf("external classification: %w", err)
	}

	v, err := ParseVerdict(raw)
	if err != nil {
		c.logger.Warn("Discarding unparseable classifier output",
			"account_status", item.AccountStatus,
			"error", err)
		return verdictResult(v), nil
	}

	c.cache.Set(ctx, key, v)
	c.logger.Debug("external verdict",
		"account_status", item.AccountStatus,
		"category", v.Category)
	return verdictResult(v), nil
}

// Close stops background goroutines and releases the cache.
func (c *Classifier) Close() error {
	c.rateLimiter.Close()
	return c.cache.Close()
}

func verdictResult(v Verdict) model.ClassificationResult {
	return model.ClassificationResult{
		Category: model.ParseCategory(v.Category),
		Reason:   v.Reason,
		Source:   model.SourceExternal,
	}
}

func uncategorized() model.ClassificationResult {
	return verdictResult(fallbackVerdict())
}

// buildClassificationPrompt asks for a single JSON object naming one of the
// known categories.
func buildClassificationPrompt(item model.LineItem) string {
	days := "not reported"
	if item.PaymentDays != nil {
		days = fmt.Sprintf("%d", *item.PaymentDays)
	}
	remark := "none"
	if r := strings.TrimSpace(item.Remark()); r != "" {
		remark = r
	}

	var sb strings.Builder
	sb.WriteString("You review consumer credit report entries and decide whether they need a dispute letter.\n\n")
	sb.WriteString("Classify the account below into exactly one of these categories:\n")
	for _, c := range model.AllCategories {
		if c == model.CategoryUncategorized {
			continue
		}
		fmt.Fprintf(&sb, "- %s\n", c)
	}
	sb.WriteString("\nGuidance:\n")
	sb.WriteString("- Closed or paid accounts are Positive.\n")
	sb.WriteString("- Open accounts more than 30 days late are Delinquent_Late.\n")
	sb.WriteString("- Charge-offs, collections, repossessions, foreclosures and settlements are Derogatory.\n")
	sb.WriteString("- When in doubt, choose the category that leads to a dispute.\n\n")
	fmt.Fprintf(&sb, "Account status: %s\nPayment days late: %s\nCreditor remark: %s\n\n", item.AccountStatus, days, remark)
	sb.WriteString(`Respond with ONLY a JSON object of the form {"category": "<category>", "reason": "<one sentence>"}.`)
	return sb.String()
}
