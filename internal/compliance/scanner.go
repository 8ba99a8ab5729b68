package compliance

import (
	"context"
	"log/slog"

	"github.com/Veraticus/creditrag/internal/model"
	"github.com/Veraticus/creditrag/internal/service"
)

const (
	semanticK          = 2
	semanticExcerptMax = 200
)

// Scanner runs the pattern table and the semantic regulation lookup over a
// piece of text. The two paths are independent; only pattern hits affect
// the risk level.
type Scanner struct {
	searcher   service.RegulationSearcher
	logger     *slog.Logger
	rules      []compiledRule
	namespaces []string
}

// Config configures a Scanner. Empty Rules selects DefaultRules; empty
// Namespaces selects the namespaces named by the rules.
type Config struct {
	Rules      []Rule
	Namespaces []string
}

// NewScanner compiles the rule table. searcher may be nil, which disables
// the semantic path.
func NewScanner(searcher service.RegulationSearcher, cfg Config, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rules := cfg.Rules
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}

	namespaces := cfg.Namespaces
	if len(namespaces) == 0 {
		namespaces = ruleNamespaces(rules)
	}

	return &Scanner{
		searcher:   searcher,
		logger:     logger,
		rules:      compiled,
		namespaces: namespaces,
	}, nil
}

// Check scans text. It never fails: retrieval errors are logged and the
// affected namespace contributes no semantic matches.
func (s *Scanner) Check(ctx context.Context, text string) model.ComplianceReport {
	violations := s.detectViolations(text)
	return model.ComplianceReport{
		Violations:      violations,
		SemanticMatches: s.semanticMatches(ctx, text),
		RiskLevel:       RiskLevel(violations),
	}
}

func (s *Scanner) detectViolations(text string) []model.Violation {
	violations := []model.Violation{}
	for _, r := range s.rules {
		if r.re.MatchString(text) {
			violations = append(violations, model.Violation{
				Namespace:   r.Namespace,
				RuleID:      r.RuleID,
				Severity:    r.Severity,
				Description: r.Description,
			})
		}
	}
	return violations
}

func (s *Scanner) semanticMatches(ctx context.Context, text string) []model.SemanticMatch {
	matches := []model.SemanticMatch{}
	if s.searcher == nil {
		return matches
	}

	for _, ns := range s.namespaces {
		hits, err := s.searcher.SimilaritySearch(ctx, text, ns, semanticK)
		if err != nil {
			s.logger.Warn("Regulation lookup failed during compliance scan",
				"namespace", ns,
				"error", err)
			continue
		}
		for _, h := range hits {
			matches = append(matches, model.SemanticMatch{
				Namespace: ns,
				Content:   excerpt(h.Chunk.Text, semanticExcerptMax),
				Source:    h.Chunk.SourceDocument,
				Page:      h.Chunk.Page,
				Score:     h.Score,
			})
		}
	}
	return matches
}

// excerpt returns the first n characters of s.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
