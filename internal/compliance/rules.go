// Package compliance scans collection and creditor text for likely FDCPA and
// FCRA issues and looks up the regulation passages it relates to.
package compliance

import (
	"fmt"
	"regexp"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
)

// Rule is one entry of the static violation table.
type Rule struct {
	Namespace   string
	RuleID      string
	Pattern     string
	Severity    model.Severity
	Description string
}

// DefaultRules returns the violation table. Every rule is checked on every scan.
func DefaultRules() []Rule {
	return []Rule{
		{
			Namespace:   "FDCPA",
			RuleID:      "harassment",
			Pattern:     `(contact|call).*work|threat|harass|abuse|repeated.*calls`,
			Severity:    model.SeverityHigh,
			Description: "Potential harassment or unfair practices",
		},
		{
			Namespace:   "FDCPA",
			RuleID:      "disclosure",
			Pattern:     `disclose.*debt|communicate.*third.*party`,
			Severity:    model.SeverityHigh,
			Description: "Unauthorized debt disclosure",
		},
		{
			Namespace:   "FCRA",
			RuleID:      "reporting",
			Pattern:     `accuracy|dispute|investigation|reinvestigation`,
			Severity:    model.SeverityMedium,
			Description: "Credit reporting accuracy requirements",
		},
		{
			Namespace:   "FCRA",
			RuleID:      "disclosure",
			Pattern:     `permissible.*purpose|written.*consent`,
			Severity:    model.SeverityHigh,
			Description: "Credit report access requirements",
		},
	}
}

type compiledRule struct {
	re *regexp.Regexp
	Rule
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := common.CompileInsensitive(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s/%s: %w", r.Namespace, r.RuleID, err)
		}
		compiled = append(compiled, compiledRule{Rule: r, re: re})
	}
	return compiled, nil
}

// ruleNamespaces lists the distinct namespaces of rules in table order.
func ruleNamespaces(rules []Rule) []string {
	seen := make(map[string]bool)
	var namespaces []string
	for _, r := range rules {
		if !seen[r.Namespace] {
			seen[r.Namespace] = true
			namespaces = append(namespaces, r.Namespace)
		}
	}
	return namespaces
}

// RiskLevel is HIGH if any violation is high severity, MEDIUM if any is
// medium, and LOW otherwise.
func RiskLevel(violations []model.Violation) model.RiskLevel {
	level := model.RiskLow
	for _, v := range violations {
		switch v.Severity {
		case model.SeverityHigh:
			return model.RiskHigh
		case model.SeverityMedium:
			level = model.RiskMedium
		}
	}
	return level
}
