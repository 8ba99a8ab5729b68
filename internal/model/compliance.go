package model

// Severity is the fixed ordinal attached to a compliance rule.
type Severity string

// Severity constants.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// RiskLevel summarises the worst severity found in a scan.
type RiskLevel string

// Risk level constants.
const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// Violation is a single pattern-rule hit.
type Violation struct {
	Namespace   string   `json:"regulation_namespace"`
	RuleID      string   `json:"rule_id"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// SemanticMatch is an informational regulation passage related to scanned text.
type SemanticMatch struct {
	Namespace string  `json:"regulation_namespace"`
	Content   string  `json:"content"`
	Source    string  `json:"source"`
	Page      int     `json:"page"`
	Score     float64 `json:"score"`
}

// ComplianceReport is the result of one compliance scan.
type ComplianceReport struct {
	Violations      []Violation     `json:"violations"`
	SemanticMatches []SemanticMatch `json:"semantic_matches"`
	RiskLevel       RiskLevel       `json:"risk_level"`
}
