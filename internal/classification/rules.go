// Package classification decides which dispute category a credit-report line
// item falls into and which category a batch of disputed items resolves to.
package classification

import (
	"fmt"
	"strings"

	"github.com/Veraticus/creditrag/internal/model"
)

// currentThreshold is the largest payment_days value still considered current.
const currentThreshold = 30

// Remark values with special meaning for derogatory accounts.
const (
	remarkValid = "valid"
)

// derogatoryKeywords mark an entry as derogatory when found in the status or
// remark, whatever the status itself says.
var derogatoryKeywords = []string{"charge-off", "collection", "repossession", "foreclosure", "settled"}

// Rule is one entry in the ordered classification table. A rule applies when
// the normalized status equals one of Statuses or when any of Keywords occurs
// in the status or remark.
type Rule struct {
	Decide   func(in normalizedItem) (model.Category, string)
	Name     string
	Statuses []string
	Keywords []string
}

func (r Rule) matches(in normalizedItem) bool {
	for _, s := range r.Statuses {
		if in.status == s {
			return true
		}
	}
	return firstKeyword(in, r.Keywords) != ""
}

// normalizedItem is a line item with case and spacing folded away.
type normalizedItem struct {
	days   *int
	status string
	remark string
}

func normalize(item model.LineItem) normalizedItem {
	fold := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.ReplaceAll(s, "_", " ")
		return strings.Join(strings.Fields(s), " ")
	}
	return normalizedItem{
		status: fold(item.AccountStatus),
		remark: fold(item.Remark()),
		days:   item.PaymentDays,
	}
}

// DefaultRules returns the rule table in evaluation order. The first matching
// rule decides; anything unmatched falls through to Derogatory.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "closed-or-paid",
			Statuses: []string{"closed", "paid"},
			Decide: func(normalizedItem) (model.Category, string) {
				return model.CategoryPositive, "Account is closed or paid; no dispute needed"
			},
		},
		{
			Name:     "open",
			Statuses: []string{"open"},
			Decide: func(in normalizedItem) (model.Category, string) {
				switch {
				case in.days == nil:
					return model.CategoryDelinquentLate, "Open account with no payment history reported; treated as not current"
				case *in.days <= currentThreshold:
					return model.CategoryPositive, fmt.Sprintf("Open account is current (%d days)", *in.days)
				default:
					return model.CategoryDelinquentLate, fmt.Sprintf("Open account is %d days past due", *in.days)
				}
			},
		},
		{
			Name:     "derogatory",
			Statuses: []string{"derogatory"},
			Decide: func(in normalizedItem) (model.Category, string) {
				switch in.remark {
				case "":
					return model.CategoryDerogatory, "Derogatory account with no creditor remark; dispute required"
				case remarkValid:
					return model.CategoryPositive, "Creditor remark confirms the derogatory entry is valid; no letter needed"
				default:
					return model.CategoryDerogatory, fmt.Sprintf("Derogatory account with creditor remark %q; dispute required", in.remark)
				}
			},
		},
		{
			Name:     "inquiry",
			Statuses: []string{"inquiry"},
			Decide: func(normalizedItem) (model.Category, string) {
				return model.CategoryInquiry, "Hard inquiry on file; request proof of permissible purpose"
			},
		},
		{
			Name:     "public-record",
			Statuses: []string{"public record"},
			Decide: func(normalizedItem) (model.Category, string) {
				return model.CategoryPublicRecord, "Public record on file; request verification of the filing"
			},
		},
		{
			Name:     "derogatory-keyword",
			Keywords: derogatoryKeywords,
			Decide: func(in normalizedItem) (model.Category, string) {
				return model.CategoryDerogatory, fmt.Sprintf("Account reports %s; dispute required", firstKeyword(in, derogatoryKeywords))
			},
		},
	}
}

// fallbackDecision applies when no rule matches. Unknown statuses are flagged
// for review rather than silently cleared.
func fallbackDecision(in normalizedItem) (model.Category, string) {
	return model.CategoryDerogatory, fmt.Sprintf("Unrecognized account status %q; flagged for review", in.status)
}

func firstKeyword(in normalizedItem, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(in.status, kw) || strings.Contains(in.remark, kw) {
			return kw
		}
	}
	return ""
}
