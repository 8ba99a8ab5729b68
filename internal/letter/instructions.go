package letter

import (
	"fmt"
	"strings"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
)

// DefaultInstructions returns the built-in per-category prompt additions.
func DefaultInstructions() map[model.Category]string {
	return map[model.Category]string{
		model.CategoryDelinquentLate: "Replace the generic background paragraph with the specific reason given for each " +
			"late payment listed in the disputed items. Name each creditor and the date it last reported the account late.",
		model.CategoryDerogatory: "For each account, ask the bureau to obtain the furnisher's documentation supporting " +
			"the derogatory status and to delete any entry that cannot be verified.",
		model.CategoryInquiry: "State that the consumer did not authorize these inquiries and ask for proof of " +
			"permissible purpose, including any written consent, for each one.",
		model.CategoryPublicRecord: "Ask the bureau to identify the court or agency it used to verify each public " +
			"record and to delete any record it did not verify directly with that source.",
	}
}

// ParseInstructions converts category-name keyed overrides, as read from a
// configuration file, into instructions layered over the defaults. An empty
// value removes the default for that category.
func ParseInstructions(overrides map[string]string) (map[model.Category]string, error) {
	out := DefaultInstructions()
	for key, text := range overrides {
		category := model.ParseCategory(key)
		if category == model.CategoryUncategorized && !strings.EqualFold(strings.TrimSpace(key), string(category)) {
			return nil, fmt.Errorf("%w: unknown category %q in letter instructions", common.ErrInvalidConfig, key)
		}
		if text == "" {
			delete(out, category)
			continue
		}
		out[category] = text
	}
	return out, nil
}
