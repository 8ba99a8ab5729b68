package classification

import (
	"strings"

	"github.com/Veraticus/creditrag/internal/model"
)

// keywordCategory maps reason keywords onto a category. Tables are checked
// in order, so derogatory language beats late-payment language.
type keywordCategory struct {
	category model.Category
	keywords []string
}

var reasonKeywords = []keywordCategory{
	{category: model.CategoryDerogatory, keywords: derogatoryKeywords},
	{category: model.CategoryDelinquentLate, keywords: []string{"late", "past due"}},
}

// ItemCategory derives the category of one disputed item. Inquiry and public
// record item types override whatever the dispute reason says.
func ItemCategory(item model.LineItem) model.Category {
	switch item.EffectiveType() {
	case model.ItemInquiry:
		return model.CategoryInquiry
	case model.ItemPublicRecord:
		return model.CategoryPublicRecord
	}

	reason := strings.ToLower(item.Reason)
	for _, kc := range reasonKeywords {
		for _, kw := range kc.keywords {
			if strings.Contains(reason, kw) {
				return kc.category
			}
		}
	}
	return model.CategoryPositive
}

// ResolveCategory reduces a batch of disputed items to the single category
// the letter is written for. It never returns Uncategorized; an empty batch
// resolves to Positive.
func ResolveCategory(items []model.LineItem) model.Category {
	resolved := model.CategoryPositive
	for _, item := range items {
		if c := ItemCategory(item); c.Priority() > resolved.Priority() {
			resolved = c
		}
	}
	return resolved
}

// NewDisputeBatch pairs items with their resolved category.
func NewDisputeBatch(items []model.LineItem) model.DisputeBatch {
	return model.DisputeBatch{
		Items:    items,
		Category: ResolveCategory(items),
	}
}
