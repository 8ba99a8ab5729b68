// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Category is the dispute category assigned to a credit-report line item.
type Category string

// Category constants. The set is closed; nothing outside it is ever returned
// by classification.
const (
	CategoryPositive       Category = "Positive"
	CategoryDerogatory     Category = "Derogatory"
	CategoryDelinquentLate Category = "Delinquent_Late"
	CategoryInquiry        Category = "Inquiry"
	CategoryPublicRecord   Category = "Public_Record"
	CategoryUncategorized  Category = "Uncategorized"
)

// AllCategories lists every valid category in priority order, highest first.
var AllCategories = []Category{
	CategoryPublicRecord,
	CategoryInquiry,
	CategoryDerogatory,
	CategoryDelinquentLate,
	CategoryPositive,
	CategoryUncategorized,
}

// categoryPriority is the total order used when a batch of items has to be
// reduced to a single letter category.
var categoryPriority = map[Category]int{
	CategoryPublicRecord:   5,
	CategoryInquiry:        4,
	CategoryDerogatory:     3,
	CategoryDelinquentLate: 2,
	CategoryPositive:       1,
}

// Priority returns the category's rank in the batch ordering. Uncategorized
// and unknown values rank 0.
func (c Category) Priority() int {
	return categoryPriority[c]
}

// IsValid reports whether c is one of the six known categories.
func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns a human readable form, e.g. "Delinquent / Late".
func (c Category) Label() string {
	return strings.ReplaceAll(string(c), "_", " / ")
}

// ParseCategory normalizes free-form category text into a Category.
// Matching ignores case, spaces, hyphens, slashes and a trailing "account"
// suffix so "delinquent/late", "public record" and "derogatory_account" all
// resolve. Unknown text yields CategoryUncategorized.
func ParseCategory(s string) Category {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "/", "", "_", "").Replace(key)
	key = strings.TrimSuffix(key, "account")

	switch key {
	case "positive":
		return CategoryPositive
	case "derogatory":
		return CategoryDerogatory
	case "delinquentlate", "delinquent", "late":
		return CategoryDelinquentLate
	case "inquiry", "inquiries":
		return CategoryInquiry
	case "publicrecord", "publicrecords":
		return CategoryPublicRecord
	default:
		return CategoryUncategorized
	}
}
