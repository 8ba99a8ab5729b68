package model

import (
	"sort"
	"time"
)

// AccountDetails carries the consumer and bureau fields a letter is addressed
// with (name, address, bureau name, ...). It arrives fully formed; nothing in
// this module fills in missing identity data.
type AccountDetails map[string]string

// SortedKeys returns the detail keys in lexical order for stable rendering.
func (d AccountDetails) SortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DisputeBatch is the set of items one letter covers plus their overall category.
type DisputeBatch struct {
	Items    []LineItem
	Category Category
}

// Template is a letter template loaded from a template store.
type Template struct {
	ID      string
	Content string
}

// DisputeRecord is the persisted audit trail of a classification or letter.
type DisputeRecord struct {
	CreatedAt              time.Time `json:"created_at"`
	PaymentDays            *int      `json:"payment_days,omitempty"`
	CreditorRemark         *string   `json:"creditor_remark,omitempty"`
	AccountStatus          string    `json:"account_status"`
	DisputeType            Category  `json:"dispute_type"`
	DisputeLetter          string    `json:"dispute_letter,omitempty"`
	ID                     int64     `json:"id"`
	DisputeLetterGenerated bool      `json:"dispute_letter_generated"`
}
