package model

import "strings"

// ItemType distinguishes the three kinds of credit-report entries.
type ItemType string

// Item type constants.
const (
	ItemTradeline    ItemType = "tradeline"
	ItemInquiry      ItemType = "inquiry"
	ItemPublicRecord ItemType = "public_record"
)

// ParseItemType maps loose item type text onto an ItemType. Anything that is
// not recognisably an inquiry or public record is a tradeline.
func ParseItemType(s string) ItemType {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_") {
	case "inquiry", "inquiries", "hard_inquiry":
		return ItemInquiry
	case "public_record", "public_records", "publicrecord":
		return ItemPublicRecord
	default:
		return ItemTradeline
	}
}

// LineItem is a single disputed entry from a credit report. The first four
// fields drive classification; the rest are only rendered into letters.
type LineItem struct {
	PaymentDays      *int     `json:"payment_days,omitempty"`
	CreditorRemark   *string  `json:"creditor_remark,omitempty"`
	AccountStatus    string   `json:"account_status"`
	ItemType         ItemType `json:"item_type"`
	Creditor         string   `json:"creditor,omitempty"`
	AccountNumber    string   `json:"account_number,omitempty"`
	LastReportedLate string   `json:"last_reported_late,omitempty"`
	Reason           string   `json:"reason,omitempty"`
	TypeOfBusiness   string   `json:"type_of_business,omitempty"`
	DateOfInquiry    string   `json:"date_of_inquiry,omitempty"`
	CreditBureau     string   `json:"credit_bureau,omitempty"`
}

// Remark returns the creditor remark or "" when absent.
func (li LineItem) Remark() string {
	if li.CreditorRemark == nil {
		return ""
	}
	return *li.CreditorRemark
}

// EffectiveType returns the item type, defaulting to tradeline when unset.
func (li LineItem) EffectiveType() ItemType {
	if li.ItemType == "" {
		return ItemTradeline
	}
	return ParseItemType(string(li.ItemType))
}
