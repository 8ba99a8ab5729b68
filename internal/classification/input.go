package classification

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/model"
)

// paymentStatusDays maps the payment status labels found in bureau reports
// onto a days-late count.
var paymentStatusDays = map[string]int{
	"current":       0,
	"late 30 days":  30,
	"late 60 days":  60,
	"late 90 days":  90,
	"late 120 days": 120,
}

// ValidateItem checks the fields classification depends on.
func ValidateItem(item model.LineItem) error {
	if strings.TrimSpace(item.AccountStatus) == "" {
		return common.NewInputValidationError("account_status", "is required")
	}
	if item.PaymentDays != nil && *item.PaymentDays < 0 {
		return common.NewInputValidationError("payment_days", "must not be negative")
	}
	return nil
}

// ParsePaymentDays converts raw payment_days input into a day count. Empty
// input means the value is absent. Integers and bureau status labels such as
// "Current" or "Late 60 Days" are accepted.
func ParsePaymentDays(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "null") {
		return nil, nil
	}

	if days, ok := paymentStatusDays[strings.ToLower(strings.Join(strings.Fields(raw), " "))]; ok {
		return &days, nil
	}

	days, err := strconv.Atoi(raw)
	if err != nil {
		return nil, common.NewInputValidationError("payment_days", "must be an integer, got "+strconv.Quote(raw))
	}
	if days < 0 {
		return nil, common.NewInputValidationError("payment_days", "must not be negative")
	}
	return &days, nil
}

func withIndex(err error, index int) error {
	var verr *common.InputValidationError
	if errors.As(err, &verr) {
		indexed := *verr
		indexed.Index = index
		return &indexed
	}
	return err
}

// ItemInput is a line item as callers send it: payment_days may be a JSON
// number, a numeric string or a bureau status label.
type ItemInput struct {
	model.LineItem
	PaymentDays json.RawMessage `json:"payment_days"`
}

// ItemsFromInput converts raw inputs into line items, reporting the index of
// the first malformed payment_days.
func ItemsFromInput(inputs []ItemInput) ([]model.LineItem, error) {
	items := make([]model.LineItem, len(inputs))
	for i, in := range inputs {
		days, err := parseRawPaymentDays(in.PaymentDays)
		if err != nil {
			return nil, withIndex(err, i)
		}
		items[i] = in.LineItem
		items[i].PaymentDays = days
	}
	return items, nil
}

func parseRawPaymentDays(raw json.RawMessage) (*int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, common.NewInputValidationError("payment_days", "malformed string")
		}
	}
	return ParsePaymentDays(text)
}
