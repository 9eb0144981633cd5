package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultCurrency is applied when an expense is created without a currency.
const DefaultCurrency = "RUB"

// Expense is the money spent on a task. A task has at most one expense.
type Expense struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	AmountMinor int64     `json:"amount_minor"` // hundredths of Currency
	Currency    string    `json:"currency"`
	SpentAt     time.Time `json:"spent_at"`
}

// Amount renders the amount as a decimal string with two fraction digits.
func (e *Expense) Amount() string {
	return FormatAmount(e.AmountMinor)
}

// FormatAmount renders minor units as "123.45".
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// ParseAmount converts a decimal string with at most two fraction digits to minor units.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > (1<<53)/100 {
		return 0, fmt.Errorf("amount out of range")
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)

	minor := units*100 + cents
	if neg {
		minor = -minor
	}
	return minor, nil
}
