package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// User-entered amounts arrive as free text from the item form.
// Integral float forms such as "3.0" are accepted, so parsing goes
// through decimal rather than strconv.

// IsNaturalAmount reports whether s is an integral number >= 0.
func IsNaturalAmount(s string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return d.IsInteger() && d.Sign() >= 0
}

// IsPositiveAmount reports whether s is an integral number > 0.
func IsPositiveAmount(s string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return d.IsInteger() && d.Sign() > 0
}

// ParsePrice converts an item price entered by a user. Prices must be
// positive integers.
func ParsePrice(s string) (int64, error) {
	if !IsPositiveAmount(s) {
		return 0, &ValidationError{Field: "price", Value: s, Rule: "must be a positive integer"}
	}
	d, _ := decimal.NewFromString(strings.TrimSpace(s))
	return d.IntPart(), nil
}

// ParseQuantity converts a quantity entered by a user. Quantities are
// natural numbers; zero means removal.
func ParseQuantity(s string) (int64, error) {
	if !IsNaturalAmount(s) {
		return 0, &ValidationError{Field: "quantity", Value: s, Rule: "must be a natural number"}
	}
	d, _ := decimal.NewFromString(strings.TrimSpace(s))
	return d.IntPart(), nil
}
