// Package core holds the finance tracker domain: transaction and account
// records, view parameters, and the derived view models the analytics
// engine produces.
//
// This file contains amount parsing helpers. Amounts are decimal values
// (shopspring/decimal) so that summing many small transactions never
// accumulates binary floating-point drift.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-supplied amount string to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Signs are rejected: amounts are magnitudes, the transaction type carries
// the direction. Zero is allowed (the input contract only requires
// non-negative).
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
