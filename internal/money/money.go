// Package money handles the currency-symbol-prefixed amount strings the
// platform stores ("₹45.00", "$12.5"). Amounts stay strings end to end;
// this package only validates and normalizes them.
package money

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Parse splits an amount string into its currency-symbol prefix and
// numeric value. The prefix may be empty. Thousands separators are
// tolerated and dropped.
func Parse(s string) (string, decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", decimal.Zero, ErrInvalidAmount
	}

	// The numeric part starts at a digit, a sign, or a bare decimal
	// point ("$.50"); a '.' inside a prefix like "Rs. " stays with it.
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsDigit(r) || r == '-' {
			break
		}
		if r == '.' {
			if next, _ := utf8.DecodeRuneInString(s[i+size:]); unicode.IsDigit(next) {
				break
			}
		}
		i += size
	}
	symbol := strings.TrimSpace(s[:i])
	number := strings.ReplaceAll(strings.TrimSpace(s[i:]), ",", "")

	value, err := decimal.NewFromString(number)
	if err != nil {
		return "", decimal.Zero, ErrInvalidAmount
	}
	if value.IsNegative() {
		return "", decimal.Zero, ErrInvalidAmount
	}
	return symbol, value, nil
}

// Normalize re-renders an amount with two decimal places, keeping its
// currency-symbol prefix ("₹45.5" -> "₹45.50").
func Normalize(s string) (string, error) {
	symbol, value, err := Parse(s)
	if err != nil {
		return "", err
	}
	return symbol + value.StringFixed(2), nil
}
