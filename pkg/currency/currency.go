// Package currency provides the currency code value object.
//
// Invariants:
//   - A Code is stored and compared only in canonical uppercase form.
//   - Normalization is the single entry point for externally supplied
//     codes; everything downstream assumes canonical input.
package currency

import (
	"errors"
	"strings"
)

// ErrMalformedCurrencyCode is returned when a supplied code cannot be
// canonicalized into a 3-letter ISO 4217 code.
var ErrMalformedCurrencyCode = errors.New("malformed currency code")

// Code represents a canonical currency code (e.g., "USD", "EUR").
type Code string

// Common currency codes
const (
	USD Code = "USD" // US Dollar
	EUR Code = "EUR" // Euro
	JPY Code = "JPY" // Japanese Yen
	GBP Code = "GBP" // British Pound
	KWD Code = "KWD" // Kuwaiti Dinar
)

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the code is three uppercase ASCII letters.
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	return c[0] >= 'A' && c[0] <= 'Z' &&
		c[1] >= 'A' && c[1] <= 'Z' &&
		c[2] >= 'A' && c[2] <= 'Z'
}

// Normalize trims and uppercases an externally supplied currency code
// and validates the canonical form. All codes entering a cache key or a
// provider call go through here, so "usd", "USD" and " Usd " collapse
// to one entry.
func Normalize(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrMalformedCurrencyCode
	}
	return c, nil
}
