// Package apikey pre-flight checks exchange-rate API keys so that no
// provider quota is consumed on a key that cannot possibly succeed.
package apikey

import (
	"errors"
	"regexp"
)

var (
	// ErrMissingAPIKey is returned when no key was supplied.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrMalformedAPIKey is returned when the key does not match the
	// provider's key shape.
	ErrMalformedAPIKey = errors.New("malformed API key")
)

// Provider keys are 24 lowercase hex characters.
var keyPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// Validate checks the key's shape without any network access.
func Validate(key string) error {
	if key == "" {
		return ErrMissingAPIKey
	}
	if !keyPattern.MatchString(key) {
		return ErrMalformedAPIKey
	}
	return nil
}

// Mask returns a redacted form of the key safe for log fields.
func Mask(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
