package domain

import (
	"fmt"
	"time"

	"github.com/pricekit/localprice/pkg/currency"
)

// Validation errors, resolved locally before any network access and
// never retried.
var (
	// ErrInvalidPrice is returned when the base price is not a finite,
	// non-negative number.
	ErrInvalidPrice = fmt.Errorf("invalid price")
)

// GeolocationError is returned when the caller's currency cannot be
// resolved from its network origin, either because the transport
// failed or because the provider response lacked a usable currency
// field. Never cached: a transient failure must not be remembered for
// the location TTL.
type GeolocationError struct {
	Cause error
}

func (e *GeolocationError) Error() string {
	return "geolocation failed: " + e.Cause.Error()
}

func (e *GeolocationError) Unwrap() error {
	return e.Cause
}

// UnsupportedCurrencyError is returned when the rate provider is
// reachable but does not serve the target currency. Terminal and
// non-retryable; callers are expected to respond with a manual
// override.
type UnsupportedCurrencyError struct {
	Code currency.Code
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("currency %s not supported by rate provider", e.Code)
}

// RateLimitedError is returned when a provider signals quota
// exhaustion. RetryAfter is zero when the provider gave no hint.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by provider, retry after %s", e.RetryAfter)
	}
	return "rate limited by provider"
}

// RateProviderError is returned on any other transport or protocol
// failure while fetching exchange rates.
type RateProviderError struct {
	Cause error
}

func (e *RateProviderError) Error() string {
	return "rate provider failed: " + e.Cause.Error()
}

func (e *RateProviderError) Unwrap() error {
	return e.Cause
}
