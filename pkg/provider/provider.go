// Package provider defines the contracts for the two external lookup
// services. Implementations live in infra/provider.
package provider

import (
	"context"

	"github.com/pricekit/localprice/pkg/currency"
)

// Geolocation resolves the caller's currency from its network origin.
type Geolocation interface {
	// Locate returns the currency code the provider associates with
	// the caller's network location. The code is not yet normalized.
	Locate(ctx context.Context) (string, error)

	// Name returns the provider's name for logging and identification.
	Name() string
}

// ExchangeRate fetches conversion rates with base as the pivot
// currency.
type ExchangeRate interface {
	// FetchRates returns the provider's full rate table for the pivot.
	// Implementations translate provider-specific quota and
	// unsupported-currency markers into the domain error types.
	FetchRates(ctx context.Context, base currency.Code, apiKey string) (map[currency.Code]float64, error)

	// Name returns the provider's name for logging and identification.
	Name() string
}
