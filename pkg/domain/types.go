// Package domain holds the core records produced by the resolvers and
// the typed failures they surface.
package domain

import (
	"time"

	"github.com/pricekit/localprice/pkg/currency"
)

// LocationRecord is the result of one successful geolocation lookup.
// Records are never mutated; a newer record supersedes the stored one
// once its TTL elapses. The persistent store is the sole owner.
type LocationRecord struct {
	CurrencyCode currency.Code `json:"currency_code"`
	ResolvedAt   time.Time     `json:"resolved_at"`
}

// Expired reports whether the record is older than ttl at the given
// instant.
func (r *LocationRecord) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(r.ResolvedAt) >= ttl
}

// RateRecord is the result of one successful exchange-rate lookup,
// keyed by the ordered (base, target) pair. Held only in process
// memory. A record for (A,B) says nothing about (B,A).
//
// Invariant: Rate > 0.
type RateRecord struct {
	BaseCurrency   currency.Code `json:"base_currency"`
	TargetCurrency currency.Code `json:"target_currency"`
	Rate           float64       `json:"rate"`
	ResolvedAt     time.Time     `json:"resolved_at"`
	Source         string        `json:"source"`
}

// Conversion is the terminal success value of one coordinator cycle.
// Constructed fresh per request and never cached; only its constituent
// records are.
type Conversion struct {
	ConvertedPrice float64       `json:"converted_price"`
	LocalCurrency  currency.Code `json:"local_currency"`
	BaseCurrency   currency.Code `json:"base_currency"`
	ExchangeRate   float64       `json:"exchange_rate"`
}
