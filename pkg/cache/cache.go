// Package cache defines the two cache tiers. They are deliberately
// separate contracts: rates are short-lived and in-process, the
// location record is long-lived and survives restarts. A single
// implementation must not conflate the two policies.
package cache

import (
	"context"
	"time"

	"github.com/pricekit/localprice/pkg/domain"
)

// RateCache is the in-memory, short-TTL tier for exchange rates.
// Get returns (nil, nil) on a miss or an expired entry.
type RateCache interface {
	Get(key string) (*domain.RateRecord, error)
	Set(key string, rec *domain.RateRecord, ttl time.Duration) error
	Delete(key string) error
}

// LocationStore is the persistent tier holding the single location
// record under a fixed key. Load returns (nil, nil) when no record is
// stored; absence or corruption is a cache miss, never a fatal error.
type LocationStore interface {
	Load(ctx context.Context) (*domain.LocationRecord, error)
	Save(ctx context.Context, rec *domain.LocationRecord) error
}
