// Package location resolves the caller's currency from its network
// origin, backed by the persistent location store.
package location

import (
	"context"
	"log/slog"
	"time"

	"github.com/pricekit/localprice/pkg/cache"
	"github.com/pricekit/localprice/pkg/currency"
	"github.com/pricekit/localprice/pkg/domain"
	"github.com/pricekit/localprice/pkg/provider"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a stored location record stays fresh.
const DefaultTTL = 24 * time.Hour

// lookupKey is the single in-flight key: the lookup depends only on
// the caller's network origin, never on request inputs.
const lookupKey = "location"

// Service checks the persistent store first and issues at most one
// remote lookup per key across all concurrent callers.
type Service struct {
	store    cache.LocationStore
	provider provider.Geolocation
	ttl      time.Duration
	logger   *slog.Logger
	inflight singleflight.Group
	now      func() time.Time
}

// New creates a location resolver. A non-positive ttl selects
// DefaultTTL; a nil logger selects slog.Default().
func New(
	store cache.LocationStore,
	geo provider.Geolocation,
	ttl time.Duration,
	logger *slog.Logger,
) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		provider: geo,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve returns an unexpired stored record without touching the
// network, or refreshes it with one shared remote lookup. ctx governs
// only this caller's attachment: cancellation detaches the caller
// while the shared lookup completes and populates the store.
func (s *Service) Resolve(ctx context.Context) (*domain.LocationRecord, error) {
	if rec := s.fresh(ctx); rec != nil {
		return rec, nil
	}

	ch := s.inflight.DoChan(lookupKey, func() (any, error) {
		return s.lookup()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.LocationRecord), nil
	}
}

// fresh returns the stored record if it is unexpired.
func (s *Service) fresh(ctx context.Context) *domain.LocationRecord {
	rec, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("location store read failed", "error", err)
		return nil
	}
	if rec == nil || rec.Expired(s.ttl, s.now()) {
		return nil
	}
	return rec
}

// lookup performs the remote call and the guarded store write. It runs
// detached from any caller context so teardown of one caller never
// aborts work other callers are attached to.
func (s *Service) lookup() (any, error) {
	ctx := context.Background()

	// A concurrent flight may have refreshed the store while this
	// caller was waiting to start.
	if rec := s.fresh(ctx); rec != nil {
		return rec, nil
	}

	raw, err := s.provider.Locate(ctx)
	if err != nil {
		// Not cached: a transient failure must not be remembered
		// for the full TTL.
		return nil, &domain.GeolocationError{Cause: err}
	}

	code, err := currency.Normalize(raw)
	if err != nil {
		return nil, &domain.GeolocationError{Cause: err}
	}

	rec := &domain.LocationRecord{
		CurrencyCode: code,
		ResolvedAt:   s.now(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Warn("location store write failed", "error", err)
	}

	s.logger.Info("resolved local currency",
		"provider", s.provider.Name(),
		"currency", code,
	)
	return rec, nil
}
