// Package rate resolves exchange rates between currency pairs, backed
// by the in-memory rate cache.
package rate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pricekit/localprice/pkg/cache"
	"github.com/pricekit/localprice/pkg/currency"
	"github.com/pricekit/localprice/pkg/domain"
	"github.com/pricekit/localprice/pkg/provider"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a cached rate stays fresh.
const DefaultTTL = time.Hour

// syntheticSource marks records produced without a provider call.
const syntheticSource = "internal"

// Key returns the ordered-pair cache key. (A,B) and (B,A) are
// independent entries.
func Key(base, target currency.Code) string {
	return fmt.Sprintf("%s:%s", base, target)
}

// Service resolves rates cache-first and collapses concurrent lookups
// for the same pair into one provider call.
type Service struct {
	cache    cache.RateCache
	provider provider.ExchangeRate
	ttl      time.Duration
	logger   *slog.Logger
	inflight singleflight.Group
	now      func() time.Time
}

// New creates a rate resolver. A non-positive ttl selects DefaultTTL;
// a nil logger selects slog.Default().
func New(
	rates cache.RateCache,
	exchange provider.ExchangeRate,
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
		cache:    rates,
		provider: exchange,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve returns the rate record for (base, target). Identical pairs
// short-circuit to a synthetic record with rate 1 and no network call.
// ctx governs only this caller's attachment to the shared lookup.
func (s *Service) Resolve(
	ctx context.Context,
	base, target currency.Code,
	apiKey string,
) (*domain.RateRecord, error) {
	if base == target {
		return &domain.RateRecord{
			BaseCurrency:   base,
			TargetCurrency: target,
			Rate:           1,
			ResolvedAt:     s.now(),
			Source:         syntheticSource,
		}, nil
	}

	key := Key(base, target)
	if rec := s.cached(key); rec != nil {
		return rec, nil
	}

	ch := s.inflight.DoChan(key, func() (any, error) {
		return s.fetch(base, target, key, apiKey)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.RateRecord), nil
	}
}

func (s *Service) cached(key string) *domain.RateRecord {
	rec, err := s.cache.Get(key)
	if err != nil {
		s.logger.Warn("rate cache read failed", "key", key, "error", err)
		return nil
	}
	return rec
}

// fetch performs the provider call and the guarded cache write,
// detached from any caller context.
func (s *Service) fetch(
	base, target currency.Code,
	key, apiKey string,
) (any, error) {
	// A concurrent flight may have populated the cache already.
	if rec := s.cached(key); rec != nil {
		return rec, nil
	}

	rates, err := s.provider.FetchRates(context.Background(), base, apiKey)
	if err != nil {
		return nil, classify(err)
	}

	value, ok := rates[target]
	if !ok {
		// The provider works but cannot serve this currency; callers
		// should fall back to a manual override, not retry.
		return nil, &domain.UnsupportedCurrencyError{Code: target}
	}
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, &domain.RateProviderError{
			Cause: fmt.Errorf("provider returned invalid rate %v for %s", value, key),
		}
	}

	rec := &domain.RateRecord{
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           value,
		ResolvedAt:     s.now(),
		Source:         s.provider.Name(),
	}
	if err := s.cache.Set(key, rec, s.ttl); err != nil {
		s.logger.Warn("rate cache write failed", "key", key, "error", err)
	}

	s.logger.Info("resolved exchange rate",
		"provider", s.provider.Name(),
		"base", base,
		"target", target,
		"rate", value,
	)
	return rec, nil
}

// classify keeps already-typed provider failures intact and wraps the
// rest as transport failures.
func classify(err error) error {
	var limited *domain.RateLimitedError
	var unsupported *domain.UnsupportedCurrencyError
	if errors.As(err, &limited) || errors.As(err, &unsupported) {
		return err
	}
	return &domain.RateProviderError{Cause: err}
}
