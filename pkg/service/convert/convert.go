// Package convert orchestrates a full conversion cycle: input
// validation, location resolution, rate resolution, and the final
// rounded price.
package convert

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pricekit/localprice/pkg/apikey"
	"github.com/pricekit/localprice/pkg/currency"
	"github.com/pricekit/localprice/pkg/domain"
	"golang.org/x/sync/singleflight"
)

// Request carries one conversion's inputs. ManualCurrency, when set,
// bypasses geolocation entirely.
type Request struct {
	BasePrice      float64 `validate:"min=0"`
	BaseCurrency   string
	APIKey         string
	ManualCurrency string
}

// LocationResolver is the location lookup the coordinator delegates to.
type LocationResolver interface {
	Resolve(ctx context.Context) (*domain.LocationRecord, error)
}

// RateResolver is the rate lookup the coordinator delegates to.
type RateResolver interface {
	Resolve(ctx context.Context, base, target currency.Code, apiKey string) (*domain.RateRecord, error)
}

// Service coordinates the two resolvers. Concurrent invocations with
// identical normalized inputs attach to one in-flight resolution and
// observe the same outcome; each caller still computes its own price
// from the shared rate.
type Service struct {
	location LocationResolver
	rates    RateResolver
	validate *validator.Validate
	logger   *slog.Logger
	inflight singleflight.Group
}

// New creates a coordinator. A nil logger selects slog.Default().
func New(location LocationResolver, rates RateResolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		location: location,
		rates:    rates,
		validate: validator.New(),
		logger:   logger,
	}
}

// Convert runs one conversion cycle. Validation failures return before
// any network access. ctx governs only this caller's attachment:
// cancellation detaches the caller without aborting shared in-flight
// work, which completes and populates the caches regardless.
func (s *Service) Convert(ctx context.Context, req Request) (*domain.Conversion, error) {
	base, manual, err := s.validateInput(&req)
	if err != nil {
		return nil, err
	}

	ch := s.inflight.DoChan(flightKey(base, manual, req.APIKey), func() (any, error) {
		return s.resolve(base, manual, req.APIKey)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		rec := res.Val.(*domain.RateRecord)
		return &domain.Conversion{
			ConvertedPrice: currency.Round(req.BasePrice*rec.Rate, rec.TargetCurrency),
			LocalCurrency:  rec.TargetCurrency,
			BaseCurrency:   base,
			ExchangeRate:   rec.Rate,
		}, nil
	}
}

// validateInput normalizes the currency inputs and checks the key and
// price shape, all without touching the network.
func (s *Service) validateInput(req *Request) (base, manual currency.Code, err error) {
	if base, err = currency.Normalize(req.BaseCurrency); err != nil {
		return "", "", err
	}
	if req.ManualCurrency != "" {
		if manual, err = currency.Normalize(req.ManualCurrency); err != nil {
			return "", "", err
		}
	}
	if err = apikey.Validate(req.APIKey); err != nil {
		return "", "", err
	}
	if math.IsNaN(req.BasePrice) || math.IsInf(req.BasePrice, 0) {
		return "", "", domain.ErrInvalidPrice
	}
	if verr := s.validate.Struct(req); verr != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrInvalidPrice, verr)
	}
	return base, manual, nil
}

// resolve performs the location and rate steps for one flight,
// detached from caller contexts. Location strictly precedes rate:
// the rate call's target depends on the location result unless a
// manual override removes the dependency.
func (s *Service) resolve(base, manual currency.Code, key string) (any, error) {
	ctx := context.Background()
	log := s.logger.With("cycle_id", uuid.NewString())

	target := manual
	if target == "" {
		rec, err := s.location.Resolve(ctx)
		if err != nil {
			log.Warn("location resolution failed", "error", err)
			return nil, err
		}
		target = rec.CurrencyCode
	}

	rec, err := s.rates.Resolve(ctx, base, target, key)
	if err != nil {
		log.Warn("rate resolution failed", "base", base, "target", target, "error", err)
		return nil, err
	}

	log.Debug("conversion cycle resolved",
		"base", base,
		"target", target,
		"rate", rec.Rate,
		"api_key", apikey.Mask(key),
	)
	return rec, nil
}

// flightKey derives the dedup key from the normalized inputs. The API
// key participates as a digest so the credential never appears in the
// key itself.
func flightKey(base, manual currency.Code, key string) string {
	target := "auto"
	if manual != "" {
		target = manual.String()
	}
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s:%s:%x", base, target, sum[:8])
}
