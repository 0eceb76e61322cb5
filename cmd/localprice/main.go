// Command localprice is a thin demo consumer of the conversion
// facade: it converts a price into the local (or overridden) currency
// and prints the result.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/redis/go-redis/v9"

	"github.com/pricekit/localprice/config"
	infracache "github.com/pricekit/localprice/infra/cache"
	infraprovider "github.com/pricekit/localprice/infra/provider"
	"github.com/pricekit/localprice/pkg/cache"
	"github.com/pricekit/localprice/pkg/currency"
	"github.com/pricekit/localprice/pkg/domain"
	"github.com/pricekit/localprice/pkg/facade"
	"github.com/pricekit/localprice/pkg/service/convert"
	"github.com/pricekit/localprice/pkg/service/location"
	"github.com/pricekit/localprice/pkg/service/rate"
)

func main() {
	price := flag.Float64("price", 0, "price in the base currency")
	from := flag.String("from", "USD", "base currency code")
	manual := flag.String("currency", "", "target currency override (skips geolocation)")
	envFile := flag.String("env", "", "path to a .env file")
	flag.Parse()

	if err := run(*price, *from, *manual, *envFile); err != nil {
		log.Fatal(err)
	}
}

func run(price float64, from, manual, envFile string) error {
	logger := slog.Default()

	cfg, err := config.Load(logger, envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, closeStore, err := newLocationStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	httpClient := newHTTPClient(cfg)
	geo := infraprovider.NewIPAPI(cfg.Geolocation.URL, httpClient, logger)
	exchange := infraprovider.NewExchangeRateAPI(cfg.Exchange.URL, httpClient, logger)

	rateCache := infracache.NewMemoryRateCache()
	defer rateCache.Close()

	coordinator := convert.New(
		location.New(store, geo, cfg.Geolocation.TTL, logger),
		rate.New(rateCache, exchange, cfg.Exchange.TTL, logger),
		logger,
	)

	done := make(chan error, 1)
	watcher := facade.New(coordinator,
		func(c domain.Conversion) {
			color.Green("%s %s ≈ %s %s (rate %.4f)",
				formatAmount(price, c.BaseCurrency), c.BaseCurrency,
				formatAmount(c.ConvertedPrice, c.LocalCurrency), c.LocalCurrency,
				c.ExchangeRate,
			)
			done <- nil
		},
		func(err error) {
			color.Red("conversion failed: %v", err)
			done <- err
		},
		logger,
	)
	defer watcher.Close()

	watcher.Set(facade.Input{
		BasePrice:      price,
		BaseCurrency:   from,
		APIKey:         cfg.Exchange.APIKey,
		ManualCurrency: manual,
	})
	return <-done
}

// newHTTPClient builds the transport collaborator; retry, backoff and
// timeout live here rather than in the resolvers.
func newHTTPClient(cfg *config.App) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.HTTP.MaxRetries
	rc.HTTPClient.Timeout = cfg.HTTP.Timeout
	rc.Logger = nil
	return rc.StandardClient()
}

func newLocationStore(cfg *config.App, logger *slog.Logger) (cache.LocationStore, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		store := infracache.NewRedisLocationStore(opt, cfg.Redis.KeyPrefix, cfg.Geolocation.TTL, logger)
		return store, func() { _ = store.Close() }, nil
	case "file":
		return infracache.NewFileLocationStore(cfg.Cache.File, logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func formatAmount(v float64, c currency.Code) string {
	return fmt.Sprintf("%.*f", currency.MinorUnits(c), v)
}
