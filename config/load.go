package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pricekit/localprice/pkg/apikey"
)

// envPrefix namespaces every variable, e.g. LOCALPRICE_EXCHANGE_API_KEY.
const envPrefix = "LOCALPRICE"

// Load reads configuration from the environment. When an env file path
// is given it is loaded first; a missing file only warns, since plain
// environment variables are a complete source on their own.
func Load(logger *slog.Logger, envFilePath ...string) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var err error
	if len(envFilePath) > 0 && envFilePath[0] != "" {
		err = godotenv.Load(envFilePath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		logger.Warn("no .env file found, using system environment variables")
	}

	var cfg App
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, err
	}

	logger.Info("config loaded",
		"env", cfg.Env,
		"geo_url", cfg.Geolocation.URL,
		"geo_ttl", cfg.Geolocation.TTL,
		"exchange_url", cfg.Exchange.URL,
		"exchange_ttl", cfg.Exchange.TTL,
		"exchange_api_key", apikey.Mask(cfg.Exchange.APIKey),
		"cache_backend", cfg.Cache.Backend,
		"http_timeout", cfg.HTTP.Timeout,
	)
	return &cfg, nil
}
