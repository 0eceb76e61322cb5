// Package config loads the application configuration from the
// environment, optionally seeded from a .env file.
package config

import "time"

// Geolocation configures the location provider client.
type Geolocation struct {
	URL string        `envconfig:"URL" default:"https://ipapi.co"`
	TTL time.Duration `envconfig:"TTL" default:"24h"`
}

// ExchangeRate configures the rate provider client.
type ExchangeRate struct {
	APIKey string        `envconfig:"API_KEY"`
	URL    string        `envconfig:"URL" default:"https://v6.exchangerate-api.com/v6"`
	TTL    time.Duration `envconfig:"TTL" default:"1h"`
}

// Cache selects the persistent location-store backend.
type Cache struct {
	Backend string `envconfig:"BACKEND" default:"file"`
	File    string `envconfig:"FILE" default:".localprice/location.json"`
}

// Redis configures the optional Redis location store.
type Redis struct {
	URL       string `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"localprice:"`
}

// HTTP configures the transport client handed to the providers.
// Retries and timeouts live there, not in the resolvers.
type HTTP struct {
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"10s"`
	MaxRetries int           `envconfig:"MAX_RETRIES" default:"3"`
}

// App is the root configuration.
type App struct {
	Env         string       `envconfig:"ENV" default:"development"`
	Geolocation Geolocation  `envconfig:"GEO"`
	Exchange    ExchangeRate `envconfig:"EXCHANGE"`
	Cache       Cache        `envconfig:"CACHE"`
	Redis       Redis        `envconfig:"REDIS"`
	HTTP        HTTP         `envconfig:"HTTP"`
}
