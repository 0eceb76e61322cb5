package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pricekit/localprice/pkg/apikey"
	"github.com/pricekit/localprice/pkg/currency"
	"github.com/pricekit/localprice/pkg/domain"
)

// DefaultExchangeRateAPIURL is the v6 endpoint root.
const DefaultExchangeRateAPIURL = "https://v6.exchangerate-api.com/v6"

// exchangeRateAPIResponse represents the v6 response from the
// ExchangeRate API. See https://www.exchangerate-api.com/docs/standard-requests
type exchangeRateAPIResponse struct {
	Result             string             `json:"result"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	TimeNextUpdateUnix int64              `json:"time_next_update_unix"`
	BaseCode           string             `json:"base_code"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
	// Error fields (if any)
	ErrorType string `json:"error-type,omitempty"`
}

// ExchangeRateAPI is a client for exchangerate-api.com v6. One call
// returns the full rate table for the pivot currency.
type ExchangeRateAPI struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewExchangeRateAPI creates a new ExchangeRate API client. An empty
// baseURL selects the public v6 endpoint; a nil client falls back to
// http.DefaultClient.
func NewExchangeRateAPI(baseURL string, httpClient *http.Client, logger *slog.Logger) *ExchangeRateAPI {
	if baseURL == "" {
		baseURL = DefaultExchangeRateAPIURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExchangeRateAPI{baseURL: baseURL, httpClient: httpClient, logger: logger}
}

// Name returns the provider's name for logging and identification.
func (p *ExchangeRateAPI) Name() string {
	return "exchangerate-api"
}

// FetchRates fetches the full conversion table with base as the pivot.
// Quota exhaustion becomes a domain.RateLimitedError and an
// unsupported pivot becomes a domain.UnsupportedCurrencyError; other
// failures are plain errors for the resolver to classify.
func (p *ExchangeRateAPI) FetchRates(
	ctx context.Context,
	base currency.Code,
	key string,
) (map[currency.Code]float64, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, key, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &domain.RateLimitedError{RetryAfter: retryAfter(resp)}
	}

	var apiResp exchangeRateAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("rate API returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Result != "success" {
		return nil, p.resultError(&apiResp, resp.StatusCode, base)
	}

	rates := make(map[currency.Code]float64, len(apiResp.ConversionRates))
	for code, rate := range apiResp.ConversionRates {
		rates[currency.Code(code)] = rate
	}

	p.logger.Debug("fetched exchange rates",
		"provider", p.Name(),
		"base", base,
		"count", len(rates),
		"api_key", apikey.Mask(key),
	)
	return rates, nil
}

// resultError maps the v6 error-type markers onto the domain taxonomy.
func (p *ExchangeRateAPI) resultError(
	apiResp *exchangeRateAPIResponse,
	status int,
	base currency.Code,
) error {
	switch apiResp.ErrorType {
	case "unsupported-code":
		return &domain.UnsupportedCurrencyError{Code: base}
	case "quota-reached":
		return &domain.RateLimitedError{}
	case "invalid-key", "inactive-account":
		return fmt.Errorf("rate API rejected key: %s", apiResp.ErrorType)
	case "":
		return fmt.Errorf("rate API returned status %d", status)
	default:
		return fmt.Errorf("rate API error: %s", apiResp.ErrorType)
	}
}

func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
