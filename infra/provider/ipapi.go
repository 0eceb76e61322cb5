// Package provider implements the external lookup clients. Transport
// concerns (timeouts, retry, backoff) belong to the injected
// *http.Client, not to this package.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// DefaultIPAPIURL is the unauthenticated geolocation endpoint.
const DefaultIPAPIURL = "https://ipapi.co"

// ipapiResponse is the subset of the ipapi.co JSON payload we consume.
type ipapiResponse struct {
	Currency    string `json:"currency"`
	CountryName string `json:"country_name"`
	// Error fields (if any)
	Error  bool   `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// IPAPI is a geolocation client for ipapi.co. The caller's location is
// derived from its network origin, so Locate takes no arguments.
type IPAPI struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewIPAPI creates a new ipapi.co client. An empty baseURL selects the
// public endpoint; a nil client falls back to http.DefaultClient.
func NewIPAPI(baseURL string, httpClient *http.Client, logger *slog.Logger) *IPAPI {
	if baseURL == "" {
		baseURL = DefaultIPAPIURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IPAPI{baseURL: baseURL, httpClient: httpClient, logger: logger}
}

// Name returns the provider's name for logging and identification.
func (p *IPAPI) Name() string {
	return "ipapi"
}

// Locate fetches the currency code associated with the caller's
// network location.
func (p *IPAPI) Locate(ctx context.Context) (string, error) {
	url := p.baseURL + "/json/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("geolocation API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error {
		return "", fmt.Errorf("geolocation API error: %s", apiResp.Reason)
	}
	if apiResp.Currency == "" {
		return "", fmt.Errorf("geolocation response missing currency field")
	}

	p.logger.Debug("resolved location",
		"provider", p.Name(),
		"country", apiResp.CountryName,
		"currency", apiResp.Currency,
	)
	return apiResp.Currency, nil
}
