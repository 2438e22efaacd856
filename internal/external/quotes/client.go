// Package quotes talks to the quote provider: daily kline history, the
// market snapshot used to build the fetch universe, and company profiles
// for pick enrichment.
package quotes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tradebyz/screener/pkg/config"
	"github.com/tradebyz/screener/pkg/httputil"
	"github.com/tradebyz/screener/pkg/logger"
)

// Client handles communication with the quote provider.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	profileURL string
	token      string
}

// NewClient creates a provider client. httpClient carries the retry and
// rate-limit policy; the provider sees at most RatePerSec requests.
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.ProviderConfig) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
		profileURL: cfg.ProfileURL,
		token:      cfg.Token,
	}
}

// fetch performs a GET and returns the response body.
func (c *Client) fetch(ctx context.Context, base, path string, params url.Values) ([]byte, error) {
	fullURL := fmt.Sprintf("%s%s", base, path)
	if c.token != "" {
		params.Set("token", c.token)
	}
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}
	return body, nil
}
