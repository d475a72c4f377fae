package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL      = "https://api.coingecko.com/api/v3"
	headerAPIKey        = "x-cg-demo-api-key"
	requestTimeout      = 10 * time.Second
	rateLimitRetryAfter = 60 * time.Second

	// coinID is the CoinGecko identifier for the native coin.
	coinID = "bitcoin-cash-sv"

	// RateScale is the fixed-point scale for fiat rates: fiat units per
	// whole coin, scaled by 10^8.
	RateScale = 100_000_000
)

// RateLimitError is returned when CoinGecko throttles us.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// Client represents a CoinGecko API client
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new CoinGecko API client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: defaultBaseURL,
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint, used
// by tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// historyResponse is the shape of /coins/{id}/history we care about.
type historyResponse struct {
	MarketData struct {
		CurrentPrice map[string]float64 `json:"current_price"`
	} `json:"market_data"`
}

// HistoricalRate fetches the fiat rate for the coin on a specific date,
// scaled by RateScale. The currency code is a lowercase fiat symbol such as
// "usd" or "eur".
func (c *Client) HistoricalRate(ctx context.Context, ccy string, date time.Time) (*big.Int, error) {
	// CoinGecko uses DD-MM-YYYY
	dateStr := date.Format("02-01-2006")
	reqURL := fmt.Sprintf("%s/coins/%s/history?date=%s&localization=false", c.baseURL, coinID, dateStr)

	var parsed historyResponse
	if err := c.get(ctx, reqURL, &parsed); err != nil {
		return nil, err
	}

	price, ok := parsed.MarketData.CurrentPrice[strings.ToLower(ccy)]
	if !ok {
		return nil, fmt.Errorf("no %s rate on %s", ccy, dateStr)
	}

	return scaleFloat(price), nil
}

// CurrentRate fetches the current fiat rate for the coin, scaled by RateScale.
func (c *Client) CurrentRate(ctx context.Context, ccy string) (*big.Int, error) {
	params := url.Values{}
	params.Set("ids", coinID)
	params.Set("vs_currencies", strings.ToLower(ccy))
	params.Set("precision", "8")

	reqURL := fmt.Sprintf("%s/simple/price?%s", c.baseURL, params.Encode())

	var parsed map[string]map[string]float64
	if err := c.get(ctx, reqURL, &parsed); err != nil {
		return nil, err
	}

	price, ok := parsed[coinID][strings.ToLower(ccy)]
	if !ok {
		return nil, fmt.Errorf("no current %s rate", ccy)
	}

	return scaleFloat(price), nil
}

func (c *Client) get(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			RetryAfter: rateLimitRetryAfter,
			Message:    "CoinGecko API rate limit exceeded",
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// scaleFloat converts a float rate to fixed-point with RateScale, rounding to
// the nearest unit.
func scaleFloat(v float64) *big.Int {
	scaled := math.Round(v * RateScale)
	result, _ := new(big.Float).SetFloat64(scaled).Int(nil)
	return result
}
