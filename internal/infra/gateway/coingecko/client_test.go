package coingecko

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoricalRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin-cash-sv/history", r.URL.Path)
		assert.Equal(t, "10-01-2024", r.URL.Query().Get("date"))
		assert.Equal(t, "test-key", r.Header.Get(headerAPIKey))

		fmt.Fprint(w, `{"market_data":{"current_price":{"usd":51.37,"eur":47.02}}}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	rate, err := client.HistoricalRate(context.Background(), "USD", date)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5_137_000_000), rate)
}

func TestHistoricalRate_MissingCurrency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"market_data":{"current_price":{"usd":51.37}}}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)

	_, err := client.HistoricalRate(context.Background(), "jpy", time.Now())
	assert.Error(t, err)
}

func TestCurrentRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin-cash-sv", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))

		fmt.Fprint(w, `{"bitcoin-cash-sv":{"usd":60.5}}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)

	rate, err := client.CurrentRate(context.Background(), "usd")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(6_050_000_000), rate)
}

func TestRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)

	_, err := client.CurrentRate(context.Background(), "usd")
	require.Error(t, err)

	var rateLimitErr *RateLimitError
	assert.ErrorAs(t, err, &rateLimitErr)
}

func TestServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)

	_, err := client.CurrentRate(context.Background(), "usd")
	assert.Error(t, err)
}
