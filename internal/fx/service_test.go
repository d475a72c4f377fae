package fx

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pekatete/electrumsv/pkg/logger"
)

type fakeProvider struct {
	historical map[string]*big.Int
	current    map[string]*big.Int

	historicalCalls int
	currentCalls    int
	err             error
}

func (f *fakeProvider) HistoricalRate(_ context.Context, ccy string, date time.Time) (*big.Int, error) {
	f.historicalCalls++
	if f.err != nil {
		return nil, f.err
	}
	rate, ok := f.historical[ccy+":"+date.UTC().Format("2006-01-02")]
	if !ok {
		return nil, errors.New("no rate")
	}
	return rate, nil
}

func (f *fakeProvider) CurrentRate(_ context.Context, ccy string) (*big.Int, error) {
	f.currentCalls++
	if f.err != nil {
		return nil, f.err
	}
	rate, ok := f.current[ccy]
	if !ok {
		return nil, errors.New("no rate")
	}
	return rate, nil
}

type fakeCache struct {
	entries map[string]*big.Int
	ttls    map[string]time.Duration
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string]*big.Int),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeCache) Get(_ context.Context, ccy, date string) (*big.Int, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	rate, ok := f.entries[ccy+":"+date]
	return rate, ok, nil
}

func (f *fakeCache) Set(_ context.Context, ccy, date string, rate *big.Int, ttl time.Duration) error {
	f.entries[ccy+":"+date] = rate
	f.ttls[ccy+":"+date] = ttl
	return nil
}

// rate builds a scaled rate from whole fiat units.
func rate(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), big.NewInt(100_000_000))
}

func newTestService(p RateProvider, c RateCache) *Service {
	svc := NewService(p, c, logger.New("test", io.Discard))
	svc.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestHistoricalValue_PastDate(t *testing.T) {
	provider := &fakeProvider{
		historical: map[string]*big.Int{"usd:2024-01-10": rate(50)},
	}
	cache := newFakeCache()
	svc := newTestService(provider, cache)

	at := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	value, err := svc.HistoricalValue(context.Background(), "USD", at, 200_000_000)
	require.NoError(t, err)

	// 2 coins at 50 usd each.
	assert.Equal(t, "100.00", value)
	assert.Equal(t, 1, provider.historicalCalls)
	assert.Equal(t, 0, provider.currentCalls)
	assert.Equal(t, historicalTTL, cache.ttls["usd:2024-01-10"])
}

func TestHistoricalValue_CurrentDayUsesLiveRate(t *testing.T) {
	provider := &fakeProvider{
		current: map[string]*big.Int{"usd": rate(60)},
	}
	cache := newFakeCache()
	svc := newTestService(provider, cache)

	at := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	value, err := svc.HistoricalValue(context.Background(), "usd", at, 50_000_000)
	require.NoError(t, err)

	assert.Equal(t, "30.00", value)
	assert.Equal(t, 0, provider.historicalCalls)
	assert.Equal(t, 1, provider.currentCalls)
	assert.Equal(t, currentTTL, cache.ttls["usd:2024-06-15"])
}

func TestHistoricalValue_CacheHitSkipsProvider(t *testing.T) {
	provider := &fakeProvider{
		historical: map[string]*big.Int{"usd:2024-01-10": rate(50)},
	}
	cache := newFakeCache()
	svc := newTestService(provider, cache)

	at := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := svc.HistoricalValue(context.Background(), "usd", at, 100_000_000)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, provider.historicalCalls)
}

func TestHistoricalValue_CacheErrorFallsThrough(t *testing.T) {
	provider := &fakeProvider{
		historical: map[string]*big.Int{"eur:2024-01-10": rate(45)},
	}
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	svc := newTestService(provider, cache)

	at := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	value, err := svc.HistoricalValue(context.Background(), "eur", at, 100_000_000)
	require.NoError(t, err)
	assert.Equal(t, "45.00", value)
}

func TestHistoricalValue_NegativeAmount(t *testing.T) {
	provider := &fakeProvider{
		historical: map[string]*big.Int{"usd:2024-01-10": rate(50)},
	}
	svc := newTestService(provider, newFakeCache())

	at := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	value, err := svc.HistoricalValue(context.Background(), "usd", at, -150_000_000)
	require.NoError(t, err)
	assert.Equal(t, "-75.00", value)
}

func TestHistoricalValue_FractionalRate(t *testing.T) {
	provider := &fakeProvider{
		// 51.37 usd per coin.
		historical: map[string]*big.Int{"usd:2024-01-10": big.NewInt(5_137_000_000)},
	}
	svc := newTestService(provider, newFakeCache())

	at := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	value, err := svc.HistoricalValue(context.Background(), "usd", at, 10_000_000)
	require.NoError(t, err)
	assert.Equal(t, "5.13", value)
}

func TestHistoricalValue_InvalidCurrency(t *testing.T) {
	svc := newTestService(&fakeProvider{}, newFakeCache())

	_, err := svc.HistoricalValue(context.Background(), "dollars", time.Now(), 1)
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestHistoricalValue_ProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	svc := newTestService(provider, newFakeCache())

	at := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := svc.HistoricalValue(context.Background(), "usd", at, 1)
	assert.Error(t, err)
}
