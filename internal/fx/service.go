package fx

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/pekatete/electrumsv/pkg/logger"
)

// ErrUnsupportedCurrency is returned for malformed currency codes.
var ErrUnsupportedCurrency = errors.New("unsupported fiat currency")

var ccyRegex = regexp.MustCompile(`^[a-z]{3}$`)

// satoshiScale converts satoshis to whole coins.
var satoshiScale = big.NewInt(100_000_000)

// rateScale is the fixed-point scale of provider rates.
var rateScale = big.NewInt(100_000_000)

// RateProvider fetches fiat rates for the native coin.
type RateProvider interface {
	// HistoricalRate returns the rate on a past date, scaled by 10^8.
	HistoricalRate(ctx context.Context, ccy string, date time.Time) (*big.Int, error)
	// CurrentRate returns the rate right now, scaled by 10^8.
	CurrentRate(ctx context.Context, ccy string) (*big.Int, error)
}

// RateCache caches rates keyed by currency and date.
type RateCache interface {
	Get(ctx context.Context, ccy, date string) (*big.Int, bool, error)
	Set(ctx context.Context, ccy, date string, rate *big.Int, ttl time.Duration) error
}

const (
	historicalTTL = 24 * time.Hour
	currentTTL    = 60 * time.Second
)

// Service values satoshi amounts in fiat at a point in time, caching rates so
// rendering a full history does not hammer the provider.
type Service struct {
	provider RateProvider
	cache    RateCache
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates a new fiat valuation service
func NewService(provider RateProvider, cache RateCache, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		cache:    cache,
		log:      log.WithField("component", "fx"),
		now:      time.Now,
	}
}

// HistoricalValue renders the fiat value of a satoshi amount at the given
// time, as a decimal string with two places. Times on the current day use the
// live rate.
func (s *Service) HistoricalValue(ctx context.Context, ccy string, at time.Time, sats int64) (string, error) {
	rate, err := s.rateFor(ctx, ccy, at)
	if err != nil {
		return "", err
	}
	return formatFiat(sats, rate), nil
}

func (s *Service) rateFor(ctx context.Context, ccy string, at time.Time) (*big.Int, error) {
	ccy = strings.ToLower(ccy)
	if !ccyRegex.MatchString(ccy) {
		return nil, fmt.Errorf("%q: %w", ccy, ErrUnsupportedCurrency)
	}

	date := at.UTC().Format("2006-01-02")
	isCurrent := date == s.now().UTC().Format("2006-01-02")

	if rate, ok, err := s.cache.Get(ctx, ccy, date); err == nil && ok {
		return rate, nil
	} else if err != nil {
		// A broken cache degrades to a provider fetch.
		s.log.Warn("rate cache unavailable", "currency", ccy, "error", err)
	}

	var (
		rate *big.Int
		err  error
	)
	if isCurrent {
		rate, err = s.provider.CurrentRate(ctx, ccy)
	} else {
		rate, err = s.provider.HistoricalRate(ctx, ccy, at)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s rate for %s: %w", ccy, date, err)
	}

	ttl := historicalTTL
	if isCurrent {
		ttl = currentTTL
	}
	if err := s.cache.Set(ctx, ccy, date, rate, ttl); err != nil {
		s.log.Warn("failed to cache rate", "currency", ccy, "error", err)
	}

	return rate, nil
}

// formatFiat multiplies satoshis by a scaled rate and renders the result with
// two decimal places. big.Int keeps the intermediate product exact; satoshi
// totals times scaled rates overflow int64.
func formatFiat(sats int64, rate *big.Int) string {
	value := new(big.Int).Mul(big.NewInt(sats), rate)
	value.Quo(value, satoshiScale)

	// value is now fiat scaled by 10^8; reduce to cents.
	cents := new(big.Int).Quo(value, new(big.Int).Quo(rateScale, big.NewInt(100)))

	negative := cents.Sign() < 0
	cents.Abs(cents)

	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(cents, big.NewInt(100), frac)

	result := fmt.Sprintf("%s.%02d", whole.String(), frac.Int64())
	if negative {
		result = "-" + result
	}
	return result
}
