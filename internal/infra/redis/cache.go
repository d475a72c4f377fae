package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pekatete/electrumsv/pkg/logger"
)

const (
	// HistoricalTTL is the TTL for rates on past dates; those never change,
	// the TTL just bounds memory.
	HistoricalTTL = 24 * time.Hour

	// CurrentTTL is the TTL for today's rate, which moves constantly.
	CurrentTTL = 60 * time.Second

	// KeyPrefix is the prefix for fiat rate cache keys
	KeyPrefix = "fxrate:"
)

// Cache represents a Redis-backed fiat rate cache
type Cache struct {
	client *redis.Client
	logger *logger.Logger
}

// NewCache creates a new fiat rate cache
func NewCache(client *redis.Client, log *logger.Logger) *Cache {
	return &Cache{
		client: client,
		logger: log.WithField("component", "fx_cache"),
	}
}

// CachedRate represents a cached fiat rate with metadata
type CachedRate struct {
	Currency  string    `json:"currency"`
	Date      string    `json:"date"`
	Rate      string    `json:"rate"` // big.Int serialized as string
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Cache) key(ccy, date string) string {
	return fmt.Sprintf("%s%s:%s", KeyPrefix, ccy, date)
}

// Get retrieves a cached rate for a currency and date
func (c *Cache) Get(ctx context.Context, ccy, date string) (*big.Int, bool, error) {
	key := c.key(ccy, date)

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.logger.Debug("cache miss", "currency", ccy, "date", date)
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "currency", ccy, "error", err)
		return nil, false, fmt.Errorf("failed to get cached rate: %w", err)
	}

	var cached CachedRate
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached rate: %w", err)
	}

	rate := new(big.Int)
	if _, ok := rate.SetString(cached.Rate, 10); !ok {
		return nil, false, fmt.Errorf("failed to parse cached rate: invalid number")
	}

	c.logger.Debug("cache hit", "currency", ccy, "date", date)
	return rate, true, nil
}

// Set stores a rate in the cache with the given TTL
func (c *Cache) Set(ctx context.Context, ccy, date string, rate *big.Int, ttl time.Duration) error {
	key := c.key(ccy, date)

	cached := CachedRate{
		Currency:  ccy,
		Date:      date,
		Rate:      rate.String(),
		UpdatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal rate: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Error("cache error", "operation", "set", "currency", ccy, "error", err)
		return fmt.Errorf("failed to set cached rate: %w", err)
	}

	return nil
}

// Clear removes all cached rates
func (c *Cache) Clear(ctx context.Context) error {
	pattern := fmt.Sprintf("%s*", KeyPrefix)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()

	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	return iter.Err()
}

// Ping checks cache connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
