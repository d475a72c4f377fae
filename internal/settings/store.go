package settings

import (
	"reflect"
	"sync"

	"github.com/pekatete/electrumsv/pkg/config"
)

// Keys the history view reacts to. Changing either invalidates every
// rendered row, since both alter how amounts are displayed.
const (
	KeyFiatCurrency = "fiat_ccy"
	KeyBaseUnit     = "base_unit"
)

// Defaults for display settings.
const (
	DefaultFiatCurrency = "usd"
	DefaultBaseUnit     = "BSV"
)

// Store is an in-memory key-value store for runtime display settings. Values
// are normalized on write the same way the CLI setconfig path normalizes
// them, so "50" stores as an int and "true" as a bool.
type Store struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

// NewStore creates a settings store seeded with display defaults.
func NewStore() *Store {
	return &Store{
		values: map[string]interface{}{
			KeyFiatCurrency: DefaultFiatCurrency,
			KeyBaseUnit:     DefaultBaseUnit,
		},
	}
}

// Set normalizes and stores a value. It reports whether the stored value
// actually changed.
func (s *Store) Set(key, raw string) (interface{}, bool) {
	normalized := config.NormalizeValue(key, raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.values[key]
	s.values[key] = normalized

	// Normalized values may be slices, so plain == would panic.
	return normalized, !existed || !reflect.DeepEqual(previous, normalized)
}

// Get returns the stored value for a key.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

// FiatCurrency returns the active fiat display currency.
func (s *Store) FiatCurrency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[KeyFiatCurrency].(string); ok && v != "" {
		return v
	}
	return DefaultFiatCurrency
}

// All returns a copy of every stored setting.
func (s *Store) All() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// IsDisplayKey reports whether changing the key invalidates rendered history
// rows.
func IsDisplayKey(key string) bool {
	return key == KeyFiatCurrency || key == KeyBaseUnit
}
