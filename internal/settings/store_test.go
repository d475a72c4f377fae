package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_Defaults(t *testing.T) {
	s := NewStore()

	assert.Equal(t, "usd", s.FiatCurrency())

	unit, ok := s.Get(KeyBaseUnit)
	assert.True(t, ok)
	assert.Equal(t, "BSV", unit)
}

func TestStore_SetNormalizes(t *testing.T) {
	s := NewStore()

	v, changed := s.Set("confirmed_only", "true")
	assert.True(t, changed)
	assert.Equal(t, true, v)

	v, changed = s.Set("confirmed_only", "true")
	assert.False(t, changed)
	assert.Equal(t, true, v)

	v, changed = s.Set("confirmed_only", "false")
	assert.True(t, changed)
	assert.Equal(t, false, v)
}

func TestStore_SetFiatCurrency(t *testing.T) {
	s := NewStore()

	_, changed := s.Set(KeyFiatCurrency, "usd")
	assert.False(t, changed)

	_, changed = s.Set(KeyFiatCurrency, "eur")
	assert.True(t, changed)
	assert.Equal(t, "eur", s.FiatCurrency())
}

func TestStore_ListValues(t *testing.T) {
	s := NewStore()

	v, changed := s.Set("servers", `["a.example.com", "b.example.com"]`)
	assert.True(t, changed)
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, v)

	// Re-storing the same list is not a change.
	_, changed = s.Set("servers", `["a.example.com", "b.example.com"]`)
	assert.False(t, changed)
}

func TestIsDisplayKey(t *testing.T) {
	assert.True(t, IsDisplayKey(KeyFiatCurrency))
	assert.True(t, IsDisplayKey(KeyBaseUnit))
	assert.False(t, IsDisplayKey("servers"))
}

func TestStore_All(t *testing.T) {
	s := NewStore()
	s.Set("custom", "42")

	all := s.All()
	assert.Equal(t, int64(42), all["custom"])
	assert.Contains(t, all, KeyFiatCurrency)
}
