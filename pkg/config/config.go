package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the history service
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Database configuration
	DatabaseURL string

	// Redis configuration (fiat rate cache)
	RedisURL      string
	RedisPassword string

	// JWT configuration
	JWTSecret string

	// RPC-style API credentials; the password is stored as a bcrypt hash
	APIUser         string
	APIPasswordHash string

	// Network selection and networks config file
	Network      string
	NetworksPath string

	// CoinGecko API configuration (historical fiat rates)
	CoinGeckoAPIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		APIUser:         getEnv("API_USER", ""),
		APIPasswordHash: getEnv("API_PASSWORD_HASH", ""),
		Network:         getEnv("NETWORK", "mainnet"),
		NetworksPath:    getEnv("NETWORKS_CONFIG", "networks.yaml"),
		CoinGeckoAPIKey: getEnv("COINGECKO_API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.APIUser == "" || c.APIPasswordHash == "" {
		return fmt.Errorf("API_USER and API_PASSWORD_HASH are required")
	}

	// CoinGecko API key is required in production but optional in development
	if c.CoinGeckoAPIKey == "" && c.IsProduction() {
		return fmt.Errorf("COINGECKO_API_KEY is required in production")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
