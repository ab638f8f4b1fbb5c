// Package cryptocom provides a client for the Crypto.com Exchange public market-data API.
package cryptocom

import (
	"os"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the v2 REST root; endpoints live under /public.
	DefaultBaseURL = "https://api.crypto.com/v2"
	// DefaultRPS is the request rate used when CRYPTOCOM_RPS is unset.
	DefaultRPS = 10.0
	// DefaultTimeout is the HTTP timeout used when CRYPTOCOM_TIMEOUT is unset.
	DefaultTimeout = 10 * time.Second
)

// Config holds configuration for the Crypto.com API client.
type Config struct {
	BaseURL           string        // Base URL for the API (e.g., "https://api.crypto.com/v2")
	Timeout           time.Duration // HTTP request timeout
	RequestsPerSecond float64       // Client-side request pacing (<= 0 disables it)
}

// LoadConfig loads Crypto.com configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		BaseURL:           os.Getenv("CRYPTOCOM_BASE_URL"),
		Timeout:           DefaultTimeout,
		RequestsPerSecond: DefaultRPS,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if v := os.Getenv("CRYPTOCOM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("CRYPTOCOM_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RequestsPerSecond = f
		}
	}
	return cfg
}
