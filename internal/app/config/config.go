// Package config loads application configuration from environment variables and plan files.
// All settings can also be supplied through a .env file for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"trade_integrity/internal/platform/db"
	"trade_integrity/internal/platform/externalapi/cryptocom"
	"trade_integrity/internal/platform/redis"
)

// AppConfig holds all application configuration.
// Load it once at startup using Load().
type AppConfig struct {
	// HTTPAddr is the listen address of the REST server (e.g. ":8080").
	HTTPAddr string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// ExportDir enables CSV export of every audit when non-empty.
	ExportDir string

	// RunMigrations runs gorm AutoMigrate for all tables at startup.
	RunMigrations bool

	// ReportCacheTTL caps how long cached audits live in Redis.
	ReportCacheTTL time.Duration

	// JWTSecret signs and verifies API tokens. JWTTTL is the lifetime of minted tokens.
	JWTSecret string
	JWTTTL    time.Duration

	// CORSOrigins lists allowed origins (comma-separated in env). Empty disables CORS handling.
	CORSOrigins []string

	DB        db.Config
	Redis     redis.Config
	CryptoCom cryptocom.Config
}

// Load reads all application configuration from environment variables.
// It attempts to load a .env file first; a missing file is not an error.
func Load() *AppConfig {
	_ = godotenv.Load()

	return &AppConfig{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ExportDir:      getEnv("EXPORT_DIR", ""),
		RunMigrations:  getEnvBool("RUN_MIGRATIONS", true),
		ReportCacheTTL: getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTTTL:         getEnvDuration("JWT_TTL", 24*time.Hour),
		CORSOrigins:    getEnvList("CORS_ALLOWED_ORIGINS"),
		DB:             db.LoadConfigFromEnv(),
		Redis:          redis.LoadConfig(),
		CryptoCom:      cryptocom.LoadConfig(),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "5m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
