// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all externally supplied configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// JWTSecret signs and verifies session tokens.
	JWTSecret string

	// TokenTTL drives both the JWT expiry and the cookie Max-Age.
	// One value for both so the two can never drift apart.
	TokenTTL time.Duration

	// CORSOrigin is the single allowed browser origin.
	CORSOrigin string

	// CookieSecure marks the token cookie Secure (set in production).
	CookieSecure bool

	// DBPath is the SQLite database file path.
	DBPath string

	// RedisAddr is the address of the Redis used for token revocation.
	RedisAddr string

	// UploadDir is the local directory attachments are written to.
	UploadDir string

	// UploadBaseURL prefixes stored attachment paths to form retrievable URLs.
	UploadBaseURL string
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := durationEnv("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:          port,
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		TokenTTL:      tokenTTL,
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:3000"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
		DBPath:        getEnv("DB_PATH", "./data/backoffice.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "http://localhost:8080/uploads"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
