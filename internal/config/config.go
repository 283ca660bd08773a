// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full service configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
	Alerts    AlertsConfig
	LogLevel  string
	Env       string
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	// Addr is empty when redis is not configured; rate limiting then
	// falls back to the in-process store.
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Per      time.Duration
}

type WorkerConfig struct {
	// Interval between daily-close runs. The pipeline is idempotent,
	// so re-running within the same day is safe.
	Interval time.Duration
	// ContinuityWindowDays is the trailing window for the continuity report.
	ContinuityWindowDays int
}

type AlertsConfig struct {
	// LowStockRule is a CEL expression over
	// {current_stock, min_stock, active, category}.
	LowStockRule string
}

// Load reads configuration from .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
			TokenTTL:  getEnvDuration("JWT_TOKEN_TTL", 12*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnv("RATE_LIMIT_ENABLED", "true") == "true",
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 120),
			Per:      getEnvDuration("RATE_LIMIT_PER", time.Minute),
		},
		Worker: WorkerConfig{
			Interval:             getEnvDuration("WORKER_INTERVAL", time.Hour),
			ContinuityWindowDays: getEnvInt("CONTINUITY_WINDOW_DAYS", 7),
		},
		Alerts: AlertsConfig{
			LowStockRule: getEnv("LOW_STOCK_RULE", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Env:      getEnv("APP_ENV", "development"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
