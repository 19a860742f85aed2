// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Diff      DiffConfig
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// DatabaseConfig configures the sqlite store
type DatabaseConfig struct {
	DataDir string
}

// RedisConfig configures the optional distributed rate limit backend
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig configures the analytics response cache
type CacheConfig struct {
	TTL time.Duration
}

// RateLimitConfig configures per-IP limiting
type RateLimitConfig struct {
	IPLimitPerMin   int
	BurstMultiplier int
}

// DiffConfig configures diff rendering defaults
type DiffConfig struct {
	DefaultContext int
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			AllowedOrigins:  []string{getEnvOrDefault("ALLOWED_ORIGIN", "http://localhost:5173")},
			RequestTimeout:  getDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxBodyBytes:    getInt64OrDefault("MAX_BODY_BYTES", 10<<20),
		},
		Database: DatabaseConfig{
			DataDir: getEnvOrDefault("DATA_DIR", "./data"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TTL: getDurationOrDefault("CACHE_TTL", 15*time.Minute),
		},
		RateLimit: RateLimitConfig{
			IPLimitPerMin:   getIntOrDefault("RATE_LIMIT_IP_PER_MIN", 120),
			BurstMultiplier: getIntOrDefault("RATE_LIMIT_BURST_MULTIPLIER", 2),
		},
		Diff: DiffConfig{
			DefaultContext: getIntOrDefault("DIFF_DEFAULT_CONTEXT", 3),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
