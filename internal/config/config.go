package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// Database; empty keeps high scores in memory
	DatabaseURL    string
	MigrateOnStart bool

	// Redis; empty keeps settings and events in-process
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	TickRateHz         int
	MaxSessions        int
	SessionIdleSeconds int
	IdlePollSeconds    int
	SessionTokenTTLMin int
	MaxFrameDelta      float64

	// Game tuning file; empty uses the compiled-in defaults
	ReelTablePath string

	// Security
	JWTSecret      string
	AdminTokenHash string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Sessions
		TickRateHz:         getEnvInt("TICK_RATE_HZ", 60),
		MaxSessions:        getEnvInt("MAX_SESSIONS", 256),
		SessionIdleSeconds: getEnvInt("SESSION_IDLE_SECONDS", 300),
		IdlePollSeconds:    getEnvInt("IDLE_POLL_SECONDS", 5),
		SessionTokenTTLMin: getEnvInt("SESSION_TOKEN_TTL_MINUTES", 120),
		MaxFrameDelta:      getEnvFloat("MAX_FRAME_DELTA", 0),

		ReelTablePath: getEnv("REEL_TABLE_PATH", ""),

		// Security
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		AdminTokenHash: getEnv("ADMIN_TOKEN_HASH", ""),
	}
}

// IsProduction reports whether the server runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// TickInterval is the fixed frame interval of a session runner.
func (c *Config) TickInterval() time.Duration {
	hz := c.TickRateHz
	if hz <= 0 {
		hz = 60
	}
	return time.Second / time.Duration(hz)
}

func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleSeconds) * time.Second
}

func (c *Config) IdlePollInterval() time.Duration {
	return time.Duration(c.IdlePollSeconds) * time.Second
}

func (c *Config) SessionTokenTTL() time.Duration {
	return time.Duration(c.SessionTokenTTLMin) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
