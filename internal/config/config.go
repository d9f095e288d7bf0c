package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	DueSoonDays       int
	SessionTTLMinutes int
	StatsWorkerCount  int
	StatsQueueSize    int
	HistoryLimit      int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:reviewdeck.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		DueSoonDays:       envIntOr("DUE_SOON_DAYS", 3),
		SessionTTLMinutes: envIntOr("SESSION_TTL_MINUTES", 60),
		StatsWorkerCount:  envIntOr("STATS_WORKER_COUNT", 1),
		StatsQueueSize:    envIntOr("STATS_QUEUE_SIZE", 32),
		HistoryLimit:      envIntOr("HISTORY_LIMIT", 10),
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.DueSoonDays < 0 {
		return fmt.Errorf("DUE_SOON_DAYS cannot be negative")
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	if c.StatsWorkerCount <= 0 {
		return fmt.Errorf("STATS_WORKER_COUNT must be positive")
	}
	if c.StatsQueueSize <= 0 {
		return fmt.Errorf("STATS_QUEUE_SIZE must be positive")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
