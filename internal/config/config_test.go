package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasreis/reviewdeck/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:              ":8080",
		DBPath:            "test.db",
		LogLevel:          "INFO",
		DueSoonDays:       3,
		SessionTTLMinutes: 60,
		StatsWorkerCount:  1,
		StatsQueueSize:    32,
		HistoryLimit:      10,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_BadWorkerCounts(t *testing.T) {
	cfg := validConfig()
	cfg.StatsWorkerCount = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.StatsQueueSize = -1
	assert.Error(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "DB_PATH", "LOG_LEVEL", "DUE_SOON_DAYS", "SESSION_TTL_MINUTES", "STATS_WORKER_COUNT", "STATS_QUEUE_SIZE", "HISTORY_LIMIT"} {
		os.Unsetenv(key)
	}

	cfg := config.Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3, cfg.DueSoonDays)
	assert.Equal(t, 60, cfg.SessionTTLMinutes)
	assert.Equal(t, 10, cfg.HistoryLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DUE_SOON_DAYS", "7")
	t.Setenv("SESSION_TTL_MINUTES", "not-a-number")

	cfg := config.Load()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 7, cfg.DueSoonDays)
	assert.Equal(t, 60, cfg.SessionTTLMinutes, "invalid value falls back to default")
}
