package worker

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultWatchConfig(t *testing.T) {
	cfg := DefaultWatchConfig()

	assert.Equal(t, "0 6 * * *", cfg.CronSchedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 30*time.Minute, cfg.RunTimeout)
	assert.Equal(t, 4, cfg.NotifyMaxConcurrent)
	assert.Equal(t, 9091, cfg.HealthPort)
	assert.Equal(t, 9090, cfg.MetricsPort)

	assert.NoError(t, cfg.Validate())
}

func TestLoadWatchConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadWatchConfigFromEnv(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, DefaultWatchConfig(), *cfg)
}

func TestLoadWatchConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("AUDIT_CRON_SCHEDULE", "*/15 * * * *")
	t.Setenv("AUDIT_TIMEZONE", "Asia/Tokyo")
	t.Setenv("AUDIT_RUN_TIMEOUT", "10m")
	t.Setenv("AUDIT_NOTIFY_MAX_CONCURRENT", "8")
	t.Setenv("AUDIT_HEALTH_PORT", "18091")
	t.Setenv("AUDIT_METRICS_PORT", "18090")

	cfg, err := LoadWatchConfigFromEnv(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "*/15 * * * *", cfg.CronSchedule)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, 10*time.Minute, cfg.RunTimeout)
	assert.Equal(t, 8, cfg.NotifyMaxConcurrent)
	assert.Equal(t, 18091, cfg.HealthPort)
	assert.Equal(t, 18090, cfg.MetricsPort)
}

func TestLoadWatchConfigFromEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("AUDIT_CRON_SCHEDULE", "not a schedule")
	t.Setenv("AUDIT_TIMEZONE", "Mars/Olympus")
	t.Setenv("AUDIT_RUN_TIMEOUT", "-5m")
	t.Setenv("AUDIT_NOTIFY_MAX_CONCURRENT", "0")
	t.Setenv("AUDIT_HEALTH_PORT", "80")

	cfg, err := LoadWatchConfigFromEnv(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, DefaultWatchConfig(), *cfg)
}

func TestWatchConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WatchConfig)
		valid  bool
	}{
		{"defaults", func(c *WatchConfig) {}, true},
		{"bad schedule", func(c *WatchConfig) { c.CronSchedule = "nope" }, false},
		{"bad timezone", func(c *WatchConfig) { c.Timezone = "Nowhere" }, false},
		{"zero run timeout", func(c *WatchConfig) { c.RunTimeout = 0 }, false},
		{"notify concurrency too high", func(c *WatchConfig) { c.NotifyMaxConcurrent = 100 }, false},
		{"privileged health port", func(c *WatchConfig) { c.HealthPort = 80 }, false},
		{"privileged metrics port", func(c *WatchConfig) { c.MetricsPort = 443 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultWatchConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
