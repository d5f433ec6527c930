// Package worker provides the scheduling layer for watch mode: cron
// configuration, job metrics, and the health endpoint.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	pkgconfig "feed-audit/internal/pkg/config"
)

// WatchConfig holds the settings for running audits on a schedule.
type WatchConfig struct {
	// CronSchedule is the five-field cron expression for audit runs.
	// Default: "0 6 * * *" (every day at 06:00).
	CronSchedule string

	// Timezone is the IANA timezone name the schedule is evaluated in.
	// Default: "UTC".
	Timezone string

	// RunTimeout bounds one complete audit run. Default: 30 minutes.
	RunTimeout time.Duration

	// NotifyMaxConcurrent bounds concurrent notification sends.
	// Default: 4.
	NotifyMaxConcurrent int

	// HealthPort is the port for the health check server. Default: 9091.
	HealthPort int

	// MetricsPort is the port for the Prometheus metrics server.
	// Default: 9090.
	MetricsPort int
}

// DefaultWatchConfig returns the watch-mode defaults.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		CronSchedule:        "0 6 * * *",
		Timezone:            "UTC",
		RunTimeout:          30 * time.Minute,
		NotifyMaxConcurrent: 4,
		HealthPort:          9091,
		MetricsPort:         9090,
	}
}

// LoadWatchConfigFromEnv loads watch-mode settings from the environment
// with warn-and-fallback semantics, then validates the result. The
// fail-open loading means the returned error can only come from an
// inconsistent set of defaults, which is a programming error.
func LoadWatchConfigFromEnv(logger *slog.Logger) (*WatchConfig, error) {
	defaults := DefaultWatchConfig()

	results := map[string]pkgconfig.ConfigLoadResult{
		"AUDIT_CRON_SCHEDULE": pkgconfig.LoadEnvWithFallback(
			"AUDIT_CRON_SCHEDULE", defaults.CronSchedule, pkgconfig.ValidateCronSchedule),
		"AUDIT_TIMEZONE": pkgconfig.LoadEnvWithFallback(
			"AUDIT_TIMEZONE", defaults.Timezone, pkgconfig.ValidateTimezone),
		"AUDIT_RUN_TIMEOUT": pkgconfig.LoadEnvDuration(
			"AUDIT_RUN_TIMEOUT", defaults.RunTimeout, pkgconfig.ValidatePositiveDuration),
		"AUDIT_NOTIFY_MAX_CONCURRENT": pkgconfig.LoadEnvInt(
			"AUDIT_NOTIFY_MAX_CONCURRENT", defaults.NotifyMaxConcurrent,
			func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 50) }),
		"AUDIT_HEALTH_PORT": pkgconfig.LoadEnvInt(
			"AUDIT_HEALTH_PORT", defaults.HealthPort,
			func(v int) error { return pkgconfig.ValidateIntRange(v, 1024, 65535) }),
		"AUDIT_METRICS_PORT": pkgconfig.LoadEnvInt(
			"AUDIT_METRICS_PORT", defaults.MetricsPort,
			func(v int) error { return pkgconfig.ValidateIntRange(v, 1024, 65535) }),
	}

	for key, result := range results {
		for _, warning := range result.Warnings {
			logger.Warn("watch configuration fallback",
				slog.String("key", key), slog.String("warning", warning))
		}
	}

	cfg := &WatchConfig{
		CronSchedule:        results["AUDIT_CRON_SCHEDULE"].Value.(string),
		Timezone:            results["AUDIT_TIMEZONE"].Value.(string),
		RunTimeout:          results["AUDIT_RUN_TIMEOUT"].Value.(time.Duration),
		NotifyMaxConcurrent: results["AUDIT_NOTIFY_MAX_CONCURRENT"].Value.(int),
		HealthPort:          results["AUDIT_HEALTH_PORT"].Value.(int),
		MetricsPort:         results["AUDIT_METRICS_PORT"].Value.(int),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("watch configuration invalid after fallback: %w", err)
	}
	return cfg, nil
}

// Validate checks all fields and aggregates every violation.
func (c *WatchConfig) Validate() error {
	var errs []error

	if err := pkgconfig.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := pkgconfig.ValidatePositiveDuration(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	return errors.Join(errs...)
}
