// Package config assembles the audit configuration from defaults, an
// optional YAML file, environment variables, and command-line flags, in
// that order of precedence (later sources win).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "feed-audit/internal/pkg/config"
)

// Environment variable names consumed by ApplyEnv.
const (
	envTimeout     = "AUDIT_TIMEOUT"
	envMaxAge      = "AUDIT_MAX_AGE_DAYS"
	envParallelism = "AUDIT_PARALLELISM"
	envProbeRPS    = "AUDIT_PROBE_RPS"
	envUserAgent   = "AUDIT_USER_AGENT"
)

// AuditConfig holds the settings consumed by the probe engine.
type AuditConfig struct {
	// OPMLPath is the subscription file to audit. Required.
	OPMLPath string `yaml:"opml"`

	// Timeout bounds each individual probe and each fallback content
	// fetch. Default: 60s.
	Timeout time.Duration `yaml:"timeout"`

	// MaxAgeDays is the staleness threshold in days. Feeds whose newest
	// item is strictly older are reported. Default: 365.
	MaxAgeDays int `yaml:"age"`

	// Parallelism is the upper bound on simultaneously in-flight
	// probes. Default: 5.
	Parallelism int `yaml:"parallelism"`

	// ProbeRPS optionally rate-limits outbound probes across all
	// workers, in requests per second. Zero disables the limiter.
	ProbeRPS float64 `yaml:"probe_rps"`

	// UserAgent is sent on probes and content fetches.
	UserAgent string `yaml:"user_agent"`
}

// Default returns the audit configuration defaults.
func Default() AuditConfig {
	return AuditConfig{
		Timeout:     60 * time.Second,
		MaxAgeDays:  365,
		Parallelism: 5,
		ProbeRPS:    0,
		UserAgent:   "feed-audit/1.0",
	}
}

// ApplyFile overlays settings from a YAML file. Unknown keys are
// rejected so typos surface instead of silently using defaults.
func (c *AuditConfig) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var overlay AuditConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&overlay); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if overlay.OPMLPath != "" {
		c.OPMLPath = overlay.OPMLPath
	}
	if overlay.Timeout != 0 {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxAgeDays != 0 {
		c.MaxAgeDays = overlay.MaxAgeDays
	}
	if overlay.Parallelism != 0 {
		c.Parallelism = overlay.Parallelism
	}
	if overlay.ProbeRPS != 0 {
		c.ProbeRPS = overlay.ProbeRPS
	}
	if overlay.UserAgent != "" {
		c.UserAgent = overlay.UserAgent
	}
	return nil
}

// ApplyEnv overlays settings from environment variables with
// warn-and-fallback semantics: invalid values keep the current setting
// and log a warning.
func (c *AuditConfig) ApplyEnv(logger *slog.Logger) {
	results := map[string]pkgconfig.ConfigLoadResult{
		envTimeout:     pkgconfig.LoadEnvDuration(envTimeout, c.Timeout, pkgconfig.ValidatePositiveDuration),
		envMaxAge:      pkgconfig.LoadEnvInt(envMaxAge, c.MaxAgeDays, pkgconfig.ValidatePositiveInt),
		envParallelism: pkgconfig.LoadEnvInt(envParallelism, c.Parallelism, pkgconfig.ValidatePositiveInt),
		envProbeRPS:    pkgconfig.LoadEnvFloat(envProbeRPS, c.ProbeRPS, pkgconfig.ValidateNonNegativeFloat),
	}

	for key, result := range results {
		for _, warning := range result.Warnings {
			logger.Warn("configuration fallback", slog.String("key", key), slog.String("warning", warning))
		}
	}

	c.Timeout = results[envTimeout].Value.(time.Duration)
	c.MaxAgeDays = results[envMaxAge].Value.(int)
	c.Parallelism = results[envParallelism].Value.(int)
	c.ProbeRPS = results[envProbeRPS].Value.(float64)
	c.UserAgent = pkgconfig.LoadEnvString(envUserAgent, c.UserAgent)
}

// Validate checks that the configuration is usable. Unlike ApplyEnv
// this is a hard gate: a config that fails here aborts the run before
// any probing.
func (c *AuditConfig) Validate() error {
	var errs []error

	if c.OPMLPath == "" {
		errs = append(errs, errors.New("OPML path is required"))
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("timeout: %w", err))
	}
	if err := pkgconfig.ValidatePositiveInt(c.MaxAgeDays); err != nil {
		errs = append(errs, fmt.Errorf("max age: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.Parallelism, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("parallelism: %w", err))
	}
	if err := pkgconfig.ValidateNonNegativeFloat(c.ProbeRPS); err != nil {
		errs = append(errs, fmt.Errorf("probe rps: %w", err))
	}

	return errors.Join(errs...)
}
