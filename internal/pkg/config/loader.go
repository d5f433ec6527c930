// Package config provides reusable configuration loading helpers with
// warn-and-fallback semantics: invalid values never abort startup, they
// fall back to defaults and surface a warning for the caller to log.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult represents the result of loading a configuration value.
// It contains the loaded value, any warnings generated during loading,
// and a flag indicating whether a fallback value was used.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString loads a string value from an environment variable.
// If the environment variable is not set, the default value is returned.
// No validation is performed.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string value from an environment variable
// with validation and automatic fallback to default on validation failure.
// An unset or empty variable uses the default without a warning.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallbackResult(envKey, value, err, defaultValue)
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration loads a duration value from an environment variable
// with parsing, validation, and fallback to default on failure.
// The value must be parseable by time.ParseDuration ("30s", "1h30m", ...).
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallbackResult(envKey, valueStr, err, defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, valueStr, err, defaultValue)
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvInt loads an integer value from an environment variable with
// parsing, validation, and fallback to default on failure.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallbackResult(envKey, valueStr, err, defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, valueStr, err, defaultValue)
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvFloat loads a float value from an environment variable with
// parsing, validation, and fallback to default on failure.
func LoadEnvFloat(envKey string, defaultValue float64, validator func(float64) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return fallbackResult(envKey, valueStr, err, defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, valueStr, err, defaultValue)
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvBool loads a boolean value from an environment variable.
// Accepts the forms understood by strconv.ParseBool; anything else
// falls back to the default with a warning.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallbackResult(envKey, valueStr, err, defaultValue)
	}

	return ConfigLoadResult{Value: parsed}
}

func fallbackResult(envKey, raw string, err error, defaultValue interface{}) ConfigLoadResult {
	warning := fmt.Sprintf(
		"Invalid %s='%s': %v, falling back to default '%v'",
		envKey, raw, err, defaultValue,
	)
	return ConfigLoadResult{
		Value:           defaultValue,
		Warnings:        []string{warning},
		FallbackApplied: true,
	}
}
