package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule checks that schedule is a valid five-field cron
// expression.
func ValidateCronSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone checks that timezone is a valid IANA timezone name.
func ValidateTimezone(timezone string) error {
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return nil
}

// ValidatePositiveDuration checks that duration is strictly positive.
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}
	return nil
}

// ValidateIntRange checks that value lies within [min, max] inclusive.
func ValidateIntRange(value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("value %d out of range [%d, %d]", value, min, max)
	}
	return nil
}

// ValidatePositiveInt checks that value is strictly positive.
func ValidatePositiveInt(value int) error {
	if value <= 0 {
		return fmt.Errorf("value must be positive, got %d", value)
	}
	return nil
}

// ValidateNonNegativeFloat checks that value is zero or greater.
func ValidateNonNegativeFloat(value float64) error {
	if value < 0 {
		return fmt.Errorf("value must be non-negative, got %g", value)
	}
	return nil
}
