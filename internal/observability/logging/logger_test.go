package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	require.NotNil(t, logger)
}

func TestNewTextLogger(t *testing.T) {
	logger := NewTextLogger()
	require.NotNil(t, logger)
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	logger := NewLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestWithRunID(t *testing.T) {
	base := NewLogger()

	tagged := WithRunID(base, "run-123")
	assert.NotNil(t, tagged)

	// Empty run ID returns the logger unchanged.
	assert.Same(t, base, WithRunID(base, ""))
}

func TestWithFields(t *testing.T) {
	logger := NewLogger()
	withFields := WithFields(logger, map[string]interface{}{
		"feeds":    42,
		"problems": 3,
	})
	require.NotNil(t, withFields)
	assert.NotSame(t, logger, withFields)
}

func TestFromContext_Default(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestWithLogger_RoundTrip(t *testing.T) {
	logger := NewLogger()
	ctx := WithLogger(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got)
}
