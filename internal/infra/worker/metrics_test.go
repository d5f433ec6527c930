package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// promauto registers with the default registry at construction, so the
// instance is shared across tests.
var testMetrics = NewWatchMetrics()

func TestNewWatchMetrics(t *testing.T) {
	require.NotNil(t, testMetrics)
	assert.NotNil(t, testMetrics.AuditRunsTotal)
	assert.NotNil(t, testMetrics.AuditRunDurationSeconds)
	assert.NotNil(t, testMetrics.AuditFeedsCheckedTotal)
	assert.NotNil(t, testMetrics.AuditLastSuccessTimestamp)
}

func TestWatchMetrics_Record(t *testing.T) {
	assert.NotPanics(t, func() {
		testMetrics.RecordRun("success")
		testMetrics.RecordRun("failure")
		testMetrics.RecordRunDuration(12.5)
		testMetrics.RecordFeedsChecked(42)
		testMetrics.RecordLastSuccess()
	})
}
