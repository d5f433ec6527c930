package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WatchMetrics provides Prometheus metrics for scheduled audit runs.
//
// Metrics:
//   - worker_audit_runs_total: Total scheduled audit runs by status (success/failure)
//   - worker_audit_run_duration_seconds: Duration histogram of scheduled runs
//   - worker_audit_feeds_checked_total: Total feeds checked across all runs
//   - worker_audit_last_success_timestamp: Unix timestamp of last successful run
type WatchMetrics struct {
	// AuditRunsTotal counts scheduled audit runs by status.
	// Labels: status (success, failure)
	AuditRunsTotal *prometheus.CounterVec

	// AuditRunDurationSeconds measures the duration of scheduled runs.
	// Buckets cover 1s through 30m, matching the run timeout range.
	AuditRunDurationSeconds prometheus.Histogram

	// AuditFeedsCheckedTotal counts feeds checked across all runs.
	AuditFeedsCheckedTotal prometheus.Counter

	// AuditLastSuccessTimestamp records when the last run succeeded.
	AuditLastSuccessTimestamp prometheus.Gauge
}

// NewWatchMetrics creates the watch-mode metrics. Registration happens
// automatically via promauto, so this must be called at most once per
// process.
func NewWatchMetrics() *WatchMetrics {
	return &WatchMetrics{
		AuditRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_audit_runs_total",
			Help: "Total number of scheduled audit runs by status (success/failure)",
		}, []string{"status"}),

		AuditRunDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_audit_run_duration_seconds",
			Help:    "Duration of scheduled audit runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		AuditFeedsCheckedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_audit_feeds_checked_total",
			Help: "Total number of feeds checked across all scheduled runs",
		}),

		AuditLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_audit_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled run",
		}),
	}
}

// RecordRun increments the run counter for the given status
// ("success" or "failure").
func (m *WatchMetrics) RecordRun(status string) {
	m.AuditRunsTotal.WithLabelValues(status).Inc()
}

// RecordRunDuration observes the duration of a scheduled run in seconds.
func (m *WatchMetrics) RecordRunDuration(seconds float64) {
	m.AuditRunDurationSeconds.Observe(seconds)
}

// RecordFeedsChecked adds the number of feeds checked in one run.
func (m *WatchMetrics) RecordFeedsChecked(count int) {
	m.AuditFeedsCheckedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful run.
func (m *WatchMetrics) RecordLastSuccess() {
	m.AuditLastSuccessTimestamp.SetToCurrentTime()
}
