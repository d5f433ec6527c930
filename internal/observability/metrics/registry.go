// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Probe metrics track the network-level classification of feed probes
var (
	// ProbesTotal counts completed probes by outcome classification
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_probes_total",
			Help: "Total number of feed probes by outcome",
		},
		[]string{"outcome"},
	)

	// ProbeDuration measures the duration of a single feed probe
	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_probe_duration_seconds",
			Help:    "Duration of a single feed probe in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
)

// Staleness metrics track the content-level fallback check
var (
	// StalenessChecksTotal counts fallback checks by result
	StalenessChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_staleness_checks_total",
			Help: "Total number of content staleness checks by result",
		},
		[]string{"result"},
	)

	// StalenessAgeDays observes the age in days of feeds whose newest
	// item carried a usable date
	StalenessAgeDays = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_staleness_age_days",
			Help:    "Age in days of the newest item of checked feeds",
			Buckets: []float64{1, 7, 30, 90, 180, 365, 730, 1460},
		},
	)
)

// Audit run metrics track whole-run behavior
var (
	// AuditRunDuration measures the duration of a complete audit run
	AuditRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audit_run_duration_seconds",
			Help:    "Duration of a complete audit run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	// AuditFeedsTotal records the number of feeds in the last run
	AuditFeedsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_feeds_total",
			Help: "Number of feeds audited in the last run",
		},
	)

	// AuditProblemsTotal records the number of problem feeds in the last run
	AuditProblemsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_problems_total",
			Help: "Number of problem feeds found in the last run",
		},
	)
)

// Notification metrics track report delivery to webhook channels
var (
	// NotificationsSentTotal counts notification attempts per channel
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_notifications_sent_total",
			Help: "Total number of report notifications by channel and status",
		},
		[]string{"channel", "status"},
	)
)
