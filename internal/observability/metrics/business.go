package metrics

import (
	"time"

	"feed-audit/internal/domain/entity"
)

// RecordProbe records a completed feed probe and its duration.
func RecordProbe(status entity.ProbeStatus, duration time.Duration) {
	ProbesTotal.WithLabelValues(status.String()).Inc()
	ProbeDuration.Observe(duration.Seconds())
}

// RecordStalenessCheck records the result of a content staleness check.
// The age histogram is only observed when a usable date was found.
func RecordStalenessCheck(outcome entity.StalenessOutcome) {
	StalenessChecksTotal.WithLabelValues(outcome.Status.String()).Inc()
	if outcome.Status == entity.StalenessStale {
		StalenessAgeDays.Observe(float64(outcome.AgeDays))
	}
}

// RecordAuditRun records the totals of a completed audit run.
func RecordAuditRun(feeds, problems int, duration time.Duration) {
	AuditRunDuration.Observe(duration.Seconds())
	AuditFeedsTotal.Set(float64(feeds))
	AuditProblemsTotal.Set(float64(problems))
}

// RecordNotification records a report notification attempt.
// Status should be either "success" or "failure".
func RecordNotification(channel string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	NotificationsSentTotal.WithLabelValues(channel, status).Inc()
}
