// Package notify dispatches audit report summaries to webhook channels.
// Delivery is fire-and-forget: a failed notification is logged and
// counted, never propagated to the audit run.
package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"feed-audit/internal/observability/metrics"
)

const notificationTimeout = 30 * time.Second

// Summary is the per-run digest handed to channels.
type Summary struct {
	RunID    string
	Feeds    int
	Problems int
	Lines    []string
	Duration time.Duration
}

// Channel delivers one report summary to a single destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, summary Summary) error
}

// Service fans a summary out to all configured channels with bounded
// concurrency.
type Service struct {
	channels []Channel
	sem      chan struct{}
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewService creates a notification service. maxConcurrent bounds how
// many channel sends may be in flight at once; values below 1 are
// treated as 1.
func NewService(channels []Channel, maxConcurrent int, logger *slog.Logger) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Service{
		channels: channels,
		sem:      make(chan struct{}, maxConcurrent),
		logger:   logger,
	}
}

// NotifyReport dispatches the summary to every channel in background
// goroutines and returns immediately. The supplied context is used for
// logging only; each send gets its own timeout so a shutdown of the
// caller's context cannot drop in-flight notifications.
func (s *Service) NotifyReport(ctx context.Context, summary Summary) {
	if len(s.channels) == 0 {
		return
	}
	if summary.RunID == "" {
		summary.RunID = uuid.NewString()
	}

	for _, ch := range s.channels {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("notification channel panicked",
						slog.String("channel", ch.Name()),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())))
				}
			}()

			s.sem <- struct{}{}
			defer func() { <-s.sem }()

			sendCtx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
			defer cancel()

			if err := ch.Send(sendCtx, summary); err != nil {
				metrics.RecordNotification(ch.Name(), false)
				s.logger.Warn("notification failed",
					slog.String("channel", ch.Name()),
					slog.String("run_id", summary.RunID),
					slog.Any("error", err))
				return
			}

			metrics.RecordNotification(ch.Name(), true)
			s.logger.Info("notification sent",
				slog.String("channel", ch.Name()),
				slog.String("run_id", summary.RunID))
		}()
	}
}

// Shutdown waits for in-flight notifications to finish or for the
// context to expire, whichever comes first.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
