// Package audit implements the feed probing and classification engine.
// It fetches each feed under a bounded level of parallelism, applies the
// network-outcome decision policy, falls back to a content staleness
// check when the probe is inconclusive, and assembles a deterministic,
// sorted report of the feeds that have a problem.
package audit

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"feed-audit/internal/domain/entity"
	"feed-audit/internal/observability/logging"
	"feed-audit/internal/observability/metrics"
)

// Prober performs the lightweight network probe of a single feed URL.
// Implementations never return an error: every failure mode maps to a
// ProbeOutcome so no feed's fault can abort the run.
type Prober interface {
	Probe(ctx context.Context, url string) entity.ProbeOutcome
}

// FreshnessChecker performs the content-level fallback check.
type FreshnessChecker interface {
	Check(ctx context.Context, url string) entity.StalenessOutcome
}

// Config holds the engine settings.
type Config struct {
	// Parallelism bounds the number of simultaneously in-flight probes.
	Parallelism int

	// Timeout bounds each probe and each fallback content fetch
	// individually. A probe that exceeds it classifies as a timeout and
	// never blocks or cancels sibling probes.
	Timeout time.Duration

	// ProbeRPS optionally rate-limits outbound requests across all
	// workers. Zero disables the limiter.
	ProbeRPS float64
}

// Stats contains totals for one audit run.
type Stats struct {
	Feeds      int
	Duplicates int
	Healthy    int
	Problems   int
	Duration   time.Duration
}

// Report is the outcome of one audit run. Lines holds one entry per
// problem feed, each the concatenation of the feed URL and its
// diagnosis message, sorted bytewise ascending. The order is a pure
// function of the report's contents, never of probe completion order.
type Report struct {
	Lines []string
	Stats Stats
}

// Service is the probe engine. It holds no per-run state; a single
// Service may run any number of audits, sequentially or not.
type Service struct {
	prober  Prober
	checker FreshnessChecker
	cfg     Config
	limiter *rate.Limiter
}

// NewService creates an engine from its two collaborators and the
// engine settings. Parallelism below 1 is treated as 1.
func NewService(prober Prober, checker FreshnessChecker, cfg Config) *Service {
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	var limiter *rate.Limiter
	if cfg.ProbeRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ProbeRPS), 1)
	}
	return &Service{
		prober:  prober,
		checker: checker,
		cfg:     cfg,
		limiter: limiter,
	}
}

// Run audits every feed exactly once and returns the sorted report.
// Duplicate URLs in the input are probed once; each URL appears in the
// report at most once. The only error Run returns is the context's:
// per-feed faults are always converted into diagnoses.
//
// Each worker writes to its own result slot, indexed by input position,
// so no locking is needed around the shared result collection.
func (s *Service) Run(ctx context.Context, feeds []entity.Feed) (*Report, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	unique, dropped := dedupe(feeds)
	if dropped > 0 {
		logger.Debug("dropped duplicate feed URLs", slog.Int("count", dropped))
	}

	slots := make([]entity.Diagnosis, len(unique))
	sem := make(chan struct{}, s.cfg.Parallelism)
	eg, egCtx := errgroup.WithContext(ctx)

	for i, feed := range unique {
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			if s.limiter != nil {
				if err := s.limiter.Wait(egCtx); err != nil {
					return err
				}
			}

			slots[i] = s.auditFeed(egCtx, feed.URL)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(unique))
	for i, diag := range slots {
		if diag.None() {
			continue
		}
		lines = append(lines, unique[i].URL+string(diag))
	}
	sort.Strings(lines)

	stats := Stats{
		Feeds:      len(unique),
		Duplicates: dropped,
		Healthy:    len(unique) - len(lines),
		Problems:   len(lines),
		Duration:   time.Since(start),
	}
	metrics.RecordAuditRun(stats.Feeds, stats.Problems, stats.Duration)

	logger.Info("audit completed",
		slog.Int("feeds", stats.Feeds),
		slog.Int("healthy", stats.Healthy),
		slog.Int("problems", stats.Problems),
		slog.Duration("duration", stats.Duration),
	)

	return &Report{Lines: lines, Stats: stats}, nil
}

// auditFeed runs the full per-feed pipeline: network probe first, then
// the content staleness check for the inconclusive outcomes.
func (s *Service) auditFeed(ctx context.Context, url string) entity.Diagnosis {
	logger := logging.FromContext(ctx)

	probeStart := time.Now()
	pctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	outcome := s.prober.Probe(pctx, url)
	cancel()
	metrics.RecordProbe(outcome.Status, time.Since(probeStart))

	if outcome.Terminal() {
		logger.Debug("probe found network problem",
			slog.String("url", url),
			slog.String("outcome", outcome.Status.String()))
		return outcome.Diagnosis()
	}

	if outcome.Status == entity.ProbeError {
		logger.Debug("probe inconclusive, checking content",
			slog.String("url", url),
			slog.String("reason", outcome.Reason))
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	staleness := s.checker.Check(cctx, url)
	metrics.RecordStalenessCheck(staleness)

	return staleness.Diagnosis()
}

// dedupe drops repeated URLs, keeping the first occurrence in input
// order, so every URL is probed exactly once.
func dedupe(feeds []entity.Feed) ([]entity.Feed, int) {
	seen := make(map[string]struct{}, len(feeds))
	unique := make([]entity.Feed, 0, len(feeds))
	for _, f := range feeds {
		if _, ok := seen[f.URL]; ok {
			continue
		}
		seen[f.URL] = struct{}{}
		unique = append(unique, f)
	}
	return unique, len(feeds) - len(unique)
}
