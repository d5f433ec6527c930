package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"feed-audit/internal/config"
	"feed-audit/internal/infra/prober"
	"feed-audit/internal/infra/scraper"
	workerPkg "feed-audit/internal/infra/worker"
	"feed-audit/internal/observability/logging"
	"feed-audit/internal/opml"
	"feed-audit/internal/usecase/audit"
	"feed-audit/internal/usecase/notify"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to YAML configuration file")
		opmlPath    = flag.String("opml", "", "path to the OPML subscription list")
		timeout     = flag.Duration("timeout", 0, "per-request timeout (overrides config)")
		maxAge      = flag.Int("age", 0, "staleness threshold in days (overrides config)")
		parallelism = flag.Int("parallel", 0, "maximum concurrent probes (overrides config)")
		probeRPS    = flag.Float64("rps", -1, "outbound request rate limit, 0 disables (overrides config)")
		watch       = flag.Bool("watch", false, "run on a cron schedule instead of once")
	)
	flag.Parse()

	logger := logging.NewLogger()

	cfg := config.Default()
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			fatal(logger, "failed to load configuration file", err)
		}
	}
	cfg.ApplyEnv(logger)

	// Flags take precedence over both the file and the environment, but
	// only when explicitly set.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "opml":
			cfg.OPMLPath = *opmlPath
		case "timeout":
			cfg.Timeout = *timeout
		case "age":
			cfg.MaxAgeDays = *maxAge
		case "parallel":
			cfg.Parallelism = *parallelism
		case "rps":
			cfg.ProbeRPS = *probeRPS
		}
	})
	if cfg.OPMLPath == "" && flag.NArg() > 0 {
		cfg.OPMLPath = flag.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid configuration", err)
	}

	logger.Info("configuration loaded",
		slog.String("opml", cfg.OPMLPath),
		slog.Duration("timeout", cfg.Timeout),
		slog.Int("max_age_days", cfg.MaxAgeDays),
		slog.Int("parallelism", cfg.Parallelism),
		slog.Float64("probe_rps", cfg.ProbeRPS),
		slog.Bool("watch", *watch))

	svc := buildAuditService(cfg)

	if *watch {
		runWatch(logger, svc, cfg)
		return
	}

	notifyService := buildNotifyService(logger, 4)
	if err := runOnce(context.Background(), logger, svc, notifyService, cfg); err != nil {
		fatal(logger, "audit failed", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := notifyService.Shutdown(shutdownCtx); err != nil {
		logger.Warn("notification shutdown incomplete", slog.Any("error", err))
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// buildAuditService assembles the probe engine from the shared HTTP
// client settings.
func buildAuditService(cfg config.AuditConfig) *audit.Service {
	return audit.NewService(
		prober.New(nil, cfg.UserAgent),
		scraper.NewFreshnessChecker(nil, cfg.UserAgent, cfg.MaxAgeDays),
		audit.Config{
			Parallelism: cfg.Parallelism,
			Timeout:     cfg.Timeout,
			ProbeRPS:    cfg.ProbeRPS,
		},
	)
}

// runOnce executes a single audit and writes the problem report to
// stdout, one line per problem feed in sorted order. Logs go to stderr
// so the report stream stays clean.
func runOnce(ctx context.Context, logger *slog.Logger, svc *audit.Service, notifyService *notify.Service, cfg config.AuditConfig) error {
	runID := uuid.NewString()
	logger = logging.WithRunID(logger, runID)
	ctx = logging.WithLogger(ctx, logger)

	feeds, err := opml.LoadFile(cfg.OPMLPath)
	if err != nil {
		return fmt.Errorf("load OPML: %w", err)
	}
	logger.Info("subscription list loaded",
		slog.String("path", cfg.OPMLPath),
		slog.Int("feeds", len(feeds)))

	report, err := svc.Run(ctx, feeds)
	if err != nil {
		return fmt.Errorf("audit run: %w", err)
	}

	for _, line := range report.Lines {
		fmt.Println(line)
	}

	if notifyService != nil {
		notifyService.NotifyReport(ctx, notify.Summary{
			RunID:    runID,
			Feeds:    report.Stats.Feeds,
			Problems: report.Stats.Problems,
			Lines:    report.Lines,
			Duration: report.Stats.Duration,
		})
	}
	return nil
}

// runWatch runs audits on a cron schedule until interrupted. Metrics
// and health servers run for the lifetime of the process.
func runWatch(logger *slog.Logger, svc *audit.Service, cfg config.AuditConfig) {
	watchCfg, err := workerPkg.LoadWatchConfigFromEnv(logger)
	if err != nil {
		fatal(logger, "failed to load watch configuration", err)
	}
	logger.Info("watch configuration loaded",
		slog.String("cron_schedule", watchCfg.CronSchedule),
		slog.String("timezone", watchCfg.Timezone),
		slog.Duration("run_timeout", watchCfg.RunTimeout),
		slog.Int("health_port", watchCfg.HealthPort),
		slog.Int("metrics_port", watchCfg.MetricsPort))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifyService := buildNotifyService(logger, watchCfg.NotifyMaxConcurrent)
	watchMetrics := workerPkg.NewWatchMetrics()

	startMetricsServer(ctx, logger, watchCfg.MetricsPort)

	healthAddr := fmt.Sprintf(":%d", watchCfg.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	loc, err := time.LoadLocation(watchCfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC",
			slog.String("timezone", watchCfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(watchCfg.CronSchedule, func() {
		runAuditJob(logger, svc, notifyService, cfg, watchCfg, watchMetrics)
	})
	if err != nil {
		fatal(logger, "failed to add cron job", err)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("watch mode started",
		slog.String("schedule", watchCfg.CronSchedule),
		slog.String("timezone", watchCfg.Timezone))

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("shutdown signal received")

	cronCtx := c.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(watchCfg.RunTimeout):
		logger.Warn("in-flight audit did not finish before shutdown deadline")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := notifyService.Shutdown(shutdownCtx); err != nil {
		logger.Warn("notification shutdown incomplete", slog.Any("error", err))
	}
	logger.Info("watch mode stopped")
}

// runAuditJob executes one scheduled audit with its own timeout and
// records job metrics. Failures are logged, never fatal.
func runAuditJob(logger *slog.Logger, svc *audit.Service, notifyService *notify.Service, cfg config.AuditConfig, watchCfg *workerPkg.WatchConfig, metrics *workerPkg.WatchMetrics) {
	start := time.Now()
	runID := uuid.NewString()
	jobLogger := logging.WithRunID(logger, runID)
	jobLogger.Info("scheduled audit started")

	ctx, cancel := context.WithTimeout(context.Background(), watchCfg.RunTimeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, jobLogger)

	feeds, err := opml.LoadFile(cfg.OPMLPath)
	if err != nil {
		jobLogger.Error("failed to load subscription list", slog.Any("error", err))
		metrics.RecordRun("failure")
		metrics.RecordRunDuration(time.Since(start).Seconds())
		return
	}

	report, err := svc.Run(ctx, feeds)
	if err != nil {
		jobLogger.Error("scheduled audit failed", slog.Any("error", err))
		metrics.RecordRun("failure")
		metrics.RecordRunDuration(time.Since(start).Seconds())
		return
	}

	metrics.RecordRun("success")
	metrics.RecordRunDuration(time.Since(start).Seconds())
	metrics.RecordFeedsChecked(report.Stats.Feeds)
	metrics.RecordLastSuccess()

	notifyService.NotifyReport(ctx, notify.Summary{
		RunID:    runID,
		Feeds:    report.Stats.Feeds,
		Problems: report.Stats.Problems,
		Lines:    report.Lines,
		Duration: report.Stats.Duration,
	})

	jobLogger.Info("scheduled audit completed",
		slog.Int("feeds", report.Stats.Feeds),
		slog.Int("problems", report.Stats.Problems),
		slog.Duration("duration", report.Stats.Duration))
}

// buildNotifyService assembles the notification service from the
// channel environment configuration. A run with no channels enabled
// still gets a service; sends just no-op.
func buildNotifyService(logger *slog.Logger, maxConcurrent int) *notify.Service {
	var channels []notify.Channel

	if slackCfg := loadSlackConfig(logger); slackCfg.Enabled {
		channels = append(channels, notify.NewSlackChannel(slackCfg))
		logger.Info("Slack channel initialized")
	} else {
		logger.Info("Slack channel disabled")
	}

	if discordCfg := loadDiscordConfig(logger); discordCfg.Enabled {
		channels = append(channels, notify.NewDiscordChannel(discordCfg))
		logger.Info("Discord channel initialized")
	} else {
		logger.Info("Discord channel disabled")
	}

	return notify.NewService(channels, maxConcurrent, logger)
}

// loadSlackConfig reads SLACK_ENABLED and SLACK_WEBHOOK_URL. An invalid
// webhook URL disables the channel rather than failing the run.
func loadSlackConfig(logger *slog.Logger) notify.WebhookConfig {
	if os.Getenv("SLACK_ENABLED") != "true" {
		return notify.WebhookConfig{Enabled: false}
	}

	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")
	if err := notify.ValidateSlackWebhookURL(webhookURL); err != nil {
		logger.Warn("invalid Slack webhook URL, disabling notifications", slog.Any("error", err))
		return notify.WebhookConfig{Enabled: false}
	}

	return notify.WebhookConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// loadDiscordConfig reads DISCORD_ENABLED and DISCORD_WEBHOOK_URL with
// the same disable-on-invalid policy as Slack.
func loadDiscordConfig(logger *slog.Logger) notify.WebhookConfig {
	if os.Getenv("DISCORD_ENABLED") != "true" {
		return notify.WebhookConfig{Enabled: false}
	}

	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")
	if err := notify.ValidateDiscordWebhookURL(webhookURL); err != nil {
		logger.Warn("invalid Discord webhook URL, disabling notifications", slog.Any("error", err))
		return notify.WebhookConfig{Enabled: false}
	}

	return notify.WebhookConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}
