package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dukerupert/tally/internal"
	"github.com/dukerupert/tally/internal/domain"
	"github.com/dukerupert/tally/internal/handler/admin"
	"github.com/dukerupert/tally/internal/jobs"
	"github.com/dukerupert/tally/internal/notify"
	"github.com/dukerupert/tally/internal/postgres"
	"github.com/dukerupert/tally/internal/router"
	"github.com/dukerupert/tally/internal/service"
	"github.com/dukerupert/tally/internal/telemetry"
	"github.com/dukerupert/tally/internal/worker"
)

// notifier delivers both invoice notices and payment reminders.
type notifier interface {
	domain.NotificationDispatcher
	notify.ReminderSender
}

func run() error {
	once := flag.String("once", "", "run one batch (daily or weekly) and exit instead of serving")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Error tracking
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Enabled:     cfg.Sentry.Enabled,
		Environment: cfg.Sentry.Environment,
		Release:     cfg.Sentry.Release,
		SampleRate:  cfg.Sentry.SampleRate,
		Debug:       cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewJobMetrics("tally", registry)

	// Event delivery
	var notices notifier
	if cfg.NATS.URL != "" {
		nc, err := notify.Connect(cfg.NATS.URL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		notices = notify.NewDispatcher(nc, cfg.NATS.SubjectPrefix, logger)
		logger.Info("Publishing scheduler events to NATS", "url", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)
	} else {
		notices = notify.NewLogDispatcher(logger)
		logger.Warn("NATS_URL not set, scheduler events are logged only")
	}

	// Services
	generator := service.NewInvoiceGenerator(store, notices, metrics, logger, cfg.Scheduler.DefaultPaymentTermsDays)
	scanner := service.NewRecurringInvoiceScanner(
		store,
		service.NewRuleSkipEvaluator(),
		generator,
		metrics,
		logger,
		cfg.Scheduler.HolidayCacheTTL,
	)

	orchestrator := jobs.NewOrchestrator(jobs.Deps{
		Tenants:    store,
		Locker:     store,
		Scanner:    scanner,
		Reminders:  notify.NewPaymentReminderService(store, store, notices, cfg.Scheduler.ReminderDaysBeforeDue, metrics, logger),
		Retention:  service.NewRetentionSweeper(store, cfg.Scheduler.NotificationRetentionDays, metrics, logger),
		Reconciler: service.NewStatusReconciler(store, metrics, logger),
		Reports:    service.NewWeeklyReportAggregator(store, store, metrics, logger),
		Archiver:   service.NewArchivalSweeper(store, cfg.Scheduler.ArchiveAfterMonths, metrics, logger),
		Metrics:    metrics,
		Logger:     logger,
	})

	scheduler, err := worker.NewScheduler(orchestrator, worker.Config{
		DailySchedule:  cfg.Scheduler.DailySchedule,
		WeeklySchedule: cfg.Scheduler.WeeklySchedule,
		RunTimeout:     cfg.Scheduler.RunTimeout,
		Location:       cfg.Scheduler.Location(),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if *once != "" {
		return runOnce(ctx, scheduler, *once, logger)
	}

	// Admin server
	e := router.New(admin.NewJobsHandler(scheduler, logger), router.Config{
		AdminToken: cfg.AdminToken,
		Registry:   registry,
		Logger:     logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting admin server", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	schedulerDone := make(chan error, 1)
	go func() {
		schedulerDone <- scheduler.Start(ctx)
	}()

	select {
	case err := <-serverErr:
		stop()
		<-schedulerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}
	<-schedulerDone

	return nil
}

// runOnce runs a single batch in the foreground.
func runOnce(ctx context.Context, scheduler *worker.Scheduler, kind string, logger *slog.Logger) error {
	var (
		report jobs.RunReport
		err    error
	)
	switch kind {
	case "daily":
		report, err = scheduler.TriggerDaily(ctx)
	case "weekly":
		report, err = scheduler.TriggerWeekly(ctx)
	default:
		return fmt.Errorf("unknown job type %q, expected daily or weekly", kind)
	}
	if err != nil {
		return err
	}

	logger.Info("run finished",
		"run_id", report.RunID,
		"job_type", report.JobType,
		"status", report.Status,
		"tenants", len(report.Tenants),
	)
	if report.Status == jobs.RunFailed {
		return fmt.Errorf("%s run failed: %s", kind, report.Error)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
