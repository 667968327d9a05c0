// Package worker triggers the scheduled batch runs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/dukerupert/tally/internal/jobs"
)

// ErrRunInProgress is returned when a run of the same kind is still in flight
// in this process.
var ErrRunInProgress = errors.New("a run of this kind is already in progress")

// Runner executes the daily and weekly batch runs.
type Runner interface {
	RunDailyJobs(ctx context.Context) jobs.RunReport
	RunWeeklyJobs(ctx context.Context) jobs.RunReport
}

// Config holds scheduler configuration
type Config struct {
	// WorkerID identifies this scheduler instance in logs
	WorkerID string

	// DailySchedule is a standard five-field cron expression
	DailySchedule string

	// WeeklySchedule is a standard five-field cron expression
	WeeklySchedule string

	// RunTimeout bounds a single run
	RunTimeout time.Duration

	// Location the cron expressions are evaluated in (nil = UTC)
	Location *time.Location
}

// Scheduler starts batch runs from cron expressions or on demand.
// At most one run of each kind is in flight at a time.
type Scheduler struct {
	config Config
	runner Runner
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running map[string]bool
}

// NewScheduler creates a scheduler. The cron expressions are validated here
// and registered by Start.
func NewScheduler(runner Runner, config Config, logger *slog.Logger) (*Scheduler, error) {
	// Set defaults
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("scheduler-%s", uuid.New().String()[:8])
	}
	if config.DailySchedule == "" {
		config.DailySchedule = "0 2 * * *"
	}
	if config.WeeklySchedule == "" {
		config.WeeklySchedule = "0 3 * * 1"
	}
	if config.RunTimeout == 0 {
		config.RunTimeout = 30 * time.Minute
	}
	if config.Location == nil {
		config.Location = time.UTC
	}

	if _, err := cron.ParseStandard(config.DailySchedule); err != nil {
		return nil, fmt.Errorf("invalid daily schedule %q: %w", config.DailySchedule, err)
	}
	if _, err := cron.ParseStandard(config.WeeklySchedule); err != nil {
		return nil, fmt.Errorf("invalid weekly schedule %q: %w", config.WeeklySchedule, err)
	}

	s := &Scheduler{
		config:  config,
		runner:  runner,
		logger:  logger,
		running: make(map[string]bool),
	}

	cl := cronLogger{logger}
	s.cron = cron.New(
		cron.WithLocation(config.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	return s, nil
}

// Start runs the cron entries until the context is cancelled. In-flight runs
// are cancelled with the context and awaited before Start returns.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.config.DailySchedule, func() {
		s.scheduled(ctx, jobs.JobTypeDaily, s.runner.RunDailyJobs)
	}); err != nil {
		return fmt.Errorf("failed to register daily schedule: %w", err)
	}
	if _, err := s.cron.AddFunc(s.config.WeeklySchedule, func() {
		s.scheduled(ctx, jobs.JobTypeWeekly, s.runner.RunWeeklyJobs)
	}); err != nil {
		return fmt.Errorf("failed to register weekly schedule: %w", err)
	}

	s.logger.Info("scheduler starting",
		"worker_id", s.config.WorkerID,
		"daily_schedule", s.config.DailySchedule,
		"weekly_schedule", s.config.WeeklySchedule,
		"run_timeout", s.config.RunTimeout,
		"location", s.config.Location.String(),
	)

	s.cron.Start()
	<-ctx.Done()

	s.logger.Info("scheduler shutting down", "worker_id", s.config.WorkerID)
	<-s.cron.Stop().Done()
	return ctx.Err()
}

// TriggerDaily runs the daily jobs now and returns the report.
func (s *Scheduler) TriggerDaily(ctx context.Context) (jobs.RunReport, error) {
	return s.trigger(ctx, jobs.JobTypeDaily, s.runner.RunDailyJobs)
}

// TriggerWeekly runs the weekly jobs now and returns the report.
func (s *Scheduler) TriggerWeekly(ctx context.Context) (jobs.RunReport, error) {
	return s.trigger(ctx, jobs.JobTypeWeekly, s.runner.RunWeeklyJobs)
}

func (s *Scheduler) scheduled(ctx context.Context, kind string, run func(context.Context) jobs.RunReport) {
	report, err := s.trigger(ctx, kind, run)
	if errors.Is(err, ErrRunInProgress) {
		s.logger.Warn("scheduled run skipped, previous run still in progress", "job_type", kind)
		return
	}

	s.logger.Info("scheduled run finished",
		"job_type", kind,
		"run_id", report.RunID,
		"status", report.Status,
		"tenants", len(report.Tenants),
		"failures", len(report.Failures()),
		"duration", report.Duration(),
	)
}

func (s *Scheduler) trigger(ctx context.Context, kind string, run func(context.Context) jobs.RunReport) (jobs.RunReport, error) {
	s.mu.Lock()
	if s.running[kind] {
		s.mu.Unlock()
		return jobs.RunReport{}, ErrRunInProgress
	}
	s.running[kind] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, kind)
		s.mu.Unlock()
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	return run(runCtx), nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
