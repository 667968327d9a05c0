package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/dukerupert/tally/internal/service"
	"github.com/dukerupert/tally/internal/telemetry"
	"github.com/google/uuid"
)

// Scanner processes a tenant's due recurring templates.
type Scanner interface {
	Scan(ctx context.Context, tenantID uuid.UUID) (service.ScanResult, error)
}

// NotificationPurger deletes a tenant's expired notifications.
type NotificationPurger interface {
	PurgeNotifications(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// OverdueMarker moves a tenant's past-due invoices to overdue.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// ReportAggregator builds and stores a tenant's weekly report.
type ReportAggregator interface {
	Aggregate(ctx context.Context, tenantID uuid.UUID) (*domain.WeeklyReport, error)
}

// PaidArchiver archives a tenant's old paid invoices.
type PaidArchiver interface {
	ArchivePaidInvoices(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// Deps wires the orchestrator. A nil component skips its step.
type Deps struct {
	Tenants    domain.TenantStore
	Locker     domain.RunLocker
	Scanner    Scanner
	Reminders  domain.PaymentReminderService
	Retention  NotificationPurger
	Reconciler OverdueMarker
	Reports    ReportAggregator
	Archiver   PaidArchiver
	Metrics    *telemetry.JobMetrics
	Logger     *slog.Logger
}

// Orchestrator runs the daily and weekly job sequences for every active
// tenant. Tenants are processed sequentially in listing order, and a failure
// in one tenant never stops the others.
type Orchestrator struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// NewOrchestrator creates an orchestrator from its dependencies.
func NewOrchestrator(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}
}

type step struct {
	name string
	run  func(ctx context.Context, tr *TenantResult) (int64, error)
}

// RunDailyJobs scans recurring templates, sends payment reminders, purges old
// notifications and marks overdue invoices for every active tenant.
func (o *Orchestrator) RunDailyJobs(ctx context.Context) RunReport {
	var steps []step
	if o.deps.Scanner != nil {
		steps = append(steps, step{StepScanRecurring, o.scan})
	}
	if o.deps.Reminders != nil {
		steps = append(steps, step{StepPaymentReminders, func(ctx context.Context, tr *TenantResult) (int64, error) {
			return 0, o.deps.Reminders.SendPaymentReminders(ctx, tr.TenantID)
		}})
	}
	if o.deps.Retention != nil {
		steps = append(steps, step{StepPurgeNotices, func(ctx context.Context, tr *TenantResult) (int64, error) {
			return o.deps.Retention.PurgeNotifications(ctx, tr.TenantID)
		}})
	}
	if o.deps.Reconciler != nil {
		steps = append(steps, step{StepMarkOverdue, func(ctx context.Context, tr *TenantResult) (int64, error) {
			return o.deps.Reconciler.MarkOverdue(ctx, tr.TenantID)
		}})
	}
	return o.run(ctx, JobTypeDaily, steps)
}

// RunWeeklyJobs stores a weekly report and archives old paid invoices for
// every active tenant.
func (o *Orchestrator) RunWeeklyJobs(ctx context.Context) RunReport {
	var steps []step
	if o.deps.Reports != nil {
		steps = append(steps, step{StepWeeklyReport, func(ctx context.Context, tr *TenantResult) (int64, error) {
			if _, err := o.deps.Reports.Aggregate(ctx, tr.TenantID); err != nil {
				return 0, err
			}
			return 1, nil
		}})
	}
	if o.deps.Archiver != nil {
		steps = append(steps, step{StepArchivePaid, func(ctx context.Context, tr *TenantResult) (int64, error) {
			return o.deps.Archiver.ArchivePaidInvoices(ctx, tr.TenantID)
		}})
	}
	return o.run(ctx, JobTypeWeekly, steps)
}

func (o *Orchestrator) scan(ctx context.Context, tr *TenantResult) (int64, error) {
	res, err := o.deps.Scanner.Scan(ctx, tr.TenantID)
	tr.Scan = &res
	return int64(res.Generated), err
}

func (o *Orchestrator) run(ctx context.Context, jobType string, steps []step) (report RunReport) {
	report = RunReport{
		RunID:     uuid.NewString(),
		JobType:   jobType,
		StartedAt: o.now(),
		Tenants:   []TenantResult{},
	}
	ctx = domain.NewContextWithRunID(ctx, report.RunID)
	logger := o.logger.With("run_id", report.RunID, "job_type", jobType)

	defer func() {
		report.FinishedAt = o.now()
		o.deps.Metrics.ObserveRun(jobType, string(report.Status), report.Duration())
	}()

	if o.deps.Locker != nil {
		release, ok, err := o.deps.Locker.TryLock(ctx, jobType)
		if err != nil {
			report.Status = RunFailed
			report.Error = fmt.Sprintf("failed to acquire run lock: %v", err)
			logger.Error("failed to acquire run lock", "error", err)
			telemetry.CaptureError(err, map[string]interface{}{"job_type": jobType})
			return report
		}
		if !ok {
			report.Status = RunSkipped
			o.deps.Metrics.RunSkipped(jobType)
			logger.Warn("run skipped, another run holds the lock")
			return report
		}
		defer release()
	}

	tenants, err := o.deps.Tenants.ListActiveTenants(ctx)
	if err != nil {
		report.Status = RunFailed
		report.Error = fmt.Sprintf("failed to list tenants: %v", err)
		logger.Error("failed to list tenants", "error", err)
		telemetry.CaptureError(err, map[string]interface{}{"job_type": jobType})
		return report
	}

	logger.Info("batch run started", "tenants", len(tenants))

	for i := range tenants {
		if ctx.Err() != nil {
			for _, t := range tenants[i:] {
				report.NotAttempted = append(report.NotAttempted, t.ID)
			}
			break
		}

		tr := o.runTenant(ctx, logger, jobType, &tenants[i], steps)
		report.Tenants = append(report.Tenants, tr)
		report.Totals.add(tr)
	}

	switch {
	case ctx.Err() != nil && (len(report.NotAttempted) > 0 || scanCanceled(report.Tenants)):
		report.Status = RunCanceled
		report.Error = ctx.Err().Error()
		telemetry.CaptureWarning("batch run canceled", map[string]interface{}{
			"run_id":        report.RunID,
			"job_type":      jobType,
			"not_attempted": len(report.NotAttempted),
		})
	case report.Totals.TenantsFailed > 0 || report.Totals.TemplateFailures > 0:
		report.Status = RunCompletedWithFailures
	default:
		report.Status = RunCompleted
	}

	logger.Info("batch run finished",
		"status", report.Status,
		"tenants_processed", report.Totals.TenantsProcessed,
		"tenants_failed", report.Totals.TenantsFailed,
		"not_attempted", len(report.NotAttempted),
		"invoices_generated", report.Totals.InvoicesGenerated,
		"templates_skipped", report.Totals.TemplatesSkipped,
		"template_failures", report.Totals.TemplateFailures,
		"duration", o.now().Sub(report.StartedAt),
	)

	return report
}

func (o *Orchestrator) runTenant(ctx context.Context, logger *slog.Logger, jobType string, tenant *domain.Tenant, steps []step) TenantResult {
	tr := TenantResult{
		TenantID:   tenant.ID,
		TenantName: tenant.Name,
		Steps:      make([]StepResult, 0, len(steps)),
	}
	ctx = domain.NewContextWithTenant(ctx, tenant)
	logger = logger.With("tenant_id", tenant.ID)
	tenantLabel := tenant.ID.String()

	for _, s := range steps {
		start := o.now()
		count, err := o.runStep(ctx, s, &tr)
		elapsed := o.now().Sub(start)

		sr := StepResult{Step: s.name, Count: count, Duration: elapsed}
		errType := ""
		if err != nil {
			sr.Err = err
			sr.Error = err.Error()
			errType = domain.ErrorCode(err)

			logger.Error("tenant job step failed", "step", s.name, "error", err)
			telemetry.CaptureJobFailure(err, tenantLabel, jobType, map[string]interface{}{
				"step":   s.name,
				"run_id": domain.RunIDFromContext(ctx),
			})
		} else {
			logger.Debug("tenant job step finished", "step", s.name, "count", count, "duration", elapsed)
			telemetry.AddBreadcrumb("jobs", s.name, map[string]interface{}{
				"tenant_id": tenantLabel,
				"count":     count,
			})
		}
		o.deps.Metrics.ObserveStep(tenantLabel, s.name, elapsed, errType)
		tr.Steps = append(tr.Steps, sr)
	}

	if tr.Failed() {
		o.deps.Metrics.TenantFailed(tenantLabel, jobType)
	}
	return tr
}

// runStep runs one step, turning a panic into an error so the rest of the
// tenant's sequence still runs.
func (o *Orchestrator) runStep(ctx context.Context, s step, tr *TenantResult) (count int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.Errorf(domain.EINTERNAL, "jobs."+s.name, "panic: %v", r)
		}
	}()
	return s.run(ctx, tr)
}

func scanCanceled(tenants []TenantResult) bool {
	for _, t := range tenants {
		if t.Scan != nil && t.Scan.Canceled {
			return true
		}
		for _, s := range t.Steps {
			if errors.Is(s.Err, context.Canceled) || errors.Is(s.Err, context.DeadlineExceeded) {
				return true
			}
		}
	}
	return false
}
