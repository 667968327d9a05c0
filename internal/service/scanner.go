package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/dukerupert/tally/internal/schedule"
	"github.com/dukerupert/tally/internal/telemetry"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Generator produces one invoice from a due template.
type Generator interface {
	Generate(ctx context.Context, due domain.DueTemplate, cal schedule.Calendar) (*domain.Invoice, error)
}

// ScanResult summarises one scan of a tenant's due templates.
type ScanResult struct {
	TenantID  uuid.UUID         `json:"tenant_id"`
	Due       int               `json:"due"`
	Processed int               `json:"processed"`
	Generated int               `json:"generated"`
	Skipped   int               `json:"skipped"`
	Failures  []TemplateFailure `json:"failures,omitempty"`

	// Canceled is set when the context ended before every due template was
	// processed.
	Canceled bool `json:"canceled,omitempty"`
}

// Failed returns the number of templates that failed.
func (r ScanResult) Failed() int {
	return len(r.Failures)
}

// RecurringInvoiceScanner finds a tenant's due templates and drives skip
// evaluation and generation for each of them.
//
// Templates are processed one at a time. A failure, including a panic, is
// recorded for that template and the scan continues.
type RecurringInvoiceScanner struct {
	store     domain.RecurringStore
	skip      domain.SkipEvaluator
	generator Generator
	holidays  *cache.Cache
	metrics   *telemetry.JobMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewRecurringInvoiceScanner creates a scanner. Holiday calendars are cached
// per tenant for holidayTTL.
func NewRecurringInvoiceScanner(
	store domain.RecurringStore,
	skip domain.SkipEvaluator,
	generator Generator,
	metrics *telemetry.JobMetrics,
	logger *slog.Logger,
	holidayTTL time.Duration,
) *RecurringInvoiceScanner {
	if holidayTTL <= 0 {
		holidayTTL = 10 * time.Minute
	}
	return &RecurringInvoiceScanner{
		store:     store,
		skip:      skip,
		generator: generator,
		holidays:  cache.New(holidayTTL, 2*holidayTTL),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Scan processes every template of the tenant that is due now. The returned
// error is set only when the due templates could not be listed; per-template
// failures are reported in the result.
func (s *RecurringInvoiceScanner) Scan(ctx context.Context, tenantID uuid.UUID) (ScanResult, error) {
	res := ScanResult{TenantID: tenantID}

	if err := domain.CheckTenant(ctx, tenantID); err != nil {
		return res, err
	}

	due, err := s.store.ListDueTemplates(ctx, tenantID, s.now())
	if err != nil {
		return res, fmt.Errorf("failed to list due templates: %w", err)
	}
	res.Due = len(due)

	tenant := tenantID.String()
	for _, d := range due {
		if ctx.Err() != nil {
			res.Canceled = true
			break
		}

		res.Processed++
		s.metrics.TemplateProcessed(tenant)

		skipped, err := s.process(ctx, d)
		switch {
		case err != nil:
			res.Failures = append(res.Failures, TemplateFailure{
				TemplateID:   d.Template.ID,
				TemplateName: d.Template.Name,
				Err:          err,
			})
			s.metrics.TemplateFailed(tenant, domain.ErrorCode(err))
			s.logger.Error("recurring template failed",
				"tenant_id", tenantID,
				"template_id", d.Template.ID,
				"error", err,
			)
		case skipped:
			res.Skipped++
			s.metrics.TemplateSkipped(tenant)
		default:
			res.Generated++
			s.metrics.InvoiceGenerated(tenant)
		}
	}

	s.logger.Info("recurring scan finished",
		"tenant_id", tenantID,
		"due", res.Due,
		"processed", res.Processed,
		"generated", res.Generated,
		"skipped", res.Skipped,
		"failed", res.Failed(),
		"canceled", res.Canceled,
	)

	return res, nil
}

func (s *RecurringInvoiceScanner) process(ctx context.Context, d domain.DueTemplate) (skipped bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.Errorf(domain.EINTERNAL, "recurring.scan", "panic while processing template: %v", r)
		}
	}()

	if d.Template.TenantID != d.Customer.TenantID {
		return false, ErrCustomerMismatch
	}
	if d.Template.TenantID != d.Company.TenantID {
		return false, ErrCompanyMismatch
	}

	decision, err := s.skip.Evaluate(ctx, d.Template, d.Customer)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate skip rules: %w", err)
	}
	if decision.ShouldSkip {
		// next_run_date stays as is; the template is reconsidered on the next run.
		s.logger.Info("recurring template skipped",
			"tenant_id", d.Template.TenantID,
			"template_id", d.Template.ID,
			"reason", decision.Reason,
		)
		return true, nil
	}

	var cal schedule.Calendar
	if d.Template.SkipHolidays {
		cal, err = s.calendar(ctx, d.Template.TenantID)
		if err != nil {
			return false, err
		}
	}

	if _, err := s.generator.Generate(ctx, d, cal); err != nil {
		return false, err
	}
	return false, nil
}

// calendar returns the tenant's holiday calendar, loading it once per TTL.
func (s *RecurringInvoiceScanner) calendar(ctx context.Context, tenantID uuid.UUID) (schedule.Calendar, error) {
	key := tenantID.String()
	if cached, ok := s.holidays.Get(key); ok {
		return cached.(*schedule.HolidayCalendar), nil
	}

	holidays, err := s.store.ListHolidays(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}

	cal := schedule.NewCalendar(holidays)
	s.holidays.SetDefault(key, cal)
	return cal, nil
}
