package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/dukerupert/tally/internal/telemetry"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const reportWindow = 7 * 24 * time.Hour

// WeeklyReportAggregator rolls up the trailing week of a tenant's invoices.
//
// Every call persists a new record; repeated runs inside the same week
// produce several reports for overlapping periods.
type WeeklyReportAggregator struct {
	invoices domain.InvoiceStore
	reports  domain.ReportStore
	metrics  *telemetry.JobMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewWeeklyReportAggregator creates a WeeklyReportAggregator.
func NewWeeklyReportAggregator(invoices domain.InvoiceStore, reports domain.ReportStore, metrics *telemetry.JobMetrics, logger *slog.Logger) *WeeklyReportAggregator {
	return &WeeklyReportAggregator{
		invoices: invoices,
		reports:  reports,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Aggregate computes the report for invoices created in the last seven days
// and persists it.
func (a *WeeklyReportAggregator) Aggregate(ctx context.Context, tenantID uuid.UUID) (*domain.WeeklyReport, error) {
	if err := domain.CheckTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	now := a.now()
	start := now.Add(-reportWindow)

	invoices, err := a.invoices.ListInvoicesCreatedBetween(ctx, tenantID, start, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for report: %w", err)
	}

	report := Summarize(invoices)
	report.ID = uuid.New()
	report.TenantID = tenantID
	report.PeriodStart = start
	report.PeriodEnd = now
	report.GeneratedAt = now

	if err := a.reports.CreateWeeklyReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save weekly report: %w", err)
	}

	a.metrics.ReportGenerated(tenantID.String())
	a.logger.Info("weekly report generated",
		"tenant_id", tenantID,
		"total_invoices", report.TotalInvoices,
		"total_amount", report.TotalAmount.StringFixed(2),
		"paid", report.PaidCount,
		"overdue", report.OverdueCount,
	)
	return report, nil
}

// Summarize computes the counts and total of a set of invoices.
func Summarize(invoices []domain.Invoice) *domain.WeeklyReport {
	return &domain.WeeklyReport{
		TotalInvoices: len(invoices),
		TotalAmount: lo.Reduce(invoices, func(sum decimal.Decimal, inv domain.Invoice, _ int) decimal.Decimal {
			return sum.Add(inv.TotalAmount)
		}, decimal.Zero),
		PaidCount: lo.CountBy(invoices, func(inv domain.Invoice) bool {
			return inv.Status == domain.InvoiceStatusPaid
		}),
		OverdueCount: lo.CountBy(invoices, func(inv domain.Invoice) bool {
			return inv.Status == domain.InvoiceStatusOverdue
		}),
	}
}
