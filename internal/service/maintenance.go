package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/dukerupert/tally/internal/telemetry"
	"github.com/google/uuid"
)

// Retention defaults.
const (
	DefaultNotificationRetentionDays = 30
	DefaultArchiveAfterMonths        = 6
)

// StatusReconciler moves unpaid invoices past their due date to overdue.
type StatusReconciler struct {
	invoices domain.InvoiceStore
	metrics  *telemetry.JobMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewStatusReconciler creates a StatusReconciler.
func NewStatusReconciler(invoices domain.InvoiceStore, metrics *telemetry.JobMetrics, logger *slog.Logger) *StatusReconciler {
	return &StatusReconciler{
		invoices: invoices,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// MarkOverdue transitions every sent or pending invoice whose due date is
// before today to overdue. Re-running it changes nothing further.
func (r *StatusReconciler) MarkOverdue(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if err := domain.CheckTenant(ctx, tenantID); err != nil {
		return 0, err
	}

	n, err := r.invoices.MarkOverdue(ctx, tenantID, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark invoices overdue: %w", err)
	}

	r.metrics.MarkedOverdue(tenantID.String(), n)
	if n > 0 {
		r.logger.Info("invoices marked overdue", "tenant_id", tenantID, "count", n)
	}
	return n, nil
}

// RetentionSweeper deletes stale notifications.
type RetentionSweeper struct {
	notifications domain.NotificationStore
	retention     time.Duration
	metrics       *telemetry.JobMetrics
	logger        *slog.Logger
	now           func() time.Time
}

// NewRetentionSweeper creates a RetentionSweeper keeping notifications for
// retentionDays days.
func NewRetentionSweeper(notifications domain.NotificationStore, retentionDays int, metrics *telemetry.JobMetrics, logger *slog.Logger) *RetentionSweeper {
	if retentionDays <= 0 {
		retentionDays = DefaultNotificationRetentionDays
	}
	return &RetentionSweeper{
		notifications: notifications,
		retention:     time.Duration(retentionDays) * 24 * time.Hour,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// PurgeNotifications deletes the tenant's notifications older than the
// retention window.
func (s *RetentionSweeper) PurgeNotifications(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if err := domain.CheckTenant(ctx, tenantID); err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.retention)
	n, err := s.notifications.DeleteNotificationsBefore(ctx, tenantID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}

	s.metrics.Purged(tenantID.String(), n)
	if n > 0 {
		s.logger.Info("notifications purged", "tenant_id", tenantID, "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// ArchivalSweeper flags old paid invoices as archived.
type ArchivalSweeper struct {
	invoices domain.InvoiceStore
	months   int
	metrics  *telemetry.JobMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewArchivalSweeper creates an ArchivalSweeper archiving paid invoices issued
// more than afterMonths months ago.
func NewArchivalSweeper(invoices domain.InvoiceStore, afterMonths int, metrics *telemetry.JobMetrics, logger *slog.Logger) *ArchivalSweeper {
	if afterMonths <= 0 {
		afterMonths = DefaultArchiveAfterMonths
	}
	return &ArchivalSweeper{
		invoices: invoices,
		months:   afterMonths,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// ArchivePaidInvoices archives the tenant's paid invoices older than the
// archive age. Already archived invoices are left alone.
func (s *ArchivalSweeper) ArchivePaidInvoices(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if err := domain.CheckTenant(ctx, tenantID); err != nil {
		return 0, err
	}

	cutoff := s.now().AddDate(0, -s.months, 0)
	n, err := s.invoices.ArchivePaidInvoices(ctx, tenantID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to archive paid invoices: %w", err)
	}

	s.metrics.Archived(tenantID.String(), n)
	if n > 0 {
		s.logger.Info("paid invoices archived", "tenant_id", tenantID, "count", n, "cutoff", cutoff)
	}
	return n, nil
}
