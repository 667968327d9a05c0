package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/dukerupert/tally/internal/telemetry"
	"github.com/google/uuid"
)

// DefaultReminderDaysBeforeDue is how far ahead of the due date reminders go out.
const DefaultReminderDaysBeforeDue = 3

// ReminderSender delivers a payment reminder for one invoice.
type ReminderSender interface {
	SendPaymentReminder(ctx context.Context, invoice domain.Invoice) error
}

// PaymentReminderService records and sends reminders for unpaid invoices
// that fall due a fixed number of days from today. Each invoice is reminded
// once, on the day its due date enters the window; a repeated run on the same
// day finds the stored reminder and leaves the invoice alone.
type PaymentReminderService struct {
	invoices      domain.InvoiceStore
	notifications domain.NotificationStore
	sender        ReminderSender
	daysBefore    int
	metrics       *telemetry.JobMetrics
	logger        *slog.Logger
	now           func() time.Time
}

// NewPaymentReminderService creates a PaymentReminderService.
func NewPaymentReminderService(
	invoices domain.InvoiceStore,
	notifications domain.NotificationStore,
	sender ReminderSender,
	daysBefore int,
	metrics *telemetry.JobMetrics,
	logger *slog.Logger,
) *PaymentReminderService {
	if daysBefore <= 0 {
		daysBefore = DefaultReminderDaysBeforeDue
	}
	return &PaymentReminderService{
		invoices:      invoices,
		notifications: notifications,
		sender:        sender,
		daysBefore:    daysBefore,
		metrics:       metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// SendPaymentReminders implements domain.PaymentReminderService.
//
// A stored notification is written for every reminded invoice. Failing to
// publish the reminder is logged and does not fail the call; failing to store
// it does, after the remaining invoices have been attempted.
func (s *PaymentReminderService) SendPaymentReminders(ctx context.Context, tenantID uuid.UUID) error {
	if err := domain.CheckTenant(ctx, tenantID); err != nil {
		return err
	}

	y, m, d := s.now().UTC().Date()
	target := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, s.daysBefore)

	invoices, err := s.invoices.ListUnpaidInvoicesDueBetween(ctx, tenantID, target, target)
	if err != nil {
		return fmt.Errorf("failed to list invoices due for reminder: %w", err)
	}

	tenant := tenantID.String()
	var errs []error
	for _, inv := range invoices {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		reminded, err := s.notifications.HasInvoiceNotification(ctx, tenantID, inv.ID, domain.NotificationPaymentReminder)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to check reminder for invoice %s: %w", inv.InvoiceNumber, err))
			continue
		}
		if reminded {
			continue
		}

		invoiceID := inv.ID
		err = s.notifications.CreateNotification(ctx, domain.Notification{
			ID:        uuid.New(),
			TenantID:  tenantID,
			Kind:      domain.NotificationPaymentReminder,
			Subject:   fmt.Sprintf("Invoice %s is due on %s", inv.InvoiceNumber, inv.DueDate.Format(time.DateOnly)),
			InvoiceID: &invoiceID,
			CreatedAt: s.now(),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to store reminder for invoice %s: %w", inv.InvoiceNumber, err))
			continue
		}

		if err := s.sender.SendPaymentReminder(ctx, inv); err != nil {
			s.metrics.NotificationFailure(tenant, domain.NotificationPaymentReminder)
			s.logger.Warn("failed to send payment reminder",
				"tenant_id", tenantID,
				"invoice_id", inv.ID,
				"error", err,
			)
			continue
		}
		s.metrics.ReminderSent(tenant)
	}

	if len(invoices) > 0 {
		s.logger.Info("payment reminders processed", "tenant_id", tenantID, "count", len(invoices))
	}
	return errors.Join(errs...)
}
