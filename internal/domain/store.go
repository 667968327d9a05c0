package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Every store method takes the owning tenant explicitly; implementations must
// scope each query and write to it.

// TenantStore lists tenants for batch runs.
type TenantStore interface {
	// ListActiveTenants returns tenants with IsActive = true in a stable order.
	ListActiveTenants(ctx context.Context) ([]Tenant, error)
}

// RecurringStore reads due templates and runs generation transactions.
type RecurringStore interface {
	// ListDueTemplates returns active templates whose next run date is on or
	// before asOf, evaluated in each template's own timezone.
	ListDueTemplates(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]DueTemplate, error)

	// ListHolidays returns the tenant's holiday calendar.
	ListHolidays(ctx context.Context, tenantID uuid.UUID) ([]Holiday, error)

	// RunInTx runs fn inside a single transaction. Returning an error from fn
	// rolls every write back.
	RunInTx(ctx context.Context, fn func(tx GenerationTx) error) error
}

// GenerationTx is the unit of work for generating one invoice from a template.
type GenerationTx interface {
	// LockTemplate locks the template row for the rest of the transaction and
	// returns its current next run date and active flag.
	LockTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (nextRunDate time.Time, active bool, err error)

	// CountInvoices returns the tenant's current total invoice count.
	CountInvoices(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CreateInvoice writes the invoice header and all of its lines.
	CreateInvoice(ctx context.Context, inv *Invoice) error

	// AppendActivity appends an audit entry.
	AppendActivity(ctx context.Context, entry ActivityLogEntry) error

	// AdvanceSchedule moves the template's next run date from From to To.
	// It returns ErrScheduleConflict when the stored date is no longer From.
	AdvanceSchedule(ctx context.Context, params AdvanceScheduleParams) error
}

// AdvanceScheduleParams describes a guarded next-run-date update.
type AdvanceScheduleParams struct {
	TenantID    uuid.UUID
	TemplateID  uuid.UUID
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
}

// InvoiceStore covers the bulk invoice maintenance operations.
type InvoiceStore interface {
	// MarkOverdue moves sent and pending invoices due before asOf to overdue.
	MarkOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error)

	// ArchivePaidInvoices flags paid invoices issued before cutoff as archived.
	ArchivePaidInvoices(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error)

	// ListInvoicesCreatedBetween returns invoice headers created in [from, to).
	ListInvoicesCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Invoice, error)

	// ListUnpaidInvoicesDueBetween returns sent or pending invoices whose due
	// date falls in [from, to].
	ListUnpaidInvoicesDueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Invoice, error)
}

// NotificationStore stores and prunes tenant notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n Notification) error

	// HasInvoiceNotification reports whether a notification of kind exists
	// for the invoice.
	HasInvoiceNotification(ctx context.Context, tenantID, invoiceID uuid.UUID, kind string) (bool, error)

	// DeleteNotificationsBefore removes notifications created before cutoff.
	DeleteNotificationsBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error)
}

// ReportStore persists weekly report snapshots.
type ReportStore interface {
	CreateWeeklyReport(ctx context.Context, report *WeeklyReport) error
}

// RunLocker guards a batch run against overlapping runs of the same kind.
type RunLocker interface {
	// TryLock acquires the named lock without waiting. ok is false when
	// another holder owns it. release must be called when ok is true.
	TryLock(ctx context.Context, name string) (release func(), ok bool, err error)
}

// SkipEvaluator decides whether a due template should be skipped this cycle.
type SkipEvaluator interface {
	Evaluate(ctx context.Context, template RecurringTemplate, customer Customer) (SkipDecision, error)
}

// NotificationDispatcher delivers the "recurring invoice generated" notice.
// Delivery is best-effort; callers log failures and carry on.
type NotificationDispatcher interface {
	SendRecurringInvoiceGenerated(ctx context.Context, template RecurringTemplate, invoice Invoice, customer Customer) error
}

// PaymentReminderService sends payment reminders for a tenant. It runs once
// per tenant per daily run, independently of recurring invoice processing.
type PaymentReminderService interface {
	SendPaymentReminders(ctx context.Context, tenantID uuid.UUID) error
}
