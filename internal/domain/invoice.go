package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice is an invoice header with its ordered lines.
// BalanceDue starts equal to TotalAmount.
type Invoice struct {
	ID                  uuid.UUID
	TenantID            uuid.UUID
	CompanyID           uuid.UUID
	CustomerID          uuid.UUID
	RecurringTemplateID *uuid.UUID
	InvoiceNumber       string
	IssueDate           time.Time
	DueDate             time.Time
	Status              InvoiceStatus
	Currency            string
	Subtotal            decimal.Decimal
	TaxTotal            decimal.Decimal
	TotalAmount         decimal.Decimal
	BalanceDue          decimal.Decimal
	IsArchived          bool
	CreatedAt           time.Time
	Lines               []InvoiceLine
}

// InvoiceLine is one line of an invoice, copied from a template line.
type InvoiceLine struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	TaxRate     decimal.Decimal
}

// Activity log actions.
const (
	ActivityRecurringGenerated = "recurring_generated"
)

// ActivityLogEntry is an append-only audit record attached to an invoice.
type ActivityLogEntry struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	InvoiceID   uuid.UUID
	Action      string
	Description string
	CreatedAt   time.Time
}

// Notification kinds stored for the tenant.
const (
	NotificationRecurringInvoice = "recurring_invoice_generated"
	NotificationPaymentReminder  = "payment_reminder"
)

// Notification is a stored notice. The scheduler writes reminder notices and
// prunes old ones; delivery content is owned elsewhere.
type Notification struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Kind      string
	Subject   string
	InvoiceID *uuid.UUID
	CreatedAt time.Time
}

// WeeklyReport is an immutable rollup of a tenant's invoices over a week.
type WeeklyReport struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	PeriodStart   time.Time
	PeriodEnd     time.Time
	TotalInvoices int
	TotalAmount   decimal.Decimal
	PaidCount     int
	OverdueCount  int
	GeneratedAt   time.Time
}
