// Package notify delivers scheduler notices to other services.
//
// Notices are published as JSON events on NATS subjects. Delivery is
// best-effort: publishing is retried briefly and then reported to the caller,
// which logs the failure and carries on.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dukerupert/tally/internal/domain"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
)

// Subject suffixes appended to the configured prefix.
const (
	SubjectRecurringGenerated = "invoice.recurring_generated"
	SubjectPaymentReminder    = "invoice.payment_reminder"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "tally"

// Publisher publishes a message to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// RecurringInvoiceGeneratedEvent is published after a recurring template
// produced an invoice for an auto-send template.
type RecurringInvoiceGeneratedEvent struct {
	TenantID      uuid.UUID       `json:"tenant_id"`
	TemplateID    uuid.UUID       `json:"template_id"`
	TemplateName  string          `json:"template_name"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Currency      string          `json:"currency"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	IssueDate     string          `json:"issue_date"`
	DueDate       string          `json:"due_date"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// PaymentReminderEvent is published for an unpaid invoice approaching its
// due date.
type PaymentReminderEvent struct {
	TenantID      uuid.UUID       `json:"tenant_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Currency      string          `json:"currency"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	DueDate       string          `json:"due_date"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Dispatcher publishes scheduler events to NATS.
type Dispatcher struct {
	pub        Publisher
	prefix     string
	logger     *slog.Logger
	maxRetries uint64
	interval   time.Duration
	now        func() time.Time
}

// NewDispatcher creates a Dispatcher publishing under prefix.
func NewDispatcher(pub Publisher, prefix string, logger *slog.Logger) *Dispatcher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Dispatcher{
		pub:        pub,
		prefix:     prefix,
		logger:     logger,
		maxRetries: 3,
		interval:   200 * time.Millisecond,
		now:        time.Now,
	}
}

// SendRecurringInvoiceGenerated implements domain.NotificationDispatcher.
func (d *Dispatcher) SendRecurringInvoiceGenerated(ctx context.Context, template domain.RecurringTemplate, invoice domain.Invoice, customer domain.Customer) error {
	event := RecurringInvoiceGeneratedEvent{
		TenantID:      invoice.TenantID,
		TemplateID:    template.ID,
		TemplateName:  template.Name,
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		Currency:      invoice.Currency,
		TotalAmount:   invoice.TotalAmount,
		IssueDate:     invoice.IssueDate.Format(time.DateOnly),
		DueDate:       invoice.DueDate.Format(time.DateOnly),
		OccurredAt:    d.now().UTC(),
	}
	return d.publish(ctx, SubjectRecurringGenerated, event)
}

// SendPaymentReminder publishes a reminder for one invoice.
func (d *Dispatcher) SendPaymentReminder(ctx context.Context, invoice domain.Invoice) error {
	event := PaymentReminderEvent{
		TenantID:      invoice.TenantID,
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerID:    invoice.CustomerID,
		Currency:      invoice.Currency,
		BalanceDue:    invoice.BalanceDue,
		DueDate:       invoice.DueDate.Format(time.DateOnly),
		OccurredAt:    d.now().UTC(),
	}
	return d.publish(ctx, SubjectPaymentReminder, event)
}

// Subject returns the full subject for a suffix.
func (d *Dispatcher) Subject(suffix string) string {
	return d.prefix + "." + suffix
}

func (d *Dispatcher) publish(ctx context.Context, suffix string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	subject := d.Subject(suffix)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.interval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, d.maxRetries), ctx)

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		if err := d.pub.Publish(subject, data); err != nil {
			d.logger.Debug("publish failed", "subject", subject, "attempt", attempt, "error", err)
			return err
		}
		return nil
	}, policy)
	if err != nil {
		return fmt.Errorf("failed to publish %s after %d attempts: %w", subject, attempt, err)
	}
	return nil
}

// Connect opens a NATS connection that reconnects indefinitely and logs
// connection state changes.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("tally-scheduler"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// LogDispatcher records notices in the log only. It is used when no NATS
// server is configured.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// SendRecurringInvoiceGenerated implements domain.NotificationDispatcher.
func (d *LogDispatcher) SendRecurringInvoiceGenerated(ctx context.Context, template domain.RecurringTemplate, invoice domain.Invoice, customer domain.Customer) error {
	d.logger.Info("recurring invoice notice",
		"tenant_id", invoice.TenantID,
		"invoice_id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber,
		"customer_email", customer.Email,
	)
	return nil
}

// SendPaymentReminder logs a payment reminder.
func (d *LogDispatcher) SendPaymentReminder(ctx context.Context, invoice domain.Invoice) error {
	d.logger.Info("payment reminder notice",
		"tenant_id", invoice.TenantID,
		"invoice_id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber,
		"due_date", invoice.DueDate.Format(time.DateOnly),
	)
	return nil
}
