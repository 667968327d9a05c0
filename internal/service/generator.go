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
	"github.com/samber/lo"
)

// InvoiceGenerator creates invoices from due recurring templates.
//
// The invoice header, its lines, the activity entry and the schedule advance
// are written in one transaction. The advance is guarded by the next run date
// read during the scan, so two overlapping runs cannot both generate for the
// same cycle.
type InvoiceGenerator struct {
	store        domain.RecurringStore
	dispatcher   domain.NotificationDispatcher
	metrics      *telemetry.JobMetrics
	logger       *slog.Logger
	defaultTerms int
	now          func() time.Time
}

// NewInvoiceGenerator creates an InvoiceGenerator. dispatcher may be nil, in
// which case auto-send templates are generated without a notice.
// defaultTermsDays applies to templates without payment terms.
func NewInvoiceGenerator(
	store domain.RecurringStore,
	dispatcher domain.NotificationDispatcher,
	metrics *telemetry.JobMetrics,
	logger *slog.Logger,
	defaultTermsDays int,
) *InvoiceGenerator {
	if defaultTermsDays <= 0 {
		defaultTermsDays = domain.DefaultPaymentTermsDays
	}
	return &InvoiceGenerator{
		store:        store,
		dispatcher:   dispatcher,
		metrics:      metrics,
		logger:       logger,
		defaultTerms: defaultTermsDays,
		now:          time.Now,
	}
}

// Generate creates one draft invoice for a due template and advances the
// template's next run date. cal is the tenant holiday calendar and may be nil.
//
// The next run date is computed before anything is written; an invalid rule
// fails the template without touching the store.
func (g *InvoiceGenerator) Generate(ctx context.Context, due domain.DueTemplate, cal schedule.Calendar) (*domain.Invoice, error) {
	const op = "recurring.generate"
	tmpl := due.Template

	if err := domain.CheckTenant(ctx, tmpl.TenantID); err != nil {
		return nil, err
	}
	if due.Customer.TenantID != tmpl.TenantID {
		return nil, ErrCustomerMismatch
	}
	if due.Company.TenantID != tmpl.TenantID {
		return nil, ErrCompanyMismatch
	}
	if len(tmpl.Lines) == 0 {
		return nil, ErrTemplateWithoutLines
	}

	next, err := schedule.Compute(tmpl.NextRunDate, schedule.RuleFromTemplate(tmpl, cal))
	if err != nil {
		return nil, err
	}

	now := g.now()
	var inv *domain.Invoice

	err = g.store.RunInTx(ctx, func(tx domain.GenerationTx) error {
		current, active, err := tx.LockTemplate(ctx, tmpl.TenantID, tmpl.ID)
		if err != nil {
			return fmt.Errorf("failed to lock template: %w", err)
		}
		if !active {
			return domain.ErrTemplateInactive
		}
		if !sameDate(current, tmpl.NextRunDate) {
			return domain.ErrScheduleConflict
		}

		count, err := tx.CountInvoices(ctx, tmpl.TenantID)
		if err != nil {
			return fmt.Errorf("failed to count invoices: %w", err)
		}

		inv, err = BuildInvoice(tmpl, count+1, now, g.defaultTerms)
		if err != nil {
			return err
		}

		if err := tx.CreateInvoice(ctx, inv); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		if err := tx.AppendActivity(ctx, domain.ActivityLogEntry{
			ID:          uuid.New(),
			TenantID:    tmpl.TenantID,
			InvoiceID:   inv.ID,
			Action:      domain.ActivityRecurringGenerated,
			Description: fmt.Sprintf("Generated from recurring template %q", tmpl.Name),
			CreatedAt:   now,
		}); err != nil {
			return fmt.Errorf("failed to append activity: %w", err)
		}

		return tx.AdvanceSchedule(ctx, domain.AdvanceScheduleParams{
			TenantID:    tmpl.TenantID,
			TemplateID:  tmpl.ID,
			From:        tmpl.NextRunDate,
			To:          next,
			GeneratedAt: now,
		})
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to generate recurring invoice")
	}

	g.logger.Info("recurring invoice generated",
		"tenant_id", tmpl.TenantID,
		"template_id", tmpl.ID,
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"next_run_date", next.Format(time.DateOnly),
	)

	if tmpl.AutoSend && g.dispatcher != nil {
		if err := g.dispatcher.SendRecurringInvoiceGenerated(ctx, tmpl, *inv, due.Customer); err != nil {
			g.metrics.NotificationFailure(tmpl.TenantID.String(), domain.NotificationRecurringInvoice)
			g.logger.Warn("failed to send recurring invoice notice",
				"tenant_id", tmpl.TenantID,
				"invoice_id", inv.ID,
				"error", err,
			)
		}
	}

	return inv, nil
}

// BuildInvoice assembles the draft invoice for a template. seq is the tenant
// sequence number the invoice number is derived from. The issue date is the
// local date of issuedAt in the template's timezone.
func BuildInvoice(tmpl domain.RecurringTemplate, seq int64, issuedAt time.Time, defaultTermsDays int) (*domain.Invoice, error) {
	loc, err := tmpl.Location()
	if err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, "recurring.build", "invalid template timezone")
	}

	y, m, d := issuedAt.In(loc).Date()
	issue := time.Date(y, m, d, 0, 0, 0, 0, loc)

	terms := tmpl.PaymentTermsDays
	if terms <= 0 {
		terms = defaultTermsDays
	}

	templateID := tmpl.ID
	inv := &domain.Invoice{
		ID:                  uuid.New(),
		TenantID:            tmpl.TenantID,
		CompanyID:           tmpl.CompanyID,
		CustomerID:          tmpl.CustomerID,
		RecurringTemplateID: &templateID,
		InvoiceNumber:       FormatInvoiceNumber(issue, seq),
		IssueDate:           issue,
		DueDate:             issue.AddDate(0, 0, terms),
		Status:              domain.InvoiceStatusDraft,
		Currency:            tmpl.Currency,
		Subtotal:            tmpl.Subtotal,
		TaxTotal:            tmpl.TaxTotal,
		TotalAmount:         tmpl.TotalAmount,
		BalanceDue:          tmpl.TotalAmount,
		CreatedAt:           issuedAt,
	}

	inv.Lines = lo.Map(tmpl.Lines, func(l domain.TemplateLine, i int) domain.InvoiceLine {
		pos := l.Position
		if pos == 0 {
			pos = i + 1
		}
		return domain.InvoiceLine{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Position:    pos,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
			TaxRate:     l.TaxRate,
		}
	})

	return inv, nil
}

// FormatInvoiceNumber renders INV-{year}{month}-{seq}, e.g. INV-202403-0042.
func FormatInvoiceNumber(issue time.Time, seq int64) string {
	return fmt.Sprintf("INV-%d%02d-%04d", issue.Year(), int(issue.Month()), seq)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
