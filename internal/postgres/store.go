// Package postgres implements the scheduler's store ports on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/dukerupert/tally/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the domain store ports using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	repo *repository.Queries
}

// Compile-time checks that Store implements the store ports.
var (
	_ domain.TenantStore       = (*Store)(nil)
	_ domain.RecurringStore    = (*Store)(nil)
	_ domain.InvoiceStore      = (*Store)(nil)
	_ domain.NotificationStore = (*Store)(nil)
	_ domain.ReportStore       = (*Store)(nil)
	_ domain.RunLocker         = (*Store)(nil)
)

// NewStore creates a new PostgreSQL-backed store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		repo: repository.New(pool),
	}
}

// =============================================================================
// TENANTS
// =============================================================================

// ListActiveTenants returns active tenants ordered by creation.
func (s *Store) ListActiveTenants(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := s.repo.ListActiveTenants(ctx)
	if err != nil {
		return nil, domain.Internal(err, "tenant.list_active", "failed to list tenants")
	}

	tenants := make([]domain.Tenant, len(rows))
	for i, row := range rows {
		tenants[i] = domain.Tenant{
			ID:       uuid.UUID(row.ID.Bytes),
			Name:     row.Name,
			IsActive: row.IsActive,
		}
	}
	return tenants, nil
}

// ListHolidays returns the tenant's holiday calendar.
func (s *Store) ListHolidays(ctx context.Context, tenantID uuid.UUID) ([]domain.Holiday, error) {
	rows, err := s.repo.ListHolidays(ctx, pgUUID(tenantID))
	if err != nil {
		return nil, domain.Internal(err, "holiday.list", "failed to list holidays")
	}

	holidays := make([]domain.Holiday, len(rows))
	for i, row := range rows {
		holidays[i] = domain.Holiday{
			TenantID:  uuid.UUID(row.TenantID.Bytes),
			Date:      dateIn(row.HolidayDate, time.UTC),
			Name:      row.Name,
			Recurring: row.Recurring,
		}
	}
	return holidays, nil
}

// =============================================================================
// RECURRING TEMPLATES
// =============================================================================

// ListDueTemplates returns the tenant's active templates due on or before
// asOf, each evaluated in its own timezone, with lines, customer and company.
func (s *Store) ListDueTemplates(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]domain.DueTemplate, error) {
	// No timezone is more than one day ahead of UTC.
	candidates, err := s.repo.ListDueRecurringInvoices(ctx, repository.ListDueRecurringInvoicesParams{
		TenantID:      pgUUID(tenantID),
		LatestRunDate: pgDate(asOf.UTC().AddDate(0, 0, 1)),
	})
	if err != nil {
		return nil, domain.Internal(err, "recurring.list_due", "failed to list due templates")
	}

	rows := make([]repository.ListDueRecurringInvoicesRow, 0, len(candidates))
	for _, row := range candidates {
		if isDue(row.RecurringInvoice.NextRunDate, row.RecurringInvoice.Timezone, asOf) {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]pgtype.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.RecurringInvoice.ID
	}
	lineRows, err := s.repo.ListRecurringInvoiceLines(ctx, repository.ListRecurringInvoiceLinesParams{
		TenantID:            pgUUID(tenantID),
		RecurringInvoiceIds: ids,
	})
	if err != nil {
		return nil, domain.Internal(err, "recurring.list_lines", "failed to list template lines")
	}

	lines := make(map[uuid.UUID][]domain.TemplateLine, len(rows))
	for _, l := range lineRows {
		id := uuid.UUID(l.RecurringInvoiceID.Bytes)
		lines[id] = append(lines[id], domain.TemplateLine{
			Position:    int(l.Position),
			Description: l.Description,
			Quantity:    decimalFrom(l.Quantity),
			UnitPrice:   decimalFrom(l.UnitPrice),
			LineTotal:   decimalFrom(l.LineTotal),
			TaxRate:     decimalFrom(l.TaxRate),
		})
	}

	due := make([]domain.DueTemplate, len(rows))
	for i, row := range rows {
		tmpl := mapRepoTemplateToDomain(row.RecurringInvoice)
		tmpl.Lines = lines[tmpl.ID]

		due[i] = domain.DueTemplate{
			Template: tmpl,
			Customer: domain.Customer{
				ID:       tmpl.CustomerID,
				TenantID: uuid.UUID(row.CustomerTenantID.Bytes),
				Name:     row.CustomerName,
				Email:    row.CustomerEmail,
				IsActive: row.CustomerIsActive,
			},
			Company: domain.Company{
				ID:       tmpl.CompanyID,
				TenantID: uuid.UUID(row.CompanyTenantID.Bytes),
				Name:     row.CompanyName,
			},
		}
	}
	return due, nil
}

// RunInTx runs fn in one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (s *Store) RunInTx(ctx context.Context, fn func(tx domain.GenerationTx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&generationTx{repo: s.repo.WithTx(tx)})
	})
}

// generationTx implements domain.GenerationTx inside a pgx transaction.
type generationTx struct {
	repo *repository.Queries
}

func (t *generationTx) LockTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (time.Time, bool, error) {
	row, err := t.repo.LockRecurringInvoice(ctx, repository.LockRecurringInvoiceParams{
		ID:       pgUUID(templateID),
		TenantID: pgUUID(tenantID),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, domain.NotFound("recurring.lock", "recurring template", templateID.String())
		}
		return time.Time{}, false, domain.Internal(err, "recurring.lock", "failed to lock template")
	}
	return dateIn(row.NextRunDate, time.UTC), row.IsActive, nil
}

func (t *generationTx) CountInvoices(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	n, err := t.repo.CountInvoices(ctx, pgUUID(tenantID))
	if err != nil {
		return 0, domain.Internal(err, "invoice.count", "failed to count invoices")
	}
	return n, nil
}

func (t *generationTx) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	const op = "invoice.create"

	err := t.repo.CreateInvoice(ctx, repository.CreateInvoiceParams{
		ID:                 pgUUID(inv.ID),
		TenantID:           pgUUID(inv.TenantID),
		CompanyID:          pgUUID(inv.CompanyID),
		CustomerID:         pgUUID(inv.CustomerID),
		RecurringInvoiceID: pgUUIDFromPtr(inv.RecurringTemplateID),
		InvoiceNumber:      inv.InvoiceNumber,
		IssueDate:          pgDate(inv.IssueDate),
		DueDate:            pgDate(inv.DueDate),
		Status:             string(inv.Status),
		Currency:           inv.Currency,
		Subtotal:           pgNumeric(inv.Subtotal),
		TaxTotal:           pgNumeric(inv.TaxTotal),
		TotalAmount:        pgNumeric(inv.TotalAmount),
		BalanceDue:         pgNumeric(inv.BalanceDue),
		CreatedAt:          pgTimestamptz(inv.CreatedAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.Error{
				Code:    domain.ECONFLICT,
				Op:      op,
				Message: domain.ErrDuplicateInvoiceNumber.Message,
				Err:     err,
			}
		}
		return domain.Internal(err, op, "failed to insert invoice")
	}

	for _, line := range inv.Lines {
		if err := t.repo.CreateInvoiceLine(ctx, repository.CreateInvoiceLineParams{
			ID:          pgUUID(line.ID),
			TenantID:    pgUUID(inv.TenantID),
			InvoiceID:   pgUUID(inv.ID),
			Position:    int32(line.Position),
			Description: line.Description,
			Quantity:    pgNumeric(line.Quantity),
			UnitPrice:   pgNumeric(line.UnitPrice),
			LineTotal:   pgNumeric(line.LineTotal),
			TaxRate:     pgNumeric(line.TaxRate),
		}); err != nil {
			return domain.Internal(err, op, fmt.Sprintf("failed to insert invoice line %d", line.Position))
		}
	}
	return nil
}

func (t *generationTx) AppendActivity(ctx context.Context, entry domain.ActivityLogEntry) error {
	err := t.repo.CreateActivityLog(ctx, repository.CreateActivityLogParams{
		ID:          pgUUID(entry.ID),
		TenantID:    pgUUID(entry.TenantID),
		InvoiceID:   pgUUID(entry.InvoiceID),
		Action:      entry.Action,
		Description: entry.Description,
		CreatedAt:   pgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		return domain.Internal(err, "activity.append", "failed to append activity log")
	}
	return nil
}

func (t *generationTx) AdvanceSchedule(ctx context.Context, p domain.AdvanceScheduleParams) error {
	n, err := t.repo.AdvanceRecurringSchedule(ctx, repository.AdvanceRecurringScheduleParams{
		NextRunDate:     pgDate(p.To),
		GeneratedAt:     pgTimestamptz(p.GeneratedAt),
		ID:              pgUUID(p.TemplateID),
		TenantID:        pgUUID(p.TenantID),
		ExpectedRunDate: pgDate(p.From),
	})
	if err != nil {
		return domain.Internal(err, "recurring.advance", "failed to advance schedule")
	}
	if n == 0 {
		return domain.ErrScheduleConflict
	}
	return nil
}

// =============================================================================
// INVOICE MAINTENANCE
// =============================================================================

// MarkOverdue moves sent and pending invoices due before asOf's date to overdue.
func (s *Store) MarkOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error) {
	n, err := s.repo.MarkInvoicesOverdue(ctx, repository.MarkInvoicesOverdueParams{
		TenantID: pgUUID(tenantID),
		AsOf:     pgDate(asOf.UTC()),
	})
	if err != nil {
		return 0, domain.Internal(err, "invoice.mark_overdue", "failed to mark invoices overdue")
	}
	return n, nil
}

// ArchivePaidInvoices flags paid invoices issued before cutoff's date.
func (s *Store) ArchivePaidInvoices(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error) {
	n, err := s.repo.ArchivePaidInvoices(ctx, repository.ArchivePaidInvoicesParams{
		TenantID: pgUUID(tenantID),
		Cutoff:   pgDate(cutoff.UTC()),
	})
	if err != nil {
		return 0, domain.Internal(err, "invoice.archive_paid", "failed to archive paid invoices")
	}
	return n, nil
}

// ListInvoicesCreatedBetween returns invoice headers created in [from, to).
func (s *Store) ListInvoicesCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]domain.Invoice, error) {
	rows, err := s.repo.ListInvoicesCreatedBetween(ctx, repository.ListInvoicesCreatedBetweenParams{
		TenantID:    pgUUID(tenantID),
		CreatedFrom: pgTimestamptz(from),
		CreatedTo:   pgTimestamptz(to),
	})
	if err != nil {
		return nil, domain.Internal(err, "invoice.list_created", "failed to list invoices")
	}
	return mapRepoInvoices(rows), nil
}

// ListUnpaidInvoicesDueBetween returns sent or pending invoices due in [from, to].
func (s *Store) ListUnpaidInvoicesDueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]domain.Invoice, error) {
	rows, err := s.repo.ListUnpaidInvoicesDueBetween(ctx, repository.ListUnpaidInvoicesDueBetweenParams{
		TenantID: pgUUID(tenantID),
		DueFrom:  pgDate(from),
		DueTo:    pgDate(to),
	})
	if err != nil {
		return nil, domain.Internal(err, "invoice.list_unpaid_due", "failed to list unpaid invoices")
	}
	return mapRepoInvoices(rows), nil
}

// =============================================================================
// NOTIFICATIONS AND REPORTS
// =============================================================================

// CreateNotification stores a notification row.
func (s *Store) CreateNotification(ctx context.Context, n domain.Notification) error {
	err := s.repo.CreateNotification(ctx, repository.CreateNotificationParams{
		ID:        pgUUID(n.ID),
		TenantID:  pgUUID(n.TenantID),
		Kind:      n.Kind,
		Subject:   n.Subject,
		InvoiceID: pgUUIDFromPtr(n.InvoiceID),
		CreatedAt: pgTimestamptz(n.CreatedAt),
	})
	if err != nil {
		return domain.Internal(err, "notification.create", "failed to create notification")
	}
	return nil
}

// HasInvoiceNotification reports whether the invoice already has a
// notification of kind.
func (s *Store) HasInvoiceNotification(ctx context.Context, tenantID, invoiceID uuid.UUID, kind string) (bool, error) {
	exists, err := s.repo.HasInvoiceNotification(ctx, repository.HasInvoiceNotificationParams{
		TenantID:  pgUUID(tenantID),
		InvoiceID: pgUUID(invoiceID),
		Kind:      kind,
	})
	if err != nil {
		return false, domain.Internal(err, "notification.exists", "failed to look up notification")
	}
	return exists, nil
}

// DeleteNotificationsBefore removes the tenant's notifications created before cutoff.
func (s *Store) DeleteNotificationsBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error) {
	n, err := s.repo.DeleteNotificationsBefore(ctx, repository.DeleteNotificationsBeforeParams{
		TenantID:  pgUUID(tenantID),
		CreatedAt: pgTimestamptz(cutoff),
	})
	if err != nil {
		return 0, domain.Internal(err, "notification.purge", "failed to delete notifications")
	}
	return n, nil
}

// CreateWeeklyReport stores a weekly report snapshot.
func (s *Store) CreateWeeklyReport(ctx context.Context, r *domain.WeeklyReport) error {
	err := s.repo.CreateWeeklyReport(ctx, repository.CreateWeeklyReportParams{
		ID:            pgUUID(r.ID),
		TenantID:      pgUUID(r.TenantID),
		PeriodStart:   pgTimestamptz(r.PeriodStart),
		PeriodEnd:     pgTimestamptz(r.PeriodEnd),
		TotalInvoices: int32(r.TotalInvoices),
		TotalAmount:   pgNumeric(r.TotalAmount),
		PaidCount:     int32(r.PaidCount),
		OverdueCount:  int32(r.OverdueCount),
		GeneratedAt:   pgTimestamptz(r.GeneratedAt),
	})
	if err != nil {
		return domain.Internal(err, "report.create", "failed to store weekly report")
	}
	return nil
}

// =============================================================================
// RUN LOCKS
// =============================================================================

// TryLock takes a session-level advisory lock keyed by name. The lock lives
// on a dedicated pooled connection until release is called.
func (s *Store) TryLock(ctx context.Context, name string) (func(), bool, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection: %w", err)
	}

	q := repository.New(conn)
	ok, err := q.TryAdvisoryLock(ctx, name)
	if err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("failed to take advisory lock: %w", err)
	}
	if !ok {
		conn.Release()
		return nil, false, nil
	}

	release := func() {
		// The run context may be done by now.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := q.AdvisoryUnlock(unlockCtx, name); err != nil {
			// Closing the connection drops its session locks.
			_ = conn.Conn().Close(unlockCtx)
		}
		conn.Release()
	}
	return release, true, nil
}

// =============================================================================
// MAPPING HELPERS
// =============================================================================

// isDue reports whether nextRun is on or before the local date of asOf in
// timezone. An unknown timezone is checked in UTC; generation then rejects
// the template's rule, failing that template alone.
func isDue(nextRun pgtype.Date, timezone string, asOf time.Time) bool {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	y, m, d := asOf.In(loc).Date()
	return !nextRun.Time.After(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func mapRepoTemplateToDomain(r repository.RecurringInvoice) domain.RecurringTemplate {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		// Timezone is kept as stored; schedule.Compute rejects it.
		loc = time.UTC
	}

	return domain.RecurringTemplate{
		ID:               uuid.UUID(r.ID.Bytes),
		TenantID:         uuid.UUID(r.TenantID.Bytes),
		CompanyID:        uuid.UUID(r.CompanyID.Bytes),
		CustomerID:       uuid.UUID(r.CustomerID.Bytes),
		Name:             r.Name,
		Frequency:        domain.Frequency(r.Frequency),
		Interval:         int(r.IntervalCount),
		NextRunDate:      dateIn(r.NextRunDate, loc),
		DayOfWeek:        intPtr(r.DayOfWeek),
		DayOfMonth:       intPtr(r.DayOfMonth),
		BusinessDaysOnly: r.BusinessDaysOnly,
		SkipHolidays:     r.SkipHolidays,
		Timezone:         r.Timezone,
		IsActive:         r.IsActive,
		AutoSend:         r.AutoSend,
		PaymentTermsDays: int(r.PaymentTermsDays),
		Currency:         r.Currency,
		Subtotal:         decimalFrom(r.Subtotal),
		TaxTotal:         decimalFrom(r.TaxTotal),
		TotalAmount:      decimalFrom(r.TotalAmount),
		EndDate:          datePtrIn(r.EndDate, loc),
		LastGeneratedAt:  timePtr(r.LastGeneratedAt),
		GeneratedCount:   int(r.GeneratedCount),
	}
}

func mapRepoInvoices(rows []repository.Invoice) []domain.Invoice {
	invoices := make([]domain.Invoice, len(rows))
	for i, r := range rows {
		invoices[i] = domain.Invoice{
			ID:                  uuid.UUID(r.ID.Bytes),
			TenantID:            uuid.UUID(r.TenantID.Bytes),
			CompanyID:           uuid.UUID(r.CompanyID.Bytes),
			CustomerID:          uuid.UUID(r.CustomerID.Bytes),
			RecurringTemplateID: uuidPtr(r.RecurringInvoiceID),
			InvoiceNumber:       r.InvoiceNumber,
			IssueDate:           dateIn(r.IssueDate, time.UTC),
			DueDate:             dateIn(r.DueDate, time.UTC),
			Status:              domain.InvoiceStatus(r.Status),
			Currency:            r.Currency,
			Subtotal:            decimalFrom(r.Subtotal),
			TaxTotal:            decimalFrom(r.TaxTotal),
			TotalAmount:         decimalFrom(r.TotalAmount),
			BalanceDue:          decimalFrom(r.BalanceDue),
			IsArchived:          r.IsArchived,
			CreatedAt:           r.CreatedAt.Time,
		}
	}
	return invoices
}
