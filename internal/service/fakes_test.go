package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 6, 12, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// memStore: in-memory implementation of the store ports
// =============================================================================

type memStore struct {
	mu sync.Mutex

	templates     map[uuid.UUID]*domain.DueTemplate
	invoices      []domain.Invoice
	activity      []domain.ActivityLogEntry
	notifications []domain.Notification
	reports       []*domain.WeeklyReport
	holidays      map[uuid.UUID][]domain.Holiday

	holidayLoads int
	txCount      int
	commits      int

	listErr   error
	createErr error
}

func newMemStore() *memStore {
	return &memStore{
		templates: make(map[uuid.UUID]*domain.DueTemplate),
		holidays:  make(map[uuid.UUID][]domain.Holiday),
	}
}

func (s *memStore) addTemplate(d domain.DueTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := d
	s.templates[d.Template.ID] = &cp
}

func (s *memStore) template(id uuid.UUID) domain.RecurringTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates[id].Template
}

func (s *memStore) invoicesFor(tenantID uuid.UUID) []domain.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Invoice
	for _, inv := range s.invoices {
		if inv.TenantID == tenantID {
			out = append(out, inv)
		}
	}
	return out
}

func (s *memStore) ListDueTemplates(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]domain.DueTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	var out []domain.DueTemplate
	for _, d := range s.templates {
		t := d.Template
		if t.TenantID != tenantID || !t.IsActive {
			continue
		}
		loc, err := t.Location()
		if err != nil {
			loc = time.UTC
		}
		y, m, dd := asOf.In(loc).Date()
		today := time.Date(y, m, dd, 0, 0, 0, 0, loc)
		if !t.NextRunDate.After(today) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Template.Name < out[j].Template.Name })
	return out, nil
}

func (s *memStore) ListHolidays(ctx context.Context, tenantID uuid.UUID) ([]domain.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidayLoads++
	return s.holidays[tenantID], nil
}

func (s *memStore) RunInTx(ctx context.Context, fn func(tx domain.GenerationTx) error) error {
	s.mu.Lock()
	s.txCount++
	s.mu.Unlock()

	tx := &memTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = append(s.invoices, tx.invoices...)
	s.activity = append(s.activity, tx.activity...)
	for _, adv := range tx.advances {
		d := s.templates[adv.TemplateID]
		if !sameDate(d.Template.NextRunDate, adv.From) {
			return domain.ErrScheduleConflict
		}
		d.Template.NextRunDate = adv.To
		generated := adv.GeneratedAt
		d.Template.LastGeneratedAt = &generated
		d.Template.GeneratedCount++
	}
	s.commits++
	return nil
}

type memTx struct {
	store    *memStore
	invoices []domain.Invoice
	activity []domain.ActivityLogEntry
	advances []domain.AdvanceScheduleParams
}

func (tx *memTx) LockTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (time.Time, bool, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	d, ok := tx.store.templates[templateID]
	if !ok || d.Template.TenantID != tenantID {
		return time.Time{}, false, domain.NotFound("memTx.LockTemplate", "recurring template", templateID.String())
	}
	return d.Template.NextRunDate, d.Template.IsActive, nil
}

func (tx *memTx) CountInvoices(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return int64(len(tx.store.invoicesFor(tenantID))), nil
}

func (tx *memTx) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	if tx.store.createErr != nil {
		return tx.store.createErr
	}
	for _, existing := range tx.store.invoicesFor(inv.TenantID) {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicateInvoiceNumber
		}
	}
	tx.invoices = append(tx.invoices, *inv)
	return nil
}

func (tx *memTx) AppendActivity(ctx context.Context, entry domain.ActivityLogEntry) error {
	tx.activity = append(tx.activity, entry)
	return nil
}

func (tx *memTx) AdvanceSchedule(ctx context.Context, params domain.AdvanceScheduleParams) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	d, ok := tx.store.templates[params.TemplateID]
	if !ok || d.Template.TenantID != params.TenantID || !sameDate(d.Template.NextRunDate, params.From) {
		return domain.ErrScheduleConflict
	}
	tx.advances = append(tx.advances, params)
	return nil
}

func (s *memStore) MarkOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	y, m, d := asOf.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	var n int64
	for i := range s.invoices {
		inv := &s.invoices[i]
		if inv.TenantID != tenantID {
			continue
		}
		if inv.Status != domain.InvoiceStatusSent && inv.Status != domain.InvoiceStatusPending {
			continue
		}
		if inv.DueDate.Before(today) {
			inv.Status = domain.InvoiceStatusOverdue
			n++
		}
	}
	return n, nil
}

func (s *memStore) ArchivePaidInvoices(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.invoices {
		inv := &s.invoices[i]
		if inv.TenantID == tenantID && inv.Status == domain.InvoiceStatusPaid && !inv.IsArchived && inv.IssueDate.Before(cutoff) {
			inv.IsArchived = true
			n++
		}
	}
	return n, nil
}

func (s *memStore) ListInvoicesCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]domain.Invoice, error) {
	var out []domain.Invoice
	for _, inv := range s.invoicesFor(tenantID) {
		if !inv.CreatedAt.Before(from) && inv.CreatedAt.Before(to) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *memStore) ListUnpaidInvoicesDueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]domain.Invoice, error) {
	var out []domain.Invoice
	for _, inv := range s.invoicesFor(tenantID) {
		unpaid := inv.Status == domain.InvoiceStatusSent || inv.Status == domain.InvoiceStatusPending
		if unpaid && !inv.DueDate.Before(from) && !inv.DueDate.After(to) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *memStore) CreateNotification(ctx context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *memStore) HasInvoiceNotification(ctx context.Context, tenantID, invoiceID uuid.UUID, kind string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.TenantID == tenantID && n.Kind == kind && n.InvoiceID != nil && *n.InvoiceID == invoiceID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) DeleteNotificationsBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notifications[:0]
	var n int64
	for _, notif := range s.notifications {
		if notif.TenantID == tenantID && notif.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, notif)
	}
	s.notifications = kept
	return n, nil
}

func (s *memStore) CreateWeeklyReport(ctx context.Context, report *domain.WeeklyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return nil
}

// =============================================================================
// Collaborator mocks
// =============================================================================

type mockSkipEvaluator struct {
	decisions map[uuid.UUID]domain.SkipDecision
	errs      map[uuid.UUID]error
	panics    map[uuid.UUID]bool
	calls     int
}

func (m *mockSkipEvaluator) Evaluate(ctx context.Context, template domain.RecurringTemplate, customer domain.Customer) (domain.SkipDecision, error) {
	m.calls++
	if m.panics[template.ID] {
		panic("skip evaluator exploded")
	}
	if err := m.errs[template.ID]; err != nil {
		return domain.SkipDecision{}, err
	}
	return m.decisions[template.ID], nil
}

type mockDispatcher struct {
	mu    sync.Mutex
	sent  []domain.Invoice
	err   error
	calls int
}

func (m *mockDispatcher) SendRecurringInvoiceGenerated(ctx context.Context, template domain.RecurringTemplate, invoice domain.Invoice, customer domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, invoice)
	return nil
}

var errStore = errors.New("connection reset by peer")

// =============================================================================
// Fixtures
// =============================================================================

func newDueTemplate(tenantID uuid.UUID, name string, next time.Time) domain.DueTemplate {
	customer := domain.Customer{ID: uuid.New(), TenantID: tenantID, Name: "Acme Ltd", Email: "billing@acme.test", IsActive: true}
	company := domain.Company{ID: uuid.New(), TenantID: tenantID, Name: "Tally Co"}
	return domain.DueTemplate{
		Template: domain.RecurringTemplate{
			ID:          uuid.New(),
			TenantID:    tenantID,
			CompanyID:   company.ID,
			CustomerID:  customer.ID,
			Name:        name,
			Frequency:   domain.FrequencyDaily,
			Interval:    1,
			NextRunDate: next,
			IsActive:    true,
			Currency:    "USD",
			Lines: []domain.TemplateLine{
				{
					Position:    1,
					Description: "Support retainer",
					Quantity:    decimal.NewFromInt(1),
					UnitPrice:   decimal.RequireFromString("100.00"),
					LineTotal:   decimal.RequireFromString("100.00"),
					TaxRate:     decimal.RequireFromString("0.10"),
				},
				{
					Position:    2,
					Description: "Hosting",
					Quantity:    decimal.NewFromInt(2),
					UnitPrice:   decimal.RequireFromString("25.00"),
					LineTotal:   decimal.RequireFromString("50.00"),
					TaxRate:     decimal.Zero,
				},
			},
			Subtotal:    decimal.RequireFromString("150.00"),
			TaxTotal:    decimal.RequireFromString("10.00"),
			TotalAmount: decimal.RequireFromString("160.00"),
		},
		Customer: customer,
		Company:  company,
	}
}
