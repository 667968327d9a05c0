package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockInvoiceStore struct {
	domain.InvoiceStore
	invoices []domain.Invoice
	listErr  error
	from, to time.Time
}

func (m *mockInvoiceStore) ListUnpaidInvoicesDueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]domain.Invoice, error) {
	m.from, m.to = from, to
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Invoice
	for _, inv := range m.invoices {
		if inv.TenantID == tenantID && !inv.DueDate.Before(from) && !inv.DueDate.After(to) {
			out = append(out, inv)
		}
	}
	return out, nil
}

type mockNotificationStore struct {
	created   []domain.Notification
	createErr error
	lookupErr error
}

func (m *mockNotificationStore) HasInvoiceNotification(ctx context.Context, tenantID, invoiceID uuid.UUID, kind string) (bool, error) {
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	for _, n := range m.created {
		if n.TenantID == tenantID && n.Kind == kind && n.InvoiceID != nil && *n.InvoiceID == invoiceID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockNotificationStore) CreateNotification(ctx context.Context, n domain.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationStore) DeleteNotificationsBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) (int64, error) {
	return 0, nil
}

type mockReminderSender struct {
	sent []domain.Invoice
	err  error
}

func (m *mockReminderSender) SendPaymentReminder(ctx context.Context, invoice domain.Invoice) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, invoice)
	return nil
}

func newTestReminders(invoices *mockInvoiceStore, notifications *mockNotificationStore, sender ReminderSender) *PaymentReminderService {
	s := NewPaymentReminderService(invoices, notifications, sender, 3, nil, discardLogger())
	s.now = func() time.Time { return testNow }
	return s
}

func TestPaymentReminderService_SendPaymentReminders(t *testing.T) {
	tenantID := uuid.New()
	dueInThree := sampleInvoice(tenantID)
	dueInThree.DueDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	dueTomorrow := sampleInvoice(tenantID)
	dueTomorrow.DueDate = time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)

	invoices := &mockInvoiceStore{invoices: []domain.Invoice{dueInThree, dueTomorrow}}
	notifications := &mockNotificationStore{}
	sender := &mockReminderSender{}

	err := newTestReminders(invoices, notifications, sender).SendPaymentReminders(context.Background(), tenantID)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), invoices.from)
	assert.Equal(t, invoices.from, invoices.to)

	require.Len(t, notifications.created, 1)
	n := notifications.created[0]
	assert.Equal(t, domain.NotificationPaymentReminder, n.Kind)
	assert.Equal(t, tenantID, n.TenantID)
	require.NotNil(t, n.InvoiceID)
	assert.Equal(t, dueInThree.ID, *n.InvoiceID)
	assert.Contains(t, n.Subject, dueInThree.InvoiceNumber)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, dueInThree.ID, sender.sent[0].ID)
}

func TestPaymentReminderService_SendFailureIsNotFatal(t *testing.T) {
	tenantID := uuid.New()
	inv := sampleInvoice(tenantID)
	inv.DueDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	notifications := &mockNotificationStore{}
	sender := &mockReminderSender{err: errors.New("nats: timeout")}

	err := newTestReminders(&mockInvoiceStore{invoices: []domain.Invoice{inv}}, notifications, sender).
		SendPaymentReminders(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Len(t, notifications.created, 1)
}

func TestPaymentReminderService_StoreFailures(t *testing.T) {
	tenantID := uuid.New()
	inv := sampleInvoice(tenantID)
	inv.DueDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	storeErr := errors.New("relation \"notifications\" does not exist")

	t.Run("list failure", func(t *testing.T) {
		err := newTestReminders(&mockInvoiceStore{listErr: storeErr}, &mockNotificationStore{}, &mockReminderSender{}).
			SendPaymentReminders(context.Background(), tenantID)
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("create failure", func(t *testing.T) {
		sender := &mockReminderSender{}
		err := newTestReminders(&mockInvoiceStore{invoices: []domain.Invoice{inv}}, &mockNotificationStore{createErr: storeErr}, sender).
			SendPaymentReminders(context.Background(), tenantID)
		assert.ErrorIs(t, err, storeErr)
		assert.Empty(t, sender.sent)
	})

	t.Run("lookup failure", func(t *testing.T) {
		sender := &mockReminderSender{}
		notifications := &mockNotificationStore{lookupErr: storeErr}
		err := newTestReminders(&mockInvoiceStore{invoices: []domain.Invoice{inv}}, notifications, sender).
			SendPaymentReminders(context.Background(), tenantID)
		assert.ErrorIs(t, err, storeErr)
		assert.Empty(t, notifications.created)
		assert.Empty(t, sender.sent)
	})
}

func TestPaymentReminderService_RepeatedRunRemindsOnce(t *testing.T) {
	tenantID := uuid.New()
	inv := sampleInvoice(tenantID)
	inv.DueDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	invoices := &mockInvoiceStore{invoices: []domain.Invoice{inv}}
	notifications := &mockNotificationStore{}
	sender := &mockReminderSender{}
	reminders := newTestReminders(invoices, notifications, sender)

	require.NoError(t, reminders.SendPaymentReminders(context.Background(), tenantID))
	require.NoError(t, reminders.SendPaymentReminders(context.Background(), tenantID))

	assert.Len(t, notifications.created, 1)
	assert.Len(t, sender.sent, 1)
}
