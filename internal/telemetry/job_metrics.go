package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// JobMetrics holds Prometheus metrics for the scheduled batch jobs.
// Tenant-scoped metrics carry a tenant_id label.
//
// A nil *JobMetrics is valid and records nothing.
type JobMetrics struct {
	// Runs
	RunsTotal     *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	RunsSkipped   *prometheus.CounterVec
	TenantsFailed *prometheus.CounterVec
	StepDuration  *prometheus.HistogramVec
	StepsFailed   *prometheus.CounterVec

	// Recurring invoices
	TemplatesProcessed *prometheus.CounterVec
	InvoicesGenerated  *prometheus.CounterVec
	TemplatesSkipped   *prometheus.CounterVec
	TemplatesFailed    *prometheus.CounterVec
	NotificationFailed *prometheus.CounterVec

	// Maintenance
	InvoicesMarkedOverdue *prometheus.CounterVec
	NotificationsPurged   *prometheus.CounterVec
	InvoicesArchived      *prometheus.CounterVec
	RemindersSent         *prometheus.CounterVec
	ReportsGenerated      *prometheus.CounterVec
}

// NewJobMetrics creates the job metrics and registers them with reg.
// A nil reg registers with the default Prometheus registerer.
func NewJobMetrics(namespace string, reg prometheus.Registerer) *JobMetrics {
	if namespace == "" {
		namespace = "tally"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	subsystem := "scheduler"

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      name,
				Help:      help,
			},
			labels,
		)
	}

	return &JobMetrics{
		// =======================================================================
		// Runs
		// =======================================================================
		RunsTotal: counter("runs_total", "Total batch runs by job type and outcome", "job_type", "outcome"),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_duration_seconds",
				Help:      "Batch run duration",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"job_type"},
		),
		RunsSkipped:   counter("runs_skipped_total", "Runs skipped because another run of the same kind held the lock", "job_type"),
		TenantsFailed: counter("tenant_failures_total", "Tenants whose job sequence reported a failure", "tenant_id", "job_type"),
		StepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "step_duration_seconds",
				Help:      "Duration of one per-tenant job step",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"tenant_id", "step"},
		),
		StepsFailed: counter("step_failures_total", "Per-tenant job steps that returned an error", "tenant_id", "step", "error_type"),

		// =======================================================================
		// Recurring invoices
		// =======================================================================
		TemplatesProcessed: counter("templates_processed_total", "Due recurring templates evaluated", "tenant_id"),
		InvoicesGenerated:  counter("invoices_generated_total", "Invoices generated from recurring templates", "tenant_id"),
		TemplatesSkipped:   counter("templates_skipped_total", "Due templates skipped by skip rules", "tenant_id"),
		TemplatesFailed:    counter("templates_failed_total", "Recurring templates that failed to generate", "tenant_id", "error_type"),
		NotificationFailed: counter("notification_failures_total", "Best-effort notifications that could not be delivered", "tenant_id", "kind"),

		// =======================================================================
		// Maintenance
		// =======================================================================
		InvoicesMarkedOverdue: counter("invoices_marked_overdue_total", "Invoices moved to overdue", "tenant_id"),
		NotificationsPurged:   counter("notifications_purged_total", "Notifications deleted by retention", "tenant_id"),
		InvoicesArchived:      counter("invoices_archived_total", "Paid invoices archived", "tenant_id"),
		RemindersSent:         counter("payment_reminders_total", "Payment reminders recorded", "tenant_id"),
		ReportsGenerated:      counter("weekly_reports_total", "Weekly reports persisted", "tenant_id"),
	}
}

// ObserveRun records the outcome and duration of a batch run.
func (m *JobMetrics) ObserveRun(jobType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(jobType, outcome).Inc()
	m.RunDuration.WithLabelValues(jobType).Observe(d.Seconds())
}

// RunSkipped records a run that did not start because of an overlapping run.
func (m *JobMetrics) RunSkipped(jobType string) {
	if m == nil {
		return
	}
	m.RunsSkipped.WithLabelValues(jobType).Inc()
}

// TenantFailed records a failed tenant sequence.
func (m *JobMetrics) TenantFailed(tenantID, jobType string) {
	if m == nil {
		return
	}
	m.TenantsFailed.WithLabelValues(tenantID, jobType).Inc()
}

// ObserveStep records the duration of a tenant step and, when errType is not
// empty, a step failure.
func (m *JobMetrics) ObserveStep(tenantID, step string, d time.Duration, errType string) {
	if m == nil {
		return
	}
	m.StepDuration.WithLabelValues(tenantID, step).Observe(d.Seconds())
	if errType != "" {
		m.StepsFailed.WithLabelValues(tenantID, step, errType).Inc()
	}
}

// TemplateProcessed records one evaluated template.
func (m *JobMetrics) TemplateProcessed(tenantID string) {
	if m == nil {
		return
	}
	m.TemplatesProcessed.WithLabelValues(tenantID).Inc()
}

// InvoiceGenerated records one generated invoice.
func (m *JobMetrics) InvoiceGenerated(tenantID string) {
	if m == nil {
		return
	}
	m.InvoicesGenerated.WithLabelValues(tenantID).Inc()
}

// TemplateSkipped records one skipped template.
func (m *JobMetrics) TemplateSkipped(tenantID string) {
	if m == nil {
		return
	}
	m.TemplatesSkipped.WithLabelValues(tenantID).Inc()
}

// TemplateFailed records one failed template.
func (m *JobMetrics) TemplateFailed(tenantID, errType string) {
	if m == nil {
		return
	}
	m.TemplatesFailed.WithLabelValues(tenantID, errType).Inc()
}

// NotificationFailure records an undelivered best-effort notification.
func (m *JobMetrics) NotificationFailure(tenantID, kind string) {
	if m == nil {
		return
	}
	m.NotificationFailed.WithLabelValues(tenantID, kind).Inc()
}

// MarkedOverdue adds n invoices moved to overdue.
func (m *JobMetrics) MarkedOverdue(tenantID string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.InvoicesMarkedOverdue.WithLabelValues(tenantID).Add(float64(n))
}

// Purged adds n deleted notifications.
func (m *JobMetrics) Purged(tenantID string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.NotificationsPurged.WithLabelValues(tenantID).Add(float64(n))
}

// Archived adds n archived invoices.
func (m *JobMetrics) Archived(tenantID string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.InvoicesArchived.WithLabelValues(tenantID).Add(float64(n))
}

// ReminderSent records one payment reminder.
func (m *JobMetrics) ReminderSent(tenantID string) {
	if m == nil {
		return
	}
	m.RemindersSent.WithLabelValues(tenantID).Inc()
}

// ReportGenerated records one persisted weekly report.
func (m *JobMetrics) ReportGenerated(tenantID string) {
	if m == nil {
		return
	}
	m.ReportsGenerated.WithLabelValues(tenantID).Inc()
}
