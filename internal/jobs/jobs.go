// Package jobs runs the scheduled batch jobs across tenants.
package jobs

import (
	"fmt"
	"time"

	"github.com/dukerupert/tally/internal/service"
	"github.com/google/uuid"
)

// Job type constants. They double as the names of the run locks.
const (
	JobTypeDaily  = "scheduler:daily"
	JobTypeWeekly = "scheduler:weekly"
)

// Step names of the per-tenant sequences.
const (
	StepScanRecurring    = "scan_recurring"
	StepPaymentReminders = "payment_reminders"
	StepPurgeNotices     = "purge_notifications"
	StepMarkOverdue      = "mark_overdue"
	StepWeeklyReport     = "weekly_report"
	StepArchivePaid      = "archive_paid"
)

// RunStatus is the overall outcome of a batch run.
type RunStatus string

const (
	RunCompleted             RunStatus = "completed"
	RunCompletedWithFailures RunStatus = "completed_with_failures"
	RunSkipped               RunStatus = "skipped"
	RunFailed                RunStatus = "failed"
	RunCanceled              RunStatus = "canceled"
)

// RunReport is the result of one daily or weekly run.
type RunReport struct {
	RunID        string         `json:"run_id"`
	JobType      string         `json:"job_type"`
	Status       RunStatus      `json:"status"`
	Error        string         `json:"error,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Tenants      []TenantResult `json:"tenants"`
	NotAttempted []uuid.UUID    `json:"not_attempted,omitempty"`
	Totals       Totals         `json:"totals"`
}

// Duration returns how long the run took.
func (r RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failures returns every tenant step that failed during the run.
func (r RunReport) Failures() []TenantFailure {
	var out []TenantFailure
	for _, t := range r.Tenants {
		out = append(out, t.Failures()...)
	}
	return out
}

// Totals aggregates counts over all tenants of a run.
type Totals struct {
	TenantsProcessed    int   `json:"tenants_processed"`
	TenantsFailed       int   `json:"tenants_failed"`
	TemplatesProcessed  int   `json:"templates_processed"`
	InvoicesGenerated   int   `json:"invoices_generated"`
	TemplatesSkipped    int   `json:"templates_skipped"`
	TemplateFailures    int   `json:"template_failures"`
	InvoicesOverdue     int64 `json:"invoices_marked_overdue"`
	NotificationsPurged int64 `json:"notifications_purged"`
	InvoicesArchived    int64 `json:"invoices_archived"`
	ReportsGenerated    int64 `json:"reports_generated"`
}

func (t *Totals) add(tr TenantResult) {
	t.TenantsProcessed++
	if tr.Failed() {
		t.TenantsFailed++
	}
	if tr.Scan != nil {
		t.TemplatesProcessed += tr.Scan.Processed
		t.InvoicesGenerated += tr.Scan.Generated
		t.TemplatesSkipped += tr.Scan.Skipped
		t.TemplateFailures += tr.Scan.Failed()
	}
	for _, s := range tr.Steps {
		switch s.Step {
		case StepMarkOverdue:
			t.InvoicesOverdue += s.Count
		case StepPurgeNotices:
			t.NotificationsPurged += s.Count
		case StepArchivePaid:
			t.InvoicesArchived += s.Count
		case StepWeeklyReport:
			t.ReportsGenerated += s.Count
		}
	}
}

// TenantResult is the outcome of one tenant's job sequence.
type TenantResult struct {
	TenantID   uuid.UUID           `json:"tenant_id"`
	TenantName string              `json:"tenant_name"`
	Steps      []StepResult        `json:"steps"`
	Scan       *service.ScanResult `json:"scan,omitempty"`
}

// Failed reports whether any step of the sequence failed.
func (r TenantResult) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Failures returns the failed steps as TenantFailures.
func (r TenantResult) Failures() []TenantFailure {
	var out []TenantFailure
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, TenantFailure{TenantID: r.TenantID, Step: s.Step, Err: s.Err})
		}
	}
	return out
}

// StepResult is the outcome of one step for one tenant.
type StepResult struct {
	Step     string        `json:"step"`
	Count    int64         `json:"count"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
	Err      error         `json:"-"`
}

// TenantFailure is a failed step of a tenant's sequence. It is recorded and
// logged; the run moves on to the next step and tenant.
type TenantFailure struct {
	TenantID uuid.UUID
	Step     string
	Err      error
}

func (f TenantFailure) Error() string {
	return fmt.Sprintf("tenant %s: %s: %v", f.TenantID, f.Step, f.Err)
}

func (f TenantFailure) Unwrap() error {
	return f.Err
}
