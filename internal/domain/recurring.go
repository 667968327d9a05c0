package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tenant is an account whose records are processed by the batch jobs.
// Tenants are created and deactivated elsewhere; the scheduler only reads them.
type Tenant struct {
	ID       uuid.UUID
	Name     string
	IsActive bool
}

// Frequency is the calendar unit a recurring template advances by.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
)

// ValidFrequencies lists every supported frequency.
var ValidFrequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyBiweekly,
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencyAnnually,
}

// IsValid reports whether f is a supported frequency.
func (f Frequency) IsValid() bool {
	for _, v := range ValidFrequencies {
		if v == f {
			return true
		}
	}
	return false
}

// IsWeekBased reports whether day-of-week pinning applies to f.
func (f Frequency) IsWeekBased() bool {
	return f == FrequencyWeekly || f == FrequencyBiweekly
}

// IsMonthBased reports whether day-of-month pinning applies to f.
func (f Frequency) IsMonthBased() bool {
	return f == FrequencyMonthly || f == FrequencyQuarterly || f == FrequencyAnnually
}

// DefaultPaymentTermsDays is used when a template carries no payment terms.
const DefaultPaymentTermsDays = 30

// RecurringTemplate is a tenant-owned definition of a periodically
// regenerated invoice.
//
// NextRunDate is the sole authority for whether the template is due. It is a
// calendar date expressed as midnight in the template's timezone and only
// moves forward after a successful generation.
type RecurringTemplate struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	CompanyID        uuid.UUID
	CustomerID       uuid.UUID
	Name             string
	Frequency        Frequency
	Interval         int
	NextRunDate      time.Time
	DayOfWeek        *int // 0 = Sunday
	DayOfMonth       *int
	BusinessDaysOnly bool
	SkipHolidays     bool
	Timezone         string
	IsActive         bool
	AutoSend         bool
	PaymentTermsDays int
	Currency         string
	Lines            []TemplateLine
	Subtotal         decimal.Decimal
	TaxTotal         decimal.Decimal
	TotalAmount      decimal.Decimal
	EndDate          *time.Time
	LastGeneratedAt  *time.Time
	GeneratedCount   int
}

// Location resolves the template's timezone, defaulting to UTC.
func (t RecurringTemplate) Location() (*time.Location, error) {
	if t.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(t.Timezone)
}

// TemplateLine is one line definition of a recurring template.
type TemplateLine struct {
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	TaxRate     decimal.Decimal
}

// Customer is the billed party of a recurring template.
type Customer struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	Email    string
	IsActive bool
}

// Company is the issuing company of a recurring template.
type Company struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
}

// DueTemplate is a template selected by a scan together with the customer
// and company it bills for.
type DueTemplate struct {
	Template RecurringTemplate
	Customer Customer
	Company  Company
}

// SkipDecision is the transient answer of a SkipEvaluator.
type SkipDecision struct {
	ShouldSkip bool
	Reason     string
}

// Holiday is an entry of a tenant's holiday calendar. Recurring holidays
// repeat every year on the same month and day.
type Holiday struct {
	TenantID  uuid.UUID
	Date      time.Time
	Name      string
	Recurring bool
}
