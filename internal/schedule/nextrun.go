// Package schedule computes the next run date of recurring invoice templates.
//
// All arithmetic happens on local calendar dates in the template's timezone.
// Results are returned as midnight of the chosen date in that timezone.
package schedule

import (
	"fmt"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/go-playground/validator/v10"
)

// maxRollDays bounds the business day and holiday roll so that a calendar
// marking every day as a holiday cannot loop forever.
const maxRollDays = 366

// ErrInvalidRule is returned when a recurrence rule cannot be evaluated.
// Compute never returns a date together with this error.
var ErrInvalidRule = &domain.Error{
	Code:    domain.EINVALID,
	Message: "invalid recurrence rule",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Rule is the recurrence configuration of a template.
type Rule struct {
	Frequency        domain.Frequency `validate:"required,oneof=daily weekly biweekly monthly quarterly annually"`
	Interval         int              `validate:"gte=1"`
	DayOfWeek        *int             `validate:"omitempty,min=0,max=6"` // 0 = Sunday
	DayOfMonth       *int             `validate:"omitempty,min=1,max=31"`
	BusinessDaysOnly bool
	SkipHolidays     bool
	Timezone         string   `validate:"omitempty,timezone"`
	Holidays         Calendar `validate:"-"`
}

// RuleFromTemplate builds the rule of a template, using cal as its holiday
// calendar. cal may be nil when the tenant has no holidays.
func RuleFromTemplate(t domain.RecurringTemplate, cal Calendar) Rule {
	return Rule{
		Frequency:        t.Frequency,
		Interval:         t.Interval,
		DayOfWeek:        t.DayOfWeek,
		DayOfMonth:       t.DayOfMonth,
		BusinessDaysOnly: t.BusinessDaysOnly,
		SkipHolidays:     t.SkipHolidays,
		Timezone:         t.Timezone,
		Holidays:         cal,
	}
}

// Validate checks the rule. The returned error matches ErrInvalidRule.
func (r Rule) Validate() error {
	if err := validate.Struct(r); err != nil {
		return domain.WrapError(err, ErrInvalidRule.Code, "schedule.Validate", ErrInvalidRule.Message)
	}
	return nil
}

func (r Rule) location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, domain.WrapError(err, ErrInvalidRule.Code, "schedule.location", ErrInvalidRule.Message)
	}
	return loc, nil
}

// Compute returns the date following current under rule.
//
// current is interpreted as the local calendar date it falls on in the rule's
// timezone. The period advance is applied first, then weekday pinning for
// week based frequencies, then day-of-month pinning for month based ones,
// then the business day roll and finally the holiday roll. Rolls only ever
// move forward. The result is strictly after current's local date.
func Compute(current time.Time, rule Rule) (time.Time, error) {
	if err := rule.Validate(); err != nil {
		return time.Time{}, err
	}
	loc, err := rule.location()
	if err != nil {
		return time.Time{}, err
	}

	y, m, d := current.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)

	next := advance(start, rule.Frequency, rule.Interval)

	if rule.DayOfWeek != nil && rule.Frequency.IsWeekBased() {
		want := time.Weekday(*rule.DayOfWeek)
		for next.Weekday() != want {
			next = next.AddDate(0, 0, 1)
		}
	}

	if rule.DayOfMonth != nil && rule.Frequency.IsMonthBased() {
		ny, nm, _ := next.Date()
		day := min(*rule.DayOfMonth, DaysIn(ny, nm))
		next = time.Date(ny, nm, day, 0, 0, 0, 0, loc)
	}

	next, err = roll(next, rule)
	if err != nil {
		return time.Time{}, err
	}

	if !next.After(start) {
		err := fmt.Errorf("computed %s is not after %s", next.Format(time.DateOnly), start.Format(time.DateOnly))
		return time.Time{}, domain.WrapError(err, ErrInvalidRule.Code, "schedule.Compute", ErrInvalidRule.Message)
	}
	return next, nil
}

func advance(t time.Time, f domain.Frequency, n int) time.Time {
	switch f {
	case domain.FrequencyDaily:
		return t.AddDate(0, 0, n)
	case domain.FrequencyWeekly:
		return t.AddDate(0, 0, 7*n)
	case domain.FrequencyBiweekly:
		return t.AddDate(0, 0, 14*n)
	case domain.FrequencyMonthly:
		return AddClampedMonths(t, n)
	case domain.FrequencyQuarterly:
		return AddClampedMonths(t, 3*n)
	case domain.FrequencyAnnually:
		return AddClampedMonths(t, 12*n)
	}
	// Validate rejects anything else.
	return t
}

func roll(t time.Time, rule Rule) (time.Time, error) {
	for i := 0; i <= maxRollDays; i++ {
		switch {
		case rule.BusinessDaysOnly && IsWeekend(t):
		case rule.SkipHolidays && rule.Holidays != nil && rule.Holidays.IsHoliday(t):
		default:
			return t, nil
		}
		t = t.AddDate(0, 0, 1)
	}
	err := fmt.Errorf("no eligible day within %d days", maxRollDays)
	return time.Time{}, domain.WrapError(err, ErrInvalidRule.Code, "schedule.roll", ErrInvalidRule.Message)
}

// AddClampedMonths adds months to t, clamping the day to the last day of the
// target month. AddClampedMonths(2024-01-31, 1) is 2024-02-29.
func AddClampedMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	total := int(m) - 1 + months
	ny := y + total/12
	nm := total % 12
	if nm < 0 {
		nm += 12
		ny--
	}
	month := time.Month(nm + 1)

	return time.Date(ny, month, min(d, DaysIn(ny, month)), hh, mm, ss, t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// String renders the rule for log output.
func (r Rule) String() string {
	return fmt.Sprintf("%s/%d tz=%q", r.Frequency, r.Interval, r.Timezone)
}
