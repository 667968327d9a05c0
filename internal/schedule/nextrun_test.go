package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		current time.Time
		rule    Rule
		want    time.Time
	}{
		{
			name:    "daily interval 1",
			current: date(2024, 6, 3),
			rule:    Rule{Frequency: domain.FrequencyDaily, Interval: 1},
			want:    date(2024, 6, 4),
		},
		{
			name:    "daily interval 10 crosses month",
			current: date(2024, 6, 25),
			rule:    Rule{Frequency: domain.FrequencyDaily, Interval: 10},
			want:    date(2024, 7, 5),
		},
		{
			name:    "weekly interval 3",
			current: date(2024, 6, 3),
			rule:    Rule{Frequency: domain.FrequencyWeekly, Interval: 3},
			want:    date(2024, 6, 24),
		},
		{
			name:    "biweekly",
			current: date(2024, 6, 3),
			rule:    Rule{Frequency: domain.FrequencyBiweekly, Interval: 1},
			want:    date(2024, 6, 17),
		},
		{
			name:    "weekly pinned to friday snaps forward",
			current: date(2024, 6, 3),
			rule:    Rule{Frequency: domain.FrequencyWeekly, Interval: 1, DayOfWeek: intPtr(5)},
			want:    date(2024, 6, 14),
		},
		{
			name:    "weekly pinned to same weekday stays",
			current: date(2024, 6, 3),
			rule:    Rule{Frequency: domain.FrequencyWeekly, Interval: 1, DayOfWeek: intPtr(1)},
			want:    date(2024, 6, 10),
		},
		{
			name:    "weekly pinned to sunday",
			current: date(2024, 6, 3),
			rule:    Rule{Frequency: domain.FrequencyWeekly, Interval: 1, DayOfWeek: intPtr(0)},
			want:    date(2024, 6, 16),
		},
		{
			name:    "day of week ignored for monthly",
			current: date(2024, 6, 3),
			rule:    Rule{Frequency: domain.FrequencyMonthly, Interval: 1, DayOfWeek: intPtr(5)},
			want:    date(2024, 7, 3),
		},
		{
			name:    "monthly day 31 into leap february",
			current: date(2024, 1, 31),
			rule:    Rule{Frequency: domain.FrequencyMonthly, Interval: 1, DayOfMonth: intPtr(31)},
			want:    date(2024, 2, 29),
		},
		{
			name:    "monthly day 31 into common february",
			current: date(2023, 1, 31),
			rule:    Rule{Frequency: domain.FrequencyMonthly, Interval: 1, DayOfMonth: intPtr(31)},
			want:    date(2023, 2, 28),
		},
		{
			name:    "monthly pinned day recovers after short month",
			current: date(2024, 2, 29),
			rule:    Rule{Frequency: domain.FrequencyMonthly, Interval: 1, DayOfMonth: intPtr(31)},
			want:    date(2024, 3, 31),
		},
		{
			name:    "monthly unpinned clamps",
			current: date(2023, 1, 31),
			rule:    Rule{Frequency: domain.FrequencyMonthly, Interval: 1},
			want:    date(2023, 2, 28),
		},
		{
			name:    "monthly pinned to earlier day",
			current: date(2024, 1, 20),
			rule:    Rule{Frequency: domain.FrequencyMonthly, Interval: 2, DayOfMonth: intPtr(1)},
			want:    date(2024, 3, 1),
		},
		{
			name:    "quarterly clamps",
			current: date(2024, 11, 30),
			rule:    Rule{Frequency: domain.FrequencyQuarterly, Interval: 1},
			want:    date(2025, 2, 28),
		},
		{
			name:    "annually from leap day",
			current: date(2024, 2, 29),
			rule:    Rule{Frequency: domain.FrequencyAnnually, Interval: 1},
			want:    date(2025, 2, 28),
		},
		{
			name:    "annually interval 4 keeps leap day",
			current: date(2024, 2, 29),
			rule:    Rule{Frequency: domain.FrequencyAnnually, Interval: 4},
			want:    date(2028, 2, 29),
		},
		{
			name:    "business days rolls saturday to monday",
			current: date(2024, 3, 1),
			rule:    Rule{Frequency: domain.FrequencyDaily, Interval: 1, BusinessDaysOnly: true},
			want:    date(2024, 3, 4),
		},
		{
			name:    "business days leaves weekday alone",
			current: date(2024, 3, 4),
			rule:    Rule{Frequency: domain.FrequencyDaily, Interval: 1, BusinessDaysOnly: true},
			want:    date(2024, 3, 5),
		},
		{
			name:    "monthly landing on sunday rolls forward",
			current: date(2024, 8, 30),
			rule:    Rule{Frequency: domain.FrequencyMonthly, Interval: 1, DayOfMonth: intPtr(29), BusinessDaysOnly: true},
			want:    date(2024, 9, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.current, tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Format(time.DateOnly), got.Format(time.DateOnly))
			assert.True(t, got.After(tt.current))
		})
	}
}

func TestCompute_Holidays(t *testing.T) {
	cal := NewCalendar([]domain.Holiday{
		{Date: date(2000, 12, 25), Name: "Christmas", Recurring: true},
		{Date: date(2000, 12, 26), Name: "Boxing Day", Recurring: true},
		{Date: date(2024, 12, 27), Name: "Office closed"},
		{Date: date(2024, 12, 30), Name: "Office closed"},
	})

	tests := []struct {
		name    string
		current time.Time
		rule    Rule
		want    time.Time
	}{
		{
			name:    "rolls past consecutive holidays",
			current: date(2024, 12, 24),
			rule:    Rule{Frequency: domain.FrequencyDaily, Interval: 1, BusinessDaysOnly: true, SkipHolidays: true, Holidays: cal},
			want:    date(2024, 12, 31),
		},
		{
			name:    "holiday then weekend then holiday",
			current: date(2024, 12, 26),
			rule:    Rule{Frequency: domain.FrequencyDaily, Interval: 1, BusinessDaysOnly: true, SkipHolidays: true, Holidays: cal},
			want:    date(2024, 12, 31),
		},
		{
			name:    "holiday skip without business days keeps weekends",
			current: date(2024, 12, 26),
			rule:    Rule{Frequency: domain.FrequencyDaily, Interval: 1, SkipHolidays: true, Holidays: cal},
			want:    date(2024, 12, 28),
		},
		{
			name:    "holidays ignored when skip is off",
			current: date(2024, 12, 24),
			rule:    Rule{Frequency: domain.FrequencyDaily, Interval: 1, Holidays: cal},
			want:    date(2024, 12, 25),
		},
		{
			name:    "recurring holiday matches another year",
			current: date(2030, 11, 25),
			rule:    Rule{Frequency: domain.FrequencyMonthly, Interval: 1, SkipHolidays: true, Holidays: cal},
			want:    date(2030, 12, 27),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.current, tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Format(time.DateOnly), got.Format(time.DateOnly))
		})
	}
}

func TestCompute_Timezone(t *testing.T) {
	// 22:00 on March 9 in New York.
	current := time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC)
	rule := Rule{Frequency: domain.FrequencyDaily, Interval: 1, Timezone: "America/New_York"}

	got, err := Compute(current, rule)
	require.NoError(t, err)

	y, m, d := got.Date()
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.March, m)
	assert.Equal(t, 10, d)
	assert.Equal(t, "America/New_York", got.Location().String())
	assert.Equal(t, 0, got.Hour())
}

func TestCompute_AlwaysAfterCurrent(t *testing.T) {
	starts := []time.Time{
		date(2023, 1, 31),
		date(2024, 2, 29),
		date(2024, 6, 15),
		date(2024, 12, 31),
	}
	for _, f := range domain.ValidFrequencies {
		for interval := 1; interval <= 12; interval++ {
			for _, start := range starts {
				rule := Rule{Frequency: f, Interval: interval, BusinessDaysOnly: interval%2 == 0}
				got, err := Compute(start, rule)
				require.NoError(t, err, "%s/%d from %s", f, interval, start)
				assert.True(t, got.After(start), "%s/%d from %s gave %s", f, interval, start, got)
				if rule.BusinessDaysOnly {
					assert.False(t, IsWeekend(got))
				}
			}
		}
	}
}

func TestCompute_InvalidRule(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{name: "unknown frequency", rule: Rule{Frequency: "hourly", Interval: 1}},
		{name: "empty frequency", rule: Rule{Interval: 1}},
		{name: "zero interval", rule: Rule{Frequency: domain.FrequencyDaily}},
		{name: "negative interval", rule: Rule{Frequency: domain.FrequencyMonthly, Interval: -2}},
		{name: "day of week out of range", rule: Rule{Frequency: domain.FrequencyWeekly, Interval: 1, DayOfWeek: intPtr(7)}},
		{name: "day of month zero", rule: Rule{Frequency: domain.FrequencyMonthly, Interval: 1, DayOfMonth: intPtr(0)}},
		{name: "day of month 32", rule: Rule{Frequency: domain.FrequencyMonthly, Interval: 1, DayOfMonth: intPtr(32)}},
		{name: "unknown timezone", rule: Rule{Frequency: domain.FrequencyDaily, Interval: 1, Timezone: "Mars/Olympus_Mons"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(date(2024, 1, 1), tt.rule)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRule))
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			assert.True(t, got.IsZero())
		})
	}
}

type everyDay struct{}

func (everyDay) IsHoliday(time.Time) bool { return true }

func TestCompute_HolidayRollIsBounded(t *testing.T) {
	rule := Rule{Frequency: domain.FrequencyDaily, Interval: 1, SkipHolidays: true, Holidays: everyDay{}}

	_, err := Compute(date(2024, 1, 1), rule)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRule))
}

func TestAddClampedMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"plain", date(2024, 1, 15), 1, date(2024, 2, 15)},
		{"clamp leap", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"clamp common", date(2023, 3, 31), 1, date(2023, 4, 30)},
		{"year rollover", date(2024, 11, 30), 3, date(2025, 2, 28)},
		{"many years", date(2024, 5, 10), 36, date(2027, 5, 10)},
		{"backwards", date(2024, 3, 31), -1, date(2024, 2, 29)},
		{"backwards across year", date(2024, 1, 31), -2, date(2023, 11, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddClampedMonths(tt.start, tt.months))
		})
	}
}

func TestRuleFromTemplate(t *testing.T) {
	tmpl := domain.RecurringTemplate{
		Frequency:        domain.FrequencyMonthly,
		Interval:         2,
		DayOfMonth:       intPtr(15),
		BusinessDaysOnly: true,
		SkipHolidays:     true,
		Timezone:         "Europe/Berlin",
	}
	cal := NewCalendar(nil)

	rule := RuleFromTemplate(tmpl, cal)

	assert.Equal(t, domain.FrequencyMonthly, rule.Frequency)
	assert.Equal(t, 2, rule.Interval)
	assert.Equal(t, 15, *rule.DayOfMonth)
	assert.True(t, rule.BusinessDaysOnly)
	assert.True(t, rule.SkipHolidays)
	assert.Equal(t, "Europe/Berlin", rule.Timezone)
	assert.Same(t, cal, rule.Holidays)
	assert.NoError(t, rule.Validate())
}
