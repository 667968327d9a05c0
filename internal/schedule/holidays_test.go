package schedule

import (
	"testing"
	"time"

	"github.com/dukerupert/tally/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHolidayCalendar(t *testing.T) {
	cal := NewCalendar([]domain.Holiday{
		{Date: date(2020, 1, 1), Name: "New Year", Recurring: true},
		{Date: date(2024, 7, 5), Name: "Bridge day"},
	})

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"recurring in original year", date(2020, 1, 1), true},
		{"recurring in later year", date(2031, 1, 1), true},
		{"one-off on its date", date(2024, 7, 5), true},
		{"one-off in another year", date(2025, 7, 5), false},
		{"ordinary day", date(2024, 7, 4), false},
		{"local date is used", time.Date(2031, 1, 1, 23, 30, 0, 0, time.FixedZone("UTC-8", -8*3600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.IsHoliday(tt.date))
		})
	}

	name, ok := cal.Lookup(date(2024, 7, 5))
	assert.True(t, ok)
	assert.Equal(t, "Bridge day", name)
	assert.Equal(t, 2, cal.Len())
}

func TestHolidayCalendar_Nil(t *testing.T) {
	var cal *HolidayCalendar
	assert.False(t, cal.IsHoliday(date(2024, 1, 1)))
	assert.Equal(t, 0, cal.Len())
}
