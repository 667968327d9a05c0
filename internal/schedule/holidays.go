package schedule

import (
	"time"

	"github.com/dukerupert/tally/internal/domain"
)

// Calendar answers whether a local calendar date is a holiday.
type Calendar interface {
	IsHoliday(date time.Time) bool
}

type monthDay struct {
	month time.Month
	day   int
}

type civilDate struct {
	year int
	monthDay
}

// HolidayCalendar is a tenant holiday set. One-off holidays match an exact
// date; recurring holidays match the same month and day in every year.
type HolidayCalendar struct {
	fixed  map[civilDate]string
	yearly map[monthDay]string
}

// NewCalendar builds a calendar from stored holidays. Only the year, month
// and day of each Holiday.Date are used.
func NewCalendar(holidays []domain.Holiday) *HolidayCalendar {
	c := &HolidayCalendar{
		fixed:  make(map[civilDate]string),
		yearly: make(map[monthDay]string),
	}
	for _, h := range holidays {
		y, m, d := h.Date.Date()
		md := monthDay{month: m, day: d}
		if h.Recurring {
			c.yearly[md] = h.Name
			continue
		}
		c.fixed[civilDate{year: y, monthDay: md}] = h.Name
	}
	return c
}

// IsHoliday reports whether date, read in its own location, is a holiday.
func (c *HolidayCalendar) IsHoliday(date time.Time) bool {
	_, ok := c.Lookup(date)
	return ok
}

// Lookup returns the holiday name for date.
func (c *HolidayCalendar) Lookup(date time.Time) (string, bool) {
	if c == nil {
		return "", false
	}
	y, m, d := date.Date()
	md := monthDay{month: m, day: d}
	if name, ok := c.fixed[civilDate{year: y, monthDay: md}]; ok {
		return name, true
	}
	name, ok := c.yearly[md]
	return name, ok
}

// Len returns the number of distinct holiday entries.
func (c *HolidayCalendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fixed) + len(c.yearly)
}
