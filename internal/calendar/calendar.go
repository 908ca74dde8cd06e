// Package calendar provides business-day arithmetic over a fixed
// weekday-plus-holidays model. All operations are pure: for a given holiday
// set the same input always yields the same output.
package calendar

import "time"

// dateKey is the layout used to index holidays, deliberately ignoring the
// time-of-day and timezone components of the input dates.
const dateKey = "2006-01-02"

// Calendar answers workday questions for one holiday set.
type Calendar struct {
	holidays map[string]struct{}
}

// New creates a Calendar from a list of holiday dates. Duplicate entries and
// holidays falling on weekends are harmless.
func New(holidays []time.Time) *Calendar {
	c := &Calendar{holidays: make(map[string]struct{}, len(holidays))}
	for _, h := range holidays {
		c.holidays[h.Format(dateKey)] = struct{}{}
	}
	return c
}

// IsWorkday reports whether d is a Monday-Friday that is not a holiday.
func (c *Calendar) IsWorkday(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[d.Format(dateKey)]
	return !holiday
}

// NextWorkday returns d itself if d is a workday, otherwise the earliest
// workday after d.
func (c *Calendar) NextWorkday(d time.Time) time.Time {
	d = truncate(d)
	for !c.IsWorkday(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// WorkdayAfter returns the first workday strictly after d. This is the step
// every scheduling barrier takes from an end date to the earliest permitted
// start of a successor.
func (c *Calendar) WorkdayAfter(d time.Time) time.Time {
	return c.NextWorkday(truncate(d).AddDate(0, 0, 1))
}

// AddWorkdays returns the workday reached by starting at NextWorkday(d) and
// advancing n further workdays. AddWorkdays(d, 0) == NextWorkday(d).
func (c *Calendar) AddWorkdays(d time.Time, n int) time.Time {
	cur := c.NextWorkday(d)
	for i := 0; i < n; i++ {
		cur = c.WorkdayAfter(cur)
	}
	return cur
}

// CountWorkdays returns the number of workdays in [start, end] inclusive.
// Returns 0 when start is after end.
func (c *Calendar) CountWorkdays(start, end time.Time) int {
	start, end = truncate(start), truncate(end)
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsWorkday(d) {
			count++
		}
	}
	return count
}

// truncate drops the time-of-day component so date comparisons behave as
// whole-day comparisons.
func truncate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
