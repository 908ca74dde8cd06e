package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsWorkday(t *testing.T) {
	cal := New([]time.Time{date(2025, time.January, 1)})

	tests := []struct {
		name string
		day  time.Time
		want bool
	}{
		{"regular monday", date(2025, time.January, 6), true},
		{"regular friday", date(2025, time.January, 10), true},
		{"saturday", date(2025, time.January, 11), false},
		{"sunday", date(2025, time.January, 12), false},
		{"holiday on weekday", date(2025, time.January, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.IsWorkday(tt.day); got != tt.want {
				t.Errorf("IsWorkday(%s) = %v, want %v", tt.day.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestNextWorkday(t *testing.T) {
	cal := New([]time.Time{date(2025, time.January, 6)}) // Monday holiday

	tests := []struct {
		name string
		day  time.Time
		want time.Time
	}{
		{"workday is itself", date(2025, time.January, 7), date(2025, time.January, 7)},
		{"saturday rolls to monday", date(2025, time.January, 11), date(2025, time.January, 13)},
		{"holiday monday rolls to tuesday", date(2025, time.January, 6), date(2025, time.January, 7)},
		{"friday before holiday weekend", date(2025, time.January, 4), date(2025, time.January, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.NextWorkday(tt.day); !got.Equal(tt.want) {
				t.Errorf("NextWorkday(%s) = %s, want %s",
					tt.day.Format("2006-01-02"), got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestWorkdayAfter(t *testing.T) {
	cal := New(nil)

	// Friday -> Monday, skipping the weekend.
	got := cal.WorkdayAfter(date(2025, time.January, 10))
	want := date(2025, time.January, 13)
	if !got.Equal(want) {
		t.Errorf("WorkdayAfter(friday) = %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	// Strictly after: a workday input must not be returned unchanged.
	got = cal.WorkdayAfter(date(2025, time.January, 6))
	want = date(2025, time.January, 7)
	if !got.Equal(want) {
		t.Errorf("WorkdayAfter(monday) = %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestAddWorkdays(t *testing.T) {
	cal := New([]time.Time{date(2025, time.January, 8)}) // Wednesday holiday

	tests := []struct {
		name string
		day  time.Time
		n    int
		want time.Time
	}{
		{"zero equals next workday", date(2025, time.January, 11), 0, date(2025, time.January, 13)},
		{"skips weekend", date(2025, time.January, 9), 2, date(2025, time.January, 13)},
		{"skips holiday", date(2025, time.January, 6), 2, date(2025, time.January, 9)},
		{"five across a week", date(2025, time.January, 6), 5, date(2025, time.January, 14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.AddWorkdays(tt.day, tt.n); !got.Equal(tt.want) {
				t.Errorf("AddWorkdays(%s, %d) = %s, want %s",
					tt.day.Format("2006-01-02"), tt.n, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestAddWorkdaysZeroMatchesNextWorkday(t *testing.T) {
	cal := New([]time.Time{date(2025, time.January, 1)})

	for d := date(2024, time.December, 28); d.Before(date(2025, time.January, 15)); d = d.AddDate(0, 0, 1) {
		if got, want := cal.AddWorkdays(d, 0), cal.NextWorkday(d); !got.Equal(want) {
			t.Errorf("AddWorkdays(%s, 0) = %s, want NextWorkday = %s",
				d.Format("2006-01-02"), got.Format("2006-01-02"), want.Format("2006-01-02"))
		}
	}
}

func TestAddWorkdaysMonotonic(t *testing.T) {
	cal := New(nil)
	start := date(2025, time.March, 3)

	prev := cal.AddWorkdays(start, 0)
	for n := 1; n <= 30; n++ {
		cur := cal.AddWorkdays(start, n)
		if !cur.After(prev) {
			t.Fatalf("AddWorkdays not monotonic at n=%d: %s <= %s", n, cur.Format("2006-01-02"), prev.Format("2006-01-02"))
		}
		prev = cur
	}
}

func TestCountWorkdays(t *testing.T) {
	cal := New([]time.Time{date(2025, time.January, 8)})

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"single workday", date(2025, time.January, 6), date(2025, time.January, 6), 1},
		{"single weekend day", date(2025, time.January, 11), date(2025, time.January, 11), 0},
		{"full week minus holiday", date(2025, time.January, 6), date(2025, time.January, 10), 4},
		{"two calendar weeks", date(2025, time.January, 6), date(2025, time.January, 17), 9},
		{"start after end", date(2025, time.January, 10), date(2025, time.January, 6), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.CountWorkdays(tt.start, tt.end); got != tt.want {
				t.Errorf("CountWorkdays(%s, %s) = %d, want %d",
					tt.start.Format("2006-01-02"), tt.end.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}
