package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - An inclusive range of calendar days
// =============================================================================

// Period is the reconciliation window [Start, End]. Salary rates are always
// derived from a period, never from a single day.
//
// Examples:
//   - Pay month March 2025: Mar 1 - Mar 31
//   - A single day: Start == End
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the day is within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days enumerates every day in the period, inclusive.
// An inverted period (Start after End) has no days.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len is the number of days in the period.
func (p Period) Len() int {
	if p.Start.After(p.End) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// CountSundays counts the Sundays inside the period.
func (p Period) CountSundays() int {
	n := 0
	for _, d := range p.Days() {
		if d.IsSunday() {
			n++
		}
	}
	return n
}

// IsSingleDay reports whether the period covers exactly one day.
func (p Period) IsSingleDay() bool { return p.Start.Equal(p.End) }

// Validate rejects inverted periods.
func (p Period) Validate() error {
	if p.Start.After(p.End) {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// PERIOD HELPERS
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }

func EndOfMonth(year int, month time.Month) TimePoint {
	return DayOf(time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}

// MonthPeriod is the calendar month used as a pay period.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// PreviousMonth returns the pay month before the one containing date.
func PreviousMonth(date TimePoint) Period {
	prev := StartOfMonth(date.Year(), date.Month()).AddDays(-1)
	return MonthPeriod(prev.Year(), prev.Month())
}

// ParseMonth parses "2006-01" into that month's pay period.
func ParseMonth(s string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Period{}, fmt.Errorf("invalid month %q (use YYYY-MM)", s)
	}
	return MonthPeriod(t.Year(), t.Month()), nil
}
