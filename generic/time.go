package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - A calendar day (attendance is reconciled at day granularity)
// =============================================================================

// TimePoint is a calendar day. The wrapped time is always UTC midnight so two
// TimePoints for the same day compare equal regardless of how they were built.
type TimePoint struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf strips the time of day, keeping the calendar date as seen in t's own location.
func DayOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return DayOf(time.Now())
}

// ParseDate accepts "2006-01-02" or an RFC 3339 timestamp
// ("2025-03-04T00:00:00.000Z"). The time-of-day part is discarded.
func ParseDate(s string) (TimePoint, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DayOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DayOf(t), nil
	}
	if len(s) >= len(dateLayout) {
		if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			return DayOf(t), nil
		}
	}
	return TimePoint{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return DayOf(tp.Time.AddDate(0, 0, n)) }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsSunday() bool        { return tp.Weekday() == time.Sunday }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// String returns the ISO date, which also sorts chronologically.
func (tp TimePoint) String() string { return tp.Time.Format(dateLayout) }

func (tp TimePoint) MarshalText() ([]byte, error) { return []byte(tp.String()), nil }

func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// HOLIDAYS - Days that are non-working without salary deduction
// =============================================================================

// Holiday is a named non-working day.
type Holiday struct {
	ID   string
	Date TimePoint
	Name string
}

// HolidayCalendar answers whether a day is a holiday.
type HolidayCalendar interface {
	// HolidayOn returns the holiday for date, or nil.
	HolidayOn(date TimePoint) *Holiday
}

// HolidayList is the simplest calendar: a slice scanned in order.
// The first holiday matching a date wins.
type HolidayList []Holiday

func (l HolidayList) HolidayOn(date TimePoint) *Holiday {
	for i := range l {
		if l[i].Date.Equal(date) {
			return &l[i]
		}
	}
	return nil
}

var _ HolidayCalendar = HolidayList(nil)
