package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/generic"
)

func TestPeriod_DaysIsInclusive(t *testing.T) {
	p := generic.MonthPeriod(2025, time.February)

	if got := len(p.Days()); got != 28 {
		t.Fatalf("expected 28 days in Feb 2025, got %d", got)
	}
	if p.Len() != 28 {
		t.Errorf("Len = %d", p.Len())
	}
	if got := p.CountSundays(); got != 4 {
		t.Errorf("expected 4 Sundays, got %d", got)
	}
	if !p.Contains(generic.NewTimePoint(2025, time.February, 28)) {
		t.Error("last day must be inside the period")
	}
}

func TestPeriod_InvertedHasNoDays(t *testing.T) {
	p := generic.Period{
		Start: generic.NewTimePoint(2025, time.March, 5),
		End:   generic.NewTimePoint(2025, time.March, 4),
	}

	if len(p.Days()) != 0 || p.Len() != 0 {
		t.Error("inverted period should be empty")
	}
	if !errors.Is(p.Validate(), generic.ErrInvalidPeriod) {
		t.Error("expected ErrInvalidPeriod")
	}
}

func TestPreviousMonth(t *testing.T) {
	got := generic.PreviousMonth(generic.NewTimePoint(2025, time.January, 15))
	want := generic.MonthPeriod(2024, time.December)
	if !got.Start.Equal(want.Start) || !got.End.Equal(want.End) {
		t.Errorf("PreviousMonth = %s, want %s", got, want)
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2025-03-04", "2025-03-04T18:30:00Z", "2025-03-04T00:00:00.000+05:30"} {
		d, err := generic.ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if d.String() != "2025-03-04" {
			t.Errorf("ParseDate(%q) = %s", in, d)
		}
	}
	if _, err := generic.ParseDate("04/03/2025"); err == nil {
		t.Error("expected an error for a non-ISO date")
	}
}

func TestHolidayList_FirstMatchWins(t *testing.T) {
	day := generic.NewTimePoint(2025, time.March, 14)
	list := generic.HolidayList{
		{Date: day, Name: "Holi"},
		{Date: day, Name: "Duplicate"},
	}

	h := list.HolidayOn(day)
	if h == nil || h.Name != "Holi" {
		t.Fatalf("expected Holi, got %+v", h)
	}
	if list.HolidayOn(day.AddDays(1)) != nil {
		t.Error("no holiday expected on the next day")
	}
	if generic.HolidayList(nil).HolidayOn(day) != nil {
		t.Error("empty list has no holidays")
	}
}

func TestMoney_GuardedDivisionAndFormat(t *testing.T) {
	salary := generic.NewMoneyFromInt(30000)

	if !salary.DivOrZero(decimal.Zero).IsZero() {
		t.Error("division by zero must yield zero")
	}
	if got := salary.DivOrZero(decimal.NewFromInt(30)).Format(); got != "₹1000.00" {
		t.Errorf("Format = %q", got)
	}
	if got := generic.NewMoneyFromInt(100).Sub(salary).FloorAtZero(); !got.IsZero() {
		t.Errorf("FloorAtZero = %s", got)
	}

	var m generic.Money
	if err := m.UnmarshalJSON([]byte(`"1250.50"`)); err != nil || m.Format() != "₹1250.50" {
		t.Errorf("quoted money: %v %s", err, m.Format())
	}
	if err := m.UnmarshalJSON([]byte(`99.5`)); err != nil || m.Format() != "₹99.50" {
		t.Errorf("numeric money: %v %s", err, m.Format())
	}
}

func TestParseMonth(t *testing.T) {
	p, err := generic.ParseMonth("2024-02")
	if err != nil {
		t.Fatalf("ParseMonth: %v", err)
	}
	if p.Start.String() != "2024-02-01" || p.End.String() != "2024-02-29" {
		t.Errorf("leap February = %s", p)
	}
	if _, err := generic.ParseMonth("February"); err == nil {
		t.Error("expected error for a month name")
	}
}
