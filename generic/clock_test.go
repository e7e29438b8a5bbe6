package generic_test

import (
	"testing"
	"time"

	"github.com/warp/attendance-engine/generic"
)

func TestTimeToMinutes(t *testing.T) {
	cases := map[string]float64{
		"09:00":    540,
		"13:30":    810,
		"07:15:30": 435.5,
		"8":        480,
		"":         0,
		"xx:10":    10,
	}
	for in, want := range cases {
		if got := generic.TimeToMinutes(in); got != want {
			t.Errorf("TimeToMinutes(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseAttendanceTime(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"9:00 AM", 540, true},
		{"12:00 AM", 0, true},
		{"12:30 PM", 750, true},
		{"7:00 PM", 1140, true},
		{"7:00:30 pm", 1140.5, true},
		{"11:45PM", 1425, true},
		{"18:05", 1085, true},
		{"", 0, false},
		{"noon", 0, false},
		{"25:00", 1500, false},
	}
	for _, tc := range cases {
		got, ok := generic.ParseAttendanceTimeChecked(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseAttendanceTimeChecked(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
		if plain := generic.ParseAttendanceTime(tc.in); plain != tc.want {
			t.Errorf("ParseAttendanceTime(%q) = %v, want %v", tc.in, plain, tc.want)
		}
	}
}

func TestClockFormatting(t *testing.T) {
	if got := generic.MinutesToTime(435.5); got != "07:15:30" {
		t.Errorf("MinutesToTime = %q", got)
	}
	if got := generic.MinutesToTime(-5); got != "00:00:00" {
		t.Errorf("negative MinutesToTime = %q", got)
	}
	if got := generic.FormatTime(0); got != "12:00 AM" {
		t.Errorf("FormatTime(0) = %q", got)
	}
	if got := generic.FormatTime(750); got != "12:30 PM" {
		t.Errorf("FormatTime(750) = %q", got)
	}
	if got := generic.FormatTime(1140); got != "7:00 PM" {
		t.Errorf("FormatTime(1140) = %q", got)
	}
	if got := generic.FormatDate(generic.NewTimePoint(2025, time.March, 4)); got != "04 March" {
		t.Errorf("FormatDate = %q", got)
	}
}
