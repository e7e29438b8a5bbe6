/*
clock.go - Time-of-day normalization

PURPOSE:
  Three time representations meet in attendance reconciliation:
    "HH:MM" / "HH:MM:SS"     24-hour schedule config (batches, intervals)
    "H:MM[:SS] AM/PM"        raw punch strings from scanners
    minutes since midnight   the internal unit (float64, keeps seconds)

CONTRACT:
  Every function here is pure and never fails. Missing components count as 0;
  garbage degrades to a best-effort number. ParseAttendanceTimeChecked exists for
  callers that want to surface data-quality warnings.
*/
package generic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TimeToMinutes parses a 24-hour "HH:MM[:SS]" string.
func TimeToMinutes(s string) float64 {
	parts := strings.Split(strings.TrimSpace(s), ":")
	h := atoiOrZero(parts, 0)
	m := atoiOrZero(parts, 1)
	sec := atoiOrZero(parts, 2)
	return float64(h*60+m) + float64(sec)/60
}

// ParseAttendanceTime parses "H:MM[:SS] AM/PM". 12 AM is midnight, 12 PM is noon.
// Without a marker the value is read as 24-hour time.
func ParseAttendanceTime(s string) float64 {
	minutes, _ := ParseAttendanceTimeChecked(s)
	return minutes
}

// ParseAttendanceTimeChecked is ParseAttendanceTime plus a flag that is false when
// any component could not be read.
func ParseAttendanceTimeChecked(s string) (float64, bool) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return 0, false
	}

	modifier := ""
	switch {
	case strings.HasSuffix(raw, "AM"):
		modifier = "AM"
	case strings.HasSuffix(raw, "PM"):
		modifier = "PM"
	}
	clock := strings.TrimSpace(strings.TrimSuffix(raw, modifier))

	parts := strings.Split(clock, ":")
	ok := len(parts) >= 2 && len(parts) <= 3
	values := make([]int, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			ok = false
			continue
		}
		values[i] = v
	}

	h, m, sec := values[0], values[1], values[2]
	switch {
	case modifier == "PM" && h < 12:
		h += 12
	case modifier == "AM" && h == 12:
		h = 0
	}
	if h > 23 || m > 59 || sec > 59 || h < 0 || m < 0 || sec < 0 {
		ok = false
	}
	return float64(h*60+m) + float64(sec)/60, ok
}

// MinutesToTime formats minutes since midnight as "HH:MM:SS".
func MinutesToTime(minutes float64) string {
	if minutes < 0 || math.IsNaN(minutes) {
		minutes = 0
	}
	total := int(math.Round(minutes * 60))
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatTime formats minutes since midnight as "H:MM AM/PM".
func FormatTime(minutes float64) string {
	if minutes < 0 || math.IsNaN(minutes) {
		minutes = 0
	}
	whole := int(math.Floor(minutes + 1e-9))
	h := (whole / 60) % 24
	m := whole % 60

	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, period)
}

// FormatDate renders a day as "DD Month", e.g. "04 March". Display only.
func FormatDate(tp TimePoint) string {
	if tp.IsZero() {
		return ""
	}
	return tp.Time.Format("02 January")
}

func atoiOrZero(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return v
}
