package productivity

import (
	"fmt"
	"sort"

	"github.com/warp/attendance-engine/generic"
)

// DayPunch is a punch after ingestion: parsed to minutes, direction resolved.
type DayPunch struct {
	Minutes   float64
	Direction Direction
	Label     string // original time string, for display
}

// Display renders the punch time as "H:MM AM/PM".
func (p DayPunch) Display() string { return generic.FormatTime(p.Minutes) }

// dayPunches groups a worker's punches by ISO date.
type dayPunches map[string][]DayPunch

func (d dayPunches) on(day generic.TimePoint) []DayPunch { return d[day.String()] }

// groupByDay parses and sorts punches per day and resolves every unknown
// direction once, before any business rule looks at them: an unlabeled punch
// is assumed IN at an even position of its day and OUT at an odd one.
func groupByDay(punches []Punch) (dayPunches, []Warning) {
	var warnings []Warning
	days := make(dayPunches)

	for _, p := range punches {
		minutes, ok := generic.ParseAttendanceTimeChecked(p.Time)
		if !ok {
			warnings = append(warnings, Warning{
				Date:    p.Date.String(),
				Message: fmt.Sprintf("unreadable punch time %q, read as %s", p.Time, generic.MinutesToTime(minutes)),
			})
		}
		days[p.Date.String()] = append(days[p.Date.String()], DayPunch{Minutes: minutes, Direction: p.Direction, Label: p.Time})
	}

	for day, list := range days {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Minutes < list[j].Minutes })
		inferred := false
		for i := range list {
			if list[i].Direction != DirectionUnknown {
				continue
			}
			inferred = true
			if i%2 == 0 {
				list[i].Direction = DirectionIn
			} else {
				list[i].Direction = DirectionOut
			}
		}
		if inferred {
			warnings = append(warnings, Warning{Date: day, Message: "punch direction missing, assumed alternating IN/OUT"})
		}
		days[day] = list
	}

	// Map iteration order is random; keep warnings deterministic.
	sort.SliceStable(warnings, func(i, j int) bool { return warnings[i].Date < warnings[j].Date })
	return days, warnings
}

// filterPeriod keeps the punches dated inside p.
func filterPeriod(punches []Punch, p generic.Period) []Punch {
	var out []Punch
	for _, pu := range punches {
		if p.Contains(pu.Date) {
			out = append(out, pu)
		}
	}
	return out
}

// describePunches renders "9:00 AM (IN), 7:00 PM (OUT)".
func describePunches(list []DayPunch) string {
	if len(list) == 0 {
		return "-"
	}
	s := ""
	for i, p := range list {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s (%s)", p.Display(), p.Direction)
	}
	return s
}
