package productivity

import (
	"fmt"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// PERMISSION TIME - Late arrival and early departure
// =============================================================================

// CalculatePermissionTime measures lateness and early departure for one day.
//
// Late arrival is the first punch past the shift start. Early departure is the
// last punch before the shift end, and only exists when the day has more than
// one punch. Each event is split into the part covered by the permission
// allowance and the excess; the whole event counts toward
// TotalPermissionMinutes and is charged at the per-minute rate.
func CalculatePermissionTime(punches []DayPunch, s Schedule) PermissionTime {
	pt := PermissionTime{Details: []PermissionDetail{}}
	if len(punches) == 0 {
		return pt
	}

	if late := punches[0].Minutes - s.Work.Start; late > 0 {
		pt.Details = append(pt.Details, s.permissionDetail(DelayLateArrival, late,
			fmt.Sprintf("Arrived at %s, shift starts %s", punches[0].Display(), displayClock(s.Work.Start))))
	}

	if len(punches) > 1 {
		last := punches[len(punches)-1]
		if early := s.Work.End - last.Minutes; early > 0 {
			pt.Details = append(pt.Details, s.permissionDetail(DelayEarlyDeparture, early,
				fmt.Sprintf("Left at %s, shift ends %s", last.Display(), displayClock(s.Work.End))))
		}
	}

	for _, d := range pt.Details {
		pt.TotalPermissionMinutes += d.TotalMinutes
	}
	return pt
}

func (s Schedule) permissionDetail(kind string, minutes float64, description string) PermissionDetail {
	used, excess := s.splitPermission(minutes)
	return PermissionDetail{
		Type:           kind,
		TotalMinutes:   minutes,
		PermissionUsed: used,
		ExcessMinutes:  excess,
		Description:    description,
	}
}

// =============================================================================
// GAP DELAYS - OUT→IN gaps longer than the windows they cover
// =============================================================================

// DetectGapDelays reports every OUT followed directly by an IN whose gap runs
// past the lunch and break windows it overlaps. A gap touching lunch is a
// Lunch Delay, anything else a Break Delay.
func DetectGapDelays(punches []DayPunch, s Schedule) []GapDelay {
	delays := []GapDelay{}
	for i := 0; i+1 < len(punches); i++ {
		out, in := punches[i], punches[i+1]
		if out.Direction != DirectionOut || in.Direction != DirectionIn {
			continue
		}

		gap := in.Minutes - out.Minutes
		expected, coversLunch := s.expectedAllowance(out.Minutes, in.Minutes)
		delay := gap - expected
		if delay <= 0 {
			continue
		}

		kind := DelayBreak
		if coversLunch {
			kind = DelayLunch
		}
		used, excess := s.splitPermission(delay)
		delays = append(delays, GapDelay{
			Type:            kind,
			Out:             out.Display(),
			In:              in.Display(),
			GapMinutes:      gap,
			ExpectedMinutes: expected,
			DelayMinutes:    delay,
			PermissionUsed:  used,
			ExcessMinutes:   excess,
		})
	}
	return delays
}

func displayClock(minutes float64) string { return generic.FormatTime(minutes) }
