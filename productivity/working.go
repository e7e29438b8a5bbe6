package productivity

import "math"

// =============================================================================
// WORKING TIME - IN→OUT pairs of one day
// =============================================================================

// CalculateWorkingTime sums the paid minutes of one day's sorted punches.
//
// Every IN followed directly by an OUT is a work interval. Unless overtime is
// considered the interval is clipped to the shift, and the day total is capped
// at the standard working minutes. Unpaid lunch and breaks are subtracted from
// each interval they overlap and recorded as named deductions.
//
// OUT→IN gaps are never working time; DetectGapDelays reports them.
func CalculateWorkingTime(punches []DayPunch, s Schedule) WorkingTime {
	wt := WorkingTime{Intervals: []WorkInterval{}, Deductions: []Deduction{}}

	for i := 0; i+1 < len(punches); i++ {
		in, out := punches[i], punches[i+1]
		if in.Direction != DirectionIn || out.Direction != DirectionOut {
			continue
		}

		start, end := in.Minutes, out.Minutes
		if !s.ConsiderOvertime {
			start = math.Max(start, s.Work.Start)
			end = math.Min(end, s.Work.End)
		}
		if end <= start {
			continue
		}

		iv := WorkInterval{
			In:             in.Display(),
			Out:            out.Display(),
			RawMinutes:     out.Minutes - in.Minutes,
			ClippedMinutes: end - start,
			Deductions:     []Deduction{},
		}
		for _, d := range s.unpaidOverlaps(start, end) {
			iv.Deductions = append(iv.Deductions, d)
			wt.Deductions = append(wt.Deductions, d)
		}
		iv.FinalMinutes = math.Max(0, iv.ClippedMinutes-sumDeductions(iv.Deductions))

		wt.Intervals = append(wt.Intervals, iv)
		wt.TotalWorkingMinutes += iv.FinalMinutes
	}

	if !s.ConsiderOvertime {
		if standard := s.StandardWorkingMinutes(); wt.TotalWorkingMinutes > standard {
			wt.Deductions = append(wt.Deductions, Deduction{
				Name:    DeductionOvertimeExclusion,
				Minutes: wt.TotalWorkingMinutes - standard,
			})
			wt.TotalWorkingMinutes = standard
		}
	}
	return wt
}

// unpaidOverlaps lists the unpaid lunch and break minutes inside [start, end).
func (s Schedule) unpaidOverlaps(start, end float64) []Deduction {
	var out []Deduction
	if !s.LunchConsidered {
		if m := s.Lunch.Overlap(start, end); m > 0 {
			out = append(out, Deduction{Name: DeductionLunch, Minutes: m})
		}
	}
	for _, b := range s.Breaks {
		if b.Considered {
			continue
		}
		if m := b.Window.Overlap(start, end); m > 0 {
			out = append(out, Deduction{Name: b.Name, Minutes: m})
		}
	}
	return out
}

func sumDeductions(ds []Deduction) float64 {
	total := 0.0
	for _, d := range ds {
		total += d.Minutes
	}
	return total
}
