package productivity

import (
	"fmt"
	"math"

	"github.com/warp/attendance-engine/generic"
)

// Defaults used when no batch is configured at all.
const (
	DefaultWorkStart = "09:00"
	DefaultWorkEnd   = "19:00"
	DefaultLunchFrom = "13:00"
	DefaultLunchTo   = "14:00"
)

// Window is a [Start, End) span in minutes since midnight.
type Window struct {
	Start float64
	End   float64
}

func (w Window) Duration() float64 { return math.Max(0, w.End-w.Start) }

// Overlap returns how many minutes of [start, end) fall inside w.
func (w Window) Overlap(start, end float64) float64 {
	return math.Max(0, math.Min(end, w.End)-math.Max(start, w.Start))
}

// BreakWindow is a configured break interval in minutes.
type BreakWindow struct {
	Name       string // "Break N", used in deduction trails
	Label      string // configured interval name
	Window     Window
	Considered bool
}

// Schedule is the resolved, minute-based form of Options for one batch.
type Schedule struct {
	BatchName         string
	Work              Window
	Lunch             Window
	LunchConsidered   bool
	Breaks            []BreakWindow
	ConsiderOvertime  bool
	DeductSalary      bool
	PermissionMinutes float64
}

// ResolveSchedule picks the batch named by FilteredBatch, falling back to the
// first batch and then to the package defaults.
func ResolveSchedule(opts Options) (Schedule, []Warning) {
	var warnings []Warning

	batch, found := findBatch(opts.Batches, opts.FilteredBatch)
	switch {
	case found:
	case len(opts.Batches) > 0:
		batch = opts.Batches[0]
		if opts.FilteredBatch != "" {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("batch %q not found, using %q", opts.FilteredBatch, batch.Name)})
		}
	default:
		batch = Batch{Name: "Default", From: DefaultWorkStart, To: DefaultWorkEnd, LunchFrom: DefaultLunchFrom, LunchTo: DefaultLunchTo}
		warnings = append(warnings, Warning{Message: "no batches configured, using default 09:00-19:00 schedule"})
	}

	s := Schedule{
		BatchName:         batch.Name,
		Work:              Window{Start: generic.TimeToMinutes(batch.From), End: generic.TimeToMinutes(batch.To)},
		Lunch:             Window{Start: generic.TimeToMinutes(batch.LunchFrom), End: generic.TimeToMinutes(batch.LunchTo)},
		LunchConsidered:   batch.LunchConsidered,
		ConsiderOvertime:  opts.ConsiderOvertime,
		DeductSalary:      opts.DeductSalary,
		PermissionMinutes: math.Max(0, opts.PermissionTimeMinutes),
	}
	for i, iv := range opts.Intervals {
		s.Breaks = append(s.Breaks, BreakWindow{
			Name:       breakName(i),
			Label:      iv.Name,
			Window:     Window{Start: generic.TimeToMinutes(iv.From), End: generic.TimeToMinutes(iv.To)},
			Considered: iv.BreakConsidered,
		})
	}
	return s, warnings
}

func findBatch(batches []Batch, name string) (Batch, bool) {
	if name == "" {
		return Batch{}, false
	}
	for _, b := range batches {
		if b.Name == name {
			return b, true
		}
	}
	return Batch{}, false
}

func breakName(i int) string { return fmt.Sprintf("Break %d", i+1) }

// StandardWorkingMinutes is the paid length of a full day: the shift minus lunch
// and breaks that are not paid.
func (s Schedule) StandardWorkingMinutes() float64 {
	minutes := s.Work.Duration()
	if !s.LunchConsidered {
		minutes -= s.Lunch.Duration()
	}
	for _, b := range s.Breaks {
		if !b.Considered {
			minutes -= b.Window.Duration()
		}
	}
	return math.Max(0, minutes)
}

// expectedAllowance is how long an OUT→IN gap may last without counting as a
// delay: its overlap with the lunch window and every break window.
func (s Schedule) expectedAllowance(out, in float64) (minutes float64, coversLunch bool) {
	lunch := s.Lunch.Overlap(out, in)
	minutes = lunch
	for _, b := range s.Breaks {
		minutes += b.Window.Overlap(out, in)
	}
	return minutes, lunch > 0
}

// splitPermission divides an event into the part covered by the allowance and
// the excess beyond it.
func (s Schedule) splitPermission(minutes float64) (used, excess float64) {
	used = math.Min(minutes, s.PermissionMinutes)
	return used, minutes - used
}
