package productivity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/productivity"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func at(hour, minute int, dir productivity.Direction) productivity.DayPunch {
	return productivity.DayPunch{Minutes: float64(hour*60 + minute), Direction: dir}
}

// schedule: 09:00-19:00, unpaid lunch 13:00-14:00, unpaid tea break 16:00-16:15,
// paid prayer break 11:00-11:10.
func schedule(t *testing.T, overtime bool, permission float64) productivity.Schedule {
	t.Helper()
	s, warnings := productivity.ResolveSchedule(productivity.Options{
		ConsiderOvertime:      overtime,
		DeductSalary:          true,
		PermissionTimeMinutes: permission,
		Batches: []productivity.Batch{
			{Name: "Day", From: "09:00", To: "19:00", LunchFrom: "13:00", LunchTo: "14:00"},
		},
		Intervals: []productivity.Interval{
			{Name: "Prayer", From: "11:00", To: "11:10", BreakConsidered: true},
			{Name: "Tea", From: "16:00", To: "16:15"},
		},
		FilteredBatch: "Day",
	})
	require.Empty(t, warnings)
	return s
}

const (
	dirIn  = productivity.DirectionIn
	dirOut = productivity.DirectionOut
)

// =============================================================================
// SCHEDULE
// =============================================================================

func TestStandardWorkingMinutes_SubtractsUnpaidWindowsOnly(t *testing.T) {
	s := schedule(t, false, 0)

	// 600 shift - 60 lunch - 15 tea; the paid prayer break stays
	assert.Equal(t, 525.0, s.StandardWorkingMinutes())
	require.Len(t, s.Breaks, 2)
	assert.Equal(t, "Break 1", s.Breaks[0].Name)
	assert.Equal(t, "Prayer", s.Breaks[0].Label)
}

func TestResolveSchedule_Fallbacks(t *testing.T) {
	batches := []productivity.Batch{
		{Name: "Morning", From: "06:00", To: "14:00"},
		{Name: "Evening", From: "14:00", To: "22:00"},
	}

	s, warnings := productivity.ResolveSchedule(productivity.Options{Batches: batches, FilteredBatch: "Evening"})
	assert.Equal(t, "Evening", s.BatchName)
	assert.Empty(t, warnings)

	s, warnings = productivity.ResolveSchedule(productivity.Options{Batches: batches, FilteredBatch: "Night"})
	assert.Equal(t, "Morning", s.BatchName)
	assert.Len(t, warnings, 1)

	s, warnings = productivity.ResolveSchedule(productivity.Options{})
	assert.Equal(t, 540.0, s.Work.Start)
	assert.Equal(t, 1140.0, s.Work.End)
	assert.Equal(t, 540.0, s.StandardWorkingMinutes())
	assert.Len(t, warnings, 1)
}

func TestParseDirection_Aliases(t *testing.T) {
	assert.Equal(t, dirIn, productivity.ParseDirection("", "in"))
	assert.Equal(t, dirOut, productivity.ParseDirection(" Check-Out "))
	assert.Equal(t, dirIn, productivity.ParseDirection("IN", "OUT"), "first non-empty label wins")
	assert.Equal(t, productivity.DirectionUnknown, productivity.ParseDirection("present"))
	assert.Equal(t, productivity.DirectionUnknown, productivity.ParseDirection())
}

// =============================================================================
// WORKING TIME
// =============================================================================

func TestWorkingTime_DeductsLunchAndUnpaidBreaks(t *testing.T) {
	s := schedule(t, false, 0)

	wt := productivity.CalculateWorkingTime([]productivity.DayPunch{at(9, 0, dirIn), at(19, 0, dirOut)}, s)

	assert.Equal(t, 525.0, wt.TotalWorkingMinutes)
	require.Len(t, wt.Intervals, 1)
	iv := wt.Intervals[0]
	assert.Equal(t, 600.0, iv.RawMinutes)
	assert.Equal(t, 600.0, iv.ClippedMinutes)
	assert.Equal(t, []productivity.Deduction{
		{Name: productivity.DeductionLunch, Minutes: 60},
		{Name: "Break 2", Minutes: 15},
	}, iv.Deductions)
}

func TestWorkingTime_ClipsToShiftWithoutOvertime(t *testing.T) {
	s := schedule(t, false, 0)

	wt := productivity.CalculateWorkingTime([]productivity.DayPunch{at(7, 0, dirIn), at(21, 0, dirOut)}, s)

	assert.Equal(t, 525.0, wt.TotalWorkingMinutes)
	assert.Equal(t, 840.0, wt.Intervals[0].RawMinutes)
	assert.Equal(t, 600.0, wt.Intervals[0].ClippedMinutes)
}

func TestWorkingTime_OvertimeCountsOutsideTheShift(t *testing.T) {
	s := schedule(t, true, 0)

	wt := productivity.CalculateWorkingTime([]productivity.DayPunch{at(7, 0, dirIn), at(21, 0, dirOut)}, s)

	assert.Equal(t, 840.0-75.0, wt.TotalWorkingMinutes)
	for _, d := range wt.Deductions {
		assert.NotEqual(t, productivity.DeductionOvertimeExclusion, d.Name)
	}
}

func TestWorkingTime_OverlappingPairsCappedAtStandard(t *testing.T) {
	// GIVEN: a scanner that double-recorded the morning
	s := schedule(t, false, 0)
	punches := []productivity.DayPunch{
		at(9, 0, dirIn), at(19, 0, dirOut),
		at(9, 0, dirIn), at(12, 0, dirOut),
	}

	wt := productivity.CalculateWorkingTime(punches, s)

	assert.Equal(t, 525.0, wt.TotalWorkingMinutes)
	last := wt.Deductions[len(wt.Deductions)-1]
	assert.Equal(t, productivity.DeductionOvertimeExclusion, last.Name)
	assert.Equal(t, 180.0, last.Minutes)
}

func TestWorkingTime_UnmatchedPunchesAreTolerated(t *testing.T) {
	s := schedule(t, false, 0)

	lone := productivity.CalculateWorkingTime([]productivity.DayPunch{at(9, 0, dirIn)}, s)
	assert.Equal(t, 0.0, lone.TotalWorkingMinutes)
	assert.NotNil(t, lone.Intervals)

	// OUT first, then a normal pair
	wt := productivity.CalculateWorkingTime([]productivity.DayPunch{at(8, 0, dirOut), at(9, 0, dirIn), at(12, 0, dirOut)}, s)
	assert.Equal(t, 180.0, wt.TotalWorkingMinutes)
}

func TestWorkingTime_IntervalOutsideShiftSkipped(t *testing.T) {
	s := schedule(t, false, 0)

	wt := productivity.CalculateWorkingTime([]productivity.DayPunch{at(20, 0, dirIn), at(22, 0, dirOut)}, s)

	assert.Empty(t, wt.Intervals)
	assert.Equal(t, 0.0, wt.TotalWorkingMinutes)
}

// =============================================================================
// PERMISSION TIME
// =============================================================================

func TestPermissionTime_LateAndEarly(t *testing.T) {
	s := schedule(t, false, 15)

	pt := productivity.CalculatePermissionTime([]productivity.DayPunch{at(9, 20, dirIn), at(18, 50, dirOut)}, s)

	require.Len(t, pt.Details, 2)
	assert.Equal(t, productivity.DelayLateArrival, pt.Details[0].Type)
	assert.Equal(t, 15.0, pt.Details[0].PermissionUsed)
	assert.Equal(t, 5.0, pt.Details[0].ExcessMinutes)
	assert.True(t, pt.Details[0].IsViolation())

	assert.Equal(t, productivity.DelayEarlyDeparture, pt.Details[1].Type)
	assert.Equal(t, 10.0, pt.Details[1].PermissionUsed)
	assert.False(t, pt.Details[1].IsViolation())

	assert.Equal(t, 30.0, pt.TotalPermissionMinutes)
}

func TestPermissionTime_SinglePunchHasNoEarlyDeparture(t *testing.T) {
	s := schedule(t, false, 15)

	pt := productivity.CalculatePermissionTime([]productivity.DayPunch{at(9, 0, dirIn)}, s)

	assert.Empty(t, pt.Details)
	assert.Equal(t, 0.0, pt.TotalPermissionMinutes)
}

// =============================================================================
// GAP DELAYS
// =============================================================================

func TestGapDelays_LunchAndBreak(t *testing.T) {
	s := schedule(t, false, 15)
	punches := []productivity.DayPunch{
		at(9, 0, dirIn),
		at(13, 0, dirOut), at(14, 20, dirIn), // 80 min gap, 60 expected
		at(16, 0, dirOut), at(16, 30, dirIn), // 30 min gap, 15 expected
		at(19, 0, dirOut),
	}

	delays := productivity.DetectGapDelays(punches, s)

	require.Len(t, delays, 2)
	assert.Equal(t, productivity.DelayLunch, delays[0].Type)
	assert.Equal(t, 20.0, delays[0].DelayMinutes)
	assert.Equal(t, 15.0, delays[0].PermissionUsed)
	assert.Equal(t, 5.0, delays[0].ExcessMinutes)

	assert.Equal(t, productivity.DelayBreak, delays[1].Type)
	assert.Equal(t, 15.0, delays[1].DelayMinutes)
	assert.Equal(t, 0.0, delays[1].ExcessMinutes)
}

func TestGapDelays_WithinWindowIsNotADelay(t *testing.T) {
	s := schedule(t, false, 0)

	delays := productivity.DetectGapDelays([]productivity.DayPunch{
		at(9, 0, dirIn), at(13, 5, dirOut), at(13, 55, dirIn), at(19, 0, dirOut),
	}, s)

	assert.Empty(t, delays)
	assert.NotNil(t, delays)
}
