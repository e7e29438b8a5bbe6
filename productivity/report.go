package productivity

import (
	"fmt"
	"math"
	"sort"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// REPORT ROWS
// =============================================================================

const noTime = "-"

// rates are the period-wide salary figures every row is priced with.
type rates struct {
	perDay       generic.Money
	perMinute    generic.Money
	deductSalary bool
}

// charge prices a number of delay minutes. Zero when salary deduction is off.
func (r rates) charge(minutes float64) generic.Money {
	if !r.deductSalary || minutes <= 0 {
		return generic.ZeroMoney()
	}
	return r.perMinute.MulFloat(minutes)
}

func newRow(day generic.TimePoint, status RowStatus, delayType string, amount generic.Money) ReportRow {
	return ReportRow{
		Date:            day,
		DisplayDate:     generic.FormatDate(day),
		OutTime:         noTime,
		InTime:          noTime,
		DelayTime:       noTime,
		DelayType:       delayType,
		DeductionAmount: amount.Format(),
		Deduction:       amount,
		Status:          status,
	}
}

func delayTime(minutes float64) string { return fmt.Sprintf("%d mins", int(math.Round(minutes))) }

func permissionRemark(used, excess float64) string {
	if excess > 0 {
		return fmt.Sprintf("Exceeded permission by %s", delayTime(excess))
	}
	return fmt.Sprintf("Within permission (%s used)", delayTime(used))
}

// punchedDayRows emits one row per delay event of a worked day, or a single
// "No Delays" row when there is none.
func punchedDayRows(day generic.TimePoint, punches []DayPunch, perm PermissionTime, gaps []GapDelay, r rates) []ReportRow {
	var rows []ReportRow

	for _, d := range perm.Details {
		row := newRow(day, RowDelay, d.Type, r.charge(d.TotalMinutes))
		row.DelayTime = delayTime(d.TotalMinutes)
		row.Remarks = permissionRemark(d.PermissionUsed, d.ExcessMinutes)
		switch d.Type {
		case DelayLateArrival:
			row.InTime = punches[0].Display()
		case DelayEarlyDeparture:
			row.OutTime = punches[len(punches)-1].Display()
		}
		rows = append(rows, row)
	}

	for _, g := range gaps {
		row := newRow(day, RowDelay, g.Type, r.charge(g.DelayMinutes))
		row.OutTime = g.Out
		row.InTime = g.In
		row.DelayTime = delayTime(g.DelayMinutes)
		row.Remarks = permissionRemark(g.PermissionUsed, g.ExcessMinutes)
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		row := newRow(day, RowPresent, DelayNone, generic.ZeroMoney())
		row.InTime = punches[0].Display()
		if len(punches) > 1 {
			row.OutTime = punches[len(punches)-1].Display()
		}
		row.DelayTime = delayTime(0)
		rows = append(rows, row)
	}
	return rows
}

func sundayRow(day generic.TimePoint) ReportRow {
	row := newRow(day, RowSunday, string(DaySunday), generic.ZeroMoney())
	row.Remarks = "Weekly off"
	return row
}

func holidayRow(day generic.TimePoint, h *generic.Holiday) ReportRow {
	row := newRow(day, RowHoliday, string(DayHoliday), generic.ZeroMoney())
	row.Remarks = h.Name
	return row
}

func absentRow(day generic.TimePoint, r rates) ReportRow {
	row := newRow(day, RowAbsent, string(DayAbsent), r.perDay)
	row.Remarks = "No punches recorded"
	return row
}

func advanceRow(a Advance) ReportRow {
	row := newRow(a.Date, RowDeduction, DelayAdvance, a.Amount)
	row.Remarks = a.Description
	return row
}

// sortRows orders rows by date. Rows of the same day keep their event order.
func sortRows(rows []ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
}
