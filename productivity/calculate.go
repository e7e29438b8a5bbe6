package productivity

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// ENTRY POINT
// =============================================================================

// CalculateWorkerProductivity reconciles one worker's punches over a period.
//
// It walks every day of the period once. Each day is classified as exactly one
// of Sunday, Holiday, Present or Absent (in that priority) and folded into a
// running tally. The result is pure: identical params give identical output,
// and malformed input degrades to zero values plus a Warning instead of an
// error.
//
// A single-day period with no punches in range returns EmptyResult, as does an
// inverted period (the latter with a warning). Callers that want to reject an
// inverted period should call Params.Validate first.
func CalculateWorkerProductivity(p Params) Result {
	if err := p.Validate(); err != nil {
		r := EmptyResult(p)
		r.Warnings = append(r.Warnings, Warning{Message: fmt.Sprintf("period %s is inverted, nothing reconciled", p.Period)})
		return r
	}

	attendance := filterPeriod(p.Attendance, p.Period)
	if len(attendance) == 0 && p.Period.IsSingleDay() {
		return EmptyResult(p)
	}

	schedule, warnings := ResolveSchedule(p.Options)
	days, ingestWarnings := groupByDay(attendance)
	warnings = append(warnings, ingestWarnings...)

	worker := resolveWorker(p, attendance)
	calendar := classifyPeriod(p.Period, days, p.Options.Holidays)
	counts := countClasses(calendar)

	standard := schedule.StandardWorkingMinutes()
	workingDaysInPeriod := counts.total - counts.sundays - counts.holidays
	perDay := worker.Salary.DivOrZero(decimal.NewFromInt(int64(workingDaysInPeriod)))
	r := rates{
		perDay:       perDay,
		perMinute:    perDay.DivOrZero(decimal.NewFromFloat(standard)),
		deductSalary: schedule.DeductSalary,
	}

	acc := newTally()
	for _, c := range calendar {
		acc = acc.add(reconcileDay(c, days.on(c.day), schedule, r))
	}

	advances := advancesIn(p.Advances, p.Period)
	advanceTotal := generic.ZeroMoney()
	for _, a := range advances {
		advanceTotal = advanceTotal.Add(a.Amount)
		acc.rows = append(acc.rows, advanceRow(a))
	}
	sortRows(acc.rows)

	summary := summarize(worker, counts, acc, r, standard, workingDaysInPeriod, advanceTotal)

	hours := round2(acc.workingMinutes / 60)
	return Result{
		TotalDays:            counts.total,
		WorkingDays:          counts.present,
		TotalWorkingHours:    hours,
		AverageWorkingHours:  round2(ratio(acc.workingMinutes/60, float64(counts.present))),
		TotalPermissionTime:  acc.permissionMinutes,
		TotalSalaryDeduction: summary.TotalDeduction,
		DailyBreakdown:       acc.records,
		Summary:              summary,
		Configuration:        configurationOf(schedule, p),
		FinalSummary:         finalSummaryOf(summary, p.Period),
		Report:               acc.rows,
		Warnings:             warnings,
	}
}

// EmptyResult is the zero-valued result of a run with nothing to reconcile. It
// has the same shape as a computed result: lists are empty, never nil.
func EmptyResult(p Params) Result {
	schedule, _ := ResolveSchedule(p.Options)
	summary := PeriodSummary{}
	setIdentity(&summary, resolveWorker(p, nil))
	return Result{
		TotalSalaryDeduction: generic.ZeroMoney(),
		DailyBreakdown:       []DailyRecord{},
		Summary:              summary,
		Configuration:        configurationOf(schedule, p),
		FinalSummary:         finalSummaryOf(summary, p.Period),
		Report:               []ReportRow{},
		Warnings:             []Warning{},
	}
}

// =============================================================================
// DAY CLASSIFICATION
// =============================================================================

type dayClass struct {
	day     generic.TimePoint
	status  DayStatus
	holiday *generic.Holiday
}

// classifyPeriod gives every day of the period exactly one status.
// A holiday wins over punches so a worker is never penalized for coming in.
func classifyPeriod(period generic.Period, days dayPunches, holidays generic.HolidayCalendar) []dayClass {
	var out []dayClass
	for _, day := range period.Days() {
		c := dayClass{day: day}
		switch {
		case day.IsSunday():
			c.status = DaySunday
		case holidays != nil && holidays.HolidayOn(day) != nil:
			c.status = DayHoliday
			c.holiday = holidays.HolidayOn(day)
		case len(days.on(day)) > 0:
			c.status = DayPresent
		default:
			c.status = DayAbsent
		}
		out = append(out, c)
	}
	return out
}

type classCounts struct {
	total, sundays, holidays, present, absent int
}

func countClasses(calendar []dayClass) classCounts {
	c := classCounts{total: len(calendar)}
	for _, d := range calendar {
		switch d.status {
		case DaySunday:
			c.sundays++
		case DayHoliday:
			c.holidays++
		case DayPresent:
			c.present++
		case DayAbsent:
			c.absent++
		}
	}
	return c
}

// =============================================================================
// FOLD
// =============================================================================

// dayOutcome is everything one day contributes to the period.
type dayOutcome struct {
	record     DailyRecord
	rows       []ReportRow
	violations int
}

// tally accumulates day outcomes. add returns the next tally; the loop in
// CalculateWorkerProductivity is a plain fold over the calendar.
type tally struct {
	records           []DailyRecord
	rows              []ReportRow
	workingMinutes    float64
	permissionMinutes float64
	violations        int
}

func newTally() tally {
	return tally{records: []DailyRecord{}, rows: []ReportRow{}}
}

func (t tally) add(o dayOutcome) tally {
	t.records = append(t.records, o.record)
	t.rows = append(t.rows, o.rows...)
	t.workingMinutes += o.record.WorkingMinutes
	t.permissionMinutes += o.record.PermissionMinutes
	t.violations += o.violations
	return t
}

// reconcileDay turns one classified day into its record and report rows.
func reconcileDay(c dayClass, punches []DayPunch, s Schedule, r rates) dayOutcome {
	record := DailyRecord{
		Date:              c.day,
		DisplayDate:       generic.FormatDate(c.day),
		Status:            c.status,
		PunchTime:         describePunches(punches),
		WorkingTime:       generic.MinutesToTime(0),
		SalaryDeduction:   generic.ZeroMoney(),
		Issues:            []string{},
		DetailedBreakdown: emptyBreakdown(),
	}

	switch c.status {
	case DaySunday:
		record.Issues = append(record.Issues, "Sunday")
		return dayOutcome{record: record, rows: []ReportRow{sundayRow(c.day)}}
	case DayHoliday:
		record.Issues = append(record.Issues, "Holiday: "+c.holiday.Name)
		return dayOutcome{record: record, rows: []ReportRow{holidayRow(c.day, c.holiday)}}
	case DayAbsent:
		record.Issues = append(record.Issues, "Absent")
		return dayOutcome{record: record, rows: []ReportRow{absentRow(c.day, r)}}
	}

	wt := CalculateWorkingTime(punches, s)
	perm := CalculatePermissionTime(punches, s)
	gaps := DetectGapDelays(punches, s)

	record.WorkingMinutes = wt.TotalWorkingMinutes
	record.WorkingTime = generic.MinutesToTime(wt.TotalWorkingMinutes)
	record.PermissionMinutes = perm.TotalPermissionMinutes
	record.SalaryDeduction = r.charge(perm.TotalPermissionMinutes)
	record.Issues = dayIssues(punches, perm, gaps)
	record.DetailedBreakdown = Breakdown{
		Intervals:  wt.Intervals,
		Deductions: wt.Deductions,
		Permission: perm.Details,
		Delays:     gaps,
	}

	violations := 0
	for _, d := range perm.Details {
		if d.IsViolation() {
			violations++
		}
	}
	return dayOutcome{
		record:     record,
		rows:       punchedDayRows(c.day, punches, perm, gaps, r),
		violations: violations,
	}
}

func dayIssues(punches []DayPunch, perm PermissionTime, gaps []GapDelay) []string {
	issues := []string{}
	for _, d := range perm.Details {
		issues = append(issues, fmt.Sprintf("%s: %s", d.Type, delayTime(d.TotalMinutes)))
	}
	for _, g := range gaps {
		issues = append(issues, fmt.Sprintf("%s: %s", g.Type, delayTime(g.DelayMinutes)))
	}
	if punches[0].Direction == DirectionOut {
		issues = append(issues, "Missing IN punch")
	}
	if punches[len(punches)-1].Direction == DirectionIn {
		issues = append(issues, "Missing OUT punch")
	}
	return issues
}

func emptyBreakdown() Breakdown {
	return Breakdown{
		Intervals:  []WorkInterval{},
		Deductions: []Deduction{},
		Permission: []PermissionDetail{},
		Delays:     []GapDelay{},
	}
}

// =============================================================================
// AGGREGATES
// =============================================================================

func summarize(w Worker, c classCounts, t tally, r rates, standard float64, workingDaysInPeriod int, advances generic.Money) PeriodSummary {
	absentDeduction := r.perDay.MulFloat(float64(c.absent))
	permissionDeduction := r.charge(t.permissionMinutes)
	total := generic.SumMoney(absentDeduction, permissionDeduction, advances)

	s := PeriodSummary{
		TotalDays:                c.total,
		TotalWorkingDaysInPeriod: workingDaysInPeriod,
		ActualWorkingDays:        c.present,
		TotalSundays:             c.sundays,
		TotalHolidays:            c.holidays,
		TotalAbsentDays:          c.absent,
		TotalWorkingMinutes:      t.workingMinutes,
		TotalPermissionMinutes:   t.permissionMinutes,
		StandardWorkingMinutes:   standard,
		PunctualityViolations:    t.violations,
		ProductivityPercentage:   round2(100 * ratio(t.workingMinutes, float64(workingDaysInPeriod)*standard)),
		PunctualityScore:         round2(math.Max(0, 100*ratio(float64(c.present-t.violations), float64(c.present)))),
		AttendanceRate:           round2(100 * ratio(float64(c.present), float64(workingDaysInPeriod))),

		OriginalSalary:      w.Salary,
		PerDaySalary:        r.perDay,
		PerMinuteSalary:     r.perMinute,
		AbsentDeduction:     absentDeduction,
		PermissionDeduction: permissionDeduction,
		AdvanceDeduction:    advances,
		TotalDeduction:      total,
		FinalSalary:         w.Salary.Sub(total).FloorAtZero(),
	}
	setIdentity(&s, w)
	return s
}

func setIdentity(s *PeriodSummary, w Worker) {
	s.EmployeeName = w.Name
	s.EmployeeRFID = w.RFID
	s.Department = w.Department
	s.Email = w.Email
}

func finalSummaryOf(s PeriodSummary, period generic.Period) FinalSummary {
	return FinalSummary{
		EmployeeName:        s.EmployeeName,
		EmployeeRFID:        s.EmployeeRFID,
		Department:          s.Department,
		Email:               s.Email,
		Period:              fmt.Sprintf("%s to %s", period.Start, period.End),
		TotalDays:           s.TotalDays,
		WorkingDays:         s.TotalWorkingDaysInPeriod,
		PresentDays:         s.ActualWorkingDays,
		AbsentDays:          s.TotalAbsentDays,
		Sundays:             s.TotalSundays,
		Holidays:            s.TotalHolidays,
		TotalWorkingTime:    generic.MinutesToTime(s.TotalWorkingMinutes),
		TotalPermissionTime: generic.MinutesToTime(s.TotalPermissionMinutes),
		OriginalSalary:      s.OriginalSalary.Format(),
		PerDaySalary:        s.PerDaySalary.Format(),
		AbsentDeduction:     s.AbsentDeduction.Format(),
		PermissionDeduction: s.PermissionDeduction.Format(),
		AdvanceDeduction:    s.AdvanceDeduction.Format(),
		TotalDeduction:      s.TotalDeduction.Format(),
		FinalSalary:         s.FinalSalary.Format(),
	}
}

func configurationOf(s Schedule, p Params) Configuration {
	c := Configuration{
		BatchName:               s.BatchName,
		WorkStart:               hhmm(s.Work.Start),
		WorkEnd:                 hhmm(s.Work.End),
		LunchFrom:               hhmm(s.Lunch.Start),
		LunchTo:                 hhmm(s.Lunch.End),
		LunchConsidered:         s.LunchConsidered,
		Breaks:                  []ConfiguredBreak{},
		ConsiderOvertime:        s.ConsiderOvertime,
		DeductSalary:            s.DeductSalary,
		PermissionTimeMinutes:   s.PermissionMinutes,
		SalaryDeductionPerBreak: p.Options.SalaryDeductionPerBreak,
		StandardWorkingMinutes:  s.StandardWorkingMinutes(),
		FromDate:                p.Period.Start.String(),
		ToDate:                  p.Period.End.String(),
	}
	for _, b := range s.Breaks {
		c.Breaks = append(c.Breaks, ConfiguredBreak{
			Name:       b.Label,
			From:       hhmm(b.Window.Start),
			To:         hhmm(b.Window.End),
			Considered: b.Considered,
		})
	}
	return c
}

// =============================================================================
// HELPERS
// =============================================================================

// resolveWorker prefers the explicit identity, then the first punch.
func resolveWorker(p Params, attendance []Punch) Worker {
	switch {
	case p.Worker != nil:
		return *p.Worker
	case len(attendance) > 0:
		return attendance[0].Worker
	case len(p.Attendance) > 0:
		return p.Attendance[0].Worker
	}
	return Worker{Salary: generic.ZeroMoney()}
}

func advancesIn(advances []Advance, period generic.Period) []Advance {
	var out []Advance
	for _, a := range advances {
		if period.Contains(a.Date) {
			out = append(out, a)
		}
	}
	return out
}

// ratio divides, returning 0 for a zero denominator.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func hhmm(minutes float64) string { return generic.MinutesToTime(minutes)[:5] }
