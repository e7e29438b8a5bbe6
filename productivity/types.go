// Package productivity reconciles attendance punches against a work schedule and
// turns them into working time, deductions and a final salary for a pay period.
// It uses the generic package for money, calendar and time-of-day handling.
package productivity

import (
	"strings"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// INPUT
// =============================================================================

// Direction is the canonical IN/OUT tag of a punch.
type Direction string

const (
	DirectionUnknown Direction = ""
	DirectionIn      Direction = "IN"
	DirectionOut     Direction = "OUT"
)

// ParseDirection maps the first non-empty label to a Direction. Scanners and
// imports disagree on field names (status, presence, type, ...), so callers pass
// every alias they have and this picks one.
func ParseDirection(labels ...string) Direction {
	for _, l := range labels {
		switch strings.ToUpper(strings.TrimSpace(l)) {
		case "":
			continue
		case "IN", "CHECK-IN", "CHECKIN", "CHECK_IN":
			return DirectionIn
		case "OUT", "CHECK-OUT", "CHECKOUT", "CHECK_OUT":
			return DirectionOut
		default:
			return DirectionUnknown
		}
	}
	return DirectionUnknown
}

// Worker is the identity echoed into the summary.
type Worker struct {
	Name       string        `json:"name"`
	RFID       string        `json:"rfid"`
	Department string        `json:"department"`
	Email      string        `json:"email"`
	Salary     generic.Money `json:"salary"`
}

// Punch is one scan event as the engine consumes it.
type Punch struct {
	Date      generic.TimePoint
	Time      string // "H:MM[:SS] AM/PM"
	Direction Direction
	Worker    Worker
}

// Batch is a named shift.
type Batch struct {
	Name            string
	From            string // "HH:MM"
	To              string
	LunchFrom       string
	LunchTo         string
	LunchConsidered bool // lunch counts as paid work time
}

// Interval is a named break window.
type Interval struct {
	Name            string
	From            string
	To              string
	BreakConsidered bool // break counts as paid work time
}

// Options carries the schedule settings for one run.
type Options struct {
	ConsiderOvertime        bool
	DeductSalary            bool
	PermissionTimeMinutes   float64
	SalaryDeductionPerBreak generic.Money
	Batches                 []Batch
	Intervals               []Interval
	FilteredBatch           string
	Holidays                generic.HolidayList
}

// Advance is a pre-recorded deduction applied on top of attendance.
type Advance struct {
	Date        generic.TimePoint
	Amount      generic.Money
	Description string
}

// Params is the complete input of CalculateWorkerProductivity.
type Params struct {
	Attendance []Punch
	Period     generic.Period
	Advances   []Advance
	Options    Options

	// Worker overrides the identity read from the first punch. Needed when a
	// worker has no punches at all in the period.
	Worker *Worker
}

// Validate rejects an inverted period. The engine itself tolerates one.
func (p Params) Validate() error {
	return p.Period.Validate()
}

// =============================================================================
// OUTPUT
// =============================================================================

// DayStatus classifies a calendar day. Every day gets exactly one.
type DayStatus string

const (
	DayPresent DayStatus = "Present"
	DayAbsent  DayStatus = "Absent"
	DaySunday  DayStatus = "Sunday"
	DayHoliday DayStatus = "Holiday"
)

// RowStatus is the status column of a report row.
type RowStatus string

const (
	RowDelay     RowStatus = "Delay"
	RowPresent   RowStatus = "Present"
	RowAbsent    RowStatus = "Absent"
	RowSunday    RowStatus = "Sunday"
	RowHoliday   RowStatus = "Holiday"
	RowDeduction RowStatus = "Deduction"
)

// Delay types shown in the report.
const (
	DelayLateArrival    = "Late Arrival"
	DelayEarlyDeparture = "Early Departure"
	DelayLunch          = "Lunch Delay"
	DelayBreak          = "Break Delay"
	DelayNone           = "No Delays"
	DelayAdvance        = "Advance Deduction"
)

// Deduction names in working-time breakdowns.
const (
	DeductionLunch             = "Lunch"
	DeductionOvertimeExclusion = "Overtime Exclusion"
)

// Deduction is a named number of minutes removed from working time.
type Deduction struct {
	Name    string  `json:"name"`
	Minutes float64 `json:"minutes"`
}

// WorkInterval is one IN→OUT pair after clipping and deductions.
type WorkInterval struct {
	In             string      `json:"in"`
	Out            string      `json:"out"`
	RawMinutes     float64     `json:"rawMinutes"`
	ClippedMinutes float64     `json:"clippedMinutes"`
	FinalMinutes   float64     `json:"finalMinutes"`
	Deductions     []Deduction `json:"deductions"`
}

// WorkingTime is the per-day result of CalculateWorkingTime.
type WorkingTime struct {
	TotalWorkingMinutes float64        `json:"totalWorkingMinutes"`
	Intervals           []WorkInterval `json:"intervals"`
	Deductions          []Deduction    `json:"deductions"`
}

// PermissionDetail is one lateness or early-departure event.
type PermissionDetail struct {
	Type           string  `json:"type"`
	TotalMinutes   float64 `json:"totalMinutes"`
	PermissionUsed float64 `json:"permissionUsed"`
	ExcessMinutes  float64 `json:"excessMinutes"`
	Description    string  `json:"description"`
}

// IsViolation is true when the event exceeds the permission allowance.
func (d PermissionDetail) IsViolation() bool { return d.ExcessMinutes > 0 }

// PermissionTime is the per-day result of CalculatePermissionTime.
type PermissionTime struct {
	TotalPermissionMinutes float64            `json:"totalPermissionMinutes"`
	Details                []PermissionDetail `json:"details"`
}

// GapDelay is an OUT→IN gap that ran longer than the break windows it covers.
type GapDelay struct {
	Type            string  `json:"type"`
	Out             string  `json:"out"`
	In              string  `json:"in"`
	GapMinutes      float64 `json:"gapMinutes"`
	ExpectedMinutes float64 `json:"expectedMinutes"`
	DelayMinutes    float64 `json:"delayMinutes"`
	PermissionUsed  float64 `json:"permissionUsed"`
	ExcessMinutes   float64 `json:"excessMinutes"`
}

// Breakdown is the audit trail of a day.
type Breakdown struct {
	Intervals  []WorkInterval     `json:"intervals"`
	Deductions []Deduction        `json:"deductions"`
	Permission []PermissionDetail `json:"permission"`
	Delays     []GapDelay         `json:"delays"`
}

// DailyRecord is the reconciliation of one calendar day.
type DailyRecord struct {
	Date              generic.TimePoint `json:"date"`
	DisplayDate       string            `json:"displayDate"`
	Status            DayStatus         `json:"status"`
	PunchTime         string            `json:"punchTime"`
	WorkingMinutes    float64           `json:"workingMinutes"`
	WorkingTime       string            `json:"workingTime"`
	PermissionMinutes float64           `json:"permissionMinutes"`
	SalaryDeduction   generic.Money     `json:"salaryDeduction"`
	Issues            []string          `json:"issues"`
	DetailedBreakdown Breakdown         `json:"detailedBreakdown"`
}

// ReportRow is one line of the delay report. Deduction keeps the numeric value,
// DeductionAmount the display string.
type ReportRow struct {
	Date            generic.TimePoint `json:"date"`
	DisplayDate     string            `json:"displayDate"`
	OutTime         string            `json:"outTime"`
	InTime          string            `json:"inTime"`
	DelayTime       string            `json:"delayTime"`
	DelayType       string            `json:"delayType"`
	DeductionAmount string            `json:"deductionAmount"`
	Deduction       generic.Money     `json:"deductionValue"`
	Status          RowStatus         `json:"status"`
	Remarks         string            `json:"remarks,omitempty"`
}

// PeriodSummary is the numeric aggregate of a run.
type PeriodSummary struct {
	TotalDays                int     `json:"totalDays"`
	TotalWorkingDaysInPeriod int     `json:"totalWorkingDaysInPeriod"`
	ActualWorkingDays        int     `json:"actualWorkingDays"`
	TotalSundays             int     `json:"totalSundays"`
	TotalHolidays            int     `json:"totalHolidays"`
	TotalAbsentDays          int     `json:"totalAbsentDays"`
	TotalWorkingMinutes      float64 `json:"totalWorkingMinutes"`
	TotalPermissionMinutes   float64 `json:"totalPermissionMinutes"`
	StandardWorkingMinutes   float64 `json:"standardWorkingMinutes"`
	PunctualityViolations    int     `json:"punctualityViolations"`
	ProductivityPercentage   float64 `json:"productivityPercentage"`
	PunctualityScore         float64 `json:"punctualityScore"`
	AttendanceRate           float64 `json:"attendanceRate"`

	OriginalSalary      generic.Money `json:"originalSalary"`
	PerDaySalary        generic.Money `json:"perDaySalary"`
	PerMinuteSalary     generic.Money `json:"perMinuteSalary"`
	AbsentDeduction     generic.Money `json:"absentDeduction"`
	PermissionDeduction generic.Money `json:"permissionDeduction"`
	AdvanceDeduction    generic.Money `json:"advanceDeduction"`
	TotalDeduction      generic.Money `json:"totalDeduction"`
	FinalSalary         generic.Money `json:"finalSalary"`

	EmployeeName string `json:"employeeName"`
	EmployeeRFID string `json:"employeeRfid"`
	Department   string `json:"department"`
	Email        string `json:"email"`
}

// Configuration echoes the effective schedule used by a run.
type Configuration struct {
	BatchName               string            `json:"batchName"`
	WorkStart               string            `json:"workStart"`
	WorkEnd                 string            `json:"workEnd"`
	LunchFrom               string            `json:"lunchFrom"`
	LunchTo                 string            `json:"lunchTo"`
	LunchConsidered         bool              `json:"isLunchConsider"`
	Breaks                  []ConfiguredBreak `json:"breaks"`
	ConsiderOvertime        bool              `json:"considerOvertime"`
	DeductSalary            bool              `json:"deductSalary"`
	PermissionTimeMinutes   float64           `json:"permissionTimeMinutes"`
	SalaryDeductionPerBreak generic.Money     `json:"salaryDeductionPerBreak"`
	StandardWorkingMinutes  float64           `json:"standardWorkingMinutes"`
	FromDate                string            `json:"fromDate"`
	ToDate                  string            `json:"toDate"`
}

// ConfiguredBreak is a break window in the configuration echo.
type ConfiguredBreak struct {
	Name       string `json:"name"`
	From       string `json:"from"`
	To         string `json:"to"`
	Considered bool   `json:"isBreakConsider"`
}

// FinalSummary is the display view of PeriodSummary. Currency is pre-formatted.
type FinalSummary struct {
	EmployeeName        string `json:"employeeName"`
	EmployeeRFID        string `json:"employeeRfid"`
	Department          string `json:"department"`
	Email               string `json:"email"`
	Period              string `json:"period"`
	TotalDays           int    `json:"totalDays"`
	WorkingDays         int    `json:"workingDays"`
	PresentDays         int    `json:"presentDays"`
	AbsentDays          int    `json:"absentDays"`
	Sundays             int    `json:"sundays"`
	Holidays            int    `json:"holidays"`
	TotalWorkingTime    string `json:"totalWorkingTime"`
	TotalPermissionTime string `json:"totalPermissionTime"`
	OriginalSalary      string `json:"originalSalary"`
	PerDaySalary        string `json:"perDaySalary"`
	AbsentDeduction     string `json:"absentDeduction"`
	PermissionDeduction string `json:"permissionDeduction"`
	AdvanceDeduction    string `json:"advanceDeduction"`
	TotalDeduction      string `json:"totalDeduction"`
	FinalSalary         string `json:"finalSalary"`
}

// Warning reports a data-quality problem the engine worked around.
type Warning struct {
	Date    string `json:"date,omitempty"`
	Message string `json:"message"`
}

// Result is the full output of a run. The empty result has the same shape with
// zero values and empty lists.
type Result struct {
	TotalDays            int           `json:"totalDays"`
	WorkingDays          int           `json:"workingDays"`
	TotalWorkingHours    float64       `json:"totalWorkingHours"`
	AverageWorkingHours  float64       `json:"averageWorkingHours"`
	TotalPermissionTime  float64       `json:"totalPermissionTime"`
	TotalSalaryDeduction generic.Money `json:"totalSalaryDeduction"`
	DailyBreakdown       []DailyRecord `json:"dailyBreakdown"`
	Summary              PeriodSummary `json:"summary"`
	Configuration        Configuration `json:"configuration"`
	FinalSummary         FinalSummary  `json:"finalSummary"`
	Report               []ReportRow   `json:"report"`
	Warnings             []Warning     `json:"warnings"`
}
