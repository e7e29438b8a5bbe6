/*
Package factory converts JSON documents into productivity engine input.

PURPOSE:
  The engine takes typed Params. Everything around it speaks JSON: the stateless
  /api/productivity endpoint, the reconcile CLI, and the settings document kept
  in the store. This package is the single place where that JSON is decoded,
  aliases are normalized and defaults are applied.

JSON SCHEMA (calculation payload):
  {
    "attendanceData": [
      {"date": "2025-03-04", "time": "9:02 AM", "presence": "IN",
       "worker": {"name": "Asha Rao", "rfid": "RF-1001", "department": "Stitching",
                  "email": "asha@example.com", "salary": 30000}}
    ],
    "fromDate": "2025-03-01",
    "toDate": "2025-03-31",
    "advanceDeductions": [{"date": "2025-03-10", "amount": 2000, "description": "advance"}],
    "options": {
      "considerOvertime": false,
      "deductSalary": true,
      "permissionTimeMinutes": 15,
      "salaryDeductionPerBreak": 0,
      "batches": [{"batchName": "General", "from": "09:00", "to": "19:00",
                   "lunchFrom": "13:00", "lunchTo": "14:00", "isLunchConsider": false}],
      "intervals": [{"intervalName": "Tea", "from": "16:00", "to": "16:15", "isBreakConsider": false}],
      "fiteredBatch": "General",
      "holidays": [{"date": "2025-03-14", "name": "Holi"}]
    }
  }

ALIASES:
  - Punch direction may arrive as status, presence, type, Presence or STATUS.
  - The batch selector is accepted as fiteredBatch (as scanners send it) or filteredBatch.
  - Numbers may be quoted.

SEE ALSO:
  - settings.go: the stored settings document (the "options" object without holidays)
  - records.go: store records to engine input
  - productivity/types.go: the typed form
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PayloadJSON is the calculation request.
type PayloadJSON struct {
	AttendanceData    []PunchJSON   `json:"attendanceData"`
	FromDate          string        `json:"fromDate"`
	ToDate            string        `json:"toDate"`
	AdvanceDeductions []AdvanceJSON `json:"advanceDeductions,omitempty"`
	Options           OptionsJSON   `json:"options"`
	Worker            *WorkerJSON   `json:"worker,omitempty"`
}

// PunchJSON is one attendance record. Exactly one of the direction fields is
// normally set; the first non-empty one wins.
type PunchJSON struct {
	Date     string     `json:"date"`
	Time     string     `json:"time"`
	Status   string     `json:"status,omitempty"`
	Presence string     `json:"presence,omitempty"`
	Type     string     `json:"type,omitempty"`
	Worker   WorkerJSON `json:"worker"`

	// Case variants some exporters emit. encoding/json matches keys
	// case-insensitively, so these are read from the raw object.
	PresenceUpper string `json:"-"`
	StatusUpper   string `json:"-"`
}

func (p *PunchJSON) UnmarshalJSON(data []byte) error {
	type plain PunchJSON
	var base plain
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// Exact-case lookups: the struct decode above folds case and would let
	// "STATUS" shadow "status".
	base.Status = rawString(raw, "status")
	base.Presence = rawString(raw, "presence")
	base.Type = rawString(raw, "type")
	base.PresenceUpper = rawString(raw, "Presence")
	base.StatusUpper = rawString(raw, "STATUS")
	*p = PunchJSON(base)
	return nil
}

// Direction resolves the aliased direction fields.
func (p PunchJSON) Direction() productivity.Direction {
	return productivity.ParseDirection(p.Status, p.Presence, p.Type, p.PresenceUpper, p.StatusUpper)
}

// WorkerJSON is the worker reference carried by each punch.
type WorkerJSON struct {
	Name       string        `json:"name"`
	RFID       string        `json:"rfid"`
	Department string        `json:"department"`
	Email      string        `json:"email"`
	Salary     generic.Money `json:"salary"`
}

// AdvanceJSON is a pre-recorded advance deduction.
type AdvanceJSON struct {
	Date        string        `json:"date"`
	Amount      generic.Money `json:"amount"`
	Description string        `json:"description"`
}

// OptionsJSON is the schedule configuration.
type OptionsJSON struct {
	ConsiderOvertime        bool           `json:"considerOvertime"`
	DeductSalary            *bool          `json:"deductSalary,omitempty"` // default true
	PermissionTimeMinutes   looseNumber    `json:"permissionTimeMinutes"`
	SalaryDeductionPerBreak generic.Money  `json:"salaryDeductionPerBreak"`
	Batches                 []BatchJSON    `json:"batches"`
	Intervals               []IntervalJSON `json:"intervals"`
	FiteredBatch            string         `json:"fiteredBatch,omitempty"`
	FilteredBatch           string         `json:"filteredBatch,omitempty"`
	Holidays                []HolidayJSON  `json:"holidays,omitempty"`
}

// BatchJSON is a named shift.
type BatchJSON struct {
	BatchName       string `json:"batchName"`
	From            string `json:"from"`
	To              string `json:"to"`
	LunchFrom       string `json:"lunchFrom"`
	LunchTo         string `json:"lunchTo"`
	IsLunchConsider bool   `json:"isLunchConsider"`
}

// IntervalJSON is a break window.
type IntervalJSON struct {
	IntervalName    string `json:"intervalName"`
	From            string `json:"from"`
	To              string `json:"to"`
	IsBreakConsider bool   `json:"isBreakConsider"`
}

// HolidayJSON is a holiday entry.
type HolidayJSON struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// looseNumber accepts 15 as well as "15". Unreadable strings count as 0.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = looseNumber(v)
	return nil
}

// =============================================================================
// PAYLOAD FACTORY
// =============================================================================

// PayloadFactory converts calculation payloads to productivity.Params.
type PayloadFactory struct{}

// NewPayloadFactory creates a new payload factory.
func NewPayloadFactory() *PayloadFactory {
	return &PayloadFactory{}
}

// ParsePayload decodes a JSON calculation payload.
func (f *PayloadFactory) ParsePayload(data []byte) (productivity.Params, error) {
	var pj PayloadJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return productivity.Params{}, fmt.Errorf("%w: %v", generic.ErrInvalidPayload, err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts a decoded payload. Dates must be ISO dates; times are passed
// through untouched because the engine degrades bad times on its own.
func (f *PayloadFactory) FromJSON(pj PayloadJSON) (productivity.Params, error) {
	from, err := generic.ParseDate(pj.FromDate)
	if err != nil {
		return productivity.Params{}, fmt.Errorf("%w: fromDate: %v", generic.ErrInvalidPayload, err)
	}
	to, err := generic.ParseDate(pj.ToDate)
	if err != nil {
		return productivity.Params{}, fmt.Errorf("%w: toDate: %v", generic.ErrInvalidPayload, err)
	}

	opts, err := optionsFromJSON(pj.Options)
	if err != nil {
		return productivity.Params{}, err
	}

	params := productivity.Params{
		Period:     generic.Period{Start: from, End: to},
		Options:    opts,
		Attendance: make([]productivity.Punch, 0, len(pj.AttendanceData)),
	}

	for i, pu := range pj.AttendanceData {
		date, err := generic.ParseDate(pu.Date)
		if err != nil {
			return productivity.Params{}, fmt.Errorf("%w: attendanceData[%d]: %v", generic.ErrInvalidPayload, i, err)
		}
		params.Attendance = append(params.Attendance, productivity.Punch{
			Date:      date,
			Time:      pu.Time,
			Direction: pu.Direction(),
			Worker:    pu.Worker.toWorker(),
		})
	}

	for i, a := range pj.AdvanceDeductions {
		date, err := generic.ParseDate(a.Date)
		if err != nil {
			return productivity.Params{}, fmt.Errorf("%w: advanceDeductions[%d]: %v", generic.ErrInvalidPayload, i, err)
		}
		params.Advances = append(params.Advances, productivity.Advance{Date: date, Amount: a.Amount, Description: a.Description})
	}

	if pj.Worker != nil {
		w := pj.Worker.toWorker()
		params.Worker = &w
	}
	return params, nil
}

func optionsFromJSON(oj OptionsJSON) (productivity.Options, error) {
	opts := productivity.Options{
		ConsiderOvertime:        oj.ConsiderOvertime,
		DeductSalary:            oj.DeductSalary == nil || *oj.DeductSalary,
		PermissionTimeMinutes:   float64(oj.PermissionTimeMinutes),
		SalaryDeductionPerBreak: oj.SalaryDeductionPerBreak,
		FilteredBatch:           oj.FiteredBatch,
	}
	if opts.FilteredBatch == "" {
		opts.FilteredBatch = oj.FilteredBatch
	}

	for _, b := range oj.Batches {
		opts.Batches = append(opts.Batches, productivity.Batch{
			Name:            b.BatchName,
			From:            b.From,
			To:              b.To,
			LunchFrom:       b.LunchFrom,
			LunchTo:         b.LunchTo,
			LunchConsidered: b.IsLunchConsider,
		})
	}
	for _, iv := range oj.Intervals {
		opts.Intervals = append(opts.Intervals, productivity.Interval{
			Name:            iv.IntervalName,
			From:            iv.From,
			To:              iv.To,
			BreakConsidered: iv.IsBreakConsider,
		})
	}
	for i, h := range oj.Holidays {
		date, err := generic.ParseDate(h.Date)
		if err != nil {
			return productivity.Options{}, fmt.Errorf("%w: holidays[%d]: %v", generic.ErrInvalidPayload, i, err)
		}
		opts.Holidays = append(opts.Holidays, generic.Holiday{Date: date, Name: h.Name})
	}
	return opts, nil
}

func (w WorkerJSON) toWorker() productivity.Worker {
	return productivity.Worker{
		Name:       w.Name,
		RFID:       w.RFID,
		Department: w.Department,
		Email:      w.Email,
		Salary:     w.Salary,
	}
}

func rawString(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}
