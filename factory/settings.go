package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

// =============================================================================
// SETTINGS DOCUMENT
// =============================================================================
// The stored settings document is the "options" object of the calculation
// payload without holidays (those live in their own table) and without a batch
// selector (chosen per request).

// SettingsFactory converts the stored settings document to engine options.
type SettingsFactory struct{}

// NewSettingsFactory creates a new settings factory.
func NewSettingsFactory() *SettingsFactory {
	return &SettingsFactory{}
}

// ParseSettings decodes a settings document.
func (f *SettingsFactory) ParseSettings(doc string) (productivity.Options, error) {
	var oj OptionsJSON
	if err := json.Unmarshal([]byte(doc), &oj); err != nil {
		return productivity.Options{}, fmt.Errorf("%w: settings: %v", generic.ErrInvalidPayload, err)
	}
	return optionsFromJSON(oj)
}

// Options builds the options for one run: stored settings, the holidays of the
// period and the batch to apply. A missing settings record falls back to
// DefaultSettingsJSON.
func (f *SettingsFactory) Options(rec *generic.SettingsRecord, holidays generic.HolidayList, batch string) (productivity.Options, error) {
	doc := DefaultSettingsJSON()
	if rec != nil && rec.ConfigJSON != "" {
		doc = rec.ConfigJSON
	}
	opts, err := f.ParseSettings(doc)
	if err != nil {
		return productivity.Options{}, err
	}
	opts.Holidays = holidays
	opts.FilteredBatch = batch
	return opts, nil
}

// ToJSON renders options back into a settings document. Holidays and the batch
// selector are not part of it.
func (f *SettingsFactory) ToJSON(opts productivity.Options) OptionsJSON {
	deduct := opts.DeductSalary
	oj := OptionsJSON{
		ConsiderOvertime:        opts.ConsiderOvertime,
		DeductSalary:            &deduct,
		PermissionTimeMinutes:   looseNumber(opts.PermissionTimeMinutes),
		SalaryDeductionPerBreak: opts.SalaryDeductionPerBreak,
		Batches:                 []BatchJSON{},
		Intervals:               []IntervalJSON{},
	}
	for _, b := range opts.Batches {
		oj.Batches = append(oj.Batches, BatchJSON{
			BatchName:       b.Name,
			From:            b.From,
			To:              b.To,
			LunchFrom:       b.LunchFrom,
			LunchTo:         b.LunchTo,
			IsLunchConsider: b.LunchConsidered,
		})
	}
	for _, iv := range opts.Intervals {
		oj.Intervals = append(oj.Intervals, IntervalJSON{
			IntervalName:    iv.Name,
			From:            iv.From,
			To:              iv.To,
			IsBreakConsider: iv.BreakConsidered,
		})
	}
	return oj
}

// DefaultSettingsJSON is a single 09:00-19:00 batch with an unpaid hour of
// lunch, no breaks and a 15 minute permission allowance.
func DefaultSettingsJSON() string {
	return `{
  "considerOvertime": false,
  "deductSalary": true,
  "permissionTimeMinutes": 15,
  "salaryDeductionPerBreak": 0,
  "batches": [
    {"batchName": "General", "from": "09:00", "to": "19:00", "lunchFrom": "13:00", "lunchTo": "14:00", "isLunchConsider": false}
  ],
  "intervals": []
}`
}
