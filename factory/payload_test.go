package factory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

const payload = `{
  "attendanceData": [
    {"date": "2025-03-04T00:00:00.000Z", "time": "9:10 AM", "presence": "IN",
     "worker": {"name": "Asha Rao", "rfid": "RF-1001", "department": "Stitching", "email": "asha@example.com", "salary": "30000"}},
    {"date": "2025-03-04", "time": "1:00 PM", "type": "out", "worker": {"name": "Asha Rao", "salary": 30000}},
    {"date": "2025-03-04", "time": "2:00 PM", "Presence": "IN", "worker": {"name": "Asha Rao", "salary": 30000}},
    {"date": "2025-03-04", "time": "7:00 PM", "STATUS": "OUT", "worker": {"name": "Asha Rao", "salary": 30000}},
    {"date": "2025-03-05", "time": "9:00 AM", "worker": {"name": "Asha Rao", "salary": 30000}}
  ],
  "fromDate": "2025-03-04",
  "toDate": "2025-03-05",
  "advanceDeductions": [{"date": "2025-03-05", "amount": 1500.5, "description": "advance"}],
  "options": {
    "considerOvertime": false,
    "permissionTimeMinutes": "15",
    "batches": [{"batchName": "General", "from": "09:00", "to": "19:00", "lunchFrom": "13:00", "lunchTo": "14:00", "isLunchConsider": false}],
    "intervals": [{"intervalName": "Tea", "from": "16:00", "to": "16:15", "isBreakConsider": true}],
    "fiteredBatch": "General",
    "holidays": [{"date": "2025-03-14", "name": "Holi"}]
  }
}`

func TestParsePayload_FullDocument(t *testing.T) {
	// GIVEN: a payload using every direction alias and a quoted number
	f := factory.NewPayloadFactory()

	// WHEN
	params, err := f.ParsePayload([]byte(payload))
	require.NoError(t, err)

	// THEN
	assert.Equal(t, "2025-03-04", params.Period.Start.String())
	assert.Equal(t, "2025-03-05", params.Period.End.String())
	require.Len(t, params.Attendance, 5)

	dirs := []productivity.Direction{}
	for _, p := range params.Attendance {
		dirs = append(dirs, p.Direction)
	}
	assert.Equal(t, []productivity.Direction{
		productivity.DirectionIn, productivity.DirectionOut, productivity.DirectionIn,
		productivity.DirectionOut, productivity.DirectionUnknown,
	}, dirs)
	assert.Equal(t, "2025-03-04", params.Attendance[0].Date.String())
	assert.Equal(t, "₹30000.00", params.Attendance[0].Worker.Salary.Format())

	assert.True(t, params.Options.DeductSalary, "deductSalary defaults to true")
	assert.Equal(t, 15.0, params.Options.PermissionTimeMinutes)
	assert.Equal(t, "General", params.Options.FilteredBatch)
	require.Len(t, params.Options.Intervals, 1)
	assert.True(t, params.Options.Intervals[0].BreakConsidered)
	require.Len(t, params.Options.Holidays, 1)
	assert.Equal(t, "Holi", params.Options.Holidays[0].Name)

	require.Len(t, params.Advances, 1)
	assert.Equal(t, "₹1500.50", params.Advances[0].Amount.Format())
}

func TestParsePayload_FeedsTheEngine(t *testing.T) {
	params, err := factory.NewPayloadFactory().ParsePayload([]byte(payload))
	require.NoError(t, err)

	result := productivity.CalculateWorkerProductivity(params)

	assert.Equal(t, 2, result.Summary.ActualWorkingDays)
	assert.Equal(t, "Asha Rao", result.Summary.EmployeeName)
	assert.Equal(t, "₹1500.50", result.FinalSummary.AdvanceDeduction)
}

func TestParsePayload_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"missing dates":  `{"attendanceData": []}`,
		"bad punch date": `{"fromDate": "2025-03-01", "toDate": "2025-03-02", "attendanceData": [{"date": "yesterday", "time": "9:00 AM"}]}`,
		"bad holiday":    `{"fromDate": "2025-03-01", "toDate": "2025-03-02", "options": {"holidays": [{"date": "soon"}]}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := factory.NewPayloadFactory().ParsePayload([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, generic.ErrInvalidPayload))
		})
	}
}

func TestParsePayload_DeductSalaryExplicitlyOff(t *testing.T) {
	params, err := factory.NewPayloadFactory().ParsePayload([]byte(
		`{"fromDate": "2025-03-01", "toDate": "2025-03-01", "options": {"deductSalary": false, "filteredBatch": "Night"}}`))
	require.NoError(t, err)

	assert.False(t, params.Options.DeductSalary)
	assert.Equal(t, "Night", params.Options.FilteredBatch)
}

func TestSettings_DefaultAndRoundTrip(t *testing.T) {
	f := factory.NewSettingsFactory()

	opts, err := f.Options(nil, generic.HolidayList{{Name: "Holi"}}, "General")
	require.NoError(t, err)
	assert.Equal(t, 15.0, opts.PermissionTimeMinutes)
	require.Len(t, opts.Batches, 1)
	assert.Len(t, opts.Holidays, 1)
	assert.Equal(t, "General", opts.FilteredBatch)

	_, err = f.ParseSettings("[]")
	assert.ErrorIs(t, err, generic.ErrInvalidPayload)
}

func TestPunchesFromRecords_NormalizesStatus(t *testing.T) {
	w := generic.Worker{ID: "w1", Name: "Asha Rao", Salary: generic.NewMoneyFromInt(30000)}
	punches := factory.PunchesFromRecords(w, []generic.Punch{
		{WorkerID: "w1", Time: "9:00 AM", Status: "check-in"},
		{WorkerID: "w1", Time: "7:00 PM", Status: ""},
	})

	require.Len(t, punches, 2)
	assert.Equal(t, productivity.DirectionIn, punches[0].Direction)
	assert.Equal(t, productivity.DirectionUnknown, punches[1].Direction)
	assert.Equal(t, "Asha Rao", punches[1].Worker.Name)
}
