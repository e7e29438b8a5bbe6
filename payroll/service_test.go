package payroll_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/generic/store"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/productivity"
)

func march(day int) generic.TimePoint { return generic.NewTimePoint(2025, time.March, day) }

// seed: two workers, Asha works Mon-Tue 3-4 March, Ravi has no punches.
func seed(t *testing.T) (*store.Memory, *payroll.Service) {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	require.NoError(t, mem.SaveWorker(ctx, generic.Worker{ID: "asha", Name: "Asha Rao", Salary: generic.NewMoneyFromInt(30000)}))
	require.NoError(t, mem.SaveWorker(ctx, generic.Worker{ID: "ravi", Name: "Ravi K", Salary: generic.NewMoneyFromInt(20000)}))
	require.NoError(t, mem.AppendPunches(ctx, []generic.Punch{
		{ID: "p1", WorkerID: "asha", Date: march(3), Time: "9:00 AM", Status: "IN"},
		{ID: "p2", WorkerID: "asha", Date: march(3), Time: "7:00 PM", Status: "OUT"},
		{ID: "p3", WorkerID: "asha", Date: march(4), Time: "9:30 AM", Status: "IN"},
		{ID: "p4", WorkerID: "asha", Date: march(4), Time: "7:00 PM", Status: "OUT"},
	}))
	require.NoError(t, mem.SaveAdvance(ctx, generic.AdvanceDeduction{ID: "a1", WorkerID: "asha", Date: march(4), Amount: generic.NewMoneyFromInt(1000)}))
	require.NoError(t, mem.SaveHoliday(ctx, generic.Holiday{ID: "h1", Date: march(5), Name: "Local festival"}))

	return mem, payroll.NewService(mem, nil)
}

func TestCompute_UsesStoredDataAndDefaultSettings(t *testing.T) {
	// GIVEN: no settings saved, so the default 09:00-19:00 batch with 15 min allowance
	_, svc := seed(t)

	// WHEN
	result, err := svc.Compute(context.Background(), "asha", generic.Period{Start: march(3), End: march(5)}, "")
	require.NoError(t, err)

	// THEN
	assert.Equal(t, "Asha Rao", result.Summary.EmployeeName)
	assert.Equal(t, 2, result.Summary.ActualWorkingDays)
	assert.Equal(t, 1, result.Summary.TotalHolidays)
	assert.Equal(t, 30.0, result.Summary.TotalPermissionMinutes)
	assert.Equal(t, 1, result.Summary.PunctualityViolations)
	assert.Equal(t, "₹1000.00", result.FinalSummary.AdvanceDeduction)
}

func TestCompute_NoPunchesStillReportsAbsence(t *testing.T) {
	_, svc := seed(t)

	result, err := svc.Compute(context.Background(), "ravi", generic.Period{Start: march(3), End: march(4)}, "")
	require.NoError(t, err)

	assert.Equal(t, "Ravi K", result.Summary.EmployeeName)
	assert.Equal(t, 2, result.Summary.TotalAbsentDays)
	assert.True(t, result.Summary.FinalSalary.IsZero())
}

func TestCompute_Errors(t *testing.T) {
	_, svc := seed(t)
	ctx := context.Background()

	_, err := svc.Compute(ctx, "nobody", generic.Period{Start: march(3), End: march(4)}, "")
	assert.True(t, errors.Is(err, generic.ErrWorkerNotFound))

	_, err = svc.Compute(ctx, "asha", generic.Period{Start: march(4), End: march(3)}, "")
	assert.True(t, errors.Is(err, generic.ErrInvalidPeriod))
}

func TestCompute_StoredSettingsAndBatchSelection(t *testing.T) {
	mem, svc := seed(t)
	ctx := context.Background()
	require.NoError(t, mem.SaveSettings(ctx, generic.SettingsRecord{ConfigJSON: `{
		"permissionTimeMinutes": 60,
		"batches": [
			{"batchName": "Early", "from": "08:00", "to": "17:00", "lunchFrom": "12:00", "lunchTo": "13:00"},
			{"batchName": "Late", "from": "10:00", "to": "19:00", "lunchFrom": "14:00", "lunchTo": "15:00"}
		]
	}`}))

	result, err := svc.Compute(ctx, "asha", generic.Period{Start: march(4), End: march(4)}, "Late")
	require.NoError(t, err)

	assert.Equal(t, "Late", result.Configuration.BatchName)
	assert.Equal(t, 0.0, result.Summary.TotalPermissionMinutes, "9:30 is early for a 10:00 batch")
	require.Len(t, result.Report, 2)
	assert.Equal(t, productivity.RowPresent, result.Report[0].Status)
	assert.Equal(t, productivity.RowDeduction, result.Report[1].Status)
}

func TestClosePeriod_SnapshotsEveryWorkerOnce(t *testing.T) {
	mem, svc := seed(t)
	ctx := context.Background()
	period := generic.Period{Start: march(3), End: march(5)}

	// WHEN: closing twice
	first, err := svc.ClosePeriod(ctx, period, generic.SnapshotPeriodEnd)
	require.NoError(t, err)
	second, err := svc.ClosePeriod(ctx, period, generic.SnapshotPeriodEnd)
	require.NoError(t, err)

	// THEN: the second close skips both workers
	assert.Equal(t, 2, first.Closed)
	assert.Equal(t, 0, first.Failed)
	assert.Equal(t, 0, second.Closed)
	assert.Equal(t, 2, second.Skipped)

	snaps, err := mem.ListSnapshots(ctx, "asha")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	snap := snaps[0]
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, generic.SnapshotPeriodEnd, snap.Reason)

	var stored productivity.Result
	require.NoError(t, json.Unmarshal([]byte(snap.ResultJSON), &stored))
	assert.True(t, stored.Summary.FinalSalary.Equal(snap.FinalSalary))
}

func TestClosePeriod_RejectsInvertedPeriod(t *testing.T) {
	_, svc := seed(t)

	_, err := svc.ClosePeriod(context.Background(), generic.Period{Start: march(5), End: march(3)}, generic.SnapshotManual)

	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}
