package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/generic/store"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/productivity"
)

var march2025 = generic.MonthPeriod(2025, time.March)

func seedScenario(t *testing.T, id string) *payroll.Service {
	t.Helper()
	mem := store.NewMemory()
	require.NoError(t, api.SeedScenario(context.Background(), mem, id, march2025))
	return payroll.NewService(mem, nil)
}

func hasDelay(rows []productivity.ReportRow, delayType string) bool {
	for _, r := range rows {
		if r.DelayType == delayType {
			return true
		}
	}
	return false
}

func TestScenario_PunctualMonth(t *testing.T) {
	svc := seedScenario(t, "punctual-month")

	result, err := svc.Compute(context.Background(), "asha", march2025, "")
	require.NoError(t, err)

	// THEN: 31 days, 5 Sundays, 1 holiday, nothing deducted
	assert.Equal(t, 5, result.Summary.TotalSundays)
	assert.Equal(t, 1, result.Summary.TotalHolidays)
	assert.Equal(t, 0, result.Summary.TotalAbsentDays)
	assert.Equal(t, 25, result.Summary.ActualWorkingDays)
	assert.Equal(t, 0, result.Summary.PunctualityViolations)
	assert.Equal(t, "₹30000.00", result.FinalSummary.FinalSalary)
}

func TestScenario_LateArrivals(t *testing.T) {
	svc := seedScenario(t, "late-arrivals")

	result, err := svc.Compute(context.Background(), "ravi", march2025, "")
	require.NoError(t, err)

	// Mondays 10 and Friday 21 are absent; four late Mondays and three early
	// Fridays remain, each beyond the 15 minute allowance.
	assert.Equal(t, 2, result.Summary.TotalAbsentDays)
	assert.Equal(t, 7, result.Summary.PunctualityViolations)
	assert.Equal(t, "₹1500.00", result.FinalSummary.AdvanceDeduction)
	assert.True(t, hasDelay(result.Report, productivity.DelayLateArrival))
	assert.True(t, hasDelay(result.Report, productivity.DelayEarlyDeparture))
	assert.True(t, result.Summary.FinalSalary.LessThan(result.Summary.OriginalSalary))
}

func TestScenario_TwoShifts(t *testing.T) {
	svc := seedScenario(t, "two-shifts")
	ctx := context.Background()

	meena, err := svc.Compute(ctx, "meena", march2025, "Morning")
	require.NoError(t, err)
	assert.Equal(t, "Morning", meena.Configuration.BatchName)
	assert.True(t, hasDelay(meena.Report, productivity.DelayLunch))

	arun, err := svc.Compute(ctx, "arun", march2025, "")
	require.NoError(t, err)
	assert.Equal(t, "General", arun.Configuration.BatchName)
	assert.True(t, hasDelay(arun.Report, productivity.DelayBreak))
	assert.False(t, hasDelay(arun.Report, productivity.DelayLunch))
}

func TestSeedScenario_Unknown(t *testing.T) {
	err := api.SeedScenario(context.Background(), store.NewMemory(), "nope", march2025)
	assert.ErrorIs(t, err, generic.ErrInvalidPayload)
}
