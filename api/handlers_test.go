package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/productivity"
	"github.com/warp/attendance-engine/store/sqlite"
)

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return api.NewRouter(api.NewHandler(store, nil), api.RouterConfig{})
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seedAsha creates a worker with two punched days: on time on Monday 3 March
// 2025 and 30 minutes late on Tuesday.
func seedAsha(t *testing.T, router http.Handler) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/workers", `{"id": "asha", "name": "Asha Rao", "rfid": "RF-1", "salary": 30000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/workers/asha/punches", `{"punches": [
		{"date": "2025-03-03", "time": "9:00 AM", "status": "IN"},
		{"date": "2025-03-03", "time": "7:00 PM", "status": "OUT"},
		{"date": "2025-03-04", "time": "9:30 AM", "status": "IN"},
		{"date": "2025-03-04", "time": "7:00 PM", "status": "OUT"}
	]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWorkers_CreateGetDelete(t *testing.T) {
	router := newRouter(t)

	// WHEN: a worker without an id is created
	rec := do(t, router, http.MethodPost, "/api/workers", `{"name": "Ravi", "salary": "20000.50"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[api.WorkerDTO](t, rec)

	// THEN: an id is assigned and the worker can be read back
	require.NotEmpty(t, created.ID)
	rec = do(t, router, http.MethodGet, "/api/workers/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "₹20000.50", decode[api.WorkerDTO](t, rec).Salary.Format())

	rec = do(t, router, http.MethodGet, "/api/workers", "")
	assert.Len(t, decode[[]api.WorkerDTO](t, rec), 1)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodDelete, "/api/workers/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/workers/"+created.ID, "").Code)
}

func TestWorkers_Validation(t *testing.T) {
	router := newRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/workers", `{"salary": 100}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/workers", `{"name": "X", "salary": -1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/workers", `not json`).Code)
}

func TestPunches_DuplicateAndValidation(t *testing.T) {
	router := newRouter(t)
	seedAsha(t, router)

	// GIVEN: a batch that repeats a stored punch
	rec := do(t, router, http.MethodPost, "/api/workers/asha/punches", `{"punches": [
		{"date": "2025-03-05", "time": "9:00 AM", "status": "IN"},
		{"date": "2025-03-03", "time": "9:00 am", "status": "IN"}
	]}`)

	// THEN: the batch is rejected and nothing from it is stored
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/workers/asha/punches?from=2025-03-01&to=2025-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]api.PunchDTO](t, rec), 4)

	assert.Equal(t, http.StatusBadRequest,
		do(t, router, http.MethodPost, "/api/workers/asha/punches", `{"punches": [{"date": "2025-03-05", "time": "25:00"}]}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, router, http.MethodPost, "/api/workers/asha/punches", `{"punches": []}`).Code)
	assert.Equal(t, http.StatusNotFound,
		do(t, router, http.MethodPost, "/api/workers/nobody/punches", `{"punches": [{"date": "2025-03-05", "time": "9:00 AM"}]}`).Code)
}

func TestProductivity_FromStoredData(t *testing.T) {
	router := newRouter(t)
	seedAsha(t, router)

	// WHEN
	rec := do(t, router, http.MethodGet, "/api/workers/asha/productivity?from=2025-03-03&to=2025-03-04", "")

	// THEN: default settings apply, Tuesday is 30 minutes late
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[productivity.Result](t, rec)
	assert.Equal(t, "Asha Rao", result.Summary.EmployeeName)
	assert.Equal(t, 2, result.Summary.ActualWorkingDays)
	assert.Equal(t, 30.0, result.Summary.TotalPermissionMinutes)
	assert.Equal(t, 1, result.Summary.PunctualityViolations)
	assert.Equal(t, "2025-03-03 to 2025-03-04", result.FinalSummary.Period)
}

func TestProductivity_Errors(t *testing.T) {
	router := newRouter(t)
	seedAsha(t, router)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing range", "/api/workers/asha/productivity", http.StatusBadRequest},
		{"bad date", "/api/workers/asha/productivity?from=March&to=2025-03-04", http.StatusBadRequest},
		{"inverted range", "/api/workers/asha/productivity?from=2025-03-05&to=2025-03-04", http.StatusBadRequest},
		{"unknown worker", "/api/workers/nobody/productivity?from=2025-03-01&to=2025-03-04", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decode[api.ErrorResponse](t, rec).Error)
		})
	}
}

func TestReportCSV(t *testing.T) {
	router := newRouter(t)
	seedAsha(t, router)

	rec := do(t, router, http.MethodGet, "/api/workers/asha/report.csv?from=2025-03-03&to=2025-03-04", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Out Time,In Time,Delay Time,Delay Type,Deduction Amount,Status,Remarks", lines[0])
	assert.Contains(t, lines[2], "Late Arrival")
}

func TestCalculate_Stateless(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPost, "/api/productivity", `{
		"attendanceData": [
			{"date": "2025-03-03", "time": "9:00 AM", "presence": "IN", "worker": {"name": "Asha", "salary": 30000}},
			{"date": "2025-03-03", "time": "7:00 PM", "presence": "OUT", "worker": {"name": "Asha", "salary": 30000}}
		],
		"fromDate": "2025-03-03",
		"toDate": "2025-03-03",
		"options": {"permissionTimeMinutes": 15}
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[productivity.Result](t, rec)
	assert.Equal(t, 1, result.WorkingDays)
	assert.Equal(t, "Asha", result.Summary.EmployeeName)

	// Nothing was stored.
	assert.Empty(t, decode[[]api.WorkerDTO](t, do(t, router, http.MethodGet, "/api/workers", "")))

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/productivity", `{"fromDate": "soon"}`).Code)
}

func TestPeriodLimits(t *testing.T) {
	router := newRouter(t)
	seedAsha(t, router)

	payload := func(from, to string) string {
		return `{"attendanceData": [], "fromDate": "` + from + `", "toDate": "` + to + `"}`
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"stateless inverted", http.MethodPost, "/api/productivity", payload("2025-03-10", "2025-03-01"), http.StatusBadRequest},
		{"stateless over a year", http.MethodPost, "/api/productivity", payload("1000-01-01", "2999-12-31"), http.StatusBadRequest},
		{"stateless leap year", http.MethodPost, "/api/productivity", payload("2024-01-01", "2024-12-31"), http.StatusOK},
		{"stored inverted", http.MethodGet, "/api/workers/asha/productivity?from=2025-03-10&to=2025-03-01", "", http.StatusBadRequest},
		{"stored over a year", http.MethodGet, "/api/workers/asha/productivity?from=2024-01-01&to=2025-01-01", "", http.StatusBadRequest},
		{"csv over a year", http.MethodGet, "/api/workers/asha/report.csv?from=2020-01-01&to=2025-12-31", "", http.StatusBadRequest},
		{"close over a year", http.MethodPost, "/api/payroll/close", `{"from": "2020-01-01", "to": "2025-12-31"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusBadRequest {
				assert.Equal(t, "Invalid period", decode[api.ErrorResponse](t, rec).Error)
			}
		})
	}
}

func TestSettings_DefaultThenReplace(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"batchName":"General"`)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPut, "/api/settings", `{"batches": []}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, router, http.MethodPut, "/api/settings", `{"batches": [{"batchName": "Backwards", "from": "19:00", "to": "09:00"}]}`).Code)

	rec = do(t, router, http.MethodPut, "/api/settings", `{
		"permissionTimeMinutes": "20",
		"batches": [{"batchName": "Night", "from": "20:00", "to": "23:30", "lunchFrom": "22:00", "lunchTo": "22:15"}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/settings", "")
	assert.Contains(t, rec.Body.String(), `"batchName":"Night"`)
	assert.Contains(t, rec.Body.String(), `"permissionTimeMinutes":20`)
}

func TestHolidays_CreateListDelete(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPost, "/api/holidays", `{"date": "2025-03-14", "name": "Holi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[map[string]string](t, rec)["holiday"]

	rec = do(t, router, http.MethodGet, "/api/holidays?from=2025-03-01&to=2025-03-31", "")
	list := decode[map[string][]api.HolidayDTO](t, rec)["holidays"]
	require.Len(t, list, 1)
	assert.Equal(t, "2025-03-14", list[0].Date)

	require.Equal(t, http.StatusOK, do(t, router, http.MethodDelete, "/api/holidays/"+id, "").Code)
	rec = do(t, router, http.MethodGet, "/api/holidays?from=2025-03-01&to=2025-03-31", "")
	assert.Empty(t, decode[map[string][]api.HolidayDTO](t, rec)["holidays"])

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/holidays", `{"date": "14/03/2025", "name": "Holi"}`).Code)
}

func TestAdvances_ReduceFinalSalary(t *testing.T) {
	router := newRouter(t)
	seedAsha(t, router)

	rec := do(t, router, http.MethodPost, "/api/workers/asha/advances", `{"date": "2025-03-03", "amount": 500, "description": "advance"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusBadRequest,
		do(t, router, http.MethodPost, "/api/workers/asha/advances", `{"date": "2025-03-03", "amount": 0}`).Code)

	rec = do(t, router, http.MethodGet, "/api/workers/asha/advances?from=2025-03-01&to=2025-03-31", "")
	assert.Len(t, decode[[]api.AdvanceDTO](t, rec), 1)

	rec = do(t, router, http.MethodGet, "/api/workers/asha/productivity?from=2025-03-03&to=2025-03-03", "")
	result := decode[productivity.Result](t, rec)
	assert.Equal(t, "₹500.00", result.FinalSummary.AdvanceDeduction)
}

func TestPayrollClose_ThenListSnapshots(t *testing.T) {
	router := newRouter(t)
	seedAsha(t, router)

	// WHEN: March is closed by hand
	rec := do(t, router, http.MethodPost, "/api/payroll/close", `{"month": "2025-03"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"closed":1`)

	// THEN
	rec = do(t, router, http.MethodGet, "/api/payroll/snapshots?worker_id=asha", "")
	snaps := decode[[]api.SnapshotDTO](t, rec)
	require.Len(t, snaps, 1)
	assert.Equal(t, "manual", snaps[0].Reason)
	assert.Equal(t, "2025-03-31", snaps[0].To)
	assert.NotEmpty(t, snaps[0].Result)

	rec = do(t, router, http.MethodGet, "/api/payroll/snapshots", "")
	assert.Empty(t, decode[[]api.SnapshotDTO](t, rec)[0].Result, "result omitted when listing all workers")

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/payroll/close", `{"month": "March"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/payroll/close", `{"from": "2025-03-31", "to": "2025-03-01"}`).Code)
}

func TestRateLimit(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	router := api.NewRouter(api.NewHandler(store, nil), api.RouterConfig{RateLimitRPS: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/workers", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, router, http.MethodGet, "/api/workers", "").Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/healthz", "").Code, "heartbeat is not limited")
}
