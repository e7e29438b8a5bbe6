/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the store with a month of
  realistic attendance: workers, scanner punches, holidays, advances and the
  schedule settings document.

AVAILABLE SCENARIOS:
  punctual-month:  One worker, on time every working day, one holiday
  late-arrivals:   Lateness inside and beyond the allowance, early exits,
                   two absences and a salary advance
  two-shifts:      Two batches plus tea break; long lunch and break gaps

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Save the settings document
 3. Create workers
 4. Append one punch batch per worker
 5. Add holidays and advances

The month is the one before today, so the scheduler can close it right away.

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "late-arrivals"}

NOTE:
  Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: productivity and report endpoints
  - factory/settings.go: settings document format
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "punctual-month",
		Name:        "Punctual Month",
		Description: "On time every working day with a mid-month holiday",
	},
	{
		ID:          "late-arrivals",
		Name:        "Late Arrivals",
		Description: "Lateness within and beyond the allowance, early exits, absences and an advance",
	},
	{
		ID:          "two-shifts",
		Name:        "Two Shifts",
		Description: "Morning and General batches with an unpaid tea break and long gaps",
	},
}

type scenarioLoader func(ctx context.Context, store generic.Store, month generic.Period) error

var scenarioLoaders = map[string]scenarioLoader{
	"punctual-month": loadPunctualMonth,
	"late-arrivals":  loadLateArrivals,
	"two-shifts":     loadTwoShifts,
}

// SeedScenario resets store and loads the scenario for month.
func SeedScenario(ctx context.Context, store generic.Store, id string, month generic.Period) error {
	load, ok := scenarioLoaders[id]
	if !ok {
		return fmt.Errorf("%w: unknown scenario %q", generic.ErrInvalidPayload, id)
	}
	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return load(ctx, store, month)
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns all available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario for the previous month.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, ok := scenarioLoaders[req.ScenarioID]; !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	month := generic.PreviousMonth(generic.Today())
	h.currentScenario = ""
	if err := SeedScenario(r.Context(), h.Store, req.ScenarioID, month); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.Logger.InfoContext(r.Context(), "scenario loaded",
		slog.String("scenario", req.ScenarioID), slog.String("period", month.String()))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"from":     month.Start.String(),
		"to":       month.End.String(),
	})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

// =============================================================================
// SCENARIO: PUNCTUAL MONTH
// =============================================================================

func loadPunctualMonth(ctx context.Context, store generic.Store, month generic.Period) error {
	if err := saveSettings(ctx, store, factory.DefaultSettingsJSON()); err != nil {
		return err
	}

	asha := generic.Worker{ID: "asha", Name: "Asha Rao", RFID: "RF-1001", Department: "Stitching",
		Email: "asha@example.com", Salary: generic.NewMoneyFromInt(30000)}
	if err := store.SaveWorker(ctx, asha); err != nil {
		return err
	}

	holiday := firstWorkdayOnOrAfter(month.Start.AddDays(14))
	if err := store.SaveHoliday(ctx, generic.Holiday{ID: uuid.NewString(), Date: holiday, Name: "Founders Day"}); err != nil {
		return err
	}

	var punches []generic.Punch
	for _, day := range month.Days() {
		if day.IsSunday() || day.Equal(holiday) {
			continue
		}
		punches = append(punches, punchesOn(asha.ID, day, "9:00 AM", "1:00 PM", "2:00 PM", "7:00 PM")...)
	}
	return store.AppendPunches(ctx, punches)
}

// =============================================================================
// SCENARIO: LATE ARRIVALS
// =============================================================================

func loadLateArrivals(ctx context.Context, store generic.Store, month generic.Period) error {
	if err := saveSettings(ctx, store, factory.DefaultSettingsJSON()); err != nil {
		return err
	}

	ravi := generic.Worker{ID: "ravi", Name: "Ravi Kumar", RFID: "RF-1002", Department: "Packing",
		Email: "ravi@example.com", Salary: generic.NewMoneyFromInt(20000)}
	if err := store.SaveWorker(ctx, ravi); err != nil {
		return err
	}

	absent := map[string]bool{}
	for _, d := range []generic.TimePoint{firstWorkdayOnOrAfter(month.Start.AddDays(9)), firstWorkdayOnOrAfter(month.Start.AddDays(20))} {
		absent[d.String()] = true
	}

	var punches []generic.Punch
	for _, day := range month.Days() {
		if day.IsSunday() || absent[day.String()] {
			continue
		}
		switch day.Weekday() {
		case time.Monday: // beyond the allowance
			punches = append(punches, punchesOn(ravi.ID, day, "9:40 AM", "1:00 PM", "2:00 PM", "7:00 PM")...)
		case time.Wednesday: // inside the allowance
			punches = append(punches, punchesOn(ravi.ID, day, "9:10 AM", "1:00 PM", "2:00 PM", "7:00 PM")...)
		case time.Friday: // leaves early
			punches = append(punches, punchesOn(ravi.ID, day, "9:00 AM", "1:00 PM", "2:00 PM", "6:30 PM")...)
		default:
			punches = append(punches, punchesOn(ravi.ID, day, "9:00 AM", "1:00 PM", "2:00 PM", "7:00 PM")...)
		}
	}
	if err := store.AppendPunches(ctx, punches); err != nil {
		return err
	}

	return store.SaveAdvance(ctx, generic.AdvanceDeduction{
		ID:          uuid.NewString(),
		WorkerID:    ravi.ID,
		Date:        month.Start.AddDays(4),
		Amount:      generic.NewMoneyFromInt(1500),
		Description: "Festival advance",
	})
}

// =============================================================================
// SCENARIO: TWO SHIFTS
// =============================================================================

const twoShiftSettings = `{
  "considerOvertime": false,
  "deductSalary": true,
  "permissionTimeMinutes": 10,
  "batches": [
    {"batchName": "General", "from": "09:00", "to": "19:00", "lunchFrom": "13:00", "lunchTo": "14:00"},
    {"batchName": "Morning", "from": "06:00", "to": "14:00", "lunchFrom": "10:00", "lunchTo": "10:30"}
  ],
  "intervals": [
    {"intervalName": "Tea", "from": "16:00", "to": "16:15", "isBreakConsider": false}
  ]
}`

func loadTwoShifts(ctx context.Context, store generic.Store, month generic.Period) error {
	if err := saveSettings(ctx, store, twoShiftSettings); err != nil {
		return err
	}

	meena := generic.Worker{ID: "meena", Name: "Meena Pillai", RFID: "RF-2001", Department: "Dyeing",
		Email: "meena@example.com", Salary: generic.NewMoneyFromInt(24000)}
	arun := generic.Worker{ID: "arun", Name: "Arun Das", RFID: "RF-2002", Department: "Finishing",
		Email: "arun@example.com", Salary: generic.NewMoneyFromInt(26000)}
	for _, w := range []generic.Worker{meena, arun} {
		if err := store.SaveWorker(ctx, w); err != nil {
			return err
		}
	}

	var punches []generic.Punch
	for _, day := range month.Days() {
		if day.IsSunday() {
			continue
		}
		// Morning batch; Tuesdays lunch runs 25 minutes long.
		if day.Weekday() == time.Tuesday {
			punches = append(punches, punchesOn(meena.ID, day, "6:00 AM", "10:00 AM", "10:55 AM", "2:00 PM")...)
		} else {
			punches = append(punches, punchesOn(meena.ID, day, "6:00 AM", "10:00 AM", "10:30 AM", "2:00 PM")...)
		}
		// General batch with a tea break that overruns on Thursdays.
		tea := "4:15 PM"
		if day.Weekday() == time.Thursday {
			tea = "4:40 PM"
		}
		punches = append(punches, punchesOn(arun.ID, day, "9:00 AM", "1:00 PM", "2:00 PM", "4:00 PM", tea, "7:00 PM")...)
	}
	return store.AppendPunches(ctx, punches)
}

// =============================================================================
// HELPERS
// =============================================================================

// punchesOn alternates IN and OUT starting with IN.
func punchesOn(workerID string, day generic.TimePoint, times ...string) []generic.Punch {
	punches := make([]generic.Punch, len(times))
	for i, t := range times {
		status := "IN"
		if i%2 == 1 {
			status = "OUT"
		}
		punches[i] = generic.Punch{
			ID:       uuid.NewString(),
			WorkerID: workerID,
			Date:     day,
			Time:     t,
			Status:   status,
			Source:   "scenario",
		}
	}
	return punches
}

func saveSettings(ctx context.Context, store generic.Store, doc string) error {
	return store.SaveSettings(ctx, generic.SettingsRecord{ConfigJSON: doc, UpdatedAt: time.Now().UTC()})
}

func firstWorkdayOnOrAfter(day generic.TimePoint) generic.TimePoint {
	for day.IsSunday() {
		day = day.AddDays(1)
	}
	return day
}
