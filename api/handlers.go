/*
handlers.go - HTTP API handlers for the attendance reconciliation service

PURPOSE:
  Exposes the productivity engine and its stored inputs via REST API. Handles
  HTTP request/response and JSON serialization, and delegates to the payroll
  service for anything that runs the engine.

ENDPOINTS:
  Workers:
    GET    /api/workers                         List workers
    POST   /api/workers                         Create or replace worker
    GET    /api/workers/{id}                    Get worker
    DELETE /api/workers/{id}                    Delete worker

  Attendance:
    GET    /api/workers/{id}/punches?from&to    Punches in range
    POST   /api/workers/{id}/punches            Append a punch batch (atomic)
    GET    /api/workers/{id}/advances?from&to   Advances in range
    POST   /api/workers/{id}/advances           Record an advance

  Reconciliation:
    GET    /api/workers/{id}/productivity       Engine result from stored data
    GET    /api/workers/{id}/report.csv         Delay report as CSV
    POST   /api/productivity                    Stateless: payload in, result out

  Settings & calendar:
    GET/PUT /api/settings                       Schedule settings document
    GET    /api/holidays?from&to                POST /api/holidays   DELETE /api/holidays/{id}

  Payroll:
    GET    /api/payroll/snapshots?worker_id     Closed periods
    POST   /api/payroll/close                   Close a period now

ERROR HANDLING:
  Errors are returned as JSON {error, details} with HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate punch
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - report.go: CSV rendering
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/productivity"
)

const (
	maxBodyBytes = 10 << 20

	// maxPeriodDays bounds one request's [from, to]. The engine builds a
	// record and report rows for every day in the period.
	maxPeriodDays = 366
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    generic.Store
	Payroll  *payroll.Service
	Payloads *factory.PayloadFactory
	Logger   *slog.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store generic.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		Store:    store,
		Payroll:  payroll.NewService(store, logger),
		Payloads: factory.NewPayloadFactory(),
		Logger:   logger,
	}
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListWorkers returns all workers.
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Store.ListWorkers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workers", err)
		return
	}

	dtos := make([]WorkerDTO, len(workers))
	for i, wk := range workers {
		dtos[i] = toWorkerDTO(wk)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWorker creates or replaces a worker.
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if req.Salary.IsNegative() {
		writeError(w, http.StatusBadRequest, "Salary must not be negative", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	worker := generic.Worker{
		ID:         req.ID,
		Name:       req.Name,
		RFID:       req.RFID,
		Department: req.Department,
		Email:      req.Email,
		Salary:     req.Salary,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.SaveWorker(r.Context(), worker); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save worker", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkerDTO(worker))
}

// GetWorker returns one worker.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	worker, err := h.Store.GetWorker(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Failed to get worker", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(*worker))
}

// DeleteWorker removes a worker. Punches and snapshots are kept.
func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteWorker(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete worker", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ListPunches returns a worker's punches in [from, to].
func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	workerID := chi.URLParam(r, "id")
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	punches, err := h.Store.LoadPunches(r.Context(), workerID, period.Start, period.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
		return
	}

	dtos := make([]PunchDTO, len(punches))
	for i, p := range punches {
		dtos[i] = toPunchDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AppendPunches stores a batch of punches. A duplicate anywhere rejects the
// whole batch with 409.
func (h *Handler) AppendPunches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workerID := chi.URLParam(r, "id")

	if _, err := h.Store.GetWorker(ctx, workerID); err != nil {
		writeStoreError(w, "Failed to get worker", err)
		return
	}

	var req AppendPunchesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Punches) == 0 {
		writeError(w, http.StatusBadRequest, "At least one punch is required", nil)
		return
	}

	punches := make([]generic.Punch, 0, len(req.Punches))
	for i, p := range req.Punches {
		date, err := generic.ParseDate(p.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("punches[%d]: invalid date", i), err)
			return
		}
		if _, ok := generic.ParseAttendanceTimeChecked(p.Time); !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("punches[%d]: invalid time %q (use H:MM AM/PM)", i, p.Time), nil)
			return
		}
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		punches = append(punches, generic.Punch{
			ID:       id,
			WorkerID: workerID,
			Date:     date,
			Time:     strings.TrimSpace(p.Time),
			Status:   p.Status,
			Source:   p.Source,
		})
	}

	if err := h.Store.AppendPunches(ctx, punches); err != nil {
		writeStoreError(w, "Failed to append punches", err)
		return
	}

	dtos := make([]PunchDTO, len(punches))
	for i, p := range punches {
		dtos[i] = toPunchDTO(p)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// ListAdvances returns a worker's advances in [from, to].
func (h *Handler) ListAdvances(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	advances, err := h.Store.ListAdvances(r.Context(), chi.URLParam(r, "id"), period.Start, period.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list advances", err)
		return
	}

	dtos := make([]AdvanceDTO, 0, len(advances))
	for _, a := range advances {
		dtos = append(dtos, AdvanceDTO{ID: a.ID, Date: a.Date.String(), Amount: a.Amount, Description: a.Description})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAdvance records a salary advance for a worker.
func (h *Handler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workerID := chi.URLParam(r, "id")

	if _, err := h.Store.GetWorker(ctx, workerID); err != nil {
		writeStoreError(w, "Failed to get worker", err)
		return
	}

	var req AdvanceDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Amount must be positive", nil)
		return
	}

	advance := generic.AdvanceDeduction{
		ID:          uuid.NewString(),
		WorkerID:    workerID,
		Date:        date,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if err := h.Store.SaveAdvance(ctx, advance); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save advance", err)
		return
	}

	writeJSON(w, http.StatusCreated, AdvanceDTO{
		ID: advance.ID, Date: advance.Date.String(), Amount: advance.Amount, Description: advance.Description,
	})
}

// =============================================================================
// RECONCILIATION HANDLERS
// =============================================================================

// GetProductivity runs the engine over stored data.
// GET /api/workers/{id}/productivity?from=2025-03-01&to=2025-03-31&batch=General
func (h *Handler) GetProductivity(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetReportCSV runs the engine and returns only the delay report, as CSV.
func (h *Handler) GetReportCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("report-%s-%s.csv", chi.URLParam(r, "id"), result.Configuration.FromDate)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := writeReportCSV(w, result.Report); err != nil {
		h.Logger.ErrorContext(r.Context(), "failed to write csv report", slog.Any("error", err))
	}
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request) (productivity.Result, bool) {
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return productivity.Result{}, false
	}

	result, err := h.Payroll.Compute(r.Context(), chi.URLParam(r, "id"), period, r.URL.Query().Get("batch"))
	if err != nil {
		writeStoreError(w, "Failed to compute productivity", err)
		return productivity.Result{}, false
	}
	return result, true
}

// Calculate is the stateless endpoint: the full calculation payload in, the
// engine result out. Nothing is read from or written to the store.
// POST /api/productivity
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	params, err := h.Payloads.ParsePayload(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload", err)
		return
	}
	if err := checkPeriod(params.Period); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	writeJSON(w, http.StatusOK, productivity.CalculateWorkerProductivity(params))
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the effective settings document (defaults before the
// first save).
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetSettings(r.Context())
	if err != nil && !errors.Is(err, generic.ErrSettingsNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to get settings", err)
		return
	}

	opts, err := h.Payroll.Settings.Options(rec, nil, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored settings are invalid", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Payroll.Settings.ToJSON(opts))
}

// PutSettings validates and replaces the settings document.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	opts, err := h.Payroll.Settings.ParseSettings(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}
	if err := validateBatches(opts.Batches); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}

	normalized, err := json.Marshal(h.Payroll.Settings.ToJSON(opts))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode settings", err)
		return
	}
	if err := h.Store.SaveSettings(r.Context(), generic.SettingsRecord{ConfigJSON: string(normalized), UpdatedAt: time.Now().UTC()}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(normalized)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns holidays in [from, to]. Without a range, the current year.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	period := yearOf(generic.Today())
	if r.URL.Query().Get("from") != "" || r.URL.Query().Get("to") != "" {
		var err error
		if period, err = periodFromQuery(r); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period", err)
			return
		}
	}

	holidays, err := h.Store.ListHolidays(r.Context(), period.Start, period.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, HolidayDTO{ID: hol.ID, Date: hol.Date.String(), Name: hol.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday creates a new holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Date and name are required", nil)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	holiday := generic.Holiday{ID: uuid.NewString(), Date: date, Name: req.Name}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create holiday", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "created",
		"holiday": holiday.ID,
	})
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// ListSnapshots returns closed periods, optionally for one worker. The frozen
// result is included only when a worker is named.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	workerID := r.URL.Query().Get("worker_id")
	snaps, err := h.Store.ListSnapshots(r.Context(), workerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list snapshots", err)
		return
	}

	dtos := make([]SnapshotDTO, len(snaps))
	for i, s := range snaps {
		dtos[i] = toSnapshotDTO(s, workerID != "")
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ClosePeriod snapshots every worker for a period now.
// POST /api/payroll/close {"month": "2025-03"} or {"from": ..., "to": ...}
func (h *Handler) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	var req ClosePeriodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period, err := req.period()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	summary, err := h.Payroll.ClosePeriod(r.Context(), period, generic.SnapshotManual)
	if err != nil {
		writeStoreError(w, "Failed to close period", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (req ClosePeriodRequest) period() (generic.Period, error) {
	if req.Month != "" {
		return generic.ParseMonth(req.Month)
	}
	return parsePeriod(req.From, req.To)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError picks the status from the error kind.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, generic.ErrDuplicatePunch):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

// periodFromQuery reads ?from=&to=. Both are required.
func periodFromQuery(r *http.Request) (generic.Period, error) {
	q := r.URL.Query()
	return parsePeriod(q.Get("from"), q.Get("to"))
}

func parsePeriod(from, to string) (generic.Period, error) {
	if from == "" || to == "" {
		return generic.Period{}, errors.New("from and to are required (YYYY-MM-DD)")
	}
	start, err := generic.ParseDate(from)
	if err != nil {
		return generic.Period{}, err
	}
	end, err := generic.ParseDate(to)
	if err != nil {
		return generic.Period{}, err
	}
	period := generic.Period{Start: start, End: end}
	return period, checkPeriod(period)
}

// checkPeriod rejects inverted periods and periods longer than maxPeriodDays.
func checkPeriod(p generic.Period) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if n := p.Len(); n > maxPeriodDays {
		return fmt.Errorf("%w: %d days, at most %d allowed", generic.ErrInvalidPeriod, n, maxPeriodDays)
	}
	return nil
}

// validateBatches requires at least one batch whose shift ends after it starts.
func validateBatches(batches []productivity.Batch) error {
	if len(batches) == 0 {
		return errors.New("at least one batch is required")
	}
	for _, b := range batches {
		if generic.TimeToMinutes(b.To) <= generic.TimeToMinutes(b.From) {
			return fmt.Errorf("batch %q: shift must end after it starts", b.Name)
		}
	}
	return nil
}

func yearOf(day generic.TimePoint) generic.Period {
	return generic.Period{
		Start: generic.NewTimePoint(day.Year(), time.January, 1),
		End:   generic.NewTimePoint(day.Year(), time.December, 31),
	}
}
