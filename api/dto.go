/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Store records carry
  TimePoint and Money; the wire carries ISO dates and plain numbers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/payload.go: the stateless calculation payload
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// WORKERS
// =============================================================================

type WorkerDTO struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	RFID       string        `json:"rfid"`
	Department string        `json:"department"`
	Email      string        `json:"email"`
	Salary     generic.Money `json:"salary"`
	CreatedAt  time.Time     `json:"created_at"`
}

// CreateWorkerRequest creates or replaces a worker. ID is generated when empty.
type CreateWorkerRequest struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	RFID       string        `json:"rfid"`
	Department string        `json:"department"`
	Email      string        `json:"email"`
	Salary     generic.Money `json:"salary"`
}

func toWorkerDTO(w generic.Worker) WorkerDTO {
	return WorkerDTO{
		ID:         w.ID,
		Name:       w.Name,
		RFID:       w.RFID,
		Department: w.Department,
		Email:      w.Email,
		Salary:     w.Salary,
		CreatedAt:  w.CreatedAt,
	}
}

// =============================================================================
// PUNCHES
// =============================================================================

type PunchDTO struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Status string `json:"status"`
	Source string `json:"source,omitempty"`
}

// AppendPunchesRequest is one scanner upload. The batch is stored atomically.
type AppendPunchesRequest struct {
	Punches []PunchDTO `json:"punches"`
}

func toPunchDTO(p generic.Punch) PunchDTO {
	return PunchDTO{ID: p.ID, Date: p.Date.String(), Time: p.Time, Status: p.Status, Source: p.Source}
}

// =============================================================================
// ADVANCES & HOLIDAYS
// =============================================================================

type AdvanceDTO struct {
	ID          string        `json:"id"`
	Date        string        `json:"date"`
	Amount      generic.Money `json:"amount"`
	Description string        `json:"description"`
}

type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// =============================================================================
// PAYROLL
// =============================================================================

// SnapshotDTO is a closed pay period. Result is the frozen engine output.
type SnapshotDTO struct {
	ID             string          `json:"id"`
	WorkerID       string          `json:"worker_id"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	OriginalSalary generic.Money   `json:"original_salary"`
	TotalDeduction generic.Money   `json:"total_deduction"`
	FinalSalary    generic.Money   `json:"final_salary"`
	Reason         string          `json:"reason"`
	CreatedAt      time.Time       `json:"created_at"`
	Result         json.RawMessage `json:"result,omitempty"`
}

// ClosePeriodRequest names the period either as a month ("2025-03") or as
// from/to dates.
type ClosePeriodRequest struct {
	Month string `json:"month"`
	From  string `json:"from"`
	To    string `json:"to"`
}

func toSnapshotDTO(s generic.PayrollSnapshot, withResult bool) SnapshotDTO {
	dto := SnapshotDTO{
		ID:             s.ID,
		WorkerID:       s.WorkerID,
		From:           s.Period.Start.String(),
		To:             s.Period.End.String(),
		OriginalSalary: s.OriginalSalary,
		TotalDeduction: s.TotalDeduction,
		FinalSalary:    s.FinalSalary,
		Reason:         string(s.Reason),
		CreatedAt:      s.CreatedAt,
	}
	if withResult && s.ResultJSON != "" {
		dto.Result = json.RawMessage(s.ResultJSON)
	}
	return dto
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
