package factory

import (
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

// =============================================================================
// STORE RECORDS -> ENGINE INPUT
// =============================================================================

// WorkerFromRecord is the engine identity of a stored worker.
func WorkerFromRecord(w generic.Worker) productivity.Worker {
	return productivity.Worker{
		Name:       w.Name,
		RFID:       w.RFID,
		Department: w.Department,
		Email:      w.Email,
		Salary:     w.Salary,
	}
}

// PunchesFromRecords attaches the worker identity to stored punches and
// normalizes their direction labels.
func PunchesFromRecords(w generic.Worker, punches []generic.Punch) []productivity.Punch {
	identity := WorkerFromRecord(w)
	out := make([]productivity.Punch, 0, len(punches))
	for _, p := range punches {
		out = append(out, productivity.Punch{
			Date:      p.Date,
			Time:      p.Time,
			Direction: productivity.ParseDirection(p.Status),
			Worker:    identity,
		})
	}
	return out
}

// AdvancesFromRecords converts stored advance deductions.
func AdvancesFromRecords(advances []generic.AdvanceDeduction) []productivity.Advance {
	out := make([]productivity.Advance, 0, len(advances))
	for _, a := range advances {
		out = append(out, productivity.Advance{Date: a.Date, Amount: a.Amount, Description: a.Description})
	}
	return out
}
