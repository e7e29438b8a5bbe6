/*
store.go - Persistence interface for attendance data

PURPOSE:
  Defines the interface between the payroll service and the database.
  The reconciliation engine is pure and never touches the store; the payroll
  service loads everything an engine run needs, runs it, and persists snapshots.

KEY INTERFACES:
  WorkerStore:   Worker records (identity + monthly salary)
  PunchStore:    Raw scanner punches, append-only
  HolidayStore:  Holiday calendar
  AdvanceStore:  Pre-recorded advance deductions
  SettingsStore: The schedule settings document (batches, intervals, toggles)
  SnapshotStore: Closed pay periods (see snapshot.go)

APPEND-ONLY PUNCHES:
  Punches are never updated. A batch append is all-or-nothing, and a punch that
  repeats worker+date+time is rejected with ErrDuplicatePunch so a scanner that
  retries an upload cannot double a day.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite (default)
  - store/postgres/postgres.go: PostgreSQL via pgx
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - payroll/service.go: The only consumer
  - errors.go: Errors returned by implementations
*/
package generic

import (
	"context"
	"strings"
	"time"
)

// =============================================================================
// RECORDS
// =============================================================================

// Worker is an employee whose punches are reconciled.
type Worker struct {
	ID         string
	Name       string
	RFID       string
	Department string
	Email      string
	Salary     Money // monthly
	CreatedAt  time.Time
}

// Punch is one scanner event as stored. Status keeps whatever label the device
// sent ("IN", "OUT", or empty); the engine normalizes it.
type Punch struct {
	ID       string
	WorkerID string
	Date     TimePoint
	Time     string // "H:MM[:SS] AM/PM"
	Status   string
	Source   string // device or import that produced it
}

// IdempotencyKey identifies a punch independently of its ID.
func (p Punch) IdempotencyKey() string {
	return p.WorkerID + "|" + p.Date.String() + "|" + strings.ToUpper(strings.TrimSpace(p.Time))
}

// AdvanceDeduction is a salary advance recovered from a pay period.
type AdvanceDeduction struct {
	ID          string
	WorkerID    string
	Date        TimePoint
	Amount      Money
	Description string
}

// SettingsRecord holds the schedule settings JSON document.
// factory.SettingsFactory parses it into engine options.
type SettingsRecord struct {
	ConfigJSON string
	UpdatedAt  time.Time
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

type WorkerStore interface {
	SaveWorker(ctx context.Context, w Worker) error
	// GetWorker returns ErrWorkerNotFound when id is unknown.
	GetWorker(ctx context.Context, id string) (*Worker, error)
	ListWorkers(ctx context.Context) ([]Worker, error)
	DeleteWorker(ctx context.Context, id string) error
}

type PunchStore interface {
	// AppendPunches persists punches atomically. Either all are written or none.
	AppendPunches(ctx context.Context, punches []Punch) error

	// LoadPunches returns a worker's punches with Date in [from, to], ordered by date.
	LoadPunches(ctx context.Context, workerID string, from, to TimePoint) ([]Punch, error)
}

type HolidayStore interface {
	SaveHoliday(ctx context.Context, h Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
	// ListHolidays returns holidays in [from, to] ordered by date.
	ListHolidays(ctx context.Context, from, to TimePoint) ([]Holiday, error)
}

type AdvanceStore interface {
	SaveAdvance(ctx context.Context, a AdvanceDeduction) error
	ListAdvances(ctx context.Context, workerID string, from, to TimePoint) ([]AdvanceDeduction, error)
}

type SettingsStore interface {
	SaveSettings(ctx context.Context, s SettingsRecord) error
	// GetSettings returns ErrSettingsNotFound before the first save.
	GetSettings(ctx context.Context) (*SettingsRecord, error)
}

// Store is everything the payroll service needs.
type Store interface {
	WorkerStore
	PunchStore
	HolidayStore
	AdvanceStore
	SettingsStore
	SnapshotStore

	// Reset clears all data. Development and demo scenarios only.
	Reset(ctx context.Context) error
}
