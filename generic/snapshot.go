package generic

import (
	"context"
	"time"
)

// =============================================================================
// SNAPSHOT - Frozen payroll result for a closed pay period
// =============================================================================

// PayrollSnapshot captures the reconciliation of one worker for one period.
// Used for:
//   - Salary payout (FinalSalary is what gets paid)
//   - Audit trail (ResultJSON is the full report as computed at close time)
//   - Fast reads (avoid recomputing from punches)
type PayrollSnapshot struct {
	ID       string
	WorkerID string

	// The period this snapshot closes
	Period Period

	OriginalSalary Money
	TotalDeduction Money
	FinalSalary    Money

	// Full engine output, JSON-encoded
	ResultJSON string

	Reason    SnapshotReason
	CreatedAt time.Time
}

type SnapshotReason string

const (
	SnapshotPeriodEnd SnapshotReason = "period_end" // Scheduler closed the month
	SnapshotManual    SnapshotReason = "manual"     // Admin triggered
)

// =============================================================================
// SNAPSHOT STORE - Persistence for snapshots
// =============================================================================

type SnapshotStore interface {
	// SaveSnapshot inserts or replaces the snapshot for (worker, period).
	SaveSnapshot(ctx context.Context, s PayrollSnapshot) error
	// GetSnapshot returns ErrSnapshotNotFound when the period is still open.
	GetSnapshot(ctx context.Context, workerID string, period Period) (*PayrollSnapshot, error)
	// ListSnapshots returns snapshots newest period first. Empty workerID lists all.
	ListSnapshots(ctx context.Context, workerID string) ([]PayrollSnapshot, error)
}
