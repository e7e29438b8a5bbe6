/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place. The reconciliation engine itself never returns
  errors (bad input degrades to zero values); these are for the layers around it:
  storage, payload parsing, the payroll service and the HTTP API.

ERROR CATEGORIES:
  1. Input errors - inverted periods, malformed payloads, duplicate punches
  2. Lookup errors - missing workers, settings, snapshots

USAGE:
  if errors.Is(err, generic.ErrDuplicatePunch) {
      // the scanner re-sent a punch we already have
  }

SEE ALSO:
  - store.go: Uses these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidPayload is returned when a request document cannot be decoded.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrDuplicatePunch is returned when the same worker/date/time punch is appended twice.
	ErrDuplicatePunch = errors.New("duplicate punch")

	// ErrWorkerNotFound is returned when a referenced worker doesn't exist.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrSettingsNotFound is returned when no schedule settings have been saved yet.
	ErrSettingsNotFound = errors.New("settings not found")

	// ErrSnapshotNotFound is returned when no payroll snapshot exists for a period.
	ErrSnapshotNotFound = errors.New("payroll snapshot not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicatePunchError identifies the punch that already exists.
type DuplicatePunchError struct {
	WorkerID string
	Date     TimePoint
	Time     string
}

func (e *DuplicatePunchError) Error() string {
	return fmt.Sprintf("punch already recorded: worker %s on %s at %s", e.WorkerID, e.Date, e.Time)
}

func (e *DuplicatePunchError) Unwrap() error {
	return ErrDuplicatePunch
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidPayload) ||
		errors.Is(err, ErrDuplicatePunch)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkerNotFound) ||
		errors.Is(err, ErrSettingsNotFound) ||
		errors.Is(err, ErrSnapshotNotFound)
}
