/*
Package payroll runs the productivity engine against stored data.

PURPOSE:
  The engine is pure. This service is the I/O around it: it loads one worker's
  punches, advances, the holiday calendar and the settings document for a
  period, runs the engine, and freezes closed periods into payroll snapshots.

CLOSING A PERIOD:
  ClosePeriod computes every worker and saves one snapshot per worker. A worker
  that already has a snapshot for the period is skipped, so closing the same
  month twice is harmless. One worker failing does not stop the others.

SEE ALSO:
  - productivity/calculate.go: the engine
  - factory/settings.go: settings document to engine options
  - api/scheduler.go: closes the previous month on a timer
*/
package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

// Service computes and closes payroll periods.
type Service struct {
	Store    generic.Store
	Settings *factory.SettingsFactory
	Logger   *slog.Logger

	now func() time.Time
}

// NewService creates a service. A nil logger discards output.
func NewService(store generic.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		Store:    store,
		Settings: factory.NewSettingsFactory(),
		Logger:   logger,
		now:      time.Now,
	}
}

// =============================================================================
// COMPUTE
// =============================================================================

// Params loads everything one engine run needs. batch selects the shift; empty
// means the first configured batch.
func (s *Service) Params(ctx context.Context, workerID string, period generic.Period, batch string) (productivity.Params, error) {
	if err := period.Validate(); err != nil {
		return productivity.Params{}, err
	}

	worker, err := s.Store.GetWorker(ctx, workerID)
	if err != nil {
		return productivity.Params{}, fmt.Errorf("load worker %s: %w", workerID, err)
	}
	punches, err := s.Store.LoadPunches(ctx, workerID, period.Start, period.End)
	if err != nil {
		return productivity.Params{}, fmt.Errorf("load punches: %w", err)
	}
	advances, err := s.Store.ListAdvances(ctx, workerID, period.Start, period.End)
	if err != nil {
		return productivity.Params{}, fmt.Errorf("load advances: %w", err)
	}
	holidays, err := s.Store.ListHolidays(ctx, period.Start, period.End)
	if err != nil {
		return productivity.Params{}, fmt.Errorf("load holidays: %w", err)
	}

	settings, err := s.Store.GetSettings(ctx)
	if err != nil && !errors.Is(err, generic.ErrSettingsNotFound) {
		return productivity.Params{}, fmt.Errorf("load settings: %w", err)
	}
	opts, err := s.Settings.Options(settings, holidays, batch)
	if err != nil {
		return productivity.Params{}, err
	}

	identity := factory.WorkerFromRecord(*worker)
	return productivity.Params{
		Attendance: factory.PunchesFromRecords(*worker, punches),
		Period:     period,
		Advances:   factory.AdvancesFromRecords(advances),
		Options:    opts,
		Worker:     &identity,
	}, nil
}

// Compute reconciles one worker over a period.
func (s *Service) Compute(ctx context.Context, workerID string, period generic.Period, batch string) (productivity.Result, error) {
	params, err := s.Params(ctx, workerID, period, batch)
	if err != nil {
		return productivity.Result{}, err
	}

	result := productivity.CalculateWorkerProductivity(params)
	if n := len(result.Warnings); n > 0 {
		s.Logger.WarnContext(ctx, "reconciliation completed with warnings",
			slog.String("worker_id", workerID),
			slog.String("period", period.String()),
			slog.Int("warnings", n))
	}
	return result, nil
}

// =============================================================================
// CLOSE
// =============================================================================

// CloseSummary reports what a ClosePeriod call did.
type CloseSummary struct {
	Period  generic.Period `json:"-"`
	From    string         `json:"from"`
	To      string         `json:"to"`
	Closed  int            `json:"closed"`
	Skipped int            `json:"skipped"`
	Failed  int            `json:"failed"`
}

// ClosePeriod snapshots every worker for the period.
func (s *Service) ClosePeriod(ctx context.Context, period generic.Period, reason generic.SnapshotReason) (CloseSummary, error) {
	summary := CloseSummary{Period: period, From: period.Start.String(), To: period.End.String()}
	if err := period.Validate(); err != nil {
		return summary, err
	}

	workers, err := s.Store.ListWorkers(ctx)
	if err != nil {
		return summary, fmt.Errorf("list workers: %w", err)
	}

	for _, w := range workers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		_, err := s.Store.GetSnapshot(ctx, w.ID, period)
		switch {
		case err == nil:
			summary.Skipped++
			continue
		case !errors.Is(err, generic.ErrSnapshotNotFound):
			s.Logger.ErrorContext(ctx, "snapshot lookup failed", slog.String("worker_id", w.ID), slog.Any("error", err))
			summary.Failed++
			continue
		}

		if _, err := s.CloseWorker(ctx, w.ID, period, reason); err != nil {
			s.Logger.ErrorContext(ctx, "close worker failed", slog.String("worker_id", w.ID), slog.Any("error", err))
			summary.Failed++
			continue
		}
		summary.Closed++
	}

	s.Logger.InfoContext(ctx, "payroll period closed",
		slog.String("period", period.String()),
		slog.Int("closed", summary.Closed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

// CloseWorker computes one worker and saves (or replaces) its snapshot.
func (s *Service) CloseWorker(ctx context.Context, workerID string, period generic.Period, reason generic.SnapshotReason) (*generic.PayrollSnapshot, error) {
	result, err := s.Compute(ctx, workerID, period, "")
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	snap := generic.PayrollSnapshot{
		ID:             uuid.NewString(),
		WorkerID:       workerID,
		Period:         period,
		OriginalSalary: result.Summary.OriginalSalary,
		TotalDeduction: result.Summary.TotalDeduction,
		FinalSalary:    result.Summary.FinalSalary,
		ResultJSON:     string(raw),
		Reason:         reason,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.Store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return &snap, nil
}
