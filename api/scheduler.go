/*
scheduler.go - Automated payroll period close

PURPOSE:
  Periodically closes the previous calendar month: every worker gets a
  payroll snapshot with reason "period_end". Workers already closed for that
  month are skipped by the service, so ticking every hour is harmless.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - Closing is delegated to payroll.Service.ClosePeriod

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewPayrollScheduler(service, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ClosePeriod endpoint (manual close)
  - payroll/service.go: ClosePeriod
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/payroll"
)

// PayrollScheduler closes the previous month on a timer.
type PayrollScheduler struct {
	Service       *payroll.Service
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex

	// clockMu guards today. Separate from mu: Stop holds mu while the run
	// goroutine finishes a close that reads the clock.
	clockMu sync.RWMutex
	today   func() generic.TimePoint
}

// NewPayrollScheduler creates a new scheduler.
func NewPayrollScheduler(service *payroll.Service, logger *slog.Logger) *PayrollScheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PayrollScheduler{
		Service:       service,
		Logger:        logger.With(slog.String("component", "scheduler")),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		today:         generic.Today,
	}
}

// Start begins the scheduler.
func (ps *PayrollScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled || ps.CheckInterval <= 0 {
		ps.Logger.Info("scheduler disabled, not starting")
		return
	}
	if ps.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ps.cancel = cancel
	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.wg.Add(1)

	go ps.run(ctx)

	ps.Logger.Info("scheduler started", slog.Duration("interval", ps.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight close to finish.
func (ps *PayrollScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		ps.cancel()
		ps.wg.Wait()
		ps.ticker = nil
		ps.Logger.Info("scheduler stopped")
	}
}

func (ps *PayrollScheduler) run(ctx context.Context) {
	defer ps.wg.Done()

	// Run immediately on start
	ps.RunNow(ctx)

	for {
		select {
		case <-ps.ticker.C:
			ps.RunNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunNow closes the previous month immediately (for testing/admin).
func (ps *PayrollScheduler) RunNow(ctx context.Context) (payroll.CloseSummary, error) {
	period := generic.PreviousMonth(ps.currentDay())
	ps.Logger.DebugContext(ctx, "closing previous month", slog.String("period", period.String()))

	summary, err := ps.Service.ClosePeriod(ctx, period, generic.SnapshotPeriodEnd)
	if err != nil {
		ps.Logger.ErrorContext(ctx, "period close failed", slog.String("period", period.String()), slog.Any("error", err))
	}
	return summary, err
}

// GetNextRunTime returns when the next scheduled check will occur.
func (ps *PayrollScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(ps.CheckInterval)
}

// SetToday overrides the clock used to pick the month to close. Safe to call
// while the scheduler is running.
func (ps *PayrollScheduler) SetToday(today func() generic.TimePoint) {
	ps.clockMu.Lock()
	defer ps.clockMu.Unlock()
	ps.today = today
}

func (ps *PayrollScheduler) currentDay() generic.TimePoint {
	ps.clockMu.RLock()
	today := ps.today
	ps.clockMu.RUnlock()
	return today()
}
