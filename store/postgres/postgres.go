/*
Package postgres provides a PostgreSQL implementation of generic.Store on pgx.

PURPOSE:
  Same tables and semantics as store/sqlite, for deployments that already run
  PostgreSQL. Days are DATE, money is unconstrained NUMERIC, and the punch
  idempotency key is a unique index.

CONNECTION POOL:
  pgxpool with MaxConns 25 / MinConns 5, pinged on startup.

CONCURRENCY:
  No process-level lock: PostgreSQL handles it. AppendPunches is a single
  transaction, so a duplicate anywhere rolls back the whole batch.

SEE ALSO:
  - store/sqlite/sqlite.go: default store
  - generic/store.go: interface definitions
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warp/attendance-engine/generic"
)

const uniqueViolation = "23505"

// Store implements generic.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ generic.Store = (*Store)(nil)

// New connects to dsn, pings it and migrates the schema.
func New(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dsn: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rfid TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		salary NUMERIC NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS punches (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		punch_date DATE NOT NULL,
		punch_time TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		idempotency_key TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_punches_worker_date ON punches(worker_id, punch_date);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		holiday_date DATE NOT NULL,
		name TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(holiday_date);

	CREATE TABLE IF NOT EXISTS advances (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		advance_date DATE NOT NULL,
		amount NUMERIC NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_advances_worker_date ON advances(worker_id, advance_date);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payroll_snapshots (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		period_start DATE NOT NULL,
		period_end DATE NOT NULL,
		original_salary NUMERIC NOT NULL,
		total_deduction NUMERIC NOT NULL,
		final_salary NUMERIC NOT NULL,
		result_json JSONB NOT NULL,
		reason TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (worker_id, period_start, period_end)
	);
	`)
	return err
}

// =============================================================================
// WORKERS
// =============================================================================

func (s *Store) SaveWorker(ctx context.Context, w generic.Worker) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO workers (id, name, rfid, department, email, salary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			rfid = EXCLUDED.rfid,
			department = EXCLUDED.department,
			email = EXCLUDED.email,
			salary = EXCLUDED.salary
	`, w.ID, w.Name, w.RFID, w.Department, w.Email, w.Salary.Value.String(), w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save worker: %w", err)
	}
	return nil
}

const workerColumns = `SELECT id, name, rfid, department, email, salary::text, created_at FROM workers`

func (s *Store) GetWorker(ctx context.Context, id string) (*generic.Worker, error) {
	w, err := scanWorker(s.pool.QueryRow(ctx, workerColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, generic.ErrWorkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return &w, nil
}

func (s *Store) ListWorkers(ctx context.Context) ([]generic.Worker, error) {
	rows, err := s.pool.Query(ctx, workerColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	workers := []generic.Worker{}
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (s *Store) DeleteWorker(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM workers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return generic.ErrWorkerNotFound
	}
	return nil
}

func scanWorker(row pgx.Row) (generic.Worker, error) {
	var (
		w      generic.Worker
		salary string
	)
	if err := row.Scan(&w.ID, &w.Name, &w.RFID, &w.Department, &w.Email, &salary, &w.CreatedAt); err != nil {
		return generic.Worker{}, err
	}
	w.Salary = generic.ParseMoney(salary)
	return w, nil
}

// =============================================================================
// PUNCHES
// =============================================================================

func (s *Store) AppendPunches(ctx context.Context, punches []generic.Punch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range punches {
		_, err := tx.Exec(ctx, `
			INSERT INTO punches (id, worker_id, punch_date, punch_time, status, source, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.ID, p.WorkerID, p.Date.Time, p.Time, p.Status, p.Source, p.IdempotencyKey())
		if err != nil {
			if isUniqueViolation(err) {
				return &generic.DuplicatePunchError{WorkerID: p.WorkerID, Date: p.Date, Time: p.Time}
			}
			return fmt.Errorf("failed to append punch: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) LoadPunches(ctx context.Context, workerID string, from, to generic.TimePoint) ([]generic.Punch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, worker_id, punch_date, punch_time, status, source
		FROM punches
		WHERE worker_id = $1 AND punch_date BETWEEN $2 AND $3
		ORDER BY punch_date ASC, seq ASC
	`, workerID, from.Time, to.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to load punches: %w", err)
	}
	defer rows.Close()

	var punches []generic.Punch
	for rows.Next() {
		var (
			p    generic.Punch
			date time.Time
		)
		if err := rows.Scan(&p.ID, &p.WorkerID, &date, &p.Time, &p.Status, &p.Source); err != nil {
			return nil, err
		}
		p.Date = generic.DayOf(date)
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO holidays (id, holiday_date, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET holiday_date = EXCLUDED.holiday_date, name = EXCLUDED.name
	`, h.ID, h.Date.Time, h.Name)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	return err
}

func (s *Store) ListHolidays(ctx context.Context, from, to generic.TimePoint) ([]generic.Holiday, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, holiday_date, name FROM holidays
		WHERE holiday_date BETWEEN $1 AND $2
		ORDER BY holiday_date ASC, name ASC
	`, from.Time, to.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var (
			h    generic.Holiday
			date time.Time
		)
		if err := rows.Scan(&h.ID, &date, &h.Name); err != nil {
			return nil, err
		}
		h.Date = generic.DayOf(date)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// ADVANCES
// =============================================================================

func (s *Store) SaveAdvance(ctx context.Context, a generic.AdvanceDeduction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO advances (id, worker_id, advance_date, amount, description)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.WorkerID, a.Date.Time, a.Amount.Value.String(), a.Description)
	if err != nil {
		return fmt.Errorf("failed to save advance: %w", err)
	}
	return nil
}

func (s *Store) ListAdvances(ctx context.Context, workerID string, from, to generic.TimePoint) ([]generic.AdvanceDeduction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, worker_id, advance_date, amount::text, description FROM advances
		WHERE worker_id = $1 AND advance_date BETWEEN $2 AND $3
		ORDER BY advance_date ASC, seq ASC
	`, workerID, from.Time, to.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	defer rows.Close()

	var advances []generic.AdvanceDeduction
	for rows.Next() {
		var (
			a      generic.AdvanceDeduction
			date   time.Time
			amount string
		)
		if err := rows.Scan(&a.ID, &a.WorkerID, &date, &amount, &a.Description); err != nil {
			return nil, err
		}
		a.Date = generic.DayOf(date)
		a.Amount = generic.ParseMoney(amount)
		advances = append(advances, a)
	}
	return advances, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) SaveSettings(ctx context.Context, rec generic.SettingsRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (id, config_json, updated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET config_json = EXCLUDED.config_json, updated_at = EXCLUDED.updated_at
	`, rec.ConfigJSON, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *Store) GetSettings(ctx context.Context) (*generic.SettingsRecord, error) {
	var rec generic.SettingsRecord
	err := s.pool.QueryRow(ctx, `SELECT config_json::text, updated_at FROM settings WHERE id = 1`).
		Scan(&rec.ConfigJSON, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, generic.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &rec, nil
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func (s *Store) SaveSnapshot(ctx context.Context, snap generic.PayrollSnapshot) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payroll_snapshots
		(id, worker_id, period_start, period_end, original_salary, total_deduction, final_salary, result_json, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (worker_id, period_start, period_end) DO UPDATE SET
			id = EXCLUDED.id,
			original_salary = EXCLUDED.original_salary,
			total_deduction = EXCLUDED.total_deduction,
			final_salary = EXCLUDED.final_salary,
			result_json = EXCLUDED.result_json,
			reason = EXCLUDED.reason,
			created_at = EXCLUDED.created_at
	`,
		snap.ID,
		snap.WorkerID,
		snap.Period.Start.Time,
		snap.Period.End.Time,
		snap.OriginalSalary.Value.String(),
		snap.TotalDeduction.Value.String(),
		snap.FinalSalary.Value.String(),
		snap.ResultJSON,
		string(snap.Reason),
		snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

const snapshotColumns = `
	SELECT id, worker_id, period_start, period_end, original_salary::text, total_deduction::text,
	       final_salary::text, result_json::text, reason, created_at
	FROM payroll_snapshots`

func (s *Store) GetSnapshot(ctx context.Context, workerID string, period generic.Period) (*generic.PayrollSnapshot, error) {
	snap, err := scanSnapshot(s.pool.QueryRow(ctx, snapshotColumns+`
		WHERE worker_id = $1 AND period_start = $2 AND period_end = $3
	`, workerID, period.Start.Time, period.End.Time))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, generic.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &snap, nil
}

func (s *Store) ListSnapshots(ctx context.Context, workerID string) ([]generic.PayrollSnapshot, error) {
	rows, err := s.pool.Query(ctx, snapshotColumns+`
		WHERE ($1 = '' OR worker_id = $1)
		ORDER BY period_start DESC, worker_id ASC
	`, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []generic.PayrollSnapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func scanSnapshot(row pgx.Row) (generic.PayrollSnapshot, error) {
	var (
		snap                       generic.PayrollSnapshot
		start, end                 time.Time
		original, deduction, final string
		reason                     string
	)
	err := row.Scan(&snap.ID, &snap.WorkerID, &start, &end, &original, &deduction, &final,
		&snap.ResultJSON, &reason, &snap.CreatedAt)
	if err != nil {
		return generic.PayrollSnapshot{}, err
	}
	snap.Period = generic.Period{Start: generic.DayOf(start), End: generic.DayOf(end)}
	snap.OriginalSalary = generic.ParseMoney(original)
	snap.TotalDeduction = generic.ParseMoney(deduction)
	snap.FinalSalary = generic.ParseMoney(final)
	snap.Reason = generic.SnapshotReason(reason)
	return snap, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE punches, advances, holidays, settings, payroll_snapshots, workers`)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
