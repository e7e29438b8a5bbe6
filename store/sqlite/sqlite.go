/*
Package sqlite provides a SQLite-backed implementation of generic.Store.

PURPOSE:
  Default persistence for the attendance service: workers, raw punches,
  holidays, advance deductions, the settings document and payroll snapshots.
  The PostgreSQL store (store/postgres) implements the same interface with the
  same schema.

APPEND-ONLY PUNCHES:
  - No UPDATE or DELETE statements on the punches table
  - idx_punches_unique rejects a repeated worker+date+time (ErrDuplicatePunch)
  - AppendPunches runs in one SQL transaction: all or nothing

KEY TABLES:
  workers:           Identity and monthly salary
  punches:           Scanner events, append-only
  holidays:          Holiday calendar
  advances:          Advance deductions recovered from pay
  settings:          Single-row schedule settings document
  payroll_snapshots: Closed pay periods, one per worker+period

DATES AND MONEY:
  Days are stored as "YYYY-MM-DD" TEXT so range filters compare as strings.
  Money is stored as decimal TEXT; no float ever touches a salary.

CONCURRENCY:
  sync.RWMutex around every call. SQLite allows a single writer; WAL mode lets
  readers proceed while it writes.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/generic"
)

// Store implements generic.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ generic.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rfid TEXT,
		department TEXT,
		email TEXT,
		salary TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_workers_rfid ON workers(rfid);

	-- Punches (append-only)
	CREATE TABLE IF NOT EXISTS punches (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		punch_date TEXT NOT NULL,
		punch_time TEXT NOT NULL,
		status TEXT,
		source TEXT,
		idempotency_key TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_punches_unique
		ON punches(idempotency_key);

	-- Hot path: one worker, one pay period
	CREATE INDEX IF NOT EXISTS idx_punches_worker_date
		ON punches(worker_id, punch_date);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		holiday_date TEXT NOT NULL,
		name TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(holiday_date);

	CREATE TABLE IF NOT EXISTS advances (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		advance_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_advances_worker_date
		ON advances(worker_id, advance_date);

	-- Single row, id is always 1
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payroll_snapshots (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		original_salary TEXT NOT NULL,
		total_deduction TEXT NOT NULL,
		final_salary TEXT NOT NULL,
		result_json TEXT NOT NULL,
		reason TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_snapshots_worker_period
		ON payroll_snapshots(worker_id, period_start, period_end);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORKERS
// =============================================================================

func (s *Store) SaveWorker(ctx context.Context, w generic.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (id, name, rfid, department, email, salary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rfid = excluded.rfid,
			department = excluded.department,
			email = excluded.email,
			salary = excluded.salary
	`, w.ID, w.Name, w.RFID, w.Department, w.Email, w.Salary.Value.String(), w.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save worker: %w", err)
	}
	return nil
}

func (s *Store) GetWorker(ctx context.Context, id string) (*generic.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, rfid, department, email, salary, created_at
		FROM workers WHERE id = ?
	`, id)
	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrWorkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return &w, nil
}

func (s *Store) ListWorkers(ctx context.Context) ([]generic.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, rfid, department, email, salary, created_at
		FROM workers ORDER BY id
	`)
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
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM workers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrWorkerNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorker(row scanner) (generic.Worker, error) {
	var (
		w                       generic.Worker
		rfid, department, email sql.NullString
		salary, createdAt       string
	)
	if err := row.Scan(&w.ID, &w.Name, &rfid, &department, &email, &salary, &createdAt); err != nil {
		return generic.Worker{}, err
	}
	w.RFID = rfid.String
	w.Department = department.String
	w.Email = email.String
	w.Salary = generic.ParseMoney(salary)
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return w, nil
}

// =============================================================================
// PUNCHES
// =============================================================================

// AppendPunches inserts all punches in one transaction. A duplicate anywhere in
// the batch rolls back the whole batch.
func (s *Store) AppendPunches(ctx context.Context, punches []generic.Punch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(punches))
	for _, p := range punches {
		k := p.IdempotencyKey()
		if seen[k] {
			return &generic.DuplicatePunchError{WorkerID: p.WorkerID, Date: p.Date, Time: p.Time}
		}
		seen[k] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range punches {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO punches (id, worker_id, punch_date, punch_time, status, source, idempotency_key, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.WorkerID, p.Date.String(), p.Time, nullString(p.Status), nullString(p.Source), p.IdempotencyKey(), now)
		if err != nil {
			if isUniqueConstraintError(err) {
				return &generic.DuplicatePunchError{WorkerID: p.WorkerID, Date: p.Date, Time: p.Time}
			}
			return fmt.Errorf("failed to append punch: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) LoadPunches(ctx context.Context, workerID string, from, to generic.TimePoint) ([]generic.Punch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, punch_date, punch_time, status, source
		FROM punches
		WHERE worker_id = ? AND punch_date >= ? AND punch_date <= ?
		ORDER BY punch_date ASC, rowid ASC
	`, workerID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load punches: %w", err)
	}
	defer rows.Close()

	var punches []generic.Punch
	for rows.Next() {
		var (
			p              generic.Punch
			date           string
			status, source sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.WorkerID, &date, &p.Time, &status, &source); err != nil {
			return nil, err
		}
		p.Date, _ = generic.ParseDate(date)
		p.Status = status.String
		p.Source = source.String
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, holiday_date, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET holiday_date = excluded.holiday_date, name = excluded.name
	`, h.ID, h.Date.String(), h.Name)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	return err
}

func (s *Store) ListHolidays(ctx context.Context, from, to generic.TimePoint) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, holiday_date, name FROM holidays
		WHERE holiday_date >= ? AND holiday_date <= ?
		ORDER BY holiday_date ASC, name ASC
	`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var (
			h    generic.Holiday
			date string
		)
		if err := rows.Scan(&h.ID, &date, &h.Name); err != nil {
			return nil, err
		}
		h.Date, _ = generic.ParseDate(date)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// ADVANCES
// =============================================================================

func (s *Store) SaveAdvance(ctx context.Context, a generic.AdvanceDeduction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO advances (id, worker_id, advance_date, amount, description)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.WorkerID, a.Date.String(), a.Amount.Value.String(), a.Description)
	if err != nil {
		return fmt.Errorf("failed to save advance: %w", err)
	}
	return nil
}

func (s *Store) ListAdvances(ctx context.Context, workerID string, from, to generic.TimePoint) ([]generic.AdvanceDeduction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, advance_date, amount, description FROM advances
		WHERE worker_id = ? AND advance_date >= ? AND advance_date <= ?
		ORDER BY advance_date ASC, rowid ASC
	`, workerID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	defer rows.Close()

	var advances []generic.AdvanceDeduction
	for rows.Next() {
		var (
			a            generic.AdvanceDeduction
			date, amount string
			description  sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.WorkerID, &date, &amount, &description); err != nil {
			return nil, err
		}
		a.Date, _ = generic.ParseDate(date)
		a.Amount = generic.ParseMoney(amount)
		a.Description = description.String
		advances = append(advances, a)
	}
	return advances, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) SaveSettings(ctx context.Context, rec generic.SettingsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, config_json, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json, updated_at = excluded.updated_at
	`, rec.ConfigJSON, rec.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *Store) GetSettings(ctx context.Context) (*generic.SettingsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rec       generic.SettingsRecord
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `SELECT config_json, updated_at FROM settings WHERE id = 1`).
		Scan(&rec.ConfigJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &rec, nil
}

// =============================================================================
// SNAPSHOTS (generic.SnapshotStore interface)
// =============================================================================

// SaveSnapshot inserts or replaces the snapshot for (worker, period).
func (s *Store) SaveSnapshot(ctx context.Context, snap generic.PayrollSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payroll_snapshots
		(id, worker_id, period_start, period_end, original_salary, total_deduction, final_salary, result_json, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, period_start, period_end) DO UPDATE SET
			id = excluded.id,
			original_salary = excluded.original_salary,
			total_deduction = excluded.total_deduction,
			final_salary = excluded.final_salary,
			result_json = excluded.result_json,
			reason = excluded.reason,
			created_at = excluded.created_at
	`,
		snap.ID,
		snap.WorkerID,
		snap.Period.Start.String(),
		snap.Period.End.String(),
		snap.OriginalSalary.Value.String(),
		snap.TotalDeduction.Value.String(),
		snap.FinalSalary.Value.String(),
		snap.ResultJSON,
		string(snap.Reason),
		snap.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, workerID string, period generic.Period) (*generic.PayrollSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, snapshotColumns+`
		WHERE worker_id = ? AND period_start = ? AND period_end = ?
	`, workerID, period.Start.String(), period.End.String())
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &snap, nil
}

func (s *Store) ListSnapshots(ctx context.Context, workerID string) ([]generic.PayrollSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, snapshotColumns+`
		WHERE (? = '' OR worker_id = ?)
		ORDER BY period_start DESC, worker_id ASC
	`, workerID, workerID)
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

const snapshotColumns = `
	SELECT id, worker_id, period_start, period_end, original_salary, total_deduction,
	       final_salary, result_json, reason, created_at
	FROM payroll_snapshots`

func scanSnapshot(row scanner) (generic.PayrollSnapshot, error) {
	var (
		snap                       generic.PayrollSnapshot
		start, end                 string
		original, deduction, final string
		reason, createdAt          string
	)
	err := row.Scan(&snap.ID, &snap.WorkerID, &start, &end, &original, &deduction, &final,
		&snap.ResultJSON, &reason, &createdAt)
	if err != nil {
		return generic.PayrollSnapshot{}, err
	}
	snap.Period.Start, _ = generic.ParseDate(start)
	snap.Period.End, _ = generic.ParseDate(end)
	snap.OriginalSalary = generic.ParseMoney(original)
	snap.TotalDeduction = generic.ParseMoney(deduction)
	snap.FinalSalary = generic.ParseMoney(final)
	snap.Reason = generic.SnapshotReason(reason)
	snap.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return snap, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"punches", "advances", "holidays", "settings", "payroll_snapshots", "workers"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
