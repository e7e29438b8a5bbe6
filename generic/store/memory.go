// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	workers     map[string]generic.Worker
	punches     map[string][]generic.Punch // by worker, kept sorted by date
	idempotency map[string]bool
	holidays    map[string]generic.Holiday
	advances    map[string][]generic.AdvanceDeduction
	settings    *generic.SettingsRecord
	snapshots   map[snapshotKey]generic.PayrollSnapshot
}

type snapshotKey struct {
	WorkerID string
	Start    string
	End      string
}

func keyFor(workerID string, p generic.Period) snapshotKey {
	return snapshotKey{WorkerID: workerID, Start: p.Start.String(), End: p.End.String()}
}

func NewMemory() *Memory {
	m := &Memory{}
	m.init()
	return m
}

func (m *Memory) init() {
	m.workers = make(map[string]generic.Worker)
	m.punches = make(map[string][]generic.Punch)
	m.idempotency = make(map[string]bool)
	m.holidays = make(map[string]generic.Holiday)
	m.advances = make(map[string][]generic.AdvanceDeduction)
	m.settings = nil
	m.snapshots = make(map[snapshotKey]generic.PayrollSnapshot)
}

var _ generic.Store = (*Memory)(nil)

// =============================================================================
// WORKERS
// =============================================================================

func (m *Memory) SaveWorker(_ context.Context, w generic.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[w.ID] = w
	return nil
}

func (m *Memory) GetWorker(_ context.Context, id string) (*generic.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workers[id]
	if !ok {
		return nil, generic.ErrWorkerNotFound
	}
	return &w, nil
}

func (m *Memory) ListWorkers(_ context.Context) ([]generic.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]generic.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) DeleteWorker(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workers[id]; !ok {
		return generic.ErrWorkerNotFound
	}
	delete(m.workers, id)
	return nil
}

// =============================================================================
// PUNCHES
// =============================================================================

// AppendPunches adds punches atomically. Append-only.
func (m *Memory) AppendPunches(_ context.Context, punches []generic.Punch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check all idempotency keys first (atomic check)
	seen := make(map[string]bool, len(punches))
	for _, p := range punches {
		k := p.IdempotencyKey()
		if m.idempotency[k] || seen[k] {
			return &generic.DuplicatePunchError{WorkerID: p.WorkerID, Date: p.Date, Time: p.Time}
		}
		seen[k] = true
	}

	for _, p := range punches {
		list := m.punches[p.WorkerID]
		// Binary search for insertion point keeps the list sorted by date
		i := sort.Search(len(list), func(i int) bool {
			return list[i].Date.After(p.Date)
		})
		list = append(list, generic.Punch{})
		copy(list[i+1:], list[i:])
		list[i] = p
		m.punches[p.WorkerID] = list
		m.idempotency[p.IdempotencyKey()] = true
	}
	return nil
}

func (m *Memory) LoadPunches(_ context.Context, workerID string, from, to generic.TimePoint) ([]generic.Punch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.Punch
	for _, p := range m.punches[workerID] {
		if from.BeforeOrEqual(p.Date) && p.Date.BeforeOrEqual(to) {
			result = append(result, p)
		}
	}
	return result, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, h generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context, from, to generic.TimePoint) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p := generic.Period{Start: from, End: to}
	var result []generic.Holiday
	for _, h := range m.holidays {
		if p.Contains(h.Date) {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].Name < result[j].Name
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// =============================================================================
// ADVANCES
// =============================================================================

func (m *Memory) SaveAdvance(_ context.Context, a generic.AdvanceDeduction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advances[a.WorkerID] = append(m.advances[a.WorkerID], a)
	return nil
}

func (m *Memory) ListAdvances(_ context.Context, workerID string, from, to generic.TimePoint) ([]generic.AdvanceDeduction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.AdvanceDeduction
	for _, a := range m.advances[workerID] {
		if from.BeforeOrEqual(a.Date) && a.Date.BeforeOrEqual(to) {
			result = append(result, a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) SaveSettings(_ context.Context, s generic.SettingsRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}

func (m *Memory) GetSettings(_ context.Context) (*generic.SettingsRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return nil, generic.ErrSettingsNotFound
	}
	s := *m.settings
	return &s, nil
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func (m *Memory) SaveSnapshot(_ context.Context, s generic.PayrollSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[keyFor(s.WorkerID, s.Period)] = s
	return nil
}

func (m *Memory) GetSnapshot(_ context.Context, workerID string, period generic.Period) (*generic.PayrollSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[keyFor(workerID, period)]
	if !ok {
		return nil, generic.ErrSnapshotNotFound
	}
	return &s, nil
}

func (m *Memory) ListSnapshots(_ context.Context, workerID string) ([]generic.PayrollSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.PayrollSnapshot
	for _, s := range m.snapshots {
		if workerID == "" || s.WorkerID == workerID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Period.Start.Equal(result[j].Period.Start) {
			return result[i].WorkerID < result[j].WorkerID
		}
		return result[i].Period.Start.After(result[j].Period.Start)
	})
	return result, nil
}

// Reset clears everything.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	return nil
}
