package events

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps runs and tasks in process memory. Nothing survives a
// restart, so it only suits tests and local development.
type MemoryStore struct {
	mu    sync.Mutex
	steps map[string]map[string][]byte
	tasks map[string]Task
	locks map[string]time.Time
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		steps: make(map[string]map[string][]byte),
		tasks: make(map[string]Task),
		locks: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (m *MemoryStore) LoadStep(ctx context.Context, runID, stepID string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.steps[runID][stepID]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), data...), true, nil
}

func (m *MemoryStore) SaveStep(ctx context.Context, runID, stepID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.steps[runID]
	if !ok {
		run = make(map[string][]byte)
		m.steps[runID] = run
	}

	run[stepID] = append([]byte(nil), data...)

	return nil
}

func (m *MemoryStore) Schedule(ctx context.Context, task Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks[task.ID] = task

	return nil
}

func (m *MemoryStore) Due(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	due := make([]Task, 0)
	for _, task := range m.tasks {
		if !task.At.After(now) {
			due = append(due, task)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].At.Before(due[j].At)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}

func (m *MemoryStore) Claim(ctx context.Context, task Task, leaseUntil time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tasks[task.ID]
	if !ok || !stored.At.Equal(task.At) {
		return false, nil
	}

	stored.At = leaseUntil
	m.tasks[task.ID] = stored

	return true, nil
}

func (m *MemoryStore) Complete(ctx context.Context, task Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tasks, task.ID)

	return nil
}

func (m *MemoryStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expiry, ok := m.locks[key]; ok && now.Before(expiry) {
		return false, nil
	}

	m.locks[key] = now.Add(ttl)

	return true, nil
}

// Pending returns the number of scheduled tasks.
func (m *MemoryStore) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.tasks)
}
