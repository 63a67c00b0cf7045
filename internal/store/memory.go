package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory keeps runs in process. When max is positive the oldest runs are
// evicted once more than max are stored.
type Memory struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID]*Run
	order []uuid.UUID // oldest first
	max   int
	now   func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory(max int) *Memory {
	return &Memory{runs: make(map[uuid.UUID]*Run), max: max, now: time.Now}
}

func (m *Memory) Save(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prepare(run, m.now())
	if _, exists := m.runs[run.ID]; !exists {
		m.order = append(m.order, run.ID)
	}
	m.runs[run.ID] = run

	for m.max > 0 && len(m.order) > m.max {
		delete(m.runs, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

func (m *Memory) Get(_ context.Context, id uuid.UUID) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, min(limit, len(m.order)))
	for _, id := range slices.Backward(m.order) {
		if len(out) == limit {
			break
		}
		out = append(out, m.runs[id].Summarize())
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[id]; !ok {
		return ErrRunNotFound
	}
	delete(m.runs, id)
	m.order = slices.DeleteFunc(m.order, func(v uuid.UUID) bool { return v == id })
	return nil
}
