// ABOUTME: In-memory Store implementation for tests and runs without a database
// ABOUTME: Copies runs on the way in and out so callers cannot mutate stored state

package store

import (
	"context"
	"slices"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run // keyed by run ID
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*Run),
	}
}

// SaveRun stores a copy of run.
func (m *MemoryStore) SaveRun(ctx context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[run.ID]; ok {
		return ErrDuplicateRun
	}
	m.runs[run.ID] = copyRun(run, true)
	return nil
}

// GetRun retrieves a copy of a run.
func (m *MemoryStore) GetRun(ctx context.Context, id string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRun(r, true), nil
}

// ListRuns returns runs newest first, without cells.
func (m *MemoryStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, copyRun(r, false))
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func copyRun(r *Run, withCells bool) *Run {
	c := *r
	c.Gardeners = slices.Clone(r.Gardeners)
	c.Cells = nil
	if withCells {
		c.Cells = slices.Clone(r.Cells)
	}
	return &c
}

// Ensure both implementations satisfy Store.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
