// Package checkpoint persists bulk-indexing job state so an interrupted run
// can resume. The store is a plain durable key-value surface keyed by a
// fingerprint of the job's parameters; no cross-key guarantees are needed.
package checkpoint

import (
	"context"
	"sync"
	"time"
)

// Status is the lifecycle state of an indexing job.
type Status string

// Job status values. Paused only ever results from external interruption.
const (
	StatusNotStarted Status = "not_started"
	StatusRunning    Status = "running"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// Cursor is the persisted state of one indexing job. Page is the next page
// to process; a crash mid-page re-processes that page on resume, so the
// pipeline is at-least-once and upserts must stay idempotent by document id.
type Cursor struct {
	Page      int       `json:"page"`
	Total     int       `json:"total"` // expected item count, may be approximate
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists job cursors. Implementations must be safe for concurrent
// use.
type Store interface {
	// Get returns the cursor for a job key, reporting whether one exists.
	Get(ctx context.Context, jobKey string) (Cursor, bool, error)
	// Set writes the cursor for a job key.
	Set(ctx context.Context, jobKey string, c Cursor) error
	// Clear removes the cursor so the next run starts fresh.
	Clear(ctx context.Context, jobKey string) error
}

// Memory is an in-process Store for tests and single-run CLI invocations.
type Memory struct {
	mu      sync.Mutex
	cursors map[string]Cursor
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{cursors: make(map[string]Cursor)}
}

// Get returns the stored cursor, if any.
func (m *Memory) Get(_ context.Context, jobKey string) (Cursor, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cursors[jobKey]
	return c, ok, nil
}

// Set stores a cursor.
func (m *Memory) Set(_ context.Context, jobKey string, c Cursor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[jobKey] = c
	return nil
}

// Clear removes a cursor.
func (m *Memory) Clear(_ context.Context, jobKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cursors, jobKey)
	return nil
}
