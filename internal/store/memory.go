package store

import (
	"context"
	"sync"

	"github.com/upliftapps/pulse/internal/schema"
)

// Memory is the in-process event store: a mutex-guarded append-only slice.
// Events keep ingestion order; Snapshot copies so callers can never mutate
// the log through a returned slice.
type Memory struct {
	mu     sync.RWMutex
	events []schema.Event
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{events: make([]schema.Event, 0, 256)}
}

// Append adds e at the end of the log.
func (m *Memory) Append(_ context.Context, e schema.Event) error {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the full log in ingestion order.
func (m *Memory) Snapshot(_ context.Context) ([]schema.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schema.Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

// Len returns the number of stored events.
func (m *Memory) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events), nil
}

// Reset drops all events. Test helper; production code never truncates.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.events = m.events[:0]
	m.mu.Unlock()
}
