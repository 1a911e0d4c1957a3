// Package session persists the operator session's learning state.
package session

import (
	"context"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// Store reads and writes the durable session state. Read returns an empty
// state when nothing has been stored yet. Write must never let an empty
// incoming state overwrite a previously non-empty stored one.
type Store interface {
	Read(ctx context.Context) (*models.SessionState, error)
	Write(ctx context.Context, state *models.SessionState) error
	Close() error
}

// MemoryStore keeps the session state in memory. Used in tests.
type MemoryStore struct {
	mu    sync.Mutex
	state models.SessionState
	// Writes counts accepted writes, for asserting persistence behavior.
	Writes int
}

// Read returns a copy of the stored state.
func (m *MemoryStore) Read(ctx context.Context) (*models.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.state
	return &out, nil
}

// Write stores a copy of state, unless it would erase a non-empty state.
func (m *MemoryStore) Write(ctx context.Context, state *models.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state.Empty() && !m.state.Empty() {
		return nil
	}
	m.state = *state
	m.Writes++
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
