// Package session owns the per-user state registry. Sessions live in memory
// only; a restart abandons every in-progress cart by design.
package session

import (
	"sync"

	"github.com/bookfairhq/pos-backend/internal/cart"
)

// Manager hands out the state value for a session, creating it on first use.
// The interaction router serializes actions per session, so the lock only
// guards the registry map, not the states themselves.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*cart.State
}

// NewManager returns an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*cart.State)}
}

// Get returns the session's state, creating an empty one if absent.
func (m *Manager) Get(sessionID string) *cart.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[sessionID]
	if !ok {
		state = cart.NewState()
		m.sessions[sessionID] = state
	}
	return state
}

// Drop removes a session entirely.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
