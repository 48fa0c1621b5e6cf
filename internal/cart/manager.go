package cart

import (
	"sync"
	"time"
)

// Manager keys one Store per shopper session. Stores are created lazily on
// first access and reaped after sitting idle for longer than the configured
// retention window.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

type entry struct {
	store   *Store
	touched time.Time
}

// NewManager builds an empty session-keyed cart manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// GetOrCreate returns the session's store, creating it on first access, and
// refreshes the session's idle clock.
func (m *Manager) GetOrCreate(sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		e = &entry{store: NewStore()}
		m.sessions[sessionID] = e
	}
	e.touched = m.now()
	return e.store
}

// Drop discards the session's store entirely.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// PruneIdle drops every session untouched for at least maxIdle and returns
// how many were dropped.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxIdle)
	pruned := 0
	for id, e := range m.sessions {
		if e.touched.Before(cutoff) {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned
}
