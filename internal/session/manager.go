package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/vectorscene/internal/engine"
	"github.com/inamate/vectorscene/internal/typeid"
)

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session // sessionID -> session
	opts     engine.Options
}

func NewManager(opts engine.Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Create starts a new session with its own engine goroutine.
func (m *Manager) Create() *Session {
	s := newSession(typeid.NewSessionID(), m.opts)
	go s.Run()

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("session created", "session", s.ID)
	return s
}

// Get looks up a session. Malformed IDs are rejected before the lookup.
func (m *Manager) Get(id string) (*Session, error) {
	if err := typeid.Validate(id, typeid.PrefixSession); err != nil {
		return nil, err
	}
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Remove closes and forgets a session.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	s.Close()
	slog.Info("session removed", "session", id)
	return true
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stop closes every session.
func (m *Manager) Stop() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	slog.Info("all sessions closed", "count", len(sessions))
}
