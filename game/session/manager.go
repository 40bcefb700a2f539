package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/tile2048/game/engine"
	"github.com/wricardo/tile2048/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// sessionIDLength is the number of hex characters kept from a generated UUID
const sessionIDLength = 8

// RandomFactory returns the random source for a new session's engine
type RandomFactory func() engine.RandomSource

// SeededRandom returns a factory that hands out seed, seed+1, seed+2... so a
// server started with the same seed replays the same sequence of games. A zero
// seed yields randomly keyed sources.
func SeededRandom(seed uint64) RandomFactory {
	if seed == 0 {
		return func() engine.RandomSource { return engine.NewRandomSource(0) }
	}
	var next atomic.Uint64
	next.Store(seed)
	return func() engine.RandomSource {
		return engine.NewRandomSource(next.Add(1) - 1)
	}
}

// Manager handles game session lifecycle
type Manager struct {
	sessions  map[string]*service.Session
	newRandom RandomFactory
	mu        sync.RWMutex
}

// NewManager creates a new session manager with randomly keyed games
func NewManager() *Manager {
	return NewManagerWithRandom(nil)
}

// NewManagerWithRandom creates a session manager whose engines draw from sources
// built by factory. A nil factory means randomly keyed sources.
func NewManagerWithRandom(factory RandomFactory) *Manager {
	if factory == nil {
		factory = SeededRandom(0)
	}
	return &Manager{
		sessions:  make(map[string]*service.Session),
		newRandom: factory,
	}
}

// Create creates a new session with the given ID and configuration
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	id = strings.TrimSpace(id)
	if strings.ContainsAny(id, "/?# ") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	}

	// Check if session already exists (case-insensitive)
	if _, exists := m.sessions[strings.ToLower(id)]; exists {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config, m.newRandom())
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.sessions[strings.ToLower(id)] = session
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID derives a short ID from a random UUID, retrying on the
// unlikely collision. Callers hold the write lock.
func (m *Manager) generateSessionID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionIDLength]
		if _, exists := m.sessions[id]; !exists {
			return id
		}
	}
}
