package session

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inconshreveable/log15/v3"

	"github.com/wricardo/minidungeon/game/engine"
	"github.com/wricardo/minidungeon/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

const generatedIDLength = 8

var validSessionID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Manager handles game session lifecycle. Sessions live in memory only.
type Manager struct {
	sessions map[string]*service.Session
	mu       sync.RWMutex
	log      log15.Logger
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		log:      log15.New("module", "session"),
	}
}

func key(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Create creates a new session with the given ID and configuration. An empty
// ID gets a generated one. The stored config records the seed actually used.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if config == nil {
		return nil, fmt.Errorf("failed to create engine: %w", errors.New("config is nil"))
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	stored := *config
	stored.Seed = eng.Seed()

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	} else if !validSessionID.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	// Check if session already exists (case-insensitive)
	if _, exists := m.sessions[key(id)]; exists {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         &stored,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = sess

	m.log.Debug("session stored", "session", id, "total", len(m.sessions))
	return sess, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[key(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// List returns all active sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[key(id)]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[key(id)]
	if !exists {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
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

// generateSessionID returns a short random ID not yet in use. Caller holds m.mu.
func (m *Manager) generateSessionID() string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:generatedIDLength]
		if _, exists := m.sessions[id]; !exists {
			return id
		}
	}
}
