package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"Cadence/internal/affect"
	"Cadence/internal/domain"
)

// Session is one conversation: its affect engine, a bounded history
// window and an activity stamp for idle pruning.
type Session struct {
	ID string

	mu           sync.Mutex
	engine       *affect.Engine
	history      []domain.ChatMessage
	historyLimit int
	lastActive   time.Time
}

// ApplyImpulse advances the session's mood and stamps activity.
func (s *Session) ApplyImpulse(now time.Time, impulse domain.AffectImpulse) domain.AffectState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
	return s.engine.Apply(now, impulse)
}

// Affect returns the mood decayed to now without recording a turn.
func (s *Session) Affect(now time.Time) domain.AffectState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(now)
}

// Chemistry reports the dopamine and cortisol levels.
func (s *Session) Chemistry() (dopamine, cortisol float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Dopamine(), s.engine.Cortisol()
}

// Append records a chat message, trimming the window to the configured
// limit from the front.
func (s *Session) Append(msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, msg)
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = s.history[len(s.history)-s.historyLimit:]
	}
}

// History returns a copy of the current window, oldest first.
func (s *Session) History() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// LastActive reports when the session last saw traffic.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Touch stamps activity without changing mood or history.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
}

// Manager keeps live sessions by ID.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	historyLimit int
}

// NewManager builds an empty registry; historyLimit caps each session's
// message window (0 keeps everything).
func NewManager(historyLimit int) *Manager {
	return &Manager{
		sessions:     map[string]*Session{},
		historyLimit: historyLimit,
	}
}

// Get returns an existing session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating it when absent. An
// empty id allocates a fresh one.
func (m *Manager) GetOrCreate(id string, now time.Time) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{
		ID:           id,
		engine:       affect.NewEngine(now),
		historyLimit: m.historyLimit,
		lastActive:   now,
	}
	m.sessions[id] = s
	return s
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune drops sessions idle longer than maxIdle and returns their IDs.
func (m *Manager) Prune(now time.Time, maxIdle time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for id, s := range m.sessions {
		if now.Sub(s.LastActive()) > maxIdle {
			delete(m.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}
