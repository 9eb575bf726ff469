package analysis

import (
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned for question operations without a live session.
var ErrNoSession = errors.New("no active session")

// Manager guards the single-live-session invariant: no two sessions' state
// may be live concurrently, and start/stop are idempotent since the driving
// environment may invoke setup more than once before teardown.
type Manager struct {
	cfg     Tunables
	flusher Flusher

	mu      sync.Mutex
	session *Session
}

// NewManager creates a session manager.
func NewManager(cfg Tunables, flusher Flusher) *Manager {
	return &Manager{cfg: cfg, flusher: flusher}
}

// Start returns the live session, creating one if none exists. Calling Start
// twice yields the same session.
func (m *Manager) Start() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return m.session
	}
	m.session = NewSession(m.cfg, m.flusher)
	return m.session
}

// Stop closes and discards the live session. A second Stop is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return
	}
	m.session.Close(time.Now())
	m.session = nil
}

// Current returns the live session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// StartQuestion begins sampling on the live session.
func (m *Manager) StartQuestion(questionIndex int) error {
	s := m.Current()
	if s == nil {
		return ErrNoSession
	}
	s.StartQuestion(questionIndex, time.Now())
	return nil
}

// StopQuestion stops sampling on the live session and flushes the aggregate.
func (m *Manager) StopQuestion() (*Aggregate, error) {
	s := m.Current()
	if s == nil {
		return nil, ErrNoSession
	}
	return s.StopQuestion(time.Now()), nil
}
