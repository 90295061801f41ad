package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"nationportal/utils"
)

// Manager is the registry of live sessions, keyed by a random id.
type Manager struct {
	store       Store
	ttl         time.Duration
	now         func() time.Time
	logger      *slog.Logger
	sessionOpts []Option
	onChange    func(active int)

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

type ManagerOption func(m *Manager)

// WithTTL sets how long an idle session is kept. Zero keeps sessions forever.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithManagerClock replaces the time source used for idle tracking.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithSessionOptions are applied to every session the manager creates.
func WithSessionOptions(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.sessionOpts = append(m.sessionOpts, opts...)
	}
}

// WithActiveObserver is called with the number of live sessions after every change.
func WithActiveObserver(fn func(active int)) ManagerOption {
	return func(m *Manager) {
		m.onChange = fn
	}
}

func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		now:      utils.GetTime,
		logger:   slog.Default(),
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new anonymous session with a freshly loaded document.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	opts := append([]Option{WithLogger(m.logger)}, m.sessionOpts...)
	s := New(id, m.store, opts...)

	m.mu.Lock()
	now := m.now()
	m.pruneLocked(now)
	m.sessions[id] = &entry{session: s, lastSeen: now}
	active := len(m.sessions)
	m.mu.Unlock()

	m.notify(active)
	return s
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	now := m.now()
	pruned := m.pruneLocked(now)
	e, ok := m.sessions[id]
	if ok {
		e.lastSeen = now
	}
	active := len(m.sessions)
	m.mu.Unlock()

	if pruned > 0 {
		m.notify(active)
	}
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Destroy forgets a session. Unknown ids are ignored.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	active := len(m.sessions)
	m.mu.Unlock()

	if ok {
		m.notify(active)
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) pruneLocked(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	pruned := 0
	cutoff := now.Add(-m.ttl)
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			pruned++
		}
	}
	if pruned > 0 {
		m.logger.Info("Pruned idle sessions", "count", pruned)
	}
	return pruned
}

func (m *Manager) notify(active int) {
	if m.onChange != nil {
		m.onChange(active)
	}
}
