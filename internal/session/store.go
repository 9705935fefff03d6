package session

import (
	"sync"
	"time"
)

// DefaultIdleTimeout is how long an unused session is kept
const DefaultIdleTimeout = 30 * time.Minute

// Store keeps sessions by id and evicts the ones idle for longer than the
// idle timeout.
type Store struct {
	ttl  time.Duration
	idle time.Duration
	now  func() time.Time

	mu        sync.Mutex
	sessions  map[string]*Session
	lastSweep time.Time
}

// NewStore creates a store. ttl is the banner lifetime of its sessions.
func NewStore(ttl, idle time.Duration) *Store {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Store{
		ttl:      ttl,
		idle:     idle,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session for id and marks it as used
func (st *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	now := st.now()

	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok || s.idleSince(now) > st.idle {
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Create starts a new session
func (st *Store) Create() *Session {
	now := st.now()
	s := New(st.ttl)
	s.touch(now)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked(now)
	st.sessions[s.id] = s
	return s
}

// sweepLocked evicts idle sessions at most once per idle period
func (st *Store) sweepLocked(now time.Time) {
	if now.Sub(st.lastSweep) < st.idle {
		return
	}
	st.lastSweep = now
	for id, s := range st.sessions {
		if s.idleSince(now) > st.idle {
			s.Close()
			delete(st.sessions, id)
		}
	}
}
