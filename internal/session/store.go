package session

import (
	"sync"
	"time"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/clock"
)

type Stage string

const (
	StageIdle              Stage = "idle"
	StageAwaitingFirstName Stage = "awaiting_first_name"
	StageAwaitingLastName  Stage = "awaiting_last_name"
	StageAwaitingEmail     Stage = "awaiting_email"
	StageAwaitingPlan      Stage = "awaiting_plan"
)

// Session is the transient per-chat intake state. It lives only in process
// memory; a restart drops in-flight conversations but not persisted orders.
type Session struct {
	ID        int64
	Stage     Stage
	FirstName string
	LastName  string
	Email     string
	UpdatedAt time.Time
}

// Store keeps conversation sessions keyed by chat id, expiring entries that
// have been idle longer than the retention window.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]Session
	ttl      time.Duration
	clock    clock.Clock
}

func NewStore(ttl time.Duration, clk clock.Clock) *Store {
	return &Store{
		sessions: make(map[int64]Session),
		ttl:      ttl,
		clock:    clk,
	}
}

// Get returns the session for id, or a fresh idle session if none exists or
// the stored one has expired.
func (s *Store) Get(id int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return Session{ID: id, Stage: StageIdle}
	}
	return sess
}

func (s *Store) Put(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.UpdatedAt = s.clock.Now()
	s.sessions[sess.ID] = sess
}

// Clear removes the session, used on terminal transitions and resets.
func (s *Store) Clear(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sweep drops every expired session and reports how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions, for tests and diagnostics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) expired(sess Session) bool {
	return s.ttl > 0 && s.clock.Now().Sub(sess.UpdatedAt) > s.ttl
}
