package mcp

import (
	"context"
	"sync"
	"time"
)

// Session is a snapshot of the client's current session binding.
type Session struct {
	// ID is the opaque token the server assigned to this connection.
	ID string

	// EstablishedAt is when the handshake notification arrived.
	EstablishedAt time.Time

	// Generation counts connection generations. A session id never spans
	// two generations; requests tagged with an older generation are
	// rejected when their responses arrive.
	Generation uint64
}

// sessionManager owns the process-wide session state. It is seeded by the
// first session-bearing notification of a connection generation and torn
// down on transport error or manual disconnect.
//
// Readiness is notification-based: waiters block on a channel that is closed
// exactly once when the handshake lands, rather than polling.
type sessionManager struct {
	mu            sync.Mutex
	id            string
	establishedAt time.Time
	generation    uint64
	ready         chan struct{}
}

func newSessionManager() *sessionManager {
	return &sessionManager{ready: make(chan struct{})}
}

// advance starts a new connection generation. Any session id from the
// previous generation is discarded and waiters get a fresh channel.
func (s *sessionManager) advance() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.id = ""
	s.ready = make(chan struct{})
	return s.generation
}

// establish seeds the session from a handshake notification. Only the first
// handshake of a generation wins; later ones report false and are ignored.
func (s *sessionManager) establish(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != "" || id == "" {
		return false
	}
	s.id = id
	s.establishedAt = time.Now()
	close(s.ready)
	return true
}

// invalidate clears the session without starting a new generation. Waiters
// go back to blocking until the next handshake.
func (s *sessionManager) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return
	}
	s.id = ""
	s.ready = make(chan struct{})
}

// current returns the live session, if any.
func (s *sessionManager) current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return Session{}, false
	}
	return Session{ID: s.id, EstablishedAt: s.establishedAt, Generation: s.generation}, true
}

// currentGeneration returns the active connection generation.
func (s *sessionManager) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// waitReady blocks until a session is established, the wait budget elapses
// (ErrSessionWaitTimeout), or ctx is done. The ready channel can be swapped
// by invalidate, so the wait re-checks after every wakeup.
func (s *sessionManager) waitReady(ctx context.Context, wait time.Duration) (Session, error) {
	deadline := time.NewTimer(wait)
	defer deadline.Stop()

	for {
		s.mu.Lock()
		if s.id != "" {
			sess := Session{ID: s.id, EstablishedAt: s.establishedAt, Generation: s.generation}
			s.mu.Unlock()
			return sess, nil
		}
		ready := s.ready
		s.mu.Unlock()

		select {
		case <-ready:
		case <-deadline.C:
			return Session{}, ErrSessionWaitTimeout
		case <-ctx.Done():
			return Session{}, ctx.Err()
		}
	}
}
