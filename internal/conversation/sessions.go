package conversation

import (
	"sync"

	"github.com/google/uuid"
)

type session struct {
	mu    sync.Mutex
	state *State
}

// Sessions keeps one State per browser session. A session is driven by at
// most one request at a time.
type Sessions struct {
	systemPrompt string

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

func NewSessions(systemPrompt string) *Sessions {
	return &Sessions{
		systemPrompt: systemPrompt,
		sessions:     make(map[uuid.UUID]*session),
	}
}

// Acquire returns the session's state, creating it on first use, locked
// until release is called.
func (s *Sessions) Acquire(id uuid.UUID) (*State, func()) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{state: NewState(s.systemPrompt)}
		s.sessions[id] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	return sess.state, sess.mu.Unlock
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
