package session

import (
	"sync"

	"github.com/google/uuid"
)

// Session is the per-connection context. It correlates a client connection
// with the named intermediate results its commands produce, and with the
// batching state toggled by batch_queries/batch_execute. It lives from
// connect to disconnect.
type Session struct {
	ID string

	mu       sync.Mutex
	results  map[string][]int64
	batching bool
}

func New() *Session {
	return &Session{
		ID:      uuid.NewString(),
		results: make(map[string][]int64),
	}
}

// SetResult binds rows to handle, replacing any previous binding.
func (s *Session) SetResult(handle string, rows []int64) {
	if handle == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[handle] = rows
}

func (s *Session) Result(handle string) ([]int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.results[handle]
	return rows, ok
}

func (s *Session) SetBatching(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batching = on
}

func (s *Session) Batching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batching
}
