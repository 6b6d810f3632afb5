package navigation

import (
	"sync"
	"time"
)

// Registry keeps one value per browser session, in memory only.
// Idle sessions are dropped by Sweep.
type Registry[T any] struct {
	mu      sync.Mutex
	byID    map[string]*entry[T]
	create  func() T
	now     func() time.Time
	idleTTL time.Duration
}

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// NewRegistry creates an empty registry whose values come from create.
// idleTTL <= 0 disables expiry.
func NewRegistry[T any](idleTTL time.Duration, create func() T) *Registry[T] {
	return &Registry[T]{byID: make(map[string]*entry[T]), create: create, now: time.Now, idleTTL: idleTTL}
}

// Sessions keeps one Controller per browser session.
type Sessions = Registry[*Controller]

func NewSessions(idleTTL time.Duration) *Sessions {
	return NewRegistry(idleTTL, NewController)
}

// Get returns the value for id, creating it on first use.
func (s *Registry[T]) Get(id string) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		e = &entry[T]{value: s.create()}
		s.byID[id] = e
	}
	e.lastSeen = s.now()
	return e.value
}

// Sweep removes sessions idle for longer than the TTL and returns how many went.
func (s *Registry[T]) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for id, e := range s.byID {
		if e.lastSeen.Before(cutoff) {
			delete(s.byID, id)
			removed++
		}
	}
	return removed
}

// Len is the number of live sessions.
func (s *Registry[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
