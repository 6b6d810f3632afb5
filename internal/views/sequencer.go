package views

import (
	"sync"

	"rp-pay-dashboard/internal/observability"
)

// Sequencer hands out increasing sequence numbers per field so that only the
// completion of the latest request is applied.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next issues the sequence number for a new request on field.
func (s *Sequencer) Next(field string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[field]++
	return s.latest[field]
}

// Accept reports whether seq is still the latest number issued for field.
// Stale completions are counted and rejected.
func (s *Sequencer) Accept(field string, seq uint64) bool {
	s.mu.Lock()
	ok := s.latest[field] == seq
	s.mu.Unlock()
	if !ok {
		observability.RecordStaleResponse(field)
	}
	return ok
}
