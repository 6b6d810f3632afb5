package views

import (
	"context"
	"sync"
)

// Snapshot is a screen's renderable state.
type Snapshot[T any] struct {
	State   State    `json:"state"`
	Data    T        `json:"data"`
	Failure *Failure `json:"failure,omitempty"`
}

// Screen runs loads for one screen. Each load shows StateLoading until it
// completes; a load superseded by a newer one is dropped.
type Screen[T any] struct {
	field   string
	seq     *Sequencer
	isEmpty func(T) bool

	mu   sync.Mutex
	snap Snapshot[T]
}

// NewScreen creates a screen whose loads are sequenced under field. isEmpty
// may be nil when the data is never empty.
func NewScreen[T any](field string, seq *Sequencer, isEmpty func(T) bool) *Screen[T] {
	return &Screen[T]{field: field, seq: seq, isEmpty: isEmpty, snap: Snapshot[T]{State: StateIdle}}
}

// Load runs fetch and records its outcome. It reports false when a newer load
// for the same field was issued meanwhile; the outcome is then discarded.
func (s *Screen[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) (Snapshot[T], bool) {
	n := s.seq.Next(s.field)
	s.mu.Lock()
	s.snap.State = StateLoading
	s.snap.Failure = nil
	s.mu.Unlock()

	data, err := fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seq.Accept(s.field, n) {
		return s.snap, false
	}
	var zero T
	switch {
	case err != nil:
		s.snap = Snapshot[T]{State: StateFor(err), Data: zero, Failure: Classify(err)}
	case s.isEmpty != nil && s.isEmpty(data):
		s.snap = Snapshot[T]{State: StateEmpty, Data: data}
	default:
		s.snap = Snapshot[T]{State: StateReady, Data: data}
	}
	return s.snap, true
}

func (s *Screen[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}
