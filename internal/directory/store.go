package directory

import (
	"sync"

	"employee-directory/internal/models"
	"employee-directory/internal/view"
)

// Store is the state container of the directory. Reductions and their
// deliveries are serialized, so subscribers see snapshots in reduction order
// and the last one they receive is the current state. Subscribers may read
// the state but must not dispatch.
type Store struct {
	deliverMu sync.Mutex // held across reduce and delivery
	mu        sync.Mutex // guards state and subs
	state     State
	subs      map[int]func(State)
	nextID    int
}

// NewStore returns a store in the idle state.
func NewStore() *Store {
	return &Store{
		state: State{
			Status:     StatusIdle,
			Collection: []models.Employee{},
			View:       view.Derive(nil, models.Filter{}),
		},
		subs: make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and notifies subscribers when the state changed.
func (s *Store) Dispatch(a Action) State {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	next, changed := reduce(s.state, a)
	s.state = next
	var subs []func(State)
	if changed {
		subs = make([]func(State), 0, len(s.subs))
		for _, fn := range s.subs {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn for every future change. The returned function
// removes the subscription and is safe to call more than once.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
