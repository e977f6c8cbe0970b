package state

import (
	"slices"
	"sync"
)

// Store owns the state tree. Dispatch is the only way to change it; reducers run
// under the store lock and listeners are called after it is released, so a
// listener may dispatch again.
type Store struct {
	mu        sync.Mutex
	state     PluginState
	nextID    int
	listeners map[int]func(PluginState)
	observers []func(Event, PluginState)
}

// NewStore creates a Store holding Initial().
func NewStore() *Store {
	return NewStoreWithState(Initial())
}

// NewStoreWithState creates a Store seeded with s. Tests use it to start from a
// prepared tree.
func NewStoreWithState(s PluginState) *Store {
	return &Store{
		state:     s,
		listeners: make(map[int]func(PluginState)),
	}
}

// State returns the current tree.
func (s *Store) State() PluginState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces e into the tree and notifies observers, then listeners.
func (s *Store) Dispatch(e Event) {
	if e == nil {
		return
	}
	s.mu.Lock()
	next := Reduce(s.state, e)
	s.state = next
	observers := slices.Clone(s.observers)
	listeners := make([]func(PluginState), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(e, next)
	}
	for _, fn := range listeners {
		fn(next)
	}
}

// Subscribe registers fn to receive the tree after every dispatch. The returned
// func removes it.
func (s *Store) Subscribe(fn func(PluginState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Observe registers fn to see every event together with the tree it produced.
// Observers cannot be removed; they live as long as the store.
func (s *Store) Observe(fn func(Event, PluginState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}
