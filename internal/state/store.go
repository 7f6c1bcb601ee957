package state

import (
	"errors"
	"fmt"
)

// ErrReentrantDispatch is returned when a reducer dispatches while the store
// is already reducing.
var ErrReentrantDispatch = errors.New("state: reducers may not dispatch")

// Listener functions are called after every dispatch with the new state.
type ListenerFunc func(State)

type subscription struct {
	fn     ListenerFunc
	active bool
}

// Store is the single writer of the state tree.
//
// Store is not safe for concurrent use. The engine owns it from one
// goroutine; hosts hand their input to that goroutine.
type Store struct {
	state     State
	reducer   Reducer
	reducing  bool
	listeners []*subscription
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithReducer replaces the root reducer.
func WithReducer(r Reducer) StoreOption {
	return func(s *Store) { s.reducer = r }
}

// WithInitialState seeds the store.
func WithInitialState(st State) StoreOption {
	return func(s *Store) { s.state = st }
}

// NewStore creates a store holding the empty state tree.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{reducer: Reduce}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state tree.
func (s *Store) State() State { return s.state }

// Dispatch reduces m into the state tree and then notifies listeners in
// subscription order. The listener set is snapshotted before notification,
// so (un)subscribing from a listener takes effect on the next dispatch.
// Listeners may dispatch; nested dispatches complete before the outer
// notification continues.
func (s *Store) Dispatch(m Message) error {
	if m == nil {
		return fmt.Errorf("state: dispatch of nil message")
	}
	if s.reducing {
		return fmt.Errorf("dispatch %s: %w", m.Kind(), ErrReentrantDispatch)
	}

	s.reducing = true
	next, err := s.reduce(m)
	s.reducing = false
	if err != nil {
		return err
	}
	s.state = next

	snapshot := make([]*subscription, len(s.listeners))
	copy(snapshot, s.listeners)
	for _, sub := range snapshot {
		sub.fn(s.state)
	}
	return nil
}

// reduce runs the reducer and turns a reentrant-dispatch panic from inside
// it into an error.
func (s *Store) reduce(m Message) (next State, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, ErrReentrantDispatch) {
				err = e
				return
			}
			panic(r)
		}
	}()
	return s.reducer(s.state, m), nil
}

// MustDispatch dispatches and panics on error. A failed dispatch means a
// reducer broke the single-writer rule, which is a programming error.
func (s *Store) MustDispatch(m Message) {
	if err := s.Dispatch(m); err != nil {
		panic(err)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn ListenerFunc) (unsubscribe func()) {
	sub := &subscription{fn: fn, active: true}
	s.listeners = append(s.listeners, sub)
	return func() {
		if !sub.active {
			return
		}
		sub.active = false
		for i, l := range s.listeners {
			if l == sub {
				listeners := make([]*subscription, 0, len(s.listeners)-1)
				listeners = append(listeners, s.listeners[:i]...)
				s.listeners = append(listeners, s.listeners[i+1:]...)
				break
			}
		}
	}
}
