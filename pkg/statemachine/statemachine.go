package statemachine

import (
	"fmt"
	"sync"
)

// Guard decides at fire time whether a transition may proceed.
type Guard[S, E comparable] func(from S, event E) bool

// Hook observes a completed transition.
type Hook[S, E comparable] func(from, to S, event E)

type transition[S, E comparable] struct {
	to     S
	guards []Guard[S, E]
}

// Machine is a finite state machine safe for concurrent use.
type Machine[S, E comparable] struct {
	mu          sync.RWMutex
	initial     S
	current     S
	transitions map[S]map[E][]transition[S, E]
	wildcard    map[E][]transition[S, E]
	hooks       []Hook[S, E]
}

// New creates a machine in the initial state.
func New[S, E comparable](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	m := &Machine[S, E]{
		initial:     initial,
		current:     initial,
		transitions: make(map[S]map[E][]transition[S, E]),
		wildcard:    make(map[E][]transition[S, E]),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is like New but panics on a configuration error.
func MustNew[S, E comparable](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// Current returns the current state.
func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is in state s.
func (m *Machine[S, E]) Is(s S) bool {
	return m.Current() == s
}

// Fire applies event to the current state.
func (m *Machine[S, E]) Fire(event E) error {
	m.mu.Lock()
	from := m.current
	to, err := m.resolve(from, event)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.current = to
	hooks := m.hooks
	m.mu.Unlock()

	for _, h := range hooks {
		h(from, to, event)
	}
	return nil
}

// Can reports whether Fire(event) would succeed right now.
func (m *Machine[S, E]) Can(event E) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, err := m.resolve(m.current, event)
	return err == nil
}

// Reset moves the machine back to its initial state without running hooks.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

func (m *Machine[S, E]) resolve(from S, event E) (S, error) {
	candidates := m.transitions[from][event]
	if len(candidates) == 0 {
		candidates = m.wildcard[event]
	}
	if len(candidates) == 0 {
		var zero S
		return zero, &ErrNoTransition{State: fmt.Sprint(from), Event: fmt.Sprint(event)}
	}

	for _, t := range candidates {
		if allow(t.guards, from, event) {
			return t.to, nil
		}
	}
	var zero S
	return zero, &ErrTransitionRejected{State: fmt.Sprint(from), Event: fmt.Sprint(event)}
}

func allow[S, E comparable](guards []Guard[S, E], from S, event E) bool {
	for _, g := range guards {
		if !g(from, event) {
			return false
		}
	}
	return true
}
