package statemachine

import "fmt"

// Option configures a Machine during construction.
type Option[S, E comparable] func(*Machine[S, E]) error

// WithTransition adds a transition from a specific state.
func WithTransition[S, E comparable](from S, event E, to S, guards ...Guard[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		byEvent, ok := m.transitions[from]
		if !ok {
			byEvent = make(map[E][]transition[S, E])
			m.transitions[from] = byEvent
		}
		byEvent[event] = append(byEvent[event], transition[S, E]{to: to, guards: compact(guards)})
		return nil
	}
}

// WithWildcard adds a transition that applies from any state which has no
// specific transition for the event.
func WithWildcard[S, E comparable](event E, to S, guards ...Guard[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		m.wildcard[event] = append(m.wildcard[event], transition[S, E]{to: to, guards: compact(guards)})
		return nil
	}
}

// WithOnEnter registers a hook called after every successful transition.
func WithOnEnter[S, E comparable](hook Hook[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		if hook == nil {
			return fmt.Errorf("statemachine: nil OnEnter hook")
		}
		m.hooks = append(m.hooks, hook)
		return nil
	}
}

func compact[S, E comparable](guards []Guard[S, E]) []Guard[S, E] {
	out := guards[:0:0]
	for _, g := range guards {
		if g != nil {
			out = append(out, g)
		}
	}
	return out
}
