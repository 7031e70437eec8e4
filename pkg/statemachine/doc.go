// Package statemachine provides a small, generic finite state machine.
//
// States and events are any comparable types, usually string-based constants
// owned by the component that drives the machine:
//
//	type State string
//	type Event string
//
//	m := statemachine.MustNew[State, Event](Loading,
//		statemachine.WithTransition(Loading, Loaded, Ready),
//		statemachine.WithTransition(Loading, Failed, Broken),
//		statemachine.WithWildcard(Retry, Loading),
//		statemachine.WithOnEnter(func(from, to State, ev Event) {
//			render(to)
//		}),
//	)
//
//	if err := m.Fire(Loaded); statemachine.IsNoTransition(err) {
//		// event not valid in the current state
//	}
//
// Transitions declared for a specific source state take precedence over
// wildcard transitions. When several transitions match, the first one whose
// guards all pass wins, which allows guard-based branching.
//
// OnEnter hooks run after the state has changed, outside the machine lock, so
// a hook may read the machine or fire further events.
package statemachine
