package statematch

// StateBuilder provides fluent lifecycle registration for one state type.
// It is returned by RegisterState.
type StateBuilder[S comparable] struct {
	w *World
}

// OnEnter runs sys whenever the state enters v.
func (b *StateBuilder[S]) OnEnter(v S, sys ...System) *StateBuilder[S] {
	OnEnter(b.w, v, sys...)
	return b
}

// OnExit runs sys whenever the state leaves v.
func (b *StateBuilder[S]) OnExit(v S, sys ...System) *StateBuilder[S] {
	OnExit(b.w, v, sys...)
	return b
}

// OnTransition runs sys whenever the state changes from from to to.
func (b *StateBuilder[S]) OnTransition(from, to S, sys ...System) *StateBuilder[S] {
	OnTransition(b.w, from, to, sys...)
	return b
}

// Current returns the committed value.
func (b *StateBuilder[S]) Current() S {
	s, _ := Current[S](b.w)
	return s
}

// Set requests a transition to v.
func (b *StateBuilder[S]) Set(v S) {
	SetNext(b.w, v)
}

// SetWith requests a transition to f(current).
func (b *StateBuilder[S]) SetWith(f func(S) S) {
	SetNextWith(b.w, f)
}
