package statematch

import "fmt"

type pendingKind uint8

const (
	pendingKeep pendingKind = iota
	pendingValue
	pendingSetter
)

// Pending describes what the next committed value of a state type should be.
// The zero value is Keep.
//
// Only the value present when ApplyStateTransition runs matters: writing a
// new Pending discards whatever was requested before.
type Pending[S comparable] struct {
	kind   pendingKind
	value  S
	setter func(S) S
}

// Keep requests no change.
func Keep[S comparable]() Pending[S] {
	return Pending[S]{}
}

// Value requests that the state become v.
func Value[S comparable](v S) Pending[S] {
	return Pending[S]{kind: pendingValue, value: v}
}

// Setter requests that the state become f(current). A nil f is Keep.
func Setter[S comparable](f func(S) S) Pending[S] {
	if f == nil {
		return Pending[S]{}
	}
	return Pending[S]{kind: pendingSetter, setter: f}
}

// IsKeep reports whether p requests no change.
func (p Pending[S]) IsKeep() bool {
	return p.kind == pendingKeep
}

// resolve computes the candidate next value. ok is false for Keep.
func (p Pending[S]) resolve(current S) (next S, ok bool) {
	switch p.kind {
	case pendingValue:
		return p.value, true
	case pendingSetter:
		return p.setter(current), true
	default:
		return next, false
	}
}

func (p Pending[S]) String() string {
	switch p.kind {
	case pendingValue:
		return fmt.Sprintf("Value(%+v)", p.value)
	case pendingSetter:
		return "Setter"
	default:
		return "Keep"
	}
}
