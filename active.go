package statematch

import "context"

// ActiveTransition is the (main, secondary) state pair visible while the
// lifecycle phases of a state type are running.
//
// It only exists inside the context.Context the engine hands to phase
// systems; use ActiveFrom to read it. During exit phases main is the state
// being left and secondary the state being entered. From the transition phase
// onward the pair is swapped. On initial entry main is the initial state and
// secondary is absent.
type ActiveTransition[S comparable] struct {
	main, secondary       S
	hasMain, hasSecondary bool
	// entering is false while the exit phases run.
	entering bool
}

// newActive builds the record for a transition from main to secondary. With
// no secondary it describes an initial entry, which is already entering.
func newActive[S comparable](main S, secondary *S) ActiveTransition[S] {
	at := ActiveTransition[S]{main: main, hasMain: true, entering: true}
	if secondary != nil {
		at.secondary, at.hasSecondary = *secondary, true
		at.entering = false
	}
	return at
}

// Main returns the main state of the pair.
func (at ActiveTransition[S]) Main() (S, bool) {
	return at.main, at.hasMain
}

// Secondary returns the secondary state of the pair.
func (at ActiveTransition[S]) Secondary() (S, bool) {
	return at.secondary, at.hasSecondary
}

// Match evaluates m against the pair.
func (at ActiveTransition[S]) Match(m Matcher[S]) MatchResult {
	main, secondary := at.pointers()
	return m.MatchStateTransition(main, secondary)
}

func (at ActiveTransition[S]) swapped() ActiveTransition[S] {
	return ActiveTransition[S]{
		main:         at.secondary,
		secondary:    at.main,
		hasMain:      at.hasSecondary,
		hasSecondary: at.hasMain,
		entering:     !at.entering,
	}
}

// sides returns the state being entered and the state being left,
// whatever the current orientation.
func (at ActiveTransition[S]) sides() (entered, left *S) {
	main, secondary := at.pointers()
	if at.entering {
		return main, secondary
	}
	return secondary, main
}

// pointers returns pointers to copies, so matchers cannot alter the record.
func (at ActiveTransition[S]) pointers() (main, secondary *S) {
	if at.hasMain {
		m := at.main
		main = &m
	}
	if at.hasSecondary {
		s := at.secondary
		secondary = &s
	}
	return main, secondary
}

type activeKey[S comparable] struct{}

func withActive[S comparable](ctx context.Context, at ActiveTransition[S]) context.Context {
	return context.WithValue(ctx, activeKey[S]{}, at)
}

// ActiveFrom returns the ActiveTransition for S carried by ctx, if a
// lifecycle phase for S is currently running.
func ActiveFrom[S comparable](ctx context.Context) (ActiveTransition[S], bool) {
	if ctx == nil {
		return ActiveTransition[S]{}, false
	}
	at, ok := ctx.Value(activeKey[S]{}).(ActiveTransition[S])
	return at, ok
}
