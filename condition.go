package statematch

import "context"

// Condition gates a System.
type Condition func(ctx context.Context, w *World) bool

// InState is true when S matches m.
//
// Inside a lifecycle phase of S the matcher is evaluated against the
// ActiveTransition, otherwise against the committed value. It is false when
// S is not registered.
func InState[S comparable](m Matcher[S]) Condition {
	return func(ctx context.Context, w *World) bool {
		if at, ok := ActiveFrom[S](ctx); ok {
			return at.Match(m).Matches()
		}
		cur, ok := Current[S](w)
		return ok && m.MatchState(cur)
	}
}

// EnteringState is true only while a lifecycle phase of S runs, the state
// being entered matches m and the state being left does not.
func EnteringState[S comparable](m Matcher[S]) Condition {
	return func(ctx context.Context, _ *World) bool {
		at, ok := ActiveFrom[S](ctx)
		if !ok {
			return false
		}
		entered, left := at.sides()
		return m.MatchStateTransition(entered, left) == TransitionMatches
	}
}

// ExitingState is true only while a lifecycle phase of S runs, the state
// being left matches m and the state being entered does not. It is never
// true during an initial entry.
func ExitingState[S comparable](m Matcher[S]) Condition {
	return func(ctx context.Context, _ *World) bool {
		at, ok := ActiveFrom[S](ctx)
		if !ok {
			return false
		}
		entered, left := at.sides()
		if left == nil {
			return false
		}
		return m.MatchStateTransition(left, entered) == TransitionMatches
	}
}

// RunIf wraps sys so that it only runs when every condition holds.
func RunIf(sys System, conds ...Condition) System {
	return func(ctx context.Context, w *World) error {
		for _, c := range conds {
			if !c(ctx, w) {
				return nil
			}
		}
		return sys(ctx, w)
	}
}

// RunIn wraps sys so that it only runs while S matches m.
func RunIn[S comparable](m Matcher[S], sys System) System {
	return RunIf(sys, InState(m))
}
