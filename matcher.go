package statematch

// Matcher is a predicate over one state value or a (main, secondary) pair of
// state values of type S. A nil pointer stands for an absent state.
//
// The set of matchers is closed: use Eq, Func, OptionalFunc, PairFunc,
// OptionalPairFunc, PairResultFunc, OptionalPairResultFunc, EdgeFunc or the
// combinators AnyOf, AllOf and Not to build one.
type Matcher[S comparable] interface {
	// MatchState evaluates the matcher against a single state, with the
	// secondary state absent.
	MatchState(s S) bool
	// MatchStateTransition evaluates the matcher against an explicit pair.
	MatchStateTransition(main, secondary *S) MatchResult

	sealed()
}

// Matches reports whether s satisfies m.
func Matches[S comparable](s S, m Matcher[S]) bool {
	return m.MatchState(s)
}

// MatchesTransition evaluates m against the (main, secondary) pair.
func MatchesTransition[S comparable](m Matcher[S], main, secondary *S) MatchResult {
	return m.MatchStateTransition(main, secondary)
}

// matchSingle applies the transition rule shared by all single-state
// matchers: main must match, and the result is only a transition when the
// secondary state does not match as well.
func matchSingle[S comparable](test func(*S) bool, main, secondary *S) MatchResult {
	if !test(main) {
		return NoMatch
	}
	if test(secondary) {
		return MainMatches
	}
	return TransitionMatches
}

// Eq matches states equal to v.
func Eq[S comparable](v S) Matcher[S] {
	return valueMatcher[S]{v: v}
}

type valueMatcher[S comparable] struct{ v S }

func (m valueMatcher[S]) MatchState(s S) bool { return s == m.v }

func (m valueMatcher[S]) MatchStateTransition(main, secondary *S) MatchResult {
	return matchSingle(m.test, main, secondary)
}

func (m valueMatcher[S]) test(s *S) bool { return s != nil && *s == m.v }

func (valueMatcher[S]) sealed() {}

// Func matches states for which f returns true. An absent state never matches.
func Func[S comparable](f func(S) bool) Matcher[S] {
	return stateMatcher[S]{f: f}
}

type stateMatcher[S comparable] struct{ f func(S) bool }

func (m stateMatcher[S]) MatchState(s S) bool { return m.f(s) }

func (m stateMatcher[S]) MatchStateTransition(main, secondary *S) MatchResult {
	return matchSingle(m.test, main, secondary)
}

func (m stateMatcher[S]) test(s *S) bool { return s != nil && m.f(*s) }

func (stateMatcher[S]) sealed() {}

// OptionalFunc matches states for which f returns true. f receives nil when
// it is asked about an absent state.
func OptionalFunc[S comparable](f func(*S) bool) Matcher[S] {
	return optionalMatcher[S]{f: f}
}

type optionalMatcher[S comparable] struct{ f func(*S) bool }

func (m optionalMatcher[S]) MatchState(s S) bool { return m.f(&s) }

func (m optionalMatcher[S]) MatchStateTransition(main, secondary *S) MatchResult {
	return matchSingle(m.f, main, secondary)
}

func (optionalMatcher[S]) sealed() {}

// PairFunc builds a pair-aware matcher. MatchState calls f with a nil
// secondary. An absent main state never matches.
func PairFunc[S comparable](f func(main S, secondary *S) bool) Matcher[S] {
	return pairMatcher[S]{f: f}
}

type pairMatcher[S comparable] struct {
	f func(S, *S) bool
}

func (m pairMatcher[S]) MatchState(s S) bool { return m.f(s, nil) }

func (m pairMatcher[S]) MatchStateTransition(main, secondary *S) MatchResult {
	if main == nil {
		return NoMatch
	}
	return resultOf(m.f(*main, secondary))
}

func (pairMatcher[S]) sealed() {}

// OptionalPairFunc builds a pair-aware matcher over optional states.
func OptionalPairFunc[S comparable](f func(main, secondary *S) bool) Matcher[S] {
	return optionalPairMatcher[S]{f: f}
}

type optionalPairMatcher[S comparable] struct {
	f func(*S, *S) bool
}

func (m optionalPairMatcher[S]) MatchState(s S) bool { return m.f(&s, nil) }

func (m optionalPairMatcher[S]) MatchStateTransition(main, secondary *S) MatchResult {
	return resultOf(m.f(main, secondary))
}

func (optionalPairMatcher[S]) sealed() {}

// PairResultFunc builds a pair-aware matcher that decides the MatchResult
// itself. MatchState treats NoMatch as false and anything else as true.
func PairResultFunc[S comparable](f func(main S, secondary *S) MatchResult) Matcher[S] {
	return pairResultMatcher[S]{f: f}
}

type pairResultMatcher[S comparable] struct {
	f func(S, *S) MatchResult
}

func (m pairResultMatcher[S]) MatchState(s S) bool { return m.f(s, nil).Matches() }

func (m pairResultMatcher[S]) MatchStateTransition(main, secondary *S) MatchResult {
	if main == nil {
		return NoMatch
	}
	return m.f(*main, secondary)
}

func (pairResultMatcher[S]) sealed() {}

// OptionalPairResultFunc is PairResultFunc over optional states.
func OptionalPairResultFunc[S comparable](f func(main, secondary *S) MatchResult) Matcher[S] {
	return optionalPairResultMatcher[S]{f: f}
}

type optionalPairResultMatcher[S comparable] struct {
	f func(*S, *S) MatchResult
}

func (m optionalPairResultMatcher[S]) MatchState(s S) bool { return m.f(&s, nil).Matches() }

func (m optionalPairResultMatcher[S]) MatchStateTransition(main, secondary *S) MatchResult {
	return m.f(main, secondary)
}

func (optionalPairResultMatcher[S]) sealed() {}

// EdgeFunc matches a pair where both states are present. It never matches a
// single state, since there is no secondary state to compare against.
func EdgeFunc[S comparable](f func(main, secondary S) bool) Matcher[S] {
	return edgeMatcher[S]{f: f}
}

type edgeMatcher[S comparable] struct {
	f func(S, S) bool
}

func (edgeMatcher[S]) MatchState(S) bool { return false }

func (m edgeMatcher[S]) MatchStateTransition(main, secondary *S) MatchResult {
	if main == nil || secondary == nil {
		return NoMatch
	}
	return resultOf(m.f(*main, *secondary))
}

func (edgeMatcher[S]) sealed() {}

// AnyOf matches when any of ms matches. For pairs it returns the strongest
// result among ms.
func AnyOf[S comparable](ms ...Matcher[S]) Matcher[S] {
	return anyMatcher[S]{ms: ms}
}

type anyMatcher[S comparable] struct{ ms []Matcher[S] }

func (m anyMatcher[S]) MatchState(s S) bool {
	for _, inner := range m.ms {
		if inner.MatchState(s) {
			return true
		}
	}
	return false
}

func (m anyMatcher[S]) MatchStateTransition(main, secondary *S) MatchResult {
	best := NoMatch
	for _, inner := range m.ms {
		if r := inner.MatchStateTransition(main, secondary); r > best {
			best = r
			if best == TransitionMatches {
				break
			}
		}
	}
	return best
}

func (anyMatcher[S]) sealed() {}

// AllOf matches when every one of ms matches. For pairs it returns the
// weakest result among ms. AllOf with no matchers matches nothing.
func AllOf[S comparable](ms ...Matcher[S]) Matcher[S] {
	return allMatcher[S]{ms: ms}
}

type allMatcher[S comparable] struct{ ms []Matcher[S] }

func (m allMatcher[S]) MatchState(s S) bool {
	if len(m.ms) == 0 {
		return false
	}
	for _, inner := range m.ms {
		if !inner.MatchState(s) {
			return false
		}
	}
	return true
}

func (m allMatcher[S]) MatchStateTransition(main, secondary *S) MatchResult {
	if len(m.ms) == 0 {
		return NoMatch
	}
	worst := TransitionMatches
	for _, inner := range m.ms {
		if r := inner.MatchStateTransition(main, secondary); r < worst {
			worst = r
			if worst == NoMatch {
				break
			}
		}
	}
	return worst
}

func (allMatcher[S]) sealed() {}

// Not negates the single-state reading of m. The result behaves like Func:
// an absent state never matches.
func Not[S comparable](m Matcher[S]) Matcher[S] {
	return Func(func(s S) bool { return !m.MatchState(s) })
}
