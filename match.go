package statematch

// MatchResult is the outcome of matching a state pair.
//
// The zero value is NoMatch. Results are ordered by strength:
// NoMatch < MainMatches < TransitionMatches.
type MatchResult uint8

const (
	// NoMatch means the main state does not satisfy the matcher.
	NoMatch MatchResult = iota
	// MainMatches means the main state matches, but so does the secondary
	// state, so the pair does not describe a change the matcher cares about.
	MainMatches
	// TransitionMatches means the main state matches and the pair is a
	// genuine change with respect to the matcher.
	TransitionMatches
)

// Matches reports whether r is anything other than NoMatch.
func (r MatchResult) Matches() bool {
	return r != NoMatch
}

func (r MatchResult) String() string {
	switch r {
	case NoMatch:
		return "NoMatch"
	case MainMatches:
		return "MainMatches"
	case TransitionMatches:
		return "TransitionMatches"
	default:
		return "MatchResult(?)"
	}
}

// resultOf coerces a pair predicate's boolean into a MatchResult.
func resultOf(ok bool) MatchResult {
	if ok {
		return TransitionMatches
	}
	return NoMatch
}
