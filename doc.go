// Package statematch is a frame-driven state transition engine with a
// matcher language over state values.
//
// A state type is any comparable Go type; its zero value is the initial
// state. Several independent state types can live in the same World:
//
//	type Mode uint8
//
//	const (
//		Menu Mode = iota
//		Playing
//	)
//
//	type GameState struct {
//		Mode   Mode
//		Paused bool
//	}
//
//	app := statematch.New()
//	statematch.RegisterState[GameState](app).
//		OnEnter(GameState{Mode: Menu}, showMenu).
//		OnTransition(GameState{Mode: Menu}, GameState{Mode: Playing}, loadLevel)
//
//	app.AddSystem(movePlayer, statematch.InState(statematch.Eq(GameState{Mode: Playing})))
//
//	statematch.SetNext(app.World(), GameState{Mode: Playing})
//	app.Update(ctx)
//
// # Frames
//
// Every App.Update first runs the state transition stage. On the first frame
// a state type is seen its enter phases run once for the initial value
// (RunEnterSchedule). Then the pending request, if any, is applied
// (ApplyStateTransition): exit, exiting, commit, transition, enter, entering.
// A request for the value already committed is consumed silently.
//
// # Matchers
//
// A Matcher tests a single state (MatchState) or a (main, secondary) pair
// (MatchStateTransition). Systems running inside a lifecycle phase see the
// pair through the ActiveTransition carried by their context, so gates such
// as InState and EnteringState can tell a genuine change from a value that
// merely matches on both sides.
//
// # Concurrency
//
// An App and its World are driven by a single goroutine. The realtime
// package runs an App at a fixed tick rate and accepts commands from other
// goroutines.
package statematch
