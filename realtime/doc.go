// Package realtime runs a statematch.App at a fixed tick rate.
//
// The App itself is single-threaded. The runtime owns the goroutine that
// drives it and offers a thread-safe way in:
//   - Commands submitted from any goroutine are batched and applied at the
//     start of the next tick, before the App's frame runs
//   - Commands are ordered deterministically (priority, then submission order)
//   - View gives consistent reads between ticks
//
// # Example Usage
//
//	app := statematch.New()
//	statematch.RegisterState[GameState](app)
//
//	rt := realtime.NewRuntime(app, realtime.Config{
//		TickRate: 16667 * time.Microsecond, // 60 FPS
//	})
//	rt.Start(ctx)
//	defer rt.Stop()
//
//	rt.Submit(func(w *statematch.World) {
//		statematch.SetNext(w, GameState{Mode: Playing})
//	})
//
// # Frame Semantics
//
// Start runs the first frame synchronously, so the initial enter phases of
// every registered state type have completed when it returns. A command
// submitted during tick N is applied at the start of tick N+1 at the
// earliest; a pending transition it requests is applied in that same frame.
//
// # Use Cases
//
//   - Game loops (60 FPS logic)
//   - Simulations with a fixed time-step
//   - Testing/debugging (Step drives frames by hand, without the ticker)
package realtime
