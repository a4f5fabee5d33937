// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/comalice/statematch"
)

// Ring is a state type cycling through a fixed number of values.
type Ring struct {
	Pos  int
	Size int
}

// Advance moves to the next value, wrapping at Size.
func Advance(r Ring) Ring {
	r.Pos = (r.Pos + 1) % r.Size
	return r
}

func noop(context.Context, *statematch.World) error { return nil }

// NewRingApp registers a Ring of size n with an enter and exit system on every
// value and a transition system on every edge. Logging is discarded.
func NewRingApp(n int, opts ...statematch.Option) *statematch.App {
	if n < 2 {
		n = 2
	}
	opts = append([]statematch.Option{statematch.WithLogger(zerolog.New(io.Discard))}, opts...)
	app := statematch.New(opts...)
	b := statematch.RegisterState[Ring](app)
	b.Set(Ring{Size: n})
	for i := 0; i < n; i++ {
		from := Ring{Pos: i, Size: n}
		b.OnEnter(from, noop).
			OnExit(from, noop).
			OnTransition(from, Advance(from), noop)
	}
	app.Update(context.Background())
	return app
}
