// Package testutil provides helpers for testing code built on statematch.
package testutil

import (
	"context"
	"sync"

	"github.com/comalice/statematch"
)

// Recorder collects the names of systems in the order they ran.
// It is safe for use from the realtime tick goroutine.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// System returns a system that records name and succeeds.
func (r *Recorder) System(name string) statematch.System {
	return func(context.Context, *statematch.World) error {
		r.Record(name)
		return nil
	}
}

// Record appends name.
func (r *Recorder) Record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

// Calls returns a copy of the recorded names.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
