package statematch

import (
	"context"
	"errors"

	"github.com/comalice/statematch/internal/log"
)

// System is a unit of work run by the frame loop or by a lifecycle phase.
// A returned error is logged and reported to the Observer; it never stops
// the remaining systems or rolls back a transition.
type System func(ctx context.Context, w *World) error

// Phase names a lifecycle phase.
type Phase string

// Lifecycle phases, in the order ApplyStateTransition runs them.
const (
	PhaseExit       Phase = "exit"       // OnExit systems of the value being left
	PhaseExiting    Phase = "exiting"    // OnExiting systems, any state type
	PhaseTransition Phase = "transition" // OnTransition systems of the exact edge
	PhaseEnter      Phase = "enter"      // OnEnter systems of the value being entered
	PhaseEntering   Phase = "entering"   // OnEntering systems, any state type
)

type edge[S comparable] struct {
	from, to S
}

// statePhases holds the value-keyed phases of one state type.
type statePhases[S comparable] struct {
	enter      map[S][]System
	exit       map[S][]System
	transition map[edge[S]][]System
}

func phasesOf[S comparable](w *World) *statePhases[S] {
	p, _ := initResource(w, func() *statePhases[S] {
		return &statePhases[S]{
			enter:      make(map[S][]System),
			exit:       make(map[S][]System),
			transition: make(map[edge[S]][]System),
		}
	})
	return p
}

// OnEnter runs sys whenever S is entered with value v, including the initial
// entry.
func OnEnter[S comparable](w *World, v S, sys ...System) {
	p := phasesOf[S](w)
	w.mu.Lock()
	defer w.mu.Unlock()
	p.enter[v] = append(p.enter[v], sys...)
}

// OnExit runs sys whenever S leaves value v.
func OnExit[S comparable](w *World, v S, sys ...System) {
	p := phasesOf[S](w)
	w.mu.Lock()
	defer w.mu.Unlock()
	p.exit[v] = append(p.exit[v], sys...)
}

// OnTransition runs sys whenever S changes from exactly from to exactly to.
func OnTransition[S comparable](w *World, from, to S, sys ...System) {
	p := phasesOf[S](w)
	w.mu.Lock()
	defer w.mu.Unlock()
	k := edge[S]{from: from, to: to}
	p.transition[k] = append(p.transition[k], sys...)
}

// OnEntering runs sys whenever any state type enters any value.
func (w *World) OnEntering(sys ...System) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entering = append(w.entering, sys...)
}

// OnExiting runs sys whenever any state type leaves any value.
func (w *World) OnExiting(sys ...System) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.exiting = append(w.exiting, sys...)
}

// Edges lists the (from, to) pairs that have OnTransition systems for S.
func Edges[S comparable](w *World) [][2]S {
	p := phasesOf[S](w)
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([][2]S, 0, len(p.transition))
	for k := range p.transition {
		out = append(out, [2]S{k.from, k.to})
	}
	return out
}

func (p *statePhases[S]) enterSystems(w *World, v S) []System {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]System(nil), p.enter[v]...)
}

func (p *statePhases[S]) exitSystems(w *World, v S) []System {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]System(nil), p.exit[v]...)
}

func (p *statePhases[S]) transitionSystems(w *World, from, to S) []System {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]System(nil), p.transition[edge[S]{from: from, to: to}]...)
}

func (w *World) enteringSystems() []System {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]System(nil), w.entering...)
}

func (w *World) exitingSystems() []System {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]System(nil), w.exiting...)
}

// runPhase runs systems in order. An empty phase is skipped.
func (w *World) runPhase(ctx context.Context, phase Phase, stateType string, systems []System) {
	if len(systems) == 0 {
		return
	}
	var errs []error
	for _, sys := range systems {
		if err := sys(ctx, w); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return
	}
	err := errors.Join(errs...)
	w.logger.Warn().
		Err(err).
		Str(log.FieldState, stateType).
		Str("phase", string(phase)).
		Msg("lifecycle system failed")
	w.observer.PhaseFailed(ctx, phase, stateType, err)
}
