package statematch

import (
	"context"
	"fmt"
	"time"

	"github.com/comalice/statematch/internal/log"
)

// RunEnterSchedule runs the enter phases for the committed value of S: the
// OnEnter systems for that value, then the OnEntering systems. The phases see
// an ActiveTransition with the committed value as main and no secondary.
//
// It is a no-op if S is not registered.
func RunEnterSchedule[S comparable](ctx context.Context, w *World) {
	st, ok := lookupState[S](w)
	if !ok {
		w.logger.Debug().Str(log.FieldState, stateName[S]()).Msg("enter schedule for unregistered state type skipped")
		return
	}
	if st.applying {
		w.logger.Debug().Str(log.FieldState, st.name).Msg("re-entrant enter schedule skipped")
		return
	}
	st.applying = true
	defer func() { st.applying = false }()

	current := st.current
	phases := phasesOf[S](w)

	actx := withActive(ctx, newActive[S](current, nil))
	w.runPhase(actx, PhaseEnter, st.name, phases.enterSystems(w, current))
	w.runPhase(actx, PhaseEntering, st.name, w.enteringSystems())

	w.observer.TransitionApplied(ctx, TransitionRecord{
		Session:   w.session,
		StateType: st.name,
		To:        fmt.Sprintf("%+v", current),
		Initial:   true,
		Timestamp: time.Now(),
	})
}

// ApplyStateTransition applies the pending transition of S, if any.
//
// When the pending request resolves to a value different from the committed
// one, the phases run in this order: OnExit(previous), OnExiting, then the
// value is committed, then OnTransition(previous, next), OnEnter(next),
// OnEntering. A request equal to the committed value is consumed without
// running any phase.
//
// The pending slot is reset to Keep before any phase runs, so a request made
// by a phase system is applied on the next call.
func ApplyStateTransition[S comparable](ctx context.Context, w *World) {
	st, ok := lookupState[S](w)
	if !ok {
		w.logger.Debug().Str(log.FieldState, stateName[S]()).Msg("transition for unregistered state type skipped")
		return
	}
	if st.applying {
		w.logger.Debug().Str(log.FieldState, st.name).Msg("re-entrant transition skipped")
		return
	}

	pending := st.next
	if pending.IsKeep() {
		return
	}
	// Consumed before the setter runs, so a panicking setter fires only once.
	st.next = Keep[S]()

	current := st.current
	next, _ := pending.resolve(current)

	if next == current {
		w.logger.Debug().Str(log.FieldState, st.name).Str("value", fmt.Sprintf("%+v", current)).Msg("transition to current value suppressed")
		w.observer.TransitionSuppressed(ctx, st.name)
		return
	}

	st.applying = true
	defer func() { st.applying = false }()

	phases := phasesOf[S](w)
	active := newActive(current, &next)

	exitCtx := withActive(ctx, active)
	w.runPhase(exitCtx, PhaseExit, st.name, phases.exitSystems(w, current))
	w.runPhase(exitCtx, PhaseExiting, st.name, w.exitingSystems())

	enterCtx := withActive(ctx, active.swapped())
	st.current = next
	w.runPhase(enterCtx, PhaseTransition, st.name, phases.transitionSystems(w, current, next))
	w.runPhase(enterCtx, PhaseEnter, st.name, phases.enterSystems(w, next))
	w.runPhase(enterCtx, PhaseEntering, st.name, w.enteringSystems())

	rec := TransitionRecord{
		Session:   w.session,
		StateType: st.name,
		From:      fmt.Sprintf("%+v", current),
		To:        fmt.Sprintf("%+v", next),
		Timestamp: time.Now(),
	}
	w.logger.Debug().Str(log.FieldState, st.name).Str("from", rec.From).Str("to", rec.To).Msg("state transition applied")
	w.observer.TransitionApplied(ctx, rec)
}
