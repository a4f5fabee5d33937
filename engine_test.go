package statematch_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statematch"
	"github.com/comalice/statematch/testutil"
)

type mode uint8

const (
	menu mode = iota
	playing
)

type gameState struct {
	Mode   mode
	Paused bool
}

var (
	inMenu  = gameState{}
	running = gameState{Mode: playing}
	paused  = gameState{Mode: playing, Paused: true}
)

func togglePause(s gameState) gameState {
	s.Paused = !s.Paused
	return s
}

// observerSpy records every observer call.
type observerSpy struct {
	mu         sync.Mutex
	applied    []statematch.TransitionRecord
	suppressed []string
	failed     []string
	errs       []error
}

func (o *observerSpy) TransitionApplied(_ context.Context, rec statematch.TransitionRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied = append(o.applied, rec)
}

func (o *observerSpy) TransitionSuppressed(_ context.Context, stateType string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.suppressed = append(o.suppressed, stateType)
}

func (o *observerSpy) PhaseFailed(_ context.Context, phase statematch.Phase, stateType string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, stateType+":"+string(phase))
	o.errs = append(o.errs, err)
}

// newGame registers gameState with a recorder attached to every phase.
func newGame(t *testing.T, opts ...statematch.Option) (*statematch.App, *testutil.Recorder) {
	t.Helper()
	rec := &testutil.Recorder{}
	app := statematch.New(opts...)
	statematch.RegisterState[gameState](app).
		OnEnter(inMenu, rec.System("enter menu")).
		OnExit(inMenu, rec.System("exit menu")).
		OnEnter(running, rec.System("enter running")).
		OnExit(running, rec.System("exit running")).
		OnEnter(paused, rec.System("enter paused")).
		OnExit(paused, rec.System("exit paused")).
		OnTransition(inMenu, running, rec.System("menu -> running")).
		OnTransition(running, paused, rec.System("running -> paused"))
	app.OnExiting(rec.System("exiting"))
	app.OnEntering(rec.System("entering"))
	return app, rec
}

func assertCalls(t *testing.T, rec *testutil.Recorder, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, rec.Calls()); diff != "" {
		t.Errorf("phases (-want +got):\n%s", diff)
	}
	rec.Reset()
}

func current(t *testing.T, w *statematch.World) gameState {
	t.Helper()
	s, ok := statematch.Current[gameState](w)
	require.True(t, ok)
	return s
}

func TestInitialEnterRunsOnce(t *testing.T) {
	ctx := context.Background()
	app, rec := newGame(t)

	app.Update(ctx)
	assertCalls(t, rec, "enter menu", "entering")

	app.Update(ctx)
	app.Update(ctx)
	assertCalls(t, rec)
	assert.Equal(t, inMenu, current(t, app.World()))
	assert.Equal(t, uint64(3), app.Frame())
}

func TestNoPendingIsNoop(t *testing.T) {
	ctx := context.Background()
	app, rec := newGame(t)
	app.Update(ctx)
	rec.Reset()

	statematch.ApplyStateTransition[gameState](ctx, app.World())
	statematch.ApplyStateTransition[gameState](ctx, app.World())

	assertCalls(t, rec)
	assert.Equal(t, inMenu, current(t, app.World()))
}

func TestPhaseOrder(t *testing.T) {
	ctx := context.Background()
	app, rec := newGame(t)
	w := app.World()
	app.Update(ctx)
	rec.Reset()

	require.True(t, statematch.SetNext(w, running))
	app.Update(ctx)
	assertCalls(t, rec, "exit menu", "exiting", "menu -> running", "enter running", "entering")
	assert.Equal(t, running, current(t, w))

	next, ok := statematch.NextOf[gameState](w)
	require.True(t, ok)
	assert.True(t, next.IsKeep(), "pending is consumed")

	// No OnTransition registered for paused -> running.
	statematch.SetNextWith(w, togglePause)
	app.Update(ctx)
	assertCalls(t, rec, "exit running", "exiting", "running -> paused", "enter paused", "entering")

	statematch.SetNextWith(w, togglePause)
	app.Update(ctx)
	assertCalls(t, rec, "exit paused", "exiting", "enter running", "entering")
}

func TestTransitionToCurrentValueSuppressed(t *testing.T) {
	ctx := context.Background()
	spy := &observerSpy{}
	app, rec := newGame(t, statematch.WithObserver(spy))
	w := app.World()
	app.Update(ctx)
	rec.Reset()

	statematch.SetNext(w, inMenu)
	app.Update(ctx)
	assertCalls(t, rec)

	next, _ := statematch.NextOf[gameState](w)
	assert.True(t, next.IsKeep())
	assert.Equal(t, []string{"statematch_test.gameState"}, spy.suppressed)

	// A setter that returns its input is suppressed the same way.
	statematch.SetNextWith(w, func(s gameState) gameState { return s })
	app.Update(ctx)
	assertCalls(t, rec)
	assert.Len(t, spy.suppressed, 2)
}

func TestLastWriteWins(t *testing.T) {
	ctx := context.Background()
	app, rec := newGame(t)
	w := app.World()
	app.Update(ctx)
	rec.Reset()

	statematch.SetNext(w, paused)
	statematch.SetNext(w, running)
	app.Update(ctx)
	assertCalls(t, rec, "exit menu", "exiting", "menu -> running", "enter running", "entering")

	statematch.SetNext(w, paused)
	statematch.KeepNext[gameState](w)
	app.Update(ctx)
	assertCalls(t, rec)
	assert.Equal(t, running, current(t, w))
}

func TestCommitVisibility(t *testing.T) {
	ctx := context.Background()
	app := statematch.New()
	w := app.World()
	var seen []string

	see := func(phase string) statematch.System {
		return func(_ context.Context, w *statematch.World) error {
			s, _ := statematch.Current[gameState](w)
			seen = append(seen, fmt.Sprintf("%s:%v", phase, s.Mode))
			return nil
		}
	}
	statematch.RegisterState[gameState](app).
		OnExit(inMenu, see("exit")).
		OnTransition(inMenu, running, see("transition")).
		OnEnter(running, see("enter"))
	app.OnExiting(see("exiting"))
	app.OnEntering(see("entering"))

	app.Update(ctx)
	seen = nil
	statematch.SetNext(w, running)
	app.Update(ctx)

	assert.Equal(t, []string{"exit:0", "exiting:0", "transition:1", "enter:1", "entering:1"}, seen)
}

func TestActiveTransitionOrientation(t *testing.T) {
	ctx := context.Background()
	app := statematch.New()
	w := app.World()
	var seen []string

	see := func(phase string) statematch.System {
		return func(ctx context.Context, _ *statematch.World) error {
			at, ok := statematch.ActiveFrom[gameState](ctx)
			require.True(t, ok)
			main, _ := at.Main()
			secondary, hasSecondary := at.Secondary()
			if !hasSecondary {
				seen = append(seen, fmt.Sprintf("%s:%v/-", phase, main.Mode))
				return nil
			}
			seen = append(seen, fmt.Sprintf("%s:%v/%v", phase, main.Mode, secondary.Mode))
			return nil
		}
	}
	statematch.RegisterState[gameState](app).
		OnEnter(inMenu, see("enter")).
		OnExit(inMenu, see("exit")).
		OnTransition(inMenu, running, see("transition")).
		OnEnter(running, see("enter"))
	app.OnExiting(see("exiting"))
	app.OnEntering(see("entering"))

	app.Update(ctx)
	statematch.SetNext(w, running)
	app.Update(ctx)

	want := []string{
		"enter:0/-", "entering:0/-",
		"exit:0/1", "exiting:0/1",
		"transition:1/0", "enter:1/0", "entering:1/0",
	}
	assert.Equal(t, want, seen)

	_, ok := statematch.ActiveFrom[gameState](ctx)
	assert.False(t, ok, "no active transition outside phases")
}

func TestWriteDuringPhaseAppliesNextFrame(t *testing.T) {
	ctx := context.Background()
	app, rec := newGame(t)
	w := app.World()
	statematch.OnEnter(w, running, func(_ context.Context, w *statematch.World) error {
		statematch.SetNext(w, paused)
		return nil
	})
	app.Update(ctx)
	rec.Reset()

	statematch.SetNext(w, running)
	app.Update(ctx)
	assert.Equal(t, running, current(t, w), "one commit per invocation")

	next, _ := statematch.NextOf[gameState](w)
	assert.Equal(t, statematch.Value(paused).String(), next.String())

	rec.Reset()
	app.Update(ctx)
	assert.Equal(t, paused, current(t, w))
	assertCalls(t, rec, "exit running", "exiting", "running -> paused", "enter paused", "entering")
}

func TestReentrantApplyIsNoop(t *testing.T) {
	ctx := context.Background()
	app, rec := newGame(t)
	w := app.World()
	statematch.OnEnter(w, running, func(ctx context.Context, w *statematch.World) error {
		statematch.SetNext(w, paused)
		statematch.ApplyStateTransition[gameState](ctx, w)
		statematch.RunEnterSchedule[gameState](ctx, w)
		return nil
	})
	app.Update(ctx)
	rec.Reset()

	statematch.SetNext(w, running)
	app.Update(ctx)
	assert.Equal(t, running, current(t, w))
	assertCalls(t, rec, "exit menu", "exiting", "menu -> running", "enter running", "entering")
}

func TestUnregisteredStateIsNoop(t *testing.T) {
	ctx := context.Background()
	w := statematch.NewWorld()

	statematch.RunEnterSchedule[gameState](ctx, w)
	statematch.ApplyStateTransition[gameState](ctx, w)

	_, ok := statematch.Current[gameState](w)
	assert.False(t, ok)
	_, ok = statematch.NextOf[gameState](w)
	assert.False(t, ok)
	assert.False(t, statematch.SetNext(w, running))
	assert.False(t, statematch.SetNextWith(w, togglePause))
	assert.False(t, statematch.KeepNext[gameState](w))
	assert.Empty(t, w.States())
}

func TestSystemErrorsReachObserver(t *testing.T) {
	ctx := context.Background()
	spy := &observerSpy{}
	app, rec := newGame(t, statematch.WithObserver(spy), statematch.WithSessionID("session-1"))
	w := app.World()
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	statematch.OnExit(w, inMenu, func(context.Context, *statematch.World) error { return errA })
	statematch.OnEnter(w, running,
		func(context.Context, *statematch.World) error { return errB },
		rec.System("after failure"),
	)

	app.Update(ctx)
	rec.Reset()
	statematch.SetNext(w, running)
	app.Update(ctx)

	// Failures neither stop the phase nor roll back the commit.
	assert.Equal(t, running, current(t, w))
	assertCalls(t, rec, "exit menu", "exiting", "menu -> running", "enter running", "after failure", "entering")

	assert.Equal(t, []string{"statematch_test.gameState:exit", "statematch_test.gameState:enter"}, spy.failed)
	assert.ErrorIs(t, spy.errs[0], errA)
	assert.ErrorIs(t, spy.errs[1], errB)

	require.Len(t, spy.applied, 2)
	assert.True(t, spy.applied[0].Initial)
	assert.Equal(t, "session-1", spy.applied[1].Session)
	assert.Equal(t, "{Mode:0 Paused:false}", spy.applied[1].From)
	assert.Equal(t, "{Mode:1 Paused:false}", spy.applied[1].To)
}

func TestEdges(t *testing.T) {
	app, _ := newGame(t)
	edges := statematch.Edges[gameState](app.World())
	assert.ElementsMatch(t, [][2]gameState{{inMenu, running}, {running, paused}}, edges)
}

func TestPanickingSetterConsumedOnce(t *testing.T) {
	ctx := context.Background()
	app, rec := newGame(t)
	w := app.World()
	app.Update(ctx)
	rec.Reset()

	statematch.SetNextWith(w, func(gameState) gameState { panic("bad setter") })

	panics := 0
	for i := 0; i < 3; i++ {
		func() {
			defer func() {
				if recover() != nil {
					panics++
				}
			}()
			app.Update(ctx)
		}()
	}

	assert.Equal(t, 1, panics)
	assert.Equal(t, inMenu, current(t, w))
	next, _ := statematch.NextOf[gameState](w)
	assert.True(t, next.IsKeep())
	assertCalls(t, rec)
}
