package statematch

import (
	"context"
	"reflect"
	"sync"

	"github.com/comalice/statematch/internal/log"
)

// driver runs the state transition stage of one state type.
type driver func(ctx context.Context, w *World)

// App is a frame loop over a World. Each Update runs the state transition
// stage (one driver per registered state type, in registration order) and
// then the update systems.
//
// An App is not safe for concurrent use; the realtime package serializes
// access to one.
type App struct {
	world *World

	mu         sync.Mutex
	drivers    []driver
	registered map[reflect.Type]any
	systems    []System
	frame      uint64
}

// New creates an App with an empty World.
func New(opts ...Option) *App {
	return &App{
		world:      NewWorld(opts...),
		registered: make(map[reflect.Type]any),
	}
}

// World returns the App's World.
func (a *App) World() *World {
	return a.world
}

// Frame returns the number of completed Update calls.
func (a *App) Frame() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame
}

// RegisterState creates the committed store (holding the zero value of S)
// and the pending slot (holding Keep) for S, and adds its driver to the
// state transition stage: RunEnterSchedule on the first frame only, then
// ApplyStateTransition on every frame.
//
// Registering the same S again returns the existing builder and changes
// nothing.
func RegisterState[S comparable](a *App) *StateBuilder[S] {
	key := reflect.TypeFor[S]()

	a.mu.Lock()
	defer a.mu.Unlock()
	if b, ok := a.registered[key]; ok {
		return b.(*StateBuilder[S])
	}

	initState[S](a.world)
	entered := false
	a.drivers = append(a.drivers, func(ctx context.Context, w *World) {
		if !entered {
			entered = true
			RunEnterSchedule[S](ctx, w)
		}
		ApplyStateTransition[S](ctx, w)
	})

	b := &StateBuilder[S]{w: a.world}
	a.registered[key] = b
	a.world.logger.Debug().Str(log.FieldState, stateName[S]()).Msg("state type registered")
	return b
}

// AddSystem adds sys to the update stage, gated by conds.
func (a *App) AddSystem(sys System, conds ...Condition) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(conds) > 0 {
		sys = RunIf(sys, conds...)
	}
	a.systems = append(a.systems, sys)
	return a
}

// OnEntering runs sys whenever any state type enters any value.
func (a *App) OnEntering(sys ...System) *App {
	a.world.OnEntering(sys...)
	return a
}

// OnExiting runs sys whenever any state type leaves any value.
func (a *App) OnExiting(sys ...System) *App {
	a.world.OnExiting(sys...)
	return a
}

// Update runs one frame.
func (a *App) Update(ctx context.Context) {
	a.mu.Lock()
	drivers := append([]driver(nil), a.drivers...)
	systems := append([]System(nil), a.systems...)
	a.mu.Unlock()

	for _, drive := range drivers {
		drive(ctx, a.world)
	}
	for _, sys := range systems {
		if err := sys(ctx, a.world); err != nil {
			a.world.logger.Warn().Err(err).Msg("update system failed")
		}
	}

	a.mu.Lock()
	a.frame++
	a.mu.Unlock()
}
