package statematch

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/comalice/statematch/internal/log"
)

// World holds the committed state, pending slot and lifecycle phases of every
// registered state type, plus arbitrary typed resources shared by systems.
//
// Resource lookup is safe for concurrent use. The state values themselves
// are not: a World is driven by one frame loop at a time (see App.Update and
// the realtime package).
type World struct {
	mu        sync.RWMutex
	resources map[reflect.Type]any
	states    []func() StateInfo

	entering []System
	exiting  []System

	session  string
	logger   zerolog.Logger
	observer Observer
}

// StateInfo is a printable view of one registered state type.
type StateInfo struct {
	Type    string `json:"type" yaml:"type"`
	Current string `json:"current" yaml:"current"`
	Next    string `json:"next" yaml:"next"`
}

// NewWorld creates an empty World.
func NewWorld(opts ...Option) *World {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.session == "" {
		o.session = uuid.NewString()
	}
	logger := log.WithComponent("statematch")
	if o.logger != nil {
		logger = *o.logger
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	return &World{
		resources: make(map[reflect.Type]any),
		session:   o.session,
		logger:    logger.With().Str(log.FieldSession, o.session).Logger(),
		observer:  o.observer,
	}
}

// Session returns the session ID attached to logs and observer records.
func (w *World) Session() string {
	return w.session
}

// Logger returns the World's logger.
func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

// States describes every registered state type in registration order.
func (w *World) States() []StateInfo {
	w.mu.RLock()
	describers := append([]func() StateInfo(nil), w.states...)
	w.mu.RUnlock()

	infos := make([]StateInfo, 0, len(describers))
	for _, d := range describers {
		infos = append(infos, d())
	}
	return infos
}

// InsertResource stores v as the resource of type T, replacing any previous one.
func InsertResource[T any](w *World, v T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resources[reflect.TypeFor[T]()] = &v
}

// Resource returns the resource of type T. The pointer stays valid until the
// resource is replaced or removed.
func Resource[T any](w *World) (*T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// RemoveResource deletes the resource of type T.
func RemoveResource[T any](w *World) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.resources, reflect.TypeFor[T]())
}

// initResource returns the resource of type T, creating it with init when
// absent. created reports whether init ran.
func initResource[T any](w *World, init func() *T) (v *T, created bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := reflect.TypeFor[T]()
	if existing, ok := w.resources[key]; ok {
		return existing.(*T), false
	}
	v = init()
	w.resources[key] = v
	return v, true
}

// stateStore is the committed value and pending slot of one state type.
type stateStore[S comparable] struct {
	name     string
	current  S
	next     Pending[S]
	applying bool
}

func stateName[S comparable]() string {
	return reflect.TypeFor[S]().String()
}

// initState creates the stores for S. It reports false if they already exist.
func initState[S comparable](w *World) bool {
	st, created := initResource(w, func() *stateStore[S] {
		return &stateStore[S]{name: stateName[S]()}
	})
	if !created {
		return false
	}
	w.mu.Lock()
	w.states = append(w.states, func() StateInfo {
		return StateInfo{
			Type:    st.name,
			Current: fmt.Sprintf("%+v", st.current),
			Next:    st.next.String(),
		}
	})
	w.mu.Unlock()
	return true
}

func lookupState[S comparable](w *World) (*stateStore[S], bool) {
	return Resource[stateStore[S]](w)
}

// Current returns the committed value of S. ok is false if S is not registered.
func Current[S comparable](w *World) (s S, ok bool) {
	st, ok := lookupState[S](w)
	if !ok {
		return s, false
	}
	return st.current, true
}

// NextOf returns the pending transition of S.
func NextOf[S comparable](w *World) (Pending[S], bool) {
	st, ok := lookupState[S](w)
	if !ok {
		return Pending[S]{}, false
	}
	return st.next, true
}

// SetNext requests that S become v on the next ApplyStateTransition.
// It reports false if S is not registered.
func SetNext[S comparable](w *World, v S) bool {
	return setPending(w, Value(v))
}

// SetNextWith requests that S become f(current) on the next
// ApplyStateTransition.
func SetNextWith[S comparable](w *World, f func(S) S) bool {
	return setPending(w, Setter(f))
}

// KeepNext clears any pending request for S.
func KeepNext[S comparable](w *World) bool {
	return setPending(w, Keep[S]())
}

func setPending[S comparable](w *World, p Pending[S]) bool {
	st, ok := lookupState[S](w)
	if !ok {
		w.logger.Debug().Str(log.FieldState, stateName[S]()).Msg("pending write for unregistered state type ignored")
		return false
	}
	st.next = p
	return true
}
