package statematch

import (
	"context"
	"time"
)

// TransitionRecord describes one applied transition or initial entry.
type TransitionRecord struct {
	Session   string    `json:"session" yaml:"session"`
	StateType string    `json:"stateType" yaml:"stateType"`
	From      string    `json:"from,omitempty" yaml:"from,omitempty"`
	To        string    `json:"to" yaml:"to"`
	Initial   bool      `json:"initial,omitempty" yaml:"initial,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Observer is notified by the engine. Implementations must not block: they
// run synchronously on the frame loop.
type Observer interface {
	// TransitionApplied is called after the last phase of a transition, and
	// after the initial entry of a state type.
	TransitionApplied(ctx context.Context, rec TransitionRecord)
	// TransitionSuppressed is called when a pending value equal to the
	// committed value was consumed without running any phase.
	TransitionSuppressed(ctx context.Context, stateType string)
	// PhaseFailed is called once per phase in which at least one system
	// returned an error.
	PhaseFailed(ctx context.Context, phase Phase, stateType string, err error)
}

// Observers fans out to every non-nil observer in order.
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) TransitionApplied(ctx context.Context, rec TransitionRecord) {
	for _, o := range m {
		o.TransitionApplied(ctx, rec)
	}
}

func (m multiObserver) TransitionSuppressed(ctx context.Context, stateType string) {
	for _, o := range m {
		o.TransitionSuppressed(ctx, stateType)
	}
}

func (m multiObserver) PhaseFailed(ctx context.Context, phase Phase, stateType string, err error) {
	for _, o := range m {
		o.PhaseFailed(ctx, phase, stateType, err)
	}
}

type nopObserver struct{}

func (nopObserver) TransitionApplied(context.Context, TransitionRecord) {}
func (nopObserver) TransitionSuppressed(context.Context, string)        {}
func (nopObserver) PhaseFailed(context.Context, Phase, string, error)   {}
