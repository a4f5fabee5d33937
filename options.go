package statematch

import "github.com/rs/zerolog"

type options struct {
	logger   *zerolog.Logger
	observer Observer
	session  string
}

// Option configures a World (and the App that owns it).
type Option func(*options)

// WithLogger replaces the default component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

// WithObserver reports transitions and phase failures to obs.
// Use Observers to attach more than one.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithSessionID sets the session ID. A random UUID is used otherwise.
func WithSessionID(id string) Option {
	return func(o *options) {
		o.session = id
	}
}
