package production

import (
	"context"
	"sync/atomic"

	"github.com/comalice/statematch"
)

// ChannelPublisher forwards transition records to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch      chan<- statematch.TransitionRecord
	dropped atomic.Uint64
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- statematch.TransitionRecord) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// TransitionApplied forwards rec, dropping it if the channel is full.
func (p *ChannelPublisher) TransitionApplied(ctx context.Context, rec statematch.TransitionRecord) {
	select {
	case p.ch <- rec:
	case <-ctx.Done():
		p.dropped.Add(1)
	default:
		p.dropped.Add(1) // Non-blocking drop
	}
}

// TransitionSuppressed is a no-op.
func (p *ChannelPublisher) TransitionSuppressed(context.Context, string) {}

// PhaseFailed is a no-op.
func (p *ChannelPublisher) PhaseFailed(context.Context, statematch.Phase, string, error) {}

// Dropped returns how many records could not be delivered.
func (p *ChannelPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close closes the output channel. The World must no longer be driven.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
