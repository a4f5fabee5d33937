package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/comalice/statematch"
	"github.com/comalice/statematch/realtime"
)

// FrameDriver provides a common interface for driving an App by hand or on
// the realtime tick loop. This allows running the same scenario on both.
type FrameDriver interface {
	Start(ctx context.Context) error
	Stop() error
	// Submit queues cmd; it is applied at the start of a later frame.
	Submit(cmd realtime.Command) error
	// Advance returns once n more frames have completed.
	Advance(n int) error
	View(fn func(w *statematch.World))
}

// ManualDriver runs frames on the calling goroutine.
type ManualDriver struct {
	app   *statematch.App
	ctx   context.Context
	queue []realtime.Command
}

// NewManualDriver creates a driver that calls app.Update directly.
func NewManualDriver(app *statematch.App) *ManualDriver {
	return &ManualDriver{app: app, ctx: context.Background()}
}

// Start runs the first frame.
func (d *ManualDriver) Start(ctx context.Context) error {
	d.ctx = ctx
	d.app.Update(ctx)
	return nil
}

func (d *ManualDriver) Stop() error {
	d.queue = nil
	return nil
}

func (d *ManualDriver) Submit(cmd realtime.Command) error {
	d.queue = append(d.queue, cmd)
	return nil
}

func (d *ManualDriver) Advance(n int) error {
	for i := 0; i < n; i++ {
		queued := d.queue
		d.queue = nil
		for _, cmd := range queued {
			cmd(d.app.World())
		}
		d.app.Update(d.ctx)
	}
	return nil
}

func (d *ManualDriver) View(fn func(w *statematch.World)) {
	fn(d.app.World())
}

// DefaultTickRate matches the realtime runtime default.
const DefaultTickRate = 16667 * time.Microsecond

// TickDriver wraps the realtime runtime.
type TickDriver struct {
	rt       *realtime.Runtime
	tickRate time.Duration
	timeout  time.Duration
}

// NewTickDriver creates a driver over a realtime runtime ticking at tickRate.
// A non-positive tickRate uses the runtime default of 60 ticks per second.
func NewTickDriver(app *statematch.App, tickRate time.Duration) *TickDriver {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &TickDriver{
		rt:       realtime.NewRuntime(app, realtime.Config{TickRate: tickRate}),
		tickRate: tickRate,
		timeout:  2 * time.Second,
	}
}

// Runtime returns the wrapped runtime.
func (d *TickDriver) Runtime() *realtime.Runtime {
	return d.rt
}

func (d *TickDriver) Start(ctx context.Context) error {
	return d.rt.Start(ctx)
}

func (d *TickDriver) Stop() error {
	return d.rt.Stop()
}

func (d *TickDriver) Submit(cmd realtime.Command) error {
	return d.rt.Submit(cmd)
}

func (d *TickDriver) Advance(n int) error {
	// One extra tick covers a frame that had already collected its commands.
	target := d.rt.Tick() + uint64(n) + 1
	deadline := time.Now().Add(d.timeout + time.Duration(n)*d.tickRate)
	for d.rt.Tick() < target {
		if time.Now().After(deadline) {
			return fmt.Errorf("testutil: tick %d not reached, at %d", target, d.rt.Tick())
		}
		time.Sleep(d.pollInterval())
	}
	return nil
}

// pollInterval is half a tick, at least a millisecond.
func (d *TickDriver) pollInterval() time.Duration {
	return max(d.tickRate/2, time.Millisecond)
}

func (d *TickDriver) View(fn func(w *statematch.World)) {
	d.rt.View(fn)
}
