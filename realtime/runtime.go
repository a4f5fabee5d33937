package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/comalice/statematch"
	"github.com/comalice/statematch/internal/log"
)

var (
	// ErrQueueFull is returned when the command batch for the next tick is full.
	ErrQueueFull = errors.New("realtime: command queue full")
	// ErrStopped is returned by Submit once the runtime has been stopped.
	ErrStopped = errors.New("realtime: runtime stopped")
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("realtime: runtime already started")
)

// Runtime drives a statematch.App at a fixed tick rate.
type Runtime struct {
	app    *statematch.App
	logger zerolog.Logger
	onTick func(tick uint64, d time.Duration)

	// Tick-specific fields
	tickRate time.Duration
	ticker   *time.Ticker
	tickNum  uint64
	// frameMu serializes frames and View.
	frameMu sync.Mutex

	// Command batching
	batch       []commandWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64
	maxCommands int
	started     bool
	closed      bool

	// Control
	tickCtx    context.Context
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// Config configures the runtime.
type Config struct {
	TickRate           time.Duration // Fixed tick rate (default 16.667ms, 60 FPS)
	MaxCommandsPerTick int           // Command queue capacity (default 1000)

	// Logger defaults to the package logger with component "realtime".
	Logger *zerolog.Logger

	// OnTick, if set, is called after every frame with the tick number and
	// how long the frame took. It runs on the tick goroutine.
	OnTick func(tick uint64, d time.Duration)
}

// NewRuntime creates a tick-based runtime for app. The runtime takes over
// driving app; callers must not call app.Update themselves.
func NewRuntime(app *statematch.App, cfg Config) *Runtime {
	if cfg.MaxCommandsPerTick <= 0 {
		cfg.MaxCommandsPerTick = 1000
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 16667 * time.Microsecond
	}
	logger := log.WithComponent("realtime")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Runtime{
		app:         app,
		logger:      logger,
		onTick:      cfg.OnTick,
		tickRate:    cfg.TickRate,
		batch:       make([]commandWithMeta, 0, cfg.MaxCommandsPerTick),
		maxCommands: cfg.MaxCommandsPerTick,
		stopped:     make(chan struct{}),
	}
}

// Start runs the first frame synchronously and then begins ticking.
func (rt *Runtime) Start(ctx context.Context) error {
	rt.batchMu.Lock()
	if rt.started {
		rt.batchMu.Unlock()
		return ErrAlreadyStarted
	}
	if rt.closed {
		rt.batchMu.Unlock()
		return ErrStopped
	}
	rt.started = true
	rt.tickCtx, rt.tickCancel = context.WithCancel(ctx)
	rt.ticker = time.NewTicker(rt.tickRate)
	rt.batchMu.Unlock()

	// Initial enter phases complete before Start returns.
	rt.processTick(ctx)

	go rt.tickLoop()

	rt.logger.Info().Dur("tick_rate", rt.tickRate).Msg("runtime started")
	return nil
}

// Stop halts the tick loop and waits for the frame in progress to finish.
// Commands still queued are discarded. Stop is safe to call more than once
// and on a runtime that was never started.
func (rt *Runtime) Stop() error {
	rt.batchMu.Lock()
	wasClosed := rt.closed
	started := rt.started
	rt.closed = true
	dropped := len(rt.batch)
	rt.batch = rt.batch[:0]
	rt.batchMu.Unlock()

	if wasClosed || !started {
		return nil
	}

	rt.tickCancel()
	rt.ticker.Stop()

	// Wait for tick loop to exit
	<-rt.stopped

	rt.logger.Info().Uint64(log.FieldTick, rt.Tick()).Int("dropped", dropped).Msg("runtime stopped")
	return nil
}

// tickLoop is the main tick execution loop.
func (rt *Runtime) tickLoop() {
	defer close(rt.stopped)

	for {
		select {
		case <-rt.tickCtx.Done():
			return
		case <-rt.ticker.C:
			rt.safeTick()
		}
	}
}

// safeTick runs one frame, keeping the loop alive if a system panics.
func (rt *Runtime) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error().
				Interface("panic", r).
				Uint64(log.FieldTick, rt.Tick()).
				Msg("recovered panic in tick")
		}
	}()
	rt.processTick(rt.tickCtx)
}

// Step runs one frame on the calling goroutine. It is meant for runtimes
// that were never started, such as deterministic tests.
func (rt *Runtime) Step(ctx context.Context) {
	rt.processTick(ctx)
}

// Submit queues cmd for the next tick (thread-safe).
func (rt *Runtime) Submit(cmd Command) error {
	return rt.SubmitWithPriority(cmd, 0)
}

// SubmitWithPriority queues cmd with priority. Higher priorities are applied
// first within a tick.
func (rt *Runtime) SubmitWithPriority(cmd Command, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if rt.closed {
		return ErrStopped
	}
	if len(rt.batch) >= rt.maxCommands {
		return ErrQueueFull
	}

	rt.batch = append(rt.batch, commandWithMeta{
		apply:       cmd,
		sequenceNum: rt.sequenceNum,
		priority:    priority,
	})
	rt.sequenceNum++

	return nil
}

// Tick returns the number of completed frames.
func (rt *Runtime) Tick() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}

// View calls fn with the World between frames.
func (rt *Runtime) View(fn func(w *statematch.World)) {
	rt.frameMu.Lock()
	defer rt.frameMu.Unlock()
	fn(rt.app.World())
}

// App returns the driven App.
func (rt *Runtime) App() *statematch.App {
	return rt.app
}
