package realtime

import (
	"context"
	"time"
)

// processTick runs one complete frame.
func (rt *Runtime) processTick(ctx context.Context) {
	rt.frameMu.Lock()
	defer rt.frameMu.Unlock()

	start := time.Now()

	// Phase 1: collect commands atomically
	cmds := rt.collectCommands()

	// Phase 2: sort for deterministic order
	rt.sortCommands(cmds)

	// Phase 3: apply them before the state transition stage
	w := rt.app.World()
	for _, c := range cmds {
		c.apply(w)
	}

	// Phase 4: run the frame
	rt.app.Update(ctx)

	rt.batchMu.Lock()
	rt.tickNum++
	tick := rt.tickNum
	rt.batchMu.Unlock()

	if rt.onTick != nil {
		rt.onTick(tick, time.Since(start))
	}
}

// collectCommands atomically retrieves and clears the command batch.
func (rt *Runtime) collectCommands() []commandWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	cmds := rt.batch
	rt.batch = make([]commandWithMeta, 0, rt.maxCommands)

	return cmds
}
