package realtime

import (
	"sort"

	"github.com/comalice/statematch"
)

// Command mutates the World at the start of a tick, typically by writing a
// pending transition.
type Command func(w *statematch.World)

// commandWithMeta adds sequencing metadata for deterministic ordering.
type commandWithMeta struct {
	apply       Command
	sequenceNum uint64
	priority    int
}

// sortCommands orders commands deterministically.
func (rt *Runtime) sortCommands(cmds []commandWithMeta) {
	sort.SliceStable(cmds, func(i, j int) bool {
		// Higher priority first
		if cmds[i].priority != cmds[j].priority {
			return cmds[i].priority > cmds[j].priority
		}
		// then FIFO
		return cmds[i].sequenceNum < cmds[j].sequenceNum
	})
}
