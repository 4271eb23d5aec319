package event

import (
	"sync"
)

// Commands are allocated per inbound gateway message; the pool keeps
// bursty channels from churning the GC.
//
// Usage:
//
//	cmd := AcquireCommand()
//	cmd.Op = OpUpsertItem
//	// ... dispatch ...
//	ReleaseCommand(cmd)  // return after the operation is handled
var commandPool = sync.Pool{
	New: func() interface{} {
		return &Command{}
	},
}

// AcquireCommand gets a Command from the pool. The returned command
// has zero values and must be initialized.
func AcquireCommand() *Command {
	return commandPool.Get().(*Command)
}

// ReleaseCommand returns a Command to the pool after resetting it.
func ReleaseCommand(cmd *Command) {
	if cmd == nil {
		return
	}
	cmd.Reset()
	commandPool.Put(cmd)
}

// Warmup pre-allocates command objects to reduce GC pressure at startup.
func Warmup() {
	const batchSize = 256

	cmds := make([]*Command, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		cmds = append(cmds, AcquireCommand())
	}
	for _, cmd := range cmds {
		ReleaseCommand(cmd)
	}
}
