package weave

import (
	"time"

	"github.com/tendermint/tendermint/libs/common"
)

// Ticker runs the tasks that are due when a block begins.
type Ticker interface {
	// Tick cannot fail because a block cannot refuse to begin. A failing
	// task is recorded by the implementation. A failure of this node only,
	// like a broken database, must stop the node because its state would
	// diverge from the rest of the network.
	Tick(ctx Context, store CacheableKVStore) TickResult
}

// TickResult is the outcome of a tick.
type TickResult struct {
	// Tags are added to the block. They may be empty.
	Tags []common.KVPair
}

// Scheduler queues messages for later execution, for example the
// resolution of a transfer that awaits acknowledgment.
type Scheduler interface {
	// Schedule queues msg to run in the first block after runAt, with the
	// given conditions authorizing it. It returns the task id.
	Schedule(db KVStore, runAt time.Time, auth []Condition, msg Msg) ([]byte, error)
	// Delete drops a queued task. It fails with ErrNotFound for an unknown
	// task id.
	Delete(db KVStore, taskID []byte) error
}
