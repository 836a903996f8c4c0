package cron

import (
	"encoding/binary"
	"fmt"
	"time"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/tendermint/tendermint/libs/common"
)

// Tasks are queued under queuePrefix followed by the big endian
// nanosecond execution time, so iteration order is execution order.
const (
	queuePrefix = "_crontask:runat:"
	granularity = time.Second
)

func queueKey(t time.Time) []byte {
	var ts [8]byte
	if !t.IsZero() {
		binary.BigEndian.PutUint64(ts[:], uint64(t.UnixNano()))
	}
	return append([]byte(queuePrefix), ts[:]...)
}

// Scheduler queues messages for delivery in a later block. The same
// TaskMarshaler must be used by the Ticker that runs them.
type Scheduler struct {
	enc TaskMarshaler
}

var _ weave.Scheduler = (*Scheduler)(nil)

func NewScheduler(enc TaskMarshaler) *Scheduler {
	return &Scheduler{enc: enc}
}

// Schedule queues msg to run with the given conditions as its signers. The
// execution time is truncated to the second. The task runs in the first
// block whose time is after it, so a task due at the current block time
// runs in the next block. Each second holds one task: a busy slot moves
// the task to the next free second. The returned key identifies the task.
func (s *Scheduler) Schedule(db weave.KVStore, runAt time.Time, auth []weave.Condition, msg weave.Msg) ([]byte, error) {
	raw, err := s.enc.MarshalTask(auth, msg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal task")
	}
	for at := runAt.Truncate(granularity); ; at = at.Add(granularity) {
		key := queueKey(at)
		taken, err := db.Has(key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		if taken {
			continue
		}
		if err := db.Set(key, raw); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		return key, nil
	}
}

// Delete removes a task that has not run yet.
func (s *Scheduler) Delete(db weave.KVStore, taskID []byte) error {
	switch queued, err := db.Has(taskID); {
	case err != nil:
		return errors.Wrap(errors.ErrDatabase, err.Error())
	case !queued:
		return errors.Wrap(errors.ErrNotFound, "task")
	}
	return db.Delete(taskID)
}

// Ticker delivers the queued tasks that are due at the beginning of every
// block and records a TaskResult for each of them.
type Ticker struct {
	h       weave.Handler
	enc     TaskMarshaler
	results orm.ModelBucket
}

var _ weave.Ticker = (*Ticker)(nil)

func NewTicker(h weave.Handler, enc TaskMarshaler) *Ticker {
	return &Ticker{h: h, enc: enc, results: NewTaskResultBucket()}
}

// Tick runs every due task. A failing task does not stop the others, its
// changes are dropped and the failure is kept in its result.
func (t *Ticker) Tick(ctx weave.Context, db weave.CacheableKVStore) weave.TickResult {
	tags, err := t.tick(ctx, db)
	if err != nil {
		halt(err)
	}
	return weave.TickResult{Tags: tags}
}

// halt stops the node. Task failures are recorded as results, so an error
// here comes from the local database and this node can no longer follow
// the chain. Tests replace it.
var halt = func(err error) {
	panic(fmt.Sprintf("cron: cannot process tasks, local state is out of sync with the network: %+v", err))
}

func (t *Ticker) tick(ctx weave.Context, db weave.CacheableKVStore) ([]common.KVPair, error) {
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	var tags []common.KVPair
	for {
		key, raw, err := peek(db, now)
		if errors.ErrEmpty.Is(err) {
			return tags, nil
		}
		if err != nil {
			return tags, err
		}
		taskTags, err := t.run(ctx, db, now, key, raw)
		if err != nil {
			return tags, err
		}
		tags = append(tags, taskTags...)
		tags = append(tags, common.KVPair{Key: []byte("cron"), Value: key})
	}
}

// run executes one task in its own cache. The task is removed from the
// queue and its result stored in the same write.
func (t *Ticker) run(ctx weave.Context, db weave.CacheableKVStore, now time.Time, key, raw []byte) ([]common.KVPair, error) {
	height, _ := weave.GetHeight(ctx)
	logger := weave.GetLogger(ctx).With("module", "cron", "task", fmt.Sprintf("%X", key))
	res := TaskResult{
		Metadata:   &weave.Metadata{Schema: 1},
		Successful: true,
		ExecTime:   weave.AsUnixTime(now),
		ExecHeight: height,
	}

	cache := db.CacheWrap()
	var tags []common.KVPair
	if auth, msg, err := t.enc.UnmarshalTask(raw); err != nil {
		res.Successful = false
		res.Info = fmt.Sprintf("unmarshal task: %s", err)
	} else if out, err := t.h.Deliver(withAuth(ctx, auth), cache, &taskTx{msg: msg}); err != nil {
		cache.Discard()
		cache = db.CacheWrap()
		res.Successful = false
		res.Info = err.Error()
	} else {
		if out != nil {
			tags = out.Tags
		}
		logger.Debug("task done", "path", msg.Path())
	}
	if !res.Successful {
		logger.Error("task failed", "err", res.Info)
	}

	if _, err := t.results.Put(cache, key, &res); err != nil {
		cache.Discard()
		return nil, errors.Wrap(err, "store task result")
	}
	if err := cache.Delete(key); err != nil {
		cache.Discard()
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return tags, nil
}

// peek returns the oldest task due at now, or ErrEmpty.
func peek(db weave.ReadOnlyKVStore, now time.Time) (key, raw []byte, err error) {
	it, err := db.Iterator(queueKey(time.Time{}), queueKey(now))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer it.Close()
	if !it.Valid() {
		return nil, nil, errors.ErrEmpty
	}
	return append([]byte(nil), it.Key()...), append([]byte(nil), it.Value()...), nil
}

// taskTx carries the message of a task. It never leaves the node, so it
// cannot be serialized.
type taskTx struct {
	msg weave.Msg
}

var _ weave.Tx = (*taskTx)(nil)

func (tx *taskTx) GetMsg() (weave.Msg, error) { return tx.msg, nil }

func (tx *taskTx) Marshal() ([]byte, error) {
	return nil, errors.Wrap(errors.ErrHuman, "task transaction is not serializable")
}

func (tx *taskTx) Unmarshal([]byte) error {
	return errors.Wrap(errors.ErrHuman, "task transaction is not serializable")
}
