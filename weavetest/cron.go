package weavetest

import (
	"bytes"
	"encoding/binary"
	"sort"
	"time"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
)

// Cron is a in memory implementation of the scheduler. Scheduled tasks are
// never executed automatically. Use Due to pop tasks that are ready to run
// and execute them in the test.
type Cron struct {
	Err   error
	seq   uint64
	tasks []*ScheduledTask
}

// ScheduledTask is a single message scheduled for execution.
type ScheduledTask struct {
	ID    []byte
	RunAt time.Time
	Auth  []weave.Condition
	Msg   weave.Msg
}

var _ weave.Scheduler = (*Cron)(nil)

// Schedule implementes weave.Scheduler interface.
func (c *Cron) Schedule(db weave.KVStore, runAt time.Time, auth []weave.Condition, msg weave.Msg) ([]byte, error) {
	if c.Err != nil {
		return nil, c.Err
	}

	c.seq++
	tid := make([]byte, 8)
	binary.BigEndian.PutUint64(tid, c.seq)

	c.tasks = append(c.tasks, &ScheduledTask{
		ID:    tid,
		RunAt: runAt,
		Auth:  auth,
		Msg:   msg,
	})

	// Keep in order from the oldest to the newest. Those to be executed
	// first are first.
	sort.SliceStable(c.tasks, func(i, j int) bool {
		return c.tasks[i].RunAt.Before(c.tasks[j].RunAt)
	})

	return tid, nil
}

// Delete implementes weave.Scheduler interface.
func (c *Cron) Delete(db weave.KVStore, taskID []byte) error {
	if c.Err != nil {
		return c.Err
	}

	for i, t := range c.tasks {
		if bytes.Equal(t.ID, taskID) {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return nil
		}
	}
	return errors.Wrap(errors.ErrNotFound, "no task")
}

// Due removes and returns all tasks that should be executed at given time.
func (c *Cron) Due(now time.Time) []*ScheduledTask {
	var due []*ScheduledTask
	for _, t := range c.tasks {
		if t.RunAt.After(now) {
			// Tasks are ordered by execution time.
			break
		}
		due = append(due, t)
	}
	c.tasks = c.tasks[len(due):]
	return due
}

// Pending returns all tasks that are still waiting for the execution.
func (c *Cron) Pending() []*ScheduledTask {
	return c.tasks
}
