package cron

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
)

// Task is the serialized form of a scheduled message.
type Task struct {
	Metadata *weave.Metadata
	// Auth holds the conditions the message is executed with.
	Auth []weave.Condition
	// Msg is the message serialized together with its type name.
	Msg []byte
}

func (t *Task) Validate() error {
	if err := t.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(t.Msg) == 0 {
		return errors.Wrap(errors.ErrEmpty, "message")
	}
	for i, c := range t.Auth {
		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "auth %d", i)
		}
	}
	return nil
}

func (t *Task) Marshal() ([]byte, error) {
	return codec.Marshal(t)
}

func (t *Task) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, t)
}

// TaskResult is stored for every executed task, under the ID of the task.
type TaskResult struct {
	Metadata *weave.Metadata
	// Successful is true if the message was delivered without an error.
	Successful bool
	// Info holds the error message of a failed execution.
	Info string
	// ExecTime is the block time the task was executed at.
	ExecTime weave.UnixTime
	// ExecHeight is the block height the task was executed at.
	ExecHeight int64
}

var _ orm.Model = (*TaskResult)(nil)

func (t *TaskResult) Validate() error {
	if err := t.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return nil
}

func (t *TaskResult) Marshal() ([]byte, error) {
	return codec.Marshal(t)
}

func (t *TaskResult) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, t)
}

// NewTaskResultBucket returns a bucket for storing Task results.
func NewTaskResultBucket() orm.ModelBucket {
	return orm.NewModelBucket("trs", &TaskResult{})
}

// RegisterQuery exposes task results to queries.
func RegisterQuery(qr weave.QueryRouter) {
	NewTaskResultBucket().Register("crontaskresults", qr)
}

// TaskMarshaler represents an encoded that is used to marshal and unmarshal a
// task.
type TaskMarshaler interface {
	// MarshalTask serialize given data into its binary format.
	MarshalTask(auth []weave.Condition, msg weave.Msg) ([]byte, error)

	// UnmarshalTask deserialize data (created using MarshalTask method)
	// from its binary representation into Go structures.
	UnmarshalTask([]byte) (auth []weave.Condition, msg weave.Msg, err error)
}

// NewTaskMarshaler returns a TaskMarshaler that supports every message
// registered with the codec package.
func NewTaskMarshaler() TaskMarshaler {
	return codecTaskMarshaler{}
}

type codecTaskMarshaler struct{}

func (codecTaskMarshaler) MarshalTask(auth []weave.Condition, msg weave.Msg) ([]byte, error) {
	rawMsg, err := codec.MarshalMsg(msg)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal message")
	}
	t := Task{
		Metadata: &weave.Metadata{Schema: 1},
		Auth:     auth,
		Msg:      rawMsg,
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid task")
	}
	return t.Marshal()
}

func (codecTaskMarshaler) UnmarshalTask(raw []byte) ([]weave.Condition, weave.Msg, error) {
	var t Task
	if err := t.Unmarshal(raw); err != nil {
		return nil, nil, errors.Wrap(err, "cannot unmarshal task")
	}
	msg, err := codec.UnmarshalMsg(t.Msg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot unmarshal message")
	}
	return t.Auth, msg, nil
}
