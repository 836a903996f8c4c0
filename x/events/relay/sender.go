package relay

import (
	"context"
	"encoding/json"

	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/x/events"
	"github.com/tendermint/tendermint/libs/log"
)

// LogSender writes every event as a structured log entry.
type LogSender struct {
	logger log.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender returns a sender writing to the given logger.
func NewLogSender(logger log.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, e *events.Event) error {
	raw, err := e.RawPayload()
	if err != nil {
		return err
	}
	if !json.Valid(raw) {
		return errors.Wrapf(errors.ErrInput, "event %s payload is not JSON", e.ID)
	}
	s.logger.Info("event",
		"id", e.ID,
		"kind", e.Kind,
		"height", e.Height,
		"time", e.Time,
		"payload", string(raw),
	)
	return nil
}
