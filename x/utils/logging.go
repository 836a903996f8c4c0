package utils

import (
	"time"

	weave "github.com/iov-one/weave-editions"
)

// Logging writes one entry per transaction with its path and duration.
// Failures are logged as errors. Successful checks are logged at debug
// level and successful deliveries at info level.
type Logging struct{}

var _ weave.Decorator = Logging{}

func NewLogging() Logging { return Logging{} }

func (Logging) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	entry := txEntry{ctx: ctx, tx: tx, start: start, err: err}
	if err == nil {
		entry.log = res.Log
	}
	entry.write(true)
	return res, err
}

func (Logging) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	entry := txEntry{ctx: ctx, tx: tx, start: start, err: err}
	if err == nil {
		entry.log = res.Log
	}
	entry.write(false)
	return res, err
}

type txEntry struct {
	ctx   weave.Context
	tx    weave.Tx
	start time.Time
	log   string
	err   error
}

func (e txEntry) write(quiet bool) {
	logger := weave.GetLogger(e.ctx).With(
		"path", weave.GetPath(e.tx),
		"duration_us", time.Since(e.start).Microseconds(),
	)
	switch {
	case e.err != nil:
		logger.Error(e.log, "err", e.err)
	case quiet:
		logger.Debug(e.log)
	default:
		logger.Info(e.log)
	}
}
