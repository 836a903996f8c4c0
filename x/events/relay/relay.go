/*
Package relay drains the event log to an external consumer.

A Relay reads committed events after its cursor from a Source, hands them to
a Sender through a worker pool and advances the cursor past every event that
was delivered, in log order. An event that failed to send is retried, together
with everything after it, on the next flush.
*/
package relay

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/x/events"
	"github.com/tendermint/tendermint/libs/log"
)

// Source provides committed events.
type Source interface {
	// After returns up to limit events with a sequence greater than
	// cursor, in log order.
	After(cursor uint64, limit int) ([]events.Record, error)
}

// Sender delivers a single event to the consumer.
type Sender interface {
	Send(ctx context.Context, e *events.Event) error
}

// Config configures a Relay.
type Config struct {
	BatchSize int
	Workers   int
	Interval  time.Duration
	// Cursor is the sequence of the last event already delivered.
	Cursor uint64

	Source Source
	Sender Sender
	Logger log.Logger
}

// Relay moves events from the source to the sender.
type Relay struct {
	source   Source
	sender   Sender
	batch    int
	interval time.Duration
	logger   log.Logger
	pool     *workerpool.WorkerPool

	mu     sync.Mutex
	cursor uint64
}

// New returns a relay. Call Close to release its workers.
func New(cfg Config) *Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	return &Relay{
		source:   cfg.Source,
		sender:   cfg.Sender,
		batch:    cfg.BatchSize,
		interval: cfg.Interval,
		logger:   cfg.Logger.With("module", "relay"),
		pool:     workerpool.New(cfg.Workers),
		cursor:   cfg.Cursor,
	}
}

// Cursor returns the sequence of the last delivered event.
func (r *Relay) Cursor() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Flush sends a single batch of events and returns how many of them were
// delivered in order.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	cursor := r.Cursor()
	records, err := r.source.After(cursor, r.batch)
	if err != nil {
		return 0, errors.Wrap(err, "read events")
	}
	if len(records) == 0 {
		return 0, nil
	}

	results := make([]error, len(records))
	var wg sync.WaitGroup
	for i := range records {
		i := i
		wg.Add(1)
		r.pool.Submit(func() {
			defer wg.Done()
			results[i] = r.sender.Send(ctx, &records[i].Event)
		})
	}
	wg.Wait()

	var sent int
	for i, err := range results {
		if err != nil {
			r.logger.Error("cannot send event", "seq", records[i].Seq, "kind", records[i].Event.Kind, "err", err)
			break
		}
		cursor = records[i].Seq
		sent++
	}

	r.mu.Lock()
	r.cursor = cursor
	r.mu.Unlock()

	if sent < len(records) {
		return sent, errors.Wrapf(errors.ErrState, "%d of %d events not delivered", len(records)-sent, len(records))
	}
	return sent, nil
}

// Run flushes the events periodically until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		// Drain everything available before waiting again.
		for {
			n, err := r.Flush(ctx)
			if err != nil || n < r.batch {
				break
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close waits for running sends and stops the workers.
func (r *Relay) Close() {
	r.pool.StopWait()
}
