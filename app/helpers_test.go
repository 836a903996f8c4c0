package app

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/tendermint/tendermint/libs/common"
)

// panicAtHeightDecorator panics if ctx.height >= p.height
type panicAtHeightDecorator struct {
	height int64
}

var _ weave.Decorator = panicAtHeightDecorator{}

func (p panicAtHeightDecorator) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	if val, _ := weave.GetHeight(ctx); val >= p.height {
		panic("too high")
	}
	return next.Check(ctx, store, tx)
}

func (p panicAtHeightDecorator) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	if val, _ := weave.GetHeight(ctx); val >= p.height {
		panic("too high")
	}
	return next.Deliver(ctx, store, tx)
}

// recordingTicker remembers the block time of every tick and returns a
// single tag.
type recordingTicker struct {
	times []weave.UnixTime
}

var _ weave.Ticker = (*recordingTicker)(nil)

func (r *recordingTicker) Tick(ctx weave.Context, db weave.CacheableKVStore) weave.TickResult {
	now, err := weave.BlockTime(ctx)
	if err != nil {
		panic(err)
	}
	r.times = append(r.times, weave.AsUnixTime(now))
	return weave.TickResult{
		Tags: []common.KVPair{weave.Tag("tick", "done")},
	}
}
