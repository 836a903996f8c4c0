package app

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp runs transactions and scheduled tasks on top of the state and
// queries of a StoreApp.
type BaseApp struct {
	*StoreApp
	decoder weave.TxDecoder
	handler weave.Handler
	ticker  weave.Ticker
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp returns an application. The ticker may be nil when nothing is
// ever scheduled. Debug mode reports internal errors to clients.
func NewBaseApp(store *StoreApp, decoder weave.TxDecoder, handler weave.Handler, ticker weave.Ticker, debug bool) BaseApp {
	store.debug = debug
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		ticker:   ticker,
		debug:    debug,
	}
}

// DeliverTx executes a transaction of the current block.
func (b BaseApp) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	tx, err := b.decode(raw)
	if err != nil {
		return weave.DeliverTxError(err, b.debug)
	}
	ctx := b.txContext("deliver_tx", tx)
	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return weave.DeliverOrError(res, err, b.debug)
}

// CheckTx validates a transaction for the mempool.
func (b BaseApp) CheckTx(raw []byte) abci.ResponseCheckTx {
	tx, err := b.decode(raw)
	if err != nil {
		return weave.CheckTxError(err, b.debug)
	}
	ctx := b.txContext("check_tx", tx)
	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return weave.CheckOrError(res, err, b.debug)
}

func (b BaseApp) txContext(call string, tx weave.Tx) weave.Context {
	return weave.WithLogInfo(b.BlockContext(), "call", call, "path", weave.GetPath(tx))
}

// BeginBlock starts a block and runs the tasks that became due, for example
// the resolution of transfers awaiting acknowledgment.
func (b BaseApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	b.StoreApp.BeginBlock(req)
	if b.ticker == nil {
		return abci.ResponseBeginBlock{}
	}
	ctx := weave.WithLogInfo(b.BlockContext(), "call", "begin_block")
	res := b.ticker.Tick(ctx, b.DeliverStore())
	return abci.ResponseBeginBlock{Tags: res.Tags}
}

// decode turns a decoder panic on malformed input into an error.
func (b BaseApp) decode(raw []byte) (tx weave.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(raw)
}
