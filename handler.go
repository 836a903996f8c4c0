package weave

import (
	"encoding/json"
)

// Handler processes one kind of message, for example minting an edition
// or creating a series.
type Handler interface {
	Checker
	Deliverer
}

// Checker validates a transaction before it enters the mempool.
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer executes a transaction that is part of a block.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator runs around a handler, for example to authenticate signers or
// to settle a deposit, and decides whether to call it.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry binds message kinds to their handlers.
type Registry interface {
	Handle(m Msg, h Handler)
}

// Options is the application state of the genesis file, one raw section
// per extension.
type Options map[string]json.RawMessage

// ReadOptions decodes the section under key into obj. A missing section
// leaves obj untouched.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, obj)
}

// Initializer loads the genesis state of an extension.
type Initializer interface {
	FromGenesis(opts Options, params GenesisParams, kv KVStore) error
}

// GenesisParams are the chain parameters known at genesis.
type GenesisParams struct {
	ChainID string
}
