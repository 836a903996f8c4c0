package app

import (
	"encoding/json"
	"os"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
)

// Genesis is the part of a tendermint genesis file the application reads.
type Genesis struct {
	ChainID    string        `json:"chain_id"`
	AppOptions weave.Options `json:"app_state"`
}

func loadGenesis(path string) (Genesis, error) {
	var gen Genesis
	raw, err := os.ReadFile(path)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "decode genesis: %s", err)
	}
	return gen, nil
}

// ChainInitializers returns an initializer that runs inits in order and
// stops at the first failure.
func ChainInitializers(inits ...weave.Initializer) weave.Initializer {
	return initializers(inits)
}

type initializers []weave.Initializer

func (all initializers) FromGenesis(opts weave.Options, params weave.GenesisParams, kv weave.KVStore) error {
	for _, init := range all {
		if err := init.FromGenesis(opts, params, kv); err != nil {
			return err
		}
	}
	return nil
}
