package app

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
)

// CommitStore keeps the committed state together with the two caches a
// node works on between commits: one for DeliverTx and one for CheckTx.
// The check cache is thrown away on every commit, the deliver cache is
// flushed.
//
// All methods are called from the single ABCI consensus goroutine.
type CommitStore struct {
	committed weave.CommitKVStore
	deliver   weave.KVCacheWrap
	check     weave.KVCacheWrap
}

// NewCommitStore loads the latest version of store. It panics if the
// store cannot be loaded, as a node cannot start without its state.
func NewCommitStore(store weave.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(errors.Wrap(err, "load latest version"))
	}
	cs := &CommitStore{committed: store}
	cs.reset()
	return cs
}

func (cs *CommitStore) reset() {
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
}

// CommitInfo returns the height and hash of the last commit.
func (cs *CommitStore) CommitInfo() (weave.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit persists everything delivered since the last commit.
func (cs *CommitStore) Commit() (weave.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return weave.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	cs.check.Discard()
	id, err := cs.committed.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	cs.reset()
	return id, nil
}

func (cs *CommitStore) CheckStore() weave.CacheableKVStore   { return cs.check }
func (cs *CommitStore) DeliverStore() weave.CacheableKVStore { return cs.deliver }

// QueryStore returns a read only view of the last commit. Uncommitted
// deliveries are not visible.
func (cs *CommitStore) QueryStore() weave.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

// chainIDKey lives in the reserved _wv: namespace of framework data.
var chainIDKey = []byte("_wv:chainID")

// mustLoadChainID returns the stored chain id, or an empty string before
// genesis.
func mustLoadChainID(kv weave.ReadOnlyKVStore) string {
	raw, err := kv.Get(chainIDKey)
	if err != nil {
		panic(errors.Wrap(err, "load chain id"))
	}
	return string(raw)
}

// saveChainID writes the chain id once. A second call fails with
// ErrImmutable.
func saveChainID(kv weave.KVStore, chainID string) error {
	if !weave.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "invalid chain id %q", chainID)
	}
	switch exists, err := kv.Has(chainIDKey); {
	case err != nil:
		return errors.Wrap(errors.ErrDatabase, err.Error())
	case exists:
		return errors.Wrap(errors.ErrImmutable, "chain id is set at genesis")
	}
	if err := kv.Set(chainIDKey, []byte(chainID)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
