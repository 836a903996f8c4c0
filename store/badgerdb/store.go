/*
Package badgerdb provides a persistent CommitKVStore on top of the badger
key value database.

All application data is kept under a dedicated prefix, next to a single
metadata entry that holds the latest committed version and its hash. Writes
of a cache wrap are buffered in memory and persisted together with the new
metadata in a single badger transaction on Commit, so a crash never leaves a
partially written block behind.
*/
package badgerdb

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/store"
)

var (
	dataPrefix = []byte("d/")
	metaKey    = []byte("m/commit")
)

// CommitStore is a CommitKVStore backed by a badger database.
type CommitStore struct {
	db *badger.DB

	mu      sync.Mutex
	pending []store.Op
	latest  store.CommitID
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore opens (or creates) a database in the given directory and
// loads the latest committed version.
func NewCommitStore(path string) (*CommitStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	s := &CommitStore{db: db}
	if err := s.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database. Pending, not committed changes
// are lost.
func (s *CommitStore) Close() error {
	return s.db.Close()
}

// Get returns the value at last committed state.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	return committed{db: s.db}.Get(key)
}

// CacheWrap returns a cache on top of the committed state. Writing the
// cache schedules its changes for the next commit.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(committed{db: s.db}, &commitBatch{s: s}, nil)
}

// Commit persists all changes written since the last commit, together with
// the next version number and hash.
func (s *CommitStore) Commit() (store.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := store.CommitID{
		Version: s.latest.Version + 1,
		Hash:    chainHash(s.latest.Hash, s.pending),
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, op := range s.pending {
			key := dataKey(op.Key())
			if op.IsSetOp() {
				if err := txn.Set(key, op.Value()); err != nil {
					return err
				}
			} else if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return txn.Set(metaKey, encodeCommitID(next))
	})
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	s.pending = nil
	s.latest = next
	return next, nil
}

// LoadLatestVersion loads the latest persisted version and drops all
// pending changes.
func (s *CommitStore) LoadLatestVersion() error {
	var id store.CommitID
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey)
		if err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id, err = decodeCommitID(raw)
		return err
	})
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}

	s.mu.Lock()
	s.latest = id
	s.pending = nil
	s.mu.Unlock()
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, nil
}

// chainHash computes the hash of the next version from the previous hash
// and all operations of a block, in the order they were applied.
func chainHash(prev []byte, ops []store.Op) []byte {
	h := sha256.New()
	h.Write(prev)
	var size [4]byte
	for _, op := range ops {
		if op.IsSetOp() {
			h.Write([]byte{'s'})
		} else {
			h.Write([]byte{'d'})
		}
		binary.BigEndian.PutUint32(size[:], uint32(len(op.Key())))
		h.Write(size[:])
		h.Write(op.Key())
		binary.BigEndian.PutUint32(size[:], uint32(len(op.Value())))
		h.Write(size[:])
		h.Write(op.Value())
	}
	return h.Sum(nil)
}

func encodeCommitID(id store.CommitID) []byte {
	raw := make([]byte, 8, 8+len(id.Hash))
	binary.BigEndian.PutUint64(raw, uint64(id.Version))
	return append(raw, id.Hash...)
}

func decodeCommitID(raw []byte) (store.CommitID, error) {
	if len(raw) < 8 {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, "malformed commit metadata")
	}
	return store.CommitID{
		Version: int64(binary.BigEndian.Uint64(raw[:8])),
		Hash:    append([]byte(nil), raw[8:]...),
	}, nil
}

func dataKey(key []byte) []byte {
	out := make([]byte, 0, len(dataPrefix)+len(key))
	out = append(out, dataPrefix...)
	return append(out, key...)
}

// commitBatch collects writes of a cache wrap so that they are persisted
// by the next commit.
type commitBatch struct {
	s   *CommitStore
	ops []store.Op
}

var _ store.Batch = (*commitBatch)(nil)

func (b *commitBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, store.SetOp(copyBytes(key), copyBytes(value)))
	return nil
}

func (b *commitBatch) Delete(key []byte) error {
	b.ops = append(b.ops, store.DelOp(copyBytes(key)))
	return nil
}

func (b *commitBatch) Write() error {
	b.s.mu.Lock()
	b.s.pending = append(b.s.pending, b.ops...)
	b.s.mu.Unlock()
	b.ops = nil
	return nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// committed gives read access to the persisted state.
type committed struct {
	db *badger.DB
}

var _ store.ReadOnlyKVStore = committed{}

func (c committed) Get(key []byte) ([]byte, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dataKey(key))
		if err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		if value == nil {
			value = []byte{}
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return value, nil
}

func (c committed) Has(key []byte) (bool, error) {
	var found bool
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(dataKey(key))
		if err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return found, nil
}

func (c committed) Iterator(start, end []byte) (store.Iterator, error) {
	models, err := c.scan(start, end)
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(models), nil
}

func (c committed) ReverseIterator(start, end []byte) (store.Iterator, error) {
	models, err := c.scan(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return store.NewSliceIterator(models), nil
}

// scan loads all entries within [start, end) in ascending order.
func (c committed) scan(start, end []byte) ([]store.Model, error) {
	var models []store.Model
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = dataPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(dataKey(start)); it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)[len(dataPrefix):]
			if end != nil && bytes.Compare(key, end) >= 0 {
				break
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if value == nil {
				value = []byte{}
			}
			models = append(models, store.Pair(key, value))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return models, nil
}
