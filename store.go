package weave

// ReadOnlyKVStore reads a key value store. Keys must not be nil.
type ReadOnlyKVStore interface {
	// Get returns nil if the key is not present.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator walks [start, end) in ascending key order. A nil bound is
	// open. The range must not be written to while the iterator is open.
	Iterator(start, end []byte) (Iterator, error)

	// ReverseIterator walks [start, end) in descending key order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write half shared by KVStore and Batch. Neither
// keys nor values may be modified by the caller after the call.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the store every handler works with.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter

	// NewBatch returns a batch whose writes reach the store on Write.
	NewBatch() Batch
}

// Batch groups writes. Persistent stores apply them atomically.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator is a cursor over a key range:
//
//	it, err := db.Iterator(start, end)
//	...
//	defer it.Close()
//	for ; it.Valid(); it.Next() {
//		use(it.Key(), it.Value())
//	}
//
// Next, Key and Value panic once Valid returns false. Returned slices
// must not be modified.
type Iterator interface {
	Valid() bool
	Next() error
	Key() []byte
	Value() []byte
	Close()
}

// CacheableKVStore can stage writes in a cache layered over itself.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap stages writes over another store. Reads through the cache
// see the staged writes. Write applies them to the store below and Discard
// drops them. A cache can be wrapped again, giving nested savepoints.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is the persistent root store of a node. Every Commit
// creates a new version.
type CommitKVStore interface {
	// Get reads the last committed version.
	Get(key []byte) ([]byte, error)

	// CacheWrap stages writes for the next version.
	CacheWrap() KVCacheWrap
	Commit() (CommitID, error)

	// LoadLatestVersion loads the last complete version, even if a
	// later commit was interrupted.
	LoadLatestVersion() error
	LatestVersion() (CommitID, error)
}

// CommitID identifies one committed version by its height and hash.
type CommitID struct {
	Version int64
	Hash    []byte
}
