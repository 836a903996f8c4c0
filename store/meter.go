package store

// MeteredStore wraps a KVStore and keeps track of how many bytes of storage
// all write operations occupy, or release. The size of an entry is the
// length of its key plus the length of its value.
type MeteredStore struct {
	kv   KVStore
	used int64
}

var _ CacheableKVStore = (*MeteredStore)(nil)

// NewMeteredStore returns a store that counts the storage usage of every
// write performed through it.
func NewMeteredStore(kv KVStore) *MeteredStore {
	return &MeteredStore{kv: kv}
}

// Used returns the amount of bytes that the writes performed so far
// added to the store. It is negative if more was released than allocated.
func (m *MeteredStore) Used() int64 {
	return m.used
}

// Get implements ReadOnlyKVStore.
func (m *MeteredStore) Get(key []byte) ([]byte, error) {
	return m.kv.Get(key)
}

// Has implements ReadOnlyKVStore.
func (m *MeteredStore) Has(key []byte) (bool, error) {
	return m.kv.Has(key)
}

// Iterator implements ReadOnlyKVStore.
func (m *MeteredStore) Iterator(start, end []byte) (Iterator, error) {
	return m.kv.Iterator(start, end)
}

// ReverseIterator implements ReadOnlyKVStore.
func (m *MeteredStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return m.kv.ReverseIterator(start, end)
}

// Set implements SetDeleter.
func (m *MeteredStore) Set(key, value []byte) error {
	prev, err := m.kv.Get(key)
	if err != nil {
		return err
	}
	if err := m.kv.Set(key, value); err != nil {
		return err
	}
	if prev != nil {
		m.used -= int64(len(key) + len(prev))
	}
	m.used += int64(len(key) + len(value))
	return nil
}

// Delete implements SetDeleter.
func (m *MeteredStore) Delete(key []byte) error {
	prev, err := m.kv.Get(key)
	if err != nil {
		return err
	}
	if err := m.kv.Delete(key); err != nil {
		return err
	}
	if prev != nil {
		m.used -= int64(len(key) + len(prev))
	}
	return nil
}

// NewBatch returns a batch that writes through the meter, so that batched
// operations are counted as well.
func (m *MeteredStore) NewBatch() Batch {
	return NewNonAtomicBatch(m)
}

// CacheWrap returns a cache that writes through the meter once flushed.
func (m *MeteredStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(m, m.NewBatch(), nil)
}
