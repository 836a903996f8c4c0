package store

import "github.com/iov-one/weave-editions/errors"

// BudgetStore wraps a KVStore and allows a limited number of operations
// through it. Every read, write, delete and iterator step costs one. Once
// the budget is spent all further operations fail with ErrLimit and open
// iterators become invalid.
type BudgetStore struct {
	kv    KVStore
	left  uint64
	spent bool
}

var _ KVStore = (*BudgetStore)(nil)

// NewBudgetStore returns a store that allows limit operations on kv.
func NewBudgetStore(kv KVStore, limit uint64) *BudgetStore {
	return &BudgetStore{kv: kv, left: limit}
}

// Exhausted returns true if an operation was refused because the budget
// was spent.
func (b *BudgetStore) Exhausted() bool {
	return b.spent
}

func (b *BudgetStore) consume() error {
	if b.left == 0 {
		b.spent = true
		return errors.Wrap(errors.ErrLimit, "store operation budget spent")
	}
	b.left--
	return nil
}

// Get implements ReadOnlyKVStore.
func (b *BudgetStore) Get(key []byte) ([]byte, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	return b.kv.Get(key)
}

// Has implements ReadOnlyKVStore.
func (b *BudgetStore) Has(key []byte) (bool, error) {
	if err := b.consume(); err != nil {
		return false, err
	}
	return b.kv.Has(key)
}

// Iterator implements ReadOnlyKVStore.
func (b *BudgetStore) Iterator(start, end []byte) (Iterator, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	it, err := b.kv.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return &budgetIterator{Iterator: it, b: b}, nil
}

// ReverseIterator implements ReadOnlyKVStore.
func (b *BudgetStore) ReverseIterator(start, end []byte) (Iterator, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	it, err := b.kv.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return &budgetIterator{Iterator: it, b: b}, nil
}

// Set implements SetDeleter.
func (b *BudgetStore) Set(key, value []byte) error {
	if err := b.consume(); err != nil {
		return err
	}
	return b.kv.Set(key, value)
}

// Delete implements SetDeleter.
func (b *BudgetStore) Delete(key []byte) error {
	if err := b.consume(); err != nil {
		return err
	}
	return b.kv.Delete(key)
}

// NewBatch returns a batch whose operations are charged to the budget.
func (b *BudgetStore) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

type budgetIterator struct {
	Iterator
	b *BudgetStore
}

func (it *budgetIterator) Valid() bool {
	return !it.b.spent && it.Iterator.Valid()
}

func (it *budgetIterator) Next() error {
	if err := it.b.consume(); err != nil {
		return err
	}
	return it.Iterator.Next()
}
