package store

import (
	"testing"

	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/weavetest/assert"
)

func TestBudgetStore(t *testing.T) {
	b := NewBudgetStore(MemStore(), 3)

	assert.Nil(t, b.Set([]byte("a"), []byte("1")))
	v, err := b.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("1"), v)
	assert.Nil(t, b.Delete([]byte("a")))
	assert.Equal(t, false, b.Exhausted())

	_, err = b.Has([]byte("a"))
	assert.IsErr(t, errors.ErrLimit, err)
	assert.Equal(t, true, b.Exhausted())

	// Spent stays spent.
	assert.IsErr(t, errors.ErrLimit, b.Set([]byte("b"), []byte("2")))
}

func TestBudgetStoreChargesIteration(t *testing.T) {
	base := MemStore()
	for _, k := range []string{"a", "b", "c", "d"} {
		assert.Nil(t, base.Set([]byte(k), []byte(k)))
	}

	// Opening costs one, every step another one.
	b := NewBudgetStore(base, 3)
	it, err := b.Iterator(nil, nil)
	assert.Nil(t, err)
	defer it.Close()

	var seen int
	for ; it.Valid(); it.Next() {
		seen++
	}
	assert.Equal(t, 3, seen)
	assert.Equal(t, true, b.Exhausted())
}

func TestBudgetStoreWithoutLimitReached(t *testing.T) {
	b := NewBudgetStore(MemStore(), 100)
	for i := 0; i < 10; i++ {
		assert.Nil(t, b.Set([]byte{byte(i)}, []byte("v")))
	}
	assert.Equal(t, false, b.Exhausted())
}
