package orm

import (
	"testing"

	"github.com/iov-one/weave-editions/store"
	"github.com/iov-one/weave-editions/weavetest/assert"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("series", "id")

	latest, err := s.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), latest)

	for want := uint64(1); want <= 3; want++ {
		got, err := s.NextInt(db)
		assert.Nil(t, err)
		assert.Equal(t, want, got)
	}

	raw, err := s.NextVal(db)
	assert.Nil(t, err)
	assert.Equal(t, EncodeSequence(4), raw)

	// a sequence with another name is independent
	other := NewSequence("series", "other")
	got, err := other.NextInt(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), got)

	latest, err = s.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(4), latest)
}
