package orm

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
)

// bucketQuery serves raw key and prefix queries for a bucket.
type bucketQuery struct {
	prefix []byte
}

var _ weave.QueryHandler = bucketQuery{}

// RegisterQuery exposes the whole store under "/" for raw key and prefix
// lookups.
func RegisterQuery(qr weave.QueryRouter) {
	qr.Register("/", bucketQuery{})
}

func (q bucketQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	key := make([]byte, len(q.prefix)+len(data))
	copy(key, q.prefix)
	copy(key[len(q.prefix):], data)

	switch mod {
	case weave.KeyQueryMod:
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		return []weave.Model{{Key: key, Value: value}}, nil
	case weave.PrefixQueryMod:
		return queryPrefix(db, key)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

func queryPrefix(db weave.ReadOnlyKVStore, prefix []byte) ([]weave.Model, error) {
	start, end := prefixRange(prefix)
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(it)
}

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(it weave.Iterator) ([]weave.Model, error) {
	defer it.Close()

	var res []weave.Model
	for it.Valid() {
		res = append(res, weave.Pair(it.Key(), it.Value()))
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// prefixRange turns a prefix into (start, end) to create
// and iterator
func prefixRange(prefix []byte) ([]byte, []byte) {
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// wait, what if that overflowed?....
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}

	// okay, funny guy, you gave us FFF, no end to this range...
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}
