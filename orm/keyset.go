package orm

import (
	"encoding/binary"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
)

// KeySet is a collection of enumerable sets of keys, stored directly in the
// KVStore. Each set is identified by its own key, for example the address
// of an owner.
//
// Adding, removing and testing membership are constant time operations.
// Elements keep their insertion order until one is removed: a removed
// element is replaced by the last one.
//
// Storage layout, for set s of collection c:
//    _ks.<c>:<len(s)><s>:n           number of elements
//    _ks.<c>:<len(s)><s>:a<index>    element at position index
//    _ks.<c>:<len(s)><s>:m<element>  position of element plus one
type KeySet struct {
	prefix []byte
}

// NewKeySet returns a collection of sets stored under the given name.
func NewKeySet(name string) KeySet {
	if !isBucketName(name) {
		panic("invalid key set name: " + name)
	}
	return KeySet{prefix: []byte("_ks." + name + ":")}
}

func (k KeySet) setPrefix(set []byte) []byte {
	out := make([]byte, 0, len(k.prefix)+2+len(set)+1)
	out = append(out, k.prefix...)
	var size [2]byte
	binary.BigEndian.PutUint16(size[:], uint16(len(set)))
	out = append(out, size[:]...)
	out = append(out, set...)
	return append(out, ':')
}

func (k KeySet) sizeKey(set []byte) []byte {
	return append(k.setPrefix(set), 'n')
}

func (k KeySet) arrayKey(set []byte, index uint64) []byte {
	return append(append(k.setPrefix(set), 'a'), EncodeSequence(index)...)
}

func (k KeySet) mapKey(set, elem []byte) []byte {
	return append(append(k.setPrefix(set), 'm'), elem...)
}

// Size returns the number of elements in the set.
func (k KeySet) Size(db weave.ReadOnlyKVStore, set []byte) (uint64, error) {
	raw, err := db.Get(k.sizeKey(set))
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	return DecodeSequence(raw)
}

// Contains returns true if the element is part of the set.
func (k KeySet) Contains(db weave.ReadOnlyKVStore, set, elem []byte) (bool, error) {
	return db.Has(k.mapKey(set, elem))
}

// At returns the element stored at the given position.
func (k KeySet) At(db weave.ReadOnlyKVStore, set []byte, index uint64) ([]byte, error) {
	size, err := k.Size(db, set)
	if err != nil {
		return nil, err
	}
	if index >= size {
		return nil, errors.Wrapf(errors.ErrLimit, "index %d out of bounds", index)
	}
	return db.Get(k.arrayKey(set, index))
}

// Add appends the element to the set. It returns false if the element was
// already present, in which case nothing is changed.
func (k KeySet) Add(db weave.KVStore, set, elem []byte) (bool, error) {
	if len(elem) == 0 {
		return false, errors.Wrap(errors.ErrEmpty, "element")
	}
	if ok, err := k.Contains(db, set, elem); err != nil || ok {
		return false, err
	}
	size, err := k.Size(db, set)
	if err != nil {
		return false, err
	}
	if err := db.Set(k.arrayKey(set, size), elem); err != nil {
		return false, err
	}
	if err := db.Set(k.mapKey(set, elem), EncodeSequence(size+1)); err != nil {
		return false, err
	}
	if err := db.Set(k.sizeKey(set), EncodeSequence(size+1)); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the element from the set. It returns false if the element
// was not present.
func (k KeySet) Remove(db weave.KVStore, set, elem []byte) (bool, error) {
	raw, err := db.Get(k.mapKey(set, elem))
	if err != nil || raw == nil {
		return false, err
	}
	pos, err := DecodeSequence(raw)
	if err != nil {
		return false, err
	}
	index := pos - 1

	size, err := k.Size(db, set)
	if err != nil {
		return false, err
	}
	if size == 0 {
		return false, errors.Wrap(errors.ErrState, "key set size out of sync")
	}
	last := size - 1

	if index != last {
		lastElem, err := db.Get(k.arrayKey(set, last))
		if err != nil {
			return false, err
		}
		if err := db.Set(k.arrayKey(set, index), lastElem); err != nil {
			return false, err
		}
		if err := db.Set(k.mapKey(set, lastElem), EncodeSequence(index+1)); err != nil {
			return false, err
		}
	}
	if err := db.Delete(k.arrayKey(set, last)); err != nil {
		return false, err
	}
	if err := db.Delete(k.mapKey(set, elem)); err != nil {
		return false, err
	}
	if last == 0 {
		err = db.Delete(k.sizeKey(set))
	} else {
		err = db.Set(k.sizeKey(set), EncodeSequence(last))
	}
	return err == nil, err
}

// Page returns the elements of the set that fall into the requested window.
func (k KeySet) Page(db weave.ReadOnlyKVStore, set []byte, req PageRequest) ([][]byte, error) {
	size, err := k.Size(db, set)
	if err != nil {
		return nil, err
	}
	start, end, err := req.Window(size)
	if err != nil {
		return nil, err
	}
	res := make([][]byte, 0, end-start)
	for i := start; i < end; i++ {
		elem, err := db.Get(k.arrayKey(set, i))
		if err != nil {
			return nil, err
		}
		res = append(res, elem)
	}
	return res, nil
}
