package orm

import (
	"encoding/binary"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
)

// Sequence is a persistent counter. Its encoded values sort as bytes in
// the same order as numbers, so they make good primary keys: the pending
// transfers of x/transfer are keyed by one.
type Sequence struct {
	key []byte
}

// NewSequence returns the counter stored under _s.<bucket>:<name>.
func NewSequence(bucket, name string) Sequence {
	return Sequence{key: []byte("_s." + bucket + ":" + name)}
}

// NextVal advances the counter and returns the new value encoded.
func (s *Sequence) NextVal(db weave.KVStore) ([]byte, error) {
	n, err := s.NextInt(db)
	if err != nil {
		return nil, err
	}
	return EncodeSequence(n), nil
}

// NextInt advances the counter and returns the new value. The first value
// is 1.
func (s *Sequence) NextInt(db weave.KVStore) (uint64, error) {
	n, err := s.Latest(db)
	if err != nil {
		return 0, err
	}
	n++
	if err := db.Set(s.key, EncodeSequence(n)); err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return n, nil
}

// Latest returns the last value handed out, or 0, without advancing.
func (s *Sequence) Latest(db weave.ReadOnlyKVStore) (uint64, error) {
	raw, err := db.Get(s.key)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return 0, nil
	}
	return DecodeSequence(raw)
}

// EncodeSequence returns n as 8 big endian bytes.
func EncodeSequence(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}

func DecodeSequence(raw []byte) (uint64, error) {
	if err := ValidateSequence(raw); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}

// ValidateSequence checks that raw is an encoded sequence value.
func ValidateSequence(raw []byte) error {
	switch len(raw) {
	case 8:
		return nil
	case 0:
		return errors.Wrap(errors.ErrEmpty, "sequence")
	default:
		return errors.Wrapf(errors.ErrInput, "sequence of %d bytes, want 8", len(raw))
	}
}
