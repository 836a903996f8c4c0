package sigs

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"golang.org/x/crypto/ed25519"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// UserData keeps the public key and the replay protecting sequence of a
// signer. It is stored under the address of the signature condition.
type UserData struct {
	Metadata *weave.Metadata
	Pubkey   []byte
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", u.Metadata.Validate())
	if seq := u.Sequence; seq < 0 {
		errs = errors.AppendField(errs, "Sequence", errors.Wrap(errors.ErrInput, "negative"))
	}
	if len(u.Pubkey) != ed25519.PublicKeySize {
		errs = errors.AppendField(errs, "Pubkey", errors.Wrapf(errors.ErrInput, "want %d bytes", ed25519.PublicKeySize))
	}
	return errs
}

func (u *UserData) Marshal() ([]byte, error) {
	return codec.Marshal(u)
}

func (u *UserData) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, u)
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
// Before incrementing the sequence, this function is testing for a value
// overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(errors.ErrState, "sequence mismatch: expected %d, got %d", expected, u.Sequence)
	}

	next := u.Sequence + 1

	// The greatest supported nonce value at client side is
	//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
	const maxSequenceValue = (1 << 53) - 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// Condition returns the signature condition of an ed25519 public key.
func Condition(pubkey ed25519.PublicKey) weave.Condition {
	return weave.NewCondition("sigs", "ed25519", pubkey)
}

// Bucket extends orm.ModelBucket with GetOrCreate
type Bucket struct {
	orm.ModelBucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &UserData{}),
	}
}

// GetOrCreate loads the user data of the given key owner. If none is stored
// yet, a new user with a zero sequence is returned.
func (b Bucket) GetOrCreate(db weave.ReadOnlyKVStore, pubkey ed25519.PublicKey) (*UserData, error) {
	var u UserData
	switch err := b.One(db, Condition(pubkey).Address(), &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{
			Metadata: &weave.Metadata{Schema: 1},
			Pubkey:   append([]byte(nil), pubkey...),
		}, nil
	default:
		return nil, err
	}
}

// Save stores the user data under the address of its public key.
func (b Bucket) Save(db weave.KVStore, u *UserData) error {
	_, err := b.Put(db, Condition(u.Pubkey).Address(), u)
	return err
}

// RegisterQuery will register this bucket as "/auth"
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("auth", qr)
}
