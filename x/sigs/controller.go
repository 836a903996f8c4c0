package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"golang.org/x/crypto/ed25519"
)

// SignCodeV1 prefixes every signed payload. A new layout of the signed
// bytes gets a new code.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// VerifyTxSignatures checks every signature of tx and bumps the sequence of
// each signer. It returns the signer conditions in signature order. The
// result is empty, not nil, for an unsigned transaction.
func VerifyTxSignatures(db weave.KVStore, tx SignedTx, chainID string) ([]weave.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()
	signers := make([]weave.Condition, 0, len(sigs))
	for i, sig := range sigs {
		cond, err := VerifySignature(db, sig, payload, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, cond)
	}
	return signers, nil
}

// VerifySignature checks a single signature of payload. The signature must
// carry the current sequence of its key, which is then incremented.
func VerifySignature(db weave.KVStore, sig *StdSignature, payload []byte, chainID string) (weave.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	b := NewBucket()
	user, err := b.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, errors.Wrap(err, "load signer")
	}
	digest, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !ed25519.Verify(user.Pubkey, digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature does not match")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := b.Save(db, user); err != nil {
		return nil, errors.Wrap(err, "save signer")
	}
	return Condition(user.Pubkey), nil
}

// BuildSignBytes returns the sha512 digest that is signed for a
// transaction. The digest covers
//
//	SignCodeV1 | len(chainID) as one byte | chainID | big endian int64 seq | payload
//
// so a signature is bound to one chain and one nonce.
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	switch {
	case seq < 0:
		return nil, errors.Wrap(errors.ErrInput, "negative sequence")
	case !weave.IsValidChainID(chainID):
		return nil, errors.Wrapf(errors.ErrInput, "invalid chain id %q", chainID)
	}
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], uint64(seq))

	h := sha512.New()
	h.Write(SignCodeV1)
	h.Write([]byte{byte(len(chainID))})
	h.Write([]byte(chainID))
	h.Write(nonce[:])
	h.Write(payload)
	return h.Sum(nil), nil
}

// SignTx signs tx for the given chain with the given nonce.
func SignTx(key ed25519.PrivateKey, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(payload, chainID, seq)
	if err != nil {
		return nil, err
	}
	pub := key.Public().(ed25519.PublicKey)
	return &StdSignature{
		Pubkey:    append([]byte(nil), pub...),
		Signature: ed25519.Sign(key, digest),
		Sequence:  seq,
	}, nil
}

// NextNonce returns the sequence the next signature of pubkey must carry.
// Unknown keys start at zero.
func NextNonce(db weave.ReadOnlyKVStore, pubkey ed25519.PublicKey) (int64, error) {
	user, err := NewBucket().GetOrCreate(db, pubkey)
	if err != nil {
		return 0, errors.Wrap(err, "load signer")
	}
	return user.Sequence, nil
}
