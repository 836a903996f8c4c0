package app

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/x/deposit"
	"github.com/iov-one/weave-editions/x/sigs"
)

// Tx is the transaction format of the editions chain. It carries a single
// message, the signatures authorizing it and an optional deposit that pays
// for storage and purchases.
type Tx struct {
	Msg        weave.Msg
	Signatures []*sigs.StdSignature
	Deposit    coin.Amount
}

// make sure tx fulfills all interfaces
var (
	_ weave.Tx      = (*Tx)(nil)
	_ sigs.SignedTx = (*Tx)(nil)
	_ deposit.Tx    = (*Tx)(nil)
)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (weave.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// GetMsg returns the single message of the transaction.
func (tx *Tx) GetMsg() (weave.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "transaction without message")
	}
	return tx.Msg, nil
}

// GetSignatures implements sigs.SignedTx.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign. Signatures are never part of the
// signed content.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Msg: tx.Msg, Deposit: tx.Deposit}
	return unsigned.Marshal()
}

// GetDeposit implements deposit.Tx.
func (tx *Tx) GetDeposit() coin.Amount {
	return tx.Deposit
}

func (tx *Tx) Marshal() ([]byte, error) {
	return codec.Marshal(tx)
}

func (tx *Tx) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, tx)
}
