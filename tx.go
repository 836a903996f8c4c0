package weave

import (
	"reflect"

	"github.com/iov-one/weave-editions/errors"
)

// Persistent is a value with a binary form. Unmarshal needs a pointer
// receiver, so it is split from Marshaller for code that only encodes.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

type Marshaller interface {
	Marshal() ([]byte, error)
}

// Msg is the request of a transaction: one state transition such as
// minting an edition. Authentication is carried by the Tx around it.
type Msg interface {
	Persistent

	// Path routes the message to its handler, for example "series/mint".
	// It matches [0-9A-Za-z_\-/]+.
	Path() string

	// Validate checks the message without reading any state.
	Validate() error
}

// Tx is what a client submits. Every application defines its own Tx type
// holding the message together with the data its decorators need, such as
// signatures or an attached deposit.
type Tx interface {
	Persistent
	GetMsg() (Msg, error)
}

// TxDecoder reads a transaction from its binary form.
type TxDecoder func(raw []byte) (Tx, error)

// GetPath returns the path of the message of tx, or "(missing)".
func GetPath(tx Tx) string {
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg validates the message of tx and copies it into dst. dst must be
// a pointer to the concrete message type.
//
//	var msg MintMsg
//	if err := weave.LoadMsg(tx, &msg); err != nil {
//		return err
//	}
func LoadMsg(tx Tx, dst interface{}) error {
	msg, err := tx.GetMsg()
	switch {
	case err != nil:
		return errors.Wrap(err, "transaction message")
	case msg == nil:
		return errors.Wrap(errors.ErrMsg, "transaction has no message")
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}

	out := reflect.ValueOf(dst)
	if out.Kind() != reflect.Ptr || out.IsNil() {
		return errors.Wrapf(errors.ErrHuman, "cannot load message into %T", dst)
	}
	in := reflect.Indirect(reflect.ValueOf(msg))
	if in.Type() != out.Elem().Type() {
		return errors.Wrapf(errors.ErrType, "message is %T, not %T", msg, dst)
	}
	out.Elem().Set(in)
	return nil
}
