/*
Package codec provides the binary serialization used for all persisted
models, messages and transactions.

Models implement weave.Persistent by calling Marshal and Unmarshal of this
package. Messages must be registered with RegisterMsg so that they can be
carried by a transaction or a scheduled task and decoded back into their
concrete type.
*/
package codec

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	cdc.RegisterInterface((*weave.Msg)(nil), nil)
}

// RegisterMsg registers a message implementation under the given name. The
// name is part of the serialized form and must never change once used.
//
// Register a pointer, as messages are always used by reference.
func RegisterMsg(msg weave.Msg, name string) {
	cdc.RegisterConcrete(msg, name, nil)
}

// RegisterType registers any other concrete type that is stored behind an
// interface value.
func RegisterType(o interface{}, name string) {
	cdc.RegisterConcrete(o, name, nil)
}

// Marshal serializes given object.
func Marshal(o interface{}) ([]byte, error) {
	raw, err := cdc.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// Unmarshal deserializes data into the object that dest points to.
func Unmarshal(raw []byte, dest interface{}) error {
	if err := cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// MarshalMsg serializes a message together with its registered name.
func MarshalMsg(msg weave.Msg) ([]byte, error) {
	if msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	return Marshal(&msg)
}

// UnmarshalMsg decodes a message serialized with MarshalMsg into its
// registered concrete type.
func UnmarshalMsg(raw []byte) (weave.Msg, error) {
	var msg weave.Msg
	if err := Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	return msg, nil
}
