package cash

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
)

func init() {
	codec.RegisterMsg(&SendMsg{}, "cash/send")
}

const (
	sendTxCost int64 = 100

	maxMemoSize int = 128
)

// SendMsg moves value from the source wallet to the destination wallet.
type SendMsg struct {
	Metadata    *weave.Metadata
	Source      weave.Address
	Destination weave.Address
	Amount      coin.Amount
	Memo        string
}

var _ weave.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if m.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "zero value"))
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.Wrap(errors.ErrInput, "memo too long"))
	}
	return errs
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}
