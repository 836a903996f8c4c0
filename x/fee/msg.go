package fee

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
)

func init() {
	codec.RegisterMsg(&SetTransactionFeeMsg{}, "fee/set_transaction_fee")
	codec.RegisterMsg(&UpdateConfigurationMsg{}, "fee/update_configuration")
}

// SetTransactionFeeMsg changes the transaction fee. A zero activation time
// applies it immediately.
type SetTransactionFeeMsg struct {
	Metadata       *weave.Metadata
	NextFee        uint32
	ActivationTime weave.UnixTime
}

var _ weave.Msg = (*SetTransactionFeeMsg)(nil)

func (SetTransactionFeeMsg) Path() string {
	return "fee/set_transaction_fee"
}

func (m *SetTransactionFeeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.NextFee >= MaxFee {
		errs = errors.AppendField(errs, "NextFee", errors.Wrapf(errors.ErrInput, "must be below %d", MaxFee))
	}
	errs = errors.AppendField(errs, "ActivationTime", m.ActivationTime.Validate())
	return errs
}

func (m *SetTransactionFeeMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *SetTransactionFeeMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// UpdateConfigurationMsg patches the fee configuration.
type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata
	Patch    *Configuration
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "fee/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return nil
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}
