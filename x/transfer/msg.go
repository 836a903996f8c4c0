package transfer

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/x/edition"
)

func init() {
	codec.RegisterMsg(&TransferMsg{}, "transfer/transfer")
	codec.RegisterMsg(&TransferCallMsg{}, "transfer/transfer_call")
	codec.RegisterMsg(&TransferPayoutMsg{}, "transfer/transfer_payout")
	codec.RegisterMsg(&ApproveAndMintMsg{}, "transfer/approve_and_mint")
	codec.RegisterMsg(&ResolveMsg{}, "transfer/resolve")
	codec.RegisterMsg(&NotifyApprovalMsg{}, "transfer/notify_approval")
	codec.RegisterMsg(&UpdateConfigurationMsg{}, "transfer/update_configuration")
}

const maxMemoLength = 256

func validateEditionID(id string) error {
	_, _, err := edition.ParseID(id)
	return err
}

func validateMemo(memo string) error {
	if len(memo) > maxMemoLength {
		return errors.Wrapf(errors.ErrInput, "cannot be longer than %d", maxMemoLength)
	}
	return nil
}

// TransferMsg moves an edition to the receiver in a single step. A sender
// that is not the owner must present its approval id.
type TransferMsg struct {
	Metadata   *weave.Metadata
	EditionID  string
	Receiver   weave.Address
	ApprovalID uint64
	Memo       string
}

var _ weave.Msg = (*TransferMsg)(nil)

func (TransferMsg) Path() string {
	return "transfer/transfer"
}

func (m *TransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EditionID", validateEditionID(m.EditionID))
	errs = errors.AppendField(errs, "Receiver", m.Receiver.Validate())
	errs = errors.AppendField(errs, "Memo", validateMemo(m.Memo))
	return errs
}

func (m *TransferMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *TransferMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// TransferCallMsg moves an edition and asks the receiver to acknowledge it.
// The payload is handed to the receiver hook.
type TransferCallMsg struct {
	Metadata   *weave.Metadata
	EditionID  string
	Receiver   weave.Address
	ApprovalID uint64
	Memo       string
	Payload    string
}

var _ weave.Msg = (*TransferCallMsg)(nil)

func (TransferCallMsg) Path() string {
	return "transfer/transfer_call"
}

func (m *TransferCallMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EditionID", validateEditionID(m.EditionID))
	errs = errors.AppendField(errs, "Receiver", m.Receiver.Validate())
	errs = errors.AppendField(errs, "Memo", validateMemo(m.Memo))
	return errs
}

func (m *TransferCallMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *TransferCallMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// TransferPayoutMsg moves an edition and returns the split of the sale
// amount, if one is given. No value is moved.
type TransferPayoutMsg struct {
	Metadata      *weave.Metadata
	EditionID     string
	Receiver      weave.Address
	ApprovalID    uint64
	Memo          string
	Amount        *coin.Amount
	MaxRecipients uint32
}

var _ weave.Msg = (*TransferPayoutMsg)(nil)

func (TransferPayoutMsg) Path() string {
	return "transfer/transfer_payout"
}

func (m *TransferPayoutMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EditionID", validateEditionID(m.EditionID))
	errs = errors.AppendField(errs, "Receiver", m.Receiver.Validate())
	errs = errors.AppendField(errs, "Memo", validateMemo(m.Memo))
	if m.Amount != nil && m.MaxRecipients == 0 {
		errs = errors.AppendField(errs, "MaxRecipients", errors.ErrEmpty)
	}
	return errs
}

func (m *TransferPayoutMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *TransferPayoutMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// ApproveAndMintMsg mints an edition to the series creator and approves a
// party for it. With a payload the party is notified.
type ApproveAndMintMsg struct {
	Metadata *weave.Metadata
	SeriesID string
	Party    weave.Address
	Payload  string
}

var _ weave.Msg = (*ApproveAndMintMsg)(nil)

func (ApproveAndMintMsg) Path() string {
	return "transfer/approve_and_mint"
}

func (m *ApproveAndMintMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.SeriesID == "" {
		errs = errors.AppendField(errs, "SeriesID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Party", m.Party.Validate())
	return errs
}

func (m *ApproveAndMintMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *ApproveAndMintMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// ResolveMsg completes a transfer with acknowledgment. It is only ever
// scheduled by this package.
type ResolveMsg struct {
	Metadata  *weave.Metadata
	PendingID []byte
}

var _ weave.Msg = (*ResolveMsg)(nil)

func (ResolveMsg) Path() string {
	return "transfer/resolve"
}

func (m *ResolveMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "PendingID", orm.ValidateSequence(m.PendingID))
	return errs
}

func (m *ResolveMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *ResolveMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// NotifyApprovalMsg calls the approval hook of a party approved by approve
// and mint. It is only ever scheduled by this package.
type NotifyApprovalMsg struct {
	Metadata   *weave.Metadata
	EditionID  string
	Owner      weave.Address
	Party      weave.Address
	ApprovalID uint64
	Payload    string
}

var _ weave.Msg = (*NotifyApprovalMsg)(nil)

func (NotifyApprovalMsg) Path() string {
	return "transfer/notify_approval"
}

func (m *NotifyApprovalMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EditionID", validateEditionID(m.EditionID))
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "Party", m.Party.Validate())
	return errs
}

func (m *NotifyApprovalMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *NotifyApprovalMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// UpdateConfigurationMsg patches the transfer configuration.
type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata
	Patch    *Configuration
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "transfer/update_configuration"
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
