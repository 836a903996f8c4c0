package edition

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
)

func init() {
	codec.RegisterMsg(&ApproveMsg{}, "edition/approve")
	codec.RegisterMsg(&RevokeMsg{}, "edition/revoke")
	codec.RegisterMsg(&RevokeAllMsg{}, "edition/revoke_all")
	codec.RegisterMsg(&BurnMsg{}, "edition/burn")
}

func validateID(id string) error {
	_, _, err := ParseID(id)
	return err
}

// ApproveMsg approves a party to transfer an edition.
type ApproveMsg struct {
	Metadata  *weave.Metadata
	EditionID string
	Party     weave.Address
}

var _ weave.Msg = (*ApproveMsg)(nil)

func (ApproveMsg) Path() string {
	return "edition/approve"
}

func (m *ApproveMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EditionID", validateID(m.EditionID))
	errs = errors.AppendField(errs, "Party", m.Party.Validate())
	return errs
}

func (m *ApproveMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *ApproveMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// RevokeMsg removes the approval of a single party.
type RevokeMsg struct {
	Metadata  *weave.Metadata
	EditionID string
	Party     weave.Address
}

var _ weave.Msg = (*RevokeMsg)(nil)

func (RevokeMsg) Path() string {
	return "edition/revoke"
}

func (m *RevokeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EditionID", validateID(m.EditionID))
	errs = errors.AppendField(errs, "Party", m.Party.Validate())
	return errs
}

func (m *RevokeMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *RevokeMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// RevokeAllMsg removes all approvals of an edition.
type RevokeAllMsg struct {
	Metadata  *weave.Metadata
	EditionID string
}

var _ weave.Msg = (*RevokeAllMsg)(nil)

func (RevokeAllMsg) Path() string {
	return "edition/revoke_all"
}

func (m *RevokeAllMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EditionID", validateID(m.EditionID))
	return errs
}

func (m *RevokeAllMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *RevokeAllMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

// BurnMsg destroys an edition.
type BurnMsg struct {
	Metadata  *weave.Metadata
	EditionID string
}

var _ weave.Msg = (*BurnMsg)(nil)

func (BurnMsg) Path() string {
	return "edition/burn"
}

func (m *BurnMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EditionID", validateID(m.EditionID))
	return errs
}

func (m *BurnMsg) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *BurnMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}
