package transfer

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/x/edition"
)

// Status of a transfer with acknowledgment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusFinalized  Status = "finalized"
	StatusRolledBack Status = "rolled_back"
)

func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusFinalized, StatusRolledBack:
		return nil
	}
	return errors.Wrapf(errors.ErrState, "invalid status %q", s)
}

// PendingTransfer records a transfer with acknowledgment. It holds what is
// needed to roll the transfer back until the receiver answers.
type PendingTransfer struct {
	Metadata *weave.Metadata `json:"metadata"`
	// ID is the sequence key of this record.
	ID             []byte             `json:"id"`
	EditionID      string             `json:"edition_id"`
	Sender         weave.Address      `json:"sender"`
	Receiver       weave.Address      `json:"receiver"`
	PriorOwner     weave.Address      `json:"prior_owner"`
	PriorApprovals []edition.Approval `json:"prior_approvals"`
	AuthorizedID   weave.Address      `json:"authorized_id,omitempty"`
	Memo           string             `json:"memo,omitempty"`
	Payload        string             `json:"payload,omitempty"`
	Status         Status             `json:"status"`
	// RollbackSkipped is set when a rollback was due but the edition had
	// already moved on from the receiver.
	RollbackSkipped bool           `json:"rollback_skipped"`
	TaskID          []byte         `json:"task_id"`
	CreatedAt       weave.UnixTime `json:"created_at"`
	ResolvedAt      weave.UnixTime `json:"resolved_at,omitempty"`
}

var _ orm.Model = (*PendingTransfer)(nil)

func (p *PendingTransfer) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", p.Metadata.Validate())
	errs = errors.AppendField(errs, "ID", orm.ValidateSequence(p.ID))
	if _, _, err := edition.ParseID(p.EditionID); err != nil {
		errs = errors.AppendField(errs, "EditionID", err)
	}
	errs = errors.AppendField(errs, "Sender", p.Sender.Validate())
	errs = errors.AppendField(errs, "Receiver", p.Receiver.Validate())
	errs = errors.AppendField(errs, "PriorOwner", p.PriorOwner.Validate())
	errs = errors.AppendField(errs, "Status", p.Status.Validate())
	if p.RollbackSkipped && p.Status != StatusFinalized {
		errs = errors.AppendField(errs, "RollbackSkipped", errors.Wrap(errors.ErrState, "only a finalized transfer can skip a rollback"))
	}
	errs = errors.AppendField(errs, "CreatedAt", p.CreatedAt.Validate())
	return errs
}

func (p *PendingTransfer) Marshal() ([]byte, error) {
	return codec.Marshal(p)
}

func (p *PendingTransfer) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, p)
}

func (p *PendingTransfer) receipt() *edition.Receipt {
	return &edition.Receipt{
		EditionID:      p.EditionID,
		PriorOwner:     p.PriorOwner,
		PriorApprovals: p.PriorApprovals,
		NewOwner:       p.Receiver,
		AuthorizedID:   p.AuthorizedID,
	}
}
