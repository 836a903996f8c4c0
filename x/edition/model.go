package edition

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
)

// Approval allows a party to transfer an edition on behalf of its owner.
type Approval struct {
	Party      weave.Address `json:"party"`
	ApprovalID uint64        `json:"approval_id"`
}

// Edition is the ownership record of a minted edition.
type Edition struct {
	Metadata  *weave.Metadata `json:"metadata"`
	ID        string          `json:"id"`
	Owner     weave.Address   `json:"owner"`
	Approvals []Approval      `json:"approvals"`
	// LastApprovalID is the most recently assigned approval identifier.
	LastApprovalID uint64         `json:"last_approval_id"`
	IssuedAt       weave.UnixTime `json:"issued_at"`
}

var _ orm.Model = (*Edition)(nil)

func (e *Edition) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", e.Metadata.Validate())
	if _, _, err := ParseID(e.ID); err != nil {
		errs = errors.AppendField(errs, "ID", err)
	}
	errs = errors.AppendField(errs, "Owner", e.Owner.Validate())
	errs = errors.AppendField(errs, "IssuedAt", e.IssuedAt.Validate())
	for i, a := range e.Approvals {
		if err := a.Party.Validate(); err != nil {
			errs = errors.Append(errs, errors.Wrapf(err, "approval %d party", i))
		}
		if a.ApprovalID == 0 || a.ApprovalID > e.LastApprovalID {
			errs = errors.Append(errs, errors.Wrapf(errors.ErrState, "approval %d id %d out of range", i, a.ApprovalID))
		}
		for _, b := range e.Approvals[:i] {
			if a.Party.Equals(b.Party) {
				errs = errors.Append(errs, errors.Wrapf(errors.ErrDuplicate, "approval %d party", i))
			}
		}
	}
	return errs
}

func (e *Edition) Marshal() ([]byte, error) {
	return codec.Marshal(e)
}

func (e *Edition) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, e)
}

// approval returns the approval of the given party or nil.
func (e *Edition) approval(party weave.Address) *Approval {
	for i := range e.Approvals {
		if e.Approvals[i].Party.Equals(party) {
			return &e.Approvals[i]
		}
	}
	return nil
}

func (e *Edition) removeApproval(party weave.Address) bool {
	for i, a := range e.Approvals {
		if a.Party.Equals(party) {
			e.Approvals = append(e.Approvals[:i], e.Approvals[i+1:]...)
			if len(e.Approvals) == 0 {
				e.Approvals = nil
			}
			return true
		}
	}
	return false
}

func copyApprovals(a []Approval) []Approval {
	if len(a) == 0 {
		return nil
	}
	return append([]Approval(nil), a...)
}
