package edition

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
)

// OwnerRequest is the request of the per owner views.
type OwnerRequest struct {
	orm.PageRequest
	Owner weave.Address `json:"owner"`
}

// IsApprovedRequest is the request of the "/editions/is_approved" view.
type IsApprovedRequest struct {
	EditionID  string        `json:"edition_id"`
	Party      weave.Address `json:"party"`
	ApprovalID uint64        `json:"approval_id,omitempty"`
}

// RegisterQuery registers the ownership records under "/editions" and the
// ledger views below it.
func RegisterQuery(qr weave.QueryRouter) {
	l := NewLedger(nil)
	l.bucket.Register("editions", qr)

	orm.RegisterView(qr, "editions/total_supply", func(db weave.ReadOnlyKVStore, _ []byte) (interface{}, error) {
		return l.Count(db)
	})
	orm.RegisterView(qr, "editions/supply_for_owner", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		var req OwnerRequest
		if err := orm.DecodeRequest(raw, &req); err != nil {
			return nil, err
		}
		if err := req.Owner.Validate(); err != nil {
			return nil, errors.Wrap(err, "owner")
		}
		return l.CountByOwner(db, req.Owner)
	})
	orm.RegisterView(qr, "editions/is_approved", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		var req IsApprovedRequest
		if err := orm.DecodeRequest(raw, &req); err != nil {
			return nil, err
		}
		return l.IsApproved(db, req.EditionID, req.Party, req.ApprovalID)
	})
}
