package edition

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/x/events"
)

// BucketName is where the ownership records are stored.
const BucketName = "edition"

// Ledger keeps the ownership records and their indexes.
type Ledger struct {
	bucket orm.ModelBucket
	owned  orm.KeySet
	all    orm.KeySet
	outbox *events.Outbox
}

// NewLedger returns a ledger emitting transfer, burn and approval events to
// the given outbox. A nil outbox emits nothing.
func NewLedger(outbox *events.Outbox) *Ledger {
	return &Ledger{
		bucket: orm.NewModelBucket(BucketName, &Edition{}),
		owned:  orm.NewKeySet("edowner"),
		all:    orm.NewKeySet("edall"),
		outbox: outbox,
	}
}

// Receipt describes an ownership change. It carries everything needed to
// revert the change.
type Receipt struct {
	EditionID      string
	PriorOwner     weave.Address
	PriorApprovals []Approval
	NewOwner       weave.Address
	// AuthorizedID is the approved party that performed the transfer. It is
	// nil when the owner did.
	AuthorizedID weave.Address
}

// TransferEvent is the payload of transfer events.
type TransferEvent struct {
	OldOwner     weave.Address `json:"old_owner"`
	NewOwner     weave.Address `json:"new_owner"`
	EditionIDs   []string      `json:"edition_ids"`
	AuthorizedID weave.Address `json:"authorized_id,omitempty"`
	Memo         string        `json:"memo,omitempty"`
}

// BurnEvent is the payload of burn events.
type BurnEvent struct {
	Owner      weave.Address `json:"owner"`
	EditionIDs []string      `json:"edition_ids"`
}

// ApprovalEvent is the payload of approval events. A revoke of all
// approvals has no party.
type ApprovalEvent struct {
	EditionID  string        `json:"edition_id"`
	Owner      weave.Address `json:"owner"`
	Party      weave.Address `json:"party,omitempty"`
	ApprovalID uint64        `json:"approval_id,omitempty"`
}

// Mint creates the ownership record of a new edition.
func (l *Ledger) Mint(ctx weave.Context, db weave.KVStore, id string, owner weave.Address) (*Edition, error) {
	switch err := l.bucket.Has(db, []byte(id)); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "edition %s", id)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	e := Edition{
		Metadata: &weave.Metadata{Schema: 1},
		ID:       id,
		Owner:    owner,
		IssuedAt: weave.AsUnixTime(now),
	}
	if _, err := l.bucket.Put(db, []byte(id), &e); err != nil {
		return nil, errors.Wrap(err, "save edition")
	}
	if _, err := l.owned.Add(db, owner, []byte(id)); err != nil {
		return nil, errors.Wrap(err, "owner index")
	}
	if _, err := l.all.Add(db, nil, []byte(id)); err != nil {
		return nil, errors.Wrap(err, "edition index")
	}
	return &e, nil
}

// Get returns the ownership record of an edition.
func (l *Ledger) Get(db weave.ReadOnlyKVStore, id string) (*Edition, error) {
	var e Edition
	if err := l.bucket.One(db, []byte(id), &e); err != nil {
		return nil, errors.Wrapf(err, "edition %s", id)
	}
	return &e, nil
}

// Owner returns the current owner of an edition.
func (l *Ledger) Owner(db weave.ReadOnlyKVStore, id string) (weave.Address, error) {
	e, err := l.Get(db, id)
	if err != nil {
		return nil, err
	}
	return e.Owner, nil
}

// Transfer moves an edition from its owner to the receiver. The sender must
// be either the owner or an approved party presenting its approval id. All
// approvals of the edition are cleared.
func (l *Ledger) Transfer(ctx weave.Context, db weave.KVStore, sender, receiver weave.Address, id string, approvalID uint64, memo string) (*Receipt, error) {
	e, err := l.Get(db, id)
	if err != nil {
		return nil, err
	}

	var authorized weave.Address
	if !sender.Equals(e.Owner) {
		if approvalID == 0 {
			return nil, errors.Wrap(errors.ErrUnauthorized, "sender is not the owner")
		}
		a := e.approval(sender)
		if a == nil {
			return nil, errors.Wrap(errors.ErrUnauthorized, "sender is not approved")
		}
		if a.ApprovalID != approvalID {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "approval id %d does not match", approvalID)
		}
		authorized = sender
	}
	if receiver.Equals(e.Owner) {
		return nil, errors.Wrap(errors.ErrInput, "receiver already owns the edition")
	}

	r := Receipt{
		EditionID:      id,
		PriorOwner:     e.Owner,
		PriorApprovals: copyApprovals(e.Approvals),
		NewOwner:       receiver,
		AuthorizedID:   authorized,
	}
	if err := l.move(db, e, receiver, nil); err != nil {
		return nil, err
	}
	if err := l.emit(ctx, db, events.KindTransfer, TransferEvent{
		OldOwner:     r.PriorOwner,
		NewOwner:     receiver,
		EditionIDs:   []string{id},
		AuthorizedID: authorized,
		Memo:         memo,
	}); err != nil {
		return nil, err
	}
	return &r, nil
}

// Restore reverts a transfer described by the receipt. It fails if the
// edition is no longer owned by the receiver of that transfer.
func (l *Ledger) Restore(ctx weave.Context, db weave.KVStore, r *Receipt) error {
	e, err := l.Get(db, r.EditionID)
	if err != nil {
		return err
	}
	if !e.Owner.Equals(r.NewOwner) {
		return errors.Wrapf(errors.ErrState, "edition %s changed owner", r.EditionID)
	}
	if err := l.move(db, e, r.PriorOwner, copyApprovals(r.PriorApprovals)); err != nil {
		return err
	}
	return l.emit(ctx, db, events.KindTransfer, TransferEvent{
		OldOwner:   r.NewOwner,
		NewOwner:   r.PriorOwner,
		EditionIDs: []string{r.EditionID},
	})
}

// move changes the owner and the approvals, keeping the owner index in sync.
func (l *Ledger) move(db weave.KVStore, e *Edition, owner weave.Address, approvals []Approval) error {
	prior := e.Owner
	e.Owner = owner
	e.Approvals = approvals
	if _, err := l.bucket.Put(db, []byte(e.ID), e); err != nil {
		return errors.Wrap(err, "save edition")
	}
	if _, err := l.owned.Remove(db, prior, []byte(e.ID)); err != nil {
		return errors.Wrap(err, "owner index")
	}
	if _, err := l.owned.Add(db, owner, []byte(e.ID)); err != nil {
		return errors.Wrap(err, "owner index")
	}
	return nil
}

// Approve grants the party a fresh approval id. A party that was already
// approved gets a new id that replaces the old one.
func (l *Ledger) Approve(ctx weave.Context, db weave.KVStore, owner weave.Address, id string, party weave.Address) (uint64, error) {
	e, err := l.ownedBy(db, owner, id)
	if err != nil {
		return 0, err
	}
	if err := party.Validate(); err != nil {
		return 0, errors.Wrap(err, "party")
	}
	if party.Equals(e.Owner) {
		return 0, errors.Wrap(errors.ErrInput, "owner cannot be approved")
	}
	e.removeApproval(party)
	e.LastApprovalID++
	e.Approvals = append(e.Approvals, Approval{Party: party, ApprovalID: e.LastApprovalID})
	if _, err := l.bucket.Put(db, []byte(id), e); err != nil {
		return 0, errors.Wrap(err, "save edition")
	}
	err = l.emit(ctx, db, events.KindApprovalGranted, ApprovalEvent{
		EditionID:  id,
		Owner:      owner,
		Party:      party,
		ApprovalID: e.LastApprovalID,
	})
	return e.LastApprovalID, err
}

// Revoke removes the approval of a single party.
func (l *Ledger) Revoke(ctx weave.Context, db weave.KVStore, owner weave.Address, id string, party weave.Address) error {
	e, err := l.ownedBy(db, owner, id)
	if err != nil {
		return err
	}
	if !e.removeApproval(party) {
		return errors.Wrapf(errors.ErrNotFound, "%s is not approved", party)
	}
	if _, err := l.bucket.Put(db, []byte(id), e); err != nil {
		return errors.Wrap(err, "save edition")
	}
	return l.emit(ctx, db, events.KindApprovalRevoked, ApprovalEvent{EditionID: id, Owner: owner, Party: party})
}

// RevokeAll removes every approval of an edition.
func (l *Ledger) RevokeAll(ctx weave.Context, db weave.KVStore, owner weave.Address, id string) error {
	e, err := l.ownedBy(db, owner, id)
	if err != nil {
		return err
	}
	if len(e.Approvals) == 0 {
		return nil
	}
	e.Approvals = nil
	if _, err := l.bucket.Put(db, []byte(id), e); err != nil {
		return errors.Wrap(err, "save edition")
	}
	return l.emit(ctx, db, events.KindApprovalRevoked, ApprovalEvent{EditionID: id, Owner: owner})
}

// IsApproved returns true if the party is approved for the edition. A non
// zero approval id must also match.
func (l *Ledger) IsApproved(db weave.ReadOnlyKVStore, id string, party weave.Address, approvalID uint64) (bool, error) {
	e, err := l.Get(db, id)
	if err != nil {
		return false, err
	}
	a := e.approval(party)
	if a == nil {
		return false, nil
	}
	return approvalID == 0 || a.ApprovalID == approvalID, nil
}

// Burn deletes the edition. Its identifier is never minted again because the
// series numbering does not go back.
func (l *Ledger) Burn(ctx weave.Context, db weave.KVStore, owner weave.Address, id string) error {
	e, err := l.ownedBy(db, owner, id)
	if err != nil {
		return err
	}
	if err := l.bucket.Delete(db, []byte(id)); err != nil {
		return errors.Wrap(err, "delete edition")
	}
	if _, err := l.owned.Remove(db, e.Owner, []byte(id)); err != nil {
		return errors.Wrap(err, "owner index")
	}
	if _, err := l.all.Remove(db, nil, []byte(id)); err != nil {
		return errors.Wrap(err, "edition index")
	}
	return l.emit(ctx, db, events.KindBurn, BurnEvent{Owner: e.Owner, EditionIDs: []string{id}})
}

func (l *Ledger) ownedBy(db weave.ReadOnlyKVStore, owner weave.Address, id string) (*Edition, error) {
	e, err := l.Get(db, id)
	if err != nil {
		return nil, err
	}
	if !e.Owner.Equals(owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the owner can do this")
	}
	return e, nil
}

// Count returns the number of existing editions.
func (l *Ledger) Count(db weave.ReadOnlyKVStore) (uint64, error) {
	return l.all.Size(db, nil)
}

// CountByOwner returns the number of editions held by the owner.
func (l *Ledger) CountByOwner(db weave.ReadOnlyKVStore, owner weave.Address) (uint64, error) {
	return l.owned.Size(db, owner)
}

// All returns a page of all existing editions.
func (l *Ledger) All(db weave.ReadOnlyKVStore, req orm.PageRequest) ([]*Edition, error) {
	ids, err := l.all.Page(db, nil, req)
	if err != nil {
		return nil, err
	}
	return l.load(db, ids)
}

// ByOwner returns a page of the editions held by the owner. An owner without
// editions has an empty page.
func (l *Ledger) ByOwner(db weave.ReadOnlyKVStore, owner weave.Address, req orm.PageRequest) ([]*Edition, error) {
	n, err := l.owned.Size(db, owner)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	ids, err := l.owned.Page(db, owner, req)
	if err != nil {
		return nil, err
	}
	return l.load(db, ids)
}

func (l *Ledger) load(db weave.ReadOnlyKVStore, ids [][]byte) ([]*Edition, error) {
	res := make([]*Edition, 0, len(ids))
	for _, id := range ids {
		e, err := l.Get(db, string(id))
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

func (l *Ledger) emit(ctx weave.Context, db weave.KVStore, kind string, payload interface{}) error {
	if l.outbox == nil {
		return nil
	}
	return l.outbox.Emit(ctx, db, kind, payload)
}
