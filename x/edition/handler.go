package edition

import (
	"strconv"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/x"
)

const updateApprovalCost = 100

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ledger *Ledger) {
	r.Handle(&ApproveMsg{}, &approveHandler{auth: auth, ledger: ledger})
	r.Handle(&RevokeMsg{}, &revokeHandler{auth: auth, ledger: ledger})
	r.Handle(&RevokeAllMsg{}, &revokeAllHandler{auth: auth, ledger: ledger})
	r.Handle(&BurnMsg{}, &burnHandler{auth: auth, ledger: ledger})
}

// ownerSigner returns the owner of the edition if it signed the transaction.
func ownerSigner(ctx weave.Context, db weave.ReadOnlyKVStore, auth x.Authenticator, ledger *Ledger, id string) (weave.Address, error) {
	owner, err := ledger.Owner(db, id)
	if err != nil {
		return nil, err
	}
	if !auth.HasAddress(ctx, owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	return owner, nil
}

type approveHandler struct {
	auth   x.Authenticator
	ledger *Ledger
}

func (h *approveHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: updateApprovalCost}, nil
}

func (h *approveHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	approvalID, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Data: []byte(strconv.FormatUint(approvalID, 10))}, nil
}

func (h *approveHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (uint64, error) {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return 0, err
	}
	return h.ledger.Approve(ctx, db, owner, msg.EditionID, msg.Party)
}

func (h *approveHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ApproveMsg, weave.Address, error) {
	var msg ApproveMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	owner, err := ownerSigner(ctx, db, h.auth, h.ledger, msg.EditionID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, owner, nil
}

type revokeHandler struct {
	auth   x.Authenticator
	ledger *Ledger
}

func (h *revokeHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: updateApprovalCost}, nil
}

func (h *revokeHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h *revokeHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) error {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return err
	}
	return h.ledger.Revoke(ctx, db, owner, msg.EditionID, msg.Party)
}

func (h *revokeHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*RevokeMsg, weave.Address, error) {
	var msg RevokeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	owner, err := ownerSigner(ctx, db, h.auth, h.ledger, msg.EditionID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, owner, nil
}

type revokeAllHandler struct {
	auth   x.Authenticator
	ledger *Ledger
}

func (h *revokeAllHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: updateApprovalCost}, nil
}

func (h *revokeAllHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h *revokeAllHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) error {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return err
	}
	return h.ledger.RevokeAll(ctx, db, owner, msg.EditionID)
}

func (h *revokeAllHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*RevokeAllMsg, weave.Address, error) {
	var msg RevokeAllMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	owner, err := ownerSigner(ctx, db, h.auth, h.ledger, msg.EditionID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, owner, nil
}

type burnHandler struct {
	auth   x.Authenticator
	ledger *Ledger
}

func (h *burnHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h *burnHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h *burnHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) error {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return err
	}
	return h.ledger.Burn(ctx, db, owner, msg.EditionID)
}

func (h *burnHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*BurnMsg, weave.Address, error) {
	var msg BurnMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	owner, err := ownerSigner(ctx, db, h.auth, h.ledger, msg.EditionID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, owner, nil
}
