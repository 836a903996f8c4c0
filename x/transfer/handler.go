package transfer

import (
	"encoding/json"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/gconf"
	"github.com/iov-one/weave-editions/x"
	"github.com/iov-one/weave-editions/x/payout"
)

const (
	transferCost       = 50
	transferCallCost   = 100
	approveAndMintCost = 150
)

// RegisterRoutes registers the transfer handlers. Scheduled tasks are
// authorized by the resolver condition, so auth must include the
// authenticator of the task runner.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, p *Protocol) {
	r.Handle(&TransferMsg{}, &transferHandler{auth: auth, p: p})
	r.Handle(&TransferCallMsg{}, &transferCallHandler{auth: auth, p: p})
	r.Handle(&TransferPayoutMsg{}, &transferPayoutHandler{auth: auth, p: p})
	r.Handle(&ApproveAndMintMsg{}, &approveAndMintHandler{auth: auth, p: p})
	r.Handle(&ResolveMsg{}, &resolveHandler{auth: auth, p: p})
	r.Handle(&NotifyApprovalMsg{}, &notifyApprovalHandler{auth: auth, p: p})
	var conf Configuration
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(packageName, &conf, auth, nil))
}

func mainSigner(ctx weave.Context, auth x.Authenticator) (weave.Address, error) {
	signer := x.MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature required")
	}
	return signer.Address(), nil
}

type transferHandler struct {
	auth x.Authenticator
	p    *Protocol
}

func (h *transferHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: transferCost}, nil
}

func (h *transferHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h *transferHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) error {
	msg, sender, err := h.validate(ctx, tx)
	if err != nil {
		return err
	}
	_, err = h.p.Transfer(ctx, db, sender, msg.Receiver, msg.EditionID, msg.ApprovalID, msg.Memo)
	return err
}

func (h *transferHandler) validate(ctx weave.Context, tx weave.Tx) (*TransferMsg, weave.Address, error) {
	var msg TransferMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	sender, err := mainSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, sender, nil
}

type transferCallHandler struct {
	auth x.Authenticator
	p    *Protocol
}

func (h *transferCallHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: transferCallCost}, nil
}

func (h *transferCallHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	pt, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Data: pt.ID}, nil
}

func (h *transferCallHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*PendingTransfer, error) {
	msg, sender, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	return h.p.TransferCall(ctx, db, sender, msg.Receiver, msg.EditionID, msg.ApprovalID, msg.Memo, msg.Payload)
}

func (h *transferCallHandler) validate(ctx weave.Context, tx weave.Tx) (*TransferCallMsg, weave.Address, error) {
	var msg TransferCallMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	sender, err := mainSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, sender, nil
}

type transferPayoutHandler struct {
	auth x.Authenticator
	p    *Protocol
}

func (h *transferPayoutHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: transferCost}, nil
}

func (h *transferPayoutHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	p, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &weave.DeliverResult{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &weave.DeliverResult{Data: data}, nil
}

func (h *transferPayoutHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (payout.Payout, error) {
	msg, sender, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	return h.p.TransferPayout(ctx, db, sender, msg.Receiver, msg.EditionID, msg.ApprovalID, msg.Memo, msg.Amount, msg.MaxRecipients)
}

func (h *transferPayoutHandler) validate(ctx weave.Context, tx weave.Tx) (*TransferPayoutMsg, weave.Address, error) {
	var msg TransferPayoutMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	sender, err := mainSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, sender, nil
}

// MintedApproval is the result of approve and mint.
type MintedApproval struct {
	EditionID  string `json:"edition_id"`
	ApprovalID uint64 `json:"approval_id"`
}

type approveAndMintHandler struct {
	auth x.Authenticator
	p    *Protocol
}

func (h *approveAndMintHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: approveAndMintCost}, nil
}

func (h *approveAndMintHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	res, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(res)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &weave.DeliverResult{Data: data}, nil
}

func (h *approveAndMintHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*MintedApproval, error) {
	msg, creator, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	e, approvalID, err := h.p.ApproveAndMint(ctx, db, creator, msg.SeriesID, msg.Party, msg.Payload)
	if err != nil {
		return nil, err
	}
	return &MintedApproval{EditionID: e.ID, ApprovalID: approvalID}, nil
}

func (h *approveAndMintHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ApproveAndMintMsg, weave.Address, error) {
	var msg ApproveAndMintMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	s, err := h.p.catalog.Get(db, msg.SeriesID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, s.Creator) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "creator signature required")
	}
	return &msg, s.Creator, nil
}

// resolveHandler runs the scheduled resolution of a transfer with
// acknowledgment.
type resolveHandler struct {
	auth x.Authenticator
	p    *Protocol
}

func (h *resolveHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h *resolveHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	pt, err := h.p.Resolve(ctx, db, msg.PendingID)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Data: []byte(pt.Status)}, nil
}

func (h *resolveHandler) validate(ctx weave.Context, tx weave.Tx) (*ResolveMsg, error) {
	var msg ResolveMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, ResolverCondition.Address()) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the protocol can resolve a transfer")
	}
	return &msg, nil
}

type notifyApprovalHandler struct {
	auth x.Authenticator
	p    *Protocol
}

func (h *notifyApprovalHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h *notifyApprovalHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	h.p.NotifyApproval(ctx, db, msg)
	return &weave.DeliverResult{}, nil
}

func (h *notifyApprovalHandler) validate(ctx weave.Context, tx weave.Tx) (*NotifyApprovalMsg, error) {
	var msg NotifyApprovalMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, ResolverCondition.Address()) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the protocol can notify")
	}
	return &msg, nil
}
