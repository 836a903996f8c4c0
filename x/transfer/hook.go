package transfer

import (
	"fmt"

	weave "github.com/iov-one/weave-editions"
)

// Receiver is the acceptance hook of a party receiving editions through a
// transfer with acknowledgment.
//
// OnTransfer returns true to keep the edition. Returning false or an error
// rolls the transfer back. Changes written to db are kept unless an error is
// returned. The context carries a deadline when a hook timeout is
// configured and the hook must give up once it is done.
type Receiver interface {
	OnTransfer(ctx weave.Context, db weave.KVStore, sender, priorOwner weave.Address, editionID string, payload string) (bool, error)
}

// ApprovalReceiver is notified when it is approved for an edition minted
// with approve and mint.
type ApprovalReceiver interface {
	OnApprove(ctx weave.Context, db weave.KVStore, owner weave.Address, editionID string, approvalID uint64, payload string) error
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(ctx weave.Context, db weave.KVStore, sender, priorOwner weave.Address, editionID string, payload string) (bool, error)

func (fn ReceiverFunc) OnTransfer(ctx weave.Context, db weave.KVStore, sender, priorOwner weave.Address, editionID string, payload string) (bool, error) {
	return fn(ctx, db, sender, priorOwner, editionID, payload)
}

// HookRegistry maps party addresses to their hooks. It is populated when
// the application is built and read only afterwards.
type HookRegistry struct {
	receivers map[string]Receiver
	approvals map[string]ApprovalReceiver
}

// NewHookRegistry returns an empty registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		receivers: make(map[string]Receiver),
		approvals: make(map[string]ApprovalReceiver),
	}
}

// Register installs the hooks of a party. The hook must implement Receiver,
// ApprovalReceiver or both. Registering a party twice panics.
func (r *HookRegistry) Register(party weave.Address, hook interface{}) {
	key := party.String()
	if _, ok := r.receivers[key]; ok {
		panic(fmt.Sprintf("hook of %s already registered", key))
	}
	if _, ok := r.approvals[key]; ok {
		panic(fmt.Sprintf("hook of %s already registered", key))
	}
	var found bool
	if h, ok := hook.(Receiver); ok {
		r.receivers[key] = h
		found = true
	}
	if h, ok := hook.(ApprovalReceiver); ok {
		r.approvals[key] = h
		found = true
	}
	if !found {
		panic(fmt.Sprintf("%T is not a hook", hook))
	}
}

// Receiver returns the transfer hook of a party.
func (r *HookRegistry) Receiver(party weave.Address) (Receiver, bool) {
	if r == nil {
		return nil, false
	}
	h, ok := r.receivers[party.String()]
	return h, ok
}

// ApprovalReceiver returns the approval hook of a party.
func (r *HookRegistry) ApprovalReceiver(party weave.Address) (ApprovalReceiver, bool) {
	if r == nil {
		return nil, false
	}
	h, ok := r.approvals[party.String()]
	return h, ok
}
