package transfer

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/store"
	"github.com/iov-one/weave-editions/x/edition"
	"github.com/iov-one/weave-editions/x/payout"
	"github.com/iov-one/weave-editions/x/series"
)

// BucketName is where pending transfers are stored.
const BucketName = "pendtx"

// ResolverCondition authorizes the tasks scheduled by the protocol.
var ResolverCondition = weave.NewCondition("transfer", "resolver", nil)

// Catalog mints editions and reads the series they belong to.
type Catalog interface {
	series.Minter
	Get(db weave.ReadOnlyKVStore, id string) (*series.Series, error)
}

// Protocol runs transfers of editions.
type Protocol struct {
	ledger    *edition.Ledger
	catalog   Catalog
	payouts   *payout.Engine
	hooks     *HookRegistry
	scheduler weave.Scheduler
	pending   orm.ModelBucket
	ids       orm.Sequence
}

// NewProtocol returns a protocol moving editions of the ledger. Follow up
// tasks are queued with the scheduler.
func NewProtocol(ledger *edition.Ledger, catalog Catalog, payouts *payout.Engine, hooks *HookRegistry, scheduler weave.Scheduler) *Protocol {
	return &Protocol{
		ledger:    ledger,
		catalog:   catalog,
		payouts:   payouts,
		hooks:     hooks,
		scheduler: scheduler,
		pending:   orm.NewModelBucket(BucketName, &PendingTransfer{}),
		ids:       orm.NewSequence(BucketName, "id"),
	}
}

// Transfer moves an edition in a single step.
func (p *Protocol) Transfer(ctx weave.Context, db weave.KVStore, sender, receiver weave.Address, id string, approvalID uint64, memo string) (*edition.Receipt, error) {
	return p.ledger.Transfer(ctx, db, sender, receiver, id, approvalID, memo)
}

// TransferCall moves an edition and schedules the resolution of the
// transfer for the next block.
func (p *Protocol) TransferCall(ctx weave.Context, db weave.KVStore, sender, receiver weave.Address, id string, approvalID uint64, memo, payload string) (*PendingTransfer, error) {
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	r, err := p.ledger.Transfer(ctx, db, sender, receiver, id, approvalID, memo)
	if err != nil {
		return nil, err
	}
	key, err := p.ids.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "pending id")
	}
	pt := PendingTransfer{
		Metadata:       &weave.Metadata{Schema: 1},
		ID:             key,
		EditionID:      id,
		Sender:         sender,
		Receiver:       receiver,
		PriorOwner:     r.PriorOwner,
		PriorApprovals: r.PriorApprovals,
		AuthorizedID:   r.AuthorizedID,
		Memo:           memo,
		Payload:        payload,
		Status:         StatusPending,
		CreatedAt:      weave.AsUnixTime(now),
	}
	task := &ResolveMsg{Metadata: &weave.Metadata{Schema: 1}, PendingID: key}
	pt.TaskID, err = p.scheduler.Schedule(db, now, []weave.Condition{ResolverCondition}, task)
	if err != nil {
		return nil, errors.Wrap(err, "schedule resolve")
	}
	if _, err := p.pending.Put(db, key, &pt); err != nil {
		return nil, errors.Wrap(err, "save pending transfer")
	}
	return &pt, nil
}

// Pending returns a transfer with acknowledgment.
func (p *Protocol) Pending(db weave.ReadOnlyKVStore, pendingID []byte) (*PendingTransfer, error) {
	var pt PendingTransfer
	if err := p.pending.One(db, pendingID, &pt); err != nil {
		return nil, errors.Wrap(err, "pending transfer")
	}
	return &pt, nil
}

// Resolve asks the receiver of a pending transfer whether it keeps the
// edition and finalizes or rolls back the transfer accordingly. Resolving a
// transfer that is no longer pending changes nothing.
func (p *Protocol) Resolve(ctx weave.Context, db weave.KVStore, pendingID []byte) (*PendingTransfer, error) {
	pt, err := p.Pending(db, pendingID)
	if err != nil {
		return nil, err
	}
	if pt.Status != StatusPending {
		return pt, nil
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	logger := weave.GetLogger(ctx).With("module", "transfer", "edition", pt.EditionID)

	if p.acknowledge(ctx, db, pt) {
		pt.Status = StatusFinalized
	} else {
		switch err := p.ledger.Restore(ctx, db, pt.receipt()); {
		case err == nil:
			pt.Status = StatusRolledBack
		case errors.ErrState.Is(err), errors.ErrNotFound.Is(err):
			logger.Info("rollback skipped", "reason", err.Error())
			pt.Status = StatusFinalized
			pt.RollbackSkipped = true
		default:
			return nil, errors.Wrap(err, "rollback")
		}
	}
	pt.ResolvedAt = weave.AsUnixTime(now)
	if _, err := p.pending.Put(db, pt.ID, pt); err != nil {
		return nil, errors.Wrap(err, "save pending transfer")
	}
	logger.Debug("transfer resolved", "status", string(pt.Status))
	return pt, nil
}

// acknowledge calls the receiver hook in an isolated cache. Any failure is
// an answer of no.
func (p *Protocol) acknowledge(ctx weave.Context, db weave.KVStore, pt *PendingTransfer) bool {
	logger := weave.GetLogger(ctx).With("module", "transfer", "edition", pt.EditionID)
	hook, ok := p.hooks.Receiver(pt.Receiver)
	if !ok {
		logger.Debug("receiver has no hook", "receiver", pt.Receiver)
		return false
	}
	var accepted bool
	err := p.isolated(ctx, db, func(hctx weave.Context, cache weave.KVStore) error {
		var err error
		accepted, err = hook.OnTransfer(hctx, cache, pt.Sender, pt.PriorOwner, pt.EditionID, pt.Payload)
		return err
	})
	if err != nil {
		logger.Info("receiver hook failed", "receiver", pt.Receiver, "err", err)
		return false
	}
	return accepted
}

// isolated runs fn against a cache of db, bounded by the configured hook
// operation limit. The cache is written only if fn succeeds within the
// limit.
func (p *Protocol) isolated(ctx weave.Context, db weave.KVStore, fn func(weave.Context, weave.KVStore) error) error {
	cdb, ok := db.(weave.CacheableKVStore)
	if !ok {
		return errors.Wrap(errors.ErrHuman, "store cannot be cached")
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return errors.Wrap(err, "configuration")
	}

	cache := cdb.CacheWrap()
	var hdb weave.KVStore = cache
	var budget *store.BudgetStore
	if conf.HookOpLimit > 0 {
		budget = store.NewBudgetStore(cache, conf.HookOpLimit)
		hdb = budget
	}
	if err := fn(ctx, hdb); err != nil {
		cache.Discard()
		return err
	}
	// A hook may swallow the refusal of an operation.
	if budget != nil && budget.Exhausted() {
		cache.Discard()
		return errors.Wrap(errors.ErrLimit, "hook operation limit")
	}
	return cache.Write()
}

// TransferPayout moves an edition and splits the sale amount between the
// royalty parties and the owner before the transfer. It returns nil
// without an amount.
func (p *Protocol) TransferPayout(ctx weave.Context, db weave.KVStore, sender, receiver weave.Address, id string, approvalID uint64, memo string, amount *coin.Amount, maxRecipients uint32) (payout.Payout, error) {
	r, err := p.ledger.Transfer(ctx, db, sender, receiver, id, approvalID, memo)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return nil, nil
	}
	return p.payouts.PayoutTo(db, id, r.PriorOwner, *amount, maxRecipients)
}

// ApproveAndMint mints an edition to the creator of the series and
// approves the party for it. With a payload, the party hook is notified in
// the next block. The notification cannot undo anything.
func (p *Protocol) ApproveAndMint(ctx weave.Context, db weave.KVStore, creator weave.Address, seriesID string, party weave.Address, payload string) (*edition.Edition, uint64, error) {
	s, err := p.catalog.Get(db, seriesID)
	if err != nil {
		return nil, 0, err
	}
	if !s.Creator.Equals(creator) {
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "only the creator can do this")
	}
	e, err := p.catalog.MintEdition(ctx, db, seriesID, creator)
	if err != nil {
		return nil, 0, err
	}
	approvalID, err := p.ledger.Approve(ctx, db, creator, e.ID, party)
	if err != nil {
		return nil, 0, err
	}
	if payload == "" {
		return e, approvalID, nil
	}

	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "block time")
	}
	task := &NotifyApprovalMsg{
		Metadata:   &weave.Metadata{Schema: 1},
		EditionID:  e.ID,
		Owner:      creator,
		Party:      party,
		ApprovalID: approvalID,
		Payload:    payload,
	}
	if _, err := p.scheduler.Schedule(db, now, []weave.Condition{ResolverCondition}, task); err != nil {
		return nil, 0, errors.Wrap(err, "schedule notification")
	}
	return e, approvalID, nil
}

// NotifyApproval calls the approval hook of the party. Failures are logged
// and otherwise ignored.
func (p *Protocol) NotifyApproval(ctx weave.Context, db weave.KVStore, msg *NotifyApprovalMsg) {
	logger := weave.GetLogger(ctx).With("module", "transfer", "edition", msg.EditionID)
	hook, ok := p.hooks.ApprovalReceiver(msg.Party)
	if !ok {
		logger.Debug("approved party has no hook", "party", msg.Party)
		return
	}
	err := p.isolated(ctx, db, func(hctx weave.Context, cache weave.KVStore) error {
		return hook.OnApprove(hctx, cache, msg.Owner, msg.EditionID, msg.ApprovalID, msg.Payload)
	})
	if err != nil {
		logger.Info("approval hook failed", "party", msg.Party, "err", err)
	}
}
