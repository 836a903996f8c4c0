package transfer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/app"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/gconf"
	"github.com/iov-one/weave-editions/store"
	"github.com/iov-one/weave-editions/weavetest"
	"github.com/iov-one/weave-editions/weavetest/assert"
	"github.com/iov-one/weave-editions/x/edition"
	"github.com/iov-one/weave-editions/x/events"
	"github.com/iov-one/weave-editions/x/fee"
	"github.com/iov-one/weave-editions/x/payout"
	"github.com/iov-one/weave-editions/x/series"
)

var hookKey = []byte("hook")

type fixture struct {
	now    time.Time
	ctx    weave.Context
	db     weave.CacheableKVStore
	ledger *edition.Ledger
	reg    *series.Registry
	hooks  *HookRegistry
	cron   *weavetest.Cron
	p      *Protocol

	creator weave.Address
}

func newFixture(t testing.TB, royalties series.Royalties) *fixture {
	t.Helper()
	now := time.Now().Round(time.Second)
	outbox := events.NewOutbox()
	f := &fixture{
		now:     now,
		ctx:     weave.WithBlockTime(context.Background(), now),
		db:      store.MemStore(),
		ledger:  edition.NewLedger(outbox),
		hooks:   NewHookRegistry(),
		cron:    &weavetest.Cron{},
		creator: weavetest.NewCondition().Address(),
	}
	f.reg = series.NewRegistry(f.ledger, fee.NewController(outbox), outbox)
	f.p = NewProtocol(f.ledger, f.reg, payout.NewEngine(f.reg), f.hooks, f.cron)

	_, err := f.reg.Create(f.ctx, f.db, f.creator, series.NewSeries{
		Template:  series.Template{Title: "a"},
		Royalties: royalties,
	})
	assert.Nil(t, err)
	return f
}

func (f *fixture) mint(t testing.TB, owner weave.Address) string {
	t.Helper()
	e, err := f.reg.MintEdition(f.ctx, f.db, "1", owner)
	assert.Nil(t, err)
	return e.ID
}

// resolveDue runs every resolve task that is due.
func (f *fixture) resolveDue(t testing.TB) []*PendingTransfer {
	t.Helper()
	var res []*PendingTransfer
	for _, task := range f.cron.Due(f.now.Add(time.Second)) {
		msg, ok := task.Msg.(*ResolveMsg)
		if !ok {
			continue
		}
		assert.Equal(t, []weave.Condition{ResolverCondition}, task.Auth)
		pt, err := f.p.Resolve(f.ctx, f.db, msg.PendingID)
		assert.Nil(t, err)
		res = append(res, pt)
	}
	return res
}

// writingHook writes to the store and then answers.
type writingHook struct {
	accept bool
	err    error
	calls  int
}

func (h *writingHook) OnTransfer(ctx weave.Context, db weave.KVStore, sender, priorOwner weave.Address, editionID string, payload string) (bool, error) {
	h.calls++
	if err := db.Set(hookKey, []byte(payload)); err != nil {
		return false, err
	}
	return h.accept, h.err
}

func TestTransferCallResolution(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()
	carol := weavetest.NewCondition().Address()

	cases := map[string]struct {
		hook          interface{}
		hookOpLimit   uint64
		moveOnBy      weave.Address
		wantStatus    Status
		wantSkipped   bool
		wantOwner     weave.Address
		wantApprovals bool
		wantHookWrite bool
	}{
		"receiver accepts": {
			hook:          &writingHook{accept: true},
			wantStatus:    StatusFinalized,
			wantOwner:     bob,
			wantHookWrite: true,
		},
		"receiver rejects": {
			hook:          &writingHook{accept: false},
			wantStatus:    StatusRolledBack,
			wantOwner:     alice,
			wantApprovals: true,
			wantHookWrite: true,
		},
		"receiver has no hook": {
			wantStatus:    StatusRolledBack,
			wantOwner:     alice,
			wantApprovals: true,
		},
		"receiver hook fails": {
			hook:          &writingHook{accept: true, err: errors.ErrHuman},
			wantStatus:    StatusRolledBack,
			wantOwner:     alice,
			wantApprovals: true,
		},
		"receiver hook exceeds its operation limit": {
			hook: ReceiverFunc(func(ctx weave.Context, db weave.KVStore, _, _ weave.Address, _ string, _ string) (bool, error) {
				// Refused operations are ignored, the limit still applies.
				for i := 0; i < 100; i++ {
					_ = db.Set(hookKey, []byte{byte(i)})
				}
				return true, nil
			}),
			hookOpLimit:   10,
			wantStatus:    StatusRolledBack,
			wantOwner:     alice,
			wantApprovals: true,
		},
		"slow receiver hook within its operation limit": {
			hook: ReceiverFunc(func(ctx weave.Context, db weave.KVStore, _, _ weave.Address, _ string, payload string) (bool, error) {
				time.Sleep(20 * time.Millisecond)
				return true, db.Set(hookKey, []byte(payload))
			}),
			hookOpLimit:   1,
			wantStatus:    StatusFinalized,
			wantOwner:     bob,
			wantHookWrite: true,
		},
		"edition moved on before a reject": {
			hook:        &writingHook{accept: false},
			moveOnBy:    bob,
			wantStatus:  StatusFinalized,
			wantSkipped: true,
			wantOwner:   carol,
			// The hook runs before the rollback is attempted.
			wantHookWrite: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, nil)
			if tc.hook != nil {
				f.hooks.Register(bob, tc.hook)
			}
			if tc.hookOpLimit != 0 {
				assert.Nil(t, gconf.Save(f.db, packageName, &Configuration{
					Metadata:    &weave.Metadata{Schema: 1},
					HookOpLimit: tc.hookOpLimit,
				}))
			}
			id := f.mint(t, alice)
			_, err := f.ledger.Approve(f.ctx, f.db, alice, id, carol)
			assert.Nil(t, err)

			pt, err := f.p.TransferCall(f.ctx, f.db, alice, bob, id, 0, "memo", "payload")
			assert.Nil(t, err)
			assert.Equal(t, StatusPending, pt.Status)

			// The receiver owns the edition while the answer is pending.
			owner, err := f.ledger.Owner(f.db, id)
			assert.Nil(t, err)
			assert.Equal(t, bob, owner)

			if tc.moveOnBy != nil {
				_, err := f.ledger.Transfer(f.ctx, f.db, tc.moveOnBy, carol, id, 0, "")
				assert.Nil(t, err)
			}

			resolved := f.resolveDue(t)
			assert.Equal(t, 1, len(resolved))
			assert.Equal(t, tc.wantStatus, resolved[0].Status)
			assert.Equal(t, tc.wantSkipped, resolved[0].RollbackSkipped)
			assert.Nil(t, resolved[0].Validate())

			owner, err = f.ledger.Owner(f.db, id)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantOwner, owner)

			ok, err := f.ledger.IsApproved(f.db, id, carol, 0)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantApprovals, ok)

			raw, err := f.db.Get(hookKey)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantHookWrite, raw != nil)
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()
	hook := &writingHook{accept: false}
	f.hooks.Register(bob, hook)
	id := f.mint(t, alice)

	pt, err := f.p.TransferCall(f.ctx, f.db, alice, bob, id, 0, "", "")
	assert.Nil(t, err)
	first, err := f.p.Resolve(f.ctx, f.db, pt.ID)
	assert.Nil(t, err)
	assert.Equal(t, StatusRolledBack, first.Status)

	// A later transfer to bob must not be undone by a second resolve.
	_, err = f.p.Transfer(f.ctx, f.db, alice, bob, id, 0, "")
	assert.Nil(t, err)
	second, err := f.p.Resolve(f.ctx, f.db, pt.ID)
	assert.Nil(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.ResolvedAt, second.ResolvedAt)
	assert.Equal(t, 1, hook.calls)

	owner, err := f.ledger.Owner(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, bob, owner)
}

func TestTransferCallValidation(t *testing.T) {
	f := newFixture(t, nil)
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()
	id := f.mint(t, alice)

	_, err := f.p.TransferCall(f.ctx, f.db, bob, bob, id, 0, "", "")
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, 0, len(f.cron.Pending()))

	f.cron.Err = errors.ErrDatabase
	_, err = f.p.TransferCall(f.ctx, f.db, alice, bob, id, 0, "", "")
	assert.IsErr(t, errors.ErrDatabase, err)
}

func TestApprovalIsConsumedByTransfer(t *testing.T) {
	f := newFixture(t, nil)
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()
	carol := weavetest.NewCondition().Address()
	id := f.mint(t, alice)

	bobID, err := f.ledger.Approve(f.ctx, f.db, alice, id, bob)
	assert.Nil(t, err)
	carolID, err := f.ledger.Approve(f.ctx, f.db, alice, id, carol)
	assert.Nil(t, err)

	_, err = f.p.Transfer(f.ctx, f.db, bob, carol, id, carolID, "")
	assert.IsErr(t, errors.ErrUnauthorized, err)
	_, err = f.p.Transfer(f.ctx, f.db, bob, bob, id, 0, "")
	assert.IsErr(t, errors.ErrUnauthorized, err)

	r, err := f.p.Transfer(f.ctx, f.db, bob, bob, id, bobID, "")
	assert.Nil(t, err)
	assert.Equal(t, bob, r.AuthorizedID)

	ok, err := f.ledger.IsApproved(f.db, id, carol, carolID)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}

func TestTransferPayout(t *testing.T) {
	a := weavetest.NewCondition().Address()
	b := weavetest.NewCondition().Address()
	c := weavetest.NewCondition().Address()
	f := newFixture(t, series.Royalties{{Party: a, BasisPoints: 1000}})
	id := f.mint(t, b)

	amount := coin.NewAmount(1000000)
	p, err := f.p.TransferPayout(f.ctx, f.db, b, c, id, 0, "", &amount, 10)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(100000), p.Get(a))
	assert.Equal(t, coin.NewAmount(900000), p.Get(b))
	assert.Equal(t, coin.Amount{}, p.Get(c))

	p, err = f.p.TransferPayout(f.ctx, f.db, c, b, id, 0, "", nil, 0)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(p))

	// A failed split fails the operation. The enclosing transaction is
	// discarded, including the transfer.
	_, err = f.p.TransferPayout(f.ctx, f.db, b, c, id, 0, "", &amount, 0)
	assert.IsErr(t, errors.ErrInput, err)
}

type approvalHook struct {
	err   error
	calls []string
}

func (h *approvalHook) OnApprove(ctx weave.Context, db weave.KVStore, owner weave.Address, editionID string, approvalID uint64, payload string) error {
	h.calls = append(h.calls, editionID+"/"+payload)
	return h.err
}

func TestApproveAndMint(t *testing.T) {
	market := weavetest.NewCondition().Address()
	stranger := weavetest.NewCondition().Address()

	cases := map[string]struct {
		caller    func(f *fixture) weave.Address
		payload   string
		hookErr   error
		wantErr   *errors.Error
		wantCalls []string
	}{
		"without payload": {
			caller: func(f *fixture) weave.Address { return f.creator },
		},
		"with payload": {
			caller:    func(f *fixture) weave.Address { return f.creator },
			payload:   "list",
			wantCalls: []string{"1:1/list"},
		},
		"hook failure is ignored": {
			caller:    func(f *fixture) weave.Address { return f.creator },
			payload:   "list",
			hookErr:   errors.ErrHuman,
			wantCalls: []string{"1:1/list"},
		},
		"not the creator": {
			caller:  func(*fixture) weave.Address { return stranger },
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, nil)
			hook := &approvalHook{err: tc.hookErr}
			f.hooks.Register(market, hook)

			e, approvalID, err := f.p.ApproveAndMint(f.ctx, f.db, tc.caller(f), "1", market, tc.payload)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			assert.Equal(t, f.creator, e.Owner)
			assert.Equal(t, uint64(1), approvalID)
			ok, err := f.ledger.IsApproved(f.db, e.ID, market, approvalID)
			assert.Nil(t, err)
			assert.Equal(t, true, ok)

			for _, task := range f.cron.Due(f.now.Add(time.Second)) {
				f.p.NotifyApproval(f.ctx, f.db, task.Msg.(*NotifyApprovalMsg))
			}
			assert.Equal(t, tc.wantCalls, hook.calls)
		})
	}
}

func TestResolveRequiresProtocol(t *testing.T) {
	f := newFixture(t, nil)
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition().Address()
	id := f.mint(t, alice.Address())

	rt := app.NewRouter()
	RegisterRoutes(rt, &weavetest.Auth{Signer: alice}, f.p)
	res, err := rt.Deliver(f.ctx, f.db, &weavetest.Tx{Msg: &TransferCallMsg{
		Metadata:  &weave.Metadata{Schema: 1},
		EditionID: id,
		Receiver:  bob,
	}})
	assert.Nil(t, err)

	resolve := &weavetest.Tx{Msg: &ResolveMsg{Metadata: &weave.Metadata{Schema: 1}, PendingID: res.Data}}
	_, err = rt.Deliver(f.ctx, f.db, resolve)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	task := f.cron.Due(f.now.Add(time.Second))
	assert.Equal(t, 1, len(task))
	rt = app.NewRouter()
	RegisterRoutes(rt, &weavetest.Auth{Signers: task[0].Auth}, f.p)
	res, err = rt.Deliver(f.ctx, f.db, &weavetest.Tx{Msg: task[0].Msg})
	assert.Nil(t, err)
	assert.Equal(t, string(StatusRolledBack), string(res.Data))
}

func TestTransferPayoutHandler(t *testing.T) {
	a := weavetest.NewCondition().Address()
	seller := weavetest.NewCondition()
	buyer := weavetest.NewCondition().Address()
	f := newFixture(t, series.Royalties{{Party: a, BasisPoints: 2500}})
	id := f.mint(t, seller.Address())

	rt := app.NewRouter()
	RegisterRoutes(rt, &weavetest.Auth{Signer: seller}, f.p)
	amount := coin.NewAmount(400)
	res, err := rt.Deliver(f.ctx, f.db, &weavetest.Tx{Msg: &TransferPayoutMsg{
		Metadata:      &weave.Metadata{Schema: 1},
		EditionID:     id,
		Receiver:      buyer,
		Amount:        &amount,
		MaxRecipients: 1,
	}})
	assert.Nil(t, err)

	var p payout.Payout
	assert.Nil(t, json.Unmarshal(res.Data, &p))
	assert.Equal(t, payout.Payout{
		{Party: a, Amount: coin.NewAmount(100)},
		{Party: seller.Address(), Amount: coin.NewAmount(300)},
	}, p)
}
