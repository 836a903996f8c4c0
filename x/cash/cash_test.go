package cash

import (
	"context"
	"testing"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/store"
	"github.com/iov-one/weave-editions/weavetest"
	"github.com/iov-one/weave-editions/weavetest/assert"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMoveCoins(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()

	Convey("Given a wallet with 100 coins", t, func() {
		db := store.MemStore()
		ctrl := NewController()
		So(ctrl.CoinMint(db, alice, coin.NewAmount(100)), ShouldBeNil)

		Convey("moving a part of it updates both wallets", func() {
			So(ctrl.MoveCoins(db, alice, bob, coin.NewAmount(30)), ShouldBeNil)
			a, err := ctrl.Balance(db, alice)
			So(err, ShouldBeNil)
			So(a, ShouldResemble, coin.NewAmount(70))
			b, err := ctrl.Balance(db, bob)
			So(err, ShouldBeNil)
			So(b, ShouldResemble, coin.NewAmount(30))
		})

		Convey("moving to self keeps the balance", func() {
			So(ctrl.MoveCoins(db, alice, alice, coin.NewAmount(30)), ShouldBeNil)
			a, err := ctrl.Balance(db, alice)
			So(err, ShouldBeNil)
			So(a, ShouldResemble, coin.NewAmount(100))
		})

		Convey("moving more than the balance fails", func() {
			err := ctrl.MoveCoins(db, alice, bob, coin.NewAmount(101))
			So(errors.ErrInsufficientAmount.Is(err), ShouldBeTrue)
		})

		Convey("moving from an unknown wallet fails", func() {
			err := ctrl.MoveCoins(db, bob, alice, coin.NewAmount(1))
			So(errors.ErrNotFound.Is(err), ShouldBeTrue)
		})

		Convey("moving nothing is rejected", func() {
			err := ctrl.MoveCoins(db, alice, bob, coin.Amount{})
			So(errors.ErrAmount.Is(err), ShouldBeTrue)
		})
	})
}

func TestSend(t *testing.T) {
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()

	cases := map[string]struct {
		signer         weave.Condition
		balance        uint64
		msg            *SendMsg
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
		wantAlice      uint64
		wantBob        uint64
	}{
		"send succeeds": {
			signer:  alice,
			balance: 50,
			msg: &SendMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				Source:      alice.Address(),
				Destination: bob.Address(),
				Amount:      coin.NewAmount(20),
			},
			wantAlice: 30,
			wantBob:   20,
		},
		"source must sign": {
			signer:  bob,
			balance: 50,
			msg: &SendMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				Source:      alice.Address(),
				Destination: bob.Address(),
				Amount:      coin.NewAmount(20),
			},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
			wantAlice:      50,
		},
		"funds are checked on deliver only": {
			signer:  alice,
			balance: 10,
			msg: &SendMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				Source:      alice.Address(),
				Destination: bob.Address(),
				Amount:      coin.NewAmount(20),
			},
			wantDeliverErr: errors.ErrInsufficientAmount,
			wantAlice:      10,
		},
		"zero amount is invalid": {
			signer:  alice,
			balance: 10,
			msg: &SendMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				Source:      alice.Address(),
				Destination: bob.Address(),
			},
			wantCheckErr:   errors.ErrAmount,
			wantDeliverErr: errors.ErrAmount,
			wantAlice:      10,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController()
			assert.Nil(t, ctrl.CoinMint(db, alice.Address(), coin.NewAmount(tc.balance)))

			h := NewSendHandler(&weavetest.Auth{Signer: tc.signer}, ctrl)
			tx := &weavetest.Tx{Msg: tc.msg}

			cache := db.CacheWrap()
			if _, err := h.Check(context.Background(), cache, tx); !tc.wantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			cache.Discard()
			if _, err := h.Deliver(context.Background(), db, tx); !tc.wantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}

			a, err := ctrl.Balance(db, alice.Address())
			assert.Nil(t, err)
			assert.Equal(t, coin.NewAmount(tc.wantAlice), a)
			b, err := ctrl.Balance(db, bob.Address())
			assert.Nil(t, err)
			assert.Equal(t, coin.NewAmount(tc.wantBob), b)
		})
	}
}

func TestGenesis(t *testing.T) {
	addr := weavetest.NewCondition().Address()
	opts := weave.Options{
		"cash": []byte(`[{"address": "` + addr.String() + `", "balance": "1000000000000000000000000000000"}]`),
	}
	db := store.MemStore()
	assert.Nil(t, Initializer{}.FromGenesis(opts, weave.GenesisParams{}, db))

	b, err := NewController().Balance(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, coin.MustParseAmount("1000000000000000000000000000000"), b)

	bad := weave.Options{"cash": []byte(`[{"address": "", "balance": "1"}]`)}
	assert.IsErr(t, errors.ErrEmpty, Initializer{}.FromGenesis(bad, weave.GenesisParams{}, store.MemStore()))
}
