package deposit

import (
	"context"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/x/cash"
)

type contextKey int

const contextKeyAccount contextKey = iota

// PoolCondition controls the deposit pool. It is never satisfied by a
// signature, so only this package can move value out of the pool.
var PoolCondition = weave.NewCondition("deposit", "pool", nil)

// PoolAddress holds attached deposits and collected storage cost.
var PoolAddress = PoolCondition.Address()

// account tracks the deposit of the transaction being processed.
type account struct {
	ctrl     cash.Controller
	attached coin.Amount
	spent    coin.Amount
}

func withAccount(ctx weave.Context, a *account) weave.Context {
	return context.WithValue(ctx, contextKeyAccount, a)
}

func getAccount(ctx weave.Context) *account {
	a, _ := ctx.Value(contextKeyAccount).(*account)
	return a
}

// Attached returns the deposit attached to the current transaction.
func Attached(ctx weave.Context) coin.Amount {
	if a := getAccount(ctx); a != nil {
		return a.attached
	}
	return coin.Amount{}
}

// Spend marks a part of the attached deposit as consumed, so that it is not
// refunded.
func Spend(ctx weave.Context, amount coin.Amount) error {
	a := getAccount(ctx)
	if a == nil {
		return errors.Wrap(errors.ErrInsufficientAmount, "no deposit attached")
	}
	spent, err := a.spent.Add(amount)
	if err != nil {
		return err
	}
	if spent.Compare(a.attached) > 0 {
		return errors.Wrapf(errors.ErrInsufficientAmount, "deposit %s, want %s", a.attached, spent)
	}
	a.spent = spent
	return nil
}

// Pay spends a part of the attached deposit by moving it to the
// destination.
func Pay(ctx weave.Context, db weave.KVStore, dest weave.Address, amount coin.Amount) error {
	if amount.IsZero() {
		return nil
	}
	if err := Spend(ctx, amount); err != nil {
		return err
	}
	return getAccount(ctx).ctrl.MoveCoins(db, PoolAddress, dest, amount)
}
