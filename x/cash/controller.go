package cash

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
)

// Controller is the functionality needed by other extensions to move value.
type Controller interface {
	Balance(weave.ReadOnlyKVStore, weave.Address) (coin.Amount, error)
	MoveCoins(db weave.KVStore, src, dest weave.Address, amount coin.Amount) error
	CoinMint(weave.KVStore, weave.Address, coin.Amount) error
}

// BaseController is a simple implementation of the Controller interface,
// storing all wallets in a single bucket.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

// Balance returns the amount held by given address. An unknown address holds
// nothing.
func (c BaseController) Balance(db weave.ReadOnlyKVStore, addr weave.Address) (coin.Amount, error) {
	w, err := c.bucket.GetOrCreate(db, addr)
	if err != nil {
		return coin.Amount{}, errors.Wrap(err, "wallet")
	}
	return w.Balance, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db weave.KVStore, src, dest weave.Address, amount coin.Amount) error {
	if amount.IsZero() {
		return errors.Wrap(errors.ErrAmount, "zero value")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	var sender Wallet
	if err := c.bucket.One(db, src, &sender); err != nil {
		return errors.Wrap(err, "empty account")
	}
	rest, err := sender.Balance.Subtract(amount)
	if err != nil {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %s, want %s", sender.Balance, amount)
	}
	sender.Balance = rest
	if _, err := c.bucket.Put(db, src, &sender); err != nil {
		return errors.Wrap(err, "save sender")
	}

	// Source and destination might be the same wallet, so it is loaded
	// only after the sender was saved.
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return errors.Wrap(err, "recipient")
	}
	if recipient.Balance, err = recipient.Balance.Add(amount); err != nil {
		return errors.Wrap(err, "recipient balance")
	}
	if _, err := c.bucket.Put(db, dest, recipient); err != nil {
		return errors.Wrap(err, "save recipient")
	}
	return nil
}

// CoinMint attempts to add the given amount of coins to the destination
// address. Fails if it overflows the wallet.
func (c BaseController) CoinMint(db weave.KVStore, dest weave.Address, amount coin.Amount) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	w, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if w.Balance, err = w.Balance.Add(amount); err != nil {
		return errors.Wrap(err, "balance")
	}
	_, err = c.bucket.Put(db, dest, w)
	return err
}
