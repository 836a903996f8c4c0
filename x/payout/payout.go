package payout

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/x/edition"
	"github.com/iov-one/weave-editions/x/fee"
	"github.com/iov-one/weave-editions/x/series"
)

// Share is the part of a sale paid to a single party.
type Share struct {
	Party  weave.Address `json:"party"`
	Amount coin.Amount   `json:"amount"`
}

// Payout lists the shares of a sale. Royalty parties come first in table
// order and the owner is last.
type Payout []Share

// Get returns the share of a party, or zero.
func (p Payout) Get(party weave.Address) coin.Amount {
	for _, s := range p {
		if s.Party.Equals(party) {
			return s.Amount
		}
	}
	return coin.Amount{}
}

// Total returns the sum of all shares.
func (p Payout) Total() (coin.Amount, error) {
	amounts := make([]coin.Amount, len(p))
	for i, s := range p {
		amounts[i] = s.Amount
	}
	return coin.Sum(amounts...)
}

// Compute splits amount between the royalty parties and the owner. A royalty
// entry of the owner is folded into the owner share.
func Compute(royalties series.Royalties, owner weave.Address, amount coin.Amount, maxRecipients uint32) (Payout, error) {
	if maxRecipients == 0 {
		return nil, errors.Wrap(errors.ErrInput, "max recipients required")
	}
	if len(royalties) > int(maxRecipients) {
		return nil, errors.Wrapf(errors.ErrLimit, "cannot pay out to %d receivers, max %d", len(royalties), maxRecipients)
	}

	var (
		consumed uint64
		paid     coin.Amount
		p        = make(Payout, 0, len(royalties)+1)
	)
	for _, r := range royalties {
		if r.Party.Equals(owner) {
			continue
		}
		consumed += uint64(r.BasisPoints)
		if consumed > fee.Denominator {
			return nil, errors.Wrap(errors.ErrOverflow, "royalties above the whole amount")
		}
		share, err := amount.MulFrac(uint64(r.BasisPoints), fee.Denominator)
		if err != nil {
			return nil, err
		}
		if paid, err = paid.Add(share); err != nil {
			return nil, err
		}
		p = append(p, Share{Party: r.Party, Amount: share})
	}
	rest, err := amount.Subtract(paid)
	if err != nil {
		return nil, errors.Wrap(err, "owner share")
	}
	return append(p, Share{Party: owner, Amount: rest}), nil
}

// Engine computes payouts of minted editions.
type Engine struct {
	reg *series.Registry
}

// NewEngine returns an engine reading royalties and owners from the
// registry.
func NewEngine(reg *series.Registry) *Engine {
	return &Engine{reg: reg}
}

// Payout splits a sale of an edition against its current owner.
func (e *Engine) Payout(db weave.ReadOnlyKVStore, editionID string, amount coin.Amount, maxRecipients uint32) (Payout, error) {
	owner, err := e.reg.Ledger().Owner(db, editionID)
	if err != nil {
		return nil, err
	}
	return e.PayoutTo(db, editionID, owner, amount, maxRecipients)
}

// PayoutTo splits a sale of an edition against the given owner. It is used
// after a transfer, when the seller is no longer the owner.
func (e *Engine) PayoutTo(db weave.ReadOnlyKVStore, editionID string, owner weave.Address, amount coin.Amount, maxRecipients uint32) (Payout, error) {
	seriesID, _, err := edition.ParseID(editionID)
	if err != nil {
		return nil, err
	}
	s, err := e.reg.Get(db, seriesID)
	if err != nil {
		return nil, err
	}
	return Compute(s.Royalties, owner, amount, maxRecipients)
}
