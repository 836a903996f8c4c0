package series

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/x/deposit"
	"github.com/iov-one/weave-editions/x/edition"
	"github.com/iov-one/weave-editions/x/fee"
)

// Sale is the settlement of a bought edition.
type Sale struct {
	Edition     *edition.Edition `json:"edition"`
	Price       coin.Amount      `json:"price"`
	PlatformFee coin.Amount      `json:"platform_fee"`
	Treasury    weave.Address    `json:"treasury"`
	Creator     weave.Address    `json:"creator"`
}

// Buy mints the next edition of a priced series to the receiver. The price
// is paid from the deposit attached to the transaction. The platform fee
// goes to the treasury and the rest to the creator. Without a configured
// treasury the creator receives the whole price.
func (r *Registry) Buy(ctx weave.Context, db weave.KVStore, id string, receiver weave.Address) (*Sale, error) {
	s, err := r.Get(db, id)
	if err != nil {
		return nil, err
	}
	if !s.ForSale {
		return nil, errors.Wrapf(errors.ErrState, "series %s is not for sale", id)
	}
	if !s.Mintable {
		return nil, errors.Wrapf(errors.ErrState, "series %s is not mintable", id)
	}
	if attached := deposit.Attached(ctx); attached.Compare(s.Price) < 0 {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "deposit %s, price %s", attached, s.Price)
	}

	rate, err := r.SaleFee(ctx, db, id)
	if err != nil {
		return nil, errors.Wrap(err, "sale fee")
	}
	platform, err := fee.PlatformFee(s.Price, rate)
	if err != nil {
		return nil, err
	}
	rest, err := s.Price.Subtract(platform)
	if err != nil {
		return nil, errors.Wrap(err, "creator share")
	}
	conf, err := fee.LoadConfiguration(db)
	if err != nil {
		return nil, errors.Wrap(err, "fee configuration")
	}
	treasury := conf.Treasury
	if len(treasury) == 0 {
		treasury = s.Creator
	}
	if err := deposit.Pay(ctx, db, treasury, platform); err != nil {
		return nil, errors.Wrap(err, "pay platform fee")
	}
	if err := deposit.Pay(ctx, db, s.Creator, rest); err != nil {
		return nil, errors.Wrap(err, "pay creator")
	}

	e, err := r.MintEdition(ctx, db, id, receiver)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Debug("edition sold",
		"edition", e.ID, "price", s.Price.String(), "fee", platform.String())
	return &Sale{
		Edition:     e,
		Price:       s.Price,
		PlatformFee: platform,
		Treasury:    treasury,
		Creator:     s.Creator,
	}, nil
}
