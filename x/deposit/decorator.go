package deposit

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/store"
	"github.com/iov-one/weave-editions/x"
	"github.com/iov-one/weave-editions/x/cash"
)

// Tx is implemented by transactions that can carry a deposit.
type Tx interface {
	GetDeposit() coin.Amount
}

// Decorator accounts for the storage used by a transaction and settles its
// attached deposit.
type Decorator struct {
	auth x.Authenticator
	ctrl cash.Controller
}

var _ weave.Decorator = Decorator{}

// NewDecorator returns a decorator charging the main signer of every
// transaction.
func NewDecorator(auth x.Authenticator, ctrl cash.Controller) Decorator {
	return Decorator{auth: auth, ctrl: ctrl}
}

func (d Decorator) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	s, err := d.open(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(s.ctx, s.meter, tx)
	if err != nil {
		return nil, err
	}
	if err := d.settle(db, s); err != nil {
		return nil, err
	}
	return res, nil
}

func (d Decorator) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	s, err := d.open(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(s.ctx, s.meter, tx)
	if err != nil {
		return nil, err
	}
	if err := d.settle(db, s); err != nil {
		return nil, err
	}
	if used := s.meter.Used(); used != 0 {
		weave.GetLogger(ctx).Debug("storage usage", "bytes", used, "spent", s.acct.spent)
	}
	return res, nil
}

type session struct {
	ctx   weave.Context
	meter *store.MeteredStore
	acct  *account
	payer weave.Address
}

// open moves the attached deposit to the pool.
func (d Decorator) open(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*session, error) {
	var attached coin.Amount
	if dtx, ok := tx.(Tx); ok {
		attached = dtx.GetDeposit()
	}

	var payer weave.Address
	if signer := x.MainSigner(ctx, d.auth); signer != nil {
		payer = signer.Address()
	}
	if !attached.IsZero() {
		if payer == nil {
			return nil, errors.Wrap(errors.ErrUnauthorized, "deposit requires a signer")
		}
		if err := d.ctrl.MoveCoins(db, payer, PoolAddress, attached); err != nil {
			return nil, errors.Wrap(err, "attach deposit")
		}
	}

	acct := &account{ctrl: d.ctrl, attached: attached}
	return &session{
		ctx:   withAccount(ctx, acct),
		meter: store.NewMeteredStore(db),
		acct:  acct,
		payer: payer,
	}, nil
}

// settle charges the storage cost and what was spent, and refunds the rest
// of the deposit.
func (d Decorator) settle(db weave.KVStore, s *session) error {
	cost, err := byteCost(db)
	if err != nil {
		return errors.Wrap(err, "byte cost")
	}
	var storage coin.Amount
	if used := s.meter.Used(); used > 0 {
		if storage, err = cost.MulUint64(uint64(used)); err != nil {
			return errors.Wrap(err, "storage cost")
		}
	}
	required, err := storage.Add(s.acct.spent)
	if err != nil {
		return err
	}
	refund, err := s.acct.attached.Subtract(required)
	if err != nil {
		return errors.Wrapf(errors.ErrInsufficientAmount,
			"deposit %s does not cover storage %s and spending %s", s.acct.attached, storage, s.acct.spent)
	}
	if refund.IsZero() {
		return nil
	}
	return d.ctrl.MoveCoins(db, PoolAddress, s.payer, refund)
}
