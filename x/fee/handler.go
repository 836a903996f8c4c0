package fee

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/gconf"
	"github.com/iov-one/weave-editions/x"
)

const setFeeCost = 0

// RegisterRoutes registers handlers for fee message processing.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ctrl ScheduleController) {
	r.Handle(&SetTransactionFeeMsg{}, &setTransactionFeeHandler{auth: auth, ctrl: ctrl})
	r.Handle(&UpdateConfigurationMsg{}, NewConfigHandler(auth))
}

// NewConfigHandler returns the handler of the fee configuration updates.
func NewConfigHandler(auth x.Authenticator) weave.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler(packageName, &conf, auth, nil)
}

type setTransactionFeeHandler struct {
	auth x.Authenticator
	ctrl ScheduleController
}

func (h *setTransactionFeeHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: setFeeCost}, nil
}

func (h *setTransactionFeeHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	s, err := h.ctrl.Reschedule(ctx, db, msg.NextFee, msg.ActivationTime)
	if err != nil {
		return nil, err
	}
	if s.HasNext {
		weave.GetLogger(ctx).Info("fee staged", "fee", s.NextFee, "activation", s.ActivationTime)
	}
	return &weave.DeliverResult{}, nil
}

func (h *setTransactionFeeHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetTransactionFeeMsg, error) {
	var msg SetTransactionFeeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	if len(conf.Owner) == 0 || !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "registry owner signature required")
	}
	if msg.ActivationTime != 0 {
		now, err := weave.BlockTime(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "block time")
		}
		if msg.ActivationTime <= weave.AsUnixTime(now) {
			return nil, errors.Field("ActivationTime", errors.ErrInput, "must be in the future")
		}
	}
	return &msg, nil
}
