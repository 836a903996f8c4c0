package series

import (
	"encoding/json"
	"strconv"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/gconf"
	"github.com/iov-one/weave-editions/x"
	"github.com/iov-one/weave-editions/x/edition"
)

const (
	createSeriesCost = 100
	mintEditionCost  = 50
	updateSeriesCost = 20
)

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, reg *Registry) {
	r.Handle(&CreateMsg{}, &createHandler{auth: auth, reg: reg})
	r.Handle(&MintMsg{}, &mintHandler{auth: auth, reg: reg})
	r.Handle(&BuyMsg{}, &buyHandler{auth: auth, reg: reg})
	r.Handle(&DecreaseCopiesMsg{}, &decreaseCopiesHandler{auth: auth, reg: reg})
	r.Handle(&SetNonMintableMsg{}, &setNonMintableHandler{auth: auth, reg: reg})
	r.Handle(&SetPriceMsg{}, &setPriceHandler{auth: auth, reg: reg})
	var conf Configuration
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(packageName, &conf, auth, nil))
}

// creatorSigner returns the creator of the series if it signed the
// transaction.
func creatorSigner(ctx weave.Context, db weave.ReadOnlyKVStore, auth x.Authenticator, reg *Registry, id string) (weave.Address, error) {
	s, err := reg.Get(db, id)
	if err != nil {
		return nil, err
	}
	if !auth.HasAddress(ctx, s.Creator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "creator signature required")
	}
	return s.Creator, nil
}

type createHandler struct {
	auth x.Authenticator
	reg  *Registry
}

func (h *createHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createSeriesCost}, nil
}

func (h *createHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	s, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Data: []byte(s.ID)}, nil
}

func (h *createHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Series, error) {
	msg, creator, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return h.reg.Create(ctx, db, creator, NewSeries{
		Template:  msg.Template,
		ForSale:   msg.ForSale,
		Price:     msg.Price,
		Royalties: msg.Royalties,
	})
}

func (h *createHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CreateMsg, weave.Address, error) {
	var msg CreateMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "signature required")
	}
	creator := signer.Address()
	if len(msg.Creator) != 0 && !msg.Creator.Equals(creator) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "creator must be the signer")
	}
	return &msg, creator, nil
}

type mintHandler struct {
	auth x.Authenticator
	reg  *Registry
}

func (h *mintHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: mintEditionCost}, nil
}

func (h *mintHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	e, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Data: []byte(e.ID)}, nil
}

func (h *mintHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*edition.Edition, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return h.reg.MintEdition(ctx, db, msg.SeriesID, msg.Receiver)
}

func (h *mintHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*MintMsg, error) {
	var msg MintMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := creatorSigner(ctx, db, h.auth, h.reg, msg.SeriesID); err != nil {
		return nil, err
	}
	return &msg, nil
}

type buyHandler struct {
	auth x.Authenticator
	reg  *Registry
}

func (h *buyHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: mintEditionCost}, nil
}

func (h *buyHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	sale, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(sale)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &weave.DeliverResult{Data: data}, nil
}

func (h *buyHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Sale, error) {
	msg, receiver, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return h.reg.Buy(ctx, db, msg.SeriesID, receiver)
}

func (h *buyHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*BuyMsg, weave.Address, error) {
	var msg BuyMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if len(msg.Receiver) != 0 {
		return &msg, msg.Receiver, nil
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "signature required")
	}
	return &msg, signer.Address(), nil
}

type decreaseCopiesHandler struct {
	auth x.Authenticator
	reg  *Registry
}

func (h *decreaseCopiesHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: updateSeriesCost}, nil
}

func (h *decreaseCopiesHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	copies, err := h.run(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Data: []byte(strconv.FormatUint(copies, 10))}, nil
}

func (h *decreaseCopiesHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) (uint64, error) {
	msg, creator, err := h.validate(ctx, db, tx)
	if err != nil {
		return 0, err
	}
	return h.reg.DecreaseCopies(ctx, db, creator, msg.SeriesID, msg.Decrease)
}

func (h *decreaseCopiesHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*DecreaseCopiesMsg, weave.Address, error) {
	var msg DecreaseCopiesMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	creator, err := creatorSigner(ctx, db, h.auth, h.reg, msg.SeriesID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, creator, nil
}

type setNonMintableHandler struct {
	auth x.Authenticator
	reg  *Registry
}

func (h *setNonMintableHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: updateSeriesCost}, nil
}

func (h *setNonMintableHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h *setNonMintableHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) error {
	msg, creator, err := h.validate(ctx, db, tx)
	if err != nil {
		return err
	}
	return h.reg.SetNonMintable(ctx, db, creator, msg.SeriesID)
}

func (h *setNonMintableHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetNonMintableMsg, weave.Address, error) {
	var msg SetNonMintableMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	creator, err := creatorSigner(ctx, db, h.auth, h.reg, msg.SeriesID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, creator, nil
}

type setPriceHandler struct {
	auth x.Authenticator
	reg  *Registry
}

func (h *setPriceHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: updateSeriesCost}, nil
}

func (h *setPriceHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.run(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h *setPriceHandler) run(ctx weave.Context, db weave.KVStore, tx weave.Tx) error {
	msg, creator, err := h.validate(ctx, db, tx)
	if err != nil {
		return err
	}
	_, err = h.reg.SetPrice(ctx, db, creator, msg.SeriesID, msg.ForSale, msg.Price)
	return err
}

func (h *setPriceHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetPriceMsg, weave.Address, error) {
	var msg SetPriceMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	creator, err := creatorSigner(ctx, db, h.auth, h.reg, msg.SeriesID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, creator, nil
}
