package series

import (
	"strconv"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/x/edition"
	"github.com/iov-one/weave-editions/x/events"
	"github.com/iov-one/weave-editions/x/fee"
)

const (
	// BucketName is where series records are stored.
	BucketName = "series"
	// FeeBucketName is where the per series fee snapshots are stored.
	FeeBucketName = "seriesfee"
)

// Minter mints editions of a series.
type Minter interface {
	MintEdition(ctx weave.Context, db weave.KVStore, seriesID string, receiver weave.Address) (*edition.Edition, error)
}

// Registry is the series registry and minting engine.
type Registry struct {
	bucket orm.ModelBucket
	fees   orm.ModelBucket
	issued orm.KeySet
	ids    orm.Sequence
	ledger *edition.Ledger
	fee    fee.Controller
	outbox *events.Outbox
}

var _ Minter = (*Registry)(nil)

// NewRegistry returns a registry minting into the given ledger.
func NewRegistry(ledger *edition.Ledger, feeCtrl fee.Controller, outbox *events.Outbox) *Registry {
	return &Registry{
		bucket: orm.NewModelBucket(BucketName, &Series{}),
		fees:   orm.NewModelBucket(FeeBucketName, &FeeSnapshot{}),
		issued: orm.NewKeySet("issued"),
		ids:    orm.NewSequence(BucketName, "id"),
		ledger: ledger,
		fee:    feeCtrl,
		outbox: outbox,
	}
}

// Ledger returns the ownership ledger of minted editions.
func (r *Registry) Ledger() *edition.Ledger {
	return r.ledger
}

// SeriesCreatedEvent is the payload of series creation events.
type SeriesCreatedEvent struct {
	SeriesID  string        `json:"series_id"`
	Creator   weave.Address `json:"creator"`
	Template  Template      `json:"template"`
	Price     *coin.Amount  `json:"price,omitempty"`
	Royalties Royalties     `json:"royalties,omitempty"`
	Fee       uint32        `json:"transaction_fee"`
}

// MintedEvent is the payload of edition minted events.
type MintedEvent struct {
	Owner      weave.Address `json:"owner"`
	EditionIDs []string      `json:"edition_ids"`
	SeriesID   string        `json:"series_id"`
}

// SeriesEvent is the payload of series updates.
type SeriesEvent struct {
	SeriesID string       `json:"series_id"`
	Price    *coin.Amount `json:"price,omitempty"`
	Fee      *uint32      `json:"transaction_fee,omitempty"`
	Copies   *uint64      `json:"copies,omitempty"`
	Mintable bool         `json:"is_mintable"`
}

// NewSeries describes a series to be created.
type NewSeries struct {
	Template  Template
	ForSale   bool
	Price     coin.Amount
	Royalties Royalties
}

// Create registers a new series owned by the creator. The effective fee is
// snapshotted for the new series.
func (r *Registry) Create(ctx weave.Context, db weave.KVStore, creator weave.Address, ns NewSeries) (*Series, error) {
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, errors.Wrap(err, "configuration")
	}
	if err := conf.checkRoyalties(ns.Royalties); err != nil {
		return nil, err
	}
	if ns.ForSale {
		if err := checkPrice(db, ns.Price); err != nil {
			return nil, err
		}
	}
	tpl := ns.Template
	tpl.Limited = tpl.Copies > 0

	n, err := r.ids.NextInt(db)
	if err != nil {
		return nil, errors.Wrap(err, "series id")
	}
	s := Series{
		Metadata:  &weave.Metadata{Schema: 1},
		ID:        seriesKey(n),
		Creator:   creator,
		Template:  tpl,
		ForSale:   ns.ForSale,
		Mintable:  true,
		Royalties: ns.Royalties,
	}
	if ns.ForSale {
		s.Price = ns.Price
	}
	if _, err := r.bucket.Put(db, []byte(s.ID), &s); err != nil {
		return nil, errors.Wrap(err, "save series")
	}
	txFee, err := r.snapshotFee(ctx, db, s.ID)
	if err != nil {
		return nil, err
	}
	err = r.emit(ctx, db, events.KindSeriesCreated, SeriesCreatedEvent{
		SeriesID:  s.ID,
		Creator:   creator,
		Template:  s.Template,
		Price:     s.price(),
		Royalties: s.Royalties,
		Fee:       txFee,
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns a series.
func (r *Registry) Get(db weave.ReadOnlyKVStore, id string) (*Series, error) {
	var s Series
	if err := r.bucket.One(db, []byte(id), &s); err != nil {
		return nil, errors.Wrapf(err, "series %s", id)
	}
	return &s, nil
}

// Issued returns the number of editions minted from a series.
func (r *Registry) Issued(db weave.ReadOnlyKVStore, id string) (uint64, error) {
	return r.issued.Size(db, []byte(id))
}

// Fee returns the fee snapshot of a series. It returns false if the series
// has none, in which case the effective fee applies.
func (r *Registry) Fee(db weave.ReadOnlyKVStore, id string) (uint32, bool, error) {
	var f FeeSnapshot
	switch err := r.fees.One(db, []byte(id), &f); {
	case err == nil:
		return f.Fee, true, nil
	case errors.ErrNotFound.Is(err):
		return 0, false, nil
	default:
		return 0, false, err
	}
}

// SaleFee returns the fee that applies to a sale of the series.
func (r *Registry) SaleFee(ctx weave.Context, db weave.KVStore, id string) (uint32, error) {
	f, ok, err := r.Fee(db, id)
	if err != nil || ok {
		return f, err
	}
	return r.fee.EffectiveFee(ctx, db)
}

// MintEdition mints the next edition of a series to the receiver. The series
// stops being mintable when its last copy is issued.
func (r *Registry) MintEdition(ctx weave.Context, db weave.KVStore, seriesID string, receiver weave.Address) (*edition.Edition, error) {
	s, err := r.Get(db, seriesID)
	if err != nil {
		return nil, err
	}
	if !s.Mintable {
		return nil, errors.Wrapf(errors.ErrState, "series %s is not mintable", seriesID)
	}
	issued, err := r.Issued(db, seriesID)
	if err != nil {
		return nil, err
	}
	if s.Template.Limited && issued >= s.Template.Copies {
		return nil, errors.Wrapf(errors.ErrState, "series %s has no copies left", seriesID)
	}

	n := issued + 1
	if s.Template.Limited && n == s.Template.Copies {
		s.Mintable = false
		if _, err := r.bucket.Put(db, []byte(s.ID), s); err != nil {
			return nil, errors.Wrap(err, "save series")
		}
	}
	id := edition.FormatID(seriesID, n)
	if _, err := r.issued.Add(db, []byte(seriesID), []byte(id)); err != nil {
		return nil, errors.Wrap(err, "issued index")
	}
	e, err := r.ledger.Mint(ctx, db, id, receiver)
	if err != nil {
		return nil, err
	}
	err = r.emit(ctx, db, events.KindEditionMinted, MintedEvent{
		Owner:      receiver,
		EditionIDs: []string{id},
		SeriesID:   seriesID,
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DecreaseCopies lowers the copies limit of a series and returns the new
// limit. The limit cannot go below the number of issued editions. Reaching
// it makes the series not mintable.
func (r *Registry) DecreaseCopies(ctx weave.Context, db weave.KVStore, creator weave.Address, id string, decrease uint64) (uint64, error) {
	s, err := r.createdBy(db, creator, id)
	if err != nil {
		return 0, err
	}
	if !s.Template.Limited {
		return 0, errors.Wrapf(errors.ErrState, "series %s has no copies limit", id)
	}
	if decrease > s.Template.Copies {
		return 0, errors.Wrapf(errors.ErrInput, "cannot decrease %d copies by %d", s.Template.Copies, decrease)
	}
	copies := s.Template.Copies - decrease
	issued, err := r.Issued(db, id)
	if err != nil {
		return 0, err
	}
	if copies < issued {
		return 0, errors.Wrapf(errors.ErrState, "cannot decrease below %d already minted", issued)
	}
	s.Template.Copies = copies
	if copies == issued {
		s.Mintable = false
	}
	if _, err := r.bucket.Put(db, []byte(id), s); err != nil {
		return 0, errors.Wrap(err, "save series")
	}
	err = r.emit(ctx, db, events.KindCopiesDecreased, SeriesEvent{
		SeriesID: id,
		Copies:   &copies,
		Mintable: s.Mintable,
	})
	return copies, err
}

// SetNonMintable stops minting of a series without a copies limit. This
// cannot be undone.
func (r *Registry) SetNonMintable(ctx weave.Context, db weave.KVStore, creator weave.Address, id string) error {
	s, err := r.createdBy(db, creator, id)
	if err != nil {
		return err
	}
	if !s.Mintable {
		return errors.Wrapf(errors.ErrState, "series %s is already not mintable", id)
	}
	if s.Template.Limited {
		return errors.Wrapf(errors.ErrState, "series %s has a copies limit", id)
	}
	s.Mintable = false
	if _, err := r.bucket.Put(db, []byte(id), s); err != nil {
		return errors.Wrap(err, "save series")
	}
	return r.emit(ctx, db, events.KindSeriesNonMintable, SeriesEvent{SeriesID: id})
}

// SetPrice changes or clears the price of a mintable series. The effective
// fee is snapshotted again.
func (r *Registry) SetPrice(ctx weave.Context, db weave.KVStore, creator weave.Address, id string, forSale bool, price coin.Amount) (*Series, error) {
	s, err := r.createdBy(db, creator, id)
	if err != nil {
		return nil, err
	}
	if !s.Mintable {
		return nil, errors.Wrapf(errors.ErrState, "series %s is not mintable", id)
	}
	if forSale {
		if err := checkPrice(db, price); err != nil {
			return nil, err
		}
		s.Price = price
	} else {
		s.Price = coin.Amount{}
	}
	s.ForSale = forSale
	if _, err := r.bucket.Put(db, []byte(id), s); err != nil {
		return nil, errors.Wrap(err, "save series")
	}
	txFee, err := r.snapshotFee(ctx, db, id)
	if err != nil {
		return nil, err
	}
	err = r.emit(ctx, db, events.KindPriceChanged, SeriesEvent{
		SeriesID: id,
		Price:    s.price(),
		Fee:      &txFee,
		Mintable: s.Mintable,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Registry) createdBy(db weave.ReadOnlyKVStore, creator weave.Address, id string) (*Series, error) {
	s, err := r.Get(db, id)
	if err != nil {
		return nil, err
	}
	if !s.Creator.Equals(creator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the creator can do this")
	}
	return s, nil
}

func (r *Registry) snapshotFee(ctx weave.Context, db weave.KVStore, id string) (uint32, error) {
	f, err := r.fee.EffectiveFee(ctx, db)
	if err != nil {
		return 0, errors.Wrap(err, "effective fee")
	}
	snap := FeeSnapshot{Metadata: &weave.Metadata{Schema: 1}, Fee: f}
	if _, err := r.fees.Put(db, []byte(id), &snap); err != nil {
		return 0, errors.Wrap(err, "save fee snapshot")
	}
	return f, nil
}

func (r *Registry) emit(ctx weave.Context, db weave.KVStore, kind string, payload interface{}) error {
	if r.outbox == nil {
		return nil
	}
	return r.outbox.Emit(ctx, db, kind, payload)
}

// price returns the price or nil if the series is not for sale.
func (s *Series) price() *coin.Amount {
	if !s.ForSale {
		return nil
	}
	p := s.Price
	return &p
}

func seriesKey(n uint64) string {
	return strconv.FormatUint(n, 10)
}

// checkPrice rejects prices at or above the configured ceiling.
func checkPrice(db weave.ReadOnlyKVStore, price coin.Amount) error {
	conf, err := fee.LoadConfiguration(db)
	if err != nil {
		return errors.Wrap(err, "fee configuration")
	}
	if price.Compare(conf.MaxPrice) >= 0 {
		return errors.Wrapf(errors.ErrInput, "price must be below %s", conf.MaxPrice)
	}
	return nil
}
