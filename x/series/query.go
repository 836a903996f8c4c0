package series

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/x/edition"
)

// SeriesView is a series with its issued count and fee snapshot.
type SeriesView struct {
	*Series
	Issued uint64  `json:"issued"`
	Fee    *uint32 `json:"transaction_fee,omitempty"`
}

// PriceView is the result of the "/series/price" view.
type PriceView struct {
	ForSale bool         `json:"for_sale"`
	Price   *coin.Amount `json:"price,omitempty"`
	Fee     *uint32      `json:"transaction_fee,omitempty"`
}

// SeriesRequest selects a series and a page of its editions.
type SeriesRequest struct {
	orm.PageRequest
	SeriesID string `json:"series_id"`
}

// EditionRequest selects an edition.
type EditionRequest struct {
	EditionID string `json:"edition_id"`
}

// View returns the series together with its issued count and fee snapshot.
func (r *Registry) View(db weave.ReadOnlyKVStore, id string) (*SeriesView, error) {
	s, err := r.Get(db, id)
	if err != nil {
		return nil, err
	}
	issued, err := r.Issued(db, id)
	if err != nil {
		return nil, err
	}
	v := SeriesView{Series: s, Issued: issued}
	f, ok, err := r.Fee(db, id)
	if err != nil {
		return nil, err
	}
	if ok {
		v.Fee = &f
	}
	return &v, nil
}

// RegisterQuery registers the series records under "/series", the series
// views below it and the composed edition views under "/editions".
func RegisterQuery(qr weave.QueryRouter) {
	reg := NewRegistry(edition.NewLedger(nil), nil, nil)
	reg.bucket.Register("series", qr)

	orm.RegisterView(qr, "series/get", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		req, err := decodeSeriesRequest(raw)
		if err != nil {
			return nil, err
		}
		return reg.View(db, req.SeriesID)
	})
	orm.RegisterView(qr, "series/list", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		var req orm.PageRequest
		if err := orm.DecodeRequest(raw, &req); err != nil {
			return nil, err
		}
		return reg.List(db, req)
	})
	orm.RegisterView(qr, "series/price", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		req, err := decodeSeriesRequest(raw)
		if err != nil {
			return nil, err
		}
		v, err := reg.View(db, req.SeriesID)
		if err != nil {
			return nil, err
		}
		return PriceView{ForSale: v.ForSale, Price: v.price(), Fee: v.Fee}, nil
	})
	orm.RegisterView(qr, "series/supply", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		req, err := decodeSeriesRequest(raw)
		if err != nil {
			return nil, err
		}
		if _, err := reg.Get(db, req.SeriesID); err != nil {
			return nil, err
		}
		return reg.Issued(db, req.SeriesID)
	})
	orm.RegisterView(qr, "series/editions", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		req, err := decodeSeriesRequest(raw)
		if err != nil {
			return nil, err
		}
		return reg.Editions(db, req.SeriesID, req.PageRequest)
	})

	orm.RegisterView(qr, "editions/get", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		var req EditionRequest
		if err := orm.DecodeRequest(raw, &req); err != nil {
			return nil, err
		}
		return reg.ReadEdition(db, req.EditionID)
	})
	orm.RegisterView(qr, "editions/list", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		var req orm.PageRequest
		if err := orm.DecodeRequest(raw, &req); err != nil {
			return nil, err
		}
		es, err := reg.ledger.All(db, req)
		if err != nil {
			return nil, err
		}
		return reg.composeAll(db, es)
	})
	orm.RegisterView(qr, "editions/for_owner", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		var req edition.OwnerRequest
		if err := orm.DecodeRequest(raw, &req); err != nil {
			return nil, err
		}
		if err := req.Owner.Validate(); err != nil {
			return nil, errors.Wrap(err, "owner")
		}
		es, err := reg.ledger.ByOwner(db, req.Owner, req.PageRequest)
		if err != nil {
			return nil, err
		}
		return reg.composeAll(db, es)
	})
}

func decodeSeriesRequest(raw []byte) (*SeriesRequest, error) {
	var req SeriesRequest
	if err := orm.DecodeRequest(raw, &req); err != nil {
		return nil, err
	}
	if err := validateSeriesID(req.SeriesID); err != nil {
		return nil, errors.Wrap(err, "series id")
	}
	return &req, nil
}
