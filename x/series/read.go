package series

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/x/edition"
)

// EditionView is an ownership record joined with the template of its
// series. Template fields are never stored per edition.
type EditionView struct {
	ID        string             `json:"id"`
	SeriesID  string             `json:"series_id"`
	Number    uint64             `json:"number"`
	Owner     weave.Address      `json:"owner"`
	Approvals []edition.Approval `json:"approvals"`
	IssuedAt  weave.UnixTime     `json:"issued_at"`
	Template  Template           `json:"template"`
}

// ReadEdition returns the composed view of an edition. It fails if the
// edition has no owner.
func (r *Registry) ReadEdition(db weave.ReadOnlyKVStore, id string) (*EditionView, error) {
	e, err := r.ledger.Get(db, id)
	if err != nil {
		return nil, err
	}
	return r.compose(db, e)
}

func (r *Registry) compose(db weave.ReadOnlyKVStore, e *edition.Edition) (*EditionView, error) {
	seriesID, n, err := edition.ParseID(e.ID)
	if err != nil {
		return nil, err
	}
	s, err := r.Get(db, seriesID)
	if err != nil {
		return nil, errors.Wrapf(err, "series of edition %s", e.ID)
	}
	return &EditionView{
		ID:        e.ID,
		SeriesID:  seriesID,
		Number:    n,
		Owner:     e.Owner,
		Approvals: e.Approvals,
		IssuedAt:  e.IssuedAt,
		Template:  s.Template,
	}, nil
}

func (r *Registry) composeAll(db weave.ReadOnlyKVStore, es []*edition.Edition) ([]*EditionView, error) {
	views := make([]*EditionView, 0, len(es))
	for _, e := range es {
		v, err := r.compose(db, e)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Editions returns the composed editions of a series in mint order. Burned
// editions are skipped, so a page may be shorter than its limit.
func (r *Registry) Editions(db weave.ReadOnlyKVStore, id string, req orm.PageRequest) ([]*EditionView, error) {
	if _, err := r.Get(db, id); err != nil {
		return nil, err
	}
	ids, err := r.issued.Page(db, []byte(id), req)
	if err != nil {
		return nil, err
	}
	views := make([]*EditionView, 0, len(ids))
	for _, raw := range ids {
		e, err := r.ledger.Get(db, string(raw))
		switch {
		case err == nil:
		case errors.ErrNotFound.Is(err):
			continue
		default:
			return nil, err
		}
		v, err := r.compose(db, e)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// List returns series in creation order.
func (r *Registry) List(db weave.ReadOnlyKVStore, req orm.PageRequest) ([]*Series, error) {
	total, err := r.ids.Latest(db)
	if err != nil {
		return nil, err
	}
	from, to, err := req.Window(total)
	if err != nil {
		return nil, err
	}
	res := make([]*Series, 0, to-from)
	for n := from + 1; n <= to; n++ {
		s, err := r.Get(db, seriesKey(n))
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, nil
}
