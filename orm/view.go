package orm

import (
	"encoding/json"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
)

// ViewFunc computes a read-only view from a JSON encoded request. A nil
// request is passed when the query carries no data.
type ViewFunc func(db weave.ReadOnlyKVStore, request []byte) (interface{}, error)

// View serves a computed, JSON encoded result instead of raw bucket content.
// The result is returned as a single model with the request as its key.
type View struct {
	fn ViewFunc
}

var _ weave.QueryHandler = View{}

// NewView returns a query handler serving the given view.
func NewView(fn ViewFunc) View {
	return View{fn: fn}
}

// RegisterView registers a view under "/"+name.
func RegisterView(qr weave.QueryRouter, name string, fn ViewFunc) {
	qr.Register("/"+name, NewView(fn))
}

func (v View) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
	res, err := v.fn(db, data)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return []weave.Model{weave.Pair(data, raw)}, nil
}

// DecodeRequest unmarshals a JSON view request. An empty request leaves dest
// untouched.
func DecodeRequest(raw []byte, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrInput, "request: %s", err)
	}
	return nil
}
