package app

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
)

// ResultSet is the encoding of both halves of a query response. The key
// set and the value set of one response have the same length and entries
// at the same index belong together.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

func (r *ResultSet) Marshal() ([]byte, error) {
	return codec.Marshal(r)
}

// Unmarshal accepts an empty input as an empty set.
func (r *ResultSet) Unmarshal(raw []byte) error {
	if len(raw) == 0 {
		r.Results = nil
		return nil
	}
	return codec.Unmarshal(raw, r)
}

// ResultsFromKeys collects the keys of models.
func ResultsFromKeys(models []weave.Model) *ResultSet {
	return collect(models, func(m weave.Model) []byte { return m.Key })
}

// ResultsFromValues collects the values of models.
func ResultsFromValues(models []weave.Model) *ResultSet {
	return collect(models, func(m weave.Model) []byte { return m.Value })
}

func collect(models []weave.Model, part func(weave.Model) []byte) *ResultSet {
	out := make([][]byte, 0, len(models))
	for _, m := range models {
		out = append(out, part(m))
	}
	return &ResultSet{Results: out}
}

// JoinResults pairs a key set with its value set.
func JoinResults(keys, values *ResultSet) ([]weave.Model, error) {
	if n, m := len(keys.Results), len(values.Results); n != m {
		return nil, errors.Wrapf(errors.ErrState, "%d keys for %d values", n, m)
	}
	models := make([]weave.Model, 0, len(keys.Results))
	for i, k := range keys.Results {
		models = append(models, weave.Pair(k, values.Results[i]))
	}
	return models, nil
}

// UnmarshalOneResult decodes the first entry of an encoded ResultSet into
// dst. An empty set leaves dst untouched.
func UnmarshalOneResult(raw []byte, dst weave.Persistent) error {
	var set ResultSet
	if err := set.Unmarshal(raw); err != nil {
		return err
	}
	if len(set.Results) == 0 {
		return nil
	}
	return dst.Unmarshal(set.Results[0])
}
