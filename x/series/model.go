package series

import (
	"strconv"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/x/fee"
)

const (
	maxTitleLength = 256
	maxTextLength  = 4096
	maxHashLength  = 64
)

// Template describes what every edition of a series looks like.
type Template struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Media         string `json:"media,omitempty"`
	MediaHash     []byte `json:"media_hash,omitempty"`
	Reference     string `json:"reference,omitempty"`
	ReferenceHash []byte `json:"reference_hash,omitempty"`
	// Copies is the maximum number of editions. It is meaningful only if
	// Limited is set.
	Copies  uint64 `json:"copies,omitempty"`
	Limited bool   `json:"limited"`
	Extra   string `json:"extra,omitempty"`
}

func (t *Template) Validate() error {
	var errs error
	switch n := len(t.Title); {
	case n == 0:
		errs = errors.AppendField(errs, "Title", errors.ErrEmpty)
	case n > maxTitleLength:
		errs = errors.AppendField(errs, "Title", errors.Wrap(errors.ErrInput, "too long"))
	}
	if len(t.Description) > maxTextLength {
		errs = errors.AppendField(errs, "Description", errors.Wrap(errors.ErrInput, "too long"))
	}
	if len(t.Extra) > maxTextLength {
		errs = errors.AppendField(errs, "Extra", errors.Wrap(errors.ErrInput, "too long"))
	}
	if len(t.MediaHash) > maxHashLength {
		errs = errors.AppendField(errs, "MediaHash", errors.Wrap(errors.ErrInput, "too long"))
	}
	if len(t.ReferenceHash) > maxHashLength {
		errs = errors.AppendField(errs, "ReferenceHash", errors.Wrap(errors.ErrInput, "too long"))
	}
	if !t.Limited && t.Copies != 0 {
		errs = errors.AppendField(errs, "Copies", errors.Wrap(errors.ErrState, "copies of an unlimited series"))
	}
	return errs
}

// Royalty is the share of future sales that a party receives.
type Royalty struct {
	Party       weave.Address `json:"party"`
	BasisPoints uint32        `json:"basis_points"`
}

// Royalties is the royalty table of a series.
type Royalties []Royalty

// Validate checks the entries of the table and that the total is not more
// than everything. Configured bounds are checked by the registry.
func (r Royalties) Validate() error {
	var (
		errs  error
		total uint64
	)
	for i, e := range r {
		if err := e.Party.Validate(); err != nil {
			errs = errors.Append(errs, errors.Wrapf(err, "royalty %d party", i))
		}
		if e.BasisPoints == 0 {
			errs = errors.Append(errs, errors.Wrapf(errors.ErrInput, "royalty %d is zero", i))
		}
		for _, prev := range r[:i] {
			if prev.Party.Equals(e.Party) {
				errs = errors.Append(errs, errors.Wrapf(errors.ErrDuplicate, "royalty %d party", i))
			}
		}
		total += uint64(e.BasisPoints)
	}
	if total > fee.Denominator {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrInput, "royalties sum to %d", total))
	}
	return errs
}

// Total returns the sum of all shares.
func (r Royalties) Total() uint64 {
	var total uint64
	for _, e := range r {
		total += uint64(e.BasisPoints)
	}
	return total
}

// Series is the record of a series.
type Series struct {
	Metadata  *weave.Metadata `json:"metadata"`
	ID        string          `json:"series_id"`
	Creator   weave.Address   `json:"creator"`
	Template  Template        `json:"template"`
	ForSale   bool            `json:"for_sale"`
	Price     coin.Amount     `json:"price"`
	Mintable  bool            `json:"is_mintable"`
	Royalties Royalties       `json:"royalties"`
}

var _ orm.Model = (*Series)(nil)

func (s *Series) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", s.Metadata.Validate())
	if n, err := strconv.ParseUint(s.ID, 10, 64); err != nil || n == 0 {
		errs = errors.AppendField(errs, "ID", errors.Wrapf(errors.ErrInput, "malformed series id %q", s.ID))
	}
	errs = errors.AppendField(errs, "Creator", s.Creator.Validate())
	errs = errors.AppendField(errs, "Template", s.Template.Validate())
	errs = errors.AppendField(errs, "Royalties", s.Royalties.Validate())
	if !s.ForSale && !s.Price.IsZero() {
		errs = errors.AppendField(errs, "Price", errors.Wrap(errors.ErrState, "price of a series not for sale"))
	}
	return errs
}

func (s *Series) Marshal() ([]byte, error) {
	return codec.Marshal(s)
}

func (s *Series) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, s)
}

// FeeSnapshot is the platform fee captured for a series.
type FeeSnapshot struct {
	Metadata *weave.Metadata `json:"metadata"`
	Fee      uint32          `json:"fee"`
}

var _ orm.Model = (*FeeSnapshot)(nil)

func (f *FeeSnapshot) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", f.Metadata.Validate())
	if f.Fee >= fee.MaxFee {
		errs = errors.AppendField(errs, "Fee", errors.Wrapf(errors.ErrInput, "must be below %d", fee.MaxFee))
	}
	return errs
}

func (f *FeeSnapshot) Marshal() ([]byte, error) {
	return codec.Marshal(f)
}

func (f *FeeSnapshot) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, f)
}
