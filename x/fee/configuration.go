package fee

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/gconf"
)

const packageName = "fee"

// Configuration of the fee extension.
type Configuration struct {
	Metadata *weave.Metadata `json:"metadata"`
	// Owner is the registry owner. Only the owner can change the fee.
	Owner weave.Address `json:"owner"`
	// Treasury receives the platform share of every sale.
	Treasury weave.Address `json:"treasury"`
	// MaxPrice is the exclusive price ceiling of a series.
	MaxPrice coin.Amount `json:"max_price"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	// Owner and treasury are optional.
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if len(c.Treasury) != 0 {
		errs = errors.AppendField(errs, "Treasury", c.Treasury.Validate())
	}
	return errs
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, c)
}

func (c *Configuration) GetOwner() weave.Address {
	return c.Owner
}

// LoadConfiguration returns the current configuration. The price ceiling
// falls back to DefaultMaxPrice when it is not set.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		conf.Metadata = &weave.Metadata{Schema: 1}
	default:
		return nil, err
	}
	if conf.MaxPrice.IsZero() {
		conf.MaxPrice = DefaultMaxPrice
	}
	return &conf, nil
}
