package series

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/gconf"
)

const packageName = "series"

// Upper royalty table bounds. A configuration can only tighten them.
const (
	maxRoyalties  = 10
	maxRoyaltyBps = 5000
)

// Configuration holds the royalty table bounds.
type Configuration struct {
	Metadata *weave.Metadata `json:"metadata"`
	Owner    weave.Address   `json:"owner"`
	// MaxRoyalties is the maximum number of royalty table entries.
	MaxRoyalties uint32 `json:"max_royalties"`
	// MaxRoyaltyBps is the maximum sum of a royalty table.
	MaxRoyaltyBps uint32 `json:"max_royalty_bps"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if c.MaxRoyalties > maxRoyalties {
		errs = errors.AppendField(errs, "MaxRoyalties", errors.Wrapf(errors.ErrInput, "must not exceed %d", maxRoyalties))
	}
	if c.MaxRoyaltyBps > maxRoyaltyBps {
		errs = errors.AppendField(errs, "MaxRoyaltyBps", errors.Wrapf(errors.ErrInput, "must not exceed %d", maxRoyaltyBps))
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

// LoadConfiguration returns the configuration with defaults applied to the
// fields that are not set.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		conf.Metadata = &weave.Metadata{Schema: 1}
	default:
		return nil, err
	}
	if conf.MaxRoyalties == 0 || conf.MaxRoyalties > maxRoyalties {
		conf.MaxRoyalties = maxRoyalties
	}
	if conf.MaxRoyaltyBps == 0 || conf.MaxRoyaltyBps > maxRoyaltyBps {
		conf.MaxRoyaltyBps = maxRoyaltyBps
	}
	return &conf, nil
}

// checkRoyalties applies the configured bounds to a royalty table.
func (c *Configuration) checkRoyalties(r Royalties) error {
	if len(r) > int(c.MaxRoyalties) {
		return errors.Wrapf(errors.ErrLimit, "at most %d royalties allowed", c.MaxRoyalties)
	}
	if total := r.Total(); total > uint64(c.MaxRoyaltyBps) {
		return errors.Wrapf(errors.ErrInput, "royalties sum to %d, at most %d allowed", total, c.MaxRoyaltyBps)
	}
	return nil
}
