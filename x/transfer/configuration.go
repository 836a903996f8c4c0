package transfer

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/gconf"
)

const packageName = "transfer"

// Configuration of the transfer protocol.
type Configuration struct {
	Metadata *weave.Metadata `json:"metadata"`
	Owner    weave.Address   `json:"owner"`
	// HookOpLimit bounds the number of store operations a receiver hook
	// may perform. Zero means no bound.
	HookOpLimit uint64 `json:"hook_op_limit"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
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

// LoadConfiguration returns the configuration. Without one, hooks are not
// bounded.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		conf.Metadata = &weave.Metadata{Schema: 1}
	default:
		return nil, err
	}
	return &conf, nil
}
