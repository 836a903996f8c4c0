package fee

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/gconf"
	"github.com/iov-one/weave-editions/orm"
)

// GenesisSchedule is the "fee" section of the genesis file.
type GenesisSchedule struct {
	CurrentFee uint32 `json:"current_fee"`
}

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis stores the initial fee and the fee configuration. Both are
// optional.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, kv weave.KVStore) error {
	var conf Configuration
	switch err := gconf.InitConfig(kv, opts, packageName, &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
	default:
		return errors.Wrap(err, "init config")
	}

	var gs GenesisSchedule
	if err := opts.ReadOptions(packageName, &gs); err != nil {
		return errors.Wrap(err, "cannot load fee schedule")
	}
	s := Schedule{
		Metadata:   &weave.Metadata{Schema: 1},
		CurrentFee: gs.CurrentFee,
	}
	if err := s.Validate(); err != nil {
		return errors.Wrap(err, "fee schedule")
	}
	if _, err := orm.NewModelBucket(BucketName, &Schedule{}).Put(kv, scheduleKey, &s); err != nil {
		return errors.Wrap(err, "cannot store fee schedule")
	}
	return nil
}
