package fee

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
)

const (
	// Denominator is the fee and royalty fraction unit.
	Denominator = 10000

	// MaxFee is the exclusive upper bound of the transaction fee.
	MaxFee = Denominator

	// BucketName is where the schedule singleton is stored.
	BucketName = "fee"
)

var scheduleKey = []byte("schedule")

// DefaultMaxPrice is the price ceiling used when none is configured.
var DefaultMaxPrice = coin.MustParseAmount("1000000000000000000000000000000000")

// Schedule holds the current fee and an optional staged future fee.
type Schedule struct {
	Metadata   *weave.Metadata `json:"metadata"`
	CurrentFee uint32          `json:"current_fee"`
	// HasNext is set when NextFee and ActivationTime describe a staged
	// change.
	HasNext        bool           `json:"has_next"`
	NextFee        uint32         `json:"next_fee,omitempty"`
	ActivationTime weave.UnixTime `json:"activation_time,omitempty"`
}

var _ orm.Model = (*Schedule)(nil)

func (s *Schedule) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", s.Metadata.Validate())
	if s.CurrentFee >= MaxFee {
		errs = errors.AppendField(errs, "CurrentFee", errors.Wrapf(errors.ErrInput, "must be below %d", MaxFee))
	}
	if s.HasNext {
		if s.NextFee >= MaxFee {
			errs = errors.AppendField(errs, "NextFee", errors.Wrapf(errors.ErrInput, "must be below %d", MaxFee))
		}
		if s.ActivationTime <= 0 {
			errs = errors.AppendField(errs, "ActivationTime", errors.Wrap(errors.ErrEmpty, "required for a staged fee"))
		}
	} else if s.NextFee != 0 || s.ActivationTime != 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrState, "stage values without a staged fee"))
	}
	return errs
}

func (s *Schedule) Marshal() ([]byte, error) {
	return codec.Marshal(s)
}

func (s *Schedule) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, s)
}

// advance collapses the stage into the current fee if it is due at now. It
// returns true if the schedule was changed.
func (s *Schedule) advance(now weave.UnixTime) bool {
	if !s.HasNext || now < s.ActivationTime {
		return false
	}
	s.CurrentFee = s.NextFee
	s.clearStage()
	return true
}

func (s *Schedule) clearStage() {
	s.HasNext = false
	s.NextFee = 0
	s.ActivationTime = 0
}

// PlatformFee returns the share of the price that the given fee takes.
func PlatformFee(price coin.Amount, fee uint32) (coin.Amount, error) {
	if fee >= MaxFee {
		return coin.Amount{}, errors.Wrapf(errors.ErrInput, "fee %d out of range", fee)
	}
	return price.MulFrac(uint64(fee), Denominator)
}
