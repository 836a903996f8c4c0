/*
Package coin provides Amount, the unsigned 256 bit value used for prices,
payouts, balances and deposits.

Amount is a fixed size big endian array so that it can be embedded in any
persisted model as is. All arithmetic is delegated to uint256.Int and is
checked for overflow.
*/
package coin

import (
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/iov-one/weave-editions/errors"
)

// Amount is a non negative integer value with 256 bit precision.
type Amount [32]byte

// NewAmount returns an amount representing given value.
func NewAmount(v uint64) Amount {
	return FromInt(uint256.NewInt(v))
}

// FromInt returns an amount representing given integer.
func FromInt(i *uint256.Int) Amount {
	return Amount(i.Bytes32())
}

// ParseAmount parses a decimal representation of an amount.
func ParseAmount(s string) (Amount, error) {
	i, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "cannot parse %q: %s", s, err)
	}
	return FromInt(i), nil
}

// MustParseAmount is like ParseAmount but panics on error. Use it only for
// constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Int returns a new uint256.Int holding this amount.
func (a Amount) Int() *uint256.Int {
	return new(uint256.Int).SetBytes32(a[:])
}

// IsZero returns true if this amount is equal to zero.
func (a Amount) IsZero() bool {
	return a == Amount{}
}

// Compare returns 0 if both amounts are equal, -1 if a is less than b and 1
// if a is greater than b.
func (a Amount) Compare(b Amount) int {
	return a.Int().Cmp(b.Int())
}

// Equals returns true if both amounts represent the same value.
func (a Amount) Equals(b Amount) bool {
	return a == b
}

// Add returns the sum of both amounts.
func (a Amount) Add(b Amount) (Amount, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a.Int(), b.Int())
	if overflow {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", a, b)
	}
	return FromInt(sum), nil
}

// Subtract returns a - b. It fails if the result would be negative.
func (a Amount) Subtract(b Amount) (Amount, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a.Int(), b.Int())
	if underflow {
		return Amount{}, errors.Wrapf(errors.ErrInsufficientAmount, "%s - %s", a, b)
	}
	return FromInt(diff), nil
}

// MulUint64 returns the amount multiplied by given factor.
func (a Amount) MulUint64(n uint64) (Amount, error) {
	res, overflow := new(uint256.Int).MulOverflow(a.Int(), uint256.NewInt(n))
	if overflow {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s * %d", a, n)
	}
	return FromInt(res), nil
}

// MulFrac returns floor(a * numerator / denominator). The intermediate
// product is computed with 512 bit precision so it never overflows.
func (a Amount) MulFrac(numerator, denominator uint64) (Amount, error) {
	if denominator == 0 {
		return Amount{}, errors.Wrap(errors.ErrInput, "zero denominator")
	}
	res, overflow := new(uint256.Int).MulDivOverflow(a.Int(), uint256.NewInt(numerator), uint256.NewInt(denominator))
	if overflow {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s * %d / %d", a, numerator, denominator)
	}
	return FromInt(res), nil
}

// String returns the decimal representation of the amount.
func (a Amount) String() string {
	return a.Int().Dec()
}

// MarshalJSON encodes the amount as a decimal string, because JSON numbers
// cannot hold 256 bit values.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both a decimal string and a JSON number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrAmount, "amount must be a decimal string")
		}
		s = n.String()
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Sum returns the sum of all given amounts.
func Sum(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}
