package coin

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/weavetest/assert"
)

func TestAmountArithmetic(t *testing.T) {
	a := NewAmount(1000)
	b := NewAmount(250)

	sum, err := a.Add(b)
	assert.Nil(t, err)
	assert.Equal(t, NewAmount(1250), sum)

	diff, err := a.Subtract(b)
	assert.Nil(t, err)
	assert.Equal(t, NewAmount(750), diff)

	_, err = b.Subtract(a)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	prod, err := b.MulUint64(4)
	assert.Nil(t, err)
	assert.Equal(t, a, prod)

	assert.Equal(t, 1, a.Compare(b))
	assert.Equal(t, -1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(NewAmount(1000)))
}

func TestAmountOverflow(t *testing.T) {
	max := MustParseAmount("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	_, err := max.Add(NewAmount(1))
	assert.IsErr(t, errors.ErrOverflow, err)

	_, err = max.MulUint64(2)
	assert.IsErr(t, errors.ErrOverflow, err)

	// The intermediate product of MulFrac is wider than 256 bits.
	half, err := max.MulFrac(5000, 10000)
	assert.Nil(t, err)
	assert.Equal(t, "57896044618658097711785492504343953926634992332820282019728792003956564819967", half.String())
}

func TestMulFrac(t *testing.T) {
	cases := map[string]struct {
		amount  Amount
		num     uint64
		den     uint64
		want    Amount
		wantErr *errors.Error
	}{
		"ten percent": {
			amount: NewAmount(1000000),
			num:    1000,
			den:    10000,
			want:   NewAmount(100000),
		},
		"rounds down": {
			amount: NewAmount(999),
			num:    333,
			den:    10000,
			want:   NewAmount(33),
		},
		"zero denominator": {
			amount:  NewAmount(1),
			num:     1,
			den:     0,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.amount.MulFrac(tc.num, tc.den)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestAmountJSON(t *testing.T) {
	price := MustParseAmount("1000000000000000000000000000000000")
	raw, err := json.Marshal(price)
	assert.Nil(t, err)
	assert.Equal(t, `"1000000000000000000000000000000000"`, string(raw))

	var got Amount
	assert.Nil(t, json.Unmarshal(raw, &got))
	assert.Equal(t, price, got)

	assert.Nil(t, json.Unmarshal([]byte(`42`), &got))
	assert.Equal(t, NewAmount(42), got)

	err = json.Unmarshal([]byte(`"-1"`), &got)
	assert.IsErr(t, errors.ErrAmount, err)
}

func TestSum(t *testing.T) {
	total, err := Sum(NewAmount(1), NewAmount(2), NewAmount(3))
	assert.Nil(t, err)
	assert.Equal(t, NewAmount(6), total)

	zero, err := Sum()
	assert.Nil(t, err)
	assert.Equal(t, true, zero.IsZero())
}
