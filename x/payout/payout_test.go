package payout

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/store"
	"github.com/iov-one/weave-editions/weavetest"
	"github.com/iov-one/weave-editions/weavetest/assert"
	"github.com/iov-one/weave-editions/x/edition"
	"github.com/iov-one/weave-editions/x/fee"
	"github.com/iov-one/weave-editions/x/series"
)

func TestCompute(t *testing.T) {
	a := weavetest.NewCondition().Address()
	b := weavetest.NewCondition().Address()
	c := weavetest.NewCondition().Address()

	cases := map[string]struct {
		royalties series.Royalties
		owner     weave.Address
		amount    uint64
		max       uint32
		wantErr   *errors.Error
		want      map[string]uint64
	}{
		"single royalty": {
			royalties: series.Royalties{{Party: a, BasisPoints: 1000}},
			owner:     b,
			amount:    1000000,
			max:       10,
			want:      map[string]uint64{a.String(): 100000, b.String(): 900000},
		},
		"owner holds a royalty": {
			royalties: series.Royalties{{Party: a, BasisPoints: 1000}, {Party: b, BasisPoints: 500}},
			owner:     b,
			amount:    1000,
			max:       10,
			want:      map[string]uint64{a.String(): 100, b.String(): 900},
		},
		"remainder goes to the owner": {
			royalties: series.Royalties{{Party: a, BasisPoints: 3333}, {Party: b, BasisPoints: 3333}},
			owner:     c,
			amount:    10,
			max:       2,
			want:      map[string]uint64{a.String(): 3, b.String(): 3, c.String(): 4},
		},
		"no royalties": {
			owner:  c,
			amount: 77,
			max:    1,
			want:   map[string]uint64{c.String(): 77},
		},
		"too many receivers": {
			royalties: series.Royalties{{Party: a, BasisPoints: 1}, {Party: b, BasisPoints: 1}},
			owner:     c,
			amount:    10,
			max:       1,
			wantErr:   errors.ErrLimit,
		},
		"royalties above everything": {
			royalties: series.Royalties{{Party: a, BasisPoints: 6000}, {Party: b, BasisPoints: 4001}},
			owner:     c,
			amount:    10,
			max:       5,
			wantErr:   errors.ErrOverflow,
		},
		"max receivers missing": {
			owner:   c,
			amount:  10,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p, err := Compute(tc.royalties, tc.owner, coin.NewAmount(tc.amount), tc.max)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			got := make(map[string]uint64)
			for _, s := range p {
				got[s.Party.String()] = s.Amount.Int().Uint64()
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.owner, p[len(p)-1].Party)
		})
	}
}

func TestComputeSumsToAmount(t *testing.T) {
	owner := weavetest.NewCondition().Address()
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < 500; i++ {
		var (
			royalties series.Royalties
			left      = 5000
		)
		for n := rnd.Intn(11); n > 0 && left > 0; n-- {
			bps := 1 + rnd.Intn(left)
			left -= bps
			royalties = append(royalties, series.Royalty{
				Party:       weavetest.NewCondition().Address(),
				BasisPoints: uint32(bps),
			})
		}
		amount := coin.NewAmount(rnd.Uint64())

		p, err := Compute(royalties, owner, amount, 10)
		assert.Nil(t, err)
		total, err := p.Total()
		assert.Nil(t, err)
		if !total.Equals(amount) {
			t.Fatalf("royalties %v: shares sum to %s, want %s", royalties, total, amount)
		}
	}
}

func TestEngine(t *testing.T) {
	now := time.Now()
	ctx := weave.WithBlockTime(context.Background(), now)
	db := store.MemStore()
	creator := weavetest.NewCondition().Address()
	buyer := weavetest.NewCondition().Address()

	reg := series.NewRegistry(edition.NewLedger(nil), fee.NewController(nil), nil)
	s, err := reg.Create(ctx, db, creator, series.NewSeries{
		Template:  series.Template{Title: "a"},
		Royalties: series.Royalties{{Party: creator, BasisPoints: 1000}},
	})
	assert.Nil(t, err)
	_, err = reg.MintEdition(ctx, db, s.ID, buyer)
	assert.Nil(t, err)

	e := NewEngine(reg)
	p, err := e.Payout(db, "1:1", coin.NewAmount(500), 1)
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(50), p.Get(creator))
	assert.Equal(t, coin.NewAmount(450), p.Get(buyer))

	_, err = e.Payout(db, "1:2", coin.NewAmount(500), 1)
	assert.IsErr(t, errors.ErrNotFound, err)

	qr := weave.NewQueryRouter()
	RegisterQuery(qr)
	req, err := json.Marshal(PreviewRequest{EditionID: "1:1", Amount: coin.NewAmount(500), MaxRecipients: 1})
	assert.Nil(t, err)
	models, err := qr.Handler("/payout/preview").Query(db, "", req)
	assert.Nil(t, err)
	var got Payout
	assert.Nil(t, json.Unmarshal(models[0].Value, &got))
	assert.Equal(t, p, got)
}
