package series

import (
	"context"
	"testing"
	"time"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/gconf"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/store"
	"github.com/iov-one/weave-editions/weavetest"
	"github.com/iov-one/weave-editions/weavetest/assert"
	"github.com/iov-one/weave-editions/x/edition"
	"github.com/iov-one/weave-editions/x/events"
	"github.com/iov-one/weave-editions/x/fee"
)

type fixture struct {
	ctx    weave.Context
	db     weave.CacheableKVStore
	outbox *events.Outbox
	fees   fee.ScheduleController
	reg    *Registry
}

func newFixture(t testing.TB, currentFee uint32) *fixture {
	t.Helper()
	now := time.Now().Round(time.Second)
	f := &fixture{
		ctx:    weave.WithBlockTime(context.Background(), now),
		db:     store.MemStore(),
		outbox: events.NewOutbox(),
	}
	f.fees = fee.NewController(nil)
	_, err := f.fees.Reschedule(f.ctx, f.db, currentFee, 0)
	assert.Nil(t, err)
	f.reg = NewRegistry(edition.NewLedger(f.outbox), f.fees, f.outbox)
	return f
}

func (f *fixture) create(t testing.TB, creator weave.Address, copies uint64) *Series {
	t.Helper()
	s, err := f.reg.Create(f.ctx, f.db, creator, NewSeries{
		Template: Template{Title: "sunset", Media: "ipfs://sunset", Copies: copies},
	})
	assert.Nil(t, err)
	return s
}

func (f *fixture) kinds(t testing.TB) []string {
	t.Helper()
	recs, err := f.outbox.After(f.db, 0, 0)
	assert.Nil(t, err)
	kinds := make([]string, len(recs))
	for i, r := range recs {
		kinds[i] = r.Event.Kind
	}
	return kinds
}

func TestCreateSeries(t *testing.T) {
	creator := weavetest.NewCondition().Address()
	royalty := func(bps ...uint32) Royalties {
		var r Royalties
		for _, b := range bps {
			r = append(r, Royalty{Party: weavetest.NewCondition().Address(), BasisPoints: b})
		}
		return r
	}

	cases := map[string]struct {
		series  NewSeries
		wantErr *errors.Error
	}{
		"unlimited series": {
			series: NewSeries{Template: Template{Title: "a"}},
		},
		"priced series with royalties": {
			series: NewSeries{
				Template:  Template{Title: "a", Copies: 10},
				ForSale:   true,
				Price:     coin.NewAmount(1000),
				Royalties: royalty(1000, 4000),
			},
		},
		"royalties above half": {
			series:  NewSeries{Template: Template{Title: "a"}, Royalties: royalty(3000, 2001)},
			wantErr: errors.ErrInput,
		},
		"too many royalties": {
			series:  NewSeries{Template: Template{Title: "a"}, Royalties: royalty(1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)},
			wantErr: errors.ErrLimit,
		},
		"price at the ceiling": {
			series: NewSeries{
				Template: Template{Title: "a"},
				ForSale:  true,
				Price:    fee.DefaultMaxPrice,
			},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, 250)
			s, err := f.reg.Create(f.ctx, f.db, creator, tc.series)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			assert.Equal(t, "1", s.ID)
			assert.Equal(t, true, s.Mintable)
			assert.Equal(t, tc.series.Template.Copies > 0, s.Template.Limited)
			assert.Nil(t, s.Validate())

			snap, ok, err := f.reg.Fee(f.db, s.ID)
			assert.Nil(t, err)
			assert.Equal(t, true, ok)
			assert.Equal(t, uint32(250), snap)

			recs, err := f.outbox.After(f.db, 0, 0)
			assert.Nil(t, err)
			assert.Equal(t, 1, len(recs))
			var ev SeriesCreatedEvent
			assert.Nil(t, recs[0].Event.Decode(&ev))
			assert.Equal(t, uint32(250), ev.Fee)
			assert.Equal(t, creator, ev.Creator)
		})
	}
}

func TestSeriesIDsAreSequential(t *testing.T) {
	f := newFixture(t, 0)
	creator := weavetest.NewCondition().Address()
	for _, want := range []string{"1", "2", "3"} {
		s := f.create(t, creator, 0)
		assert.Equal(t, want, s.ID)
	}
	all, err := f.reg.List(f.db, orm.PageRequest{})
	assert.Nil(t, err)
	assert.Equal(t, 3, len(all))

	_, err = f.reg.List(f.db, orm.PageRequest{FromIndex: 3})
	assert.IsErr(t, errors.ErrLimit, err)
}

func TestMintUntilExhausted(t *testing.T) {
	f := newFixture(t, 0)
	creator := weavetest.NewCondition().Address()
	receiver := weavetest.NewCondition().Address()
	s := f.create(t, creator, 1)

	e, err := f.reg.MintEdition(f.ctx, f.db, s.ID, receiver)
	assert.Nil(t, err)
	assert.Equal(t, "1:1", e.ID)

	got, err := f.reg.Get(f.db, s.ID)
	assert.Nil(t, err)
	assert.Equal(t, false, got.Mintable)

	_, err = f.reg.MintEdition(f.ctx, f.db, s.ID, receiver)
	assert.IsErr(t, errors.ErrState, err)

	issued, err := f.reg.Issued(f.db, s.ID)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), issued)
	assert.Equal(t, []string{events.KindSeriesCreated, events.KindEditionMinted}, f.kinds(t))
}

func TestMintUnknownSeries(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.reg.MintEdition(f.ctx, f.db, "7", weavetest.NewCondition().Address())
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestBurnedNumbersAreNotReused(t *testing.T) {
	f := newFixture(t, 0)
	creator := weavetest.NewCondition().Address()
	s := f.create(t, creator, 0)

	_, err := f.reg.MintEdition(f.ctx, f.db, s.ID, creator)
	assert.Nil(t, err)
	assert.Nil(t, f.reg.Ledger().Burn(f.ctx, f.db, creator, "1:1"))

	e, err := f.reg.MintEdition(f.ctx, f.db, s.ID, creator)
	assert.Nil(t, err)
	assert.Equal(t, "1:2", e.ID)

	views, err := f.reg.Editions(f.db, s.ID, orm.PageRequest{})
	assert.Nil(t, err)
	assert.Equal(t, 1, len(views))
	assert.Equal(t, "1:2", views[0].ID)
}

func TestDecreaseCopies(t *testing.T) {
	creator := weavetest.NewCondition().Address()
	other := weavetest.NewCondition().Address()

	cases := map[string]struct {
		copies       uint64
		minted       int
		caller       weave.Address
		decrease     uint64
		wantErr      *errors.Error
		wantCopies   uint64
		wantMintable bool
	}{
		"decrease above issued": {
			copies:       10,
			minted:       2,
			caller:       creator,
			decrease:     5,
			wantCopies:   5,
			wantMintable: true,
		},
		"decrease to issued": {
			copies:       10,
			minted:       2,
			caller:       creator,
			decrease:     8,
			wantCopies:   2,
			wantMintable: false,
		},
		"decrease below issued": {
			copies:   10,
			minted:   2,
			caller:   creator,
			decrease: 9,
			wantErr:  errors.ErrState,
		},
		"decrease more than the limit": {
			copies:   3,
			caller:   creator,
			decrease: 4,
			wantErr:  errors.ErrInput,
		},
		"unlimited series": {
			caller:   creator,
			decrease: 1,
			wantErr:  errors.ErrState,
		},
		"not the creator": {
			copies:   10,
			caller:   other,
			decrease: 1,
			wantErr:  errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, 0)
			s := f.create(t, creator, tc.copies)
			for i := 0; i < tc.minted; i++ {
				_, err := f.reg.MintEdition(f.ctx, f.db, s.ID, creator)
				assert.Nil(t, err)
			}

			copies, err := f.reg.DecreaseCopies(f.ctx, f.db, tc.caller, s.ID, tc.decrease)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			assert.Equal(t, tc.wantCopies, copies)
			got, err := f.reg.Get(f.db, s.ID)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantCopies, got.Template.Copies)
			assert.Equal(t, tc.wantMintable, got.Mintable)
		})
	}
}

func TestSetNonMintable(t *testing.T) {
	f := newFixture(t, 0)
	creator := weavetest.NewCondition().Address()

	limited := f.create(t, creator, 5)
	err := f.reg.SetNonMintable(f.ctx, f.db, creator, limited.ID)
	assert.IsErr(t, errors.ErrState, err)

	open := f.create(t, creator, 0)
	err = f.reg.SetNonMintable(f.ctx, f.db, weavetest.NewCondition().Address(), open.ID)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Nil(t, f.reg.SetNonMintable(f.ctx, f.db, creator, open.ID))
	err = f.reg.SetNonMintable(f.ctx, f.db, creator, open.ID)
	assert.IsErr(t, errors.ErrState, err)

	_, err = f.reg.MintEdition(f.ctx, f.db, open.ID, creator)
	assert.IsErr(t, errors.ErrState, err)
}

func TestSetPriceSnapshotsFee(t *testing.T) {
	f := newFixture(t, 100)
	creator := weavetest.NewCondition().Address()
	s := f.create(t, creator, 0)

	_, err := f.fees.Reschedule(f.ctx, f.db, 300, 0)
	assert.Nil(t, err)
	snap, _, err := f.reg.Fee(f.db, s.ID)
	assert.Nil(t, err)
	assert.Equal(t, uint32(100), snap)

	got, err := f.reg.SetPrice(f.ctx, f.db, creator, s.ID, true, coin.NewAmount(500))
	assert.Nil(t, err)
	assert.Equal(t, coin.NewAmount(500), got.Price)
	snap, _, err = f.reg.Fee(f.db, s.ID)
	assert.Nil(t, err)
	assert.Equal(t, uint32(300), snap)

	got, err = f.reg.SetPrice(f.ctx, f.db, creator, s.ID, false, coin.Amount{})
	assert.Nil(t, err)
	assert.Equal(t, false, got.ForSale)
	assert.Nil(t, got.Validate())

	assert.Nil(t, f.reg.SetNonMintable(f.ctx, f.db, creator, s.ID))
	_, err = f.reg.SetPrice(f.ctx, f.db, creator, s.ID, true, coin.NewAmount(1))
	assert.IsErr(t, errors.ErrState, err)
}

func TestReadEditionComposesTemplate(t *testing.T) {
	f := newFixture(t, 0)
	creator := weavetest.NewCondition().Address()
	receiver := weavetest.NewCondition().Address()
	s := f.create(t, creator, 3)

	_, err := f.reg.MintEdition(f.ctx, f.db, s.ID, receiver)
	assert.Nil(t, err)

	v, err := f.reg.ReadEdition(f.db, "1:1")
	assert.Nil(t, err)
	assert.Equal(t, receiver, v.Owner)
	assert.Equal(t, uint64(1), v.Number)
	assert.Equal(t, s.Template, v.Template)

	// The template is read from the series, so a changed limit shows up on
	// editions minted before the change.
	_, err = f.reg.DecreaseCopies(f.ctx, f.db, creator, s.ID, 1)
	assert.Nil(t, err)
	v, err = f.reg.ReadEdition(f.db, "1:1")
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), v.Template.Copies)

	_, err = f.reg.ReadEdition(f.db, "1:2")
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestRoyaltyBoundsFromConfiguration(t *testing.T) {
	f := newFixture(t, 0)
	assert.Nil(t, gconf.Save(f.db, packageName, &Configuration{
		Metadata:      &weave.Metadata{Schema: 1},
		MaxRoyalties:  1,
		MaxRoyaltyBps: 100,
	}))
	creator := weavetest.NewCondition().Address()
	party := weavetest.NewCondition().Address()

	_, err := f.reg.Create(f.ctx, f.db, creator, NewSeries{
		Template:  Template{Title: "a"},
		Royalties: Royalties{{Party: party, BasisPoints: 101}},
	})
	assert.IsErr(t, errors.ErrInput, err)

	_, err = f.reg.Create(f.ctx, f.db, creator, NewSeries{
		Template:  Template{Title: "a"},
		Royalties: Royalties{{Party: party, BasisPoints: 100}},
	})
	assert.Nil(t, err)
}

func TestRoyaltyBoundsCannotBeLoosened(t *testing.T) {
	cases := map[string]struct {
		conf    Configuration
		wantErr *errors.Error
	}{
		"at the limits": {
			conf: Configuration{MaxRoyalties: 10, MaxRoyaltyBps: 5000},
		},
		"too many royalties": {
			conf:    Configuration{MaxRoyalties: 11, MaxRoyaltyBps: 5000},
			wantErr: errors.ErrInput,
		},
		"too many basis points": {
			conf:    Configuration{MaxRoyalties: 10, MaxRoyaltyBps: 5001},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			tc.conf.Metadata = &weave.Metadata{Schema: 1}
			err := gconf.Save(db, packageName, &tc.conf)
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
		})
	}
}

func TestLooseStoredRoyaltyBoundsAreCapped(t *testing.T) {
	f := newFixture(t, 0)
	raw, err := (&Configuration{
		Metadata:      &weave.Metadata{Schema: 1},
		MaxRoyalties:  20,
		MaxRoyaltyBps: 9000,
	}).Marshal()
	assert.Nil(t, err)
	assert.Nil(t, f.db.Set([]byte("_c:series"), raw))

	conf, err := LoadConfiguration(f.db)
	assert.Nil(t, err)
	assert.Equal(t, uint32(10), conf.MaxRoyalties)
	assert.Equal(t, uint32(5000), conf.MaxRoyaltyBps)

	royalties := make(Royalties, 12)
	for i := range royalties {
		royalties[i] = Royalty{Party: weavetest.NewCondition().Address(), BasisPoints: 700}
	}
	_, err = f.reg.Create(f.ctx, f.db, weavetest.NewCondition().Address(), NewSeries{
		Template:  Template{Title: "a"},
		Royalties: royalties,
	})
	assert.IsErr(t, errors.ErrLimit, err)
}
