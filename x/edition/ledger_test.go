package edition

import (
	"context"
	"testing"
	"time"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/store"
	"github.com/iov-one/weave-editions/weavetest"
	"github.com/iov-one/weave-editions/x/events"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseID(t *testing.T) {
	cases := map[string]struct {
		id         string
		wantSeries string
		wantN      uint64
		wantErr    *errors.Error
	}{
		"simple":          {id: "1:2", wantSeries: "1", wantN: 2},
		"large":           {id: "42:1000", wantSeries: "42", wantN: 1000},
		"no delimiter":    {id: "12", wantErr: errors.ErrInput},
		"no series":       {id: ":1", wantErr: errors.ErrInput},
		"no number":       {id: "1:", wantErr: errors.ErrInput},
		"zero number":     {id: "1:0", wantErr: errors.ErrInput},
		"not a number":    {id: "1:x", wantErr: errors.ErrInput},
		"negative number": {id: "1:-1", wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			series, n, err := ParseID(tc.id)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if series != tc.wantSeries || n != tc.wantN {
				t.Fatalf("got %q %d", series, n)
			}
			if tc.wantErr == nil && FormatID(series, n) != tc.id {
				t.Fatalf("format mismatch: %s", FormatID(series, n))
			}
		})
	}
}

func TestLedger(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()
	carol := weavetest.NewCondition().Address()
	now := time.Now().Round(time.Second)
	ctx := weave.WithBlockTime(context.Background(), now)

	Convey("Given an edition minted to alice", t, func() {
		db := store.MemStore()
		outbox := events.NewOutbox()
		l := NewLedger(outbox)

		e, err := l.Mint(ctx, db, "1:1", alice)
		So(err, ShouldBeNil)
		So(e.IssuedAt, ShouldEqual, weave.AsUnixTime(now))

		Convey("it cannot be minted twice", func() {
			_, err := l.Mint(ctx, db, "1:1", bob)
			So(errors.ErrDuplicate.Is(err), ShouldBeTrue)
		})

		Convey("the owner can transfer it", func() {
			r, err := l.Transfer(ctx, db, alice, bob, "1:1", 0, "gift")
			So(err, ShouldBeNil)
			So(r.PriorOwner, ShouldResemble, alice)
			So(r.AuthorizedID, ShouldBeNil)

			owner, err := l.Owner(db, "1:1")
			So(err, ShouldBeNil)
			So(owner, ShouldResemble, bob)

			n, err := l.CountByOwner(db, alice)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
			n, err = l.CountByOwner(db, bob)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)

			evs, err := outbox.After(db, 0, 0)
			So(err, ShouldBeNil)
			So(evs, ShouldHaveLength, 1)
			var te TransferEvent
			So(evs[0].Event.Decode(&te), ShouldBeNil)
			So(te.Memo, ShouldEqual, "gift")
			So(te.EditionIDs, ShouldResemble, []string{"1:1"})
		})

		Convey("a stranger cannot transfer it", func() {
			_, err := l.Transfer(ctx, db, bob, carol, "1:1", 0, "")
			So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)
		})

		Convey("the owner cannot send it to itself", func() {
			_, err := l.Transfer(ctx, db, alice, alice, "1:1", 0, "")
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})

		Convey("approvals get increasing ids", func() {
			id, err := l.Approve(ctx, db, alice, "1:1", bob)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, 1)
			id, err = l.Approve(ctx, db, alice, "1:1", carol)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, 2)

			Convey("re-approving replaces the id", func() {
				id, err := l.Approve(ctx, db, alice, "1:1", bob)
				So(err, ShouldBeNil)
				So(id, ShouldEqual, 3)
				ok, err := l.IsApproved(db, "1:1", bob, 1)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				ok, err = l.IsApproved(db, "1:1", bob, 3)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})

			Convey("an approved party transfers with its approval id", func() {
				_, err := l.Transfer(ctx, db, bob, carol, "1:1", 2, "")
				So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)
				_, err = l.Transfer(ctx, db, bob, bob, "1:1", 0, "")
				So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)

				r, err := l.Transfer(ctx, db, bob, bob, "1:1", 1, "")
				So(err, ShouldBeNil)
				So(r.AuthorizedID, ShouldResemble, bob)
				So(r.PriorApprovals, ShouldHaveLength, 2)

				Convey("which clears all approvals", func() {
					ok, err := l.IsApproved(db, "1:1", carol, 0)
					So(err, ShouldBeNil)
					So(ok, ShouldBeFalse)
				})

				Convey("and can be restored", func() {
					So(l.Restore(ctx, db, r), ShouldBeNil)
					e, err := l.Get(db, "1:1")
					So(err, ShouldBeNil)
					So(e.Owner, ShouldResemble, alice)
					So(e.Approvals, ShouldResemble, r.PriorApprovals)

					Convey("counter is not rewound", func() {
						id, err := l.Approve(ctx, db, alice, "1:1", bob)
						So(err, ShouldBeNil)
						So(id, ShouldEqual, 3)
					})
				})

				Convey("unless it moved again", func() {
					_, err := l.Transfer(ctx, db, bob, carol, "1:1", 0, "")
					So(err, ShouldBeNil)
					So(errors.ErrState.Is(l.Restore(ctx, db, r)), ShouldBeTrue)
				})
			})

			Convey("revoke removes a single approval", func() {
				So(l.Revoke(ctx, db, alice, "1:1", bob), ShouldBeNil)
				So(errors.ErrNotFound.Is(l.Revoke(ctx, db, alice, "1:1", bob)), ShouldBeTrue)
				ok, err := l.IsApproved(db, "1:1", carol, 2)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})

			Convey("revoke all removes everything", func() {
				So(l.RevokeAll(ctx, db, alice, "1:1"), ShouldBeNil)
				e, err := l.Get(db, "1:1")
				So(err, ShouldBeNil)
				So(e.Approvals, ShouldBeEmpty)
			})

			Convey("only the owner manages approvals", func() {
				_, err := l.Approve(ctx, db, bob, "1:1", carol)
				So(errors.ErrUnauthorized.Is(err), ShouldBeTrue)
				So(errors.ErrUnauthorized.Is(l.RevokeAll(ctx, db, bob, "1:1")), ShouldBeTrue)
			})
		})

		Convey("the owner cannot approve itself", func() {
			_, err := l.Approve(ctx, db, alice, "1:1", alice)
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})

		Convey("burning removes it from every index", func() {
			_, err := l.Mint(ctx, db, "1:2", alice)
			So(err, ShouldBeNil)
			So(errors.ErrUnauthorized.Is(l.Burn(ctx, db, bob, "1:1")), ShouldBeTrue)
			So(l.Burn(ctx, db, alice, "1:1"), ShouldBeNil)

			_, err = l.Get(db, "1:1")
			So(errors.ErrNotFound.Is(err), ShouldBeTrue)
			n, err := l.Count(db)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			owned, err := l.ByOwner(db, alice, orm.PageRequest{})
			So(err, ShouldBeNil)
			So(owned, ShouldHaveLength, 1)
			So(owned[0].ID, ShouldEqual, "1:2")
		})
	})
}

func TestLedgerPagination(t *testing.T) {
	alice := weavetest.NewCondition().Address()
	bob := weavetest.NewCondition().Address()
	ctx := weave.WithBlockTime(context.Background(), time.Now())
	db := store.MemStore()
	l := NewLedger(nil)

	for _, id := range []string{"1:1", "1:2", "2:1", "2:2"} {
		if _, err := l.Mint(ctx, db, id, alice); err != nil {
			t.Fatalf("mint %s: %s", id, err)
		}
	}
	limit := uint64(2)

	cases := map[string]struct {
		owner   weave.Address
		req     orm.PageRequest
		want    []string
		wantErr *errors.Error
	}{
		"all": {
			want: []string{"1:1", "1:2", "2:1", "2:2"},
		},
		"window": {
			req:  orm.PageRequest{FromIndex: 1, Limit: &limit},
			want: []string{"1:2", "2:1"},
		},
		"out of bounds": {
			req:     orm.PageRequest{FromIndex: 4},
			wantErr: errors.ErrLimit,
		},
		"owner without editions": {
			owner: bob,
			want:  nil,
		},
		"owner": {
			owner: alice,
			req:   orm.PageRequest{FromIndex: 3},
			want:  []string{"2:2"},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				got []*Edition
				err error
			)
			if tc.owner != nil {
				got, err = l.ByOwner(db, tc.owner, tc.req)
			} else {
				got, err = l.All(db, tc.req)
			}
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			var ids []string
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			if len(ids) != len(tc.want) {
				t.Fatalf("want %v, got %v", tc.want, ids)
			}
			for i := range ids {
				if ids[i] != tc.want[i] {
					t.Fatalf("want %v, got %v", tc.want, ids)
				}
			}
		})
	}
}
