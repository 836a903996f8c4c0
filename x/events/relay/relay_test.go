package relay

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/store"
	"github.com/iov-one/weave-editions/weavetest/assert"
	"github.com/iov-one/weave-editions/x/events"
	"github.com/iov-one/weave-editions/x/events/relay/mocks"
)

func records(seqs ...uint64) []events.Record {
	var rs []events.Record
	for _, s := range seqs {
		rs = append(rs, events.Record{
			Seq:   s,
			Event: events.Event{Metadata: &weave.Metadata{Schema: 1}, ID: string(rune('a' + s)), Kind: events.KindTransfer},
		})
	}
	return rs
}

func TestFlushAdvancesCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockSource(ctrl)
	sender := mocks.NewMockSender(ctrl)

	gomock.InOrder(
		source.EXPECT().After(uint64(0), 10).Return(records(1, 2, 3), nil),
		source.EXPECT().After(uint64(3), 10).Return(nil, nil),
	)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	r := New(Config{BatchSize: 10, Workers: 2, Source: source, Sender: sender})
	defer r.Close()

	n, err := r.Flush(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, uint64(3), r.Cursor())

	n, err = r.Flush(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, uint64(3), r.Cursor())
}

func TestFlushStopsAtFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockSource(ctrl)
	sender := mocks.NewMockSender(ctrl)

	source.EXPECT().After(uint64(4), 5).Return(records(5, 6, 7), nil)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e *events.Event) error {
			if e.ID == string(rune('a'+6)) {
				return errors.Wrap(errors.ErrState, "consumer down")
			}
			return nil
		}).Times(3)

	r := New(Config{BatchSize: 5, Cursor: 4, Source: source, Sender: sender})
	defer r.Close()

	n, err := r.Flush(context.Background())
	if !errors.ErrState.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	assert.Equal(t, 1, n)
	// Event 7 was sent but the cursor cannot pass the failed event 6.
	assert.Equal(t, uint64(5), r.Cursor())
}

func TestFlushSourceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockSource(ctrl)
	source.EXPECT().After(uint64(0), 100).Return(nil, errors.ErrDatabase)

	r := New(Config{Source: source, Sender: mocks.NewMockSender(ctrl)})
	defer r.Close()

	_, err := r.Flush(context.Background())
	if !errors.ErrDatabase.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	assert.Equal(t, uint64(0), r.Cursor())
}

func TestStoreSource(t *testing.T) {
	db := store.MemStore()
	ctx := weave.WithHeight(context.Background(), 3)

	outbox := events.NewOutbox()
	for i := 0; i < 3; i++ {
		if err := outbox.Emit(ctx, db, events.KindBurn, map[string]int{"n": i}); err != nil {
			t.Fatalf("emit: %s", err)
		}
	}

	got, err := NewStoreSource(db).After(1, 10)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(got))
	assert.Equal(t, uint64(2), got[0].Seq)
	assert.Equal(t, uint64(3), got[1].Seq)
}
