package relay

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/x/events"
)

// Snapshotter is implemented by the application commit store.
type Snapshotter interface {
	CacheWrap() weave.KVCacheWrap
}

// StoreSource reads events from the committed state of an application store.
type StoreSource struct {
	db     Snapshotter
	outbox *events.Outbox
}

var _ Source = (*StoreSource)(nil)

// NewStoreSource returns a source reading the committed event log.
func NewStoreSource(db Snapshotter) *StoreSource {
	return &StoreSource{db: db, outbox: events.NewOutbox()}
}

// After implements Source.
func (s *StoreSource) After(cursor uint64, limit int) ([]events.Record, error) {
	// A cache wrap is the only read view of a commit store that can be
	// iterated. Nothing is ever written to it.
	view := s.db.CacheWrap()
	defer view.Discard()
	return s.outbox.After(view, cursor, limit)
}
