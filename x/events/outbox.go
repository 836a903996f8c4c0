package events

import (
	"encoding/binary"
	"encoding/json"

	"github.com/google/uuid"
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
)

const bucketName = "evt"

// namespace of all event identifiers. Identifiers are derived from the chain
// ID and the sequence, so every node computes the same value.
var namespace = uuid.MustParse("5b4f6a0e-2d4c-4f0e-9a53-7f6f0c1f2a11")

// Outbox appends events to the log kept in the application state.
type Outbox struct {
	bucket orm.ModelBucket
	seq    orm.Sequence
}

// NewOutbox returns an outbox writing to the default event bucket.
func NewOutbox() *Outbox {
	return &Outbox{
		bucket: orm.NewModelBucket(bucketName, &Event{}),
		seq:    orm.NewSequence(bucketName, "id"),
	}
}

// Emit serializes data as the payload of a new event of the given kind and
// appends it to the log.
func (o *Outbox) Emit(ctx weave.Context, db weave.KVStore, kind string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "marshal %s payload: %s", kind, err)
	}
	payload, err := compress(raw)
	if err != nil {
		return errors.Wrap(err, "compress payload")
	}

	n, err := o.seq.NextInt(db)
	if err != nil {
		return errors.Wrap(err, "event sequence")
	}
	key := orm.EncodeSequence(n)

	height, _ := weave.GetHeight(ctx)
	var now weave.UnixTime
	if t, err := weave.BlockTime(ctx); err == nil {
		now = weave.AsUnixTime(t)
	}

	name := make([]byte, 0, 64)
	name = append(name, weave.GetChainID(ctx)...)
	name = append(name, '/')
	name = binary.BigEndian.AppendUint64(name, n)

	e := Event{
		Metadata: &weave.Metadata{Schema: 1},
		ID:       uuid.NewSHA1(namespace, name).String(),
		Kind:     kind,
		Height:   height,
		Time:     now,
		Payload:  payload,
	}
	if _, err := o.bucket.Put(db, key, &e); err != nil {
		return errors.Wrap(err, "store event")
	}
	weave.GetLogger(ctx).Debug("event emitted", "kind", kind, "id", e.ID, "seq", n)
	return nil
}

// After returns up to limit events with a sequence greater than cursor, in
// log order. A limit of zero returns all of them.
func (o *Outbox) After(db weave.ReadOnlyKVStore, cursor uint64, limit int) ([]Record, error) {
	prefix := []byte(bucketName + ":")
	start := append(append([]byte(nil), prefix...), orm.EncodeSequence(cursor+1)...)
	end := append(append([]byte(nil), prefix[:len(prefix)-1]...), ':'+1)

	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	defer it.Close()

	var res []Record
	for it.Valid() {
		if limit > 0 && len(res) == limit {
			break
		}
		seq, err := orm.DecodeSequence(it.Key()[len(prefix):])
		if err != nil {
			return nil, errors.Wrap(err, "event key")
		}
		var e Event
		if err := e.Unmarshal(it.Value()); err != nil {
			return nil, errors.Wrap(err, "event")
		}
		res = append(res, Record{Seq: seq, Event: e})
		if err := it.Next(); err != nil {
			return nil, errors.Wrap(err, "iterator")
		}
	}
	return res, nil
}

// RegisterQuery exposes the event log under "/events".
func (o *Outbox) RegisterQuery(qr weave.QueryRouter) {
	o.bucket.Register("events", qr)
}
