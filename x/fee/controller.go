package fee

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/x/events"
)

// Controller is the fee functionality other extensions depend on.
type Controller interface {
	// EffectiveFee returns the fee in force at the current block time. A
	// staged fee that became due is applied and persisted first, so every
	// caller that needs the authoritative value must use this method.
	EffectiveFee(ctx weave.Context, db weave.KVStore) (uint32, error)
}

// ScheduleController keeps the fee schedule singleton.
type ScheduleController struct {
	bucket orm.ModelBucket
	outbox *events.Outbox
}

var _ Controller = ScheduleController{}

// NewController returns a controller emitting fee changes to the given
// outbox.
func NewController(outbox *events.Outbox) ScheduleController {
	return ScheduleController{
		bucket: orm.NewModelBucket(BucketName, &Schedule{}),
		outbox: outbox,
	}
}

// Schedule returns the stored schedule as is. No stage is applied. A missing
// schedule is a zero fee.
func (c ScheduleController) Schedule(db weave.ReadOnlyKVStore) (*Schedule, error) {
	var s Schedule
	switch err := c.bucket.One(db, scheduleKey, &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		return &Schedule{Metadata: &weave.Metadata{Schema: 1}}, nil
	default:
		return nil, errors.Wrap(err, "load schedule")
	}
}

// CurrentFee returns the fee that a read at the given time would make
// effective, without persisting the activation.
func (c ScheduleController) CurrentFee(db weave.ReadOnlyKVStore, now weave.UnixTime) (uint32, error) {
	s, err := c.Schedule(db)
	if err != nil {
		return 0, err
	}
	s.advance(now)
	return s.CurrentFee, nil
}

func (c ScheduleController) EffectiveFee(ctx weave.Context, db weave.KVStore) (uint32, error) {
	s, err := c.advance(ctx, db)
	if err != nil {
		return 0, err
	}
	return s.CurrentFee, nil
}

// advance loads the schedule and applies the stage if it is due.
func (c ScheduleController) advance(ctx weave.Context, db weave.KVStore) (*Schedule, error) {
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	s, err := c.Schedule(db)
	if err != nil {
		return nil, err
	}
	if !s.advance(weave.AsUnixTime(now)) {
		return s, nil
	}
	if err := c.save(ctx, db, s); err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("staged fee activated", "fee", s.CurrentFee)
	return s, nil
}

// Reschedule changes the fee. A zero activation time applies the fee
// immediately and drops any stage. Otherwise the activation time must be in
// the future and the fee is staged, replacing a previous stage.
func (c ScheduleController) Reschedule(ctx weave.Context, db weave.KVStore, next uint32, activation weave.UnixTime) (*Schedule, error) {
	if next >= MaxFee {
		return nil, errors.Wrapf(errors.ErrInput, "fee must be below %d", MaxFee)
	}
	// A due stage must not be lost by being overwritten.
	s, err := c.advance(ctx, db)
	if err != nil {
		return nil, err
	}

	if activation == 0 {
		s.CurrentFee = next
		s.clearStage()
	} else {
		now, err := weave.BlockTime(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "block time")
		}
		if activation <= weave.AsUnixTime(now) {
			return nil, errors.Wrapf(errors.ErrInput, "activation time %s is not in the future", activation)
		}
		s.HasNext = true
		s.NextFee = next
		s.ActivationTime = activation
	}
	if err := c.save(ctx, db, s); err != nil {
		return nil, err
	}
	return s, nil
}

// FeeChangedEvent is the payload of a fee change event.
type FeeChangedEvent struct {
	CurrentFee     uint32         `json:"current_fee"`
	NextFee        *uint32        `json:"next_fee,omitempty"`
	ActivationTime weave.UnixTime `json:"activation_time,omitempty"`
}

func (c ScheduleController) save(ctx weave.Context, db weave.KVStore, s *Schedule) error {
	if _, err := c.bucket.Put(db, scheduleKey, s); err != nil {
		return errors.Wrap(err, "save schedule")
	}
	if c.outbox == nil {
		return nil
	}
	ev := FeeChangedEvent{CurrentFee: s.CurrentFee}
	if s.HasNext {
		next := s.NextFee
		ev.NextFee = &next
		ev.ActivationTime = s.ActivationTime
	}
	return c.outbox.Emit(ctx, db, events.KindFeeChanged, ev)
}
