package events

import (
	"encoding/json"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
)

// Kinds of events emitted by the application extensions.
const (
	KindSeriesCreated     = "series_created"
	KindSeriesNonMintable = "series_non_mintable"
	KindPriceChanged      = "price_changed"
	KindCopiesDecreased   = "copies_decreased"
	KindEditionMinted     = "edition_minted"
	KindTransfer          = "transfer"
	KindBurn              = "burn"
	KindApprovalGranted   = "approval_granted"
	KindApprovalRevoked   = "approval_revoked"
	KindFeeChanged        = "fee_changed"
)

// Event is a single record of the event log.
type Event struct {
	Metadata *weave.Metadata
	// ID is a name based UUID, unique within a chain.
	ID     string
	Kind   string
	Height int64
	Time   weave.UnixTime
	// Payload is a brotli compressed JSON document.
	Payload []byte
}

var _ orm.Model = (*Event)(nil)

func (e *Event) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", e.Metadata.Validate())
	if e.ID == "" {
		errs = errors.AppendField(errs, "ID", errors.ErrEmpty)
	}
	if e.Kind == "" {
		errs = errors.AppendField(errs, "Kind", errors.ErrEmpty)
	}
	return errs
}

func (e *Event) Marshal() ([]byte, error) {
	return codec.Marshal(e)
}

func (e *Event) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, e)
}

// Decode loads the JSON payload of the event into dest.
func (e *Event) Decode(dest interface{}) error {
	raw, err := e.RawPayload()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrInput, "decode %s payload: %s", e.Kind, err)
	}
	return nil
}

// RawPayload returns the uncompressed JSON payload.
func (e *Event) RawPayload() ([]byte, error) {
	return decompress(e.Payload)
}

// Record is an event together with its position in the log.
type Record struct {
	Seq   uint64
	Event Event
}
