package payout

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/x/edition"
	"github.com/iov-one/weave-editions/x/series"
)

// PreviewRequest is the request of the "/payout/preview" view.
type PreviewRequest struct {
	EditionID     string      `json:"edition_id"`
	Amount        coin.Amount `json:"amount"`
	MaxRecipients uint32      `json:"max_recipients"`
}

// RegisterQuery registers the payout preview under "/payout/preview".
func RegisterQuery(qr weave.QueryRouter) {
	e := NewEngine(series.NewRegistry(edition.NewLedger(nil), nil, nil))
	orm.RegisterView(qr, "payout/preview", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		var req PreviewRequest
		if err := orm.DecodeRequest(raw, &req); err != nil {
			return nil, err
		}
		return e.Payout(db, req.EditionID, req.Amount, req.MaxRecipients)
	})
}
