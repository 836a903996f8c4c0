package fee

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/orm"
)

// CurrentRequest is the request of the "/fee/current" view. A zero time
// reads the stored fee without applying a stage.
type CurrentRequest struct {
	Time weave.UnixTime `json:"time"`
}

// RegisterQuery exposes the stored schedule under "/fee/schedule", the fee
// in effect under "/fee/current" and the configuration under "/fee/config".
func RegisterQuery(qr weave.QueryRouter) {
	ctrl := NewController(nil)
	orm.RegisterView(qr, "fee/schedule", func(db weave.ReadOnlyKVStore, _ []byte) (interface{}, error) {
		return ctrl.Schedule(db)
	})
	orm.RegisterView(qr, "fee/current", func(db weave.ReadOnlyKVStore, raw []byte) (interface{}, error) {
		var req CurrentRequest
		if err := orm.DecodeRequest(raw, &req); err != nil {
			return nil, err
		}
		return ctrl.CurrentFee(db, req.Time)
	})
	orm.RegisterView(qr, "fee/config", func(db weave.ReadOnlyKVStore, _ []byte) (interface{}, error) {
		return LoadConfiguration(db)
	})
}
