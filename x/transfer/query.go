package transfer

import (
	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/orm"
)

// RegisterQuery registers the pending transfer records under "/pending".
func RegisterQuery(qr weave.QueryRouter) {
	orm.NewModelBucket(BucketName, &PendingTransfer{}).Register("pending", qr)
}
