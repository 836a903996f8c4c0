package app

import (
	"github.com/iov-one/weave-editions/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// queryError converts any error into an abci query response. Internal
// details are hidden unless debug is set.
func queryError(err error, debug bool) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, debug)
	return abci.ResponseQuery{
		Log:  log,
		Code: code,
	}
}
