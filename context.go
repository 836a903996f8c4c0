package weave

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/iov-one/weave-editions/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Context carries the block information and the logger through every
// handler call.
type Context = context.Context

type ctxKey string

const (
	heightKey  ctxKey = "height"
	chainIDKey ctxKey = "chain_id"
	loggerKey  ctxKey = "logger"
	timeKey    ctxKey = "block_time"
)

var (
	// DefaultLogger is returned by GetLogger when the context has none.
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID reports whether a chain id is usable.
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// WithHeight sets the height of the current block. The height of a
// context cannot be changed, so a second call panics.
func WithHeight(ctx Context, height int64) Context {
	if _, ok := GetHeight(ctx); ok {
		panic("block height is already set")
	}
	return context.WithValue(ctx, heightKey, height)
}

func GetHeight(ctx Context) (int64, bool) {
	h, ok := ctx.Value(heightKey).(int64)
	return h, ok
}

func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, timeKey, t)
}

// BlockTime returns the time of the current block. Every transaction
// context has one. Queries and genesis do not.
func BlockTime(ctx Context) (time.Time, error) {
	if t, ok := ctx.Value(timeKey).(time.Time); ok {
		return t, nil
	}
	return time.Time{}, errors.Wrap(errors.ErrHuman, "no block time in context")
}

// IsExpired reports whether t is at or before the block time. It panics
// without a block time.
func IsExpired(ctx Context, t UnixTime) bool {
	now, err := BlockTime(ctx)
	if err != nil {
		panic(err)
	}
	return t <= AsUnixTime(now)
}

// InTheFuture reports whether t is after the block time. It panics
// without a block time.
func InTheFuture(ctx Context, t UnixTime) bool {
	return !IsExpired(ctx, t)
}

// WithChainID sets the chain id once. It panics on a second call or an
// invalid id.
func WithChainID(ctx Context, chainID string) Context {
	if GetChainID(ctx) != "" {
		panic("chain id is already set")
	}
	if !IsValidChainID(chainID) {
		panic(fmt.Sprintf("invalid chain id %q", chainID))
	}
	return context.WithValue(ctx, chainIDKey, chainID)
}

// GetChainID returns an empty string before genesis.
func GetChainID(ctx Context) string {
	id, _ := ctx.Value(chainIDKey).(string)
	return id
}

func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithLogInfo adds key value pairs to every entry logged with the
// returned context.
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	return WithLogger(ctx, GetLogger(ctx).With(keyvals...))
}

func GetLogger(ctx Context) log.Logger {
	if l, ok := ctx.Value(loggerKey).(log.Logger); ok {
		return l
	}
	return DefaultLogger
}
