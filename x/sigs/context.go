package sigs

import (
	"context"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/x"
)

type signersKey struct{}

// withSigners is only called by Decorator, so nothing outside this
// package can claim a signature.
func withSigners(ctx weave.Context, signers []weave.Condition) weave.Context {
	return context.WithValue(ctx, signersKey{}, signers)
}

// Authenticate exposes the conditions of the verified signatures.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the signers of the current transaction, if any.
func (Authenticate) GetConditions(ctx weave.Context) []weave.Condition {
	signers, _ := ctx.Value(signersKey{}).([]weave.Condition)
	return signers
}

func (a Authenticate) HasAddress(ctx weave.Context, addr weave.Address) bool {
	return x.HasAddress(a.GetConditions(ctx), addr)
}
