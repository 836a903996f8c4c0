package cron

import (
	"context"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/x"
)

type taskAuthKey struct{}

// withAuth attaches the conditions of a task to the context, on top of the
// ones already attached.
func withAuth(ctx weave.Context, conds []weave.Condition) weave.Context {
	prev, _ := ctx.Value(taskAuthKey{}).([]weave.Condition)
	all := make([]weave.Condition, 0, len(conds)+len(prev))
	all = append(append(all, conds...), prev...)
	return context.WithValue(ctx, taskAuthKey{}, all)
}

// Authenticator authorizes scheduled tasks. It sees only the conditions
// that a task was scheduled with, never a transaction signature.
type Authenticator struct{}

var _ x.Authenticator = Authenticator{}

func (Authenticator) GetConditions(ctx weave.Context) []weave.Condition {
	conds, _ := ctx.Value(taskAuthKey{}).([]weave.Condition)
	return conds
}

func (a Authenticator) HasAddress(ctx weave.Context, addr weave.Address) bool {
	return x.HasAddress(a.GetConditions(ctx), addr)
}
