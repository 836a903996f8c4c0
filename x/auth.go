package x

import (
	weave "github.com/iov-one/weave-editions"
)

// Authenticator reveals the conditions that authorize the current
// transaction or task. Handlers receive it in their constructor so that
// the same handler serves signed transactions and scheduled tasks.
type Authenticator interface {
	// GetConditions returns the fulfilled conditions, main signer first.
	GetConditions(weave.Context) []weave.Condition
	// HasAddress reports whether any fulfilled condition has the address.
	HasAddress(weave.Context, weave.Address) bool
}

// MultiAuth merges the conditions of several authenticators.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth merges authenticators. Their order decides the main signer.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls: impls}
}

// GetConditions returns the conditions of all authenticators in order,
// each condition once.
func (m MultiAuth) GetConditions(ctx weave.Context) []weave.Condition {
	var all []weave.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !contains(all, c) {
				all = append(all, c)
			}
		}
	}
	return all
}

func (m MultiAuth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first condition, or nil. Deposits are paid by it
// and a series created without an explicit creator belongs to it.
func MainSigner(ctx weave.Context, auth Authenticator) weave.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

// IsSigner reports whether addr is authenticated. An empty address never
// is.
func IsSigner(ctx weave.Context, auth Authenticator, addr weave.Address) bool {
	return len(addr) != 0 && auth.HasAddress(ctx, addr)
}

// HasAddress reports whether any of the conditions has the address.
// Authenticator implementations use it for their HasAddress method.
func HasAddress(conds []weave.Condition, addr weave.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

func contains(conds []weave.Condition, c weave.Condition) bool {
	for _, have := range conds {
		if have.Equals(c) {
			return true
		}
	}
	return false
}
