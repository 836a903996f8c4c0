package x

import (
	"context"
	"testing"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/weavetest"
	"github.com/iov-one/weave-editions/weavetest/assert"
)

func TestAuthenticators(t *testing.T) {
	creator := weavetest.NewCondition()
	buyer := weavetest.NewCondition()
	stranger := weavetest.NewCondition()

	signed := &weavetest.CtxAuth{Key: "signed"}
	scheduled := &weavetest.CtxAuth{Key: "scheduled"}

	cases := map[string]struct {
		ctx        weave.Context
		auth       Authenticator
		wantMain   weave.Condition
		wantAll    []weave.Condition
		wantSigner weave.Condition
	}{
		"nobody signed": {
			ctx:  context.Background(),
			auth: &weavetest.Auth{},
		},
		"single signer": {
			ctx:        context.Background(),
			auth:       &weavetest.Auth{Signer: creator},
			wantMain:   creator,
			wantAll:    []weave.Condition{creator},
			wantSigner: creator,
		},
		"chain order decides the main signer": {
			ctx: context.Background(),
			auth: ChainAuth(
				&weavetest.Auth{Signer: buyer},
				&weavetest.Auth{Signer: creator}),
			wantMain:   buyer,
			wantAll:    []weave.Condition{buyer, creator},
			wantSigner: creator,
		},
		"context conditions under the same key": {
			ctx:        signed.SetConditions(context.Background(), creator, buyer),
			auth:       signed,
			wantMain:   creator,
			wantAll:    []weave.Condition{creator, buyer},
			wantSigner: buyer,
		},
		"context conditions under another key are hidden": {
			ctx:  signed.SetConditions(context.Background(), creator, buyer),
			auth: scheduled,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.wantMain, MainSigner(tc.ctx, tc.auth))
			assert.Equal(t, tc.wantAll, tc.auth.GetConditions(tc.ctx))
			if tc.wantSigner != nil && !IsSigner(tc.ctx, tc.auth, tc.wantSigner.Address()) {
				t.Fatal("signer not recognized")
			}
			if IsSigner(tc.ctx, tc.auth, stranger.Address()) {
				t.Fatal("stranger recognized as a signer")
			}
			if IsSigner(tc.ctx, tc.auth, nil) {
				t.Fatal("empty address recognized as a signer")
			}
		})
	}
}

func TestChainAuthDropsDuplicates(t *testing.T) {
	a := weavetest.NewCondition()
	b := weavetest.NewCondition()

	auth := ChainAuth(
		&weavetest.Auth{Signers: []weave.Condition{a, b}},
		&weavetest.Auth{Signer: a},
	)
	assert.Equal(t, []weave.Condition{a, b}, auth.GetConditions(context.Background()))
}

func TestHasAddress(t *testing.T) {
	a := weavetest.NewCondition()
	b := weavetest.NewCondition()

	assert.Equal(t, true, HasAddress([]weave.Condition{b, a}, a.Address()))
	assert.Equal(t, false, HasAddress([]weave.Condition{b}, a.Address()))
	assert.Equal(t, false, HasAddress(nil, a.Address()))
}
