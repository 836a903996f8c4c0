package weave_test

import (
	"testing"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/common"
)

func TestDeliverResponses(t *testing.T) {
	res := weave.DeliverOrError(&weave.DeliverResult{
		Data: []byte("art:1"),
		Tags: []common.KVPair{weave.Tag("action", "series/mint")},
	}, nil, false)
	require.Equal(t, uint32(0), res.Code)
	require.Equal(t, []byte("art:1"), res.Data)

	parsed, err := weave.ParseDeliverOrError(res)
	require.NoError(t, err)
	require.Equal(t, []byte("art:1"), parsed.Data)
	require.Equal(t, "series/mint", string(parsed.Tags[0].Value))

	res = weave.DeliverOrError(nil, errors.Wrap(errors.ErrNotFound, "series art"), false)
	require.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)
	require.Contains(t, res.Log, "series art")

	_, err = weave.ParseDeliverOrError(res)
	require.True(t, errors.ErrNotFound.Is(err))
}

func TestInternalErrorsAreHidden(t *testing.T) {
	internal := pkgerrors.New("disk on fire")

	res := weave.CheckOrError(nil, internal, false)
	require.NotEqual(t, uint32(0), res.Code)
	require.NotContains(t, res.Log, "disk on fire")

	res = weave.CheckOrError(nil, internal, true)
	require.Contains(t, res.Log, "disk on fire")

	ok := weave.CheckOrError(weave.NewCheck(100, "fine"), nil, false)
	require.Equal(t, uint32(0), ok.Code)
	require.Equal(t, int64(100), ok.GasWanted)
}
