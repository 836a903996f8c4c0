package app

import (
	"encoding/json"
	"testing"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/app"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/x/fee"
	"github.com/iov-one/weave-editions/x/payout"
	"github.com/iov-one/weave-editions/x/series"
	"github.com/iov-one/weave-editions/x/transfer"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
)

const startBalance = 1000000

func TestBuyAndPayoutPreview(t *testing.T) {
	c, cleanup := newTestChain(t, genesisSetup{
		Accounts:   []string{"admin", "creator", "buyer", "treasury"},
		Balance:    startBalance,
		CurrentFee: 250,
		Treasury:   "treasury",
	})
	defer cleanup()

	res, err := c.deliver("creator", &series.CreateMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Template: series.Template{Title: "Sunrise", Copies: 2},
		ForSale:  true,
		Price:    coin.NewAmount(1000),
		Royalties: series.Royalties{
			{Party: c.addr("creator"), BasisPoints: 1000},
		},
	}, coin.Amount{})
	require.NoError(t, err)
	seriesID := string(res.Data)

	res, err = c.deliver("buyer", &series.BuyMsg{
		Metadata: &weave.Metadata{Schema: 1},
		SeriesID: seriesID,
	}, coin.NewAmount(1500))
	require.NoError(t, err)
	var sale series.Sale
	require.NoError(t, json.Unmarshal(res.Data, &sale))
	require.Equal(t, coin.NewAmount(25), sale.PlatformFee)
	require.Equal(t, c.addr("buyer"), sale.Edition.Owner)

	for name, want := range map[string]uint64{
		"buyer":    startBalance - 1000,
		"treasury": startBalance + 25,
		"creator":  startBalance + 975,
	} {
		got, err := c.balance(name)
		require.NoError(t, err)
		require.Equal(t, coin.NewAmount(want).String(), got.String(), name)
	}

	var view series.EditionView
	require.NoError(t, c.view("/editions/get", series.EditionRequest{EditionID: sale.Edition.ID}, &view))
	require.Equal(t, seriesID, view.SeriesID)
	require.Equal(t, uint64(1), view.Number)
	require.Equal(t, "Sunrise", view.Template.Title)

	var preview payout.Payout
	err = c.view("/payout/preview", payout.PreviewRequest{
		EditionID:     sale.Edition.ID,
		Amount:        coin.NewAmount(10000),
		MaxRecipients: 5,
	}, &preview)
	require.NoError(t, err)
	require.Equal(t, coin.NewAmount(1000).String(), preview.Get(c.addr("creator")).String())
	require.Equal(t, coin.NewAmount(9000).String(), preview.Get(c.addr("buyer")).String())

	// The deposit must cover the price.
	_, err = c.deliver("buyer", &series.BuyMsg{
		Metadata: &weave.Metadata{Schema: 1},
		SeriesID: seriesID,
	}, coin.NewAmount(999))
	require.Error(t, err)
	require.True(t, errors.ErrInsufficientAmount.Is(err))
	got, err := c.balance("buyer")
	require.NoError(t, err)
	require.Equal(t, coin.NewAmount(startBalance-1000).String(), got.String())
}

func TestFeeChangeAppliesToNewSeriesOnly(t *testing.T) {
	c, cleanup := newTestChain(t, genesisSetup{
		Accounts:   []string{"admin", "creator", "buyer"},
		Balance:    startBalance,
		CurrentFee: 100,
		Treasury:   "admin",
	})
	defer cleanup()

	create := func() string {
		res, err := c.deliver("creator", &series.CreateMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Template: series.Template{Title: "Tide"},
			ForSale:  true,
			Price:    coin.NewAmount(10000),
		}, coin.Amount{})
		require.NoError(t, err)
		return string(res.Data)
	}
	old := create()

	_, err := c.deliver("creator", &fee.SetTransactionFeeMsg{
		Metadata: &weave.Metadata{Schema: 1},
		NextFee:  500,
	}, coin.Amount{})
	require.Error(t, err, "only the owner can change the fee")

	_, err = c.deliver("admin", &fee.SetTransactionFeeMsg{
		Metadata: &weave.Metadata{Schema: 1},
		NextFee:  500,
	}, coin.Amount{})
	require.NoError(t, err)
	fresh := create()

	for id, want := range map[string]uint32{old: 100, fresh: 500} {
		var v series.PriceView
		require.NoError(t, c.view("/series/price", series.SeriesRequest{SeriesID: id}, &v))
		require.NotNil(t, v.Fee)
		require.Equal(t, want, *v.Fee, id)
	}
}

func TestTransferCallResolvesInNextBlock(t *testing.T) {
	cases := map[string]struct {
		hook      transfer.Receiver
		wantOwner string
		want      transfer.Status
	}{
		"receiver keeps the edition": {
			hook: transfer.ReceiverFunc(func(weave.Context, weave.KVStore, weave.Address, weave.Address, string, string) (bool, error) {
				return true, nil
			}),
			wantOwner: "bob",
			want:      transfer.StatusFinalized,
		},
		"receiver refuses the edition": {
			hook: transfer.ReceiverFunc(func(weave.Context, weave.KVStore, weave.Address, weave.Address, string, string) (bool, error) {
				return false, nil
			}),
			wantOwner: "alice",
			want:      transfer.StatusRolledBack,
		},
		"receiver fails": {
			hook: transfer.ReceiverFunc(func(weave.Context, weave.KVStore, weave.Address, weave.Address, string, string) (bool, error) {
				return false, errors.Wrap(errors.ErrState, "broken")
			}),
			wantOwner: "alice",
			want:      transfer.StatusRolledBack,
		},
		"receiver without a hook": {
			wantOwner: "alice",
			want:      transfer.StatusRolledBack,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c, cleanup := newTestChain(t, genesisSetup{
				Accounts: []string{"admin", "alice", "bob"},
				Balance:  startBalance,
			})
			defer cleanup()
			if tc.hook != nil {
				c.hooks.Register(c.addr("bob"), tc.hook)
			}

			res, err := c.deliver("alice", &series.CreateMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Template: series.Template{Title: "Dune"},
			}, coin.Amount{})
			require.NoError(t, err)
			seriesID := string(res.Data)

			res, err = c.deliver("alice", &series.MintMsg{
				Metadata: &weave.Metadata{Schema: 1},
				SeriesID: seriesID,
				Receiver: c.addr("alice"),
			}, coin.Amount{})
			require.NoError(t, err)
			editionID := string(res.Data)

			res, err = c.deliver("alice", &transfer.TransferCallMsg{
				Metadata:  &weave.Metadata{Schema: 1},
				EditionID: editionID,
				Receiver:  c.addr("bob"),
				Payload:   "hello",
			}, coin.Amount{})
			require.NoError(t, err)
			pendingID := res.Data

			// The edition belongs to the receiver until the transfer is
			// resolved.
			var view series.EditionView
			require.NoError(t, c.view("/editions/get", series.EditionRequest{EditionID: editionID}, &view))
			require.Equal(t, c.addr("bob"), view.Owner)

			c.nextBlock()

			resp := c.app.Query(abci.RequestQuery{Path: "/pending", Data: pendingID})
			require.Equal(t, uint32(errors.SuccessABCICode), resp.Code, resp.Log)
			var pt transfer.PendingTransfer
			require.NoError(t, app.UnmarshalOneResult(resp.Value, &pt))
			require.Equal(t, tc.want, pt.Status)

			require.NoError(t, c.view("/editions/get", series.EditionRequest{EditionID: editionID}, &view))
			require.Equal(t, c.addr(tc.wantOwner), view.Owner)
		})
	}
}

func TestUnsignedTransactionIsRejected(t *testing.T) {
	c, cleanup := newTestChain(t, genesisSetup{
		Accounts: []string{"admin"},
		Balance:  startBalance,
	})
	defer cleanup()

	tx := &Tx{Msg: &series.CreateMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Template: series.Template{Title: "Anonymous"},
	}}
	raw, err := tx.Marshal()
	require.NoError(t, err)

	c.beginBlock()
	res := c.app.CheckTx(raw)
	c.endBlock()
	require.NotEqual(t, errors.SuccessABCICode, res.Code)
}
