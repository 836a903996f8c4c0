package app

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/app"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/weavetest"
	"github.com/iov-one/weave-editions/x/cash"
	"github.com/iov-one/weave-editions/x/sigs"
	"github.com/iov-one/weave-editions/x/transfer"
	abci "github.com/tendermint/tendermint/abci/types"
	"golang.org/x/crypto/ed25519"
)

const (
	testChainID = "editions-test"
	// blockInterval is the block time difference of consecutive blocks.
	blockInterval = 5 * time.Second
)

type account struct {
	priv ed25519.PrivateKey
	addr weave.Address
}

// testChain drives a complete application through the ABCI interface, one
// transaction per block.
type testChain struct {
	app      app.BaseApp
	height   int64
	now      time.Time
	accounts map[string]*account
	hooks    *transfer.HookRegistry
}

// genesisSetup configures the initial state. Every account is funded with
// the given balance, the first one owns all configurations.
type genesisSetup struct {
	Accounts    []string
	Balance     uint64
	CurrentFee  uint32
	Treasury    string
	HookOpLimit uint64
}

func newTestChain(tb testing.TB, setup genesisSetup) (*testChain, func()) {
	tb.Helper()

	kv, cleanup := weavetest.CommitKVStore(tb)
	hooks := transfer.NewHookRegistry()
	c := &testChain{
		app:      Application("editionsd-test", NewComponents(hooks), kv, true),
		now:      time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		accounts: make(map[string]*account),
		hooks:    hooks,
	}
	for _, name := range setup.Accounts {
		_, priv := weavetest.NewKey()
		c.accounts[name] = &account{
			priv: priv,
			addr: sigs.Condition(priv.Public().(ed25519.PublicKey)).Address(),
		}
	}

	state, err := c.genesis(setup)
	if err != nil {
		cleanup()
		tb.Fatalf("cannot build genesis: %s", err)
	}
	c.app.InitChain(abci.RequestInitChain{ChainId: testChainID, AppStateBytes: state})
	c.nextBlock()
	return c, cleanup
}

func (c *testChain) genesis(setup genesisSetup) ([]byte, error) {
	var wallets []cash.GenesisAccount
	for _, name := range setup.Accounts {
		wallets = append(wallets, cash.GenesisAccount{
			Address: c.addr(name),
			Balance: coin.NewAmount(setup.Balance),
		})
	}
	var owner, treasury weave.Address
	if len(setup.Accounts) > 0 {
		owner = c.addr(setup.Accounts[0])
	}
	if setup.Treasury != "" {
		treasury = c.addr(setup.Treasury)
	}
	meta := weave.Metadata{Schema: 1}
	return json.Marshal(map[string]interface{}{
		"cash": wallets,
		"fee":  map[string]interface{}{"current_fee": setup.CurrentFee},
		"conf": map[string]interface{}{
			"fee": map[string]interface{}{
				"metadata": meta,
				"owner":    owner,
				"treasury": treasury,
			},
			"transfer": map[string]interface{}{
				"metadata":      meta,
				"owner":         owner,
				"hook_op_limit": setup.HookOpLimit,
			},
		},
	})
}

func (c *testChain) addr(name string) weave.Address {
	a, ok := c.accounts[name]
	if !ok {
		panic(fmt.Sprintf("unknown account %q", name))
	}
	return a.addr
}

func (c *testChain) beginBlock() {
	c.height++
	c.now = c.now.Add(blockInterval)
	c.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{ChainID: testChainID, Height: c.height, Time: c.now},
	})
}

func (c *testChain) endBlock() {
	c.app.EndBlock(abci.RequestEndBlock{Height: c.height})
	c.app.Commit()
}

// nextBlock produces an empty block. Scheduled tasks that are due run in
// it.
func (c *testChain) nextBlock() {
	c.beginBlock()
	c.endBlock()
}

// deliver signs the message by the named account and processes it in a
// new block.
func (c *testChain) deliver(signer string, msg weave.Msg, deposit coin.Amount) (*weave.DeliverResult, error) {
	raw, err := c.sign(signer, msg, deposit)
	if err != nil {
		return nil, err
	}

	c.beginBlock()
	defer c.endBlock()

	chk := c.app.CheckTx(raw)
	if chk.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(chk.Code, chk.Log)
	}
	return weave.ParseDeliverOrError(c.app.DeliverTx(raw))
}

func (c *testChain) sign(signer string, msg weave.Msg, deposit coin.Amount) ([]byte, error) {
	a, ok := c.accounts[signer]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "account %q", signer)
	}
	nonce, err := sigs.NextNonce(app.NewABCIStore(c.app), a.priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	tx := &Tx{Msg: msg, Deposit: deposit}
	sig, err := sigs.SignTx(a.priv, tx, testChainID, nonce)
	if err != nil {
		return nil, err
	}
	tx.Signatures = []*sigs.StdSignature{sig}
	return tx.Marshal()
}

// view runs a JSON view query and decodes its result into dest.
func (c *testChain) view(path string, request, dest interface{}) error {
	var data []byte
	if request != nil {
		raw, err := json.Marshal(request)
		if err != nil {
			return err
		}
		data = raw
	}
	res := c.app.Query(abci.RequestQuery{Path: path, Data: data})
	if res.Code != errors.SuccessABCICode {
		return errors.ABCIError(res.Code, res.Log)
	}
	var values app.ResultSet
	if err := values.Unmarshal(res.Value); err != nil {
		return err
	}
	if len(values.Results) != 1 {
		return errors.Wrapf(errors.ErrState, "%d results", len(values.Results))
	}
	return json.Unmarshal(values.Results[0], dest)
}

// balance returns the committed balance of the named account.
func (c *testChain) balance(name string) (coin.Amount, error) {
	res := c.app.Query(abci.RequestQuery{Path: "/wallets", Data: c.addr(name)})
	if res.Code != errors.SuccessABCICode {
		return coin.Amount{}, errors.ABCIError(res.Code, res.Log)
	}
	var w cash.Wallet
	if err := app.UnmarshalOneResult(res.Value, &w); err != nil {
		return coin.Amount{}, err
	}
	return w.Balance, nil
}
