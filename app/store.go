package app

import (
	"encoding/json"
	"fmt"
	"strings"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp implements the state related half of abci.Application: info,
// genesis, queries and the block boundaries. BaseApp embeds it and adds
// transaction processing.
//
// The ABCI calls without user input cannot report an error back to
// tendermint. A failure there means the node state is broken, so they
// panic.
type StoreApp struct {
	name        string
	logger      log.Logger
	store       *CommitStore
	initializer weave.Initializer
	queryRouter weave.QueryRouter
	debug       bool

	// chainID is empty until genesis.
	chainID string

	// baseContext holds what stays the same for the node lifetime,
	// blockContext adds the header of the current block.
	baseContext  weave.Context
	blockContext weave.Context
}

// NewStoreApp loads the latest state of store. It panics if the state
// cannot be read.
func NewStoreApp(name string, store weave.CommitKVStore, queryRouter weave.QueryRouter, baseContext weave.Context) *StoreApp {
	s := &StoreApp{
		name:        name,
		store:       NewCommitStore(store),
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s.WithLogger(log.NewNopLogger())

	if id := mustLoadChainID(s.DeliverStore()); id != "" {
		s.setChainID(id)
	}
	info, err := s.store.CommitInfo()
	if err != nil {
		panic(errors.Wrap(err, "commit info"))
	}
	s.blockContext = weave.WithHeight(s.baseContext, info.Version)
	return s
}

// GetChainID returns the chain id, or an empty string before genesis.
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

func (s *StoreApp) setChainID(id string) {
	s.chainID = id
	s.baseContext = weave.WithChainID(s.baseContext, id)
}

// WithInit sets the initializer InitChain calls with the genesis state.
func (s *StoreApp) WithInit(init weave.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the logger of the application and its contexts.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	s.baseContext = weave.WithLogger(s.baseContext, logger)
	return s
}

func (s *StoreApp) Logger() log.Logger { return s.logger }

// BlockContext returns the context of the block being processed.
func (s *StoreApp) BlockContext() weave.Context { return s.blockContext }

func (s *StoreApp) DeliverStore() weave.CacheableKVStore { return s.store.DeliverStore() }
func (s *StoreApp) CheckStore() weave.CacheableKVStore   { return s.store.CheckStore() }

// LoadGenesis initializes the state from a genesis file. Tools and tests
// use it, a node gets its genesis through InitChain.
func (s *StoreApp) LoadGenesis(path string, init weave.Initializer) error {
	gen, err := loadGenesis(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(gen.AppOptions)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return s.genesis(raw, gen.ChainID, init)
}

// genesis runs once in the life of a chain.
func (s *StoreApp) genesis(appState []byte, chainID string, init weave.Initializer) error {
	switch {
	case s.chainID != "":
		return errors.Wrapf(errors.ErrState, "genesis of %s already loaded", s.chainID)
	case len(appState) == 0:
		return errors.Wrap(errors.ErrEmpty, "genesis has no app_state")
	case init == nil:
		return errors.Wrap(errors.ErrHuman, "no initializer")
	}
	var opts weave.Options
	if err := json.Unmarshal(appState, &opts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.setChainID(chainID)
	return init.FromGenesis(opts, weave.GenesisParams{ChainID: chainID}, s.DeliverStore())
}

// Info returns the last committed height and hash, so tendermint knows
// which blocks to replay.
func (s *StoreApp) Info(abci.RequestInfo) abci.ResponseInfo {
	info, err := s.store.CommitInfo()
	if err != nil {
		panic(errors.Wrap(err, "commit info"))
	}
	s.logger.Info("info", "height", info.Version, "hash", fmt.Sprintf("%X", info.Hash))
	return abci.ResponseInfo{
		Data:             s.name,
		Version:          weave.Version(),
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

func (s *StoreApp) SetOption(abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "not supported"}
}

// Query answers a read request against the last committed state.
//
// The path selects a registered query handler: "/" for raw keys, a bucket
// name such as "/series" or a view such as "/series/get". Anything after a
// "?" is passed to the handler as a modifier, for example "/series?prefix".
// Key and Value of the response are both an encoded ResultSet.
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	path, mod := splitPath(req.Path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		return queryError(errors.Wrapf(errors.ErrNotFound, "query path %q", req.Path), s.debug)
	}
	info, err := s.store.CommitInfo()
	if err != nil {
		return queryError(err, s.debug)
	}
	models, err := qh.Query(s.store.QueryStore(), mod, req.Data)
	if err != nil {
		return queryError(err, s.debug)
	}
	keys, err := ResultsFromKeys(models).Marshal()
	if err != nil {
		return queryError(err, s.debug)
	}
	values, err := ResultsFromValues(models).Marshal()
	if err != nil {
		return queryError(err, s.debug)
	}
	return abci.ResponseQuery{Height: info.Version, Key: keys, Value: values}
}

func splitPath(full string) (path, mod string) {
	if i := strings.IndexByte(full, '?'); i >= 0 {
		return full[:i], full[i+1:]
	}
	return full, ""
}

func (s *StoreApp) Commit() abci.ResponseCommit {
	id, err := s.store.Commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("commit", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseCommit{Data: id.Hash}
}

func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	if err := s.genesis(req.AppStateBytes, req.ChainId, s.initializer); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock starts a new block context with the height and time of the
// header.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	ctx := weave.WithHeight(s.baseContext, req.Header.Height)
	s.blockContext = weave.WithBlockTime(ctx, req.Header.Time)
	return abci.ResponseBeginBlock{}
}

// EndBlock never changes the validator set.
func (s *StoreApp) EndBlock(abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}
