package app

import (
	"context"
	"testing"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/weavetest"
	"github.com/iov-one/weave-editions/weavetest/assert"
)

const dummyKey = "dummy"

type dummyInit struct{}

func (dummyInit) FromGenesis(opts weave.Options, params weave.GenesisParams, kv weave.KVStore) error {
	var value string
	if err := opts.ReadOptions(dummyKey, &value); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return kv.Set([]byte(dummyKey), []byte(value))
}

type countInit struct {
	called  int
	chainID string
}

func (c *countInit) FromGenesis(opts weave.Options, params weave.GenesisParams, kv weave.KVStore) error {
	c.called++
	c.chainID = params.ChainID
	return nil
}

func TestLoadGenesis(t *testing.T) {
	cases := map[string]struct {
		file         string
		wantParseErr *errors.Error
		wantInitErr  *errors.Error
		wantChain    string
		wantCalled   int
		wantValue    []byte
	}{
		"no such file": {
			file:         "testdata/no_such_file.json",
			wantParseErr: errors.ErrInput,
			wantInitErr:  errors.ErrInput,
		},
		"proper genesis": {
			file:       "testdata/genesis.json",
			wantChain:  "test-chain-67",
			wantCalled: 1,
			wantValue:  []byte("secret"),
		},
		"initializer fails": {
			file:        "testdata/bad_genesis.json",
			wantInitErr: errors.ErrInput,
			wantChain:   "super-chain-22",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			gen, err := loadGenesis(tc.file)
			if !tc.wantParseErr.Is(err) {
				t.Fatalf("unexpected parse error: %+v", err)
			}
			if tc.wantParseErr == nil {
				assert.Equal(t, tc.wantChain, gen.ChainID)
			}

			kv, cleanup := weavetest.CommitKVStore(t)
			defer cleanup()

			c := &countInit{}
			init := ChainInitializers(dummyInit{}, c)
			s := NewStoreApp("foo", kv, weave.NewQueryRouter(), context.Background())
			assert.Equal(t, "", s.GetChainID())

			if err := s.LoadGenesis(tc.file, init); !tc.wantInitErr.Is(err) {
				t.Fatalf("unexpected init error: %+v", err)
			}
			assert.Equal(t, tc.wantChain, s.GetChainID())
			assert.Equal(t, tc.wantCalled, c.called)
			if tc.wantCalled > 0 {
				assert.Equal(t, tc.wantChain, c.chainID)
			}

			val, err := s.DeliverStore().Get([]byte(dummyKey))
			assert.Nil(t, err)
			assert.Equal(t, tc.wantValue, val)
		})
	}
}

func TestGenesisCannotBeLoadedTwice(t *testing.T) {
	kv, cleanup := weavetest.CommitKVStore(t)
	defer cleanup()

	s := NewStoreApp("foo", kv, weave.NewQueryRouter(), context.Background())
	assert.Nil(t, s.LoadGenesis("testdata/genesis.json", dummyInit{}))

	err := s.LoadGenesis("testdata/genesis.json", dummyInit{})
	assert.IsErr(t, errors.ErrState, err)
}
