package gconf

import (
	"context"
	"encoding/json"
	"testing"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/codec"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/store"
	"github.com/iov-one/weave-editions/weavetest"
	"github.com/iov-one/weave-editions/weavetest/assert"
)

type testConfig struct {
	Owner    weave.Address `json:"owner"`
	Limit    int64         `json:"limit"`
	Greeting string        `json:"greeting"`
}

func (c *testConfig) Validate() error {
	if c.Limit < 0 {
		return errors.Wrap(errors.ErrInput, "negative limit")
	}
	return nil
}

func (c *testConfig) Marshal() ([]byte, error) { return codec.Marshal(c) }
func (c *testConfig) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, c) }
func (c *testConfig) GetOwner() weave.Address { return c.Owner }

type updateTestConfigMsg struct {
	Metadata *weave.Metadata
	Patch    *testConfig
}

func (m *updateTestConfigMsg) Path() string { return "gconftest/update" }
func (m *updateTestConfigMsg) Validate() error { return m.Metadata.Validate() }
func (m *updateTestConfigMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *updateTestConfigMsg) Unmarshal(raw []byte) error { return codec.Unmarshal(raw, m) }

func TestSaveLoad(t *testing.T) {
	db := store.MemStore()

	var got testConfig
	assert.IsErr(t, errors.ErrNotFound, Load(db, "test", &got))

	assert.IsErr(t, errors.ErrInput, Save(db, "test", &testConfig{Limit: -1}))

	want := testConfig{Limit: 7, Greeting: "hi"}
	assert.Nil(t, Save(db, "test", &want))
	assert.Nil(t, Load(db, "test", &got))
	assert.Equal(t, want, got)
}

func TestInitConfig(t *testing.T) {
	owner := weavetest.NewCondition().Address()
	raw, err := json.Marshal(map[string]interface{}{
		"test": map[string]interface{}{
			"owner":    owner,
			"limit":    3,
			"greeting": "hello",
		},
	})
	assert.Nil(t, err)
	opts := weave.Options{"conf": raw}

	db := store.MemStore()
	assert.Nil(t, InitConfig(db, opts, "test", &testConfig{}))

	var got testConfig
	assert.Nil(t, Load(db, "test", &got))
	assert.Equal(t, int64(3), got.Limit)
	assert.Equal(t, owner, got.Owner)

	assert.IsErr(t, errors.ErrNotFound, InitConfig(db, opts, "missing", &testConfig{}))
}

func TestUpdateConfiguration(t *testing.T) {
	owner := weavetest.NewCondition()
	admin := weavetest.NewCondition()
	stranger := weavetest.NewCondition()

	initAdmin := func(weave.ReadOnlyKVStore) (weave.Address, error) {
		return admin.Address(), nil
	}

	cases := map[string]struct {
		Init      *testConfig
		InitAdmin func(weave.ReadOnlyKVStore) (weave.Address, error)
		Signer    weave.Condition
		Patch     *testConfig
		WantErr   *errors.Error
		Want      testConfig
	}{
		"owner updates a single field": {
			Init:   &testConfig{Owner: owner.Address(), Limit: 1, Greeting: "hi"},
			Signer: owner,
			Patch:  &testConfig{Limit: 5},
			Want:   testConfig{Owner: owner.Address(), Limit: 5, Greeting: "hi"},
		},
		"owner transfers ownership": {
			Init:   &testConfig{Owner: owner.Address(), Limit: 1},
			Signer: owner,
			Patch:  &testConfig{Owner: stranger.Address()},
			Want:   testConfig{Owner: stranger.Address(), Limit: 1},
		},
		"stranger cannot update": {
			Init:    &testConfig{Owner: owner.Address(), Limit: 1},
			Signer:  stranger,
			Patch:   &testConfig{Limit: 5},
			WantErr: errors.ErrUnauthorized,
			Want:    testConfig{Owner: owner.Address(), Limit: 1},
		},
		"invalid result is rejected": {
			Init:    &testConfig{Owner: owner.Address(), Limit: 1},
			Signer:  owner,
			Patch:   &testConfig{Limit: -4},
			WantErr: errors.ErrInput,
			Want:    testConfig{Owner: owner.Address(), Limit: 1},
		},
		"missing configuration cannot be created without admin": {
			Signer:  owner,
			Patch:   &testConfig{Owner: owner.Address()},
			WantErr: errors.ErrUnauthorized,
		},
		"admin creates a missing configuration": {
			InitAdmin: initAdmin,
			Signer:    admin,
			Patch:     &testConfig{Owner: owner.Address(), Limit: 2},
			Want:      testConfig{Owner: owner.Address(), Limit: 2},
		},
		"patch is required": {
			Init:    &testConfig{Owner: owner.Address()},
			Signer:  owner,
			WantErr: errors.ErrState,
			Want:    testConfig{Owner: owner.Address()},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if tc.Init != nil {
				assert.Nil(t, Save(db, "test", tc.Init))
			}
			auth := &weavetest.Auth{Signer: tc.Signer}
			h := NewUpdateConfigurationHandler("test", &testConfig{}, auth, tc.InitAdmin)
			tx := &weavetest.Tx{Msg: &updateTestConfigMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Patch:    tc.Patch,
			}}

			_, err := h.Deliver(context.Background(), db, tx)
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}

			var got testConfig
			if err := Load(db, "test", &got); err != nil {
				if tc.Init == nil && tc.WantErr != nil {
					return
				}
				t.Fatalf("cannot load configuration: %s", err)
			}
			assert.Equal(t, tc.Want, got)
		})
	}
}
