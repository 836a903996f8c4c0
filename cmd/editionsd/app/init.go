package app

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/coin"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/x/sigs"
	"golang.org/x/crypto/ed25519"
)

// initialBalance is credited to the generated development account.
const initialBalance = "1000000000000"

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode. The account becomes the owner of every
// configuration.
//
// An optional first argument is the hex address of the account. Without
// it, a new key is generated and printed.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var addr weave.Address
	if len(args) > 0 {
		a, err := weave.ParseAddress(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "address")
		}
		addr = a
	} else {
		a, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = a
		fmt.Println(keys)
	}

	balance, err := coin.ParseAmount(initialBalance)
	if err != nil {
		return nil, err
	}
	state := map[string]interface{}{
		"cash": []map[string]interface{}{
			{"address": addr, "balance": balance},
		},
		"fee": map[string]interface{}{
			"current_fee": 250,
		},
		"conf": map[string]interface{}{
			"fee": map[string]interface{}{
				"metadata": weave.Metadata{Schema: 1},
				"owner":    addr,
				"treasury": addr,
			},
			"series": map[string]interface{}{
				"metadata":        weave.Metadata{Schema: 1},
				"owner":           addr,
				"max_royalties":   10,
				"max_royalty_bps": 5000,
			},
			"deposit": map[string]interface{}{
				"metadata": weave.Metadata{Schema: 1},
				"owner":    addr,
			},
			"transfer": map[string]interface{}{
				"metadata":      weave.Metadata{Schema: 1},
				"owner":         addr,
				"hook_op_limit": 10000,
			},
		},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

type output struct {
	Address weave.Address `json:"address"`
	Pubkey  string        `json:"pub_key"`
	Secret  string        `json:"secret"`
}

// GenerateCoinKey returns the address of a new public key, along with a
// json representation of the keys.
func GenerateCoinKey() (weave.Address, string, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrInput, err.Error())
	}
	addr := sigs.Condition(pub).Address()

	out := output{
		Address: addr,
		Pubkey:  hex.EncodeToString(pub),
		Secret:  hex.EncodeToString(priv),
	}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrInput, err.Error())
	}
	return addr, string(keys), nil
}
