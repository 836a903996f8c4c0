package server

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/iov-one/weave-editions/errors"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

// GenOptions can parse command-line arguments to generate the default
// app_state for the genesis file. This is application-specific.
type GenOptions func(args []string) (json.RawMessage, error)

// GenesisPath returns the location of the genesis file under the given home
// directory, following the tendermint layout.
func GenesisPath(home string) string {
	return filepath.Join(home, "config", "genesis.json")
}

// InitGenesis writes the app_state produced by gen into the genesis file.
// A genesis file created by tendermint is extended. When no file exists, a
// minimal one with a random chain id is created.
func InitGenesis(gen GenOptions, logger log.Logger, home string, args []string) error {
	options, err := gen(args)
	if err != nil {
		return err
	}

	genFile := GenesisPath(home)
	if !fileExists(genFile) {
		if err := os.MkdirAll(filepath.Dir(genFile), 0755); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
		doc := GenesisDoc{}
		doc["chain_id"], _ = json.Marshal(fmt.Sprintf("test-chain-%s", cmn.RandStr(6)))
		doc["genesis_time"], _ = json.Marshal(time.Now().UTC())
		if err := writeGenesis(genFile, doc); err != nil {
			return err
		}
		logger.Info("Generated genesis file", "path", genFile)
	}

	if err := addGenesisOptions(genFile, options); err != nil {
		return err
	}
	logger.Info("Set app_state", "path", genFile)
	return nil
}

func fileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis file: %s", err)
	}
	doc["app_state"] = options
	return writeGenesis(filename, doc)
}

func writeGenesis(filename string, doc GenesisDoc) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(filename, out, 0600); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
