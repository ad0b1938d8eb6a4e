package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/app"
	timedwalletd "github.com/iov-one/weave-timedwallet/cmd/timedwalletd/app"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cmn "github.com/tendermint/tendermint/libs/common"
)

const flagAmount = "amount"

func newInitCmd(v *viper.Viper) *cobra.Command {
	amount := coin.NewCoin(1000000, 0, "ETH")
	cmd := &cobra.Command{
		Use:   "init <owner-address>",
		Short: "Initialize app state in the genesis file",
		Long: `Write the app_state of the genesis file under <home>/config/genesis.json.
A genesis file is created when missing. The owner receives the initial funds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := weave.ParseAddress(args[0])
			if err != nil {
				return err
			}
			state, err := timedwalletd.GenInitOptions(owner, amount)
			if err != nil {
				return err
			}
			genFile := filepath.Join(v.GetString(flagHome), "config", "genesis.json")
			if err := addGenesisOptions(genFile, state); err != nil {
				return err
			}
			gen, err := app.LoadGenesis(genFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "genesis for chain %q written to %s\n", gen.ChainID, genFile)
			return nil
		},
	}
	cmd.Flags().Var(&amount, flagAmount, "initial funds of the owner")
	return cmd
}

// genesisDoc holds the tendermint genesis file as raw fields, so that only
// the app_state is modified.
type genesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage) error {
	doc := genesisDoc{}
	raw, err := ioutil.ReadFile(filename)
	switch {
	case os.IsNotExist(err):
		doc, err = newGenesisDoc()
		if err != nil {
			return err
		}
	case err != nil:
		return errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return errors.Wrapf(errors.ErrInput, "parse genesis: %s", err)
		}
	}

	doc["app_state"] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "serialize genesis: %s", err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return err
	}
	return ioutil.WriteFile(filename, out, 0600)
}

func newGenesisDoc() (genesisDoc, error) {
	doc := genesisDoc{}
	fields := map[string]interface{}{
		"chain_id":     fmt.Sprintf("timedwallet-%s", cmn.RandStr(6)),
		"genesis_time": time.Now().UTC(),
	}
	for name, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "%s: %s", name, err)
		}
		doc[name] = raw
	}
	return doc, nil
}
