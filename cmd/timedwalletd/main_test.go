package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/weave-timedwallet/app"
	"github.com/iov-one/weave-timedwallet/crypto"
	"github.com/iov-one/weave-timedwallet/weavetest"
	"github.com/iov-one/weave-timedwallet/x/cash"
	"github.com/iov-one/weave-timedwallet/x/timedwallet"
	"github.com/stretchr/testify/assert"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func tempHome(t *testing.T) string {
	t.Helper()
	home, err := ioutil.TempDir("", "timedwalletd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(home) })
	return home
}

func TestInitCreatesGenesis(t *testing.T) {
	home := tempHome(t)
	owner := weavetest.NewCondition().Address()

	_, err := run(t, "init", owner.String(), "--home", home, "--amount", "123 ETH")
	require.NoError(t, err)

	gen, err := app.LoadGenesis(filepath.Join(home, "config", "genesis.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gen.ChainID, "timedwallet-"), gen.ChainID)

	var state struct {
		Cash []cash.GenesisAccount `json:"cash"`
	}
	require.NoError(t, json.Unmarshal(gen.AppState, &state))
	require.Len(t, state.Cash, 1)
	assert.True(t, state.Cash[0].Address.Equals(owner))
	assert.Equal(t, "123 ETH", state.Cash[0].Coins[0].String())
}

func TestInitKeepsExistingGenesis(t *testing.T) {
	home := tempHome(t)
	genFile := filepath.Join(home, "config", "genesis.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(genFile), 0700))
	existing := `{"chain_id": "my-own-chain", "validators": [], "app_state": {}}`
	require.NoError(t, ioutil.WriteFile(genFile, []byte(existing), 0600))

	owner := weavetest.NewCondition().Address()
	_, err := run(t, "init", owner.String(), "--home", home)
	require.NoError(t, err)

	raw, err := ioutil.ReadFile(genFile)
	require.NoError(t, err)
	var doc genesisDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.JSONEq(t, `"my-own-chain"`, string(doc["chain_id"]))
	assert.JSONEq(t, `[]`, string(doc["validators"]))
	assert.Contains(t, string(doc["app_state"]), owner.String())
}

func TestInitErrors(t *testing.T) {
	owner := weavetest.NewCondition().Address().String()

	cases := map[string][]string{
		"missing owner":   {"init"},
		"invalid owner":   {"init", "zz"},
		"invalid amount":  {"init", owner, "--amount", "lots"},
		"too many owners": {"init", owner, owner},
	}
	for testName, args := range cases {
		t.Run(testName, func(t *testing.T) {
			home := tempHome(t)
			_, err := run(t, append(args, "--home", home)...)
			assert.Error(t, err)
			_, statErr := os.Stat(filepath.Join(home, "config", "genesis.json"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestKeyCommands(t *testing.T) {
	home := tempHome(t)

	out, err := run(t, "keygen", "--home", home)
	require.NoError(t, err)
	var info keyInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))

	out, err = run(t, "address", "--home", home, "--key", info.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, info.Address.String(), strings.TrimSpace(out))

	out, err = run(t, "sign", "--home", home, "--key", info.PrivateKey)
	require.NoError(t, err)
	sig, err := hex.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)

	signer, err := crypto.RecoverAddress(timedwallet.DefaultWithdrawMessage, sig)
	require.NoError(t, err)
	assert.True(t, signer.Equals(info.Address))

	_, err = run(t, "sign", "--home", home, "--key", info.PrivateKey, "--message", "not hex")
	assert.Error(t, err)

	_, err = run(t, "address", "--home", home, "--key", "1234")
	assert.Error(t, err)
}

func TestAdaptorCommands(t *testing.T) {
	home := tempHome(t)
	keygen := func() keyInfo {
		out, err := run(t, "keygen", "--home", home)
		require.NoError(t, err)
		var info keyInfo
		require.NoError(t, json.Unmarshal([]byte(out), &info))
		return info
	}
	signer, witness := keygen(), keygen()
	assert.NotEmpty(t, signer.Bech32)

	presig, err := run(t, "sign", "--key", signer.PrivateKey, "--adaptor", witness.PublicKey.String())
	require.NoError(t, err)

	out, err := run(t, "adaptor", "verify", "--presig", presig,
		"--pubkey", signer.PublicKey.String(), "--statement", witness.PublicKey.String())
	require.NoError(t, err)
	assert.Equal(t, "valid", strings.TrimSpace(out))

	_, err = run(t, "adaptor", "verify", "--presig", presig,
		"--pubkey", witness.PublicKey.String(), "--statement", witness.PublicKey.String())
	assert.Error(t, err)

	out, err = run(t, "adaptor", "adapt", "--presig", presig, "--key", witness.PrivateKey)
	require.NoError(t, err)
	sigHex := strings.TrimSpace(out)
	sig, err := hex.DecodeString(sigHex)
	require.NoError(t, err)

	// the adapted signature is the signer's agreement to withdraw
	got, err := crypto.RecoverAddress(timedwallet.DefaultWithdrawMessage, sig)
	require.NoError(t, err)
	assert.True(t, got.Equals(signer.Address))

	out, err = run(t, "adaptor", "extract", "--presig", presig,
		"--signature", sigHex, "--statement", witness.PublicKey.String())
	require.NoError(t, err)
	assert.Equal(t, witness.PrivateKey, strings.TrimSpace(out))

	_, err = run(t, "adaptor", "extract", "--presig", "{}",
		"--signature", sigHex, "--statement", witness.PublicKey.String())
	assert.Error(t, err)

	_, err = run(t, "sign", "--key", signer.PrivateKey, "--adaptor", "02ff")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	home := tempHome(t)
	conf := "db_backend = \"badger\"\ndb_dir = \"/var/lib/timedwallet\"\n"
	require.NoError(t, ioutil.WriteFile(filepath.Join(home, "config.toml"), []byte(conf), 0600))

	v := viper.New()
	start := newStartCmd(v)
	start.Flags().String(flagHome, "", "")
	start.Flags().String(flagLogLevel, "info", "")
	require.NoError(t, start.ParseFlags([]string{"--home", home, "--bind", "tcp://127.0.0.1:1234"}))

	require.NoError(t, loadConfig(v, start))
	assert.Equal(t, "badger", v.GetString(flagBackend))
	assert.Equal(t, "/var/lib/timedwallet", dataDir(v))
	assert.Equal(t, "tcp://127.0.0.1:1234", v.GetString(flagBind))
	assert.Equal(t, "info", v.GetString(flagLogLevel))
}
