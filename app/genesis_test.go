package app

import (
	"context"
	"testing"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/store/iavl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dummyKey = "dummy"

type dummyInit struct{}

func (dummyInit) FromGenesis(opts weave.Options, kv weave.KVStore) error {
	var value string
	if err := opts.ReadOptions(dummyKey, &value); err != nil {
		return err
	}
	return kv.Set([]byte(dummyKey), []byte(value))
}

type countInit struct {
	called int
}

func (c *countInit) FromGenesis(weave.Options, weave.KVStore) error {
	c.called++
	return nil
}

func TestLoadGenesis(t *testing.T) {
	cases := map[string]struct {
		file       string
		wantErr    *errors.Error
		wantChain  string
		wantCalled int
		wantValue  []byte
	}{
		"missing file": {
			file:    "testdata/no_such_file.json",
			wantErr: errors.ErrInput,
		},
		"valid genesis": {
			file:       "testdata/genesis.json",
			wantChain:  "test-chain-67",
			wantCalled: 1,
			wantValue:  []byte("secret"),
		},
		"initializer fails": {
			file:    "testdata/bad_genesis.json",
			wantErr: errors.ErrInput,
			// The chain id is stored before the initializers run.
			wantChain: "super-chain-22",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c := &countInit{}
			s, err := NewStoreApp("foo", iavl.NewMemCommitStore(), weave.NewQueryRouter(), context.Background())
			require.NoError(t, err)
			s.WithInit(weave.MultiInitializer{dummyInit{}, c})
			assert.Equal(t, "", s.GetChainID())

			err = s.LoadGenesis(tc.file)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, tc.wantChain, s.GetChainID())
			assert.Equal(t, tc.wantCalled, c.called)

			val, err := s.DeliverStore().Get([]byte(dummyKey))
			require.NoError(t, err)
			assert.Equal(t, tc.wantValue, val)
		})
	}
}

func TestGenesisIsLoadedOnce(t *testing.T) {
	s, err := NewStoreApp("foo", iavl.NewMemCommitStore(), weave.NewQueryRouter(), context.Background())
	require.NoError(t, err)
	require.NoError(t, s.LoadGenesis("testdata/genesis.json"))

	err = s.LoadGenesis("testdata/genesis.json")
	if !errors.ErrState.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}
