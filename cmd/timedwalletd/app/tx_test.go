package timedwalletd

import (
	"encoding/json"
	"testing"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/weavetest"
	"github.com/iov-one/weave-timedwallet/x/sigs"
	"github.com/iov-one/weave-timedwallet/x/timedwallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxDecoder(t *testing.T) {
	key := weavetest.NewKey()
	tx := &Tx{Msg: &timedwallet.ReclaimMsg{
		Metadata: &weave.Metadata{Schema: 1},
		WalletID: weavetest.SequenceID(4),
	}}
	sig, err := sigs.SignTx(key, tx, "test-chain-1", 3)
	require.NoError(t, err)
	tx.Signatures = []*sigs.StdSignature{sig}

	raw, err := tx.Marshal()
	require.NoError(t, err)
	decoded, err := TxDecoder(raw)
	require.NoError(t, err)

	msg, err := decoded.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, tx.Msg, msg)
	assert.Equal(t, tx.Signatures, decoded.(*Tx).GetSignatures())

	// signatures are not part of the signed bytes
	want, err := tx.GetSignBytes()
	require.NoError(t, err)
	got, err := decoded.(*Tx).GetSignBytes()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTxDecoderErrors(t *testing.T) {
	cases := map[string]struct {
		raw     []byte
		wantErr *errors.Error
	}{
		"empty":   {raw: nil, wantErr: errors.ErrEmpty},
		"garbage": {raw: []byte{0xff, 0x01, 0x02}, wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if _, err := TxDecoder(tc.raw); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}

	if _, err := (&Tx{}).GetMsg(); !errors.ErrMsg.Is(err) {
		t.Fatalf("want msg error, got %+v", err)
	}
}

func TestGenInitOptions(t *testing.T) {
	owner := weavetest.NewCondition().Address()

	raw, err := GenInitOptions(owner, coin.NewCoin(1000, 0, "ETH"))
	require.NoError(t, err)
	var state struct {
		Cash         []json.RawMessage `json:"cash"`
		TimedWallets []json.RawMessage `json:"timedwallets"`
	}
	require.NoError(t, json.Unmarshal(raw, &state))
	assert.Len(t, state.Cash, 1)
	assert.Len(t, state.TimedWallets, 0)

	_, err = GenInitOptions(nil, coin.NewCoin(1, 0, "ETH"))
	assert.Error(t, err)
	_, err = GenInitOptions(owner, coin.NewCoin(1, 0, "eth"))
	assert.Error(t, err)
}
