package timedwalletd

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/x/cash"
	"github.com/iov-one/weave-timedwallet/x/sigs"
	"github.com/iov-one/weave-timedwallet/x/timedwallet"
	amino "github.com/tendermint/go-amino"
)

// MakeCodec returns the codec that all transactions of this application are
// serialized with. Every message type must be registered here.
func MakeCodec() *amino.Codec {
	cdc := amino.NewCodec()
	cdc.RegisterInterface((*weave.Msg)(nil), nil)
	sigs.RegisterCodec(cdc)
	cash.RegisterCodec(cdc)
	timedwallet.RegisterCodec(cdc)
	cdc.Seal()
	return cdc
}

var cdc = MakeCodec()

// Tx carries a single message together with the signatures authorizing it.
type Tx struct {
	Msg        weave.Msg            `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures"`
}

var _ weave.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// GetMsg returns the message of the transaction.
func (tx *Tx) GetMsg() (weave.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return tx.Msg, nil
}

// GetSignatures returns the signatures of the transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the serialized transaction without its signatures.
// Signatures must never sign each other.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Msg: tx.Msg}
	return unsigned.Marshal()
}

// Marshal serializes the transaction.
func (tx *Tx) Marshal() ([]byte, error) {
	raw, err := cdc.MarshalBinaryBare(tx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot encode transaction: %s", err)
	}
	return raw, nil
}

// Unmarshal loads the transaction from its serialized form.
func (tx *Tx) Unmarshal(raw []byte) error {
	if len(raw) == 0 {
		return errors.Wrap(errors.ErrEmpty, "transaction")
	}
	if err := cdc.UnmarshalBinaryBare(raw, tx); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot decode transaction: %s", err)
	}
	return nil
}

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(raw []byte) (weave.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(raw); err != nil {
		return nil, err
	}
	return tx, nil
}
