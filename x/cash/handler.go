package cash

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/x"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/libs/common"
)

const sendTxCost int64 = 100

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r weave.Registry, auth x.Authenticator, control Controller) {
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
}

// RegisterQuery will register this bucket as "/wallets"
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("wallets", qr)
}

// RegisterCodec registers the messages of this package with the transaction
// codec.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&SendMsg{}, "cash/SendMsg", nil)
}

// SendHandler will handle sending coins
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ weave.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h SendHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the tokens from source to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, src, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(db, src, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	res := &weave.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte("cash.sender"), Value: []byte(src.String())},
			{Key: []byte("cash.recipient"), Value: []byte(msg.Destination.String())},
		},
	}
	return res, nil
}

func (h SendHandler) validate(ctx weave.Context, tx weave.Tx) (*SendMsg, weave.Address, error) {
	var msg SendMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	src := msg.Source
	if src == nil {
		src = x.MainSignerAddress(ctx, h.auth)
	}
	// Make sure we have permission from the source.
	if src == nil || !h.auth.HasAddress(ctx, src) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &msg, src, nil
}
