package sigs

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/x"
	amino "github.com/tendermint/go-amino"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r weave.Registry, auth x.Authenticator) {
	r.Handle(&BumpSequenceMsg{}, &bumpSequenceHandler{
		b:    NewBucket(),
		auth: auth,
	})
}

// RegisterCodec registers the messages of this package with the transaction
// codec.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&BumpSequenceMsg{}, "sigs/BumpSequenceMsg", nil)
}

type bumpSequenceHandler struct {
	auth x.Authenticator
	b    Bucket
}

var _ weave.Handler = (*bumpSequenceHandler)(nil)

func (h *bumpSequenceHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h *bumpSequenceHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	signer, user, msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	// Each transaction processing bumps the sequence by one. Increment
	// must represent the total increment value.
	incr := int64(msg.Increment) - 1
	if incr == 0 {
		return &weave.DeliverResult{}, nil
	}
	user.Sequence += incr
	if err := h.b.Put(db, signer, user); err != nil {
		return nil, errors.Wrap(err, "save user")
	}
	return &weave.DeliverResult{}, nil
}

func (h *bumpSequenceHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (weave.Address, *UserData, *BumpSequenceMsg, error) {
	var msg BumpSequenceMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}

	signer := x.MainSignerAddress(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	var user UserData
	if err := h.b.One(db, signer, &user); err != nil {
		return nil, nil, nil, errors.Wrap(err, "no sequence")
	}
	if user.Sequence+int64(msg.Increment) > maxSequenceValue {
		return nil, nil, nil, errors.Wrap(errors.ErrOverflow, "user sequence")
	}
	return signer, &user, &msg, nil
}
