package timedwallet

import (
	"fmt"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/crypto"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/x"
	"github.com/iov-one/weave-timedwallet/x/cash"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	// pay wallet cost up-front
	createWalletCost  int64 = 300
	withdrawCost      int64 = 0
	reclaimWalletCost int64 = 0
)

// RegisterRoutes will instantiate and register all handlers in this
// package. Signers are recovered with the Ethereum personal message
// convention.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, bank cash.CoinMover) {
	bucket := NewBucket()
	r.Handle(&CreateMsg{}, NewCreateHandler(auth, bucket, bank))
	r.Handle(&JointWithdrawMsg{}, NewJointWithdrawHandler(auth, bucket, bank, crypto.PersonalSignRecoverer{}))
	r.Handle(&ReclaimMsg{}, NewReclaimHandler(auth, bucket, bank))
}

// RegisterQuery will register this bucket as "/timedwallets"
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("timedwallets", qr)
}

// RegisterCodec registers the messages of this package with the transaction
// codec.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&CreateMsg{}, "timedwallet/CreateMsg", nil)
	cdc.RegisterConcrete(&JointWithdrawMsg{}, "timedwallet/JointWithdrawMsg", nil)
	cdc.RegisterConcrete(&ReclaimMsg{}, "timedwallet/ReclaimMsg", nil)
}

// CreateHandler opens new wallets.
type CreateHandler struct {
	auth   x.Authenticator
	bucket Bucket
	bank   cash.CoinMover
}

var _ weave.Handler = CreateHandler{}

// NewCreateHandler returns a handler for CreateMsg.
func NewCreateHandler(auth x.Authenticator, bucket Bucket, bank cash.CoinMover) CreateHandler {
	return CreateHandler{auth: auth, bucket: bucket, bank: bank}
}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h CreateHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createWalletCost}, nil
}

// Deliver stores the wallet and moves the deposit from the source to the
// wallet account. The wallet ID is returned as the result data.
func (h CreateHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, src, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}

	id, err := h.bucket.NextID(db)
	if err != nil {
		return nil, errors.Wrap(err, "cannot acquire ID")
	}
	wallet := NewTimedWallet(id, msg.ParticipantA, msg.ParticipantB, msg.Deadline, *msg.Amount, msg.Memo)
	if err := h.bucket.Put(db, id, wallet); err != nil {
		return nil, errors.Wrap(err, "cannot store wallet")
	}
	if err := h.bank.MoveCoins(db, src, wallet.Address, *msg.Amount); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}

	res := &weave.DeliverResult{
		Data: id,
		Tags: []common.KVPair{
			{Key: []byte("timedwallet.id"), Value: []byte(hexID(id))},
			{Key: []byte("timedwallet.address"), Value: []byte(wallet.Address.String())},
		},
	}
	return res, nil
}

func (h CreateHandler) validate(ctx weave.Context, tx weave.Tx) (*CreateMsg, weave.Address, error) {
	var msg CreateMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	if msg.Deadline <= now {
		return nil, nil, errors.Wrap(errors.ErrInput, "deadline in the past")
	}
	src := msg.Source
	if src == nil {
		src = x.MainSignerAddress(ctx, h.auth)
	}
	if src == nil || !h.auth.HasAddress(ctx, src) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "source signature missing")
	}
	return &msg, src, nil
}

// JointWithdrawHandler pays the wallet balance to a participant when both
// participants agreed to it.
type JointWithdrawHandler struct {
	auth    x.Authenticator
	bucket  Bucket
	bank    cash.CoinMover
	signers SignerRecoverer
}

var _ weave.Handler = JointWithdrawHandler{}

// NewJointWithdrawHandler returns a handler for JointWithdrawMsg.
func NewJointWithdrawHandler(auth x.Authenticator, bucket Bucket, bank cash.CoinMover, signers SignerRecoverer) JointWithdrawHandler {
	return JointWithdrawHandler{auth: auth, bucket: bucket, bank: bank, signers: signers}
}

// Check runs the withdrawal against a copy of the wallet, without moving
// any funds.
func (h JointWithdrawHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.withdraw(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: withdrawCost}, nil
}

// Deliver closes the wallet and pays the balance to the sender.
func (h JointWithdrawHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, wallet, payee, err := h.withdraw(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return payout(ctx, db, h.bucket, h.bank, msg.WalletID, wallet, payee)
}

func (h JointWithdrawHandler) withdraw(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*JointWithdrawMsg, *TimedWallet, payment, error) {
	var msg JointWithdrawMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, payment{}, errors.Wrap(err, "load msg")
	}
	wallet, err := h.bucket.GetWallet(db, msg.WalletID)
	if err != nil {
		return nil, nil, payment{}, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, payment{}, err
	}
	caller := x.MainSignerAddress(ctx, h.auth)
	amount, err := wallet.JointWithdraw(now, caller, msg.Message, msg.SignatureA, msg.SignatureB, h.signers)
	if err != nil {
		return nil, nil, payment{}, err
	}
	return &msg, wallet, payment{to: caller, amount: amount}, nil
}

// ReclaimHandler pays the wallet balance back to the reclaimer after the
// deadline.
type ReclaimHandler struct {
	auth   x.Authenticator
	bucket Bucket
	bank   cash.CoinMover
}

var _ weave.Handler = ReclaimHandler{}

// NewReclaimHandler returns a handler for ReclaimMsg.
func NewReclaimHandler(auth x.Authenticator, bucket Bucket, bank cash.CoinMover) ReclaimHandler {
	return ReclaimHandler{auth: auth, bucket: bucket, bank: bank}
}

// Check runs the withdrawal against a copy of the wallet, without moving
// any funds.
func (h ReclaimHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.reclaim(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: reclaimWalletCost}, nil
}

// Deliver closes the wallet and pays the balance to the reclaimer.
func (h ReclaimHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, wallet, payee, err := h.reclaim(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return payout(ctx, db, h.bucket, h.bank, msg.WalletID, wallet, payee)
}

func (h ReclaimHandler) reclaim(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ReclaimMsg, *TimedWallet, payment, error) {
	var msg ReclaimMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, payment{}, errors.Wrap(err, "load msg")
	}
	wallet, err := h.bucket.GetWallet(db, msg.WalletID)
	if err != nil {
		return nil, nil, payment{}, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, payment{}, err
	}
	caller := x.MainSignerAddress(ctx, h.auth)
	amount, err := wallet.WithdrawAfterTimeout(now, caller)
	if err != nil {
		return nil, nil, payment{}, err
	}
	return &msg, wallet, payment{to: caller, amount: amount}, nil
}

type payment struct {
	to     weave.Address
	amount coin.Coin
}

// payout stores the closed wallet and moves the released funds to the payee.
func payout(
	ctx weave.Context,
	db weave.KVStore,
	bucket Bucket,
	bank cash.CoinMover,
	id []byte,
	wallet *TimedWallet,
	p payment,
) (*weave.DeliverResult, error) {
	if err := bucket.Put(db, id, wallet); err != nil {
		return nil, errors.Wrap(err, "cannot store wallet")
	}
	if err := bank.MoveCoins(db, wallet.Address, p.to, p.amount); err != nil {
		return nil, errors.Wrap(err, "payout")
	}

	weave.GetLogger(ctx).Info("timedwallet withdrawn",
		"wallet", hexID(id),
		"recipient", p.to.String(),
		"amount", p.amount.String())

	res := &weave.DeliverResult{
		Log: "paid " + p.amount.String() + " to " + p.to.String(),
		Tags: []common.KVPair{
			{Key: []byte("timedwallet.id"), Value: []byte(hexID(id))},
			{Key: []byte("timedwallet.recipient"), Value: []byte(p.to.String())},
		},
	}
	return res, nil
}

func blockNow(ctx weave.Context) (weave.UnixTime, error) {
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrHuman, "block time: %s", err)
	}
	return weave.AsUnixTime(now), nil
}

func hexID(id []byte) string {
	return fmt.Sprintf("%X", id)
}
