package timedwallet

import (
	"context"
	"testing"
	"time"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/crypto"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/store"
	"github.com/iov-one/weave-timedwallet/weavetest"
	"github.com/iov-one/weave-timedwallet/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// env is a store with a single funded wallet, created by alice, that
// alice and bob share.
type env struct {
	db      weave.KVStore
	bank    cash.BaseController
	router  map[string]weave.Handler
	auth    *weavetest.Auth
	alice   *crypto.PrivateKey
	bob     *crypto.PrivateKey
	mallory *crypto.PrivateKey
	id      []byte
	wallet  weave.Address
	created weave.UnixTime
}

var tenETH = coin.NewCoin(10, 0, "ETH")

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		db:      store.MemStore(),
		bank:    cash.NewController(cash.NewBucket()),
		auth:    &weavetest.Auth{},
		alice:   weavetest.NewKey(),
		bob:     weavetest.NewKey(),
		mallory: weavetest.NewKey(),
		created: deadline - 3600,
	}
	bucket := NewBucket()
	e.router = map[string]weave.Handler{
		pathCreateMsg:        NewCreateHandler(e.auth, bucket, e.bank),
		pathJointWithdrawMsg: NewJointWithdrawHandler(e.auth, bucket, e.bank, crypto.PersonalSignRecoverer{}),
		pathReclaimMsg:       NewReclaimHandler(e.auth, bucket, e.bank),
	}
	require.NoError(t, e.bank.CoinMint(e.db, e.alice.Address(), coin.NewCoin(50, 0, "ETH")))

	res, err := e.deliver(e.created, e.alice, &CreateMsg{
		Metadata:     &weave.Metadata{Schema: 1},
		ParticipantA: e.alice.Address(),
		ParticipantB: e.bob.Address(),
		Deadline:     deadline,
		Amount:       coin.NewCoinp(10, 0, "ETH"),
	})
	require.NoError(t, err)
	e.id = res.Data
	e.wallet = Condition(e.id).Address()
	return e
}

func (e *env) ctx(now weave.UnixTime) weave.Context {
	return weave.WithBlockTime(context.Background(), now.Time())
}

func (e *env) check(now weave.UnixTime, signer *crypto.PrivateKey, msg weave.Msg) error {
	e.sign(signer)
	_, err := e.router[msg.Path()].Check(e.ctx(now), e.db, &weavetest.Tx{Msg: msg})
	return err
}

func (e *env) deliver(now weave.UnixTime, signer *crypto.PrivateKey, msg weave.Msg) (*weave.DeliverResult, error) {
	e.sign(signer)
	return e.router[msg.Path()].Deliver(e.ctx(now), e.db, &weavetest.Tx{Msg: msg})
}

func (e *env) sign(signer *crypto.PrivateKey) {
	e.auth.Signer = nil
	if signer != nil {
		e.auth.Signer = signer.Condition()
	}
}

func (e *env) balance(t *testing.T, addr weave.Address) coin.Coin {
	t.Helper()
	coins, err := e.bank.Balance(e.db, addr)
	require.NoError(t, err)
	return coins.AmountOf("ETH")
}

func (e *env) load(t *testing.T) *TimedWallet {
	t.Helper()
	w, err := NewBucket().GetWallet(e.db, e.id)
	require.NoError(t, err)
	return w
}

func (e *env) jointWithdraw(t *testing.T, sigA, sigB *crypto.PrivateKey) *JointWithdrawMsg {
	t.Helper()
	return &JointWithdrawMsg{
		Metadata:   &weave.Metadata{Schema: 1},
		WalletID:   e.id,
		Message:    DefaultWithdrawMessage,
		SignatureA: mustSign(t, sigA, DefaultWithdrawMessage),
		SignatureB: mustSign(t, sigB, DefaultWithdrawMessage),
	}
}

func (e *env) reclaim() *ReclaimMsg {
	return &ReclaimMsg{
		Metadata: &weave.Metadata{Schema: 1},
		WalletID: e.id,
	}
}

func TestCreateWallet(t *testing.T) {
	e := newEnv(t)

	w := e.load(t)
	assert.False(t, w.Withdrawn)
	assert.True(t, w.Balance.Equals(tenETH))
	assert.True(t, w.ParticipantA.Equals(e.alice.Address()))
	assert.True(t, w.ParticipantB.Equals(e.bob.Address()))
	assert.Equal(t, deadline, w.Deadline)

	assert.True(t, e.balance(t, e.wallet).Equals(tenETH))
	assert.True(t, e.balance(t, e.alice.Address()).Equals(coin.NewCoin(40, 0, "ETH")))
}

func TestCreateWalletErrors(t *testing.T) {
	alice := weavetest.NewKey()
	bob := weavetest.NewKey()

	cases := map[string]struct {
		signer  *crypto.PrivateKey
		now     weave.UnixTime
		msg     *CreateMsg
		wantErr *errors.Error
	}{
		"deadline already reached": {
			signer: alice,
			now:    deadline,
			msg: &CreateMsg{
				Metadata:     &weave.Metadata{Schema: 1},
				ParticipantA: alice.Address(),
				ParticipantB: bob.Address(),
				Deadline:     deadline,
				Amount:       coin.NewCoinp(1, 0, "ETH"),
			},
			wantErr: errors.ErrInput,
		},
		"source did not sign": {
			signer: bob,
			now:    deadline - 10,
			msg: &CreateMsg{
				Metadata:     &weave.Metadata{Schema: 1},
				Source:       alice.Address(),
				ParticipantA: alice.Address(),
				ParticipantB: bob.Address(),
				Deadline:     deadline,
				Amount:       coin.NewCoinp(1, 0, "ETH"),
			},
			wantErr: errors.ErrUnauthorized,
		},
		"unsigned": {
			now: deadline - 10,
			msg: &CreateMsg{
				Metadata:     &weave.Metadata{Schema: 1},
				ParticipantA: alice.Address(),
				ParticipantB: bob.Address(),
				Deadline:     deadline,
				Amount:       coin.NewCoinp(1, 0, "ETH"),
			},
			wantErr: errors.ErrUnauthorized,
		},
		"not enough funds": {
			signer: bob,
			now:    deadline - 10,
			msg: &CreateMsg{
				Metadata:     &weave.Metadata{Schema: 1},
				ParticipantA: alice.Address(),
				ParticipantB: bob.Address(),
				Deadline:     deadline,
				Amount:       coin.NewCoinp(1, 0, "ETH"),
			},
			wantErr: errors.ErrInsufficientAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			bank := cash.NewController(cash.NewBucket())
			require.NoError(t, bank.CoinMint(db, alice.Address(), coin.NewCoin(5, 0, "ETH")))

			auth := &weavetest.Auth{}
			if tc.signer != nil {
				auth.Signer = tc.signer.Condition()
			}
			h := NewCreateHandler(auth, NewBucket(), bank)
			ctx := weave.WithBlockTime(context.Background(), tc.now.Time())
			tx := &weavetest.Tx{Msg: tc.msg}

			_, err := h.Deliver(ctx, db, tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
		})
	}
}

func TestCreateWalletWithoutBlockTime(t *testing.T) {
	alice := weavetest.NewKey()
	h := NewCreateHandler(&weavetest.Auth{Signer: alice.Condition()}, NewBucket(), cash.NewController(cash.NewBucket()))
	tx := &weavetest.Tx{Msg: &CreateMsg{
		Metadata:     &weave.Metadata{Schema: 1},
		ParticipantA: alice.Address(),
		ParticipantB: weavetest.NewCondition().Address(),
		Deadline:     deadline,
		Amount:       coin.NewCoinp(1, 0, "ETH"),
	}}

	var err error
	assert.NotPanics(t, func() {
		_, err = h.Check(context.Background(), store.MemStore(), tx)
	})
	if !errors.ErrHuman.Is(err) {
		t.Fatalf("want missing block time error, got %+v", err)
	}
}

func TestJointWithdrawHandler(t *testing.T) {
	e := newEnv(t)
	msg := e.jointWithdraw(t, e.alice, e.bob)
	now := e.created + 60

	require.NoError(t, e.check(now, e.bob, msg))
	res, err := e.deliver(now, e.bob, msg)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Log)
	assert.Len(t, res.Tags, 2)
	assert.Equal(t, []byte(e.bob.Address().String()), res.Tags[1].Value)

	assert.True(t, e.balance(t, e.wallet).IsZero())
	assert.True(t, e.balance(t, e.bob.Address()).Equals(tenETH))

	w := e.load(t)
	assert.True(t, w.Withdrawn)
	assert.True(t, w.Balance.IsZero())

	// Replaying the same authorization must fail.
	if err := e.check(now, e.bob, msg); !ErrAlreadyWithdrawn.Is(err) {
		t.Fatalf("want already withdrawn check error, got %+v", err)
	}
	if _, err := e.deliver(now, e.bob, msg); !ErrAlreadyWithdrawn.Is(err) {
		t.Fatalf("want already withdrawn error, got %+v", err)
	}
	if _, err := e.deliver(deadline, e.alice, e.reclaim()); !ErrAlreadyWithdrawn.Is(err) {
		t.Fatalf("want already withdrawn error, got %+v", err)
	}
	assert.True(t, e.balance(t, e.bob.Address()).Equals(tenETH))
}

func TestWithdrawHandlerErrors(t *testing.T) {
	cases := map[string]struct {
		now     func(e *env) weave.UnixTime
		signer  func(e *env) *crypto.PrivateKey
		msg     func(t *testing.T, e *env) weave.Msg
		wantErr *errors.Error
	}{
		"non participant sender": {
			now:    func(e *env) weave.UnixTime { return e.created + 1 },
			signer: func(e *env) *crypto.PrivateKey { return e.mallory },
			msg: func(t *testing.T, e *env) weave.Msg {
				return e.jointWithdraw(t, e.alice, e.bob)
			},
			wantErr: ErrNotAuthorized,
		},
		"unsigned transaction": {
			now:    func(e *env) weave.UnixTime { return e.created + 1 },
			signer: func(e *env) *crypto.PrivateKey { return nil },
			msg: func(t *testing.T, e *env) weave.Msg {
				return e.jointWithdraw(t, e.alice, e.bob)
			},
			wantErr: ErrNotAuthorized,
		},
		"after the timeout": {
			now:    func(e *env) weave.UnixTime { return e.created + 3601 },
			signer: func(e *env) *crypto.PrivateKey { return e.bob },
			msg: func(t *testing.T, e *env) weave.Msg {
				return e.jointWithdraw(t, e.alice, e.bob)
			},
			wantErr: ErrTooLateForMultisig,
		},
		"signed by an unrelated key": {
			now:    func(e *env) weave.UnixTime { return e.created + 1 },
			signer: func(e *env) *crypto.PrivateKey { return e.bob },
			msg: func(t *testing.T, e *env) weave.Msg {
				return e.jointWithdraw(t, e.mallory, e.mallory)
			},
			wantErr: ErrInvalidSignatures,
		},
		"unknown wallet": {
			now:    func(e *env) weave.UnixTime { return e.created + 1 },
			signer: func(e *env) *crypto.PrivateKey { return e.bob },
			msg: func(t *testing.T, e *env) weave.Msg {
				msg := e.jointWithdraw(t, e.alice, e.bob)
				msg.WalletID = weavetest.SequenceID(42)
				return msg
			},
			wantErr: errors.ErrNotFound,
		},
		"reclaim before the timeout": {
			now:    func(e *env) weave.UnixTime { return e.created + 1 },
			signer: func(e *env) *crypto.PrivateKey { return e.alice },
			msg: func(t *testing.T, e *env) weave.Msg {
				return e.reclaim()
			},
			wantErr: ErrTooEarly,
		},
		"reclaim by participant b": {
			now:    func(e *env) weave.UnixTime { return deadline },
			signer: func(e *env) *crypto.PrivateKey { return e.bob },
			msg: func(t *testing.T, e *env) weave.Msg {
				return e.reclaim()
			},
			wantErr: ErrNotAuthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)
			msg := tc.msg(t, e)
			now := tc.now(e)

			if err := e.check(now, tc.signer(e), msg); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			if _, err := e.deliver(now, tc.signer(e), msg); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}

			// A refused withdrawal changes nothing.
			w := e.load(t)
			assert.False(t, w.Withdrawn)
			assert.True(t, w.Balance.Equals(tenETH))
			assert.True(t, e.balance(t, e.wallet).Equals(tenETH))
		})
	}
}

func TestReclaimHandler(t *testing.T) {
	e := newEnv(t)
	later := e.created.Add(time.Hour + time.Second)

	require.NoError(t, e.check(later, e.alice, e.reclaim()))
	_, err := e.deliver(later, e.alice, e.reclaim())
	require.NoError(t, err)

	assert.True(t, e.balance(t, e.wallet).IsZero())
	assert.True(t, e.balance(t, e.alice.Address()).Equals(coin.NewCoin(50, 0, "ETH")))

	if _, err := e.deliver(later, e.alice, e.reclaim()); !ErrAlreadyWithdrawn.Is(err) {
		t.Fatalf("want already withdrawn error, got %+v", err)
	}
	assert.True(t, e.balance(t, e.alice.Address()).Equals(coin.NewCoin(50, 0, "ETH")))
}

func TestReclaimAtTheDeadline(t *testing.T) {
	e := newEnv(t)

	// At the deadline the joint path is closed and reclaim is open.
	if _, err := e.deliver(deadline, e.bob, e.jointWithdraw(t, e.alice, e.bob)); !ErrTooLateForMultisig.Is(err) {
		t.Fatalf("want too late error, got %+v", err)
	}
	if _, err := e.deliver(deadline, e.alice, e.reclaim()); err != nil {
		t.Fatalf("cannot reclaim: %+v", err)
	}
}
