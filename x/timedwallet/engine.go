package timedwallet

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/crypto"
)

// DefaultWithdrawMessage is the message participants sign to agree on a
// joint withdrawal when they have no reason to sign anything else.
var DefaultWithdrawMessage = crypto.Keccak256([]byte("Withdraw funds from TimedMultisigWallet"))

// SignerRecoverer returns the address of the key that produced a signature
// of the message.
type SignerRecoverer interface {
	Recover(message, signature []byte) (weave.Address, error)
}

var _ SignerRecoverer = crypto.PersonalSignRecoverer{}

// JointWithdraw closes the wallet on behalf of both participants. The caller
// must be one of them and the deadline must not be reached yet. A closed
// wallet always fails with ErrAlreadyWithdrawn. Signature A
// must be made over the message by participant A and signature B by
// participant B.
//
// On success the wallet is closed and the whole balance, that must be paid
// to the caller, is returned. On failure the wallet is not modified.
func (w *TimedWallet) JointWithdraw(
	now weave.UnixTime,
	caller weave.Address,
	message, sigA, sigB []byte,
	rec SignerRecoverer,
) (coin.Coin, error) {
	if !w.IsParticipant(caller) {
		return coin.Coin{}, ErrNotAuthorized
	}
	if w.Withdrawn {
		return coin.Coin{}, ErrAlreadyWithdrawn
	}
	if now >= w.Deadline {
		return coin.Coin{}, ErrTooLateForMultisig
	}
	if !signedBy(rec, message, sigA, w.ParticipantA) || !signedBy(rec, message, sigB, w.ParticipantB) {
		return coin.Coin{}, ErrInvalidSignatures
	}
	return w.close(), nil
}

// WithdrawAfterTimeout closes the wallet on behalf of the reclaimer once the
// deadline is reached. On success the whole balance, that must be paid to the
// reclaimer, is returned. On failure the wallet is not modified.
func (w *TimedWallet) WithdrawAfterTimeout(now weave.UnixTime, caller weave.Address) (coin.Coin, error) {
	if !caller.Equals(w.Reclaimer()) {
		return coin.Coin{}, ErrNotAuthorized
	}
	if w.Withdrawn {
		return coin.Coin{}, ErrAlreadyWithdrawn
	}
	if now < w.Deadline {
		return coin.Coin{}, ErrTooEarly
	}
	return w.close(), nil
}

// Reclaimer returns the participant that can withdraw after the deadline.
func (w *TimedWallet) Reclaimer() weave.Address {
	return w.ParticipantA
}

// IsParticipant returns true if given address is one of the participants.
// An empty address never is.
func (w *TimedWallet) IsParticipant(addr weave.Address) bool {
	if len(addr) == 0 {
		return false
	}
	return addr.Equals(w.ParticipantA) || addr.Equals(w.ParticipantB)
}

func (w *TimedWallet) close() coin.Coin {
	paid := w.Balance
	w.Balance = coin.NewCoin(0, 0, paid.Ticker)
	w.Withdrawn = true
	return paid
}

// signedBy returns true only if the signer of the message can be recovered
// and it is the expected one.
func signedBy(rec SignerRecoverer, message, sig []byte, want weave.Address) bool {
	got, err := rec.Recover(message, sig)
	if err != nil {
		return false
	}
	return got.Equals(want)
}
