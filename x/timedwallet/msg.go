package timedwallet

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/orm"
)

const (
	pathCreateMsg        = "timedwallet/create"
	pathJointWithdrawMsg = "timedwallet/joint_withdraw"
	pathReclaimMsg       = "timedwallet/reclaim"

	maxMessageSize int = 1024
)

// CreateMsg opens a new wallet funded by the source.
type CreateMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	// Source pays the deposit. When not set the main signer pays.
	Source       weave.Address  `json:"source"`
	ParticipantA weave.Address  `json:"participant_a"`
	ParticipantB weave.Address  `json:"participant_b"`
	Deadline     weave.UnixTime `json:"deadline"`
	Amount       *coin.Coin     `json:"amount"`
	Memo         string         `json:"memo,omitempty"`
}

var _ weave.Msg = (*CreateMsg)(nil)

// Path returns the routing path for this message
func (CreateMsg) Path() string {
	return pathCreateMsg
}

// Validate makes sure that this is sensible
func (m *CreateMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Source != nil {
		if err := m.Source.Validate(); err != nil {
			return errors.Wrap(err, "source")
		}
	}
	if err := m.ParticipantA.Validate(); err != nil {
		return errors.Wrap(err, "participant a")
	}
	if err := m.ParticipantB.Validate(); err != nil {
		return errors.Wrap(err, "participant b")
	}
	if m.ParticipantA.Equals(m.ParticipantB) {
		return errors.Wrap(errors.ErrInput, "participants must be distinct")
	}
	if m.Deadline == 0 {
		return errors.Wrap(errors.ErrInput, "deadline is required")
	}
	if err := m.Deadline.Validate(); err != nil {
		return errors.Wrap(err, "deadline")
	}
	if coin.IsEmpty(m.Amount) || !m.Amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "deposit must be positive")
	}
	if err := m.Amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if len(m.Memo) > maxMemoSize {
		return errors.Wrap(errors.ErrInput, "memo too long")
	}
	return nil
}

// JointWithdrawMsg pays the whole wallet balance to the sender, who must be
// one of the participants. Both participants must have signed the message.
type JointWithdrawMsg struct {
	Metadata   *weave.Metadata `json:"metadata"`
	WalletID   []byte          `json:"wallet_id"`
	Message    []byte          `json:"message"`
	SignatureA []byte          `json:"signature_a"`
	SignatureB []byte          `json:"signature_b"`
}

var _ weave.Msg = (*JointWithdrawMsg)(nil)

// Path returns the routing path for this message
func (JointWithdrawMsg) Path() string {
	return pathJointWithdrawMsg
}

// Validate checks the shape of the message only. Signatures are verified
// against the wallet by the handler.
func (m *JointWithdrawMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	if len(m.Message) > maxMessageSize {
		return errors.Wrap(errors.ErrInput, "message too long")
	}
	return nil
}

// ReclaimMsg pays the whole wallet balance back to the reclaimer once the
// deadline is reached.
type ReclaimMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	WalletID []byte          `json:"wallet_id"`
}

var _ weave.Msg = (*ReclaimMsg)(nil)

// Path returns the routing path for this message
func (ReclaimMsg) Path() string {
	return pathReclaimMsg
}

// Validate makes sure that this is sensible
func (m *ReclaimMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	return nil
}
