package cash

import (
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/coin"
	"github.com/iov-one/weave-timedwallet/errors"
)

const (
	pathSendMsg = "cash/send"

	maxMemoSize int = 128
	maxRefSize  int = 64
)

// SendMsg moves coins from one wallet to another.
type SendMsg struct {
	Metadata *weave.Metadata `json:"metadata"`
	// Source is the sender. When not set the main signer pays.
	Source      weave.Address `json:"source"`
	Destination weave.Address `json:"destination"`
	Amount      *coin.Coin    `json:"amount"`
	Memo        string        `json:"memo,omitempty"`
	Ref         []byte        `json:"ref,omitempty"`
}

// Ensure we implement the Msg interface
var _ weave.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return pathSendMsg
}

// Validate makes sure that this is sensible
func (s *SendMsg) Validate() error {
	if err := s.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if coin.IsEmpty(s.Amount) || !s.Amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive SendMsg: %#v", s.Amount)
	}
	if err := s.Amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if s.Source != nil {
		if err := s.Source.Validate(); err != nil {
			return errors.Wrap(err, "source")
		}
	}
	if err := s.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if len(s.Memo) > maxMemoSize {
		return errors.Wrap(errors.ErrInput, "memo too long")
	}
	if len(s.Ref) > maxRefSize {
		return errors.Wrap(errors.ErrInput, "ref too long")
	}
	return nil
}
