package sigs

import (
	"github.com/iov-one/weave-timedwallet/crypto"
	"github.com/iov-one/weave-timedwallet/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the sigs.Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the
	// transaction without its signatures.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signatures of everyone who signed the tx.
	GetSignatures() []*StdSignature
}

// StdSignature is a recoverable secp256k1 signature together with the
// sequence it was created for. The signer is not declared, it is recovered
// from the signature.
type StdSignature struct {
	Sequence  int64  `json:"sequence"`
	Signature []byte `json:"signature"`
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if len(s.Signature) != crypto.SignatureLength {
		return errors.Wrapf(errors.ErrUnauthorized, "signature must be %d bytes", crypto.SignatureLength)
	}
	return nil
}
