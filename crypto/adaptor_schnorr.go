package crypto

import (
	"math/big"

	"github.com/iov-one/weave-timedwallet/errors"
)

// SchnorrAdaptor implements adaptor signatures for Schnorr signatures
// s = k + H(R || P || m) x over secp256k1. Its signatures are not Ethereum
// recoverable and cannot authorize a withdrawal.
type SchnorrAdaptor struct{}

var _ AdaptorScheme = SchnorrAdaptor{}

func (SchnorrAdaptor) challenge(R, pub Point, message []byte) (*big.Int, error) {
	if len(message) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	return hashToScalar(R.uncompressed(), pub.uncompressed(), message), nil
}

// Sign returns a Schnorr signature of the message.
func (a SchnorrAdaptor) Sign(key *PrivateKey, message []byte) (*AdaptorSignature, error) {
	k, err := randScalar()
	if err != nil {
		return nil, err
	}
	R := Generator().Mul(k)
	e, err := a.challenge(R, key.PublicPoint(), message)
	if err != nil {
		return nil, err
	}
	s := modN(new(big.Int).Add(k, new(big.Int).Mul(e, key.scalar())))
	return &AdaptorSignature{R: R, S: s}, nil
}

// Verify checks s*G == R + e*P.
func (a SchnorrAdaptor) Verify(pub Point, message []byte, sig *AdaptorSignature) bool {
	if sig == nil || sig.S == nil || sig.R.IsInfinity() {
		return false
	}
	e, err := a.challenge(sig.R, pub, message)
	if err != nil {
		return false
	}
	return Generator().Mul(sig.S).Equal(sig.R.Add(pub.Mul(e)))
}

// PreSign returns s' = k + e*x with R' = k*G + T.
func (a SchnorrAdaptor) PreSign(key *PrivateKey, message []byte, statement Point) (*PreSignature, error) {
	if err := validStatement(statement); err != nil {
		return nil, err
	}
	k, err := randScalar()
	if err != nil {
		return nil, err
	}
	R := Generator().Mul(k).Add(statement)
	e, err := a.challenge(R, key.PublicPoint(), message)
	if err != nil {
		return nil, err
	}
	s := modN(new(big.Int).Add(k, new(big.Int).Mul(e, key.scalar())))
	return &PreSignature{R: R, S: s}, nil
}

// PreVerify checks s'*G == R' - T + e*P.
func (a SchnorrAdaptor) PreVerify(pub Point, message []byte, statement Point, pre *PreSignature) bool {
	if pre == nil || pre.S == nil || pre.R.IsInfinity() || validStatement(statement) != nil {
		return false
	}
	e, err := a.challenge(pre.R, pub, message)
	if err != nil {
		return false
	}
	return Generator().Mul(pre.S).Equal(pre.R.Sub(statement).Add(pub.Mul(e)))
}

// Adapt completes the pre-signature: s = s' + t.
func (SchnorrAdaptor) Adapt(pre *PreSignature, witness *PrivateKey) (*AdaptorSignature, error) {
	if pre == nil || pre.S == nil {
		return nil, errors.Wrap(errors.ErrInput, "pre-signature")
	}
	s := modN(new(big.Int).Add(pre.S, witness.scalar()))
	return &AdaptorSignature{R: pre.R, S: s}, nil
}

// Extract returns the witness t = s - s'.
func (SchnorrAdaptor) Extract(sig *AdaptorSignature, pre *PreSignature, statement Point) (*PrivateKey, error) {
	if sig == nil || pre == nil || sig.S == nil || pre.S == nil {
		return nil, errors.Wrap(errors.ErrInput, "signature")
	}
	t := modN(new(big.Int).Sub(sig.S, pre.S))
	if t.Sign() == 0 || !Generator().Mul(t).Equal(statement) {
		return nil, errors.Wrap(errors.ErrInput, "signature was not adapted from this pre-signature")
	}
	return privateKeyFromScalar(t)
}
