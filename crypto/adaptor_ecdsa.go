package crypto

import (
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/weave-timedwallet/errors"
)

// ECDSAAdaptor implements adaptor signatures for ECDSA over the personal
// message hash. An adapted signature is an ordinary ECDSA signature, so
// Encode turns it into a recoverable personal signature.
type ECDSAAdaptor struct{}

var _ AdaptorScheme = ECDSAAdaptor{}

func (ECDSAAdaptor) digest(message []byte) (*big.Int, error) {
	if len(message) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	return modN(new(big.Int).SetBytes(PersonalHash(message))), nil
}

// Sign returns an ECDSA signature of the message.
func (a ECDSAAdaptor) Sign(key *PrivateKey, message []byte) (*AdaptorSignature, error) {
	e, err := a.digest(message)
	if err != nil {
		return nil, err
	}
	for {
		k, err := randScalar()
		if err != nil {
			return nil, err
		}
		R := Generator().Mul(k)
		s, ok := ecdsaS(k, e, modN(R.X), key.scalar())
		if ok {
			return &AdaptorSignature{R: R, S: s}, nil
		}
	}
}

// Verify checks the signature against the public key.
func (a ECDSAAdaptor) Verify(pub Point, message []byte, sig *AdaptorSignature) bool {
	if sig == nil || !validScalar(sig.S) || sig.R.IsInfinity() {
		return false
	}
	e, err := a.digest(message)
	if err != nil {
		return false
	}
	r := modN(sig.R.X)
	w, err := invN(sig.S)
	if err != nil || r.Sign() == 0 {
		return false
	}
	q := Generator().Mul(new(big.Int).Mul(e, w)).Add(pub.Mul(new(big.Int).Mul(r, w)))
	return !q.IsInfinity() && modN(q.X).Cmp(r) == 0
}

// PreSign returns a pre-signature with R' = k*T and s' = k^-1 (e + r'x),
// together with Z = x*T and a proof that Z is built with the signing key.
func (a ECDSAAdaptor) PreSign(key *PrivateKey, message []byte, statement Point) (*PreSignature, error) {
	if err := validStatement(statement); err != nil {
		return nil, err
	}
	e, err := a.digest(message)
	if err != nil {
		return nil, err
	}
	x := key.scalar()
	for {
		k, err := randScalar()
		if err != nil {
			return nil, err
		}
		R := statement.Mul(k)
		s, ok := ecdsaS(k, e, modN(R.X), x)
		if !ok {
			continue
		}
		z := statement.Mul(x)
		proof, err := proveDLEQ(x, key.PublicPoint(), statement, z)
		if err != nil {
			return nil, err
		}
		return &PreSignature{R: R, S: s, Z: &z, Proof: proof}, nil
	}
}

// PreVerify checks that the pre-signature adapts, with the witness of the
// statement, into a valid signature of the public key.
func (a ECDSAAdaptor) PreVerify(pub Point, message []byte, statement Point, pre *PreSignature) bool {
	if pre == nil || pre.Z == nil || !validScalar(pre.S) || pre.R.IsInfinity() {
		return false
	}
	if validStatement(statement) != nil {
		return false
	}
	e, err := a.digest(message)
	if err != nil {
		return false
	}
	r := modN(pre.R.X)
	w, err := invN(pre.S)
	if err != nil || r.Sign() == 0 {
		return false
	}
	q := statement.Mul(new(big.Int).Mul(e, w)).Add(pre.Z.Mul(new(big.Int).Mul(r, w)))
	if q.IsInfinity() || modN(q.X).Cmp(r) != 0 {
		return false
	}
	return verifyDLEQ(pub, *pre.Z, statement, pre.Proof)
}

// Adapt completes the pre-signature: s = s' * t^-1.
func (ECDSAAdaptor) Adapt(pre *PreSignature, witness *PrivateKey) (*AdaptorSignature, error) {
	if pre == nil || !validScalar(pre.S) {
		return nil, errors.Wrap(errors.ErrInput, "pre-signature")
	}
	tInv, err := invN(witness.scalar())
	if err != nil {
		return nil, err
	}
	s := modN(new(big.Int).Mul(pre.S, tInv))
	return &AdaptorSignature{R: pre.R, S: s}, nil
}

// Extract returns the witness t = s' * s^-1. The signature may have been
// normalized to the lower s value, so both t and -t are tried against the
// statement.
func (ECDSAAdaptor) Extract(sig *AdaptorSignature, pre *PreSignature, statement Point) (*PrivateKey, error) {
	if sig == nil || pre == nil || !validScalar(sig.S) || !validScalar(pre.S) {
		return nil, errors.Wrap(errors.ErrInput, "signature")
	}
	sInv, err := invN(sig.S)
	if err != nil {
		return nil, err
	}
	t := modN(new(big.Int).Mul(pre.S, sInv))
	for _, c := range []*big.Int{t, new(big.Int).Sub(secp256k1N, t)} {
		if Generator().Mul(c).Equal(statement) {
			return privateKeyFromScalar(c)
		}
	}
	return nil, errors.Wrap(errors.ErrInput, "signature was not adapted from this pre-signature")
}

// Encode returns the signature as a 65 bytes personal signature [R || S || V]
// with a low S and V set to 27 or 28.
func (ECDSAAdaptor) Encode(sig *AdaptorSignature) ([]byte, error) {
	if sig == nil || !validScalar(sig.S) || sig.R.IsInfinity() {
		return nil, errors.Wrap(errors.ErrInput, "signature")
	}
	if sig.R.X.Cmp(secp256k1N) >= 0 {
		return nil, errors.Wrap(errors.ErrInput, "nonce point cannot be encoded")
	}
	s := new(big.Int).Set(sig.S)
	v := byte(sig.R.Y.Bit(0))
	if s.Cmp(secp256k1HalfN) > 0 {
		s.Sub(secp256k1N, s)
		v ^= 1
	}
	out := make([]byte, SignatureLength)
	sig.R.X.FillBytes(out[:32])
	s.FillBytes(out[32:64])
	out[64] = v + 27
	return out, nil
}

// Decode parses a 65 bytes personal signature. V may be either 0/1 or 27/28.
func (ECDSAAdaptor) Decode(raw []byte) (*AdaptorSignature, error) {
	if len(raw) != SignatureLength {
		return nil, errors.Wrapf(errors.ErrInput, "signature must be %d bytes long", SignatureLength)
	}
	v := raw[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return nil, errors.Wrapf(errors.ErrInput, "invalid recovery id %d", raw[64])
	}
	compressed := make([]byte, 33)
	compressed[0] = 0x02 | v
	copy(compressed[1:], raw[:32])
	pub, err := ethcrypto.DecompressPubkey(compressed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "signature R: %s", err)
	}
	s := new(big.Int).SetBytes(raw[32:64])
	if !validScalar(s) {
		return nil, errors.Wrap(errors.ErrInput, "signature S")
	}
	return &AdaptorSignature{R: Point{X: pub.X, Y: pub.Y}, S: s}, nil
}

// ecdsaS returns k^-1 (e + r*x), or false when r or the result is zero.
func ecdsaS(k, e, r, x *big.Int) (*big.Int, bool) {
	if r.Sign() == 0 {
		return nil, false
	}
	kInv, err := invN(k)
	if err != nil {
		return nil, false
	}
	s := new(big.Int).Mul(r, x)
	s.Add(s, e)
	s.Mul(s, kInv)
	s = modN(s)
	return s, s.Sign() != 0
}
