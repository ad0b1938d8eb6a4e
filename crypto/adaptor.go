package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/weave-timedwallet/errors"
)

// AdaptorScheme signs messages with adaptor signatures. A pre-signature is
// bound to a statement T = t*G. Only the holder of the witness t can adapt it
// into a valid signature, and anyone holding both the pre-signature and the
// adapted signature can extract t.
type AdaptorScheme interface {
	Sign(key *PrivateKey, message []byte) (*AdaptorSignature, error)
	Verify(pub Point, message []byte, sig *AdaptorSignature) bool
	PreSign(key *PrivateKey, message []byte, statement Point) (*PreSignature, error)
	PreVerify(pub Point, message []byte, statement Point, pre *PreSignature) bool
	Adapt(pre *PreSignature, witness *PrivateKey) (*AdaptorSignature, error)
	Extract(sig *AdaptorSignature, pre *PreSignature, statement Point) (*PrivateKey, error)
}

// AdaptorSignature is a complete signature (R, s).
type AdaptorSignature struct {
	R Point    `json:"r"`
	S *big.Int `json:"s"`
}

// PreSignature is a signature that still needs the witness of its statement.
// Z and Proof are set by the ECDSA scheme only: Z = x*T for the signer key
// x, and Proof shows that Z and the public key share the same discrete log.
type PreSignature struct {
	R     Point      `json:"r"`
	S     *big.Int   `json:"s"`
	Z     *Point     `json:"z,omitempty"`
	Proof *DLEQProof `json:"proof,omitempty"`
}

// DLEQProof is a non interactive proof that log_G(P) == log_T(Z).
type DLEQProof struct {
	E *big.Int `json:"e"`
	I *big.Int `json:"i"`
}

var (
	secp256k1N     = ethcrypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

// Point is a secp256k1 curve point. The zero value and (0, 0) both stand for
// the point at infinity.
type Point struct {
	X, Y *big.Int
}

// Generator returns the base point G.
func Generator() Point {
	params := ethcrypto.S256().Params()
	return Point{X: params.Gx, Y: params.Gy}
}

// ParsePoint decodes a point from its compressed (33 bytes) or uncompressed
// (65 bytes) SEC1 encoding.
func ParsePoint(raw []byte) (Point, error) {
	var (
		pub *ecdsa.PublicKey
		err error
	)
	switch len(raw) {
	case 33:
		pub, err = ethcrypto.DecompressPubkey(raw)
	case 65:
		pub, err = ethcrypto.UnmarshalPubkey(raw)
	default:
		return Point{}, errors.Wrapf(errors.ErrInput, "point must be 33 or 65 bytes, got %d", len(raw))
	}
	if err != nil {
		return Point{}, errors.Wrapf(errors.ErrInput, "point: %s", err)
	}
	return Point{X: pub.X, Y: pub.Y}, nil
}

// PublicPoint returns the public key of p as a curve point.
func (p *PrivateKey) PublicPoint() Point {
	return Point{X: p.key.PublicKey.X, Y: p.key.PublicKey.Y}
}

func (p *PrivateKey) scalar() *big.Int {
	return p.key.D
}

func privateKeyFromScalar(d *big.Int) (*PrivateKey, error) {
	key, err := ethcrypto.ToECDSA(scalarBytes(d))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid scalar: %s", err)
	}
	return &PrivateKey{key: key}, nil
}

// IsInfinity returns true for the point at infinity.
func (p Point) IsInfinity() bool {
	return p.X == nil || p.Y == nil || (p.X.Sign() == 0 && p.Y.Sign() == 0)
}

// Equal returns true if both points are the same.
func (p Point) Equal(o Point) bool {
	if p.IsInfinity() || o.IsInfinity() {
		return p.IsInfinity() && o.IsInfinity()
	}
	return p.X.Cmp(o.X) == 0 && p.Y.Cmp(o.Y) == 0
}

// Add returns p + o.
func (p Point) Add(o Point) Point {
	switch {
	case p.IsInfinity():
		return o
	case o.IsInfinity():
		return p
	}
	x, y := ethcrypto.S256().Add(p.X, p.Y, o.X, o.Y)
	return Point{X: x, Y: y}
}

// Neg returns -p.
func (p Point) Neg() Point {
	if p.IsInfinity() {
		return Point{}
	}
	y := new(big.Int).Sub(ethcrypto.S256().Params().P, p.Y)
	return Point{X: p.X, Y: y}
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return p.Add(o.Neg())
}

// Mul returns k*p.
func (p Point) Mul(k *big.Int) Point {
	k = modN(k)
	if k.Sign() == 0 || p.IsInfinity() {
		return Point{}
	}
	x, y := ethcrypto.S256().ScalarMult(p.X, p.Y, k.Bytes())
	if x == nil || y == nil {
		return Point{}
	}
	return Point{X: x, Y: y}
}

// Bytes returns the compressed encoding of the point, or nil for the point
// at infinity.
func (p Point) Bytes() []byte {
	if p.IsInfinity() {
		return nil
	}
	return ethcrypto.CompressPubkey(&ecdsa.PublicKey{Curve: ethcrypto.S256(), X: p.X, Y: p.Y})
}

// uncompressed is the encoding hashed into challenges.
func (p Point) uncompressed() []byte {
	if p.IsInfinity() {
		return make([]byte, 65)
	}
	return ethcrypto.FromECDSAPub(&ecdsa.PublicKey{Curve: ethcrypto.S256(), X: p.X, Y: p.Y})
}

// String returns the hex encoded compressed point.
func (p Point) String() string {
	return hex.EncodeToString(p.Bytes())
}

// MarshalText encodes the point as compressed hex.
func (p Point) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a hex encoded point.
func (p *Point) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "point hex: %s", err)
	}
	pt, err := ParsePoint(raw)
	if err != nil {
		return err
	}
	*p = pt
	return nil
}

func modN(k *big.Int) *big.Int {
	if k == nil {
		return new(big.Int)
	}
	return new(big.Int).Mod(k, secp256k1N)
}

func invN(k *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(modN(k), secp256k1N)
	if inv == nil {
		return nil, errors.Wrap(errors.ErrInput, "scalar is not invertible")
	}
	return inv, nil
}

func validScalar(k *big.Int) bool {
	return k != nil && k.Sign() > 0 && k.Cmp(secp256k1N) < 0
}

func scalarBytes(k *big.Int) []byte {
	out := make([]byte, 32)
	modN(k).FillBytes(out)
	return out
}

// hashToScalar reduces the keccak256 hash of the parts modulo N.
func hashToScalar(parts ...[]byte) *big.Int {
	return modN(new(big.Int).SetBytes(Keccak256(parts...)))
}

func randScalar() (*big.Int, error) {
	for {
		k, err := rand.Int(rand.Reader, secp256k1N)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrHuman, "cannot read randomness: %s", err)
		}
		if k.Sign() != 0 {
			return k, nil
		}
	}
}

func proveDLEQ(x *big.Int, pub, statement, z Point) (*DLEQProof, error) {
	j, err := randScalar()
	if err != nil {
		return nil, err
	}
	jg := Generator().Mul(j)
	jt := statement.Mul(j)
	e := dleqChallenge(pub, z, statement, jg, jt)
	i := modN(new(big.Int).Add(j, new(big.Int).Mul(e, x)))
	return &DLEQProof{E: e, I: i}, nil
}

func verifyDLEQ(pub, z, statement Point, proof *DLEQProof) bool {
	if proof == nil || proof.E == nil || proof.I == nil {
		return false
	}
	jg := Generator().Mul(proof.I).Sub(pub.Mul(proof.E))
	jt := statement.Mul(proof.I).Sub(z.Mul(proof.E))
	return dleqChallenge(pub, z, statement, jg, jt).Cmp(modN(proof.E)) == 0
}

func dleqChallenge(pub, z, statement, jg, jt Point) *big.Int {
	return hashToScalar(
		Generator().uncompressed(),
		statement.uncompressed(),
		pub.uncompressed(),
		z.uncompressed(),
		jg.uncompressed(),
		jt.uncompressed(),
	)
}

func validStatement(statement Point) error {
	if statement.IsInfinity() || !ethcrypto.S256().IsOnCurve(statement.X, statement.Y) {
		return errors.Wrap(errors.ErrInput, "statement is not a curve point")
	}
	return nil
}
