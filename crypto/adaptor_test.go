package crypto

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustKey(t testing.TB, seed string) *PrivateKey {
	t.Helper()
	key, err := PrivateKeyFromSeed([]byte(seed))
	require.NoError(t, err)
	return key
}

func TestAdaptorSchemes(t *testing.T) {
	schemes := map[string]AdaptorScheme{
		"ecdsa":   ECDSAAdaptor{},
		"schnorr": SchnorrAdaptor{},
	}
	msg := []byte("Adaptor signature message")

	for name, scheme := range schemes {
		t.Run(name, func(t *testing.T) {
			signer := mustKey(t, "signer")
			witness := mustKey(t, "witness")
			statement := witness.PublicPoint()

			sig, err := scheme.Sign(signer, msg)
			require.NoError(t, err)
			assert.True(t, scheme.Verify(signer.PublicPoint(), msg, sig))
			assert.False(t, scheme.Verify(witness.PublicPoint(), msg, sig))
			assert.False(t, scheme.Verify(signer.PublicPoint(), []byte("other message"), sig))

			pre, err := scheme.PreSign(signer, msg, statement)
			require.NoError(t, err)
			assert.True(t, scheme.PreVerify(signer.PublicPoint(), msg, statement, pre))
			assert.False(t, scheme.PreVerify(witness.PublicPoint(), msg, statement, pre))
			assert.False(t, scheme.PreVerify(signer.PublicPoint(), msg, signer.PublicPoint(), pre))
			assert.False(t, scheme.PreVerify(signer.PublicPoint(), []byte("other message"), statement, pre))

			// a pre-signature alone is not a signature
			assert.False(t, scheme.Verify(signer.PublicPoint(), msg, &AdaptorSignature{R: pre.R, S: pre.S}))

			adapted, err := scheme.Adapt(pre, witness)
			require.NoError(t, err)
			assert.True(t, scheme.Verify(signer.PublicPoint(), msg, adapted))

			got, err := scheme.Extract(adapted, pre, statement)
			require.NoError(t, err)
			assert.Equal(t, witness.Hex(), got.Hex())

			// adapting with the wrong witness gives nothing usable
			wrong, err := scheme.Adapt(pre, signer)
			require.NoError(t, err)
			assert.False(t, scheme.Verify(signer.PublicPoint(), msg, wrong))
			_, err = scheme.Extract(wrong, pre, statement)
			assert.True(t, errors.ErrInput.Is(err), "%+v", err)
		})
	}
}

func TestAdaptorEmptyMessage(t *testing.T) {
	signer := mustKey(t, "signer")
	statement := mustKey(t, "witness").PublicPoint()

	for name, scheme := range map[string]AdaptorScheme{"ecdsa": ECDSAAdaptor{}, "schnorr": SchnorrAdaptor{}} {
		t.Run(name, func(t *testing.T) {
			_, err := scheme.Sign(signer, nil)
			assert.True(t, errors.ErrEmpty.Is(err), "%+v", err)
			_, err = scheme.PreSign(signer, nil, statement)
			assert.True(t, errors.ErrEmpty.Is(err), "%+v", err)
			_, err = scheme.PreSign(signer, []byte("msg"), Point{})
			assert.True(t, errors.ErrInput.Is(err), "%+v", err)
		})
	}
}

func TestECDSAProofIsRequired(t *testing.T) {
	signer := mustKey(t, "signer")
	witness := mustKey(t, "witness")
	msg := []byte("withdraw")

	pre, err := ECDSAAdaptor{}.PreSign(signer, msg, witness.PublicPoint())
	require.NoError(t, err)

	// Z built with another key is refused even with a fresh proof for it.
	other := mustKey(t, "other")
	z := witness.PublicPoint().Mul(other.scalar())
	proof, err := proveDLEQ(other.scalar(), other.PublicPoint(), witness.PublicPoint(), z)
	require.NoError(t, err)
	forged := &PreSignature{R: pre.R, S: pre.S, Z: &z, Proof: proof}
	assert.False(t, ECDSAAdaptor{}.PreVerify(signer.PublicPoint(), msg, witness.PublicPoint(), forged))

	tampered := *pre
	tampered.Proof = &DLEQProof{E: pre.Proof.E, I: new(big.Int).Add(pre.Proof.I, big.NewInt(1))}
	assert.False(t, ECDSAAdaptor{}.PreVerify(signer.PublicPoint(), msg, witness.PublicPoint(), &tampered))

	noProof := *pre
	noProof.Proof = nil
	assert.False(t, ECDSAAdaptor{}.PreVerify(signer.PublicPoint(), msg, witness.PublicPoint(), &noProof))
}

func TestAdaptedECDSAIsAPersonalSignature(t *testing.T) {
	signer := mustKey(t, "signer")
	witness := mustKey(t, "witness")
	msg := Keccak256([]byte("Withdraw funds from TimedMultisigWallet"))
	scheme := ECDSAAdaptor{}

	// Repeat to hit both the high and the low S branch of the encoding.
	for i := 0; i < 8; i++ {
		pre, err := scheme.PreSign(signer, msg, witness.PublicPoint())
		require.NoError(t, err)
		adapted, err := scheme.Adapt(pre, witness)
		require.NoError(t, err)

		raw, err := scheme.Encode(adapted)
		require.NoError(t, err)
		require.Len(t, raw, SignatureLength)
		assert.True(t, new(big.Int).SetBytes(raw[32:64]).Cmp(secp256k1HalfN) <= 0)

		got, err := RecoverAddress(msg, raw)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), got)

		decoded, err := scheme.Decode(raw)
		require.NoError(t, err)
		assert.True(t, scheme.Verify(signer.PublicPoint(), msg, decoded))

		extracted, err := scheme.Extract(decoded, pre, witness.PublicPoint())
		require.NoError(t, err)
		assert.Equal(t, witness.Hex(), extracted.Hex())
	}
}

func TestECDSADecodeErrors(t *testing.T) {
	cases := map[string][]byte{
		"empty":          nil,
		"too short":      make([]byte, 64),
		"invalid v":      append(make([]byte, 64), 9),
		"r out of field": append(bytes.Repeat([]byte{0xff}, 64), 27),
		"zero s":         validSigWithS(t, new(big.Int)),
		"s out of range": validSigWithS(t, secp256k1N),
	}
	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := ECDSAAdaptor{}.Decode(raw)
			assert.True(t, errors.ErrInput.Is(err), "%+v", err)
		})
	}
}

func validSigWithS(t *testing.T, s *big.Int) []byte {
	raw, err := mustKey(t, "signer").SignPersonal([]byte("msg"))
	require.NoError(t, err)
	s.FillBytes(raw[32:64])
	return raw
}

func TestPointEncoding(t *testing.T) {
	p := mustKey(t, "point").PublicPoint()

	parsed, err := ParsePoint(p.Bytes())
	require.NoError(t, err)
	assert.True(t, p.Equal(parsed))

	parsed, err = ParsePoint(p.uncompressed())
	require.NoError(t, err)
	assert.True(t, p.Equal(parsed))

	raw, err := json.Marshal(struct{ P Point }{P: p})
	require.NoError(t, err)
	var decoded struct{ P Point }
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, p.Equal(decoded.P))

	_, err = ParsePoint([]byte{1, 2, 3})
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)

	assert.True(t, p.Sub(p).IsInfinity())
	assert.True(t, p.Add(Point{}).Equal(p))
	assert.True(t, p.Mul(big.NewInt(2)).Equal(p.Add(p)))
	assert.True(t, p.Mul(secp256k1N).IsInfinity())
}

func TestPreSignatureJSON(t *testing.T) {
	signer := mustKey(t, "signer")
	witness := mustKey(t, "witness")
	msg := []byte("withdraw")

	pre, err := ECDSAAdaptor{}.PreSign(signer, msg, witness.PublicPoint())
	require.NoError(t, err)

	raw, err := json.Marshal(pre)
	require.NoError(t, err)
	var loaded PreSignature
	require.NoError(t, json.Unmarshal(raw, &loaded))
	assert.True(t, ECDSAAdaptor{}.PreVerify(signer.PublicPoint(), msg, witness.PublicPoint(), &loaded))
}
