package weavetest

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/crypto"
)

// NewKey returns a new random secp256k1 key. It panics if the system
// randomness cannot be read.
func NewKey() *crypto.PrivateKey {
	key, err := crypto.GenPrivateKey()
	if err != nil {
		panic(err)
	}
	return key
}

// NewCondition returns the signature condition of a new random key.
func NewCondition() weave.Condition {
	return NewKey().Condition()
}

// KeyFromSeed returns a key deterministically derived from given seed. Use
// it when a test needs the same identity across runs.
func KeyFromSeed(seed string) *crypto.PrivateKey {
	key, err := crypto.PrivateKeyFromSeed([]byte(seed))
	if err != nil {
		panic(err)
	}
	return key
}

// SequenceID returns the big endian encoded representation of given value,
// the same way an orm sequence encodes generated IDs.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// DecodeAddr returns the address of the given hex string. It fails the test
// unless the result is a valid address.
func DecodeAddr(t testing.TB, encoded string) weave.Address {
	t.Helper()
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		t.Fatalf("cannot decode %q: %s", encoded, err)
	}
	addr := weave.Address(raw)
	if err := addr.Validate(); err != nil {
		t.Fatalf("%q is not a valid address: %s", encoded, err)
	}
	return addr
}
