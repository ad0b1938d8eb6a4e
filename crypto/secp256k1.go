/*
Package crypto provides secp256k1 keys that sign messages with the Ethereum
personal message convention and recovers signers from such signatures.

A key is identified in weave by the condition sigs/secp256k1/<eth address>,
so the recovered weave.Address of a signer is the address of that condition.
*/
package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
)

const (
	// ExtensionName is used for the conditions we get from signatures
	ExtensionName = "sigs"
	// KeyType is the condition type of secp256k1 signers
	KeyType = "secp256k1"

	// SignatureLength is the length of a recoverable signature: R, S and V.
	SignatureLength = 65
)

// PrivateKey is a secp256k1 key able to produce recoverable signatures.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// GenPrivateKey returns a random new private key
func GenPrivateKey() (*PrivateKey, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot generate key: %s", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromHex loads a key from its hex encoded scalar.
func PrivateKeyFromHex(enc string) (*PrivateKey, error) {
	key, err := ethcrypto.HexToECDSA(enc)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid private key: %s", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromSeed will deterministically derive a private key from a
// given seed. Use if you have a strong source of external randomness, or for
// deterministic keys in test cases.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	key, err := ethcrypto.ToECDSA(ethcrypto.Keccak256(seed))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid seed: %s", err)
	}
	return &PrivateKey{key: key}, nil
}

// Hex returns the hex encoded private scalar.
func (p *PrivateKey) Hex() string {
	return hex.EncodeToString(ethcrypto.FromECDSA(p.key))
}

// EthAddress returns the Ethereum address of the public key.
func (p *PrivateKey) EthAddress() common.Address {
	return ethcrypto.PubkeyToAddress(p.key.PublicKey)
}

// Condition encodes the public key into a weave condition
func (p *PrivateKey) Condition() weave.Condition {
	return Condition(p.EthAddress())
}

// Address returns the weave address of this key.
func (p *PrivateKey) Address() weave.Address {
	return p.Condition().Address()
}

// SignPersonal signs given message using the personal message convention.
// The returned signature has V set to 27 or 28.
func (p *PrivateKey) SignPersonal(message []byte) ([]byte, error) {
	sig, err := ethcrypto.Sign(PersonalHash(message), p.key)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot sign: %s", err)
	}
	sig[64] += 27
	return sig, nil
}

// Condition returns the weave condition of a secp256k1 signer with the given
// Ethereum address.
func Condition(addr common.Address) weave.Condition {
	return weave.NewCondition(ExtensionName, KeyType, addr.Bytes())
}

// PersonalHash returns the keccak256 hash of the message prefixed with
//   "\x19Ethereum Signed Message:\n" + len(message)
func PersonalHash(message []byte) []byte {
	return accounts.TextHash(message)
}

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	return ethcrypto.Keccak256(data...)
}

// RecoverEthAddress returns the Ethereum address of the key that produced
// the personal signature of the message. V may be either 0/1 or 27/28.
func RecoverEthAddress(message, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, errors.Wrapf(errors.ErrInput, "signature must be %d bytes long", SignatureLength)
	}
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	switch v := normalized[64]; v {
	case 0, 1:
	case 27, 28:
		normalized[64] = v - 27
	default:
		return common.Address{}, errors.Wrapf(errors.ErrInput, "invalid recovery id %d", v)
	}
	pub, err := ethcrypto.SigToPub(PersonalHash(message), normalized)
	if err != nil {
		return common.Address{}, errors.Wrapf(errors.ErrInput, "cannot recover signer: %s", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// RecoverAddress returns the weave address of the key that produced the
// personal signature of the message.
func RecoverAddress(message, sig []byte) (weave.Address, error) {
	eth, err := RecoverEthAddress(message, sig)
	if err != nil {
		return nil, err
	}
	return Condition(eth).Address(), nil
}

// PersonalSignRecoverer recovers signer addresses from personal message
// signatures.
type PersonalSignRecoverer struct{}

// Recover returns the weave address of the signer.
func (PersonalSignRecoverer) Recover(message, sig []byte) (weave.Address, error) {
	return RecoverAddress(message, sig)
}
