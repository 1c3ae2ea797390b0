package fpe

import (
	"math/big"

	"github.com/vdparikh/gofpe/subtle"
)

// eme2MinOrderBits mirrors the lower bound subtle.EME2Encrypt enforces.
const eme2MinOrderBits = 128

// EME2KeyStrengthBits selects the AES key strength EME2IntegerCipher
// derives and uses internally.
type EME2KeyStrengthBits int

// Supported EME2 key strengths.
const (
	EME2AES128 EME2KeyStrengthBits = 128
	EME2AES256 EME2KeyStrengthBits = 256
)

func (s EME2KeyStrengthBits) derivedKeyBytes() (int, bool) {
	switch s {
	case EME2AES128:
		return 48, true // K2(16) || K3(16) || K_AES(16)
	case EME2AES256:
		return 64, true // K2(16) || K3(16) || K_AES(32)
	default:
		return 0, false
	}
}

// EME2IntegerCipher is an IntegerCipher built on the EME2 wide-block
// encrypt-mix-encrypt construction, for message spaces whose order
// needs more than 128 bits to represent.
type EME2IntegerCipher struct {
	order        *big.Int
	derivedBytes int
}

// NewEME2IntegerCipher builds an EME2IntegerCipher over [0, order)
// using the given AES key strength.
func NewEME2IntegerCipher(order *big.Int, strength EME2KeyStrengthBits) (*EME2IntegerCipher, error) {
	if order == nil || order.Sign() <= 0 {
		return nil, invalidArgf("eme2 cipher order must be positive, got %s", order)
	}
	if bitLength(order) <= eme2MinOrderBits {
		return nil, invalidArgf("eme2 cipher order %s does not need more than %d bits", order, eme2MinOrderBits)
	}
	derivedBytes, ok := strength.derivedKeyBytes()
	if !ok {
		return nil, invalidArgf("eme2 key strength must be 128 or 256 bits, got %d", strength)
	}
	return &EME2IntegerCipher{order: new(big.Int).Set(order), derivedBytes: derivedBytes}, nil
}

// Order implements IntegerCipher.
func (c *EME2IntegerCipher) Order() *big.Int { return new(big.Int).Set(c.order) }

// Encrypt implements IntegerCipher.
func (c *EME2IntegerCipher) Encrypt(plaintext *big.Int, key *Key, tweak []byte) (*big.Int, error) {
	if plaintext == nil || plaintext.Sign() < 0 || plaintext.Cmp(c.order) >= 0 {
		return nil, outsideMessageSpacef("%s is not within [0, %s)", plaintext, c.order)
	}
	if key == nil {
		return nil, invalidArgf("eme2 cipher key must not be nil")
	}
	derivedKey, err := key.Derive(c.derivedBytes)
	if err != nil {
		return nil, err
	}
	result, err := subtle.EME2Encrypt(derivedKey, tweak, c.order, plaintext)
	if err != nil {
		return nil, securityProviderf("eme2 encrypt: %v", err)
	}
	return result, nil
}

// Decrypt implements IntegerCipher.
func (c *EME2IntegerCipher) Decrypt(ciphertext *big.Int, key *Key, tweak []byte) (*big.Int, error) {
	if ciphertext == nil || ciphertext.Sign() < 0 || ciphertext.Cmp(c.order) >= 0 {
		return nil, outsideMessageSpacef("%s is not within [0, %s)", ciphertext, c.order)
	}
	if key == nil {
		return nil, invalidArgf("eme2 cipher key must not be nil")
	}
	derivedKey, err := key.Derive(c.derivedBytes)
	if err != nil {
		return nil, err
	}
	result, err := subtle.EME2Decrypt(derivedKey, tweak, c.order, ciphertext)
	if err != nil {
		return nil, securityProviderf("eme2 decrypt: %v", err)
	}
	return result, nil
}
