package fpe

import (
	"math/big"

	"github.com/vdparikh/gofpe/subtle"
)

// ffxMaxOrderBits, ffxDerivedKeyBytes and ffxMaxTweakBytes mirror the
// limits subtle enforces; kept here too so NewFFXIntegerCipher can
// reject an oversized order, and Encrypt/Decrypt an oversized tweak,
// before ever deriving key material.
const (
	ffxMaxOrderBits    = 128
	ffxDerivedKeyBytes = 16
	ffxMaxTweakBytes   = 8
)

// FFXIntegerCipher is an IntegerCipher built on the FFX-A2 alternating
// Feistel construction, appropriate for message spaces whose order
// needs between 8 and 128 bits, inclusive.
type FFXIntegerCipher struct {
	order *big.Int
}

// NewFFXIntegerCipher builds an FFXIntegerCipher over [0, order).
func NewFFXIntegerCipher(order *big.Int) (*FFXIntegerCipher, error) {
	if order == nil || order.Sign() <= 0 {
		return nil, invalidArgf("ffx cipher order must be positive, got %s", order)
	}
	if bitLength(order) > ffxMaxOrderBits {
		return nil, invalidArgf("ffx cipher order %s needs more than %d bits", order, ffxMaxOrderBits)
	}
	return &FFXIntegerCipher{order: new(big.Int).Set(order)}, nil
}

// Order implements IntegerCipher.
func (c *FFXIntegerCipher) Order() *big.Int { return new(big.Int).Set(c.order) }

// Encrypt implements IntegerCipher.
func (c *FFXIntegerCipher) Encrypt(plaintext *big.Int, key *Key, tweak []byte) (*big.Int, error) {
	if plaintext == nil || plaintext.Sign() < 0 || plaintext.Cmp(c.order) >= 0 {
		return nil, outsideMessageSpacef("%s is not within [0, %s)", plaintext, c.order)
	}
	if key == nil {
		return nil, invalidArgf("ffx cipher key must not be nil")
	}
	if len(tweak) > ffxMaxTweakBytes {
		return nil, invalidArgf("ffx tweak must be at most %d bytes, got %d", ffxMaxTweakBytes, len(tweak))
	}
	derivedKey, err := key.Derive(ffxDerivedKeyBytes)
	if err != nil {
		return nil, err
	}
	result, err := subtle.FFXEncrypt(derivedKey, tweak, c.order, plaintext)
	if err != nil {
		return nil, securityProviderf("ffx encrypt: %v", err)
	}
	return result, nil
}

// Decrypt implements IntegerCipher.
func (c *FFXIntegerCipher) Decrypt(ciphertext *big.Int, key *Key, tweak []byte) (*big.Int, error) {
	if ciphertext == nil || ciphertext.Sign() < 0 || ciphertext.Cmp(c.order) >= 0 {
		return nil, outsideMessageSpacef("%s is not within [0, %s)", ciphertext, c.order)
	}
	if key == nil {
		return nil, invalidArgf("ffx cipher key must not be nil")
	}
	if len(tweak) > ffxMaxTweakBytes {
		return nil, invalidArgf("ffx tweak must be at most %d bytes, got %d", ffxMaxTweakBytes, len(tweak))
	}
	derivedKey, err := key.Derive(ffxDerivedKeyBytes)
	if err != nil {
		return nil, err
	}
	result, err := subtle.FFXDecrypt(derivedKey, tweak, c.order, ciphertext)
	if err != nil {
		return nil, securityProviderf("ffx decrypt: %v", err)
	}
	return result, nil
}
