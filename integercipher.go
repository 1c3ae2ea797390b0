package fpe

import "math/big"

// IntegerCipher permutes the integers [0, Order()) under a key and a
// tweak. RankThenEncipher composes one with a MessageSpace to build a
// cipher over an arbitrary structured domain.
type IntegerCipher interface {
	// Order is the size of the integer range this cipher permutes.
	Order() *big.Int

	// Encrypt permutes plaintext, which must be within [0, Order()).
	Encrypt(plaintext *big.Int, key *Key, tweak []byte) (*big.Int, error)

	// Decrypt is the inverse of Encrypt.
	Decrypt(ciphertext *big.Int, key *Key, tweak []byte) (*big.Int, error)
}

// newIntegerCipherForOrder selects the integer cipher appropriate for
// order's bit length: a Knuth shuffle table below 8 bits, FFX-A2 from
// 8 to 128 bits inclusive, and EME2 (at AES-128 strength) above that.
func newIntegerCipherForOrder(order *big.Int) (IntegerCipher, error) {
	bits := bitLength(order)
	switch {
	case bits < 8:
		return NewKnuthShuffleCipher(order)
	case bits <= 128:
		return NewFFXIntegerCipher(order)
	default:
		return NewEME2IntegerCipher(order, EME2AES128)
	}
}
