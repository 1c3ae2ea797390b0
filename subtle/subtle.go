// Package subtle provides the raw, key-bytes-in/key-bytes-out
// cryptographic cores for the three integer ciphers the fpe package
// exposes: Knuth shuffle, FFX-A2, and EME2. Callers here never see a
// *fpe.Key or a MessageSpace — only already-derived byte slices and
// *big.Int values — so this package has no dependency on the root
// package and cannot participate in an import cycle with it.
//
// Most callers should use the wrapping types in the root fpe package
// instead of this one directly.
package subtle

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

var zeroIV = make([]byte, aes.BlockSize)

// ecbEncryptBlock AES-encrypts exactly one 16-byte block under key,
// equivalent to ECB mode for a single block.
func ecbEncryptBlock(key, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("subtle: aes.NewCipher: %w", err)
	}
	out := make([]byte, aes.BlockSize)
	block.Encrypt(out, in)
	return out, nil
}

// cbcEncryptZeroIV AES-CBC-encrypts data (a multiple of the AES block
// size) under key with an all-zero IV, returning every block of
// ciphertext.
func cbcEncryptZeroIV(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("subtle: aes.NewCipher: %w", err)
	}
	mode := cipher.NewCBCEncrypter(block, zeroIV)
	out := make([]byte, len(data))
	mode.CryptBlocks(out, data)
	return out, nil
}

// cbcEncryptIV is cbcEncryptZeroIV with a caller-supplied IV, used by
// the Knuth shuffle's seed derivation where the tweak itself is the IV.
func cbcEncryptIV(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("subtle: aes.NewCipher: %w", err)
	}
	mode := cipher.NewCBCEncrypter(block, iv)
	out := make([]byte, len(data))
	mode.CryptBlocks(out, data)
	return out, nil
}

// aesDecryptBlock AES-decrypts exactly one 16-byte block under key.
func aesDecryptBlock(key, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("subtle: aes.NewCipher: %w", err)
	}
	out := make([]byte, aes.BlockSize)
	block.Decrypt(out, in)
	return out, nil
}

// cbcDecryptIV is the decryption counterpart of cbcEncryptIV.
func cbcDecryptIV(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("subtle: aes.NewCipher: %w", err)
	}
	mode := cipher.NewCBCDecrypter(block, iv)
	out := make([]byte, len(data))
	mode.CryptBlocks(out, data)
	return out, nil
}

// aesBlockEncrypter returns a cipher.Block for key, for encrypting many
// independent 16-byte blocks under one key rather than going through
// the per-block and CBC helpers above. EME2 does not use it; it calls
// ecbEncryptBlock and aesDecryptBlock per block.
func aesBlockEncrypter(key []byte) (cipher.Block, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("subtle: aes.NewCipher: %w", err)
	}
	return block, nil
}

// bitLength returns the number of bits needed to represent n (n >= 0).
func bitLength(n int) int {
	bits := 0
	for v := n; v > 0; v >>= 1 {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	return bits
}

// xorBytes XORs a and b (of equal length) into a new slice.
func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// xorInto XORs b into dst in place; dst and b must be the same length.
func xorInto(dst, b []byte) {
	for i := range dst {
		dst[i] ^= b[i]
	}
}
