package subtle

import (
	"fmt"
	"math/big"
)

// knuthSeedBlock is the fixed 16-byte plaintext block AES-CBC-encrypted
// (under the caller's key, with the tweak as IV) to derive the
// deterministic pseudorandom seed R used by GeneratePermutation.
var knuthSeedBlock = []byte("Hello World!! :D")

// GeneratePermutation builds the Knuth-shuffle permutation table for a
// tiny message space {0, ..., max}, keyed by a 16-byte AES key and a
// 16-byte tweak (used as the CBC IV). It returns the forward table
// (forward[i] is where plaintext i maps to) and its inverse.
//
// A single deterministic seed R is derived once (by AES-CBC-encrypting
// a fixed 16-byte block under key with tweak as IV) and then reused,
// unchanged, for every swap step of the Fisher-Yates shuffle. This is
// a known weakness of the scheme as specified — reusing R rather than
// deriving a fresh value per step — but it is the documented behavior
// of this tiny-space cipher and must be preserved bit-for-bit for
// interoperability with other implementations of this format.
func GeneratePermutation(key, tweak []byte, max int) (forward, inverse []int, err error) {
	if len(key) != 16 {
		return nil, nil, fmt.Errorf("subtle: knuth key must be 16 bytes, got %d", len(key))
	}
	if len(tweak) != 16 {
		return nil, nil, fmt.Errorf("subtle: knuth tweak must be 16 bytes, got %d", len(tweak))
	}
	if max < 0 {
		return nil, nil, fmt.Errorf("subtle: knuth max must be non-negative, got %d", max)
	}

	cipherBlock, err := cbcEncryptIV(key, tweak, knuthSeedBlock)
	if err != nil {
		return nil, nil, fmt.Errorf("subtle: deriving knuth seed: %w", err)
	}
	r := signedBigEndian(cipherBlock)

	a := make([]int, max+1)
	for i := range a {
		a[i] = i
	}

	mod := new(big.Int)
	for i := max; i >= 1; i-- {
		mod.Mod(r, big.NewInt(int64(i+1)))
		j := int(mod.Int64())
		a[i], a[j] = a[j], a[i]
	}

	inv := make([]int, max+1)
	for i, v := range a {
		inv[v] = i
	}
	return a, inv, nil
}

// signedBigEndian interprets b as a two's-complement, big-endian
// signed integer (the top bit of b[0] is the sign bit).
func signedBigEndian(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		full := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		v.Sub(v, full)
	}
	return v
}
