package subtle

import (
	"fmt"
	"math/big"
)

const (
	ffxMaxOrderBits  = 128
	ffxMaxTweakBytes = 8
	ffxKeyBytes      = 16
	ffxCycleWalkCap  = 10000
)

// roundsForBitLength implements the FFX-A2 round-count table from
// spec.md §4.5.
func roundsForBitLength(n int) int {
	switch {
	case n >= 32:
		return 12
	case n >= 20:
		return 18
	case n >= 14:
		return 24
	case n >= 10:
		return 30
	default:
		return 36
	}
}

// ffxHeader builds the 16-byte precomputed header block P described in
// spec.md §4.5: a fixed version/method/addition/radix preamble
// followed by the per-call parameters n, split, round count, and
// tweak length.
func ffxHeader(n, split, rounds, tweakLen int) []byte {
	p := make([]byte, 16)
	p[0] = 0x00
	p[1] = 1 // VERS
	p[2] = 2 // METHOD
	p[3] = 0 // ADDITION
	p[4] = 2 // RADIX (FFX-A2 is always binary)
	p[5] = byte(n)
	p[6] = byte(split)
	p[7] = byte(rounds)
	// p[8:15] are zero.
	p[15] = byte(tweakLen)
	return p
}

// rightPadBits encodes value (which has at most bits significant bits)
// into totalBytes bytes, left-justified: the value occupies the
// high-order bits and the remainder is zero-padded on the right (the
// low-order side).
func rightPadBits(value *big.Int, bits, totalBytes int) []byte {
	shift := totalBytes*8 - bits
	shifted := new(big.Int).Lsh(value, uint(shift))
	out := make([]byte, totalBytes)
	b := shifted.Bytes()
	if len(b) > totalBytes {
		b = b[len(b)-totalBytes:]
	}
	copy(out[totalBytes-len(b):], b)
	return out
}

// ffxRoundFunction implements F(i, B) from spec.md §4.5: build Q from
// the tweak, round index, and B; AES-CBC-MAC P̃⊕Q (chaining through a
// second block when the tweak is exactly 8 bytes); return the low
// outBits bits of the 128-bit MAC.
func ffxRoundFunction(round int, b *big.Int, sizeB, outBits int, tweak, pTilde, key []byte) (*big.Int, error) {
	tweakLen := len(tweak)

	var q []byte
	if tweakLen == ffxMaxTweakBytes {
		q = make([]byte, 32)
		copy(q[0:8], tweak)
		q[23] = byte(round)
		copy(q[24:32], rightPadBits(b, sizeB, 8))
	} else {
		q = make([]byte, 16)
		copy(q[0:tweakLen], tweak)
		q[7] = byte(round)
		copy(q[8:16], rightPadBits(b, sizeB, 8))
	}

	block0, err := ecbEncryptBlock(key, xorBytes(pTilde, q[0:16]))
	if err != nil {
		return nil, fmt.Errorf("subtle: ffx round function: %w", err)
	}
	final := block0
	if len(q) == 32 {
		final, err = ecbEncryptBlock(key, xorBytes(block0, q[16:32]))
		if err != nil {
			return nil, fmt.Errorf("subtle: ffx round function: %w", err)
		}
	}

	full := new(big.Int).SetBytes(final)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(outBits)), big.NewInt(1))
	return full.And(full, mask), nil
}

// ffxFeistelEncrypt runs one full forward pass of the FFX-A2 alternating
// Feistel network over an n-bit value.
func ffxFeistelEncrypt(x *big.Int, n, split, rounds int, tweak, pTilde, key []byte) (*big.Int, error) {
	sizeA, sizeB := split, n-split
	a := new(big.Int).Rsh(x, uint(sizeB))
	maskB := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(sizeB)), big.NewInt(1))
	b := new(big.Int).And(x, maskB)

	for i := 0; i < rounds; i++ {
		f, err := ffxRoundFunction(i, b, sizeB, sizeA, tweak, pTilde, key)
		if err != nil {
			return nil, err
		}
		newB := new(big.Int).Xor(a, f)
		newA := b
		a, sizeA, b, sizeB = newA, sizeB, newB, sizeA
	}

	result := new(big.Int).Lsh(a, uint(sizeB))
	result.Or(result, b)
	return result, nil
}

// ffxFeistelDecrypt is the exact inverse of ffxFeistelEncrypt.
func ffxFeistelDecrypt(y *big.Int, n, split, rounds int, tweak, pTilde, key []byte) (*big.Int, error) {
	sizeA, sizeB := split, n-split
	for i := 0; i < rounds; i++ {
		sizeA, sizeB = sizeB, sizeA
	}

	maskB := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(sizeB)), big.NewInt(1))
	a := new(big.Int).Rsh(y, uint(sizeB))
	b := new(big.Int).And(y, maskB)

	for i := rounds - 1; i >= 0; i-- {
		f, err := ffxRoundFunction(i, a, sizeA, sizeB, tweak, pTilde, key)
		if err != nil {
			return nil, err
		}
		newA := new(big.Int).Xor(b, f)
		newB := a
		a, sizeA, b, sizeB = newA, sizeB, newB, sizeA
	}

	result := new(big.Int).Lsh(a, uint(sizeB))
	result.Or(result, b)
	return result, nil
}

// ffxParams computes the shared per-call FFX-A2 parameters: bit length
// n, split point, round count, and the precomputed header ciphertext.
func ffxParams(order *big.Int, tweak, key []byte) (n, split, rounds int, pTilde []byte, err error) {
	n = order.BitLen()
	if n == 0 {
		n = 1
	}
	if n > ffxMaxOrderBits {
		return 0, 0, 0, nil, fmt.Errorf("subtle: ffx message space requires %d bits, maximum is %d", n, ffxMaxOrderBits)
	}
	split = (n + 1) / 2
	rounds = roundsForBitLength(n)

	header := ffxHeader(n, split, rounds, len(tweak))
	pTilde, err = cbcEncryptZeroIV(key, header)
	if err != nil {
		return 0, 0, 0, nil, fmt.Errorf("subtle: ffx header encryption: %w", err)
	}
	return n, split, rounds, pTilde, nil
}

func ffxValidate(key, tweak []byte, order, value *big.Int) error {
	if key == nil {
		return fmt.Errorf("subtle: ffx key must not be nil")
	}
	if len(key) != ffxKeyBytes {
		return fmt.Errorf("subtle: ffx key must be %d bytes, got %d", ffxKeyBytes, len(key))
	}
	if len(tweak) > ffxMaxTweakBytes {
		return fmt.Errorf("subtle: ffx tweak must be at most %d bytes, got %d", ffxMaxTweakBytes, len(tweak))
	}
	if value.Sign() < 0 {
		return fmt.Errorf("subtle: ffx input must be non-negative, got %s", value)
	}
	if value.Cmp(order) >= 0 {
		return fmt.Errorf("subtle: ffx input %s is not within [0, %s)", value, order)
	}
	return nil
}

// FFXEncrypt encrypts plaintext, an integer in [0, order), under key
// (exactly 16 bytes) and tweak (at most 8 bytes), cycle-walking until
// the result also lands in [0, order).
func FFXEncrypt(key, tweak []byte, order, plaintext *big.Int) (*big.Int, error) {
	if err := ffxValidate(key, tweak, order, plaintext); err != nil {
		return nil, err
	}
	n, split, rounds, pTilde, err := ffxParams(order, tweak, key)
	if err != nil {
		return nil, err
	}

	x := new(big.Int).Set(plaintext)
	for i := 0; i < ffxCycleWalkCap; i++ {
		x, err = ffxFeistelEncrypt(x, n, split, rounds, tweak, pTilde, key)
		if err != nil {
			return nil, err
		}
		if x.Cmp(order) < 0 {
			return x, nil
		}
	}
	return nil, fmt.Errorf("subtle: ffx cycle walk exceeded %d iterations", ffxCycleWalkCap)
}

// FFXDecrypt is the inverse of FFXEncrypt.
func FFXDecrypt(key, tweak []byte, order, ciphertext *big.Int) (*big.Int, error) {
	if err := ffxValidate(key, tweak, order, ciphertext); err != nil {
		return nil, err
	}
	n, split, rounds, pTilde, err := ffxParams(order, tweak, key)
	if err != nil {
		return nil, err
	}

	y := new(big.Int).Set(ciphertext)
	for i := 0; i < ffxCycleWalkCap; i++ {
		y, err = ffxFeistelDecrypt(y, n, split, rounds, tweak, pTilde, key)
		if err != nil {
			return nil, err
		}
		if y.Cmp(order) < 0 {
			return y, nil
		}
	}
	return nil, fmt.Errorf("subtle: ffx cycle walk exceeded %d iterations", ffxCycleWalkCap)
}
