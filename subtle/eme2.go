package subtle

import (
	"fmt"
	"math/big"
)

const (
	eme2BlockSize    = 16
	eme2RefreshEvery = 128
	eme2MinOrderBits = 128
	eme2CycleWalkCap = 1000
)

// multAlpha multiplies a 16-byte value by the primitive element α in
// GF(2^128) with reduction polynomial x^128+x^7+x^2+x+1. Per spec, the
// doubling treats byte index 0 as the low end of the field element and
// byte index 15 as the high end: each byte is doubled modulo 256,
// carrying the previous byte's high bit into the next byte's low bit,
// and 0x87 is XORed into byte 0 when byte 15's original high bit was
// set. This is the mirror image of the usual GCM byte-order
// convention and must be kept exactly this way for interoperability.
func multAlpha(v []byte) []byte {
	out := make([]byte, eme2BlockSize)
	topBitSet := v[eme2BlockSize-1]&0x80 != 0
	var carry byte
	for i := 0; i < eme2BlockSize; i++ {
		cur := v[i]
		nextCarry := (cur & 0x80) >> 7
		out[i] = (cur << 1) | carry
		carry = nextCarry
	}
	if topBitSet {
		out[0] ^= 0x87
	}
	return out
}

// padZero right-pads b with zero bytes to 16 bytes.
func padZero(b []byte) []byte {
	out := make([]byte, eme2BlockSize)
	copy(out, b)
	return out
}

// padTweakBlock right-pads a short final tweak chunk with a single
// 0x80 byte followed by zeros, to 16 bytes.
func padTweakBlock(b []byte) []byte {
	out := make([]byte, eme2BlockSize)
	copy(out, b)
	out[len(b)] = 0x80
	return out
}

// eme2TweakDigest computes T*, the 16-byte tweak digest described in
// spec.md §4.6.
func eme2TweakDigest(kAES, k3 []byte, tweak []byte) ([]byte, error) {
	if len(tweak) == 0 {
		return ecbEncryptBlock(kAES, k3)
	}

	var chunks [][]byte
	full := len(tweak) / eme2BlockSize
	rem := len(tweak) % eme2BlockSize
	for i := 0; i < full; i++ {
		chunks = append(chunks, tweak[i*eme2BlockSize:(i+1)*eme2BlockSize])
	}
	if rem != 0 {
		chunks = append(chunks, padTweakBlock(tweak[full*eme2BlockSize:]))
	}

	k3cur := multAlpha(k3)
	total := make([]byte, eme2BlockSize)
	for _, t := range chunks {
		enc, err := ecbEncryptBlock(kAES, xorBytes(t, k3cur))
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 tweak digest: %w", err)
		}
		e := xorBytes(enc, k3cur)
		xorInto(total, e)
		k3cur = multAlpha(k3cur)
	}
	return total, nil
}

// eme2Layout describes the block structure of an L-byte EME2 message:
// m total blocks, with the last one possibly short.
type eme2Layout struct {
	m       int
	lastLen int // 16 if the last block is full
}

func eme2LayoutFor(l int) eme2Layout {
	full := l / eme2BlockSize
	rem := l % eme2BlockSize
	if rem == 0 {
		return eme2Layout{m: full, lastLen: eme2BlockSize}
	}
	return eme2Layout{m: full + 1, lastLen: rem}
}

func (lay eme2Layout) isLastShort() bool { return lay.lastLen != eme2BlockSize }

// chainEnd returns the 1-based block index the mixing chain runs
// through: m when the last block is full, m-1 when it's short.
func (lay eme2Layout) chainEnd() int {
	if lay.isLastShort() {
		return lay.m - 1
	}
	return lay.m
}

func deriveMasks(k2 []byte, m int) [][]byte {
	masks := make([][]byte, m)
	cur := append([]byte(nil), k2...)
	for i := 0; i < m; i++ {
		masks[i] = cur
		cur = multAlpha(cur)
	}
	return masks
}

func splitBlocks(data []byte, lay eme2Layout) [][]byte {
	blocks := make([][]byte, lay.m)
	for i := 0; i < lay.m-1; i++ {
		blocks[i] = data[i*eme2BlockSize : (i+1)*eme2BlockSize]
	}
	blocks[lay.m-1] = data[(lay.m-1)*eme2BlockSize:]
	return blocks
}

func splitKeyMaterial(derivedKey []byte) (k2, k3, kAES []byte, err error) {
	switch len(derivedKey) {
	case 48, 64:
	default:
		return nil, nil, nil, fmt.Errorf("subtle: eme2 derived key must be 48 or 64 bytes, got %d", len(derivedKey))
	}
	return derivedKey[0:16], derivedKey[16:32], derivedKey[32:], nil
}

func eme2ValidateCommon(derivedKey, tweak []byte, order, value *big.Int) error {
	if derivedKey == nil {
		return fmt.Errorf("subtle: eme2 key must not be nil")
	}
	if order.BitLen() <= eme2MinOrderBits {
		return fmt.Errorf("subtle: eme2 message space must exceed %d bits, got %d", eme2MinOrderBits, order.BitLen())
	}
	if value.Sign() < 0 {
		return fmt.Errorf("subtle: eme2 input must be non-negative, got %s", value)
	}
	if value.Cmp(order) >= 0 {
		return fmt.Errorf("subtle: eme2 input %s is not within [0, %s)", value, order)
	}
	return nil
}

func eme2MessageByteLen(order *big.Int) int {
	l := byteLength(order.BitLen())
	if l < eme2BlockSize {
		l = eme2BlockSize
	}
	return l
}

func byteLength(bits int) int { return (bits + 7) / 8 }

// EME2Encrypt encrypts plaintext, an integer in [0, order), using a
// key layout of K2 || K3 || K_AES (derivedKey, 48 or 64 bytes), a
// tweak of any length, and cycle-walks until the result is back in
// [0, order).
func EME2Encrypt(derivedKey, tweak []byte, order, plaintext *big.Int) (*big.Int, error) {
	if err := eme2ValidateCommon(derivedKey, tweak, order, plaintext); err != nil {
		return nil, err
	}
	k2, k3, kAES, err := splitKeyMaterial(derivedKey)
	if err != nil {
		return nil, err
	}

	l := eme2MessageByteLen(order)
	x := new(big.Int).Set(plaintext)
	for iter := 0; iter < eme2CycleWalkCap; iter++ {
		x, err = eme2EncryptOnce(k2, k3, kAES, tweak, l, x)
		if err != nil {
			return nil, err
		}
		if x.Cmp(order) < 0 {
			return x, nil
		}
	}
	return nil, fmt.Errorf("subtle: eme2 cycle walk exceeded %d iterations", eme2CycleWalkCap)
}

// EME2Decrypt is the inverse of EME2Encrypt.
func EME2Decrypt(derivedKey, tweak []byte, order, ciphertext *big.Int) (*big.Int, error) {
	if err := eme2ValidateCommon(derivedKey, tweak, order, ciphertext); err != nil {
		return nil, err
	}
	k2, k3, kAES, err := splitKeyMaterial(derivedKey)
	if err != nil {
		return nil, err
	}

	l := eme2MessageByteLen(order)
	y := new(big.Int).Set(ciphertext)
	for iter := 0; iter < eme2CycleWalkCap; iter++ {
		var err2 error
		y, err2 = eme2DecryptOnce(k2, k3, kAES, tweak, l, y)
		if err2 != nil {
			return nil, err2
		}
		if y.Cmp(order) < 0 {
			return y, nil
		}
	}
	return nil, fmt.Errorf("subtle: eme2 cycle walk exceeded %d iterations", eme2CycleWalkCap)
}

func eme2EncryptOnce(k2, k3, kAES, tweak []byte, l int, x *big.Int) (*big.Int, error) {
	lay := eme2LayoutFor(l)
	plaintext := encodeFixed(x, l)
	blocks := splitBlocks(plaintext, lay)
	masks := deriveMasks(k2, lay.m)

	tStar, err := eme2TweakDigest(kAES, k3, tweak)
	if err != nil {
		return nil, err
	}

	pp := make([][]byte, lay.m)
	for i := 0; i < lay.m-1; i++ {
		enc, err := ecbEncryptBlock(kAES, xorBytes(blocks[i], masks[i]))
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 first pass: %w", err)
		}
		pp[i] = enc
	}
	if !lay.isLastShort() {
		enc, err := ecbEncryptBlock(kAES, xorBytes(blocks[lay.m-1], masks[lay.m-1]))
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 first pass: %w", err)
		}
		pp[lay.m-1] = enc
	} else {
		pp[lay.m-1] = padZero(blocks[lay.m-1])
	}

	mp := append([]byte(nil), tStar...)
	for _, p := range pp {
		xorInto(mp, p)
	}

	var mm []byte
	var mc []byte
	if lay.isLastShort() {
		mm, err = ecbEncryptBlock(kAES, mp)
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 mixing: %w", err)
		}
		mc, err = ecbEncryptBlock(kAES, mm)
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 mixing: %w", err)
		}
	} else {
		mc, err = ecbEncryptBlock(kAES, mp)
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 mixing: %w", err)
		}
	}
	m1 := xorBytes(mp, mc)

	cc := make([][]byte, lay.m)
	chainEnd := lay.chainEnd()
	m := append([]byte(nil), m1...)
	for i := 2; i <= chainEnd; i++ {
		if (i-1)%eme2RefreshEvery != 0 {
			m = multAlpha(m)
			cc[i-1] = xorBytes(pp[i-1], m)
		} else {
			mp2 := xorBytes(pp[i-1], m1)
			mc2, err := ecbEncryptBlock(kAES, mp2)
			if err != nil {
				return nil, fmt.Errorf("subtle: eme2 mixing refresh: %w", err)
			}
			m = xorBytes(mp2, mc2)
			cc[i-1] = xorBytes(mc2, m1)
		}
	}

	var shortCipherLast []byte
	var ccLastForSum []byte
	if lay.isLastShort() {
		cShort := xorBytes(blocks[lay.m-1], mm[:lay.lastLen])
		shortCipherLast = cShort
		ccLastForSum = padZero(cShort)
	} else {
		ccLastForSum = cc[lay.m-1]
	}

	total := append([]byte(nil), mc...)
	xorInto(total, tStar)
	for i := 2; i <= lay.m-1; i++ {
		xorInto(total, cc[i-1])
	}
	if lay.m >= 2 {
		xorInto(total, ccLastForSum)
	}
	cc[0] = total

	c := make([][]byte, lay.m)
	for i := 0; i < lay.m-1; i++ {
		enc, err := ecbEncryptBlock(kAES, cc[i])
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 second pass: %w", err)
		}
		c[i] = xorBytes(enc, masks[i])
	}
	if !lay.isLastShort() {
		enc, err := ecbEncryptBlock(kAES, cc[lay.m-1])
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 second pass: %w", err)
		}
		c[lay.m-1] = xorBytes(enc, masks[lay.m-1])
	} else {
		c[lay.m-1] = shortCipherLast
	}

	out := make([]byte, 0, l)
	for _, blk := range c {
		out = append(out, blk...)
	}
	return new(big.Int).SetBytes(out), nil
}

func eme2DecryptOnce(k2, k3, kAES, tweak []byte, l int, y *big.Int) (*big.Int, error) {
	lay := eme2LayoutFor(l)
	ciphertext := encodeFixed(y, l)
	c := splitBlocks(ciphertext, lay)
	masks := deriveMasks(k2, lay.m)

	tStar, err := eme2TweakDigest(kAES, k3, tweak)
	if err != nil {
		return nil, err
	}

	cc := make([][]byte, lay.m)
	for i := 0; i < lay.m-1; i++ {
		dec, err := aesDecryptBlock(kAES, xorBytes(c[i], masks[i]))
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 inverse second pass: %w", err)
		}
		cc[i] = dec
	}
	var ccLastForSum []byte
	if !lay.isLastShort() {
		dec, err := aesDecryptBlock(kAES, xorBytes(c[lay.m-1], masks[lay.m-1]))
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 inverse second pass: %w", err)
		}
		cc[lay.m-1] = dec
		ccLastForSum = dec
	} else {
		ccLastForSum = padZero(c[lay.m-1])
	}

	total := append([]byte(nil), tStar...)
	for i := 2; i <= lay.m-1; i++ {
		xorInto(total, cc[i-1])
	}
	if lay.m >= 2 {
		xorInto(total, ccLastForSum)
	}
	mc := xorBytes(cc[0], total)

	var mm []byte
	var mp []byte
	if lay.isLastShort() {
		mm, err = aesDecryptBlock(kAES, mc)
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 inverse mixing: %w", err)
		}
		mp, err = aesDecryptBlock(kAES, mm)
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 inverse mixing: %w", err)
		}
	} else {
		mp, err = aesDecryptBlock(kAES, mc)
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 inverse mixing: %w", err)
		}
	}
	m1 := xorBytes(mp, mc)

	pp := make([][]byte, lay.m)
	chainEnd := lay.chainEnd()
	m := append([]byte(nil), m1...)
	for i := 2; i <= chainEnd; i++ {
		if (i-1)%eme2RefreshEvery != 0 {
			m = multAlpha(m)
			pp[i-1] = xorBytes(cc[i-1], m)
		} else {
			mc2 := xorBytes(cc[i-1], m1)
			mp2, err := aesDecryptBlock(kAES, mc2)
			if err != nil {
				return nil, fmt.Errorf("subtle: eme2 inverse mixing refresh: %w", err)
			}
			m = xorBytes(mp2, mc2)
			pp[i-1] = xorBytes(mp2, m1)
		}
	}

	blocks := make([][]byte, lay.m)
	var ppLastForSum []byte
	if lay.isLastShort() {
		plainLast := xorBytes(c[lay.m-1], mm[:lay.lastLen])
		blocks[lay.m-1] = plainLast
		ppLastForSum = padZero(plainLast)
	} else {
		ppLastForSum = pp[lay.m-1]
	}

	rest := append([]byte(nil), tStar...)
	for i := 2; i <= lay.m-1; i++ {
		xorInto(rest, pp[i-1])
	}
	if lay.m >= 2 {
		xorInto(rest, ppLastForSum)
	}
	pp[0] = xorBytes(mp, rest)

	for i := 0; i < lay.m-1; i++ {
		dec, err := aesDecryptBlock(kAES, pp[i])
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 inverse first pass: %w", err)
		}
		blocks[i] = xorBytes(dec, masks[i])
	}
	if !lay.isLastShort() {
		dec, err := aesDecryptBlock(kAES, pp[lay.m-1])
		if err != nil {
			return nil, fmt.Errorf("subtle: eme2 inverse first pass: %w", err)
		}
		blocks[lay.m-1] = xorBytes(dec, masks[lay.m-1])
	}

	out := make([]byte, 0, l)
	for _, blk := range blocks {
		out = append(out, blk...)
	}
	return new(big.Int).SetBytes(out), nil
}

// encodeFixed encodes v as exactly byteLen big-endian bytes.
func encodeFixed(v *big.Int, byteLen int) []byte {
	raw := v.Bytes()
	if len(raw) >= byteLen {
		return raw[len(raw)-byteLen:]
	}
	out := make([]byte, byteLen)
	copy(out[byteLen-len(raw):], raw)
	return out
}
