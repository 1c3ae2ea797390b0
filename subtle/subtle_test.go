package subtle

import (
	"bytes"
	"testing"
)

func TestEcbAndAesDecryptBlockRoundTrip(t *testing.T) {
	key := mustKey16(t)
	plain := make([]byte, 16)
	for i := range plain {
		plain[i] = byte(i * 5)
	}

	ct, err := ecbEncryptBlock(key, plain)
	if err != nil {
		t.Fatalf("ecbEncryptBlock: %v", err)
	}
	pt, err := aesDecryptBlock(key, ct)
	if err != nil {
		t.Fatalf("aesDecryptBlock: %v", err)
	}
	if !bytes.Equal(pt, plain) {
		t.Fatalf("round trip mismatch: got %x, want %x", pt, plain)
	}
}

func TestCbcEncryptDecryptIVRoundTrip(t *testing.T) {
	key := mustKey16(t)
	iv := make([]byte, 16)
	for i := range iv {
		iv[i] = byte(i)
	}
	data := make([]byte, 48)
	for i := range data {
		data[i] = byte(i * 3)
	}

	ct, err := cbcEncryptIV(key, iv, data)
	if err != nil {
		t.Fatalf("cbcEncryptIV: %v", err)
	}
	pt, err := cbcDecryptIV(key, iv, ct)
	if err != nil {
		t.Fatalf("cbcDecryptIV: %v", err)
	}
	if !bytes.Equal(pt, data) {
		t.Fatalf("round trip mismatch: got %x, want %x", pt, data)
	}
}

func TestCbcEncryptZeroIVMatchesExplicitZeroIV(t *testing.T) {
	key := mustKey16(t)
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(i)
	}

	a, err := cbcEncryptZeroIV(key, data)
	if err != nil {
		t.Fatalf("cbcEncryptZeroIV: %v", err)
	}
	b, err := cbcEncryptIV(key, make([]byte, 16), data)
	if err != nil {
		t.Fatalf("cbcEncryptIV: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("cbcEncryptZeroIV should match cbcEncryptIV with an explicit zero IV")
	}
}

func TestXorBytesAndXorInto(t *testing.T) {
	a := []byte{0xFF, 0x0F, 0xAA}
	b := []byte{0x0F, 0xFF, 0x55}

	xored := xorBytes(a, b)
	want := []byte{0xF0, 0xF0, 0xFF}
	if !bytes.Equal(xored, want) {
		t.Fatalf("xorBytes = %x, want %x", xored, want)
	}

	dst := append([]byte(nil), a...)
	xorInto(dst, b)
	if !bytes.Equal(dst, want) {
		t.Fatalf("xorInto = %x, want %x", dst, want)
	}
}

func TestBitLength(t *testing.T) {
	cases := []struct {
		n    int
		bits int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {255, 8}, {256, 9},
	}
	for _, tc := range cases {
		if got := bitLength(tc.n); got != tc.bits {
			t.Errorf("bitLength(%d) = %d, want %d", tc.n, got, tc.bits)
		}
	}
}

func TestAesBlockEncrypterEncryptsLikeEcbEncryptBlock(t *testing.T) {
	key := mustKey16(t)
	plain := make([]byte, 16)
	for i := range plain {
		plain[i] = byte(i)
	}

	block, err := aesBlockEncrypter(key)
	if err != nil {
		t.Fatalf("aesBlockEncrypter: %v", err)
	}
	direct := make([]byte, 16)
	block.Encrypt(direct, plain)

	viaHelper, err := ecbEncryptBlock(key, plain)
	if err != nil {
		t.Fatalf("ecbEncryptBlock: %v", err)
	}
	if !bytes.Equal(direct, viaHelper) {
		t.Fatalf("aesBlockEncrypter output = %x, want %x", direct, viaHelper)
	}
}
