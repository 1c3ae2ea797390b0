package fpe

import (
	"math/big"
	"testing"
)

func TestEME2IntegerCipherRoundTripAES128(t *testing.T) {
	order := new(big.Int).Lsh(big.NewInt(1), 200)
	cipher, err := NewEME2IntegerCipher(order, EME2AES128)
	if err != nil {
		t.Fatalf("NewEME2IntegerCipher: %v", err)
	}
	key, err := NewKey([]byte("an eme2 cipher key"))
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	tweak := make([]byte, 37)
	for i := range tweak {
		tweak[i] = byte(i)
	}

	pt := big.NewInt(9999999999)
	ct, err := cipher.Encrypt(pt, key, tweak)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	back, err := cipher.Decrypt(ct, key, tweak)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if back.Cmp(pt) != 0 {
		t.Fatalf("round trip mismatch: got %s, want %s", back, pt)
	}
}

func TestEME2IntegerCipherRoundTripAES256(t *testing.T) {
	order := new(big.Int).Lsh(big.NewInt(1), 300)
	cipher, err := NewEME2IntegerCipher(order, EME2AES256)
	if err != nil {
		t.Fatalf("NewEME2IntegerCipher: %v", err)
	}
	key, err := NewKey([]byte("another eme2 cipher key"))
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}

	pt := big.NewInt(42)
	ct, err := cipher.Encrypt(pt, key, nil)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	back, err := cipher.Decrypt(ct, key, nil)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if back.Cmp(pt) != 0 {
		t.Fatalf("round trip mismatch: got %s, want %s", back, pt)
	}
}

func TestEME2IntegerCipherRejectsSmallOrder(t *testing.T) {
	order := big.NewInt(1000)
	if _, err := NewEME2IntegerCipher(order, EME2AES128); err == nil {
		t.Fatal("expected an error for an order not needing more than 128 bits")
	}
}

func TestEME2IntegerCipherRejectsUnknownStrength(t *testing.T) {
	order := new(big.Int).Lsh(big.NewInt(1), 200)
	if _, err := NewEME2IntegerCipher(order, EME2KeyStrengthBits(64)); err == nil {
		t.Fatal("expected an error for an unsupported key strength")
	}
}
