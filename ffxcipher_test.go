package fpe

import (
	"math/big"
	"testing"
)

func TestFFXIntegerCipherRoundTrip(t *testing.T) {
	cipher, err := NewFFXIntegerCipher(big.NewInt(1 << 20))
	if err != nil {
		t.Fatalf("NewFFXIntegerCipher: %v", err)
	}
	key, err := NewKey([]byte("an ffx cipher key"))
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	tweak := []byte("a tweak")

	pt := big.NewInt(654321)
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

func TestFFXIntegerCipherRejectsOversizedOrder(t *testing.T) {
	order := new(big.Int).Lsh(big.NewInt(1), 129)
	if _, err := NewFFXIntegerCipher(order); err == nil {
		t.Fatal("expected an error for an order exceeding 128 bits")
	}
}

func TestFFXIntegerCipherRejectsOutOfRangePlaintext(t *testing.T) {
	cipher, err := NewFFXIntegerCipher(big.NewInt(100))
	if err != nil {
		t.Fatalf("NewFFXIntegerCipher: %v", err)
	}
	key, err := NewKey([]byte("k"))
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if _, err := cipher.Encrypt(big.NewInt(100), key, nil); err == nil {
		t.Fatal("expected an error encrypting a value at the order boundary")
	}
}
