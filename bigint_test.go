package fpe

import (
	"math/big"
	"testing"
)

func TestBitLength(t *testing.T) {
	cases := []struct {
		v    int64
		bits int
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {255, 8}, {256, 9},
	}
	for _, tc := range cases {
		if got := bitLength(big.NewInt(tc.v)); got != tc.bits {
			t.Errorf("bitLength(%d) = %d, want %d", tc.v, got, tc.bits)
		}
	}
}
