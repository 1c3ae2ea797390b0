package fpe

import "math/big"

// bitLength returns the number of bits needed to represent v, i.e.
// v.BitLen(). Kept as a named helper since it's referenced throughout
// the spec as "bitlength(order)".
func bitLength(v *big.Int) int {
	return v.BitLen()
}
