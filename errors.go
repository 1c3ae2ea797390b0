// Package fpe implements Format-Preserving Encryption (FPE): a family of
// keyed permutation ciphers whose ciphertext is guaranteed to lie in the
// same structured domain as the plaintext.
//
// The core idea is rank-then-encipher: a MessageSpace bijects a structured
// domain (an integer range, an enumeration, or a regular language accepted
// by a DFA) onto [0, N), an IntegerCipher permutes that interval under a
// key and tweak, and the result is unranked back into the domain. Three
// integer ciphers are provided, chosen automatically by the size of the
// domain: KnuthShuffleCipher for tiny domains, FFXIntegerCipher for
// small-to-medium domains, and EME2IntegerCipher for arbitrarily large
// ones.
//
// This package does not generate keys, parse regular expressions into
// DFAs, or persist ciphertexts; those are left to the caller. See
// tinkfpe for one way to source key material from a Tink keyset.
package fpe

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every public constructor and cipher operation
// fails with one of these, wrapped with context via fmt.Errorf's %w so
// errors.Is still matches.
var (
	// ErrInvalidArgument signals a null/missing parameter, a wrong-length
	// key or tweak, a negative input, or an otherwise malformed
	// constructor argument. Validation happens before any cryptographic
	// state is touched.
	ErrInvalidArgument = errors.New("fpe: invalid argument")

	// ErrOutsideMessageSpace signals that a value is not a member of the
	// message space it was ranked, unranked, or enciphered against. It
	// propagates unchanged through RankThenEncipher.
	ErrOutsideMessageSpace = errors.New("fpe: value outside message space")

	// ErrSecurityProvider signals a failure from the underlying AES or
	// PBKDF2 primitive. Since every parameter reaching these primitives
	// is validated and library-controlled, a failure here reflects a
	// configuration problem rather than caller error.
	ErrSecurityProvider = errors.New("fpe: security provider failure")
)

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

func outsideMessageSpacef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrOutsideMessageSpace}, args...)...)
}

func securityProviderf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrSecurityProvider}, args...)...)
}
