package fpe

import (
	"crypto/sha1" //nolint:gosec // PBKDF2-HMAC-SHA1 is the fixed, documented KDF for this format; not used for its collision resistance.
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// fixedDerivationSalt is the salt used by Key.Derive. It is a published
// constant of this format, not a secret.
var fixedDerivationSalt = []byte{
	0x27, 0x03, 0xA2, 0x80, 0x00, 0x7F, 0x0D, 0x2B,
	0xED, 0x78, 0x14, 0x5E, 0xC2, 0x65, 0x0E, 0x5B,
}

// knuthTweakDerivationSalt is the salt used when a Knuth shuffle tweak
// must be stretched or shrunk to exactly 16 bytes.
var knuthTweakDerivationSalt = []byte{
	0x15, 0x03, 0xA2, 0x80, 0x00, 0x7F, 0x0D, 0x2B,
	0xED, 0x78, 0x14, 0x5E, 0xC2, 0x65, 0x0E, 0x5B,
}

const pbkdf2Iterations = 10000

// Key is an immutable holder of base key material. Derive produces
// sub-keys of arbitrary byte length, deterministically and
// reproducibly across calls and processes, memoizing each length it
// has already derived.
//
// A Key is safe for concurrent use: the derivation memo is guarded by
// a mutex.
type Key struct {
	original []byte

	mu   sync.Mutex
	memo map[int][]byte
}

// NewKey stores the given bytes as the base key material. An empty
// (but non-nil) byte slice is permitted.
func NewKey(original []byte) (*Key, error) {
	if original == nil {
		return nil, invalidArgf("key bytes must not be nil")
	}
	return &Key{
		original: append([]byte(nil), original...),
		memo:     make(map[int][]byte),
	}, nil
}

// Derive returns length bytes of key material deterministically
// derived from the original key. If length equals the length of the
// original key, the original bytes are returned unchanged; otherwise
// the bytes come from PBKDF2-HMAC-SHA1 with the fixed derivation salt,
// 10,000 iterations, and an output length of length*8 bits.
//
// The PBKDF2 password is the original key bytes themselves, passed as
// raw codepoints (no UTF-8/Latin-1 re-decoding) so the derivation is
// byte-transparent regardless of what the bytes mean to the caller.
func (k *Key) Derive(length int) ([]byte, error) {
	if length < 0 {
		return nil, invalidArgf("derived key length must be non-negative, got %d", length)
	}
	if length == len(k.original) {
		return append([]byte(nil), k.original...), nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if cached, ok := k.memo[length]; ok {
		return append([]byte(nil), cached...), nil
	}

	derived := pbkdf2.Key(k.original, fixedDerivationSalt, pbkdf2Iterations, length, sha1.New)
	k.memo[length] = derived
	return append([]byte(nil), derived...), nil
}

// deriveKnuthTweak stretches or shrinks tweak to exactly 16 bytes using
// the Knuth-specific PBKDF2 salt. Unlike Derive this is not memoized on
// the Key since it's keyed by the tweak, not by a requested length; the
// KnuthShuffleCipher's own cache covers the repeated-call case.
func deriveKnuthTweak(tweak []byte) ([]byte, error) {
	if len(tweak) == 16 {
		return tweak, nil
	}
	return pbkdf2.Key(tweak, knuthTweakDerivationSalt, pbkdf2Iterations, 16, sha1.New), nil
}

// IsKeyLengthAllowed reports whether length is a key length the
// underlying AES provider accepts (16, 24, or 32 bytes).
func IsKeyLengthAllowed(length int) bool {
	switch length {
	case 16, 24, 32:
		return true
	default:
		return false
	}
}

// aesMaxKeyLen is exposed for components that need to size a derived
// key against what crypto/aes actually supports.
const aesMaxKeyLen = 32
