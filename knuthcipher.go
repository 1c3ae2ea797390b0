package fpe

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru"

	"github.com/vdparikh/gofpe/subtle"
)

// knuthCacheSize bounds the number of distinct (key, tweak) shuffle
// tables a single KnuthShuffleCipher keeps warm at once.
const knuthCacheSize = 256

// knuthMaxOrder is the largest order a KnuthShuffleCipher will accept;
// table construction and storage are both O(order), so this keeps the
// "tiny message space" cipher from silently becoming the bottleneck
// when a caller hands it something FFX should have handled instead.
const knuthMaxOrder = 1 << 24

// KnuthShuffleCipher is an IntegerCipher over a tiny message space
// (conventionally bitlength(order) < 8), implemented as a Fisher-Yates
// shuffle table.
//
// Building the table is O(order), so the forward and inverse
// permutations are cached per derived (key, tweak) pair in two LRUs.
// Call DropPermutationTables to release that memory early.
type KnuthShuffleCipher struct {
	order *big.Int
	max   int

	forwardCache *lru.Cache
	inverseCache *lru.Cache
}

// NewKnuthShuffleCipher builds a KnuthShuffleCipher over [0, order).
func NewKnuthShuffleCipher(order *big.Int) (*KnuthShuffleCipher, error) {
	if order == nil || order.Sign() <= 0 {
		return nil, invalidArgf("knuth cipher order must be positive, got %s", order)
	}
	if !order.IsInt64() || order.Int64() > knuthMaxOrder {
		return nil, invalidArgf("knuth cipher order %s is too large for a tiny message space", order)
	}

	forward, err := lru.New(knuthCacheSize)
	if err != nil {
		return nil, securityProviderf("building knuth permutation cache: %v", err)
	}
	inverse, err := lru.New(knuthCacheSize)
	if err != nil {
		return nil, securityProviderf("building knuth permutation cache: %v", err)
	}
	return &KnuthShuffleCipher{
		order:        new(big.Int).Set(order),
		max:          int(order.Int64()) - 1,
		forwardCache: forward,
		inverseCache: inverse,
	}, nil
}

// Order implements IntegerCipher.
func (c *KnuthShuffleCipher) Order() *big.Int { return new(big.Int).Set(c.order) }

// DropPermutationTables purges every cached permutation table. Tables
// are rebuilt lazily on the next Encrypt or Decrypt call that needs
// them.
func (c *KnuthShuffleCipher) DropPermutationTables() {
	c.forwardCache.Purge()
	c.inverseCache.Purge()
}

func (c *KnuthShuffleCipher) tableKey(keyBytes, tweakBytes []byte) string {
	return string(keyBytes) + "|" + string(tweakBytes)
}

func (c *KnuthShuffleCipher) tables(key *Key, tweak []byte) (forward, inverse []int, err error) {
	if key == nil {
		return nil, nil, invalidArgf("knuth cipher key must not be nil")
	}
	keyBytes, err := key.Derive(16)
	if err != nil {
		return nil, nil, err
	}
	tweakBytes, err := deriveKnuthTweak(tweak)
	if err != nil {
		return nil, nil, securityProviderf("deriving knuth tweak: %v", err)
	}

	cacheKey := c.tableKey(keyBytes, tweakBytes)
	if v, ok := c.forwardCache.Get(cacheKey); ok {
		inv, _ := c.inverseCache.Get(cacheKey)
		return v.([]int), inv.([]int), nil
	}

	fwd, inv, err := subtle.GeneratePermutation(keyBytes, tweakBytes, c.max)
	if err != nil {
		return nil, nil, securityProviderf("generating knuth permutation: %v", err)
	}
	c.forwardCache.Add(cacheKey, fwd)
	c.inverseCache.Add(cacheKey, inv)
	return fwd, inv, nil
}

// Encrypt implements IntegerCipher.
func (c *KnuthShuffleCipher) Encrypt(plaintext *big.Int, key *Key, tweak []byte) (*big.Int, error) {
	if plaintext == nil || plaintext.Sign() < 0 || plaintext.Cmp(c.order) >= 0 {
		return nil, outsideMessageSpacef("%s is not within [0, %s)", plaintext, c.order)
	}
	forward, _, err := c.tables(key, tweak)
	if err != nil {
		return nil, err
	}
	return big.NewInt(int64(forward[int(plaintext.Int64())])), nil
}

// Decrypt implements IntegerCipher.
func (c *KnuthShuffleCipher) Decrypt(ciphertext *big.Int, key *Key, tweak []byte) (*big.Int, error) {
	if ciphertext == nil || ciphertext.Sign() < 0 || ciphertext.Cmp(c.order) >= 0 {
		return nil, outsideMessageSpacef("%s is not within [0, %s)", ciphertext, c.order)
	}
	_, inverse, err := c.tables(key, tweak)
	if err != nil {
		return nil, err
	}
	return big.NewInt(int64(inverse[int(ciphertext.Int64())])), nil
}
