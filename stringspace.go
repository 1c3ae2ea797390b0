package fpe

import "math/big"

// DefaultMaxWordLength is the maximum word length StringMessageSpace
// considers when neither finite nor bounded explicitly.
const DefaultMaxWordLength = 128

// StringMessageSpace ranks the words of a regular language, up to a
// maximum length, accepted by a DFA. Rank order is: shorter words
// before longer ones, and within a fixed length, lexicographic order
// over the DFA's alphabet.
//
// Construction builds a dynamic-programming table T where T[l][s] is
// the number of words of length exactly l accepted starting from state
// s; T[0][s] = 1 iff s is accepting. The table build stops early at
// the first length whose row is entirely zero, since no longer word
// can be accepted either: each row is a sum over entries of the
// previous row, so once a row is zero for every state, every later row
// is zero too.
type StringMessageSpace struct {
	dfa           DFA
	maxWordLength int
	alphabet      []rune
	alphaIndex    map[rune]int
	table         [][]*big.Int // table[l][s], l in [0, maxWordLength]
	order         *big.Int
	finite        bool
}

// NewStringMessageSpace builds a StringMessageSpace over dfa,
// considering words up to maxWordLength characters. Pass 0 for
// maxWordLength to use DefaultMaxWordLength.
//
// Construction rejects a nil DFA, a DFA with zero states, or one whose
// order works out to zero (the language is empty, or its only word is
// the empty string — spec.md requires order >= 1 since only lengths
// >= 1 are summed into Order()).
func NewStringMessageSpace(dfa DFA, maxWordLength int) (*StringMessageSpace, error) {
	if dfa == nil {
		return nil, invalidArgf("dfa must not be nil")
	}
	if dfa.NumStates() == 0 {
		return nil, invalidArgf("dfa must have at least one state")
	}
	if maxWordLength <= 0 {
		maxWordLength = DefaultMaxWordLength
	}

	alphabet := dfa.Alphabet()
	alphaIndex := make(map[rune]int, len(alphabet))
	for i, c := range alphabet {
		alphaIndex[c] = i
	}

	numStates := dfa.NumStates()
	table := make([][]*big.Int, maxWordLength+1)
	table[0] = make([]*big.Int, numStates)
	for s := 0; s < numStates; s++ {
		if dfa.IsAccepting(s) {
			table[0][s] = big.NewInt(1)
		} else {
			table[0][s] = big.NewInt(0)
		}
	}

	finite := true
	lastBuilt := 0
	for l := 1; l <= maxWordLength; l++ {
		row := make([]*big.Int, numStates)
		allZero := true
		for s := 0; s < numStates; s++ {
			total := big.NewInt(0)
			for _, c := range alphabet {
				next, ok := dfa.Step(s, c)
				if !ok {
					continue
				}
				total.Add(total, table[l-1][next])
			}
			row[s] = total
			if total.Sign() != 0 {
				allZero = false
			}
		}
		table[l] = row
		lastBuilt = l
		if allZero {
			finite = true
			break
		}
		if l == maxWordLength {
			// Row still has accepted words at the cap: the language
			// continues beyond maxWordLength exactly when the next row
			// would be non-zero, i.e. when some transition leads into
			// a state with words of length l. Words past the cap are
			// not ranked either way.
			for s := 0; s < numStates && finite; s++ {
				for _, c := range alphabet {
					if next, ok := dfa.Step(s, c); ok && row[next].Sign() != 0 {
						finite = false
						break
					}
				}
			}
		}
	}
	// Trim unused trailing rows if we stopped early.
	table = table[:lastBuilt+1]

	order := big.NewInt(0)
	for l := 1; l < len(table); l++ {
		order.Add(order, table[l][dfa.Start()])
	}
	if order.Sign() == 0 {
		return nil, invalidArgf("dfa language is empty or accepts only the empty word")
	}

	return &StringMessageSpace{
		dfa:           dfa,
		maxWordLength: maxWordLength,
		alphabet:      alphabet,
		alphaIndex:    alphaIndex,
		table:         table,
		order:         order,
		finite:        finite,
	}, nil
}

// Order implements MessageSpace.
func (s *StringMessageSpace) Order() *big.Int { return new(big.Int).Set(s.order) }

// MaxValue implements MessageSpace.
func (s *StringMessageSpace) MaxValue() *big.Int {
	return new(big.Int).Sub(s.order, big.NewInt(1))
}

// IsFinite reports whether the language's word count is fully captured
// within the configured maximum word length.
func (s *StringMessageSpace) IsFinite() bool { return s.finite }

// sliceAt returns T[length][state], or zero if length exceeds the
// table (no accepted words that long were found within the cap).
func (s *StringMessageSpace) sliceAt(length, state int) *big.Int {
	if length < 0 || length >= len(s.table) {
		return big.NewInt(0)
	}
	return s.table[length][state]
}

// Rank implements MessageSpace, following the algorithm in spec.md
// §4.3: sum the preceding-length slices, then walk the word
// accumulating the size of every lexicographically-smaller branch at
// each position.
func (s *StringMessageSpace) Rank(word string) (*big.Int, error) {
	runes := []rune(word)
	n := len(runes)

	if !s.accepts(runes) {
		return nil, outsideMessageSpacef("%q is not accepted by the message space's automaton", word)
	}

	r := big.NewInt(0)
	for l := 1; l < n; l++ {
		r.Add(r, s.sliceAt(l, s.dfa.Start()))
	}

	state := s.dfa.Start()
	for i := 0; i < n; i++ {
		c := runes[i]
		for _, sigma := range s.alphabet {
			if sigma >= c {
				break
			}
			if next, ok := s.dfa.Step(state, sigma); ok {
				r.Add(r, s.sliceAt(n-(i+1), next))
			}
		}
		next, ok := s.dfa.Step(state, c)
		if !ok {
			// accepts() already verified this path exists.
			return nil, outsideMessageSpacef("%q is not accepted by the message space's automaton", word)
		}
		state = next
	}
	return r, nil
}

// Unrank implements MessageSpace, the inverse of Rank: peel preceding
// slices to find the word's length, then greedily pick each character
// by comparing its branch size against the remaining rank.
func (s *StringMessageSpace) Unrank(rank *big.Int) (string, error) {
	if rank.Sign() < 0 || rank.Cmp(s.MaxValue()) > 0 {
		return "", outsideMessageSpacef("rank %s is not within [0, %s]", rank, s.MaxValue())
	}

	remaining := new(big.Int).Set(rank)
	length := -1
	for l := 1; l < len(s.table); l++ {
		slice := s.sliceAt(l, s.dfa.Start())
		if remaining.Cmp(slice) < 0 {
			length = l
			break
		}
		remaining.Sub(remaining, slice)
	}
	if length < 0 {
		return "", outsideMessageSpacef("rank %s is not within [0, %s]", rank, s.MaxValue())
	}

	out := make([]rune, length)
	state := s.dfa.Start()
	for i := 0; i < length; i++ {
		chosen := false
		for _, sigma := range s.alphabet {
			next, ok := s.dfa.Step(state, sigma)
			if !ok {
				continue
			}
			step := s.sliceAt(length-(i+1), next)
			if remaining.Cmp(step) >= 0 {
				remaining.Sub(remaining, step)
				continue
			}
			out[i] = sigma
			state = next
			chosen = true
			break
		}
		if !chosen {
			return "", outsideMessageSpacef("rank %s is not within [0, %s]", rank, s.MaxValue())
		}
	}
	return string(out), nil
}

// accepts reports whether the DFA accepts the given rune sequence,
// within the configured maxWordLength.
func (s *StringMessageSpace) accepts(runes []rune) bool {
	if len(runes) == 0 || len(runes) > s.maxWordLength {
		return false
	}
	state := s.dfa.Start()
	for _, c := range runes {
		next, ok := s.dfa.Step(state, c)
		if !ok {
			return false
		}
		state = next
	}
	return s.dfa.IsAccepting(state)
}
