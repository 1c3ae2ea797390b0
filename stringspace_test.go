package fpe

import (
	"math/big"
	"testing"
)

func TestStringMessageSpaceRankUnrankRoundTrip(t *testing.T) {
	dfa := NewIntervalAutomaton(0, 99, 2)
	space, err := NewStringMessageSpace(dfa, 2)
	if err != nil {
		t.Fatalf("NewStringMessageSpace: %v", err)
	}
	if space.Order().Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("Order() = %s, want 100", space.Order())
	}

	for v := 0; v < 100; v++ {
		word := string([]byte{byte('0' + v/10), byte('0' + v%10)})
		rank, err := space.Rank(word)
		if err != nil {
			t.Fatalf("Rank(%q): %v", word, err)
		}
		back, err := space.Unrank(rank)
		if err != nil {
			t.Fatalf("Unrank(%s): %v", rank, err)
		}
		if back != word {
			t.Fatalf("round trip for %q: got %q (rank %s)", word, back, rank)
		}
	}
}

func TestStringMessageSpaceRankIsStrictlyIncreasing(t *testing.T) {
	dfa := NewIntervalAutomaton(0, 999, 3)
	space, err := NewStringMessageSpace(dfa, 3)
	if err != nil {
		t.Fatalf("NewStringMessageSpace: %v", err)
	}

	var prevRank *big.Int
	for v := 0; v < 1000; v++ {
		word := string([]byte{byte('0' + v/100), byte('0' + (v/10)%10), byte('0' + v%10)})
		rank, err := space.Rank(word)
		if err != nil {
			t.Fatalf("Rank(%q): %v", word, err)
		}
		if prevRank != nil && rank.Cmp(prevRank) <= 0 {
			t.Fatalf("rank did not increase at %q: %s <= %s", word, rank, prevRank)
		}
		prevRank = rank
	}
}

func TestStringMessageSpaceLiteralAutomatonOverFirst13Elements(t *testing.T) {
	words := []string{
		"aa", "ab", "ac", "ba", "bb", "bc", "ca", "cb", "cc",
		"a", "b", "c", "aaa",
	}
	dfa := NewLiteralAutomaton(words...)
	space, err := NewStringMessageSpace(dfa, 0)
	if err != nil {
		t.Fatalf("NewStringMessageSpace: %v", err)
	}
	if space.Order().Cmp(big.NewInt(int64(len(words)))) != 0 {
		t.Fatalf("Order() = %s, want %d", space.Order(), len(words))
	}

	seen := make(map[string]bool)
	for rank := int64(0); rank < int64(len(words)); rank++ {
		word, err := space.Unrank(big.NewInt(rank))
		if err != nil {
			t.Fatalf("Unrank(%d): %v", rank, err)
		}
		if seen[word] {
			t.Fatalf("rank %d produced duplicate word %q", rank, word)
		}
		seen[word] = true

		back, err := space.Rank(word)
		if err != nil {
			t.Fatalf("Rank(%q): %v", word, err)
		}
		if back.Int64() != rank {
			t.Fatalf("Rank(Unrank(%d)) = %s, want %d", rank, back, rank)
		}
	}
}

func TestStringMessageSpaceRejectsWordOutsideLanguage(t *testing.T) {
	dfa := NewLiteralAutomaton("yes", "no")
	space, err := NewStringMessageSpace(dfa, 0)
	if err != nil {
		t.Fatalf("NewStringMessageSpace: %v", err)
	}
	if _, err := space.Rank("maybe"); err == nil {
		t.Fatal("expected an error ranking a word outside the language")
	}
}

func TestStringMessageSpaceRejectsEmptyLanguage(t *testing.T) {
	dfa := NewAutomaton()
	start := dfa.AddState(false)
	dfa.SetStart(start)
	if _, err := NewStringMessageSpace(dfa, 10); err == nil {
		t.Fatal("expected an error constructing a space over a language with no accepted words")
	}
}

func TestStringMessageSpaceRejectsNilDFA(t *testing.T) {
	if _, err := NewStringMessageSpace(nil, 10); err == nil {
		t.Fatal("expected an error for a nil DFA")
	}
}
