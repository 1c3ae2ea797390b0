package fpe

import "testing"

func TestLiteralAutomatonAcceptsExactWords(t *testing.T) {
	a := NewLiteralAutomaton("cat", "car", "dog")

	accepts := func(word string) bool {
		state := a.Start()
		for _, c := range word {
			next, ok := a.Step(state, c)
			if !ok {
				return false
			}
			state = next
		}
		return a.IsAccepting(state)
	}

	for _, w := range []string{"cat", "car", "dog"} {
		if !accepts(w) {
			t.Errorf("expected %q to be accepted", w)
		}
	}
	for _, w := range []string{"ca", "cats", "do", "bird", ""} {
		if accepts(w) {
			t.Errorf("expected %q to be rejected", w)
		}
	}
}

func TestLiteralAutomatonSharesPrefixes(t *testing.T) {
	a := NewLiteralAutomaton("cat", "car")
	// "cat" and "car" share "ca"; the trie should only allocate 5 states
	// total: root, c, a, t, r.
	if a.NumStates() != 5 {
		t.Fatalf("NumStates() = %d, want 5 for a shared-prefix trie", a.NumStates())
	}
}

func TestLiteralAutomatonAcceptsEmptyWord(t *testing.T) {
	a := NewLiteralAutomaton("")
	if !a.IsAccepting(a.Start()) {
		t.Fatal("expected the start state to accept the empty word")
	}
}

func TestIntervalAutomatonAcceptsExactlyTheRange(t *testing.T) {
	a := NewIntervalAutomaton(17, 42, 2)

	accepts := func(word string) bool {
		state := a.Start()
		for _, c := range word {
			next, ok := a.Step(state, c)
			if !ok {
				return false
			}
			state = next
		}
		return a.IsAccepting(state)
	}

	for v := 0; v < 100; v++ {
		word := string([]byte{byte('0' + v/10), byte('0' + v%10)})
		want := v >= 17 && v <= 42
		if got := accepts(word); got != want {
			t.Errorf("accepts(%q) = %v, want %v", word, got, want)
		}
	}
}

func TestIntervalAutomatonRejectsWrongLength(t *testing.T) {
	a := NewIntervalAutomaton(0, 9, 2)
	state := a.Start()
	next, ok := a.Step(state, '0')
	if !ok {
		t.Fatal("expected a transition on the first digit")
	}
	next, ok = a.Step(next, '5')
	if !ok {
		t.Fatal("expected a transition on the second digit")
	}
	if _, ok := a.Step(next, '5'); ok {
		// "05" already fills both digits, so a third digit has no
		// transition.
		t.Fatal("expected no transition past the fixed width")
	}
}
