package primitives

import "testing"

// TestSymbolValidity covers spec §8 scenario 5.
func TestSymbolValidity(t *testing.T) {
	valid := []string{"MUSE", "EUR.USD"}
	for _, s := range valid {
		if err := ValidateSymbol(s); err != nil {
			t.Errorf("expected %q to be valid, got: %v", s, err)
		}
	}

	invalid := []string{"A", "lower", "A..B", "AB1"}
	for _, s := range invalid {
		if err := ValidateSymbol(s); err == nil {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestAccountNameGrammar(t *testing.T) {
	valid := []string{"alice", "bob-2", "music.dao"}
	for _, n := range valid {
		if err := ValidateAccountName(n); err != nil {
			t.Errorf("expected %q to be valid, got: %v", n, err)
		}
	}
	invalid := []string{"ab", "Alice", "this-name-is-way-too-long-for-16"}
	for _, n := range invalid {
		if err := ValidateAccountName(n); err == nil {
			t.Errorf("expected %q to be invalid", n)
		}
	}
}
