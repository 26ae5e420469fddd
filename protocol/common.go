package protocol

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"harmonichain/primitives"
)

// MaxMemoLength bounds memo fields attached to transfers (spec §6's URL/memo
// grammar family; memos are plain UTF-8 text rather than a grammar).
const MaxMemoLength = 2048

// MaxURLLength bounds the content URL field (spec §6).
const MaxURLLength = 2048

func validateAccountName(field, name string) error {
	if err := primitives.ValidateAccountName(name); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

func validateSymbol(field, symbol string) error {
	if err := primitives.ValidateSymbol(symbol); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

func validateMemo(field, memo string) error {
	if !utf8.ValidString(memo) {
		return fmt.Errorf("%s: memo is not valid UTF-8", field)
	}
	if len(memo) > MaxMemoLength {
		return fmt.Errorf("%s: memo exceeds %d bytes", field, MaxMemoLength)
	}
	return nil
}

func validateContentURL(field, url string) error {
	if !strings.HasPrefix(url, "ipfs://") {
		return fmt.Errorf("%s: url must start with ipfs://", field)
	}
	if len(url) > MaxURLLength {
		return fmt.Errorf("%s: url exceeds %d bytes", field, MaxURLLength)
	}
	return nil
}

func validatePositiveAmount(field string, a primitives.Amount) error {
	if a.Value <= 0 {
		return fmt.Errorf("%s: amount must be positive", field)
	}
	return nil
}

func validateNonNegativeAmount(field string, a primitives.Amount) error {
	if a.Value < 0 {
		return fmt.Errorf("%s: amount must not be negative", field)
	}
	return nil
}

// BasisPointShare is a (payee, bp) pair used by content distribution lists
// (spec §3: "distribution lists (payee, basis-point share)").
type BasisPointShare struct {
	Payee  string
	Weight uint32
}

// PercentageShare is an (account, percentage) pair used by content
// management lists (spec §3).
type PercentageShare struct {
	Account    string
	Percentage uint32
}

// validateBasisPointSplit requires the list sum to 10000 or 0 (spec §3, §8
// scenario 4).
func validateBasisPointSplit(field string, shares []BasisPointShare) error {
	var total uint64
	seen := make(map[string]bool, len(shares))
	for _, s := range shares {
		if err := validateAccountName(field, s.Payee); err != nil {
			return err
		}
		if seen[s.Payee] {
			return fmt.Errorf("%s: duplicate payee %q", field, s.Payee)
		}
		seen[s.Payee] = true
		total += uint64(s.Weight)
	}
	if total != 0 && total != 10000 {
		return fmt.Errorf("%s: distribution shares sum to %d, want 0 or 10000", field, total)
	}
	return nil
}

// validatePercentageSplit requires the list sum to exactly 100 (spec §3).
func validatePercentageSplit(field string, shares []PercentageShare) error {
	var total uint64
	seen := make(map[string]bool, len(shares))
	for _, s := range shares {
		if err := validateAccountName(field, s.Account); err != nil {
			return err
		}
		if seen[s.Account] {
			return fmt.Errorf("%s: duplicate manager %q", field, s.Account)
		}
		seen[s.Account] = true
		total += uint64(s.Percentage)
	}
	if total != 100 {
		return fmt.Errorf("%s: management percentages sum to %d, want 100", field, total)
	}
	return nil
}
