package primitives

import "fmt"

// MaxAuthorityMembers caps the combined key+account members of a single
// authority (spec §4.1).
const MaxAuthorityMembers = 10

// PublicKey is the raw compressed secp256k1 public key bytes backing a
// direct key member of an authority.
type PublicKey [33]byte

// AccountAuth references another account's owner or active authority as a
// recursively-expandable member.
type AccountAuth struct {
	Account string
	Weight  uint32
}

// KeyAuth is a direct public-key member of an authority.
type KeyAuth struct {
	Key    PublicKey
	Weight uint32
}

// Authority is a weighted threshold set of keys and/or account references,
// per spec §4.1.
type Authority struct {
	WeightThreshold uint32
	Accounts        []AccountAuth
	Keys            []KeyAuth
}

// Valid reports whether the authority satisfies spec §4.1's well-formedness
// rules: every weight >0, total weight >= threshold, at most
// MaxAuthorityMembers members, threshold >0, and not "impossible"
// (threshold greater than the total available weight is allowed to be
// checked separately as "impossible", but having total < threshold already
// makes the authority unsatisfiable and is rejected here too).
func (a Authority) Valid() error {
	if a.WeightThreshold == 0 {
		return fmt.Errorf("primitives: authority threshold must be positive")
	}
	if len(a.Accounts)+len(a.Keys) > MaxAuthorityMembers {
		return fmt.Errorf("primitives: authority has more than %d members", MaxAuthorityMembers)
	}
	if len(a.Accounts)+len(a.Keys) == 0 {
		return fmt.Errorf("primitives: authority has no members")
	}
	var total uint64
	for _, acc := range a.Accounts {
		if acc.Weight == 0 {
			return fmt.Errorf("primitives: authority member %q has zero weight", acc.Account)
		}
		total += uint64(acc.Weight)
	}
	for _, k := range a.Keys {
		if k.Weight == 0 {
			return fmt.Errorf("primitives: authority has a zero-weight key member")
		}
		total += uint64(k.Weight)
	}
	if total < uint64(a.WeightThreshold) {
		return fmt.Errorf("primitives: authority is impossible: total weight %d below threshold %d", total, a.WeightThreshold)
	}
	return nil
}

// IsImpossible reports whether the authority can never be satisfied because
// its total available weight is below its threshold.
func (a Authority) IsImpossible() bool {
	var total uint64
	for _, acc := range a.Accounts {
		total += uint64(acc.Weight)
	}
	for _, k := range a.Keys {
		total += uint64(k.Weight)
	}
	return total < uint64(a.WeightThreshold)
}
