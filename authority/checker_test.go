package authority

import (
	"testing"

	"harmonichain/primitives"
)

type staticLookup map[string]primitives.Authority

func (l staticLookup) ActiveAuthority(account string) (primitives.Authority, bool) {
	a, ok := l[account]
	return a, ok
}

func (l staticLookup) OwnerAuthority(account string) (primitives.Authority, bool) {
	a, ok := l[account]
	return a, ok
}

func keyAuthority(k primitives.PublicKey) primitives.Authority {
	return primitives.Authority{WeightThreshold: 1, Keys: []primitives.KeyAuth{{Key: k, Weight: 1}}}
}

func accountAuthority(name string) primitives.Authority {
	return primitives.Authority{WeightThreshold: 1, Accounts: []primitives.AccountAuth{{Account: name, Weight: 1}}}
}

// TestAuthorityDepth covers spec §8 scenario 6: X's active requires Y's
// active requires Z's active. A signature by Z satisfies X at depth 2; a
// fourth account W one hop further is not reached.
func TestAuthorityDepth(t *testing.T) {
	var zKey primitives.PublicKey
	zKey[0] = 0xAB

	lookup := staticLookup{
		"y": accountAuthority("z"),
		"z": keyAuthority(zKey),
	}
	x := accountAuthority("y")

	keys := NewKeySet([]primitives.PublicKey{zKey})
	if !Satisfied(x, keys, LevelActive, lookup) {
		t.Fatal("expected X to be satisfied via Y -> Z at depth 2")
	}
}

func TestAuthorityDepthExceedingCapIsRejected(t *testing.T) {
	var wKey primitives.PublicKey
	wKey[0] = 0xCD

	lookup := staticLookup{
		"y": accountAuthority("z"),
		"z": accountAuthority("w"),
		"w": keyAuthority(wKey),
	}
	x := accountAuthority("y")

	keys := NewKeySet([]primitives.PublicKey{wKey})
	if Satisfied(x, keys, LevelActive, lookup) {
		t.Fatal("expected X to NOT be satisfied: W is a third hop beyond the depth-2 cap")
	}
}

func TestCheckRequirementsDetectsDuplicateAndIrrelevantSigs(t *testing.T) {
	var aKey, bKey primitives.PublicKey
	aKey[0] = 1
	bKey[0] = 2

	lookup := staticLookup{"alice": keyAuthority(aKey)}

	if _, err := NewKeySetChecked([]primitives.PublicKey{aKey, aKey}); err == nil {
		t.Fatal("expected duplicate signature to be rejected")
	}

	keys := NewKeySet([]primitives.PublicKey{aKey, bKey})
	req := Requirements{Active: []string{"alice"}}
	if err := CheckRequirements(req, keys, lookup); err == nil {
		t.Fatal("expected irrelevant signature (bKey) to be rejected")
	}
}

func TestCheckRequirementsMissingActive(t *testing.T) {
	var aKey, bKey primitives.PublicKey
	aKey[0] = 1
	bKey[0] = 2

	lookup := staticLookup{"alice": keyAuthority(aKey)}
	keys := NewKeySet([]primitives.PublicKey{bKey})
	req := Requirements{Active: []string{"alice"}}
	if err := CheckRequirements(req, keys, lookup); err == nil {
		t.Fatal("expected missing active authority error")
	}
}
