// Package authority resolves whether a set of recovered signing keys
// satisfies an operation's declared authority requirements (spec §4.2).
package authority

import (
	"harmonichain/core/errors"
	"harmonichain/primitives"
)

// MaxRecursionDepth bounds how many account-reference hops the checker
// expands before giving up, per spec §4.2/§9's design note: implemented as
// an explicit work queue with a depth counter rather than call-stack
// recursion, so a malicious deep authority graph cannot exhaust resources.
const MaxRecursionDepth = 2

// Level selects which of an account's authorities a reference expands to.
type Level int

const (
	LevelActive Level = iota
	LevelOwner
)

// Lookup resolves an account's current authorities. The evaluator/store
// layer implements this; the authority package has no dependency on the
// object store itself.
type Lookup interface {
	ActiveAuthority(account string) (primitives.Authority, bool)
	OwnerAuthority(account string) (primitives.Authority, bool)
}

// KeySet is the set of candidate public keys recovered from a
// transaction's signatures (spec §4.2: "the checker operates on recovered
// public keys").
type KeySet map[primitives.PublicKey]bool

func NewKeySet(keys []primitives.PublicKey) KeySet {
	set := make(KeySet, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// NewKeySetChecked builds a KeySet from a transaction's raw recovered keys,
// rejecting literal duplicate signatures before they collapse into one set
// member (spec §4.2 step 4: "Fail with ... DuplicateSig").
func NewKeySetChecked(keys []primitives.PublicKey) (KeySet, error) {
	set := make(KeySet, len(keys))
	for _, k := range keys {
		if set[k] {
			return nil, errors.ErrDuplicateSig
		}
		set[k] = true
	}
	return set, nil
}

// node is one expanded authority in the work queue: either the root
// requirement or an account-reference hop. children holds one slot per
// n.authority.Accounts entry, nil where the referenced account doesn't
// exist or the depth cap was reached.
type node struct {
	authority primitives.Authority
	depth     int
	children  []*node
	satisfied bool
}

// Satisfied reports whether keys satisfy root under the given expansion
// level (active references expand via ActiveAuthority, owner references via
// OwnerAuthority — spec §4.2 step 3).
func Satisfied(root primitives.Authority, keys KeySet, level Level, lookup Lookup) bool {
	rootNode := &node{authority: root, depth: 0}

	// Breadth-first expansion: an explicit queue, not recursion, builds the
	// bounded-depth authority tree.
	queue := []*node{rootNode}
	var all []*node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		all = append(all, n)
		if n.depth >= MaxRecursionDepth {
			n.children = make([]*node, len(n.authority.Accounts))
			continue
		}
		n.children = make([]*node, len(n.authority.Accounts))
		for i, acc := range n.authority.Accounts {
			var childAuth primitives.Authority
			var ok bool
			if level == LevelOwner {
				childAuth, ok = lookup.OwnerAuthority(acc.Account)
			} else {
				childAuth, ok = lookup.ActiveAuthority(acc.Account)
			}
			if !ok {
				continue
			}
			child := &node{authority: childAuth, depth: n.depth + 1}
			n.children[i] = child
			queue = append(queue, child)
		}
	}

	// Fold weights bottom-up by descending depth, so every child is
	// evaluated before its parent.
	maxDepth := 0
	for _, n := range all {
		if n.depth > maxDepth {
			maxDepth = n.depth
		}
	}
	for d := maxDepth; d >= 0; d-- {
		for _, n := range all {
			if n.depth != d {
				continue
			}
			var total uint64
			for _, k := range n.authority.Keys {
				if keys[k.Key] {
					total += uint64(k.Weight)
				}
			}
			for i, acc := range n.authority.Accounts {
				child := n.children[i]
				if child != nil && child.satisfied {
					total += uint64(acc.Weight)
				}
			}
			n.satisfied = total >= uint64(n.authority.WeightThreshold)
		}
	}
	return rootNode.satisfied
}

// CheckRequirements verifies every account in a Requirements set is
// satisfied by keys, at the appropriate level (owner implies active implies
// basic — spec §4.2 step 2), and that no signature is irrelevant or
// duplicated. used accumulates every key consumed by any satisfied
// authority across the whole requirement set.
func CheckRequirements(req Requirements, keys KeySet, lookup Lookup) error {
	used := make(KeySet)
	check := func(accounts []string, level Level, missing error) error {
		for _, account := range accounts {
			active, hasActive := lookup.ActiveAuthority(account)
			owner, hasOwner := lookup.OwnerAuthority(account)
			var authToCheck primitives.Authority
			var ok bool
			switch level {
			case LevelOwner:
				authToCheck, ok = owner, hasOwner
			default:
				authToCheck, ok = active, hasActive
			}
			if !ok {
				return errors.ErrUnknownEntity
			}
			if !Satisfied(authToCheck, keys, level, lookup) {
				return missing
			}
			markUsed(used, authToCheck, keys, level, lookup)
		}
		return nil
	}

	if err := check(req.Owner, LevelOwner, errors.ErrMissingOwner); err != nil {
		return err
	}
	if err := check(req.Active, LevelActive, errors.ErrMissingActive); err != nil {
		return err
	}
	if err := check(req.Basic, LevelActive, errors.ErrMissingBasic); err != nil {
		return err
	}
	for _, other := range req.Other {
		if !Satisfied(other, keys, LevelActive, lookup) {
			return errors.ErrMissingActive
		}
		markUsed(used, other, keys, LevelActive, lookup)
	}

	for k := range keys {
		if !used[k] {
			return errors.ErrIrrelevantSig
		}
	}
	return nil
}

// markUsed walks the same tree Satisfied built and records every direct key
// that contributed to a satisfied node, so CheckRequirements can detect
// signatures that never factored into any authority (ErrIrrelevantSig).
func markUsed(used KeySet, root primitives.Authority, keys KeySet, level Level, lookup Lookup) {
	type frame struct {
		authority primitives.Authority
		depth     int
	}
	queue := []frame{{root, 0}}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, k := range f.authority.Keys {
			if keys[k.Key] {
				used[k.Key] = true
			}
		}
		if f.depth >= MaxRecursionDepth {
			continue
		}
		for _, acc := range f.authority.Accounts {
			var childAuth primitives.Authority
			var ok bool
			if level == LevelOwner {
				childAuth, ok = lookup.OwnerAuthority(acc.Account)
			} else {
				childAuth, ok = lookup.ActiveAuthority(acc.Account)
			}
			if !ok {
				continue
			}
			if !Satisfied(childAuth, keys, level, lookup) {
				continue
			}
			queue = append(queue, frame{childAuth, f.depth + 1})
		}
	}
}

// Requirements mirrors protocol.Requirements without importing the protocol
// package, keeping authority a leaf dependency the protocol package itself
// could (in principle) depend on.
type Requirements struct {
	Active []string
	Owner  []string
	Basic  []string
	Other  []primitives.Authority
}
