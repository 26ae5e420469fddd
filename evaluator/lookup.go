package evaluator

import (
	"harmonichain/authority"
	"harmonichain/primitives"
)

// stateLookup adapts State to authority.Lookup so CheckRequirements can
// resolve an account-authority reference without the authority package
// importing evaluator (spec §9's "authority is a leaf package" layering).
type stateLookup struct {
	state *State
}

func (l stateLookup) ActiveAuthority(account string) (primitives.Authority, bool) {
	a, ok := l.state.AccountByName(account)
	if !ok {
		return primitives.Authority{}, false
	}
	return a.Active, true
}

func (l stateLookup) OwnerAuthority(account string) (primitives.Authority, bool) {
	a, ok := l.state.AccountByName(account)
	if !ok {
		return primitives.Authority{}, false
	}
	return a.Owner, true
}

// Lookup returns the authority.Lookup view of s.
func (s *State) Lookup() authority.Lookup {
	return stateLookup{state: s}
}
