package evaluator

import (
	"harmonichain/primitives"
	"harmonichain/protocol"
)

// applyWitnessUpdate registers or updates a block-producer candidate (spec
// §3's Witness entity).
func (s *State) applyWitnessUpdate(op *protocol.WitnessUpdateOperation) error {
	if _, ok := s.AccountByName(op.Owner); !ok {
		return errUnknownEntity("account", op.Owner)
	}
	if existing, ok := s.WitnessByOwner(op.Owner); ok {
		return s.Witnesses.Modify(existing.ID, func(w *WitnessRow) {
			w.URL = op.URL
			w.SigningKey = op.BlockSigningKey
			w.MinFeeVote = op.FeeVote
		})
	}
	_, err := s.Witnesses.Create(func(w *WitnessRow) {
		w.Owner = op.Owner
		w.URL = op.URL
		w.SigningKey = op.BlockSigningKey
		w.MinFeeVote = op.FeeVote
	})
	return err
}

// applyAccountWitnessVote casts or withdraws one of an account's up to
// MaxWitnessVotes witness votes, weighting the witness's cumulative vote
// total by the voter's vesting shares (spec §3 invariant 7).
func (s *State) applyAccountWitnessVote(op *protocol.AccountWitnessVoteOperation) error {
	account, ok := s.AccountByName(op.Account)
	if !ok {
		return errUnknownEntity("account", op.Account)
	}
	if account.Proxy != "" {
		return errInvariant("account_witness_vote: account has delegated to a proxy")
	}
	witness, ok := s.WitnessByOwner(op.Witness)
	if !ok {
		return errUnknownEntity("witness", op.Witness)
	}

	alreadyVoted := containsID(account.WitnessVotes, witness.ID)
	if op.Approve == alreadyVoted {
		return nil
	}
	if op.Approve && len(account.WitnessVotes) >= int(s.Chain.MaxWitnessVotes) {
		return errInvariant("account_witness_vote: exceeds MaxWitnessVotes")
	}

	weight := uint64(account.VestingShares.Value)
	if err := s.Witnesses.Modify(witness.ID, func(w *WitnessRow) {
		if op.Approve {
			w.Votes += weight
		} else if w.Votes >= weight {
			w.Votes -= weight
		} else {
			w.Votes = 0
		}
	}); err != nil {
		return err
	}
	return s.Accounts.Modify(account.ID, func(a *AccountRow) {
		if op.Approve {
			a.WitnessVotes = append(a.WitnessVotes, witness.ID)
		} else {
			a.WitnessVotes = removeID(a.WitnessVotes, witness.ID)
		}
	})
}

// applyAccountWitnessProxy delegates or clears witness voting power.
// Setting a non-empty proxy clears the account's direct votes (removing
// their weight from every witness they'd voted for) and requires the
// resulting proxy chain have depth <= 4 with no cycle (spec §4.4).
func (s *State) applyAccountWitnessProxy(op *protocol.AccountWitnessProxyOperation) error {
	account, ok := s.AccountByName(op.Account)
	if !ok {
		return errUnknownEntity("account", op.Account)
	}
	if op.Proxy != "" {
		if _, ok := s.AccountByName(op.Proxy); !ok {
			return errUnknownEntity("account", op.Proxy)
		}
		if err := s.checkProxyChain(op.Account, op.Proxy); err != nil {
			return err
		}
	}

	weight := uint64(account.VestingShares.Value)
	if account.Proxy == "" && op.Proxy != "" {
		for _, wid := range account.WitnessVotes {
			if err := s.Witnesses.Modify(wid, func(w *WitnessRow) {
				if w.Votes >= weight {
					w.Votes -= weight
				} else {
					w.Votes = 0
				}
			}); err != nil {
				return err
			}
		}
	}
	return s.Accounts.Modify(account.ID, func(a *AccountRow) {
		a.Proxy = op.Proxy
		if op.Proxy != "" {
			a.WitnessVotes = nil
		}
	})
}

const maxProxyDepth = 4

// checkProxyChain walks the proposed proxy's own proxy chain, rejecting a
// chain deeper than maxProxyDepth or one that cycles back to account.
func (s *State) checkProxyChain(account, proxy string) error {
	seen := map[string]bool{account: true}
	current := proxy
	for depth := 0; depth < maxProxyDepth; depth++ {
		if seen[current] {
			return errInvariant("account_witness_proxy: proxy chain forms a cycle")
		}
		seen[current] = true
		row, ok := s.AccountByName(current)
		if !ok || row.Proxy == "" {
			return nil
		}
		current = row.Proxy
	}
	return errInvariant("account_witness_proxy: proxy chain exceeds max depth")
}

func containsID(ids []primitives.ObjectID, id primitives.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitives.ObjectID, id primitives.ObjectID) []primitives.ObjectID {
	out := ids[:0:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// applyStreamingPlatformUpdate registers or updates a streaming-platform
// candidate row (spec §3's Streaming platform entity).
func (s *State) applyStreamingPlatformUpdate(op *protocol.StreamingPlatformUpdateOperation) error {
	if _, ok := s.AccountByName(op.Owner); !ok {
		return errUnknownEntity("account", op.Owner)
	}
	if existing, ok := s.StreamingPlatformByOwner(op.Owner); ok {
		return s.StreamingPlatforms.Modify(existing.ID, func(p *StreamingPlatformRow) {
			p.URL = op.URL
		})
	}
	_, err := s.StreamingPlatforms.Create(func(p *StreamingPlatformRow) {
		p.Owner = op.Owner
		p.URL = op.URL
	})
	return err
}

// applyAccountStreamingPlatformVote casts or withdraws a vote for a
// streaming platform, symmetric to witness voting but without the
// proxy/MaxWitnessVotes cap (spec §4.4 describes it as "analogous to
// witness voting").
func (s *State) applyAccountStreamingPlatformVote(op *protocol.AccountStreamingPlatformVoteOperation) error {
	account, ok := s.AccountByName(op.Account)
	if !ok {
		return errUnknownEntity("account", op.Account)
	}
	platform, ok := s.StreamingPlatformByOwner(op.StreamingPlatform)
	if !ok {
		return errUnknownEntity("streaming_platform", op.StreamingPlatform)
	}
	alreadyVoted := containsID(account.StreamingPlatformVotes, platform.ID)
	if op.Approve == alreadyVoted {
		return nil
	}
	weight := uint64(account.VestingShares.Value)
	if err := s.StreamingPlatforms.Modify(platform.ID, func(p *StreamingPlatformRow) {
		if op.Approve {
			p.Votes += weight
		} else if p.Votes >= weight {
			p.Votes -= weight
		} else {
			p.Votes = 0
		}
	}); err != nil {
		return err
	}
	return s.Accounts.Modify(account.ID, func(a *AccountRow) {
		if op.Approve {
			a.StreamingPlatformVotes = append(a.StreamingPlatformVotes, platform.ID)
		} else {
			a.StreamingPlatformVotes = removeID(a.StreamingPlatformVotes, platform.ID)
		}
	})
}
