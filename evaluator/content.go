package evaluator

import (
	"harmonichain/protocol"
)

func toShares(in []protocol.BasisPointShare) []protocolShare {
	out := make([]protocolShare, len(in))
	for i, s := range in {
		out[i] = protocolShare{Payee: s.Payee, Weight: s.Weight}
	}
	return out
}

func toPercentageShares(in []protocol.PercentageShare) []protocolPercentageShare {
	out := make([]protocolPercentageShare, len(in))
	for i, s := range in {
		out[i] = protocolPercentageShare{Account: s.Account, Percentage: s.Percentage}
	}
	return out
}

// applyContent registers a new music track row (spec §3's Content entity).
// validateBasisPointSplit/validatePercentageSplit already ran in
// ContentOperation.Validate(); the evaluator only needs to check every
// referenced account exists and the URL is unique.
func (s *State) applyContent(now uint64, op *protocol.ContentOperation) error {
	if _, ok := s.AccountByName(op.Uploader); !ok {
		return errUnknownEntity("account", op.Uploader)
	}
	if _, exists := s.ContentByURLString(op.URL); exists {
		return errInvariant("content: url already registered")
	}
	for _, shares := range [][]protocol.BasisPointShare{op.DistributionMaster, op.DistributionComp} {
		for _, sh := range shares {
			if _, ok := s.AccountByName(sh.Payee); !ok {
				return errUnknownEntity("account", sh.Payee)
			}
		}
	}
	for _, shares := range [][]protocol.PercentageShare{op.ManagementMaster, op.ManagementComp} {
		for _, sh := range shares {
			if _, ok := s.AccountByName(sh.Account); !ok {
				return errUnknownEntity("account", sh.Account)
			}
		}
	}

	cashoutSeconds := uint64(s.Chain.CashoutWindowSeconds)
	_, err := s.Content.Create(func(c *ContentRow) {
		c.Uploader = op.Uploader
		c.URL = op.URL
		c.Album = op.Album
		c.Track = op.Track
		c.HasComposition = op.HasComposition
		c.CompositionAlbum = op.CompositionAlbum
		c.CompositionTrack = op.CompositionTrack
		c.DistributionMaster = toShares(op.DistributionMaster)
		c.DistributionComp = toShares(op.DistributionComp)
		c.ManagementMaster = toPercentageShares(op.ManagementMaster)
		c.ManagementComp = toPercentageShares(op.ManagementComp)
		c.PlayingRewardBp = op.PlayingRewardBp
		c.PublishersShareBp = op.PublishersShareBp
		c.AllowVotes = op.AllowVotes
		c.CreatedAt = now
		c.CashoutTime = now + cashoutSeconds
	})
	return err
}

func isManager(managers []protocolPercentageShare, account string) bool {
	for _, m := range managers {
		if m.Account == account {
			return true
		}
	}
	return false
}

// applyContentUpdate edits master and/or composition metadata, restricted
// to the corresponding management side (spec §4.4: "only the master-side
// managers can edit master metadata, only composition-side managers can
// edit composition metadata"). protocol.ContentUpdateOperation.RequiredAuth
// already forced a MasterContent/CompContent signature; this evaluator
// confirms the editor is actually listed on that content row's management
// list, since the authority checker has no model of per-row membership.
func (s *State) applyContentUpdate(op *protocol.ContentUpdateOperation) error {
	row, ok := s.Content.Get(op.Content)
	if !ok {
		return errUnknownEntity("content", op.Content.String())
	}
	touchesMaster := op.Album != "" || op.Track != "" || len(op.DistributionMaster) > 0 || len(op.ManagementMaster) > 0
	touchesComp := op.CompositionAlbum != "" || op.CompositionTrack != "" || len(op.DistributionComp) > 0 || len(op.ManagementComp) > 0

	if touchesMaster && !isManager(row.ManagementMaster, op.Editor) {
		return errInvariant("content_update: editor is not a master-side manager")
	}
	if touchesComp && !isManager(row.ManagementComp, op.Editor) {
		return errInvariant("content_update: editor is not a composition-side manager")
	}
	if op.URL != "" {
		if existing, exists := s.ContentByURLString(op.URL); exists && existing.ID != op.Content {
			return errInvariant("content_update: url already registered")
		}
	}

	return s.Content.Modify(op.Content, func(c *ContentRow) {
		if op.URL != "" {
			c.URL = op.URL
		}
		if op.Album != "" {
			c.Album = op.Album
		}
		if op.Track != "" {
			c.Track = op.Track
		}
		if op.CompositionAlbum != "" {
			c.CompositionAlbum = op.CompositionAlbum
		}
		if op.CompositionTrack != "" {
			c.CompositionTrack = op.CompositionTrack
		}
		if len(op.DistributionMaster) > 0 {
			c.DistributionMaster = toShares(op.DistributionMaster)
		}
		if len(op.DistributionComp) > 0 {
			c.DistributionComp = toShares(op.DistributionComp)
		}
		if len(op.ManagementMaster) > 0 {
			c.ManagementMaster = toPercentageShares(op.ManagementMaster)
		}
		if len(op.ManagementComp) > 0 {
			c.ManagementComp = toPercentageShares(op.ManagementComp)
		}
	})
}

// applyContentApprove records a management-side signoff in the row's
// Approvals (spec §4.4); reward accrual and payouts do not consult them.
func (s *State) applyContentApprove(op *protocol.ContentApproveOperation) error {
	row, ok := s.Content.Get(op.Content)
	if !ok {
		return errUnknownEntity("content", op.Content.String())
	}
	if !isManager(row.ManagementMaster, op.Approver) && !isManager(row.ManagementComp, op.Approver) {
		return errInvariant("content_approve: approver is not a listed manager")
	}
	return s.Content.Modify(op.Content, func(c *ContentRow) {
		if c.Approvals == nil {
			c.Approvals = make(map[string]bool)
		}
		if op.Approve {
			c.Approvals[op.Approver] = true
		} else {
			delete(c.Approvals, op.Approver)
		}
	})
}

// applyContentDisable retires a content row from future reward accrual and
// voting (spec §3's disabled flag); RequiredAuth already demands a
// master-side signature.
func (s *State) applyContentDisable(op *protocol.ContentDisableOperation) error {
	if _, ok := s.Content.Get(op.Content); !ok {
		return errUnknownEntity("content", op.Content.String())
	}
	return s.Content.Modify(op.Content, func(c *ContentRow) {
		c.Disabled = true
	})
}

// rsharesForVote converts a signed basis-point weight and a voter's vesting
// power into the curation-weight unit content rows accrue (spec §4.4: "on
// content; weight in [-10000,10000] ... rshares accrued to a rolling
// curation pool").
func rsharesForVote(weight int32, voterVestingShares int64) int64 {
	scaled := (int64(weight) * voterVestingShares) / 10000
	return scaled
}

// applyVote casts or updates a curation vote, tracked per (voter, content)
// so a repeat vote adjusts rather than double-counts rshares, bounded by
// MaxVoteChanges and the content's cashout window (spec §4.4, §3's
// content_vote entity).
func (s *State) applyVote(now uint64, op *protocol.VoteOperation) error {
	voter, ok := s.AccountByName(op.Voter)
	if !ok {
		return errUnknownEntity("account", op.Voter)
	}
	content, ok := s.Content.Get(op.Content)
	if !ok {
		return errUnknownEntity("content", op.Content.String())
	}
	if !content.AllowVotes {
		return errInvariant("vote: content does not allow votes")
	}
	if content.Disabled {
		return errInvariant("vote: content is disabled")
	}
	if now >= content.CashoutTime {
		return errInvariant("vote: content is past its cashout window")
	}

	newRshares := rsharesForVote(op.Weight, voter.VestingShares.Value)

	key := voterContentKey{Voter: op.Voter, Content: op.Content}
	ids := s.VotesByVoterContent.Range(key)
	if len(ids) > 0 {
		existing := s.ContentVotes.MustGet(ids[0])
		if existing.NumChangesAtLimit(s.Chain.MaxVoteChanges) {
			return errInvariant("vote: num_changes exceeds MaxVoteChanges")
		}
		delta := newRshares - existing.Rshares
		if err := s.Content.Modify(op.Content, func(c *ContentRow) {
			c.NetRshares += delta
			c.AbsRshares += absInt64(newRshares) - absInt64(existing.Rshares)
		}); err != nil {
			return err
		}
		return s.ContentVotes.Modify(existing.ID, func(v *ContentVoteRow) {
			v.Weight = op.Weight
			v.Rshares = newRshares
			v.NumChanges++
			v.VotedAt = now
		})
	}

	if err := s.Content.Modify(op.Content, func(c *ContentRow) {
		c.NetRshares += newRshares
		c.AbsRshares += absInt64(newRshares)
	}); err != nil {
		return err
	}
	_, err := s.ContentVotes.Create(func(v *ContentVoteRow) {
		v.Voter = op.Voter
		v.Content = op.Content
		v.Weight = op.Weight
		v.Rshares = newRshares
		v.VotedAt = now
	})
	return err
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
