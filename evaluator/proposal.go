package evaluator

import (
	"bytes"

	"harmonichain/primitives"
	"harmonichain/protocol"
)

// applyProposalCreate files a set of inner operations for later approval,
// encoding each so the row type never needs to import protocol (spec §3's
// Proposal entity, §9's layering note). Validate() already ran Validate()
// on every inner operation.
func (s *State) applyProposalCreate(now uint64, op *protocol.ProposalCreateOperation) error {
	if _, ok := s.AccountByName(op.Creator); !ok {
		return errUnknownEntity("account", op.Creator)
	}
	if op.Expiration <= now {
		return errInvariant("proposal_create: expiration must be in the future")
	}

	snapshots := make([]protocolOperationSnapshot, len(op.InnerOperations))
	for i, inner := range op.InnerOperations {
		var buf bytes.Buffer
		if err := protocol.EncodeOperation(&buf, inner); err != nil {
			return err
		}
		snapshots[i] = protocolOperationSnapshot{Tag: uint8(inner.Tag()), Body: buf.Bytes()}
	}

	_, err := s.Proposals.Create(func(p *ProposalRow) {
		p.Creator = op.Creator
		p.Expiration = op.Expiration
		p.ReviewPeriodSeconds = op.ReviewPeriodSeconds
		p.Operations = snapshots
		p.AvailableActiveApprovals = make(map[string]bool)
		p.AvailableOwnerApprovals = make(map[string]bool)
		p.AvailableKeyApprovals = make(map[primitives.PublicKey]bool)
	})
	return err
}

// applyProposalUpdate adjusts a proposal's approval sets and, once every
// inner operation's requirements are satisfied by the accumulated
// approvals, applies the whole batch atomically and removes the proposal
// (spec §4.4: "atomic application when inner-op requirements are
// satisfied").
func (s *State) applyProposalUpdate(now uint64, op *protocol.ProposalUpdateOperation) error {
	row, ok := s.Proposals.Get(op.Proposal)
	if !ok {
		return errUnknownEntity("proposal", op.Proposal.String())
	}
	if row.Expiration <= now {
		return errInvariant("proposal_update: proposal has expired")
	}

	if err := s.Proposals.Modify(op.Proposal, func(p *ProposalRow) {
		applyApprovalSet(p.AvailableActiveApprovals, op.ActiveApprovalsToAdd, op.ActiveApprovalsToRemove)
		applyApprovalSet(p.AvailableOwnerApprovals, op.OwnerApprovalsToAdd, op.OwnerApprovalsToRemove)
		for _, k := range op.KeyApprovalsToAdd {
			p.AvailableKeyApprovals[k] = true
		}
		for _, k := range op.KeyApprovalsToRemove {
			delete(p.AvailableKeyApprovals, k)
		}
	}); err != nil {
		return err
	}

	row, _ = s.Proposals.Get(op.Proposal)
	ops, err := decodeProposalOperations(row.Operations)
	if err != nil {
		return err
	}
	for _, inner := range ops {
		if !proposalSatisfies(inner.RequiredAuth(), row.AvailableActiveApprovals, row.AvailableOwnerApprovals) {
			return nil
		}
	}

	for _, inner := range ops {
		if err := s.Apply(now, inner); err != nil {
			return err
		}
	}
	return s.Proposals.Remove(op.Proposal)
}

// applyProposalDelete withdraws a pending proposal. Since
// applyProposalUpdate executes and removes a proposal the instant its
// requirements are met, any row still present here has, by construction,
// not yet been accepted — satisfying spec §4.4's "revocation after
// acceptance is invalid" without extra bookkeeping.
func (s *State) applyProposalDelete(op *protocol.ProposalDeleteOperation) error {
	row, ok := s.Proposals.Get(op.Proposal)
	if !ok {
		return errUnknownEntity("proposal", op.Proposal.String())
	}
	if row.Creator != op.RequestingAccount && !row.AvailableOwnerApprovals[op.RequestingAccount] && !row.AvailableActiveApprovals[op.RequestingAccount] {
		return errInvariant("proposal_delete: requesting_account did not create or approve the proposal")
	}
	return s.Proposals.Remove(op.Proposal)
}

func applyApprovalSet(set map[string]bool, add, remove []string) {
	for _, a := range add {
		set[a] = true
	}
	for _, a := range remove {
		delete(set, a)
	}
}

func decodeProposalOperations(snapshots []protocolOperationSnapshot) ([]protocol.Operation, error) {
	ops := make([]protocol.Operation, len(snapshots))
	for i, snap := range snapshots {
		op, err := protocol.DecodeOperationBytes(snap.Body)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	return ops, nil
}

// proposalSatisfies checks required accounts against the proposal's
// accumulated account-level approvals. Owner approval subsumes an active
// requirement (spec §4.2's authority hierarchy); Requirements.Other, being
// raw ad-hoc authorities rather than account references, cannot be
// expressed as an account approval and is left unsatisfied by this path.
func proposalSatisfies(req protocol.Requirements, active, owner map[string]bool) bool {
	if len(req.Other) > 0 {
		return false
	}
	for _, a := range req.Owner {
		if !owner[a] {
			return false
		}
	}
	needActive := make([]string, 0, len(req.Active)+len(req.Basic)+len(req.MasterContent)+len(req.CompContent))
	needActive = append(needActive, req.Active...)
	needActive = append(needActive, req.Basic...)
	needActive = append(needActive, req.MasterContent...)
	needActive = append(needActive, req.CompContent...)
	for _, a := range needActive {
		if !active[a] && !owner[a] {
			return false
		}
	}
	return true
}
