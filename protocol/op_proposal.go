package protocol

import (
	"fmt"

	"harmonichain/primitives"
)

func init() {
	register(OpProposalCreate, func() Operation { return &ProposalCreateOperation{} })
	register(OpProposalUpdate, func() Operation { return &ProposalUpdateOperation{} })
	register(OpProposalDelete, func() Operation { return &ProposalDeleteOperation{} })
}

// ProposalCreateOperation files a set of inner operations for asynchronous
// multi-signature approval (spec §3's Proposal entity, §4.4).
type ProposalCreateOperation struct {
	Creator          string
	Expiration       uint64
	ReviewPeriodSeconds uint32
	InnerOperations  []Operation
}

func (op *ProposalCreateOperation) Tag() OperationType { return OpProposalCreate }

func (op *ProposalCreateOperation) Validate() error {
	if err := validateAccountName("creator", op.Creator); err != nil {
		return err
	}
	if len(op.InnerOperations) == 0 {
		return fmt.Errorf("proposal_create: at least one inner operation required")
	}
	for i, inner := range op.InnerOperations {
		if err := inner.Validate(); err != nil {
			return fmt.Errorf("proposal_create: inner operation %d: %w", i, err)
		}
	}
	return nil
}

func (op *ProposalCreateOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Creator}}
}

// ProposalUpdateOperation adds or removes approvals on a pending proposal.
// When UsingOwnerAuthority is set, the updater must sign with its owner
// authority instead of active, per spec §3's using_owner_authority flag and
// §9's design note.
type ProposalUpdateOperation struct {
	Proposal             primitives.ObjectID
	Updater              string
	ActiveApprovalsToAdd    []string
	ActiveApprovalsToRemove []string
	OwnerApprovalsToAdd     []string
	OwnerApprovalsToRemove  []string
	KeyApprovalsToAdd       []primitives.PublicKey
	KeyApprovalsToRemove    []primitives.PublicKey
	UsingOwnerAuthority     bool
}

func (op *ProposalUpdateOperation) Tag() OperationType { return OpProposalUpdate }

func (op *ProposalUpdateOperation) Validate() error {
	if err := validateAccountName("updater", op.Updater); err != nil {
		return err
	}
	for _, field := range [][]string{op.ActiveApprovalsToAdd, op.ActiveApprovalsToRemove, op.OwnerApprovalsToAdd, op.OwnerApprovalsToRemove} {
		for _, a := range field {
			if err := validateAccountName("approvals", a); err != nil {
				return err
			}
		}
	}
	return nil
}

func (op *ProposalUpdateOperation) RequiredAuth() Requirements {
	if op.UsingOwnerAuthority {
		return Requirements{Owner: []string{op.Updater}}
	}
	return Requirements{Active: []string{op.Updater}}
}

// ProposalDeleteOperation removes a pending proposal before it executes.
// Spec §4.4: "Revocation after acceptance is invalid" — the evaluator, not
// Validate, enforces that since it depends on chain state.
type ProposalDeleteOperation struct {
	Proposal            primitives.ObjectID
	RequestingAccount   string
	UsingOwnerAuthority bool
}

func (op *ProposalDeleteOperation) Tag() OperationType { return OpProposalDelete }

func (op *ProposalDeleteOperation) Validate() error {
	return validateAccountName("requesting_account", op.RequestingAccount)
}

func (op *ProposalDeleteOperation) RequiredAuth() Requirements {
	if op.UsingOwnerAuthority {
		return Requirements{Owner: []string{op.RequestingAccount}}
	}
	return Requirements{Active: []string{op.RequestingAccount}}
}
