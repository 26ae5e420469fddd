package evaluator

import (
	"harmonichain/authority"
	"harmonichain/primitives"
	"harmonichain/protocol"
)

// toAuthorityRequirements folds a protocol.Requirements (which additionally
// distinguishes MasterContent/CompContent, a content-table-specific notion
// the generic authority checker has no model for) into the authority
// package's plain Requirements: MasterContent/CompContent signers still need
// to produce a satisfying Active signature, but whether they are actually
// an authorized content manager is checked separately, against the content
// row itself, inside evaluator/content.go.
func toAuthorityRequirements(req protocol.Requirements) authority.Requirements {
	active := make([]string, 0, len(req.Active)+len(req.MasterContent)+len(req.CompContent))
	active = append(active, req.Active...)
	active = append(active, req.MasterContent...)
	active = append(active, req.CompContent...)
	return authority.Requirements{
		Active: active,
		Owner:  req.Owner,
		Basic:  req.Basic,
		Other:  req.Other,
	}
}

// CheckAuth verifies that keys satisfy op's declared authority requirements
// against the current account table.
func (s *State) CheckAuth(op protocol.Operation, keys authority.KeySet) error {
	return authority.CheckRequirements(toAuthorityRequirements(op.RequiredAuth()), keys, s.Lookup())
}

// Apply dispatches op to its evaluator. Validate() must already have been
// called and authority already checked (spec §4.4's pipeline: validate,
// then check_authority, then apply).
func (s *State) Apply(now uint64, op protocol.Operation) error {
	switch op := op.(type) {
	case *protocol.TransferOperation:
		return s.applyTransfer(op)
	case *protocol.TransferToVestingOperation:
		return s.applyTransferToVesting(now, op)
	case *protocol.WithdrawVestingOperation:
		return s.applyWithdrawVesting(now, op)
	case *protocol.SetWithdrawVestingRouteOperation:
		return s.applySetWithdrawVestingRoute(op)

	case *protocol.AccountCreateOperation:
		return s.applyAccountCreate(now, op)
	case *protocol.AccountUpdateOperation:
		return s.applyAccountUpdate(now, op)
	case *protocol.RequestAccountRecoveryOperation:
		return s.applyRequestAccountRecovery(now, op)
	case *protocol.RecoverAccountOperation:
		return s.applyRecoverAccount(now, op)
	case *protocol.ChangeRecoveryAccountOperation:
		return s.applyChangeRecoveryAccount(now, op)

	case *protocol.WitnessUpdateOperation:
		return s.applyWitnessUpdate(op)
	case *protocol.AccountWitnessVoteOperation:
		return s.applyAccountWitnessVote(op)
	case *protocol.AccountWitnessProxyOperation:
		return s.applyAccountWitnessProxy(op)
	case *protocol.StreamingPlatformUpdateOperation:
		return s.applyStreamingPlatformUpdate(op)
	case *protocol.AccountStreamingPlatformVoteOperation:
		return s.applyAccountStreamingPlatformVote(op)
	case *protocol.StreamingPlatformReportOperation:
		return s.applyStreamingPlatformReport(now, op)

	case *protocol.VoteOperation:
		return s.applyVote(now, op)
	case *protocol.ContentOperation:
		return s.applyContent(now, op)
	case *protocol.ContentUpdateOperation:
		return s.applyContentUpdate(op)
	case *protocol.ContentApproveOperation:
		return s.applyContentApprove(op)
	case *protocol.ContentDisableOperation:
		return s.applyContentDisable(op)

	case *protocol.LimitOrderCreateOperation:
		return s.applyLimitOrderCreate(now, op)
	case *protocol.LimitOrderCreate2Operation:
		return s.applyLimitOrderCreate2(now, op)
	case *protocol.LimitOrderCancelOperation:
		return s.applyLimitOrderCancel(op)
	case *protocol.FeedPublishOperation:
		return s.applyFeedPublish(now, op)
	case *protocol.ConvertOperation:
		return s.applyConvert(now, op)

	case *protocol.AssetCreateOperation:
		return s.applyAssetCreate(op)
	case *protocol.AssetUpdateOperation:
		return s.applyAssetUpdate(op)
	case *protocol.AssetIssueOperation:
		return s.applyAssetIssue(op)
	case *protocol.AssetReserveOperation:
		return s.applyAssetReserve(op)

	case *protocol.CustomOperation:
		return nil
	case *protocol.CustomJSONOperation:
		return nil

	case *protocol.ProposalCreateOperation:
		return s.applyProposalCreate(now, op)
	case *protocol.ProposalUpdateOperation:
		return s.applyProposalUpdate(now, op)
	case *protocol.ProposalDeleteOperation:
		return s.applyProposalDelete(op)

	default:
		return errUnsupportedOperation(op.Tag())
	}
}

// NativeSymbol and VestingSymbol are the two assets genesis must create
// before any other operation can apply: the liquid fee/transfer currency
// and its non-transferable staked counterpart (spec §3's Asset entity,
// §4.5's vesting model).
const (
	NativeSymbol  = "HARMONY"
	VestingSymbol = "VESTS"
)

// nativeAsset resolves the native currency's asset id by symbol rather than
// a hardcoded instance number, so genesis is free to create other assets in
// any order around it.
func (s *State) nativeAsset() (primitives.AssetID, error) {
	row, ok := s.AssetBySymbol(NativeSymbol)
	if !ok {
		return primitives.AssetID{}, errUnknownEntity("asset", NativeSymbol)
	}
	return row.ID, nil
}

// vestingAsset resolves the staked-vesting asset id by symbol.
func (s *State) vestingAsset() (primitives.AssetID, error) {
	row, ok := s.AssetBySymbol(VestingSymbol)
	if !ok {
		return primitives.AssetID{}, errUnknownEntity("asset", VestingSymbol)
	}
	return row.ID, nil
}
