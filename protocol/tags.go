// Package protocol defines the operation tagged-union, transaction/block
// wire types, and the LEB128 binary codec of spec §4.1 and §6.
package protocol

// OperationType is the wire tag of an operation kind. Reordering these
// constants is a hard fork (spec §6): the tag numbers must match this
// enumerated order, which in turn follows the original chain's operation
// ordering (original_source libraries/chain/include/muse/chain/protocol/operations.hpp)
// so that historical block replay stays byte-compatible. Virtual operations
// occupy tag numbers after every user-submitted kind.
type OperationType uint8

const (
	OpVote OperationType = iota
	OpContent
	OpContentUpdate
	OpContentApprove
	OpContentDisable

	OpTransfer
	OpTransferToVesting
	OpWithdrawVesting

	OpLimitOrderCreate
	OpLimitOrderCreate2
	OpLimitOrderCancel

	OpFeedPublish
	OpConvert

	OpAccountCreate
	OpAccountUpdate

	OpWitnessUpdate
	OpAccountWitnessVote
	OpAccountWitnessProxy

	OpStreamingPlatformUpdate
	OpAccountStreamingPlatformVote
	OpStreamingPlatformReport

	OpAssetCreate
	OpAssetUpdate
	OpAssetIssue
	OpAssetReserve

	OpCustom

	OpCustomJSON
	OpSetWithdrawVestingRoute
	OpRequestAccountRecovery
	OpRecoverAccount
	OpChangeRecoveryAccount

	OpProposalCreate
	OpProposalUpdate
	OpProposalDelete

	// Virtual operations (spec §4.4, §6: "Virtual operations follow user
	// operations in tag space"). These are never user-submitted; the block
	// applier emits them to the history stream.
	OpFillConvertRequest
	OpPlayingReward
	OpContentReward
	OpCurateReward
	OpLiquidityReward
	OpFillVestingWithdraw
	OpFillOrder
)

var opNames = map[OperationType]string{
	OpVote:                         "vote",
	OpContent:                      "content",
	OpContentUpdate:                "content_update",
	OpContentApprove:               "content_approve",
	OpContentDisable:               "content_disable",
	OpTransfer:                     "transfer",
	OpTransferToVesting:            "transfer_to_vesting",
	OpWithdrawVesting:              "withdraw_vesting",
	OpLimitOrderCreate:             "limit_order_create",
	OpLimitOrderCreate2:            "limit_order_create2",
	OpLimitOrderCancel:             "limit_order_cancel",
	OpFeedPublish:                  "feed_publish",
	OpConvert:                      "convert",
	OpAccountCreate:                "account_create",
	OpAccountUpdate:                "account_update",
	OpWitnessUpdate:                "witness_update",
	OpAccountWitnessVote:           "account_witness_vote",
	OpAccountWitnessProxy:          "account_witness_proxy",
	OpStreamingPlatformUpdate:      "streaming_platform_update",
	OpAccountStreamingPlatformVote: "account_streaming_platform_vote",
	OpStreamingPlatformReport:      "streaming_platform_report",
	OpAssetCreate:                  "asset_create",
	OpAssetUpdate:                  "asset_update",
	OpAssetIssue:                   "asset_issue",
	OpAssetReserve:                 "asset_reserve",
	OpCustom:                       "custom",
	OpCustomJSON:                   "custom_json",
	OpSetWithdrawVestingRoute:      "set_withdraw_vesting_route",
	OpRequestAccountRecovery:       "request_account_recovery",
	OpRecoverAccount:               "recover_account",
	OpChangeRecoveryAccount:        "change_recovery_account",
	OpProposalCreate:               "proposal_create",
	OpProposalUpdate:               "proposal_update",
	OpProposalDelete:               "proposal_delete",
	OpFillConvertRequest:           "fill_convert_request",
	OpPlayingReward:                "playing_reward",
	OpContentReward:                "content_reward",
	OpCurateReward:                 "curate_reward",
	OpLiquidityReward:              "liquidity_reward",
	OpFillVestingWithdraw:          "fill_vesting_withdraw",
	OpFillOrder:                    "fill_order",
}

// String renders the operation's lowercase identifier, the reflection
// boundary's external name (spec §6: "Enum fields serialize as their
// lowercase identifier").
func (t OperationType) String() string {
	if name, ok := opNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsVirtual reports whether the tag belongs to the virtual-operation range.
func (t OperationType) IsVirtual() bool {
	return t >= OpFillConvertRequest
}
