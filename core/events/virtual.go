package events

import "harmonichain/protocol"

// Each wrapper below adapts one of protocol's virtual operation structs
// (spec §4.4's history-stream list) to the Event interface, so the block
// applier can hand the same value it appends to a block's virtual-op list
// straight to an Emitter.

const (
	TypeFillConvertRequest   = "fill_convert_request"
	TypePlayingReward        = "playing_reward"
	TypeContentReward        = "content_reward"
	TypeCurateReward         = "curate_reward"
	TypeLiquidityReward      = "liquidity_reward"
	TypeFillVestingWithdraw  = "fill_vesting_withdraw"
	TypeFillOrder            = "fill_order"
)

type FillConvertRequest struct{ Op protocol.FillConvertRequestOperation }

func (FillConvertRequest) EventType() string { return TypeFillConvertRequest }

func (e FillConvertRequest) Record() *Record {
	return &Record{Type: TypeFillConvertRequest, Attributes: map[string]string{
		"owner":      normalizeAccount(e.Op.Owner),
		"amount_in":  e.Op.AmountIn.DecimalString(),
		"amount_out": e.Op.AmountOut.DecimalString(),
	}}
}

type PlayingReward struct{ Op protocol.PlayingRewardOperation }

func (PlayingReward) EventType() string { return TypePlayingReward }

func (e PlayingReward) Record() *Record {
	return &Record{Type: TypePlayingReward, Attributes: map[string]string{
		"streaming_platform": normalizeAccount(e.Op.StreamingPlatform),
		"content":            e.Op.Content.String(),
		"reward":             e.Op.Reward.DecimalString(),
	}}
}

type ContentReward struct{ Op protocol.ContentRewardOperation }

func (ContentReward) EventType() string { return TypeContentReward }

func (e ContentReward) Record() *Record {
	return &Record{Type: TypeContentReward, Attributes: map[string]string{
		"content": e.Op.Content.String(),
		"payee":   normalizeAccount(e.Op.Payee),
		"reward":  e.Op.Reward.DecimalString(),
	}}
}

type CurateReward struct{ Op protocol.CurateRewardOperation }

func (CurateReward) EventType() string { return TypeCurateReward }

func (e CurateReward) Record() *Record {
	return &Record{Type: TypeCurateReward, Attributes: map[string]string{
		"curator": normalizeAccount(e.Op.Curator),
		"content": e.Op.Content.String(),
		"reward":  e.Op.Reward.DecimalString(),
	}}
}

type LiquidityReward struct{ Op protocol.LiquidityRewardOperation }

func (LiquidityReward) EventType() string { return TypeLiquidityReward }

func (e LiquidityReward) Record() *Record {
	return &Record{Type: TypeLiquidityReward, Attributes: map[string]string{
		"owner":  normalizeAccount(e.Op.Owner),
		"reward": e.Op.Reward.DecimalString(),
	}}
}

type FillVestingWithdraw struct{ Op protocol.FillVestingWithdrawOperation }

func (FillVestingWithdraw) EventType() string { return TypeFillVestingWithdraw }

func (e FillVestingWithdraw) Record() *Record {
	return &Record{Type: TypeFillVestingWithdraw, Attributes: map[string]string{
		"from":              normalizeAccount(e.Op.From),
		"to":                normalizeAccount(e.Op.To),
		"withdrawn_vesting": e.Op.WithdrawnVesting.DecimalString(),
		"deposited_liquid":  e.Op.DepositedLiquid.DecimalString(),
	}}
}

type FillOrder struct{ Op protocol.FillOrderOperation }

func (FillOrder) EventType() string { return TypeFillOrder }

func (e FillOrder) Record() *Record {
	return &Record{Type: TypeFillOrder, Attributes: map[string]string{
		"current_owner": normalizeAccount(e.Op.CurrentOwner),
		"current_pays":  e.Op.CurrentPays.DecimalString(),
		"open_owner":    normalizeAccount(e.Op.OpenOwner),
		"open_pays":     e.Op.OpenPays.DecimalString(),
	}}
}
