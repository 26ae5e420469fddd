package protocol

import "harmonichain/primitives"

func init() {
	register(OpFillConvertRequest, func() Operation { return &FillConvertRequestOperation{} })
	register(OpPlayingReward, func() Operation { return &PlayingRewardOperation{} })
	register(OpContentReward, func() Operation { return &ContentRewardOperation{} })
	register(OpCurateReward, func() Operation { return &CurateRewardOperation{} })
	register(OpLiquidityReward, func() Operation { return &LiquidityRewardOperation{} })
	register(OpFillVestingWithdraw, func() Operation { return &FillVestingWithdrawOperation{} })
	register(OpFillOrder, func() Operation { return &FillOrderOperation{} })
}

// Virtual operations are never user-submitted (spec §4.4, glossary). The
// block applier constructs them directly and appends them to the history
// stream; Validate and RequiredAuth are present only so they satisfy the
// Operation interface for the shared wire codec and are never called on a
// transaction path.

// FillConvertRequestOperation records a matured convert request settling at
// the feed price (spec §4.4's virtual-operation list).
type FillConvertRequestOperation struct {
	Owner      string
	RequestID  uint32
	AmountIn   primitives.Amount
	AmountOut  primitives.Amount
}

func (op *FillConvertRequestOperation) Tag() OperationType  { return OpFillConvertRequest }
func (op *FillConvertRequestOperation) Validate() error      { return nil }
func (op *FillConvertRequestOperation) RequiredAuth() Requirements { return Requirements{} }

// PlayingRewardOperation records a streaming-report-driven reward payout to
// a streaming platform (spec §4.4).
type PlayingRewardOperation struct {
	StreamingPlatform string
	Content           primitives.ObjectID
	Reward            primitives.Amount
}

func (op *PlayingRewardOperation) Tag() OperationType  { return OpPlayingReward }
func (op *PlayingRewardOperation) Validate() error      { return nil }
func (op *PlayingRewardOperation) RequiredAuth() Requirements { return Requirements{} }

// ContentRewardOperation records the cashout-window settlement paid to a
// content row's payees (spec §4.5 scheduled maintenance).
type ContentRewardOperation struct {
	Content primitives.ObjectID
	Payee   string
	Reward  primitives.Amount
}

func (op *ContentRewardOperation) Tag() OperationType  { return OpContentReward }
func (op *ContentRewardOperation) Validate() error      { return nil }
func (op *ContentRewardOperation) RequiredAuth() Requirements { return Requirements{} }

// CurateRewardOperation records a curator's share of a content row's
// cashout-window reward, proportional to accrued rshares.
type CurateRewardOperation struct {
	Curator string
	Content primitives.ObjectID
	Reward  primitives.Amount
}

func (op *CurateRewardOperation) Tag() OperationType  { return OpCurateReward }
func (op *CurateRewardOperation) Validate() error      { return nil }
func (op *CurateRewardOperation) RequiredAuth() Requirements { return Requirements{} }

// LiquidityRewardOperation records the hourly liquidity-provider reward
// (spec §4.5: "If BLOCKS_PER_HOUR boundary: pay liquidity reward").
type LiquidityRewardOperation struct {
	Owner  string
	Reward primitives.Amount
}

func (op *LiquidityRewardOperation) Tag() OperationType  { return OpLiquidityReward }
func (op *LiquidityRewardOperation) Validate() error      { return nil }
func (op *LiquidityRewardOperation) RequiredAuth() Requirements { return Requirements{} }

// FillVestingWithdrawOperation records one weekly installment of a vesting
// withdrawal (spec §4.4, §4.5: "decrement vesting-withdrawal schedules due").
type FillVestingWithdrawOperation struct {
	From           string
	To             string
	WithdrawnVesting primitives.Amount
	DepositedLiquid  primitives.Amount
}

func (op *FillVestingWithdrawOperation) Tag() OperationType  { return OpFillVestingWithdraw }
func (op *FillVestingWithdrawOperation) Validate() error      { return nil }
func (op *FillVestingWithdrawOperation) RequiredAuth() Requirements { return Requirements{} }

// FillOrderOperation records a limit-order match, full or partial (spec
// §4.4: "partial fills update both sides").
type FillOrderOperation struct {
	CurrentOwner   string
	CurrentOrderID uint32
	CurrentPays    primitives.Amount
	OpenOwner      string
	OpenOrderID    uint32
	OpenPays       primitives.Amount
}

func (op *FillOrderOperation) Tag() OperationType  { return OpFillOrder }
func (op *FillOrderOperation) Validate() error      { return nil }
func (op *FillOrderOperation) RequiredAuth() Requirements { return Requirements{} }
