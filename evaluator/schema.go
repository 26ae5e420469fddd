// Package evaluator implements do_apply for every operation kind: the
// state-dependent half of spec §4.4, complementing protocol's pure
// Validate(). Each evaluator reads and writes the object store directly;
// none of this package's logic is reachable from protocol, preserving the
// "operation model has zero dependency on the object store" split spec §4.1
// calls for.
package evaluator

import (
	"harmonichain/primitives"
)

// Table type tags within primitives.SpaceProtocol: every user-visible
// entity spec §3 names.
const (
	TypeAccount primitives.Type = iota + 1
	TypeAsset
	TypeContent
	TypeLimitOrder
	TypeWitness
	TypeStreamingPlatform
	TypeProposal
	TypeWithdrawVestingRoute
)

// Table type tags within primitives.SpaceImplementation: evaluator-owned
// bookkeeping rows with no direct protocol operation counterpart.
const (
	TypeGlobalProperty primitives.Type = iota + 1
	TypeAccountRecoveryRequest
	TypeChangeRecoveryAccountRequest
	TypeConvertRequest
	TypeFeedHistory
	TypeContentVote
	TypeLiquidityContribution
)

// AccountRow is the account table's row (spec §3's Account entity).
type AccountRow struct {
	ID     primitives.ObjectID
	Name   string
	Owner  primitives.Authority
	Active primitives.Authority
	Basic  primitives.Authority

	MemoKey             primitives.PublicKey
	RecoveryAccount     string
	JSONMetadata        string
	Proxy               string
	LastOwnerUpdate     uint64
	LastAccountUpdate   uint64
	CreatedAt           uint64

	Balance               primitives.Amount
	VestingShares         primitives.Amount
	VestingWithdrawRate   primitives.Amount
	NextVestingWithdrawal uint64
	WithdrawnVesting      primitives.Amount
	ToWithdrawVesting     primitives.Amount

	WitnessVotes           []primitives.ObjectID
	StreamingPlatformVotes []primitives.ObjectID

	// PreviousOwner/PreviousOwnerUpdate retain the single most recent
	// superseded owner authority, the "recent_owner_authority" spec §4.4's
	// recover_account evaluator must be able to match against within
	// OwnerAuthRecoveryPeriodDays of it being replaced.
	PreviousOwner       primitives.Authority
	PreviousOwnerUpdate uint64
}

func (a AccountRow) Clone() AccountRow {
	c := a
	c.WitnessVotes = append([]primitives.ObjectID(nil), a.WitnessVotes...)
	c.StreamingPlatformVotes = append([]primitives.ObjectID(nil), a.StreamingPlatformVotes...)
	return c
}
func (a AccountRow) ObjectID() primitives.ObjectID { return a.ID }
func (a AccountRow) WithObjectID(id primitives.ObjectID) AccountRow {
	a.ID = id
	return a
}

// AssetRow is the asset table's row (spec §3's Asset entity).
type AssetRow struct {
	ID             primitives.ObjectID
	Symbol         string
	Issuer         string
	Precision      uint8
	MaxSupply      int64
	CurrentSupply  int64
	Flags          uint32
	PermissionMask uint32
	FeedHistoryID  primitives.ObjectID
}

func (a AssetRow) Clone() AssetRow                             { return a }
func (a AssetRow) ObjectID() primitives.ObjectID                { return a.ID }
func (a AssetRow) WithObjectID(id primitives.ObjectID) AssetRow { a.ID = id; return a }

// ContentRow is the content table's row (spec §3's Content entity).
type ContentRow struct {
	ID       primitives.ObjectID
	Uploader string
	URL      string
	Album    string
	Track    string

	HasComposition   bool
	CompositionAlbum string
	CompositionTrack string

	DistributionMaster []protocolShare
	DistributionComp   []protocolShare
	ManagementMaster   []protocolPercentageShare
	ManagementComp     []protocolPercentageShare

	PlayingRewardBp   uint32
	PublishersShareBp uint32
	AllowVotes        bool
	Disabled          bool

	CreatedAt       uint64
	CashoutTime     uint64
	NetRshares      int64
	AbsRshares      int64
	TotalPlayTime   uint64
	TotalPayout     primitives.Amount

	// Approvals records management-side signoffs filed by content_approve,
	// keyed by approver account name (spec §4.4's content_approve evaluator).
	Approvals map[string]bool
}

func (c ContentRow) Clone() ContentRow {
	clone := c
	clone.DistributionMaster = append([]protocolShare(nil), c.DistributionMaster...)
	clone.DistributionComp = append([]protocolShare(nil), c.DistributionComp...)
	clone.ManagementMaster = append([]protocolPercentageShare(nil), c.ManagementMaster...)
	clone.ManagementComp = append([]protocolPercentageShare(nil), c.ManagementComp...)
	clone.Approvals = cloneBoolSet(c.Approvals)
	return clone
}
func (c ContentRow) ObjectID() primitives.ObjectID { return c.ID }
func (c ContentRow) WithObjectID(id primitives.ObjectID) ContentRow {
	c.ID = id
	return c
}

// protocolShare/protocolPercentageShare mirror protocol.BasisPointShare and
// protocol.PercentageShare; the evaluator package keeps its own copies so a
// table row never depends on the protocol package's operation types,
// preserving the store/evaluator/protocol layering spec §4.1 describes.
type protocolShare struct {
	Payee  string
	Weight uint32
}

type protocolPercentageShare struct {
	Account    string
	Percentage uint32
}

// LimitOrderRow is the limit-order table's row (spec §3's Order entity).
type LimitOrderRow struct {
	ID           primitives.ObjectID
	Owner        string
	OrderID      uint32
	Expiration   uint64
	ForSale      primitives.Amount
	SellPrice    primitives.Price
	FillOrKill   bool
}

func (o LimitOrderRow) Clone() LimitOrderRow                             { return o }
func (o LimitOrderRow) ObjectID() primitives.ObjectID                     { return o.ID }
func (o LimitOrderRow) WithObjectID(id primitives.ObjectID) LimitOrderRow { o.ID = id; return o }

// WitnessRow is the witness table's row (spec §3's Witness entity).
// MinFeeVote and FeedPrice/FeedTime are two independent witness_update/
// feed_publish inputs and must not share storage: the system feed median
// (spec §4.4) is computed from exactly one FeedPrice sample per witness,
// so overwriting it with an unrelated fee vote would silently corrupt it.
type WitnessRow struct {
	ID            primitives.ObjectID
	Owner         string
	URL           string
	SigningKey    primitives.PublicKey
	Votes         uint64
	MinFeeVote    primitives.Amount
	FeedPrice     primitives.Price
	FeedTime      uint64
	LastConfirmed uint64
}

func (w WitnessRow) Clone() WitnessRow                             { return w }
func (w WitnessRow) ObjectID() primitives.ObjectID                 { return w.ID }
func (w WitnessRow) WithObjectID(id primitives.ObjectID) WitnessRow { w.ID = id; return w }

// StreamingPlatformRow is the streaming-platform table's row.
type StreamingPlatformRow struct {
	ID    primitives.ObjectID
	Owner string
	URL   string
	Votes uint64
}

func (s StreamingPlatformRow) Clone() StreamingPlatformRow { return s }
func (s StreamingPlatformRow) ObjectID() primitives.ObjectID {
	return s.ID
}
func (s StreamingPlatformRow) WithObjectID(id primitives.ObjectID) StreamingPlatformRow {
	s.ID = id
	return s
}

// WithdrawVestingRouteRow is a single configured vesting-withdrawal route.
type WithdrawVestingRouteRow struct {
	ID       primitives.ObjectID
	From     string
	To       string
	Percent  uint16
	AutoVest bool
}

func (r WithdrawVestingRouteRow) Clone() WithdrawVestingRouteRow { return r }
func (r WithdrawVestingRouteRow) ObjectID() primitives.ObjectID  { return r.ID }
func (r WithdrawVestingRouteRow) WithObjectID(id primitives.ObjectID) WithdrawVestingRouteRow {
	r.ID = id
	return r
}

// ProposalRow is the proposed-transaction table's row (spec §3's Proposal
// entity).
type ProposalRow struct {
	ID                  primitives.ObjectID
	Creator             string
	Expiration          uint64
	ReviewPeriodSeconds uint32
	Operations          []protocolOperationSnapshot

	AvailableActiveApprovals map[string]bool
	AvailableOwnerApprovals  map[string]bool
	AvailableKeyApprovals    map[primitives.PublicKey]bool
}

func (p ProposalRow) Clone() ProposalRow {
	clone := p
	clone.Operations = append([]protocolOperationSnapshot(nil), p.Operations...)
	clone.AvailableActiveApprovals = cloneBoolSet(p.AvailableActiveApprovals)
	clone.AvailableOwnerApprovals = cloneBoolSet(p.AvailableOwnerApprovals)
	clone.AvailableKeyApprovals = make(map[primitives.PublicKey]bool, len(p.AvailableKeyApprovals))
	for k, v := range p.AvailableKeyApprovals {
		clone.AvailableKeyApprovals[k] = v
	}
	return clone
}
func (p ProposalRow) ObjectID() primitives.ObjectID { return p.ID }
func (p ProposalRow) WithObjectID(id primitives.ObjectID) ProposalRow {
	p.ID = id
	return p
}

func cloneBoolSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// protocolOperationSnapshot is a deferred-decode slot for a proposal's inner
// operation: proposals are stored encoded (encode/decode lives in protocol,
// a package the store's row types must not import), and are re-decoded into
// protocol.Operation values only at proposal-application time by the
// dispatch layer, which does import protocol.
type protocolOperationSnapshot struct {
	Tag  uint8
	Body []byte
}

// GlobalPropertyRow is the singleton dynamic-globals row (spec §6's
// "snapshot is the concatenation of every table's rows ... plus dynamic
// globals").
type GlobalPropertyRow struct {
	ID                  primitives.ObjectID
	HeadBlockNumber     uint64
	HeadBlockID         [32]byte
	Time                uint64
	CurrentWitness      string
	VirtualSupply       int64
	VestingFund         int64
	VestingSharePrice   primitives.Price
	ContentRewardFund   int64
	LastContentPayout   uint64
	MaximumBlockSize    uint32
}

func (g GlobalPropertyRow) Clone() GlobalPropertyRow { return g }
func (g GlobalPropertyRow) ObjectID() primitives.ObjectID {
	return g.ID
}
func (g GlobalPropertyRow) WithObjectID(id primitives.ObjectID) GlobalPropertyRow {
	g.ID = id
	return g
}

// AccountRecoveryRequestRow is an evaluator-owned bookkeeping row tracking a
// pending account_recovery_request (spec §4.4's recover_account window).
type AccountRecoveryRequestRow struct {
	ID                primitives.ObjectID
	AccountToRecover  string
	NewOwnerAuthority primitives.Authority
	ExpiresAt         uint64
}

func (r AccountRecoveryRequestRow) Clone() AccountRecoveryRequestRow { return r }
func (r AccountRecoveryRequestRow) ObjectID() primitives.ObjectID    { return r.ID }
func (r AccountRecoveryRequestRow) WithObjectID(id primitives.ObjectID) AccountRecoveryRequestRow {
	r.ID = id
	return r
}

// ChangeRecoveryAccountRequestRow tracks a pending change_recovery_account
// request during its owner-auth-recovery-period delay.
type ChangeRecoveryAccountRequestRow struct {
	ID                  primitives.ObjectID
	AccountToRecover    string
	RecoveryAccount     string
	EffectiveOn         uint64
}

func (r ChangeRecoveryAccountRequestRow) Clone() ChangeRecoveryAccountRequestRow { return r }
func (r ChangeRecoveryAccountRequestRow) ObjectID() primitives.ObjectID          { return r.ID }
func (r ChangeRecoveryAccountRequestRow) WithObjectID(id primitives.ObjectID) ChangeRecoveryAccountRequestRow {
	r.ID = id
	return r
}

// ConvertRequestRow tracks a pending convert operation during its
// ConvertDelaySeconds window.
type ConvertRequestRow struct {
	ID        primitives.ObjectID
	Owner     string
	RequestID uint32
	Amount    primitives.Amount
	MatureAt  uint64
}

func (r ConvertRequestRow) Clone() ConvertRequestRow                             { return r }
func (r ConvertRequestRow) ObjectID() primitives.ObjectID                        { return r.ID }
func (r ConvertRequestRow) WithObjectID(id primitives.ObjectID) ConvertRequestRow { r.ID = id; return r }

// FeedHistoryRow caches the asset pair's current system feed price: the
// median of the most recent feed sample per active witness within the
// 7-day window (spec §4.4), recomputed by recomputeFeedMedian whenever a
// witness publishes and by RotateFeedWindow's hourly sweep.
type FeedHistoryRow struct {
	ID            primitives.ObjectID
	BaseAsset     primitives.AssetID
	QuoteAsset    primitives.AssetID
	CurrentMedian primitives.Price
}

func (f FeedHistoryRow) Clone() FeedHistoryRow        { return f }
func (f FeedHistoryRow) ObjectID() primitives.ObjectID { return f.ID }
func (f FeedHistoryRow) WithObjectID(id primitives.ObjectID) FeedHistoryRow {
	f.ID = id
	return f
}

// ContentVoteRow records one account's vote on one piece of content, so a
// repeat vote updates rather than double-counts rshares (spec §4.4's vote
// evaluator must diff against the prior weight).
type ContentVoteRow struct {
	ID         primitives.ObjectID
	Voter      string
	Content    primitives.ObjectID
	Weight     int32
	Rshares    int64
	NumChanges uint32
	VotedAt    uint64
}

// NumChangesAtLimit reports whether this vote has already been revised
// max times (spec §3's content_vote entity: "num_changes <= 5").
func (v ContentVoteRow) NumChangesAtLimit(max uint32) bool {
	return v.NumChanges >= max
}

func (v ContentVoteRow) Clone() ContentVoteRow                             { return v }
func (v ContentVoteRow) ObjectID() primitives.ObjectID                     { return v.ID }
func (v ContentVoteRow) WithObjectID(id primitives.ObjectID) ContentVoteRow { v.ID = id; return v }

// LiquidityContributionRow accrues an account's native-asset order-matching
// volume between hourly liquidity-reward payouts (spec §4.5's "BLOCKS_PER_
// HOUR boundary: pay liquidity reward"), reset to zero once paid.
type LiquidityContributionRow struct {
	ID      primitives.ObjectID
	Account string
	Volume  int64
}

func (l LiquidityContributionRow) Clone() LiquidityContributionRow { return l }
func (l LiquidityContributionRow) ObjectID() primitives.ObjectID   { return l.ID }
func (l LiquidityContributionRow) WithObjectID(id primitives.ObjectID) LiquidityContributionRow {
	l.ID = id
	return l
}
