package evaluator

import (
	"harmonichain/config"
	"harmonichain/core/events"
	"harmonichain/primitives"
	"harmonichain/store"
)

// State bundles every registered table plus the secondary indices
// evaluators need for name/symbol lookups, alongside the chain parameters
// and event emitter every evaluator consults (spec §4.5, §9's Config-value
// threading).
type State struct {
	DB *store.Database

	Accounts            *store.Table[AccountRow]
	Assets              *store.Table[AssetRow]
	Content              *store.Table[ContentRow]
	LimitOrders         *store.Table[LimitOrderRow]
	Witnesses           *store.Table[WitnessRow]
	StreamingPlatforms  *store.Table[StreamingPlatformRow]
	WithdrawRoutes      *store.Table[WithdrawVestingRouteRow]
	Proposals           *store.Table[ProposalRow]

	GlobalProperties        *store.Table[GlobalPropertyRow]
	AccountRecoveryRequests *store.Table[AccountRecoveryRequestRow]
	ChangeRecoveryRequests  *store.Table[ChangeRecoveryAccountRequestRow]
	ConvertRequests         *store.Table[ConvertRequestRow]
	FeedHistories           *store.Table[FeedHistoryRow]
	ContentVotes            *store.Table[ContentVoteRow]
	LiquidityContributions  *store.Table[LiquidityContributionRow]

	AccountsByName    *store.OrderedUniqueIndex[AccountRow, string]
	AssetsBySymbol    *store.OrderedUniqueIndex[AssetRow, string]
	WitnessesByOwner  *store.OrderedUniqueIndex[WitnessRow, string]
	ContentByURL      *store.OrderedUniqueIndex[ContentRow, string]
	StreamingByOwner  *store.OrderedUniqueIndex[StreamingPlatformRow, string]
	VotesByVoterContent *store.OrderedUniqueIndex[ContentVoteRow, voterContentKey]
	LiquidityByAccount  *store.OrderedUniqueIndex[LiquidityContributionRow, string]

	Chain   config.Chain
	Emitter events.Emitter
}

type voterContentKey struct {
	Voter   string
	Content primitives.ObjectID
}

// NewState constructs an empty State with every table and index registered
// against a fresh store.Database, ready for genesis loading.
func NewState(chain config.Chain, emitter events.Emitter) *State {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	db := store.New()
	s := &State{
		DB:      db,
		Chain:   chain,
		Emitter: emitter,
	}

	s.Accounts = store.NewTable[AccountRow](db, "accounts", primitives.SpaceProtocol, TypeAccount)
	s.Assets = store.NewTable[AssetRow](db, "assets", primitives.SpaceProtocol, TypeAsset)
	s.Content = store.NewTable[ContentRow](db, "content", primitives.SpaceProtocol, TypeContent)
	s.LimitOrders = store.NewTable[LimitOrderRow](db, "limit_orders", primitives.SpaceProtocol, TypeLimitOrder)
	s.Witnesses = store.NewTable[WitnessRow](db, "witnesses", primitives.SpaceProtocol, TypeWitness)
	s.StreamingPlatforms = store.NewTable[StreamingPlatformRow](db, "streaming_platforms", primitives.SpaceProtocol, TypeStreamingPlatform)
	s.WithdrawRoutes = store.NewTable[WithdrawVestingRouteRow](db, "withdraw_vesting_routes", primitives.SpaceProtocol, TypeWithdrawVestingRoute)
	s.Proposals = store.NewTable[ProposalRow](db, "proposals", primitives.SpaceProtocol, TypeProposal)

	s.GlobalProperties = store.NewTable[GlobalPropertyRow](db, "global_properties", primitives.SpaceImplementation, TypeGlobalProperty)
	s.AccountRecoveryRequests = store.NewTable[AccountRecoveryRequestRow](db, "account_recovery_requests", primitives.SpaceImplementation, TypeAccountRecoveryRequest)
	s.ChangeRecoveryRequests = store.NewTable[ChangeRecoveryAccountRequestRow](db, "change_recovery_account_requests", primitives.SpaceImplementation, TypeChangeRecoveryAccountRequest)
	s.ConvertRequests = store.NewTable[ConvertRequestRow](db, "convert_requests", primitives.SpaceImplementation, TypeConvertRequest)
	s.FeedHistories = store.NewTable[FeedHistoryRow](db, "feed_histories", primitives.SpaceImplementation, TypeFeedHistory)
	s.ContentVotes = store.NewTable[ContentVoteRow](db, "content_votes", primitives.SpaceImplementation, TypeContentVote)
	s.LiquidityContributions = store.NewTable[LiquidityContributionRow](db, "liquidity_contributions", primitives.SpaceImplementation, TypeLiquidityContribution)

	s.AccountsByName = store.NewOrderedUniqueIndex[AccountRow, string](func(a AccountRow) (string, bool) { return a.Name, true })
	s.Accounts.AttachIndex(s.AccountsByName)

	s.AssetsBySymbol = store.NewOrderedUniqueIndex[AssetRow, string](func(a AssetRow) (string, bool) { return a.Symbol, true })
	s.Assets.AttachIndex(s.AssetsBySymbol)

	s.WitnessesByOwner = store.NewOrderedUniqueIndex[WitnessRow, string](func(w WitnessRow) (string, bool) { return w.Owner, true })
	s.Witnesses.AttachIndex(s.WitnessesByOwner)

	s.ContentByURL = store.NewOrderedUniqueIndex[ContentRow, string](func(c ContentRow) (string, bool) { return c.URL, true })
	s.Content.AttachIndex(s.ContentByURL)

	s.StreamingByOwner = store.NewOrderedUniqueIndex[StreamingPlatformRow, string](func(p StreamingPlatformRow) (string, bool) { return p.Owner, true })
	s.StreamingPlatforms.AttachIndex(s.StreamingByOwner)

	s.VotesByVoterContent = store.NewOrderedUniqueIndex[ContentVoteRow, voterContentKey](func(v ContentVoteRow) (voterContentKey, bool) {
		return voterContentKey{Voter: v.Voter, Content: v.Content}, true
	})
	s.ContentVotes.AttachIndex(s.VotesByVoterContent)

	s.LiquidityByAccount = store.NewOrderedUniqueIndex[LiquidityContributionRow, string](func(l LiquidityContributionRow) (string, bool) { return l.Account, true })
	s.LiquidityContributions.AttachIndex(s.LiquidityByAccount)

	return s
}

// AccountByName looks up an account by name, the lookup every evaluator and
// the authority checker perform.
func (s *State) AccountByName(name string) (AccountRow, bool) {
	ids := s.AccountsByName.Range(name)
	if len(ids) == 0 {
		return AccountRow{}, false
	}
	return s.Accounts.Get(ids[0])
}

// AssetBySymbol looks up an asset by its textual symbol.
func (s *State) AssetBySymbol(symbol string) (AssetRow, bool) {
	ids := s.AssetsBySymbol.Range(symbol)
	if len(ids) == 0 {
		return AssetRow{}, false
	}
	return s.Assets.Get(ids[0])
}

// WitnessByOwner looks up a witness by its owning account name.
func (s *State) WitnessByOwner(name string) (WitnessRow, bool) {
	ids := s.WitnessesByOwner.Range(name)
	if len(ids) == 0 {
		return WitnessRow{}, false
	}
	return s.Witnesses.Get(ids[0])
}

// StreamingPlatformByOwner looks up a streaming platform by owner name.
func (s *State) StreamingPlatformByOwner(name string) (StreamingPlatformRow, bool) {
	ids := s.StreamingByOwner.Range(name)
	if len(ids) == 0 {
		return StreamingPlatformRow{}, false
	}
	return s.StreamingPlatforms.Get(ids[0])
}

// ContentByURLString looks up a content row by its canonical URL.
func (s *State) ContentByURLString(url string) (ContentRow, bool) {
	ids := s.ContentByURL.Range(url)
	if len(ids) == 0 {
		return ContentRow{}, false
	}
	return s.Content.Get(ids[0])
}

// LiquidityContributionByAccount looks up an account's accrued hourly
// liquidity-reward volume.
func (s *State) LiquidityContributionByAccount(name string) (LiquidityContributionRow, bool) {
	ids := s.LiquidityByAccount.Range(name)
	if len(ids) == 0 {
		return LiquidityContributionRow{}, false
	}
	return s.LiquidityContributions.Get(ids[0])
}

// Globals returns the singleton dynamic-globals row, panicking if genesis
// never created it (an invariant violation, per spec §7, not a recoverable
// error: no block can ever apply without dynamic globals present).
func (s *State) Globals() GlobalPropertyRow {
	id, _ := primitives.NewObjectID(primitives.SpaceImplementation, TypeGlobalProperty, 0)
	return s.GlobalProperties.MustGet(id)
}

// ModifyGlobals applies mutate to the singleton dynamic-globals row.
func (s *State) ModifyGlobals(mutate func(*GlobalPropertyRow)) error {
	id, _ := primitives.NewObjectID(primitives.SpaceImplementation, TypeGlobalProperty, 0)
	return s.GlobalProperties.Modify(id, mutate)
}
