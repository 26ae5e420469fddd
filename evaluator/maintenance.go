package evaluator

import (
	"harmonichain/core/events"
	"harmonichain/primitives"
	"harmonichain/protocol"
)

// SettleMaturedConvertRequests pays out every convert request whose
// ConvertDelaySeconds window has elapsed, at the asset's current feed
// median (spec §4.4's convert evaluator, §4.5's scheduled maintenance).
func (s *State) SettleMaturedConvertRequests(now uint64) error {
	native, err := s.nativeAsset()
	if err != nil {
		return err
	}
	for _, req := range s.ConvertRequests.All() {
		if req.MatureAt > now {
			continue
		}
		history, ok := s.findFeedHistory(native, req.Amount.Asset)
		if !ok {
			history, ok = s.findFeedHistory(req.Amount.Asset, native)
		}
		var out primitives.Amount
		if ok {
			out = req.Amount.MulPrice(history.CurrentMedian)
		} else {
			out = primitives.NewAmount(req.Amount.Asset, req.Amount.Value)
		}
		if err := s.Assets.Modify(req.Amount.Asset, func(a *AssetRow) {
			a.CurrentSupply -= req.Amount.Value
		}); err != nil {
			return err
		}
		if req.Amount.Asset == native {
			if err := s.ModifyGlobals(func(g *GlobalPropertyRow) { g.VirtualSupply -= req.Amount.Value }); err != nil {
				return err
			}
		}
		if err := s.mintAsset(out.Asset, out.Value); err != nil {
			return err
		}
		if err := s.creditAccount(req.Owner, out); err != nil {
			return err
		}
		if err := s.ConvertRequests.Remove(req.ID); err != nil {
			return err
		}
		s.emit(events.FillConvertRequest{Op: protocol.FillConvertRequestOperation{
			Owner:     req.Owner,
			RequestID: req.RequestID,
			AmountIn:  req.Amount,
			AmountOut: out,
		}})
	}
	return nil
}

// SettleContentCashouts pays out every content row whose cashout window has
// matured: CurationRewardBp of the matured reward splits across voters
// proportional to their accrued |rshares|, the remainder pays out per the
// content's declared master/composition distribution (spec §4.5's
// "eligible content compute score, distribute ... per declared
// distribution"). A content row with CashoutTime == 0 has already settled
// (or never accrued a window) and is skipped.
func (s *State) SettleContentCashouts(now uint64) error {
	native, err := s.nativeAsset()
	if err != nil {
		return err
	}
	globals := s.Globals()
	for _, content := range s.Content.All() {
		if content.CashoutTime == 0 || now < content.CashoutTime {
			continue
		}
		if content.Disabled || content.NetRshares <= 0 {
			if err := s.Content.Modify(content.ID, func(c *ContentRow) { c.CashoutTime = 0 }); err != nil {
				return err
			}
			continue
		}

		dailyPool := s.Chain.ContentRewardPerDay(globals.VirtualSupply)
		pool := primitives.NewAmount(native, dailyPool)
		if pool.IsZero() {
			if err := s.Content.Modify(content.ID, func(c *ContentRow) { c.CashoutTime = 0 }); err != nil {
				return err
			}
			continue
		}

		curateShare := bpShare(pool, s.Chain.CurationRewardBp)
		payeeShare := pool.Sub(curateShare)

		if err := s.mintAsset(native, pool.Value); err != nil {
			return err
		}

		if err := s.payCurators(content, curateShare); err != nil {
			return err
		}

		var compShare, masterShare primitives.Amount
		if content.HasComposition && len(content.DistributionComp) > 0 {
			compShare = bpShare(payeeShare, content.PublishersShareBp)
			masterShare = payeeShare.Sub(compShare)
		} else {
			masterShare = payeeShare
			compShare = primitives.NewAmount(native, 0)
		}
		if err := s.payContentShare(content.ID, content.DistributionComp, compShare); err != nil {
			return err
		}
		if err := s.payContentShare(content.ID, content.DistributionMaster, masterShare); err != nil {
			return err
		}

		if err := s.Content.Modify(content.ID, func(c *ContentRow) {
			c.TotalPayout = c.TotalPayout.Add(payeeShare)
			c.CashoutTime = 0
		}); err != nil {
			return err
		}
	}
	return nil
}

// payCurators splits reward across every vote cast on content, weighted by
// |rshares| (spec §4.4's curation pool), emitting one CurateReward per
// non-zero payout.
func (s *State) payCurators(content ContentRow, reward primitives.Amount) error {
	if reward.IsZero() {
		return nil
	}
	var votes []ContentVoteRow
	for _, v := range s.ContentVotes.All() {
		if v.Content == content.ID && v.Rshares != 0 {
			votes = append(votes, v)
		}
	}
	if len(votes) == 0 {
		return nil
	}
	for _, v := range votes {
		share := primitives.NewAmount(reward.Asset, reward.Value*absInt64(v.Rshares)/content.AbsRshares)
		if share.IsZero() {
			continue
		}
		if err := s.creditAccount(v.Voter, share); err != nil {
			return err
		}
		s.emit(events.CurateReward{Op: protocol.CurateRewardOperation{
			Curator: v.Voter,
			Content: content.ID,
			Reward:  share,
		}})
	}
	return nil
}

// payContentShare distributes pool across shares, emitting one
// ContentReward per non-zero payout (distinct from the immediate per-report
// PlayingReward streaming_platform_report already pays).
func (s *State) payContentShare(content primitives.ObjectID, shares []protocolShare, pool primitives.Amount) error {
	if pool.IsZero() || len(shares) == 0 {
		return nil
	}
	for _, sh := range shares {
		amount := bpShare(pool, sh.Weight)
		if amount.IsZero() {
			continue
		}
		if err := s.creditAccount(sh.Payee, amount); err != nil {
			return err
		}
		s.emit(events.ContentReward{Op: protocol.ContentRewardOperation{
			Content: content,
			Payee:   sh.Payee,
			Reward:  amount,
		}})
	}
	return nil
}

// PayWitnessReward mints WitnessRewardPerBlock to the block's producing
// witness and VestingRewardPerBlock into the collectively-owned vesting
// fund (spec §4.5: "every block: pay witness producer reward, decrement
// vesting-withdrawal schedules due").
func (s *State) PayWitnessReward(now uint64, witnessOwner string) error {
	native, err := s.nativeAsset()
	if err != nil {
		return err
	}
	globals := s.Globals()

	witnessReward := primitives.NewAmount(native, s.Chain.WitnessRewardPerBlock(globals.VirtualSupply))
	if !witnessReward.IsZero() {
		if err := s.mintAsset(native, witnessReward.Value); err != nil {
			return err
		}
		if err := s.creditAccount(witnessOwner, witnessReward); err != nil {
			return err
		}
	}

	vestingReward := s.Chain.VestingRewardPerBlock(globals.VirtualSupply)
	if vestingReward != 0 {
		if err := s.mintAsset(native, vestingReward); err != nil {
			return err
		}
		if err := s.ModifyGlobals(func(g *GlobalPropertyRow) {
			g.VestingFund += vestingReward
		}); err != nil {
			return err
		}
	}

	if witness, ok := s.WitnessByOwner(witnessOwner); ok {
		if err := s.Witnesses.Modify(witness.ID, func(w *WitnessRow) {
			w.LastConfirmed = now
		}); err != nil {
			return err
		}
	}
	return nil
}

// ProcessVestingWithdrawals pays out one installment of every due vesting
// withdrawal, routing shares per the account's configured withdraw routes
// before crediting the remainder directly (spec §4.5, §3's
// WithdrawVestingRoute entity).
func (s *State) ProcessVestingWithdrawals(now uint64) error {
	native, err := s.nativeAsset()
	if err != nil {
		return err
	}
	globals := s.Globals()

	for _, account := range s.Accounts.All() {
		if account.NextVestingWithdrawal == 0 || now < account.NextVestingWithdrawal {
			continue
		}
		remaining := account.ToWithdrawVesting.Sub(account.WithdrawnVesting)
		if remaining.IsZero() {
			continue
		}
		installment := account.VestingWithdrawRate
		// The first (total mod weeks) installments carry one extra unit, so
		// the whole amount is paid out in VestingWithdrawWeeks installments.
		weeks := int64(s.Chain.VestingWithdrawWeeks)
		if weeks == 0 {
			weeks = 1
		}
		if extra := account.ToWithdrawVesting.Value - installment.Value*weeks; extra > 0 &&
			account.WithdrawnVesting.Value < extra*(installment.Value+1) {
			installment = primitives.NewAmount(installment.Asset, installment.Value+1)
		}
		if installment.Value > remaining.Value {
			installment = remaining
		}
		if installment.IsZero() {
			continue
		}

		liquid := installment.MulPrice(globals.VestingSharePrice)
		if err := s.Accounts.Modify(account.ID, func(a *AccountRow) {
			a.VestingShares = a.VestingShares.Sub(installment)
		}); err != nil {
			return err
		}
		if err := s.ModifyGlobals(func(g *GlobalPropertyRow) {
			g.VestingFund -= liquid.Value
		}); err != nil {
			return err
		}

		routed := primitives.NewAmount(native, 0)
		for _, route := range s.WithdrawRoutes.All() {
			if route.From != account.Name {
				continue
			}
			share := primitives.NewAmount(native, liquid.Value*int64(route.Percent)/10000)
			if share.IsZero() {
				continue
			}
			if route.AutoVest {
				vested := share.MulPrice(globals.VestingSharePrice)
				if err := s.creditVesting(route.To, vested, share.Value); err != nil {
					return err
				}
			} else if err := s.creditAccount(route.To, share); err != nil {
				return err
			}
			routed = routed.Add(share)
		}
		direct := liquid.Sub(routed)
		if !direct.IsZero() {
			if err := s.creditAccount(account.Name, direct); err != nil {
				return err
			}
		}

		newWithdrawn := account.WithdrawnVesting.Add(installment)
		next := now + 7*24*3600
		if newWithdrawn.Value >= account.ToWithdrawVesting.Value {
			next = 0
		}
		if err := s.Accounts.Modify(account.ID, func(a *AccountRow) {
			a.WithdrawnVesting = newWithdrawn
			a.NextVestingWithdrawal = next
		}); err != nil {
			return err
		}

		s.emit(events.FillVestingWithdraw{Op: protocol.FillVestingWithdrawOperation{
			From:             account.Name,
			To:               account.Name,
			WithdrawnVesting: installment,
			DepositedLiquid:  liquid,
		}})
	}
	return nil
}

// creditVesting credits an autovest withdraw-route target directly with
// freshly issued vesting shares, backed by liquid reserved into the vesting
// fund.
func (s *State) creditVesting(to string, vested primitives.Amount, liquidValue int64) error {
	toRow, ok := s.AccountByName(to)
	if !ok {
		return errUnknownEntity("account", to)
	}
	if err := s.Accounts.Modify(toRow.ID, func(a *AccountRow) {
		a.VestingShares = a.VestingShares.Add(vested)
	}); err != nil {
		return err
	}
	return s.ModifyGlobals(func(g *GlobalPropertyRow) {
		g.VestingFund += liquidValue
	})
}

// PayLiquidityRewards splits LiquidityRewardPerHour across every account
// with accrued order-matching volume since the last payout, proportional to
// that volume, then resets every contribution to zero (spec §4.5's
// "BLOCKS_PER_HOUR boundary: pay liquidity reward").
func (s *State) PayLiquidityRewards() error {
	native, err := s.nativeAsset()
	if err != nil {
		return err
	}
	contributions := s.LiquidityContributions.All()
	var total int64
	for _, c := range contributions {
		total += c.Volume
	}
	if total == 0 {
		return nil
	}
	pool := s.Chain.LiquidityRewardPerHour
	if pool > 0 {
		if err := s.mintAsset(native, pool); err != nil {
			return err
		}
		for _, c := range contributions {
			if c.Volume == 0 {
				continue
			}
			share := primitives.NewAmount(native, pool*c.Volume/total)
			if share.IsZero() {
				continue
			}
			if err := s.creditAccount(c.Account, share); err != nil {
				return err
			}
			s.emit(events.LiquidityReward{Op: protocol.LiquidityRewardOperation{
				Owner:  c.Account,
				Reward: share,
			}})
		}
	}
	for _, c := range contributions {
		if err := s.LiquidityContributions.Remove(c.ID); err != nil {
			return err
		}
	}
	return nil
}

// RotateFeedWindow re-derives every known asset pair's system feed median
// from each witness's latest sample, aging out any witness whose last
// publish is feedWindowSeconds or more before now; kept as its own maintenance step since spec §4.5 calls out
// feed rotation as a distinct BLOCKS_PER_HOUR action from liquidity
// rewards.
func (s *State) RotateFeedWindow(now uint64) error {
	seen := make(map[primitives.AssetID]map[primitives.AssetID]bool)
	for _, w := range s.Witnesses.All() {
		if w.FeedTime == 0 {
			continue
		}
		base, quote := w.FeedPrice.Base.Asset, w.FeedPrice.Quote.Asset
		if seen[base] == nil {
			seen[base] = make(map[primitives.AssetID]bool)
		}
		if seen[base][quote] {
			continue
		}
		seen[base][quote] = true
		if err := s.recomputeFeedMedian(now, base, quote); err != nil {
			return err
		}
	}
	return nil
}

// ExpireLimitOrders removes every resting order past its expiration,
// refunding the reserved balance (spec §3's Order entity lifecycle).
func (s *State) ExpireLimitOrders(now uint64) error {
	for _, o := range s.LimitOrders.All() {
		if o.Expiration > now {
			continue
		}
		if err := s.creditAccount(o.Owner, o.ForSale); err != nil {
			return err
		}
		if err := s.LimitOrders.Remove(o.ID); err != nil {
			return err
		}
	}
	return nil
}

// ExpireAccountRecoveryRequests discards filed account_recovery_requests
// that were never completed in time.
func (s *State) ExpireAccountRecoveryRequests(now uint64) error {
	for _, r := range s.AccountRecoveryRequests.All() {
		if r.ExpiresAt > now {
			continue
		}
		if err := s.AccountRecoveryRequests.Remove(r.ID); err != nil {
			return err
		}
	}
	return nil
}

// ApplyMaturedRecoveryAccountChanges promotes every change_recovery_account
// request whose OwnerAuthRecoveryPeriodDays delay has elapsed (spec §4.4).
func (s *State) ApplyMaturedRecoveryAccountChanges(now uint64) error {
	for _, r := range s.ChangeRecoveryRequests.All() {
		if r.EffectiveOn > now {
			continue
		}
		account, ok := s.AccountByName(r.AccountToRecover)
		if ok {
			if err := s.Accounts.Modify(account.ID, func(a *AccountRow) {
				a.RecoveryAccount = r.RecoveryAccount
			}); err != nil {
				return err
			}
		}
		if err := s.ChangeRecoveryRequests.Remove(r.ID); err != nil {
			return err
		}
	}
	return nil
}

// ExpireProposals removes every proposal whose Expiration has passed
// without collecting enough approvals to execute (spec §3's Proposal
// entity lifecycle).
func (s *State) ExpireProposals(now uint64) error {
	for _, p := range s.Proposals.All() {
		if p.Expiration > now {
			continue
		}
		if err := s.Proposals.Remove(p.ID); err != nil {
			return err
		}
	}
	return nil
}
