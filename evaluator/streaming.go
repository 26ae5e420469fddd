package evaluator

import (
	"harmonichain/core/events"
	"harmonichain/primitives"
	"harmonichain/protocol"
)

// applyStreamingPlatformReport credits a playing_reward split: PlayingRewardBp
// of the freshly-minted per-second reward to the streaming platform, then
// PublishersShareBp of what remains to the composition payees (if the track
// is composition-managed), and the rest to the master payees — each side
// weighted by its declared BasisPointShare list (spec §4.4). play_time==0 or
// a disabled content row are rejected by ContentRow.Disabled / Validate().
func (s *State) applyStreamingPlatformReport(now uint64, op *protocol.StreamingPlatformReportOperation) error {
	if _, ok := s.AccountByName(op.StreamingPlatform); !ok {
		return errUnknownEntity("account", op.StreamingPlatform)
	}
	if _, ok := s.AccountByName(op.Consumer); !ok {
		return errUnknownEntity("account", op.Consumer)
	}
	if op.PlaylistCreator != "" {
		if _, ok := s.AccountByName(op.PlaylistCreator); !ok {
			return errUnknownEntity("account", op.PlaylistCreator)
		}
	}
	content, ok := s.Content.Get(op.Content)
	if !ok {
		return errUnknownEntity("content", op.Content.String())
	}
	if content.Disabled {
		return errInvariant("streaming_platform_report: content is disabled")
	}
	if op.PlayTime == 0 {
		return errInvariant("streaming_platform_report: play_time must be positive")
	}

	native, err := s.nativeAsset()
	if err != nil {
		return err
	}
	total := primitives.NewAmount(native, int64(op.PlayTime)*s.Chain.PlayingRewardPerSecond)
	if total.IsZero() {
		return nil
	}

	platformShare := bpShare(total, content.PlayingRewardBp)
	remainder := total.Sub(platformShare)

	var compShare, masterShare primitives.Amount
	if content.HasComposition && len(content.DistributionComp) > 0 {
		compShare = bpShare(remainder, content.PublishersShareBp)
		masterShare = remainder.Sub(compShare)
	} else {
		masterShare = remainder
		compShare = primitives.NewAmount(native, 0)
	}

	if err := s.mintAsset(native, total.Value); err != nil {
		return err
	}
	if err := s.creditAccount(op.StreamingPlatform, platformShare); err != nil {
		return err
	}
	if err := s.distributeBasisPoints(content.DistributionComp, compShare); err != nil {
		return err
	}
	if err := s.distributeBasisPoints(content.DistributionMaster, masterShare); err != nil {
		return err
	}

	if err := s.Content.Modify(op.Content, func(c *ContentRow) {
		c.TotalPlayTime += uint64(op.PlayTime)
		c.TotalPayout = c.TotalPayout.Add(total)
	}); err != nil {
		return err
	}

	s.emit(events.PlayingReward{Op: protocol.PlayingRewardOperation{
		StreamingPlatform: op.StreamingPlatform,
		Content:           op.Content,
		Reward:            platformShare,
	}})
	_ = now
	return nil
}

// bpShare scales total by bp/10000, rounding toward zero.
func bpShare(total primitives.Amount, bp uint32) primitives.Amount {
	return primitives.NewAmount(total.Asset, total.Value*int64(bp)/10000)
}

// distributeBasisPoints pays pool out to each entry in shares, weighted by
// its basis-point Weight (the shares list is validated elsewhere to sum to
// 10000 or 0).
func (s *State) distributeBasisPoints(shares []protocolShare, pool primitives.Amount) error {
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
	}
	return nil
}

// creditAccount adds amount to account's balance.
func (s *State) creditAccount(account string, amount primitives.Amount) error {
	row, ok := s.AccountByName(account)
	if !ok {
		return errUnknownEntity("account", account)
	}
	return s.Accounts.Modify(row.ID, func(a *AccountRow) {
		a.Balance = a.Balance.Add(amount)
	})
}

// mintAsset increases an asset's current_supply and, if it is the native
// currency, the dynamic globals' virtual_supply, bounded by max_supply
// (spec §3 invariant 3).
func (s *State) mintAsset(asset primitives.AssetID, value int64) error {
	row, ok := s.Assets.Get(asset)
	if !ok {
		return errUnknownEntity("asset", asset.String())
	}
	if row.CurrentSupply+value > row.MaxSupply {
		return errInvariant("mint: exceeds max_supply")
	}
	if err := s.Assets.Modify(asset, func(a *AssetRow) {
		a.CurrentSupply += value
	}); err != nil {
		return err
	}
	native, err := s.nativeAsset()
	if err == nil && asset == native {
		return s.ModifyGlobals(func(g *GlobalPropertyRow) {
			g.VirtualSupply += value
		})
	}
	return nil
}
