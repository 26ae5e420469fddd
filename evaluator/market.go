package evaluator

import (
	"sort"

	"harmonichain/core/events"
	"harmonichain/primitives"
	"harmonichain/protocol"
)

// applyLimitOrderCreate places an order expressed as "sell AmountToSell for
// at least MinToReceive" and matches it price-time priority against the
// book (spec §4.4).
func (s *State) applyLimitOrderCreate(now uint64, op *protocol.LimitOrderCreateOperation) error {
	price, ok := primitives.NewPrice(op.AmountToSell, op.MinToReceive)
	if !ok {
		return errInvariant("limit_order_create: amount_to_sell and min_to_receive must form a valid price")
	}
	return s.createAndMatchOrder(now, op.Owner, op.OrderID, op.AmountToSell, price, op.FillOrKill, op.Expiration)
}

// applyLimitOrderCreate2 is the price-denominated variant: the exchange
// rate is supplied directly rather than derived from a min-to-receive
// amount (spec §4.4 groups both under the same matching rule).
func (s *State) applyLimitOrderCreate2(now uint64, op *protocol.LimitOrderCreate2Operation) error {
	price := op.ExchangeRate
	if price.Base.Asset != op.AmountToSell.Asset {
		price = price.Invert()
	}
	return s.createAndMatchOrder(now, op.Owner, op.OrderID, op.AmountToSell, price, op.FillOrKill, op.Expiration)
}

// createAndMatchOrder reserves amountToSell from owner's balance, walks the
// opposite-side book in price-time priority (best price, then earliest
// ObjectID), and either fully/partially fills or rests the remainder on the
// book. price is denominated Base=amountToSell.Asset, Quote=the asset
// wanted in return.
func (s *State) createAndMatchOrder(now uint64, owner string, orderID uint32, amountToSell primitives.Amount, price primitives.Price, fillOrKill bool, expiration uint64) error {
	ownerRow, ok := s.AccountByName(owner)
	if !ok {
		return errUnknownEntity("account", owner)
	}
	if ownerRow.Balance.Asset != amountToSell.Asset || ownerRow.Balance.Value < amountToSell.Value {
		return errInsufficientFunds(owner)
	}
	receiveAsset := price.Quote.Asset

	book := s.booksellingFor(receiveAsset, amountToSell.Asset)
	remaining := amountToSell

	if fillOrKill {
		fillable := s.fillableAmount(book, price, remaining)
		if fillable.Value < remaining.Value {
			return errInvariant("limit_order_create: fill_or_kill order could not be fully filled")
		}
	}

	if err := s.Accounts.Modify(ownerRow.ID, func(a *AccountRow) {
		a.Balance = a.Balance.Sub(amountToSell)
	}); err != nil {
		return err
	}

	for _, bookOrder := range book {
		if remaining.IsZero() {
			break
		}
		fresh, ok := s.LimitOrders.Get(bookOrder.ID)
		if !ok || fresh.ForSale.IsZero() {
			continue
		}
		amountWeGet := remaining.MulPrice(fresh.SellPrice)
		minAcceptable := remaining.MulPrice(price)
		if amountWeGet.Value < minAcceptable.Value {
			break // book is sorted best-first; no further order can cross
		}

		sellNeededForAllStock := fresh.ForSale.MulPrice(fresh.SellPrice)
		fillSell := remaining
		if sellNeededForAllStock.Value < fillSell.Value {
			fillSell = sellNeededForAllStock
		}
		fillReceive := fillSell.MulPrice(fresh.SellPrice)
		if fillReceive.Value > fresh.ForSale.Value {
			fillReceive = fresh.ForSale
		}
		if fillSell.IsZero() || fillReceive.IsZero() {
			break
		}

		if err := s.creditAccount(owner, fillReceive); err != nil {
			return err
		}
		if err := s.creditAccount(fresh.Owner, fillSell); err != nil {
			return err
		}
		remainingForSale := fresh.ForSale.Sub(fillReceive)
		if remainingForSale.IsZero() {
			if err := s.LimitOrders.Remove(fresh.ID); err != nil {
				return err
			}
		} else {
			if err := s.LimitOrders.Modify(fresh.ID, func(o *LimitOrderRow) {
				o.ForSale = remainingForSale
			}); err != nil {
				return err
			}
		}
		remaining = remaining.Sub(fillSell)

		if err := s.recordLiquidityFill(fresh.Owner, fillSell, fillReceive); err != nil {
			return err
		}

		s.emit(events.FillOrder{Op: protocol.FillOrderOperation{
			CurrentOwner:   owner,
			CurrentOrderID: orderID,
			CurrentPays:    fillSell,
			OpenOwner:      fresh.Owner,
			OpenOrderID:    fresh.OrderID,
			OpenPays:       fillReceive,
		}})
	}

	if remaining.IsZero() {
		return nil
	}
	if fillOrKill {
		return errInvariant("limit_order_create: fill_or_kill order left unfilled remainder")
	}
	_, err := s.LimitOrders.Create(func(o *LimitOrderRow) {
		o.Owner = owner
		o.OrderID = orderID
		o.Expiration = expiration
		o.ForSale = remaining
		o.SellPrice = price
	})
	_ = now
	return err
}

// recordLiquidityFill accrues the resting order owner's native-asset side of
// a match toward the next hourly liquidity-reward payout (spec §4.5's
// "BLOCKS_PER_HOUR boundary: pay liquidity reward"); markets with no native
// leg contribute nothing.
func (s *State) recordLiquidityFill(restingOwner string, fillSell, fillReceive primitives.Amount) error {
	native, err := s.nativeAsset()
	if err != nil {
		return err
	}
	var volume int64
	switch native {
	case fillSell.Asset:
		volume = fillSell.Value
	case fillReceive.Asset:
		volume = fillReceive.Value
	default:
		return nil
	}
	row, ok := s.LiquidityContributionByAccount(restingOwner)
	if !ok {
		_, err := s.LiquidityContributions.Create(func(l *LiquidityContributionRow) {
			l.Account = restingOwner
			l.Volume = volume
		})
		return err
	}
	return s.LiquidityContributions.Modify(row.ID, func(l *LiquidityContributionRow) {
		l.Volume += volume
	})
}

// booksellingFor returns every resting order selling sellAsset for
// wantAsset, sorted best-price-first then by ascending ObjectID (earliest
// creation), the price-time priority spec §4.4 requires.
func (s *State) booksellingFor(sellAsset, wantAsset primitives.AssetID) []LimitOrderRow {
	var book []LimitOrderRow
	for _, o := range s.LimitOrders.All() {
		if o.SellPrice.Base.Asset == sellAsset && o.SellPrice.Quote.Asset == wantAsset {
			book = append(book, o)
		}
	}
	sort.SliceStable(book, func(i, j int) bool {
		return book[j].SellPrice.Less(book[i].SellPrice)
	})
	return book
}

// fillableAmount is a read-only dry run used only to decide whether a
// fill_or_kill order can be fully satisfied before any balance is touched.
func (s *State) fillableAmount(book []LimitOrderRow, price primitives.Price, want primitives.Amount) primitives.Amount {
	remaining := want
	for _, bookOrder := range book {
		if remaining.IsZero() {
			break
		}
		amountWeGet := remaining.MulPrice(bookOrder.SellPrice)
		minAcceptable := remaining.MulPrice(price)
		if amountWeGet.Value < minAcceptable.Value {
			break
		}
		sellNeededForAllStock := bookOrder.ForSale.MulPrice(bookOrder.SellPrice)
		fillSell := remaining
		if sellNeededForAllStock.Value < fillSell.Value {
			fillSell = sellNeededForAllStock
		}
		remaining = remaining.Sub(fillSell)
	}
	return want.Sub(remaining)
}

// applyLimitOrderCancel removes a standing order, releasing its balance
// reservation (spec §3 invariant 2).
func (s *State) applyLimitOrderCancel(op *protocol.LimitOrderCancelOperation) error {
	row, ok := s.findLimitOrder(op.Owner, op.OrderID)
	if !ok {
		return errUnknownEntity("limit_order", op.Owner)
	}
	if err := s.creditAccount(row.Owner, row.ForSale); err != nil {
		return err
	}
	return s.LimitOrders.Remove(row.ID)
}

func (s *State) findLimitOrder(owner string, orderID uint32) (LimitOrderRow, bool) {
	for _, o := range s.LimitOrders.All() {
		if o.Owner == owner && o.OrderID == orderID {
			return o, true
		}
	}
	return LimitOrderRow{}, false
}

// feedWindowSeconds is spec §4.4's "most recent feed per active witness
// over a 7-day window".
const feedWindowSeconds = 7 * 24 * 3600

// applyFeedPublish records the publishing witness's latest exchange rate
// sample and recomputes the asset pair's system feed as the median of one
// sample per witness that has published within the last feedWindowSeconds
// (spec §4.4). Each witness contributes at most its single most recent
// sample, so a witness republishing repeatedly cannot skew the median by
// outvoting everyone else with stale entries of its own.
func (s *State) applyFeedPublish(now uint64, op *protocol.FeedPublishOperation) error {
	witness, ok := s.WitnessByOwner(op.Publisher)
	if !ok {
		return errUnknownEntity("witness", op.Publisher)
	}
	if err := s.Witnesses.Modify(witness.ID, func(w *WitnessRow) {
		w.FeedPrice = op.ExchangeRate
		w.FeedTime = now
	}); err != nil {
		return err
	}
	return s.recomputeFeedMedian(now, op.ExchangeRate.Base.Asset, op.ExchangeRate.Quote.Asset)
}

// recomputeFeedMedian collects every witness's latest sample for the
// (base, quote) pair that is still within feedWindowSeconds of now and
// stores the median as the pair's FeedHistoryRow.CurrentMedian. A pair with
// no live samples is left untouched rather than cleared, so a brief gap in
// publications doesn't zero out an otherwise-valid feed.
func (s *State) recomputeFeedMedian(now uint64, base, quote primitives.AssetID) error {
	var samples []primitives.Price
	for _, w := range s.Witnesses.All() {
		if w.FeedTime == 0 || w.FeedPrice.Base.Asset != base || w.FeedPrice.Quote.Asset != quote {
			continue
		}
		if now >= w.FeedTime+feedWindowSeconds {
			continue
		}
		samples = append(samples, w.FeedPrice)
	}
	if len(samples) == 0 {
		return nil
	}
	median := medianPrice(samples)

	history, ok := s.findFeedHistory(base, quote)
	if !ok {
		_, err := s.FeedHistories.Create(func(f *FeedHistoryRow) {
			f.BaseAsset = base
			f.QuoteAsset = quote
			f.CurrentMedian = median
		})
		return err
	}
	return s.FeedHistories.Modify(history.ID, func(f *FeedHistoryRow) {
		f.CurrentMedian = median
	})
}

func (s *State) findFeedHistory(base, quote primitives.AssetID) (FeedHistoryRow, bool) {
	for _, f := range s.FeedHistories.All() {
		if f.BaseAsset == base && f.QuoteAsset == quote {
			return f, true
		}
	}
	return FeedHistoryRow{}, false
}

// medianPrice returns the middle element of a copy of prices sorted by
// value, the deterministic-tie-break median spec §4.4 calls for.
func medianPrice(prices []primitives.Price) primitives.Price {
	sorted := append([]primitives.Price(nil), prices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	return sorted[len(sorted)/2]
}

// applyConvert schedules a conversion that matures after ConvertDelaySeconds
// at the then-current system feed price (spec §4.4). Actual settlement
// happens in the block applier's scheduled-maintenance pass, which emits a
// FillConvertRequest virtual op and mints/burns the resulting amounts.
func (s *State) applyConvert(now uint64, op *protocol.ConvertOperation) error {
	owner, ok := s.AccountByName(op.Owner)
	if !ok {
		return errUnknownEntity("account", op.Owner)
	}
	if owner.Balance.Asset != op.Amount.Asset || owner.Balance.Value < op.Amount.Value {
		return errInsufficientFunds(op.Owner)
	}
	if err := s.Accounts.Modify(owner.ID, func(a *AccountRow) {
		a.Balance = a.Balance.Sub(op.Amount)
	}); err != nil {
		return err
	}
	matureAt := now + uint64(s.Chain.ConvertDelaySeconds)
	_, err := s.ConvertRequests.Create(func(r *ConvertRequestRow) {
		r.Owner = op.Owner
		r.RequestID = op.RequestID
		r.Amount = op.Amount
		r.MatureAt = matureAt
	})
	return err
}
