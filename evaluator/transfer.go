package evaluator

import (
	"harmonichain/core/events"
	"harmonichain/primitives"
	"harmonichain/protocol"
)

func (s *State) applyTransfer(op *protocol.TransferOperation) error {
	from, ok := s.AccountByName(op.From)
	if !ok {
		return errUnknownEntity("account", op.From)
	}
	if _, ok := s.AccountByName(op.To); !ok {
		return errUnknownEntity("account", op.To)
	}
	if from.Balance.Value < op.Amount.Value || from.Balance.Asset != op.Amount.Asset {
		return errInsufficientFunds(op.From)
	}

	if err := s.Accounts.Modify(from.ID, func(a *AccountRow) {
		a.Balance = a.Balance.Sub(op.Amount)
	}); err != nil {
		return err
	}
	to, _ := s.AccountByName(op.To)
	return s.Accounts.Modify(to.ID, func(a *AccountRow) {
		a.Balance = a.Balance.Add(op.Amount)
	})
}

// applyTransferToVesting converts liquid HARMONY into VESTS at the current
// vesting share price (spec §4.5's staking model).
func (s *State) applyTransferToVesting(now uint64, op *protocol.TransferToVestingOperation) error {
	from, ok := s.AccountByName(op.From)
	if !ok {
		return errUnknownEntity("account", op.From)
	}
	if _, ok := s.AccountByName(op.To); !ok {
		return errUnknownEntity("account", op.To)
	}
	if from.Balance.Value < op.Amount.Value {
		return errInsufficientFunds(op.From)
	}

	globals := s.Globals()
	newVests := op.Amount.MulPrice(globals.VestingSharePrice)

	if err := s.Accounts.Modify(from.ID, func(a *AccountRow) {
		a.Balance = a.Balance.Sub(op.Amount)
	}); err != nil {
		return err
	}
	to, _ := s.AccountByName(op.To)
	if err := s.Accounts.Modify(to.ID, func(a *AccountRow) {
		a.VestingShares = a.VestingShares.Add(newVests)
	}); err != nil {
		return err
	}
	_ = now
	return s.ModifyGlobals(func(g *GlobalPropertyRow) {
		g.VestingFund += op.Amount.Value
	})
}

// applyWithdrawVesting begins (or cancels, for a zero amount) a 13-week
// vesting withdrawal (spec §4.5, config.Chain.VestingWithdrawWeeks).
func (s *State) applyWithdrawVesting(now uint64, op *protocol.WithdrawVestingOperation) error {
	account, ok := s.AccountByName(op.Account)
	if !ok {
		return errUnknownEntity("account", op.Account)
	}
	if op.VestingShares.Value > account.VestingShares.Value {
		return errInsufficientFunds(op.Account)
	}

	weeks := uint64(s.Chain.VestingWithdrawWeeks)
	if weeks == 0 {
		weeks = 1
	}
	rate := primitives.NewAmount(op.VestingShares.Asset, op.VestingShares.Value/int64(weeks))

	return s.Accounts.Modify(account.ID, func(a *AccountRow) {
		a.VestingWithdrawRate = rate
		a.ToWithdrawVesting = op.VestingShares
		a.WithdrawnVesting = primitives.NewAmount(op.VestingShares.Asset, 0)
		a.NextVestingWithdrawal = now + 7*24*3600
	})
}

func (s *State) applySetWithdrawVestingRoute(op *protocol.SetWithdrawVestingRouteOperation) error {
	if _, ok := s.AccountByName(op.FromAccount); !ok {
		return errUnknownEntity("account", op.FromAccount)
	}
	if _, ok := s.AccountByName(op.ToAccount); !ok {
		return errUnknownEntity("account", op.ToAccount)
	}

	var existing *WithdrawVestingRouteRow
	for _, r := range s.WithdrawRoutes.All() {
		if r.From == op.FromAccount && r.To == op.ToAccount {
			row := r
			existing = &row
			break
		}
	}

	if op.Percent == 0 {
		if existing != nil {
			return s.WithdrawRoutes.Remove(existing.ID)
		}
		return nil
	}
	if existing != nil {
		return s.WithdrawRoutes.Modify(existing.ID, func(r *WithdrawVestingRouteRow) {
			r.Percent = op.Percent
			r.AutoVest = op.AutoVest
		})
	}
	_, err := s.WithdrawRoutes.Create(func(r *WithdrawVestingRouteRow) {
		r.From = op.FromAccount
		r.To = op.ToAccount
		r.Percent = op.Percent
		r.AutoVest = op.AutoVest
	})
	return err
}

func (s *State) emit(e events.Event) {
	s.Emitter.Emit(e)
}
