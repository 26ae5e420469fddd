package protocol

import (
	"fmt"

	"harmonichain/primitives"
)

func init() {
	register(OpTransfer, func() Operation { return &TransferOperation{} })
	register(OpTransferToVesting, func() Operation { return &TransferToVestingOperation{} })
	register(OpWithdrawVesting, func() Operation { return &WithdrawVestingOperation{} })
	register(OpSetWithdrawVestingRoute, func() Operation { return &SetWithdrawVestingRouteOperation{} })
}

// TransferOperation moves a liquid balance between two accounts (spec
// §4.4: "deducts amount from from balance; adds to to").
type TransferOperation struct {
	From   string
	To     string
	Amount primitives.Amount
	Memo   string
}

func (op *TransferOperation) Tag() OperationType { return OpTransfer }

func (op *TransferOperation) Validate() error {
	if err := validateAccountName("from", op.From); err != nil {
		return err
	}
	if err := validateAccountName("to", op.To); err != nil {
		return err
	}
	if op.From == op.To {
		return fmt.Errorf("transfer: from and to must differ")
	}
	if err := validatePositiveAmount("amount", op.Amount); err != nil {
		return err
	}
	return validateMemo("memo", op.Memo)
}

func (op *TransferOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.From}}
}

// TransferToVestingOperation burns liquid funds and mints vesting shares at
// the current share price (spec §4.4).
type TransferToVestingOperation struct {
	From   string
	To     string
	Amount primitives.Amount
}

func (op *TransferToVestingOperation) Tag() OperationType { return OpTransferToVesting }

func (op *TransferToVestingOperation) Validate() error {
	if err := validateAccountName("from", op.From); err != nil {
		return err
	}
	if err := validateAccountName("to", op.To); err != nil {
		return err
	}
	return validatePositiveAmount("amount", op.Amount)
}

func (op *TransferToVestingOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.From}}
}

// WithdrawVestingOperation schedules (or, with a zero amount, cancels) a
// 13-week vesting withdrawal (spec §4.4).
type WithdrawVestingOperation struct {
	Account       string
	VestingShares primitives.Amount
}

func (op *WithdrawVestingOperation) Tag() OperationType { return OpWithdrawVesting }

func (op *WithdrawVestingOperation) Validate() error {
	if err := validateAccountName("account", op.Account); err != nil {
		return err
	}
	return validateNonNegativeAmount("vesting_shares", op.VestingShares)
}

func (op *WithdrawVestingOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Account}}
}

// SetWithdrawVestingRouteOperation redirects a fraction of an account's
// vesting withdrawal to another account (spec §3: "at most 10 vesting-
// withdrawal routes").
type SetWithdrawVestingRouteOperation struct {
	FromAccount string
	ToAccount   string
	Percent     uint16
	AutoVest    bool
}

func (op *SetWithdrawVestingRouteOperation) Tag() OperationType { return OpSetWithdrawVestingRoute }

func (op *SetWithdrawVestingRouteOperation) Validate() error {
	if err := validateAccountName("from_account", op.FromAccount); err != nil {
		return err
	}
	if err := validateAccountName("to_account", op.ToAccount); err != nil {
		return err
	}
	if op.Percent > 10000 {
		return fmt.Errorf("set_withdraw_vesting_route: percent %d exceeds 10000", op.Percent)
	}
	return nil
}

func (op *SetWithdrawVestingRouteOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.FromAccount}}
}
