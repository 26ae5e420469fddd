package protocol

import (
	"fmt"
	"reflect"

	"harmonichain/primitives"
)

func init() {
	register(OpAccountCreate, func() Operation { return &AccountCreateOperation{} })
	register(OpAccountUpdate, func() Operation { return &AccountUpdateOperation{} })
	register(OpRequestAccountRecovery, func() Operation { return &RequestAccountRecoveryOperation{} })
	register(OpRecoverAccount, func() Operation { return &RecoverAccountOperation{} })
	register(OpChangeRecoveryAccount, func() Operation { return &ChangeRecoveryAccountOperation{} })
}

// AccountCreateOperation registers a new named account, funded by a fee
// from its creator (spec §4.4: "requires fee >= MIN_ACCOUNT_CREATION_FEE").
type AccountCreateOperation struct {
	Creator         string
	Fee             primitives.Amount
	NewAccountName  string
	Owner           primitives.Authority
	Active          primitives.Authority
	Basic           primitives.Authority
	MemoKey         primitives.PublicKey
	RecoveryAccount string
	JSONMetadata    string
}

func (op *AccountCreateOperation) Tag() OperationType { return OpAccountCreate }

func (op *AccountCreateOperation) Validate() error {
	if err := validateAccountName("creator", op.Creator); err != nil {
		return err
	}
	if err := validateAccountName("new_account_name", op.NewAccountName); err != nil {
		return err
	}
	if err := validateNonNegativeAmount("fee", op.Fee); err != nil {
		return err
	}
	if err := op.Owner.Valid(); err != nil {
		return fmt.Errorf("account_create: owner: %w", err)
	}
	if err := op.Active.Valid(); err != nil {
		return fmt.Errorf("account_create: active: %w", err)
	}
	if err := op.Basic.Valid(); err != nil {
		return fmt.Errorf("account_create: basic: %w", err)
	}
	if op.RecoveryAccount != "" {
		if err := validateAccountName("recovery_account", op.RecoveryAccount); err != nil {
			return err
		}
	}
	return nil
}

func (op *AccountCreateOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Creator}}
}

// AccountUpdateOperation changes an existing account's authorities, memo
// key, or profile metadata. Owner-level changes require the owner authority
// (spec §4.2: "Owner-satisfaction implies active-satisfaction").
type AccountUpdateOperation struct {
	Account      string
	Owner        *primitives.Authority
	Active       *primitives.Authority
	Basic        *primitives.Authority
	MemoKey      primitives.PublicKey
	JSONMetadata string
}

func (op *AccountUpdateOperation) Tag() OperationType { return OpAccountUpdate }

func (op *AccountUpdateOperation) Validate() error {
	if err := validateAccountName("account", op.Account); err != nil {
		return err
	}
	if op.Owner != nil {
		if err := op.Owner.Valid(); err != nil {
			return fmt.Errorf("account_update: owner: %w", err)
		}
	}
	if op.Active != nil {
		if err := op.Active.Valid(); err != nil {
			return fmt.Errorf("account_update: active: %w", err)
		}
	}
	if op.Basic != nil {
		if err := op.Basic.Valid(); err != nil {
			return fmt.Errorf("account_update: basic: %w", err)
		}
	}
	return nil
}

func (op *AccountUpdateOperation) RequiredAuth() Requirements {
	if op.Owner != nil {
		return Requirements{Owner: []string{op.Account}}
	}
	return Requirements{Active: []string{op.Account}}
}

// RequestAccountRecoveryOperation is filed by an account's designated
// recovery account to begin replacing a compromised owner authority (spec
// §4.4, §3's account-recovery-request implementation entity).
type RequestAccountRecoveryOperation struct {
	RecoveryAccount  string
	AccountToRecover string
	NewOwnerAuthority primitives.Authority
}

func (op *RequestAccountRecoveryOperation) Tag() OperationType { return OpRequestAccountRecovery }

func (op *RequestAccountRecoveryOperation) Validate() error {
	if err := validateAccountName("recovery_account", op.RecoveryAccount); err != nil {
		return err
	}
	if err := validateAccountName("account_to_recover", op.AccountToRecover); err != nil {
		return err
	}
	return op.NewOwnerAuthority.Valid()
}

func (op *RequestAccountRecoveryOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.RecoveryAccount}}
}

// RecoverAccountOperation completes a recovery by proving control of an
// owner authority that was active within the recovery window (spec §4.4:
// "succeeds only if recent_owner_authority equals an owner authority active
// within OWNER_AUTH_RECOVERY_PERIOD").
type RecoverAccountOperation struct {
	AccountToRecover     string
	NewOwnerAuthority    primitives.Authority
	RecentOwnerAuthority primitives.Authority
}

func (op *RecoverAccountOperation) Tag() OperationType { return OpRecoverAccount }

func (op *RecoverAccountOperation) Validate() error {
	if err := validateAccountName("account_to_recover", op.AccountToRecover); err != nil {
		return err
	}
	if err := op.NewOwnerAuthority.Valid(); err != nil {
		return err
	}
	if err := op.RecentOwnerAuthority.Valid(); err != nil {
		return err
	}
	if reflect.DeepEqual(op.NewOwnerAuthority, op.RecentOwnerAuthority) {
		return fmt.Errorf("recover_account: new_owner_authority and recent_owner_authority must differ")
	}
	return nil
}

// RecoverAccountOperation is authorized by both the new and the recent
// owner authorities directly (spec §4.4), so it declares both as Other
// requirements rather than naming accounts, since neither is necessarily
// the account's *current* owner authority; the authority checker verifies
// them against the recovered signatures.
func (op *RecoverAccountOperation) RequiredAuth() Requirements {
	return Requirements{Other: []primitives.Authority{op.NewOwnerAuthority, op.RecentOwnerAuthority}}
}

// ChangeRecoveryAccountOperation designates a new recovery account,
// effective after a delay the evaluator enforces.
type ChangeRecoveryAccountOperation struct {
	AccountToRecover string
	NewRecoveryAccount string
}

func (op *ChangeRecoveryAccountOperation) Tag() OperationType { return OpChangeRecoveryAccount }

func (op *ChangeRecoveryAccountOperation) Validate() error {
	if err := validateAccountName("account_to_recover", op.AccountToRecover); err != nil {
		return err
	}
	return validateAccountName("new_recovery_account", op.NewRecoveryAccount)
}

func (op *ChangeRecoveryAccountOperation) RequiredAuth() Requirements {
	return Requirements{Owner: []string{op.AccountToRecover}}
}
