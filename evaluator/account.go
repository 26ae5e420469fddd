package evaluator

import (
	"harmonichain/primitives"
	"harmonichain/protocol"
)

// applyAccountCreate registers a new account, charging the creator a fee of
// at least config.Chain.MinAccountCreationFee in the native asset (spec
// §4.4: "requires fee >= MIN_ACCOUNT_CREATION_FEE").
func (s *State) applyAccountCreate(now uint64, op *protocol.AccountCreateOperation) error {
	creator, ok := s.AccountByName(op.Creator)
	if !ok {
		return errUnknownEntity("account", op.Creator)
	}
	if _, exists := s.AccountByName(op.NewAccountName); exists {
		return errInvariant("account " + op.NewAccountName + " already exists")
	}
	native, err := s.nativeAsset()
	if err != nil {
		return err
	}
	if op.Fee.Asset != native || op.Fee.Value < s.Chain.MinAccountCreationFee {
		return errInvariant("account_create: fee below MinAccountCreationFee")
	}
	for _, ref := range []string{recoveryOrDefault(op.RecoveryAccount, op.Creator)} {
		if ref == op.Creator {
			continue
		}
		if _, ok := s.AccountByName(ref); !ok {
			return errUnknownEntity("account", ref)
		}
	}
	if op.Fee.Value > 0 {
		if creator.Balance.Value < op.Fee.Value {
			return errInsufficientFunds(op.Creator)
		}
		if err := s.Accounts.Modify(creator.ID, func(a *AccountRow) {
			a.Balance = a.Balance.Sub(op.Fee)
		}); err != nil {
			return err
		}
	}

	recovery := recoveryOrDefault(op.RecoveryAccount, op.Creator)
	_, err = s.Accounts.Create(func(a *AccountRow) {
		a.Name = op.NewAccountName
		a.Owner = op.Owner
		a.Active = op.Active
		a.Basic = op.Basic
		a.MemoKey = op.MemoKey
		a.RecoveryAccount = recovery
		a.JSONMetadata = op.JSONMetadata
		a.CreatedAt = now
		a.LastOwnerUpdate = now
		a.LastAccountUpdate = now
		a.Balance = primitives.NewAmount(native, 0)
	})
	return err
}

func recoveryOrDefault(recovery, creator string) string {
	if recovery == "" {
		return creator
	}
	return recovery
}

// applyAccountUpdate changes authorities, memo key, or metadata. An owner
// authority change is rate-limited to once per OwnerUpdateLimitMinutes and
// stashes the superseded authority as PreviousOwner so a later
// recover_account can match it as the "recent owner authority" (spec §4.4).
func (s *State) applyAccountUpdate(now uint64, op *protocol.AccountUpdateOperation) error {
	account, ok := s.AccountByName(op.Account)
	if !ok {
		return errUnknownEntity("account", op.Account)
	}
	if op.Owner != nil {
		limitSeconds := uint64(s.Chain.OwnerUpdateLimitMinutes) * 60
		if account.LastOwnerUpdate != 0 && now < account.LastOwnerUpdate+limitSeconds {
			return errInvariant("account_update: owner authority change rate-limited")
		}
	}
	return s.Accounts.Modify(account.ID, func(a *AccountRow) {
		if op.Owner != nil {
			a.PreviousOwner = a.Owner
			a.PreviousOwnerUpdate = a.LastOwnerUpdate
			a.Owner = *op.Owner
			a.LastOwnerUpdate = now
		}
		if op.Active != nil {
			a.Active = *op.Active
		}
		if op.Basic != nil {
			a.Basic = *op.Basic
		}
		if (op.MemoKey != primitives.PublicKey{}) {
			a.MemoKey = op.MemoKey
		}
		if op.JSONMetadata != "" {
			a.JSONMetadata = op.JSONMetadata
		}
		a.LastAccountUpdate = now
	})
}

// applyRequestAccountRecovery files or replaces a pending owner-authority
// recovery request, only accepted from the account's current designated
// recovery account (spec §4.4).
func (s *State) applyRequestAccountRecovery(now uint64, op *protocol.RequestAccountRecoveryOperation) error {
	account, ok := s.AccountByName(op.AccountToRecover)
	if !ok {
		return errUnknownEntity("account", op.AccountToRecover)
	}
	if account.RecoveryAccount != op.RecoveryAccount {
		return errInvariant("request_account_recovery: signer is not the designated recovery account")
	}
	expires := now + uint64(s.Chain.AccountRecoveryExpirationDays)*24*3600

	if existing, ok := s.findAccountRecoveryRequest(op.AccountToRecover); ok {
		if op.NewOwnerAuthority.IsImpossible() || len(op.NewOwnerAuthority.Keys)+len(op.NewOwnerAuthority.Accounts) == 0 {
			return s.AccountRecoveryRequests.Remove(existing.ID)
		}
		return s.AccountRecoveryRequests.Modify(existing.ID, func(r *AccountRecoveryRequestRow) {
			r.NewOwnerAuthority = op.NewOwnerAuthority
			r.ExpiresAt = expires
		})
	}
	_, err := s.AccountRecoveryRequests.Create(func(r *AccountRecoveryRequestRow) {
		r.AccountToRecover = op.AccountToRecover
		r.NewOwnerAuthority = op.NewOwnerAuthority
		r.ExpiresAt = expires
	})
	return err
}

func (s *State) findAccountRecoveryRequest(account string) (AccountRecoveryRequestRow, bool) {
	for _, r := range s.AccountRecoveryRequests.All() {
		if r.AccountToRecover == account {
			return r, true
		}
	}
	return AccountRecoveryRequestRow{}, false
}

// applyRecoverAccount completes a filed recovery: the supplied
// recent_owner_authority must match either the account's current or
// immediately-previous owner authority, the latter only within
// OwnerAuthRecoveryPeriodDays of having been superseded (spec §4.4).
func (s *State) applyRecoverAccount(now uint64, op *protocol.RecoverAccountOperation) error {
	account, ok := s.AccountByName(op.AccountToRecover)
	if !ok {
		return errUnknownEntity("account", op.AccountToRecover)
	}
	request, ok := s.findAccountRecoveryRequest(op.AccountToRecover)
	if !ok {
		return errUnknownEntity("account_recovery_request", op.AccountToRecover)
	}
	if !authorityEqual(request.NewOwnerAuthority, op.NewOwnerAuthority) {
		return errInvariant("recover_account: new_owner_authority does not match the filed request")
	}

	windowSeconds := uint64(s.Chain.OwnerAuthRecoveryPeriodDays) * 24 * 3600
	recentMatches := authorityEqual(account.Owner, op.RecentOwnerAuthority)
	if !recentMatches && authorityEqual(account.PreviousOwner, op.RecentOwnerAuthority) {
		recentMatches = now <= account.LastOwnerUpdate+windowSeconds
	}
	if !recentMatches {
		return errInvariant("recover_account: recent_owner_authority was not active within the recovery window")
	}

	limitSeconds := uint64(s.Chain.OwnerUpdateLimitMinutes) * 60
	if account.LastOwnerUpdate != 0 && now < account.LastOwnerUpdate+limitSeconds {
		return errInvariant("recover_account: owner authority change rate-limited")
	}

	if err := s.Accounts.Modify(account.ID, func(a *AccountRow) {
		a.PreviousOwner = a.Owner
		a.PreviousOwnerUpdate = a.LastOwnerUpdate
		a.Owner = op.NewOwnerAuthority
		a.LastOwnerUpdate = now
		a.LastAccountUpdate = now
	}); err != nil {
		return err
	}
	return s.AccountRecoveryRequests.Remove(request.ID)
}

func authorityEqual(a, b primitives.Authority) bool {
	if a.WeightThreshold != b.WeightThreshold || len(a.Keys) != len(b.Keys) || len(a.Accounts) != len(b.Accounts) {
		return false
	}
	for i := range a.Keys {
		if a.Keys[i] != b.Keys[i] {
			return false
		}
	}
	for i := range a.Accounts {
		if a.Accounts[i] != b.Accounts[i] {
			return false
		}
	}
	return true
}

// applyChangeRecoveryAccount designates a new recovery account, effective
// only after OwnerAuthRecoveryPeriodDays so a compromised owner can't
// immediately redirect recovery to an attacker-controlled account.
func (s *State) applyChangeRecoveryAccount(now uint64, op *protocol.ChangeRecoveryAccountOperation) error {
	if _, ok := s.AccountByName(op.AccountToRecover); !ok {
		return errUnknownEntity("account", op.AccountToRecover)
	}
	if _, ok := s.AccountByName(op.NewRecoveryAccount); !ok {
		return errUnknownEntity("account", op.NewRecoveryAccount)
	}
	effective := now + uint64(s.Chain.OwnerAuthRecoveryPeriodDays)*24*3600

	for _, r := range s.ChangeRecoveryRequests.All() {
		if r.AccountToRecover == op.AccountToRecover {
			return s.ChangeRecoveryRequests.Modify(r.ID, func(row *ChangeRecoveryAccountRequestRow) {
				row.RecoveryAccount = op.NewRecoveryAccount
				row.EffectiveOn = effective
			})
		}
	}
	_, err := s.ChangeRecoveryRequests.Create(func(r *ChangeRecoveryAccountRequestRow) {
		r.AccountToRecover = op.AccountToRecover
		r.RecoveryAccount = op.NewRecoveryAccount
		r.EffectiveOn = effective
	})
	return err
}
