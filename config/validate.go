package config

import "fmt"

// ValidateConfig rejects a Chain whose parameters could never produce a
// consistent DPoS schedule (zero interval, a round smaller than one
// witness, an impossible confirmation threshold).
func ValidateConfig(c Chain) error {
	if c.BlockIntervalSeconds == 0 {
		return fmt.Errorf("chain: block_interval_seconds must be positive")
	}
	if c.WitnessesPerRound == 0 {
		return fmt.Errorf("chain: witnesses_per_round must be positive")
	}
	if c.IrreversibleConfirmationPct == 0 || c.IrreversibleConfirmationPct > 100 {
		return fmt.Errorf("chain: irreversible_confirmation_pct must be in (0,100]")
	}
	if c.BlocksPerHour == 0 {
		return fmt.Errorf("chain: blocks_per_hour must be positive")
	}
	if c.MaxVoteChanges == 0 {
		return fmt.Errorf("chain: max_vote_changes must be positive")
	}
	if c.VestingWithdrawWeeks == 0 {
		return fmt.Errorf("chain: vesting_withdraw_weeks must be positive")
	}
	if c.MaxUndoHistory == 0 {
		return fmt.Errorf("chain: max_undo_history must be positive")
	}
	if c.MinAccountCreationFee < 0 {
		return fmt.Errorf("chain: min_account_creation_fee must not be negative")
	}
	return nil
}
