package config

import "testing"

// withinPct reports whether got is within pct percent of want.
func withinPct(got, want float64, pct float64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	bound := want * pct / 100
	if bound < 0 {
		bound = -bound
	}
	return diff <= bound
}

// TestRewardCalibration covers spec §8's reward calibration scenarios:
// calc_reward_per_block<APR> * BLOCKS_PER_YEAR should land within ±5% of
// APR * virtualSupply, for the witness (95bp), vesting (143bp), and
// content (713bp, paid per-day rather than per-block) rates.
func TestRewardCalibration(t *testing.T) {
	c := DefaultChain
	virtualSupply := int64(1.0475 * 18e12)

	witnessAnnual := float64(c.WitnessRewardPerBlock(virtualSupply)) * float64(c.BlocksPerYear())
	wantWitness := 0.0095 * float64(virtualSupply)
	if !withinPct(witnessAnnual, wantWitness, 5) {
		t.Fatalf("witness annual reward %.0f not within 5%% of %.0f", witnessAnnual, wantWitness)
	}

	vestingAnnual := float64(c.VestingRewardPerBlock(virtualSupply)) * float64(c.BlocksPerYear())
	wantVesting := 0.01425 * float64(virtualSupply)
	if !withinPct(vestingAnnual, wantVesting, 5) {
		t.Fatalf("vesting annual reward %.0f not within 5%% of %.0f", vestingAnnual, wantVesting)
	}

	contentAnnual := float64(c.ContentRewardPerDay(virtualSupply)) * 365
	wantContent := 0.07125 * float64(virtualSupply)
	if !withinPct(contentAnnual, wantContent, 5) {
		t.Fatalf("content annual reward %.0f not within 5%% of %.0f", contentAnnual, wantContent)
	}
}
