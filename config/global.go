package config

// BlocksPerYear is derived from the fixed block interval, the denominator
// every APR-to-per-block reward conversion uses (spec §8's reward
// calibration scenarios).
func (c Chain) BlocksPerYear() uint64 {
	secondsPerYear := uint64(365 * 24 * 3600)
	return secondsPerYear / uint64(c.BlockIntervalSeconds)
}

// WitnessRewardPerBlock converts the configured witness APR (in basis
// points) applied to virtualSupply into a per-block fixed-precision amount,
// per spec §4.5's inflation model: "per-block witness reward ... computed
// from a fixed-point APR multiplier applied to virtual supply".
func (c Chain) WitnessRewardPerBlock(virtualSupply int64) int64 {
	return aprPerBlock(virtualSupply, c.WitnessAprBps, c.BlocksPerYear())
}

// VestingRewardPerBlock is the analogous per-block vesting-fund reward.
func (c Chain) VestingRewardPerBlock(virtualSupply int64) int64 {
	return aprPerBlock(virtualSupply, c.VestingAprBps, c.BlocksPerYear())
}

// ContentRewardPerDay is the cashout-window content reward pool, computed
// per day rather than per block since content rewards settle on the
// cashout-window boundary (spec §4.5).
func (c Chain) ContentRewardPerDay(virtualSupply int64) int64 {
	daysPerYear := int64(365)
	return aprPerBlock(virtualSupply, c.ContentAprBps, uint64(daysPerYear))
}

// aprPerBlock applies an APR expressed in basis points (1/10000) to
// virtualSupply and divides by the number of reward events per year,
// rounding toward zero. All three spec §8 reward-calibration scenarios
// (witness, vesting, content) reduce to this one computation.
func aprPerBlock(virtualSupply int64, aprBps uint32, eventsPerYear uint64) int64 {
	if eventsPerYear == 0 {
		return 0
	}
	annual := virtualSupply / 10000 * int64(aprBps)
	return annual / int64(eventsPerYear)
}
