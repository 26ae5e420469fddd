package config

// Chain bundles the compile-time DPoS parameters spec §4.5/§9 calls for:
// block interval, witness-round shape, inflation targets, and the
// recovery/withdrawal windows evaluators consult. All fields are scalar so
// a zero Chain can be detected with == against DefaultChain.
type Chain struct {
	BlockIntervalSeconds          uint32 `toml:"BlockIntervalSeconds"`
	WitnessesPerRound             uint32 `toml:"WitnessesPerRound"`
	IrreversibleConfirmationPct   uint32 `toml:"IrreversibleConfirmationPct"`
	BlocksPerHour                 uint32 `toml:"BlocksPerHour"`
	CashoutWindowSeconds          uint32 `toml:"CashoutWindowSeconds"`
	MaxVoteChanges                uint32 `toml:"MaxVoteChanges"`
	FeedWindowSeconds             uint32 `toml:"FeedWindowSeconds"`
	ConvertDelaySeconds           uint32 `toml:"ConvertDelaySeconds"`
	OwnerAuthRecoveryPeriodDays   uint32 `toml:"OwnerAuthRecoveryPeriodDays"`
	OwnerUpdateLimitMinutes       uint32 `toml:"OwnerUpdateLimitMinutes"`
	AccountRecoveryExpirationDays uint32 `toml:"AccountRecoveryExpirationDays"`
	VestingWithdrawWeeks          uint32 `toml:"VestingWithdrawWeeks"`
	MaxUndoHistory                uint32 `toml:"MaxUndoHistory"`
	MaxWitnessVotes               uint32 `toml:"MaxWitnessVotes"`
	MaxWithdrawRoutes             uint32 `toml:"MaxWithdrawRoutes"`
	MinAccountCreationFee         int64  `toml:"MinAccountCreationFee"`
	WitnessAprBps                 uint32 `toml:"WitnessAprBps"`
	VestingAprBps                 uint32 `toml:"VestingAprBps"`
	ContentAprBps                 uint32 `toml:"ContentAprBps"`

	// PlayingRewardPerSecond is the fixed-precision native-asset reward
	// minted per second of reported playback, the pool streaming_platform_
	// report splits between the platform, composition payees, and master
	// payees (spec §4.4).
	PlayingRewardPerSecond int64 `toml:"PlayingRewardPerSecond"`

	// LiquidityRewardPerHour is the fixed native-asset pool paid out every
	// BlocksPerHour boundary, split across accounts proportional to their
	// accrued order-matching volume (spec §4.5).
	LiquidityRewardPerHour int64 `toml:"LiquidityRewardPerHour"`

	// CurationRewardBp is a content reward pool's curator-side carve-out, in
	// basis points; the remainder goes to the content's declared payees
	// (spec §4.5's cashout-window settlement, §9 design decision since the
	// split ratio itself is unspecified).
	CurationRewardBp uint32 `toml:"CurationRewardBp"`
}

// DefaultChain is the canonical parameter set spec §4.5/§8 bases its
// reward-calibration scenarios on (95/143/713 bps ~= 0.95%/1.425%/7.125%
// annual rates for witness/vesting/content rewards).
var DefaultChain = Chain{
	BlockIntervalSeconds:          3,
	WitnessesPerRound:             21,
	IrreversibleConfirmationPct:   51,
	BlocksPerHour:                 1200,
	CashoutWindowSeconds:          7 * 24 * 3600,
	MaxVoteChanges:                5,
	FeedWindowSeconds:             7 * 24 * 3600,
	ConvertDelaySeconds:           3*24*3600 + 12*3600,
	OwnerAuthRecoveryPeriodDays:   30,
	OwnerUpdateLimitMinutes:       60,
	AccountRecoveryExpirationDays: 30,
	VestingWithdrawWeeks:          13,
	MaxUndoHistory:                10000,
	MaxWitnessVotes:               30,
	MaxWithdrawRoutes:             10,
	MinAccountCreationFee:         1_000_000,
	WitnessAprBps:                 95,
	VestingAprBps:                 143,
	ContentAprBps:                 713,
	PlayingRewardPerSecond:        1000,
	LiquidityRewardPerHour:        500_000,
	CurationRewardBp:              2500,
}
