// Package consensus drives DPoS block production and application: the
// witness schedule, the per-block state transition (spec §4.5's ApplyBlock),
// scheduled maintenance, and fork switching.
package consensus

import (
	"sort"

	"harmonichain/evaluator"
)

// Schedule is one round's deterministic witness rotation (spec §4.5: the
// top-voted witnesses, re-elected every round). The block at height h is
// produced by Witnesses[h % len(Witnesses)].
type Schedule struct {
	Witnesses []string
}

// WitnessForHeight returns the account name scheduled to produce the block
// at the given height. An empty Schedule means no witnesses are registered
// yet (only possible before genesis finishes), and always returns "".
func (s Schedule) WitnessForHeight(height uint64) string {
	if len(s.Witnesses) == 0 {
		return ""
	}
	return s.Witnesses[height%uint64(len(s.Witnesses))]
}

// BuildSchedule orders every registered witness by descending vote weight,
// breaking ties by account name for determinism, and takes the top
// perRound (spec §4.5's "WitnessesPerRound" parameter). Fewer registered
// witnesses than perRound is not an error: the schedule is simply shorter,
// so small testnets and genesis bootstrapping still produce blocks.
func BuildSchedule(witnesses []evaluator.WitnessRow, perRound uint32) Schedule {
	ordered := append([]evaluator.WitnessRow(nil), witnesses...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Votes != ordered[j].Votes {
			return ordered[i].Votes > ordered[j].Votes
		}
		return ordered[i].Owner < ordered[j].Owner
	})
	n := int(perRound)
	if n <= 0 || n > len(ordered) {
		n = len(ordered)
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = ordered[i].Owner
	}
	return Schedule{Witnesses: names}
}
