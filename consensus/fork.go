package consensus

import (
	"fmt"

	cerrors "harmonichain/core/errors"
	"harmonichain/evaluator"
	"harmonichain/protocol"
)

// historyEntry is one committed block's full state snapshot. Since
// store.Session.Merge only ever folds the innermost session into its
// parent (or commits permanently if there is no parent), a block-spanning
// undo session cannot be popped out of order to rewind ten thousand blocks
// deep; instead Chain retains a bounded window of post-block snapshots and
// a fork switch restores one by value and replays forward (spec §4.5:
// "pop sessions until common ancestor, re-apply side-branch blocks", §9
// design note).
type historyEntry struct {
	Height   uint64
	BlockID  protocol.BlockID
	Snapshot []byte
}

// Chain drives block application and fork switching on top of a single
// evaluator.State, bounding how far a reorg can rewind by
// config.Chain.MaxUndoHistory (spec §4.5). It is not safe for concurrent
// use (spec §5: "a single-threaded, synchronous mutable resource").
type Chain struct {
	State    *evaluator.State
	ChainID  protocol.ChainID
	Schedule Schedule

	history []historyEntry
}

// NewChain constructs a Chain ready to apply blocks on top of state's
// current contents (genesis must already be loaded).
func NewChain(state *evaluator.State, chainID protocol.ChainID, schedule Schedule) *Chain {
	return &Chain{State: state, ChainID: chainID, Schedule: schedule}
}

// ApplyBlock applies block atop the chain's current head via the package's
// ApplyBlock, then records a snapshot for later fork switching, trimming
// the oldest retained entry once MaxUndoHistory is exceeded.
func (c *Chain) ApplyBlock(block *protocol.Block) error {
	if err := ApplyBlock(c.State, c.ChainID, c.Schedule, block); err != nil {
		return err
	}
	snap, err := c.State.DB.Snapshot()
	if err != nil {
		return fmt.Errorf("consensus: snapshot after block %d: %w", block.Header.Height, err)
	}
	c.history = append(c.history, historyEntry{
		Height:   block.Header.Height,
		BlockID:  block.Header.ID(),
		Snapshot: snap,
	})
	if max := int(c.State.Chain.MaxUndoHistory); max > 0 && len(c.history) > max {
		c.history = c.history[len(c.history)-max:]
	}
	return nil
}

// SwitchFork rewinds to the common ancestor implied by newBranch's first
// block (its Previous id) and replays newBranch on top of it. A replay
// failure restores the original head exactly, leaving the chain as if
// SwitchFork had never been called (spec §4.5: "abort-and-restore on
// failure").
func (c *Chain) SwitchFork(newBranch []*protocol.Block) error {
	if len(newBranch) == 0 {
		return nil
	}
	ancestor := newBranch[0].Header.Previous

	idx := -1
	for i, h := range c.history {
		if h.BlockID == ancestor {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("consensus: fork switch: common ancestor %x is not within the retained history window: %w", ancestor, cerrors.ErrPopEmptyChain)
	}

	originalSnapshot, err := c.State.DB.Snapshot()
	if err != nil {
		return fmt.Errorf("consensus: fork switch: snapshot current head: %w", err)
	}
	originalHistory := append([]historyEntry(nil), c.history...)

	if err := c.State.DB.LoadSnapshot(c.history[idx].Snapshot); err != nil {
		return fmt.Errorf("consensus: fork switch: restore common ancestor snapshot: %w", err)
	}
	c.history = append([]historyEntry(nil), c.history[:idx+1]...)

	for _, block := range newBranch {
		if err := c.ApplyBlock(block); err != nil {
			if restoreErr := c.State.DB.LoadSnapshot(originalSnapshot); restoreErr != nil {
				return fmt.Errorf("consensus: fork switch: restore original head after failed replay of block %d failed too: %w (replay error: %v)", block.Header.Height, restoreErr, err)
			}
			c.history = originalHistory
			return fmt.Errorf("consensus: fork switch: replay block %d: %w", block.Header.Height, err)
		}
	}
	return nil
}
