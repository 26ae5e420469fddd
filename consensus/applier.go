package consensus

import (
	"fmt"

	"harmonichain/authority"
	cerrors "harmonichain/core/errors"
	cryptoops "harmonichain/crypto"
	"harmonichain/evaluator"
	"harmonichain/primitives"
	"harmonichain/protocol"
)

// ApplyBlock drives spec §4.5's six-step ApplyBlock algorithm: header
// validation, an undo session wrapping every transaction and maintenance
// mutation, and a final session merge (a permanent commit, since the
// caller never keeps a session open across blocks — see fork.go for how
// reorgs recover a prior block's state instead).
func ApplyBlock(s *evaluator.State, chainID protocol.ChainID, schedule Schedule, block *protocol.Block) error {
	globals := s.Globals()

	if err := validateHeader(s, chainID, schedule, globals, block); err != nil {
		return err
	}

	session := s.DB.StartUndoSession()
	if err := applyBlockBody(s, chainID, block); err != nil {
		session.Undo()
		return err
	}
	session.Merge()
	return nil
}

// validateHeader checks spec §4.5 step 1: the signer is the scheduled
// witness, the block links to the current head, its timestamp respects the
// block interval, and its merkle root commits to its own transaction list.
func validateHeader(s *evaluator.State, chainID protocol.ChainID, schedule Schedule, globals evaluator.GlobalPropertyRow, block *protocol.Block) error {
	header := block.Header
	expected := schedule.WitnessForHeight(header.Height)
	if expected == "" || header.Witness != expected {
		return fmt.Errorf("consensus: block %d: witness %q is not scheduled (want %q): %w", header.Height, header.Witness, expected, cerrors.ErrUnlinkableBlock)
	}
	if header.Previous != protocol.BlockID(globals.HeadBlockID) {
		return fmt.Errorf("consensus: block %d: previous %x does not extend head %x: %w", header.Height, header.Previous, globals.HeadBlockID, cerrors.ErrUnlinkableBlock)
	}
	minInterval := uint64(s.Chain.BlockIntervalSeconds)
	if header.Timestamp < globals.Time+minInterval {
		return fmt.Errorf("consensus: block %d: timestamp %d is before the next scheduled slot %d: %w", header.Height, header.Timestamp, globals.Time+minInterval, cerrors.ErrUnlinkableBlock)
	}
	root, err := protocol.MerkleRoot(chainID, block.Transactions)
	if err != nil {
		return fmt.Errorf("consensus: block %d: compute merkle root: %w", header.Height, err)
	}
	if root != header.TxMerkleRoot {
		return fmt.Errorf("consensus: block %d: merkle root mismatch: %w", header.Height, cerrors.ErrUnlinkableBlock)
	}
	signer, err := header.RecoverSigner()
	if err != nil {
		return fmt.Errorf("consensus: block %d: recover witness signature: %w", header.Height, err)
	}
	witnessRow, ok := s.WitnessByOwner(header.Witness)
	if !ok {
		return fmt.Errorf("consensus: block %d: scheduled witness %q is not registered: %w", header.Height, header.Witness, cerrors.ErrUnknownEntity)
	}
	signerCompressed := (&cryptoops.PublicKey{PublicKey: signer}).Compressed()
	if signerCompressed != witnessRow.SigningKey {
		return fmt.Errorf("consensus: block %d: signature does not match %q's signing key: %w", header.Height, header.Witness, cerrors.ErrMissingActive)
	}
	return nil
}

// applyBlockBody runs steps 2-5: every transaction, then scheduled
// maintenance, then the dynamic-globals update. Step 6 (merge, fork
// history) is the caller's responsibility so it can also cover the
// validateHeader failure path uniformly.
func applyBlockBody(s *evaluator.State, chainID protocol.ChainID, block *protocol.Block) error {
	header := block.Header
	for _, tx := range block.Transactions {
		if err := applyTransaction(s, chainID, header.Timestamp, tx); err != nil {
			return err
		}
	}
	if err := runMaintenance(s, header); err != nil {
		return err
	}
	return s.ModifyGlobals(func(g *evaluator.GlobalPropertyRow) {
		g.HeadBlockNumber = header.Height
		g.HeadBlockID = header.ID()
		g.Time = header.Timestamp
		g.CurrentWitness = header.Witness
	})
}

// applyTransaction runs spec §4.4's per-operation pipeline: validate, then
// check_authority, then apply, aborting the whole transaction (and so the
// whole block, since the caller undoes the enclosing session) on the first
// failure.
func applyTransaction(s *evaluator.State, chainID protocol.ChainID, now uint64, tx *protocol.Transaction) error {
	if tx.Expiration < now {
		return fmt.Errorf("consensus: transaction expired at %d (block time %d): %w", tx.Expiration, now, cerrors.ErrValidate)
	}
	if err := tx.ValidateEach(); err != nil {
		return err
	}

	pubKeys, err := tx.RecoverKeys(chainID)
	if err != nil {
		return fmt.Errorf("consensus: recover transaction signers: %w", err)
	}
	compressed := make([]primitives.PublicKey, len(pubKeys))
	for i, pk := range pubKeys {
		compressed[i] = (&cryptoops.PublicKey{PublicKey: pk}).Compressed()
	}
	keys, err := authority.NewKeySetChecked(compressed)
	if err != nil {
		return err
	}

	for _, op := range tx.Operations {
		if err := s.CheckAuth(op, keys); err != nil {
			return err
		}
	}
	for _, op := range tx.Operations {
		if err := s.Apply(now, op); err != nil {
			return err
		}
	}
	return nil
}

// runMaintenance performs spec §4.5 step 4: every block it settles matured
// content cashouts and convert requests, runs expiry bookkeeping, processes
// vesting withdrawals and pays the witness reward; on each BlocksPerHour
// boundary it also pays liquidity rewards and rotates the feed window.
func runMaintenance(s *evaluator.State, header *protocol.BlockHeader) error {
	now := header.Timestamp

	if err := s.SettleContentCashouts(now); err != nil {
		return err
	}
	if err := s.SettleMaturedConvertRequests(now); err != nil {
		return err
	}
	if err := s.ExpireLimitOrders(now); err != nil {
		return err
	}
	if err := s.ExpireAccountRecoveryRequests(now); err != nil {
		return err
	}
	if err := s.ApplyMaturedRecoveryAccountChanges(now); err != nil {
		return err
	}
	if err := s.ExpireProposals(now); err != nil {
		return err
	}
	if err := s.ProcessVestingWithdrawals(now); err != nil {
		return err
	}
	if err := s.PayWitnessReward(now, header.Witness); err != nil {
		return err
	}

	if header.Height%uint64(s.Chain.BlocksPerHour) == 0 {
		if err := s.PayLiquidityRewards(); err != nil {
			return err
		}
		if err := s.RotateFeedWindow(now); err != nil {
			return err
		}
	}
	return nil
}
