package consensus

import (
	"testing"

	"harmonichain/config"
	"harmonichain/core/events"
	"harmonichain/crypto"
	"harmonichain/evaluator"
	"harmonichain/primitives"
	"harmonichain/protocol"
)

// newTestChain builds a one-witness chain with a single funded account,
// ready to apply a block at height 1.
func newTestChain(t *testing.T) (*Chain, *crypto.PrivateKey) {
	t.Helper()
	witnessKey, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}

	s := evaluator.NewState(config.DefaultChain, events.NoopEmitter{})
	nativeID, err := s.Assets.Create(func(a *evaluator.AssetRow) {
		a.Symbol = evaluator.NativeSymbol
		a.Precision = 6
		a.MaxSupply = 1_000_000_000_000
	})
	if err != nil {
		t.Fatalf("create native asset: %v", err)
	}
	if _, err := s.Assets.Create(func(a *evaluator.AssetRow) {
		a.Symbol = evaluator.VestingSymbol
		a.Precision = 6
		a.MaxSupply = 1_000_000_000_000
	}); err != nil {
		t.Fatalf("create vesting asset: %v", err)
	}
	if _, err := s.Accounts.Create(func(a *evaluator.AccountRow) {
		a.Name = "witness1"
		a.Balance = primitives.NewAmount(nativeID, 0)
	}); err != nil {
		t.Fatalf("create witness account: %v", err)
	}
	if _, err := s.Witnesses.Create(func(w *evaluator.WitnessRow) {
		w.Owner = "witness1"
		w.SigningKey = witnessKey.PubKey().Compressed()
	}); err != nil {
		t.Fatalf("create witness row: %v", err)
	}
	initialPrice, _ := primitives.NewPrice(primitives.NewAmount(nativeID, 1), primitives.NewAmount(nativeID, 1))
	if _, err := s.GlobalProperties.Create(func(g *evaluator.GlobalPropertyRow) {
		g.Time = 1700000000
		g.VirtualSupply = 1_000_000_000_000
		g.VestingSharePrice = initialPrice
		g.MaximumBlockSize = 2 << 20
	}); err != nil {
		t.Fatalf("create globals: %v", err)
	}

	schedule := Schedule{Witnesses: []string{"witness1"}}
	return NewChain(s, protocol.TestnetChainID, schedule), witnessKey
}

func signedHeader(t *testing.T, c *Chain, key *crypto.PrivateKey, height, timestamp uint64, witness string) *protocol.BlockHeader {
	t.Helper()
	root, err := protocol.MerkleRoot(c.ChainID, nil)
	if err != nil {
		t.Fatalf("MerkleRoot: %v", err)
	}
	globals := c.State.Globals()
	header := &protocol.BlockHeader{
		Height:       height,
		Previous:     protocol.BlockID(globals.HeadBlockID),
		Timestamp:    timestamp,
		Witness:      witness,
		TxMerkleRoot: root,
	}
	if err := header.Sign(key.PrivateKey); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return header
}

// TestApplyBlockAdvancesHead covers the happy path of spec §4.5's
// ApplyBlock: an empty, correctly-signed, correctly-linked block advances
// HeadBlockNumber and pays the scheduled witness a reward.
func TestApplyBlockAdvancesHead(t *testing.T) {
	c, key := newTestChain(t)
	before, _ := c.State.AccountByName("witness1")

	header := signedHeader(t, c, key, 1, 1700000003, "witness1")
	if err := c.ApplyBlock(&protocol.Block{Header: header}); err != nil {
		t.Fatalf("ApplyBlock: %v", err)
	}

	globals := c.State.Globals()
	if globals.HeadBlockNumber != 1 {
		t.Fatalf("HeadBlockNumber = %d, want 1", globals.HeadBlockNumber)
	}
	if globals.HeadBlockID != header.ID() {
		t.Fatalf("HeadBlockID does not match applied header")
	}

	after, _ := c.State.AccountByName("witness1")
	if after.Balance.Value <= before.Balance.Value {
		t.Fatalf("expected witness reward to increase balance: before=%d after=%d", before.Balance.Value, after.Balance.Value)
	}
}

// TestApplyBlockRejectsWrongWitness covers spec §4.5 step 1: a block signed
// by an account other than the one scheduled for that height is rejected
// and never mutates state.
func TestApplyBlockRejectsWrongWitness(t *testing.T) {
	c, key := newTestChain(t)
	header := signedHeader(t, c, key, 1, 1700000003, "nobody")

	if err := c.ApplyBlock(&protocol.Block{Header: header}); err == nil {
		t.Fatal("expected unscheduled witness to be rejected")
	}
	if globals := c.State.Globals(); globals.HeadBlockNumber != 0 {
		t.Fatalf("expected HeadBlockNumber to remain 0 after rejection, got %d", globals.HeadBlockNumber)
	}
}

// TestApplyBlockRejectsStaleTimestamp covers the block-interval check: a
// timestamp before the next scheduled slot is rejected.
func TestApplyBlockRejectsStaleTimestamp(t *testing.T) {
	c, key := newTestChain(t)
	header := signedHeader(t, c, key, 1, 1700000001, "witness1")

	if err := c.ApplyBlock(&protocol.Block{Header: header}); err == nil {
		t.Fatal("expected stale timestamp to be rejected")
	}
}

// TestApplyBlockRejectsUnlinkedPrevious covers the head-linkage check.
func TestApplyBlockRejectsUnlinkedPrevious(t *testing.T) {
	c, key := newTestChain(t)
	root, err := protocol.MerkleRoot(c.ChainID, nil)
	if err != nil {
		t.Fatalf("MerkleRoot: %v", err)
	}
	header := &protocol.BlockHeader{
		Height:       1,
		Previous:     protocol.BlockID{0xFF},
		Timestamp:    1700000003,
		Witness:      "witness1",
		TxMerkleRoot: root,
	}
	if err := header.Sign(key.PrivateKey); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := c.ApplyBlock(&protocol.Block{Header: header}); err == nil {
		t.Fatal("expected unlinked previous id to be rejected")
	}
}
