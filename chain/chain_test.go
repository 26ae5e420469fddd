package chain

import (
	"encoding/hex"
	"testing"

	"harmonichain/config"
	"harmonichain/core/events"
	"harmonichain/crypto"
	"harmonichain/evaluator"
	"harmonichain/primitives"
	"harmonichain/protocol"
)

// TestSubmitProduceApplyEndToEnd covers the full path spec §4.4/§4.5
// describe: a signed transfer is submitted to the pool, drained into a
// witness-signed block, and applied against the chain's state, moving the
// balance and advancing HeadBlockNumber.
func TestSubmitProduceApplyEndToEnd(t *testing.T) {
	aliceKeyRaw, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	witnessKeyRaw, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}

	aliceCompressed := aliceKeyRaw.PubKey().Compressed()
	aliceHex := hex.EncodeToString(aliceCompressed[:])
	witnessCompressed := witnessKeyRaw.PubKey().Compressed()
	witnessHex := hex.EncodeToString(witnessCompressed[:])

	path := writeManifest(t, aliceHex, witnessHex)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	// The manifest's witness account must differ from alice's so alice
	// isn't double-used as both sender and sole witness signer source;
	// give the witness its own account entry too.
	manifest.Accounts = append(manifest.Accounts, GenesisAccount{
		Name:      "witness1",
		OwnerKey:  witnessHex,
		ActiveKey: witnessHex,
		BasicKey:  witnessHex,
		MemoKey:   witnessHex,
		Balance:   0,
	})
	manifest.Witnesses[0].Owner = "witness1"

	state, err := NewGenesisState(config.DefaultChain, events.NoopEmitter{}, manifest)
	if err != nil {
		t.Fatalf("NewGenesisState: %v", err)
	}
	schedule := BuildSchedule(state, config.DefaultChain)

	chainID := protocol.TestnetChainID
	c, err := New(state, schedule, nil, Options{
		ChainID:       chainID,
		MempoolLimit:  100,
		SubmitRate:    1000,
		SubmitBurst:   100,
		WitnessKeyHex: witnessHex,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tx := &protocol.Transaction{
		Expiration: 1700000100,
		Operations: []protocol.Operation{
			&protocol.TransferOperation{
				From:   "alice",
				To:     "witness1",
				Amount: primitives.NewAmount(mustAssetID(t, state), 1000),
			},
		},
	}

	if err := tx.Sign(chainID, aliceKeyRaw.PrivateKey); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := c.SubmitTransaction(tx, 1700000000); err != nil {
		t.Fatalf("SubmitTransaction: %v", err)
	}
	if got := c.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() = %d, want 1", got)
	}

	block, err := c.ProduceBlock(1, 1700000003, "witness1", 10)
	if err != nil {
		t.Fatalf("ProduceBlock: %v", err)
	}
	if len(block.Transactions) != 1 {
		t.Fatalf("expected 1 transaction in produced block, got %d", len(block.Transactions))
	}
	if got := c.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() after produce = %d, want 0", got)
	}

	alice, ok := state.AccountByName("alice")
	if !ok {
		t.Fatal("expected alice to still exist")
	}
	if alice.Balance.Value != 1000000-1000 {
		t.Fatalf("unexpected alice balance after transfer: %d", alice.Balance.Value)
	}
	witnessAcct, ok := state.AccountByName("witness1")
	if !ok {
		t.Fatal("expected witness1 to exist")
	}
	if witnessAcct.Balance.Value < 1000 {
		t.Fatalf("expected witness1 to have received the transfer, got balance %d", witnessAcct.Balance.Value)
	}

	globals := state.Globals()
	if globals.HeadBlockNumber != 1 {
		t.Fatalf("unexpected head block number: %d", globals.HeadBlockNumber)
	}
}

// TestProduceBlockRequeuesOnApplyFailure ensures a transaction that fails
// block application (here: insufficient funds) is returned to the pool
// rather than silently dropped.
func TestProduceBlockRequeuesOnApplyFailure(t *testing.T) {
	aliceKeyRaw, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	witnessKeyRaw, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	aliceCompressed := aliceKeyRaw.PubKey().Compressed()
	aliceHex := hex.EncodeToString(aliceCompressed[:])
	witnessCompressed := witnessKeyRaw.PubKey().Compressed()
	witnessHex := hex.EncodeToString(witnessCompressed[:])

	path := writeManifest(t, aliceHex, witnessHex)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	manifest.Accounts = append(manifest.Accounts, GenesisAccount{
		Name:      "witness1",
		OwnerKey:  witnessHex,
		ActiveKey: witnessHex,
		BasicKey:  witnessHex,
		MemoKey:   witnessHex,
	})
	manifest.Witnesses[0].Owner = "witness1"

	state, err := NewGenesisState(config.DefaultChain, events.NoopEmitter{}, manifest)
	if err != nil {
		t.Fatalf("NewGenesisState: %v", err)
	}
	schedule := BuildSchedule(state, config.DefaultChain)
	chainID := protocol.TestnetChainID
	c, err := New(state, schedule, nil, Options{
		ChainID:       chainID,
		MempoolLimit:  100,
		SubmitRate:    1000,
		SubmitBurst:   100,
		WitnessKeyHex: witnessHex,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tx := &protocol.Transaction{
		Expiration: 1700000100,
		Operations: []protocol.Operation{
			&protocol.TransferOperation{
				From:   "alice",
				To:     "witness1",
				Amount: primitives.NewAmount(mustAssetID(t, state), 999999999),
			},
		},
	}
	if err := tx.Sign(chainID, aliceKeyRaw.PrivateKey); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := c.SubmitTransaction(tx, 1700000000); err != nil {
		t.Fatalf("SubmitTransaction: %v", err)
	}

	if _, err := c.ProduceBlock(1, 1700000003, "witness1", 10); err == nil {
		t.Fatal("expected ProduceBlock to fail on insufficient funds")
	}
	if got := c.PendingCount(); got != 1 {
		t.Fatalf("expected the failed transaction to be requeued, PendingCount() = %d", got)
	}
}

func mustAssetID(t *testing.T, s *evaluator.State) primitives.ObjectID {
	t.Helper()
	native, ok := s.AssetBySymbol(evaluator.NativeSymbol)
	if !ok {
		t.Fatal("expected native asset to exist")
	}
	return native.ID
}
