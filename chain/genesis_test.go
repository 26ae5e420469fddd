package chain

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"harmonichain/config"
	"harmonichain/core/events"
	"harmonichain/crypto"
	"harmonichain/evaluator"
)

func genKeyHex(t *testing.T) string {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	compressed := key.PubKey().Compressed()
	return hex.EncodeToString(compressed[:])
}

func writeManifest(t *testing.T, aliceKey, witnessKey string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.yaml")

	contents := `
genesis_time: 1700000000
native_asset:
  symbol: HARMONY
  issuer: alice
  precision: 6
  max_supply: 1000000000000
vesting_asset:
  symbol: VESTS
  issuer: alice
  precision: 6
  max_supply: 1000000000000
accounts:
  - name: alice
    owner_key: ` + aliceKey + `
    active_key: ` + aliceKey + `
    basic_key: ` + aliceKey + `
    memo_key: ` + aliceKey + `
    balance: 1000000
    vesting_shares: 500000
witnesses:
  - owner: alice
    url: ipfs://witness
    signing_key: ` + witnessKey + `
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifestAndApply(t *testing.T) {
	key := genKeyHex(t)
	path := writeManifest(t, key, key)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	state, err := NewGenesisState(config.DefaultChain, events.NoopEmitter{}, manifest)
	if err != nil {
		t.Fatalf("NewGenesisState: %v", err)
	}

	alice, ok := state.AccountByName("alice")
	if !ok {
		t.Fatal("expected genesis account alice to exist")
	}
	if alice.Balance.Value != 1000000 {
		t.Fatalf("unexpected balance: %d", alice.Balance.Value)
	}
	if alice.VestingShares.Value != 500000 {
		t.Fatalf("unexpected vesting shares: %d", alice.VestingShares.Value)
	}

	native, ok := state.AssetBySymbol(evaluator.NativeSymbol)
	if !ok {
		t.Fatal("expected native asset to exist")
	}
	if native.CurrentSupply != 1000000 {
		t.Fatalf("unexpected native supply: %d", native.CurrentSupply)
	}

	vesting, ok := state.AssetBySymbol(evaluator.VestingSymbol)
	if !ok {
		t.Fatal("expected vesting asset to exist")
	}
	if vesting.CurrentSupply != 500000 {
		t.Fatalf("unexpected vesting supply: %d", vesting.CurrentSupply)
	}

	if _, ok := state.WitnessByOwner("alice"); !ok {
		t.Fatal("expected genesis witness to exist")
	}

	globals := state.Globals()
	if globals.Time != 1700000000 {
		t.Fatalf("unexpected genesis time: %d", globals.Time)
	}
	if globals.VirtualSupply != 1000000 {
		t.Fatalf("unexpected virtual supply: %d", globals.VirtualSupply)
	}

	schedule := BuildSchedule(state, config.DefaultChain)
	if schedule.WitnessForHeight(0) != "alice" {
		t.Fatalf("unexpected scheduled witness: %q", schedule.WitnessForHeight(0))
	}
}

func TestApplyRejectsWrongNativeSymbol(t *testing.T) {
	key := genKeyHex(t)
	path := writeManifest(t, key, key)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	manifest.NativeAsset.Symbol = "WRONG"

	if _, err := NewGenesisState(config.DefaultChain, events.NoopEmitter{}, manifest); err == nil {
		t.Fatal("expected error for mismatched native asset symbol")
	}
}

func TestApplyRejectsDuplicateAccount(t *testing.T) {
	key := genKeyHex(t)
	path := writeManifest(t, key, key)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	manifest.Accounts = append(manifest.Accounts, manifest.Accounts[0])

	if _, err := NewGenesisState(config.DefaultChain, events.NoopEmitter{}, manifest); err == nil {
		t.Fatal("expected error for duplicate genesis account")
	}
}
