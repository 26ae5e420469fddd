package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"harmonichain/crypto"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
	if cfg.Chain != DefaultChain {
		t.Fatalf("expected default chain parameters, got %+v", cfg.Chain)
	}
	if cfg.DataDir != "./harmonichain-data" {
		t.Fatalf("unexpected default data dir %q", cfg.DataDir)
	}
	if cfg.WitnessKey == "" {
		t.Fatal("expected a generated witness key")
	}
	raw, err := hex.DecodeString(cfg.WitnessKey)
	if err != nil {
		t.Fatalf("witness key is not hex: %v", err)
	}
	if _, err := crypto.PrivateKeyFromBytes(raw); err != nil {
		t.Fatalf("witness key does not parse as a private key: %v", err)
	}
}

func TestLoadPreservesExplicitWitnessKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	want := hex.EncodeToString(key.Bytes())

	seed := &Config{
		ListenAddress: ":6001",
		RPCAddress:    ":8080",
		DataDir:       dir,
		WitnessKey:    want,
		Chain:         DefaultChain,
	}
	writeConfigForTest(t, path, seed)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WitnessKey != want {
		t.Fatalf("expected witness key to be preserved, got %q want %q", cfg.WitnessKey, want)
	}
}

func TestLoadDefaultsZeroChain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	seed := &Config{
		ListenAddress: ":6001",
		RPCAddress:    ":8080",
		DataDir:       dir,
		WitnessKey:    "",
	}
	writeConfigForTest(t, path, seed)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chain != DefaultChain {
		t.Fatalf("expected a zero Chain section to be filled with defaults, got %+v", cfg.Chain)
	}
}

func writeConfigForTest(t *testing.T, path string, cfg *Config) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create config file: %v", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		t.Fatalf("encode config file: %v", err)
	}
}

func TestValidateConfigRejectsZeroBlockInterval(t *testing.T) {
	c := DefaultChain
	c.BlockIntervalSeconds = 0
	if err := ValidateConfig(c); err == nil {
		t.Fatal("expected an error for zero block interval")
	}
}

func TestValidateConfigRejectsZeroWitnessesPerRound(t *testing.T) {
	c := DefaultChain
	c.WitnessesPerRound = 0
	if err := ValidateConfig(c); err == nil {
		t.Fatal("expected an error for zero witnesses per round")
	}
}

func TestValidateConfigRejectsOutOfRangeIrreversiblePct(t *testing.T) {
	c := DefaultChain
	c.IrreversibleConfirmationPct = 0
	if err := ValidateConfig(c); err == nil {
		t.Fatal("expected an error for zero irreversible confirmation pct")
	}
	c.IrreversibleConfirmationPct = 101
	if err := ValidateConfig(c); err == nil {
		t.Fatal("expected an error for irreversible confirmation pct > 100")
	}
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultChain); err != nil {
		t.Fatalf("expected default chain to validate, got %v", err)
	}
}

func TestBlocksPerYear(t *testing.T) {
	c := DefaultChain
	got := c.BlocksPerYear()
	want := uint64(365 * 24 * 3600 / 3)
	if got != want {
		t.Fatalf("BlocksPerYear() = %d, want %d", got, want)
	}
}

// TestWitnessRewardPerBlock checks the reward-calibration scenario: at a
// virtual supply of 1.0475 * 18e12 and a 95bps witness APR, the per-block
// reward times blocks-per-year should land within 5% of 0.0095 * 18e12.
func TestWitnessRewardPerBlock(t *testing.T) {
	c := DefaultChain
	virtualSupply := int64(1.0475 * 18e12)

	perBlock := c.WitnessRewardPerBlock(virtualSupply)
	annual := perBlock * int64(c.BlocksPerYear())

	want := int64(0.0095 * 18e12)
	assertWithinFivePercent(t, annual, want)
}

func TestVestingRewardPerBlock(t *testing.T) {
	c := DefaultChain
	virtualSupply := int64(1.0475 * 18e12)

	perBlock := c.VestingRewardPerBlock(virtualSupply)
	annual := perBlock * int64(c.BlocksPerYear())

	want := int64(0.0143 * 18e12)
	assertWithinFivePercent(t, annual, want)
}

func TestContentRewardPerDay(t *testing.T) {
	c := DefaultChain
	virtualSupply := int64(1.0475 * 18e12)

	perDay := c.ContentRewardPerDay(virtualSupply)
	annual := perDay * 365

	want := int64(0.0713 * 18e12)
	assertWithinFivePercent(t, annual, want)
}

func assertWithinFivePercent(t *testing.T, got, want int64) {
	t.Helper()
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	bound := want / 20
	if bound < 0 {
		bound = -bound
	}
	if diff > bound {
		t.Fatalf("got %d, want within 5%% of %d (diff %d, bound %d)", got, want, diff, bound)
	}
}
