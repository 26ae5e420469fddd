// Package chain wires the object store, evaluator state, and consensus
// applier into a runnable composition root (spec §9's "glue" layer): the
// genesis manifest loader, and the Chain type embedding transaction
// ingestion and block production on top of consensus.Chain.
package chain

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"harmonichain/config"
	"harmonichain/consensus"
	"harmonichain/core/events"
	"harmonichain/evaluator"
	"harmonichain/primitives"
)

// Manifest is the YAML-encoded genesis document: the native/vesting asset
// definitions, initial accounts, and the seed witness set a brand-new
// chain starts from (spec §3's Dynamic global properties and Account/Asset/
// Witness entities all need a first row before any block can apply).
type Manifest struct {
	GenesisTime uint64            `yaml:"genesis_time"`
	NativeAsset GenesisAssetSpec  `yaml:"native_asset"`
	VestingAsset GenesisAssetSpec `yaml:"vesting_asset"`
	Accounts    []GenesisAccount  `yaml:"accounts"`
	Witnesses   []GenesisWitness  `yaml:"witnesses"`
}

// GenesisAssetSpec seeds one of the two assets every harmonichain genesis
// requires (evaluator.NativeSymbol, evaluator.VestingSymbol).
type GenesisAssetSpec struct {
	Symbol    string `yaml:"symbol"`
	Issuer    string `yaml:"issuer"`
	Precision uint8  `yaml:"precision"`
	MaxSupply int64  `yaml:"max_supply"`
}

// GenesisAccount seeds one account row directly (not via account_create,
// since genesis has no prior signer to authorize the fee).
type GenesisAccount struct {
	Name          string `yaml:"name"`
	OwnerKey      string `yaml:"owner_key"`
	ActiveKey     string `yaml:"active_key"`
	BasicKey      string `yaml:"basic_key"`
	MemoKey       string `yaml:"memo_key"`
	Balance       int64  `yaml:"balance"`
	VestingShares int64  `yaml:"vesting_shares"`
}

// GenesisWitness seeds one witness row so a Schedule exists before the
// first block.
type GenesisWitness struct {
	Owner      string `yaml:"owner"`
	URL        string `yaml:"url"`
	SigningKey string `yaml:"signing_key"`
}

// LoadManifest reads and parses a genesis manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chain: read genesis manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("chain: parse genesis manifest: %w", err)
	}
	return &m, nil
}

// parseKey decodes a hex-encoded 33-byte compressed public key.
func parseKey(hexKey string) (primitives.PublicKey, error) {
	var out primitives.PublicKey
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return out, fmt.Errorf("chain: invalid public key %q: %w", hexKey, err)
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("chain: public key %q decodes to %d bytes, want %d", hexKey, len(raw), len(out))
	}
	copy(out[:], raw)
	return out, nil
}

// singleKeyAuthority builds a threshold-1 authority around a single public
// key, the shape every genesis account's owner/active/basic authority
// takes (spec §4.1's Authority: "weighted set of (key|account, weight)").
func singleKeyAuthority(key primitives.PublicKey) primitives.Authority {
	return primitives.Authority{
		WeightThreshold: 1,
		Keys:            []primitives.KeyAuth{{Key: key, Weight: 1}},
	}
}

// Apply materializes the manifest into a fresh evaluator.State: the native
// and vesting assets, every seed account and witness, and the singleton
// dynamic-globals row every block applier reads (spec §3's Dynamic global
// properties). Rows are created directly against the tables rather than
// through operations, since genesis precedes any signer capable of
// authorizing one.
func (m *Manifest) Apply(s *evaluator.State) error {
	if m.NativeAsset.Symbol != evaluator.NativeSymbol {
		return fmt.Errorf("chain: genesis native asset symbol must be %q, got %q", evaluator.NativeSymbol, m.NativeAsset.Symbol)
	}
	if m.VestingAsset.Symbol != evaluator.VestingSymbol {
		return fmt.Errorf("chain: genesis vesting asset symbol must be %q, got %q", evaluator.VestingSymbol, m.VestingAsset.Symbol)
	}

	seen := make(map[string]bool, len(m.Accounts))
	for _, acc := range m.Accounts {
		if _, ok := s.AccountByName(acc.Name); ok || seen[acc.Name] {
			return fmt.Errorf("chain: genesis: duplicate account %q", acc.Name)
		}
		seen[acc.Name] = true
	}

	nativeID, err := s.Assets.Create(func(a *evaluator.AssetRow) {
		a.Symbol = m.NativeAsset.Symbol
		a.Issuer = m.NativeAsset.Issuer
		a.Precision = m.NativeAsset.Precision
		a.MaxSupply = m.NativeAsset.MaxSupply
	})
	if err != nil {
		return fmt.Errorf("chain: genesis: create native asset: %w", err)
	}

	vestingID, err := s.Assets.Create(func(a *evaluator.AssetRow) {
		a.Symbol = m.VestingAsset.Symbol
		a.Issuer = m.VestingAsset.Issuer
		a.Precision = m.VestingAsset.Precision
		a.MaxSupply = m.VestingAsset.MaxSupply
	})
	if err != nil {
		return fmt.Errorf("chain: genesis: create vesting asset: %w", err)
	}

	var totalBalance, totalVesting int64
	for _, acc := range m.Accounts {
		ownerKey, err := parseKey(acc.OwnerKey)
		if err != nil {
			return err
		}
		activeKey, err := parseKey(acc.ActiveKey)
		if err != nil {
			return err
		}
		basicKey, err := parseKey(acc.BasicKey)
		if err != nil {
			return err
		}
		memoKey, err := parseKey(acc.MemoKey)
		if err != nil {
			return err
		}
		if err := primitives.ValidateAccountName(acc.Name); err != nil {
			return fmt.Errorf("chain: genesis account %q: %w", acc.Name, err)
		}

		_, err = s.Accounts.Create(func(a *evaluator.AccountRow) {
			a.Name = acc.Name
			a.Owner = singleKeyAuthority(ownerKey)
			a.Active = singleKeyAuthority(activeKey)
			a.Basic = singleKeyAuthority(basicKey)
			a.MemoKey = memoKey
			a.RecoveryAccount = acc.Name
			a.CreatedAt = m.GenesisTime
			a.Balance = primitives.NewAmount(nativeID, acc.Balance)
			a.VestingShares = primitives.NewAmount(vestingID, acc.VestingShares)
		})
		if err != nil {
			return fmt.Errorf("chain: genesis: create account %q: %w", acc.Name, err)
		}
		totalBalance += acc.Balance
		totalVesting += acc.VestingShares
	}

	if err := s.Assets.Modify(nativeID, func(a *evaluator.AssetRow) {
		a.CurrentSupply = totalBalance
	}); err != nil {
		return fmt.Errorf("chain: genesis: set native supply: %w", err)
	}
	if err := s.Assets.Modify(vestingID, func(a *evaluator.AssetRow) {
		a.CurrentSupply = totalVesting
	}); err != nil {
		return fmt.Errorf("chain: genesis: set vesting supply: %w", err)
	}

	for _, w := range m.Witnesses {
		signingKey, err := parseKey(w.SigningKey)
		if err != nil {
			return err
		}
		if _, ok := s.AccountByName(w.Owner); !ok {
			return fmt.Errorf("chain: genesis: witness %q has no matching account", w.Owner)
		}
		if _, err := s.Witnesses.Create(func(row *evaluator.WitnessRow) {
			row.Owner = w.Owner
			row.URL = w.URL
			row.SigningKey = signingKey
		}); err != nil {
			return fmt.Errorf("chain: genesis: create witness %q: %w", w.Owner, err)
		}
	}

	initialPrice, ok := primitives.NewPrice(
		primitives.NewAmount(vestingID, 1),
		primitives.NewAmount(nativeID, 1),
	)
	if !ok {
		return fmt.Errorf("chain: genesis: invalid initial vesting share price")
	}

	_, err = s.GlobalProperties.Create(func(g *evaluator.GlobalPropertyRow) {
		g.Time = m.GenesisTime
		g.VirtualSupply = totalBalance
		g.VestingFund = totalVesting
		g.VestingSharePrice = initialPrice
		g.MaximumBlockSize = 2 << 20
	})
	if err != nil {
		return fmt.Errorf("chain: genesis: create dynamic globals: %w", err)
	}
	return nil
}

// NewGenesisState builds a brand-new evaluator.State from chain parameters
// and a parsed manifest, ready for the first ApplyBlock call.
func NewGenesisState(chainParams config.Chain, emitter events.Emitter, manifest *Manifest) (*evaluator.State, error) {
	s := evaluator.NewState(chainParams, emitter)
	if err := manifest.Apply(s); err != nil {
		return nil, err
	}
	return s, nil
}

// BuildSchedule derives the initial witness rotation from the manifest's
// seed witnesses via consensus.BuildSchedule. Genesis witnesses all start
// with zero votes, so that vote-descending order falls back to ascending
// owner name rather than manifest declaration order.
func BuildSchedule(s *evaluator.State, chainParams config.Chain) consensus.Schedule {
	rows := s.Witnesses.All()
	return consensus.BuildSchedule(rows, chainParams.WitnessesPerRound)
}
