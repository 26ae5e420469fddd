// Command harmonichaind is the minimal composition-root binary: it loads a
// node config, opens the persistent key-value backend, bootstraps a Chain
// from a genesis manifest or a prior snapshot, and drives block production
// on the configured interval (spec §4.5, §9's "cmd/harmonichaind"). It does
// not speak P2P or RPC — those are out-of-scope collaborators (spec §1).
package main

import (
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"time"

	"harmonichain/chain"
	"harmonichain/config"
	"harmonichain/core/events"
	"harmonichain/crypto"
	"harmonichain/protocol"
	"harmonichain/storage"
)

// keystorePassphraseEnv names the environment variable harmonichaind reads
// the witness keystore's decryption passphrase from; it is never accepted
// as a flag so it never shows up in a process listing or shell history.
const keystorePassphraseEnv = "HARMONICHAIND_KEYSTORE_PASSPHRASE"

func main() {
	configFile := flag.String("config", "./config.toml", "path to the node configuration file")
	genesisFile := flag.String("genesis", "./genesis.yaml", "path to the genesis manifest")
	keystoreFile := flag.String("keystore", "./witness.keystore", "path to the encrypted witness keystore file")
	testnet := flag.Bool("testnet", false, "use the testnet chain id instead of mainnet")
	snapshotEvery := flag.Uint64("snapshot-every", 100, "persist a snapshot every N produced blocks (0 disables)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := resolveWitnessKeystore(cfg, *keystoreFile, os.Getenv(keystorePassphraseEnv)); err != nil {
		logger.Error("resolve witness keystore", slog.Any("error", err))
		os.Exit(1)
	}

	kv, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer kv.Close()

	chainID := protocol.MainnetChainID
	if *testnet {
		chainID = protocol.TestnetChainID
	}

	c, err := chain.Bootstrap(cfg, *genesisFile, kv, chainID, events.NoopEmitter{})
	if err != nil {
		logger.Error("bootstrap chain", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("harmonichaind starting", slog.String("data_dir", cfg.DataDir), slog.Bool("testnet", *testnet))

	interval := time.Duration(cfg.Chain.BlockIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 3 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var height uint64
	for range ticker.C {
		height++
		now := uint64(time.Now().Unix())
		witness := c.WitnessForHeight(height)
		if witness == "" {
			logger.Warn("no scheduled witness for height, skipping", slog.Uint64("height", height))
			continue
		}

		block, err := c.ProduceBlock(height, now, witness, 1000)
		if err != nil {
			logger.Error("produce block", slog.Uint64("height", height), slog.Any("error", err))
			height--
			continue
		}
		logger.Info("produced block", slog.Uint64("height", height), slog.String("witness", witness), slog.Int("txs", len(block.Transactions)))

		if *snapshotEvery > 0 && height%*snapshotEvery == 0 {
			if err := c.PersistSnapshot(height); err != nil {
				logger.Error("persist snapshot", slog.Uint64("height", height), slog.Any("error", err))
			}
		}
	}
}

// resolveWitnessKeystore makes cfg.WitnessKey (the plaintext hex config.Load
// otherwise leaves sitting in config.toml) durable across restarts via an
// encrypted keystore file: if keystorePath already holds one, its key
// overrides whatever is in cfg; otherwise the key config.Load just
// generated (or the operator supplied) is encrypted into a fresh keystore
// file at that path so the next restart loads from there instead.
func resolveWitnessKeystore(cfg *config.Config, keystorePath, passphrase string) error {
	if _, err := os.Stat(keystorePath); err == nil {
		key, err := crypto.LoadFromKeystore(keystorePath, passphrase)
		if err != nil {
			return err
		}
		cfg.WitnessKey = hex.EncodeToString(key.Bytes())
		return nil
	}

	raw, err := hex.DecodeString(cfg.WitnessKey)
	if err != nil {
		return err
	}
	key, err := crypto.PrivateKeyFromBytes(raw)
	if err != nil {
		return err
	}
	return crypto.SaveToKeystore(keystorePath, key, passphrase)
}
