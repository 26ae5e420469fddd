package chain

import (
	"encoding/hex"
	"fmt"
	"sync"

	"harmonichain/config"
	"harmonichain/consensus"
	"harmonichain/core/events"
	"harmonichain/crypto"
	"harmonichain/evaluator"
	"harmonichain/protocol"
	"harmonichain/storage"
	"harmonichain/txpool"
)

// Chain is the composition root wiring the object store (evaluator.State),
// the consensus applier (consensus.Chain), the pending-transaction pool,
// and snapshot persistence into a single runnable node, the counterpart of
// the teacher's core.Node (spec §1's "core" scope: everything upstream —
// P2P gossip, RPC, wallet — is an external collaborator, §6).
//
// Chain serializes block production, external block application, fork
// switches and snapshot persistence behind mu, so exactly one application
// runs against the store at a time. Pool submission is independently
// synchronized and may run concurrently with block production.
type Chain struct {
	mu sync.Mutex

	consensus *consensus.Chain
	pool      *txpool.Pool
	kv        storage.Database

	witnessKey *crypto.PrivateKey
}

// Options configures a new Chain.
type Options struct {
	ChainID       protocol.ChainID
	MempoolLimit  int
	SubmitRate    float64
	SubmitBurst   int
	WitnessKeyHex string
}

// New constructs a Chain from an already-loaded evaluator.State (either
// freshly built from genesis via NewGenesisState, or restored from a
// persisted snapshot via kv.LoadSnapshot), a witness schedule, and the
// node's persistence backend.
func New(state *evaluator.State, schedule consensus.Schedule, kv storage.Database, opts Options) (*Chain, error) {
	var witnessKey *crypto.PrivateKey
	if opts.WitnessKeyHex != "" {
		raw, err := hex.DecodeString(opts.WitnessKeyHex)
		if err != nil {
			return nil, fmt.Errorf("chain: decode witness key: %w", err)
		}
		key, err := crypto.PrivateKeyFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("chain: parse witness key: %w", err)
		}
		witnessKey = key
	}

	return &Chain{
		consensus:  consensus.NewChain(state, opts.ChainID, schedule),
		pool:       txpool.New(opts.MempoolLimit, opts.SubmitRate, opts.SubmitBurst),
		kv:         kv,
		witnessKey: witnessKey,
	}, nil
}

// Bootstrap loads chain params, genesis manifest, and a fresh state,
// returning a ready-to-run Chain. It is the one-call path cmd/ entrypoints
// use to go from on-disk configuration to a runnable node.
func Bootstrap(cfg *config.Config, manifestPath string, kv storage.Database, chainID protocol.ChainID, emitter events.Emitter) (*Chain, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	state := evaluator.NewState(cfg.Chain, emitter)
	if _, err := kv.LoadSnapshot(state.DB); err != nil {
		if err != storage.ErrNoSnapshot {
			return nil, err
		}
		// Fresh genesis: no prior snapshot to restore, build one from the
		// manifest instead.
		state, err = NewGenesisState(cfg.Chain, emitter, manifest)
		if err != nil {
			return nil, err
		}
	}
	schedule := BuildSchedule(state, cfg.Chain)

	return New(state, schedule, kv, Options{
		ChainID:       chainID,
		MempoolLimit:  10000,
		SubmitRate:    200,
		SubmitBurst:   50,
		WitnessKeyHex: cfg.WitnessKey,
	})
}

// SubmitTransaction validates and enqueues tx for inclusion in a future
// block (spec §4.4's cheap half of the pipeline, run eagerly).
func (c *Chain) SubmitTransaction(tx *protocol.Transaction, now uint64) error {
	return c.pool.Submit(tx, now)
}

// PendingCount reports how many transactions are queued for inclusion.
func (c *Chain) PendingCount() int {
	return c.pool.Len()
}

// WitnessForHeight returns the account scheduled to produce the block at
// height, per the chain's current witness rotation (spec §4.5).
func (c *Chain) WitnessForHeight(height uint64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consensus.Schedule.WitnessForHeight(height)
}

// ProduceBlock drains up to maxTxs pending transactions, assembles and
// signs a block header at the given height/timestamp for witness, and
// applies it against the chain's current head. On success the consumed
// transactions are permanently removed from the pool; on failure they are
// returned to the pool so a later, better-formed block can retry them.
func (c *Chain) ProduceBlock(height, timestamp uint64, witness string, maxTxs int) (*protocol.Block, error) {
	if c.witnessKey == nil {
		return nil, fmt.Errorf("chain: no witness signing key configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	txs := c.pool.Drain(maxTxs)
	block, err := c.assembleBlock(height, timestamp, witness, txs)
	if err != nil {
		c.requeue(txs)
		return nil, err
	}

	if err := c.consensus.ApplyBlock(block); err != nil {
		// Let the transactions be retried in a later block attempt.
		c.requeue(txs)
		return nil, fmt.Errorf("chain: produce block %d: %w", height, err)
	}
	return block, nil
}

// ApplyExternalBlock applies a block received from a peer (spec §1's P2P
// gossip layer is out of scope; this is the entry point it calls into),
// evicting any of its transactions from the local pool so they are not
// resubmitted.
func (c *Chain) ApplyExternalBlock(block *protocol.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.consensus.ApplyBlock(block); err != nil {
		return err
	}
	c.pool.Remove(block.Transactions)
	return nil
}

// SwitchFork delegates to the underlying consensus.Chain's fork-switch
// logic (spec §4.5).
func (c *Chain) SwitchFork(newBranch []*protocol.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consensus.SwitchFork(newBranch)
}

// PersistSnapshot writes the current object-store contents to the node's
// key-value backend (spec §6's optional persistence format).
func (c *Chain) PersistSnapshot(height uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.SaveSnapshot(c.consensus.State.DB, height)
}

func (c *Chain) requeue(txs []*protocol.Transaction) {
	for _, tx := range txs {
		_ = c.pool.Submit(tx, 0)
	}
}

func (c *Chain) assembleBlock(height, timestamp uint64, witness string, txs []*protocol.Transaction) (*protocol.Block, error) {
	globals := c.consensus.State.Globals()
	root, err := protocol.MerkleRoot(c.consensus.ChainID, txs)
	if err != nil {
		return nil, fmt.Errorf("chain: compute merkle root: %w", err)
	}
	header := &protocol.BlockHeader{
		Height:       height,
		Previous:     protocol.BlockID(globals.HeadBlockID),
		Timestamp:    timestamp,
		Witness:      witness,
		TxMerkleRoot: root,
	}
	if err := header.Sign(c.witnessKey.PrivateKey); err != nil {
		return nil, fmt.Errorf("chain: sign block header: %w", err)
	}
	return &protocol.Block{Header: header, Transactions: txs}, nil
}
