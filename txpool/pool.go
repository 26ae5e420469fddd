// Package txpool buffers signed transactions between submission and block
// production. It runs the cheap, stateless half of spec §4.4's pipeline
// eagerly (expiration, per-operation validate()) so a malformed transaction
// is rejected at the door rather than silently riding along until a block
// applier discovers it, and throttles ingestion the way the teacher's
// network layer throttles peers (golang.org/x/time/rate), since nothing
// else stands between an RPC submitter and unbounded memory growth.
package txpool

import (
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	cerrors "harmonichain/core/errors"
	"harmonichain/protocol"
)

// ErrPoolFull is returned by Submit once the pool holds Limit transactions.
var ErrPoolFull = fmt.Errorf("txpool: pool is full")

// ErrRateLimited is returned by Submit when the ingestion limiter has no
// tokens left.
var ErrRateLimited = fmt.Errorf("txpool: submission rate exceeded")

// Pool is a FIFO buffer of pending transactions awaiting inclusion in a
// block. It is safe for concurrent use: RPC submission happens outside the
// single-threaded evaluator (spec §5), so Submit/Drain must serialize
// against each other independently of block application.
type Pool struct {
	mu    sync.Mutex
	txs   []*protocol.Transaction
	limit int

	limiter *rate.Limiter
}

// New constructs an empty Pool capped at limit pending transactions
// (0 means unlimited), admitting bursts of up to burst submissions and
// ratePerSecond submissions per second at steady state (ratePerSecond 0
// disables rate limiting).
func New(limit int, ratePerSecond float64, burst int) *Pool {
	p := &Pool{limit: limit}
	if ratePerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return p
}

// Submit validates tx's well-formedness (spec §4.4: validate() is pure and
// never reads chain state) and, if it passes and the pool has room,
// appends it to the pending queue.
func (p *Pool) Submit(tx *protocol.Transaction, now uint64) error {
	if tx == nil {
		return fmt.Errorf("txpool: nil transaction")
	}
	if tx.Expiration < now {
		return fmt.Errorf("txpool: transaction already expired: %w", cerrors.ErrValidate)
	}
	if len(tx.Signatures) == 0 {
		return fmt.Errorf("txpool: transaction has no signatures: %w", cerrors.ErrValidate)
	}
	if err := tx.ValidateEach(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.limiter != nil && !p.limiter.Allow() {
		return ErrRateLimited
	}
	if p.limit > 0 && len(p.txs) >= p.limit {
		return ErrPoolFull
	}
	p.txs = append(p.txs, tx)
	return nil
}

// Drain removes and returns up to max pending transactions in FIFO
// submission order, the slice a witness packages into its next block
// (spec §4.5: "an incoming block carries an ordered list of signed
// transactions"). max <= 0 drains everything.
func (p *Pool) Drain(max int) []*protocol.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.txs)
	if max > 0 && max < n {
		n = max
	}
	out := append([]*protocol.Transaction(nil), p.txs[:n]...)
	p.txs = append([]*protocol.Transaction(nil), p.txs[n:]...)
	return out
}

// Len reports how many transactions are currently pending.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.txs)
}

// Remove drops any pending transaction matching discard (by pointer
// identity), used to evict transactions a block application already
// consumed from a branch that turned out to be the wrong fork.
func (p *Pool) Remove(discard []*protocol.Transaction) {
	if len(discard) == 0 {
		return
	}
	skip := make(map[*protocol.Transaction]bool, len(discard))
	for _, tx := range discard {
		skip[tx] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.txs[:0]
	for _, tx := range p.txs {
		if !skip[tx] {
			kept = append(kept, tx)
		}
	}
	p.txs = kept
}
