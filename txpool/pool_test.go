package txpool

import (
	"testing"

	"harmonichain/primitives"
	"harmonichain/protocol"
)

func newTestTransfer(from, to string, amount int64, expiration uint64) *protocol.Transaction {
	asset, _ := primitives.NewObjectID(primitives.SpaceProtocol, 2, 0)
	tx := &protocol.Transaction{
		Expiration: expiration,
		Operations: []protocol.Operation{
			&protocol.TransferOperation{
				From:   from,
				To:     to,
				Amount: primitives.NewAmount(asset, amount),
			},
		},
	}
	tx.Signatures = []protocol.Signature{{1}}
	return tx
}

func TestSubmitRejectsExpired(t *testing.T) {
	p := New(0, 0, 0)
	tx := newTestTransfer("alice", "bob", 100, 10)
	if err := p.Submit(tx, 20); err == nil {
		t.Fatal("expected expired transaction to be rejected")
	}
	if p.Len() != 0 {
		t.Fatalf("expected pool to remain empty, got %d", p.Len())
	}
}

func TestSubmitRejectsInvalidOperation(t *testing.T) {
	p := New(0, 0, 0)
	asset, _ := primitives.NewObjectID(primitives.SpaceProtocol, 2, 0)
	tx := &protocol.Transaction{
		Expiration: 100,
		Operations: []protocol.Operation{
			&protocol.TransferOperation{From: "alice", To: "alice", Amount: primitives.NewAmount(asset, 1)},
		},
		Signatures: []protocol.Signature{{1}},
	}
	if err := p.Submit(tx, 10); err == nil {
		t.Fatal("expected validate() failure (from == to) to be rejected")
	}
}

func TestSubmitRespectsLimit(t *testing.T) {
	p := New(1, 0, 0)
	tx1 := newTestTransfer("alice", "bob", 100, 100)
	tx2 := newTestTransfer("bob", "alice", 50, 100)

	if err := p.Submit(tx1, 0); err != nil {
		t.Fatalf("Submit tx1: %v", err)
	}
	if err := p.Submit(tx2, 0); err != ErrPoolFull {
		t.Fatalf("expected ErrPoolFull, got %v", err)
	}
}

func TestDrainIsFIFOAndRemovesDrained(t *testing.T) {
	p := New(0, 0, 0)
	tx1 := newTestTransfer("alice", "bob", 100, 100)
	tx2 := newTestTransfer("bob", "carol", 50, 100)
	if err := p.Submit(tx1, 0); err != nil {
		t.Fatalf("Submit tx1: %v", err)
	}
	if err := p.Submit(tx2, 0); err != nil {
		t.Fatalf("Submit tx2: %v", err)
	}

	drained := p.Drain(1)
	if len(drained) != 1 || drained[0] != tx1 {
		t.Fatalf("expected FIFO drain of tx1 first, got %+v", drained)
	}
	if p.Len() != 1 {
		t.Fatalf("expected 1 remaining transaction, got %d", p.Len())
	}

	rest := p.Drain(0)
	if len(rest) != 1 || rest[0] != tx2 {
		t.Fatalf("expected remaining drain to return tx2, got %+v", rest)
	}
	if p.Len() != 0 {
		t.Fatalf("expected pool to be empty after full drain, got %d", p.Len())
	}
}

func TestRemoveEvictsMatchingTransactions(t *testing.T) {
	p := New(0, 0, 0)
	tx1 := newTestTransfer("alice", "bob", 100, 100)
	tx2 := newTestTransfer("bob", "carol", 50, 100)
	if err := p.Submit(tx1, 0); err != nil {
		t.Fatalf("Submit tx1: %v", err)
	}
	if err := p.Submit(tx2, 0); err != nil {
		t.Fatalf("Submit tx2: %v", err)
	}

	p.Remove([]*protocol.Transaction{tx1})
	if p.Len() != 1 {
		t.Fatalf("expected 1 remaining transaction, got %d", p.Len())
	}
	remaining := p.Drain(0)
	if len(remaining) != 1 || remaining[0] != tx2 {
		t.Fatalf("expected tx2 to remain, got %+v", remaining)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	p := New(0, 1, 1)
	tx1 := newTestTransfer("alice", "bob", 100, 100)
	tx2 := newTestTransfer("bob", "carol", 50, 100)

	if err := p.Submit(tx1, 0); err != nil {
		t.Fatalf("Submit tx1: %v", err)
	}
	if err := p.Submit(tx2, 0); err != ErrRateLimited {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}
