package evaluator

import (
	"testing"

	"harmonichain/config"
	cerrors "harmonichain/core/errors"
	"harmonichain/core/events"
	"harmonichain/primitives"
	"harmonichain/protocol"
)

func newTestState(t *testing.T) (*State, primitives.ObjectID) {
	t.Helper()
	s := NewState(config.DefaultChain, events.NoopEmitter{})
	nativeID, err := s.Assets.Create(func(a *AssetRow) {
		a.Symbol = NativeSymbol
		a.Precision = 6
		a.MaxSupply = 1_000_000_000_000
	})
	if err != nil {
		t.Fatalf("create native asset: %v", err)
	}
	return s, nativeID
}

func seedAccount(t *testing.T, s *State, name string, balance primitives.Amount) {
	t.Helper()
	if _, err := s.Accounts.Create(func(a *AccountRow) {
		a.Name = name
		a.Balance = balance
	}); err != nil {
		t.Fatalf("seed account %q: %v", name, err)
	}
}

// TestApplyTransferMovesBalance covers the happy path of spec §4.4's
// transfer operation: amount moves from sender to recipient exactly.
func TestApplyTransferMovesBalance(t *testing.T) {
	s, native := newTestState(t)
	seedAccount(t, s, "alice", primitives.NewAmount(native, 1000))
	seedAccount(t, s, "bob", primitives.NewAmount(native, 0))

	op := &protocol.TransferOperation{From: "alice", To: "bob", Amount: primitives.NewAmount(native, 400)}
	if err := s.Apply(0, op); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	alice, _ := s.AccountByName("alice")
	bob, _ := s.AccountByName("bob")
	if alice.Balance.Value != 600 {
		t.Fatalf("alice balance = %d, want 600", alice.Balance.Value)
	}
	if bob.Balance.Value != 400 {
		t.Fatalf("bob balance = %d, want 400", bob.Balance.Value)
	}
}

// TestApplyTransferInsufficientFunds covers spec §7's insufficient_funds
// error path.
func TestApplyTransferInsufficientFunds(t *testing.T) {
	s, native := newTestState(t)
	seedAccount(t, s, "alice", primitives.NewAmount(native, 100))
	seedAccount(t, s, "bob", primitives.NewAmount(native, 0))

	op := &protocol.TransferOperation{From: "alice", To: "bob", Amount: primitives.NewAmount(native, 400)}
	err := s.Apply(0, op)
	if err == nil {
		t.Fatal("expected insufficient funds error")
	}
	if kind, ok := cerrors.KindOf(err); !ok || kind != cerrors.KindInsufficientFunds {
		t.Fatalf("expected KindInsufficientFunds, got %v (matched=%v)", kind, ok)
	}
}

// TestApplyTransferUnknownRecipient covers the unknown_entity error path.
func TestApplyTransferUnknownRecipient(t *testing.T) {
	s, native := newTestState(t)
	seedAccount(t, s, "alice", primitives.NewAmount(native, 1000))

	op := &protocol.TransferOperation{From: "alice", To: "ghost", Amount: primitives.NewAmount(native, 10)}
	err := s.Apply(0, op)
	if err == nil {
		t.Fatal("expected unknown entity error")
	}
	if kind, ok := cerrors.KindOf(err); !ok || kind != cerrors.KindUnknownEntity {
		t.Fatalf("expected KindUnknownEntity, got %v (matched=%v)", kind, ok)
	}
}
