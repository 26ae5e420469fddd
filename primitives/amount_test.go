package primitives

import "testing"

// TestAssetRoundTrip covers spec §8 scenario 1.
func TestAssetRoundTrip(t *testing.T) {
	amount, err := ParseAssetAmount("123.456 2.28.0")
	if err != nil {
		t.Fatalf("ParseAssetAmount: %v", err)
	}
	if amount.Value != 123_456_000 {
		t.Fatalf("unexpected internal amount: %d", amount.Value)
	}
	if got, want := amount.FullString(), "123.456000 2.28.0"; got != want {
		t.Fatalf("FullString() = %q, want %q", got, want)
	}
}

// TestPriceOrdering covers spec §8 scenario 2: (2A/3B) < (3A/4B), since
// 2*4=8 < 3*3=9.
func TestPriceOrdering(t *testing.T) {
	assetA, _ := NewObjectID(SpaceProtocol, 1, 0)
	assetB, _ := NewObjectID(SpaceProtocol, 1, 1)

	lhs, ok := NewPrice(NewAmount(assetA, 2), NewAmount(assetB, 3))
	if !ok {
		t.Fatal("expected valid price")
	}
	rhs, ok := NewPrice(NewAmount(assetA, 3), NewAmount(assetB, 4))
	if !ok {
		t.Fatal("expected valid price")
	}
	if !lhs.Less(rhs) {
		t.Fatalf("expected %+v < %+v", lhs, rhs)
	}
	if rhs.Less(lhs) {
		t.Fatalf("expected %+v to not be < %+v", rhs, lhs)
	}
}

func TestAmountArithmeticRejectsMismatchedAssets(t *testing.T) {
	assetA, _ := NewObjectID(SpaceProtocol, 1, 0)
	assetB, _ := NewObjectID(SpaceProtocol, 1, 1)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mismatched-asset addition")
		}
	}()
	NewAmount(assetA, 1).Add(NewAmount(assetB, 1))
}

func TestDecimalStringPadsFraction(t *testing.T) {
	asset, _ := NewObjectID(SpaceProtocol, 1, 0)
	amount, ok := AmountFromDecimal(asset, 5, 1000)
	if !ok {
		t.Fatal("expected valid amount")
	}
	if got, want := amount.DecimalString(), "5.001000"; got != want {
		t.Fatalf("DecimalString() = %q, want %q", got, want)
	}
}
