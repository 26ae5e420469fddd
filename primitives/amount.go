package primitives

import (
	"fmt"
	"math/big"
)

// Precision is the fixed number of fractional digits every Amount carries,
// per spec §4.1.
const Precision = 1_000_000

// AssetID identifies the asset an Amount is denominated in. It is the
// ObjectID of the corresponding row in the asset table.
type AssetID = ObjectID

// Amount is a 64-bit signed fixed-precision quantity of a single asset.
// Arithmetic across mismatched assets, overflow, and division by zero are
// all fatal to the evaluator that triggers them (spec §4.1) rather than
// recoverable errors: consensus code must never observe a partially
// computed amount.
type Amount struct {
	Asset AssetID
	Value int64
}

// NewAmount constructs an Amount for the given asset.
func NewAmount(asset AssetID, value int64) Amount {
	return Amount{Asset: asset, Value: value}
}

func (a Amount) sameAsset(b Amount) {
	if a.Asset != b.Asset {
		panic(fmt.Sprintf("primitives: asset mismatch %s vs %s", a.Asset, b.Asset))
	}
}

// Add returns a+b. Panics (fatal to the block, per spec §7's Overflow kind)
// on asset mismatch or signed-overflow.
func (a Amount) Add(b Amount) Amount {
	a.sameAsset(b)
	sum, ok := addInt64(a.Value, b.Value)
	if !ok {
		panic("primitives: amount overflow on add")
	}
	return Amount{Asset: a.Asset, Value: sum}
}

// Sub returns a-b. Panics on asset mismatch or overflow.
func (a Amount) Sub(b Amount) Amount {
	a.sameAsset(b)
	diff, ok := addInt64(a.Value, -b.Value)
	if !ok {
		panic("primitives: amount overflow on sub")
	}
	return Amount{Asset: a.Asset, Value: diff}
}

// Negative reports whether the amount is below zero.
func (a Amount) Negative() bool { return a.Value < 0 }

// IsZero reports whether the amount's value is zero.
func (a Amount) IsZero() bool { return a.Value == 0 }

// MulPrice scales the amount by a Price via a 128-bit intermediate,
// defined only when the amount's asset matches the price's base or quote
// (spec §4.1). Returns the converted amount in the opposite asset.
func (a Amount) MulPrice(p Price) Amount {
	switch a.Asset {
	case p.Base.Asset:
		return mulDiv(a, p.Quote, p.Base)
	case p.Quote.Asset:
		return mulDiv(a, p.Base, p.Quote)
	default:
		panic("primitives: amount asset does not match either side of price")
	}
}

func mulDiv(a Amount, numerator, denominator Amount) Amount {
	if denominator.Value == 0 {
		panic("primitives: division by zero in price conversion")
	}
	prod := new(big.Int).Mul(big.NewInt(a.Value), big.NewInt(numerator.Value))
	quot := new(big.Int).Quo(prod, big.NewInt(denominator.Value))
	if !quot.IsInt64() {
		panic("primitives: amount overflow on price conversion")
	}
	return Amount{Asset: numerator.Asset, Value: quot.Int64()}
}

func addInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// AmountFromDecimal parses "<integer>.<fraction>" into a fixed-precision
// value (spec §6's asset textual format), independent of symbol/space parsing.
func AmountFromDecimal(asset AssetID, integer, fraction int64) (Amount, bool) {
	if fraction < 0 || fraction >= Precision {
		return Amount{}, false
	}
	scaled := integer * Precision
	if integer != 0 && scaled/integer != Precision {
		return Amount{}, false
	}
	value, ok := addInt64(scaled, fraction)
	if !ok {
		return Amount{}, false
	}
	return Amount{Asset: asset, Value: value}, true
}

// DecimalString renders the amount's integer and zero-padded 6-digit
// fractional parts, matching spec §6 ("Fraction padded to 6 digits").
func (a Amount) DecimalString() string {
	whole := a.Value / Precision
	frac := a.Value % Precision
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%06d", whole, frac)
}
