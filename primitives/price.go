package primitives

import "math/big"

// Price is an ordered (base, quote) pair of positive amounts in two distinct
// assets, per spec §4.1. base/quote defines "how much quote buys one base".
type Price struct {
	Base  Amount
	Quote Amount
}

// NewPrice constructs a Price, requiring distinct positive-valued assets.
func NewPrice(base, quote Amount) (Price, bool) {
	if base.Asset == quote.Asset {
		return Price{}, false
	}
	if base.Value <= 0 || quote.Value <= 0 {
		return Price{}, false
	}
	return Price{Base: base, Quote: quote}, true
}

// Less compares two prices via 128-bit cross multiplication, avoiding the
// rounding error a floating-point division would introduce (spec §4.1).
// Both prices must share the same base and quote asset.
func (p Price) Less(o Price) bool {
	if p.Base.Asset != o.Base.Asset || p.Quote.Asset != o.Quote.Asset {
		panic("primitives: price comparison across mismatched asset pairs")
	}
	lhs := new(big.Int).Mul(big.NewInt(p.Base.Value), big.NewInt(o.Quote.Value))
	rhs := new(big.Int).Mul(big.NewInt(o.Base.Value), big.NewInt(p.Quote.Value))
	return lhs.Cmp(rhs) < 0
}

// Equal reports whether two prices represent the same ratio.
func (p Price) Equal(o Price) bool {
	return !p.Less(o) && !o.Less(p)
}

// Invert swaps base and quote, used when matching orders on opposite sides
// of the book.
func (p Price) Invert() Price {
	return Price{Base: p.Quote, Quote: p.Base}
}
