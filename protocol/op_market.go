package protocol

import (
	"fmt"

	"harmonichain/primitives"
)

func init() {
	register(OpLimitOrderCreate, func() Operation { return &LimitOrderCreateOperation{} })
	register(OpLimitOrderCreate2, func() Operation { return &LimitOrderCreate2Operation{} })
	register(OpLimitOrderCancel, func() Operation { return &LimitOrderCancelOperation{} })
	register(OpFeedPublish, func() Operation { return &FeedPublishOperation{} })
	register(OpConvert, func() Operation { return &ConvertOperation{} })
}

// LimitOrderCreateOperation places a limit order expressed as amount to
// sell plus a minimum amount to receive, matched price-time priority
// against the book (spec §4.4).
type LimitOrderCreateOperation struct {
	Owner        string
	OrderID      uint32
	AmountToSell primitives.Amount
	MinToReceive primitives.Amount
	FillOrKill   bool
	Expiration   uint64
}

func (op *LimitOrderCreateOperation) Tag() OperationType { return OpLimitOrderCreate }

func (op *LimitOrderCreateOperation) Validate() error {
	if err := validateAccountName("owner", op.Owner); err != nil {
		return err
	}
	if err := validatePositiveAmount("amount_to_sell", op.AmountToSell); err != nil {
		return err
	}
	if err := validatePositiveAmount("min_to_receive", op.MinToReceive); err != nil {
		return err
	}
	if op.AmountToSell.Asset == op.MinToReceive.Asset {
		return fmt.Errorf("limit_order_create: amount_to_sell and min_to_receive must be different assets")
	}
	return nil
}

func (op *LimitOrderCreateOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Owner}}
}

// LimitOrderCreate2Operation is the price-denominated variant of
// limit_order_create (spec §4.4 groups both under the same matching rule).
type LimitOrderCreate2Operation struct {
	Owner        string
	OrderID      uint32
	AmountToSell primitives.Amount
	ExchangeRate primitives.Price
	FillOrKill   bool
	Expiration   uint64
}

func (op *LimitOrderCreate2Operation) Tag() OperationType { return OpLimitOrderCreate2 }

func (op *LimitOrderCreate2Operation) Validate() error {
	if err := validateAccountName("owner", op.Owner); err != nil {
		return err
	}
	if err := validatePositiveAmount("amount_to_sell", op.AmountToSell); err != nil {
		return err
	}
	if op.AmountToSell.Asset != op.ExchangeRate.Base.Asset && op.AmountToSell.Asset != op.ExchangeRate.Quote.Asset {
		return fmt.Errorf("limit_order_create2: amount_to_sell asset does not match exchange_rate")
	}
	return nil
}

func (op *LimitOrderCreate2Operation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Owner}}
}

// LimitOrderCancelOperation removes a standing order, releasing its
// reservation (spec §3 invariant 2).
type LimitOrderCancelOperation struct {
	Owner   string
	OrderID uint32
}

func (op *LimitOrderCancelOperation) Tag() OperationType { return OpLimitOrderCancel }

func (op *LimitOrderCancelOperation) Validate() error {
	return validateAccountName("owner", op.Owner)
}

func (op *LimitOrderCancelOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Owner}}
}

// FeedPublishOperation records one witness's price feed, aggregated into
// the system feed as a median over a 7-day window (spec §4.4).
type FeedPublishOperation struct {
	Publisher    string
	ExchangeRate primitives.Price
}

func (op *FeedPublishOperation) Tag() OperationType { return OpFeedPublish }

func (op *FeedPublishOperation) Validate() error {
	if err := validateAccountName("publisher", op.Publisher); err != nil {
		return err
	}
	if op.ExchangeRate.Base.Asset == op.ExchangeRate.Quote.Asset {
		return fmt.Errorf("feed_publish: exchange_rate must reference two distinct assets")
	}
	if op.ExchangeRate.Base.Value <= 0 || op.ExchangeRate.Quote.Value <= 0 {
		return fmt.Errorf("feed_publish: exchange_rate amounts must be positive")
	}
	return nil
}

func (op *FeedPublishOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Publisher}}
}

// ConvertOperation requests a conversion applied after the 3.5-day feed
// delay at the then-current system feed (spec §4.4).
type ConvertOperation struct {
	Owner      string
	RequestID  uint32
	Amount     primitives.Amount
}

func (op *ConvertOperation) Tag() OperationType { return OpConvert }

func (op *ConvertOperation) Validate() error {
	if err := validateAccountName("owner", op.Owner); err != nil {
		return err
	}
	return validatePositiveAmount("amount", op.Amount)
}

func (op *ConvertOperation) RequiredAuth() Requirements {
	return Requirements{Active: []string{op.Owner}}
}
