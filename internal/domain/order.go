package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide normalizes a wire-level side string. Unknown values fall back to
// buy so a malformed field degrades display only.
func ParseSide(s string) Side {
	if strings.EqualFold(s, string(SideSell)) {
		return SideSell
	}
	return SideBuy
}

// Order is one live open order, identified by its exchange-scoped ID. The
// full order set for an exchange is replaced wholesale on every orders
// snapshot; there are no incremental order mutations.
type Order struct {
	ID       string
	Exchange string
	// Symbol is the market symbol, e.g. "ETH/USDT".
	Symbol string
	Side   Side

	Price decimal.Decimal
	// StopPrice is set for stop orders only.
	StopPrice *decimal.Decimal
	Amount    decimal.Decimal
	Filled    decimal.Decimal

	// Timestamp is the exchange creation time in unix milliseconds,
	// used for newest-first ordering.
	Timestamp int64

	// Triggered reports that a stop order's trigger price was hit.
	Triggered bool
}

// Equal reports whether two orders carry the same content. Snapshot diffing
// uses it to leave untouched cards out of the patch set.
func (o *Order) Equal(p *Order) bool {
	if o == nil || p == nil {
		return o == p
	}
	return o.ID == p.ID &&
		o.Exchange == p.Exchange &&
		o.Symbol == p.Symbol &&
		o.Side == p.Side &&
		o.Timestamp == p.Timestamp &&
		o.Triggered == p.Triggered &&
		o.Price.Equal(p.Price) &&
		o.Amount.Equal(p.Amount) &&
		o.Filled.Equal(p.Filled) &&
		decimalPtrEqual(o.StopPrice, p.StopPrice)
}

// Base returns the base asset of the order's market symbol.
func (o *Order) Base() string {
	if i := strings.IndexByte(o.Symbol, '/'); i > 0 {
		return o.Symbol[:i]
	}
	return o.Symbol
}

// Value returns price times amount.
func (o *Order) Value() decimal.Decimal {
	return o.Price.Mul(o.Amount)
}

// PriceDiff returns the percent distance of the order price from the given
// market price, nil when the market price is unknown.
func (o *Order) PriceDiff(currentPrice decimal.Decimal) *decimal.Decimal {
	return PriceDiffPercent(o.Price, currentPrice)
}
