// Package domain defines the core data structures of the portfolio dashboard.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Holding is a user's balance of one asset on one exchange, paired with its
// valuation in the exchange quote currency. It is identified by the
// (Exchange, Market) pair.
type Holding struct {
	Exchange string
	// Base is the base asset symbol, e.g. "BTC".
	Base string
	// Market is the full market symbol, e.g. "BTC/USDT".
	Market string

	Free   decimal.Decimal
	Locked decimal.Decimal

	// AvgBuyPrice is nil when the exchange could not derive an average
	// entry price for the asset.
	AvgBuyPrice *decimal.Decimal
	RealizedPnl *decimal.Decimal

	// Price is the last known market price, zero until the first price
	// event arrives.
	Price decimal.Decimal

	// ChangePercent is the move against the reference price baseline,
	// nil when no baseline exists for this asset.
	ChangePercent *decimal.Decimal

	// Share is this holding's portion of the exchange total value,
	// recomputed by the reconciliation engine. Nil when the total is zero.
	Share *decimal.Decimal

	// Empty marks a zero-balance holding kept visible because its base
	// asset is in the exchange follow set.
	Empty bool
}

// Key returns the store identity of the holding.
func (h *Holding) Key() string {
	return fmt.Sprintf("%s|%s", h.Exchange, h.Market)
}

// Total returns free plus locked amount.
func (h *Holding) Total() decimal.Decimal {
	return h.Free.Add(h.Locked)
}

// Value returns the quote-currency valuation of the holding.
func (h *Holding) Value() decimal.Decimal {
	return h.Price.Mul(h.Total())
}

// UnrealizedPnl returns the open profit against the average buy price,
// or nil when no usable average buy price is recorded.
func (h *Holding) UnrealizedPnl() *decimal.Decimal {
	return UnrealizedPnl(h.AvgBuyPrice, h.Price, h.Total())
}

// Roi returns the unrealized return on the cost basis in percent,
// or nil when there is no cost basis.
func (h *Holding) Roi() *decimal.Decimal {
	return Roi(h.UnrealizedPnl(), h.AvgBuyPrice, h.Total())
}
