package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// UnrealizedPnl returns (currentPrice - avgBuyPrice) * quantity, or nil when
// the average buy price is absent or not positive. Absent means "do not
// display", never zero.
func UnrealizedPnl(avgBuyPrice *decimal.Decimal, currentPrice, quantity decimal.Decimal) *decimal.Decimal {
	if avgBuyPrice == nil || !avgBuyPrice.IsPositive() {
		return nil
	}
	pnl := currentPrice.Sub(*avgBuyPrice).Mul(quantity)
	return &pnl
}

// Roi returns pnl as a percentage of the cost basis (avgBuyPrice * quantity),
// or nil when the cost basis is zero.
func Roi(pnl, avgBuyPrice *decimal.Decimal, quantity decimal.Decimal) *decimal.Decimal {
	if pnl == nil || avgBuyPrice == nil {
		return nil
	}
	costBasis := avgBuyPrice.Mul(quantity)
	if costBasis.IsZero() {
		return nil
	}
	roi := pnl.Div(costBasis).Mul(hundred)
	return &roi
}

// PriceDiffPercent returns how far an order price sits from the current
// market price: (orderPrice - currentPrice) / currentPrice * 100.
//
// The sign is never inverted by order side: a positive diff always means the
// order is priced above the market. Returns nil when no current price is
// known yet.
func PriceDiffPercent(orderPrice, currentPrice decimal.Decimal) *decimal.Decimal {
	if currentPrice.IsZero() {
		return nil
	}
	diff := orderPrice.Sub(currentPrice).Div(currentPrice).Mul(hundred)
	return &diff
}

// ChangePercent returns the move of price against a reference baseline in
// percent, or nil when the baseline is absent or not positive.
func ChangePercent(price decimal.Decimal, reference *decimal.Decimal) *decimal.Decimal {
	if reference == nil || !reference.IsPositive() {
		return nil
	}
	change := price.Sub(*reference).Div(*reference).Mul(hundred)
	return &change
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// SharePercent returns value / total * 100, or nil when total is zero so the
// caller renders a placeholder instead of dividing by zero.
func SharePercent(value, total decimal.Decimal) *decimal.Decimal {
	if total.IsZero() {
		return nil
	}
	share := value.Div(total).Mul(hundred)
	return &share
}
